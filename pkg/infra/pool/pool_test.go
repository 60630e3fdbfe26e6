package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	p, err := NewPool("resolve", ResolvePool, ResolvePoolConfig(4))
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	if p.Name() != "resolve" {
		t.Errorf("池名称不匹配: 期望 resolve, 实际 %s", p.Name())
	}
	if p.Type() != ResolvePool {
		t.Errorf("池类型不匹配: 期望 %s, 实际 %s", ResolvePool, p.Type())
	}
	if p.Cap() != 4 {
		t.Errorf("池容量不匹配: 期望 4, 实际 %d", p.Cap())
	}
}

func TestNewPoolNilConfig(t *testing.T) {
	p, err := NewPool("resolve", ResolvePool, nil)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	// nil 配置退化为单 worker 解析池
	if p.Cap() != 1 {
		t.Errorf("池容量不匹配: 期望 1, 实际 %d", p.Cap())
	}
}

func TestResolvePoolConfigClampsWorkers(t *testing.T) {
	if got := ResolvePoolConfig(0).Capacity; got != 1 {
		t.Errorf("0 worker 应收敛为 1, 实际 %d", got)
	}
	if got := ResolvePoolConfig(-3).Capacity; got != 1 {
		t.Errorf("负数 worker 应收敛为 1, 实际 %d", got)
	}
	if got := ResolvePoolConfig(8).Capacity; got != 8 {
		t.Errorf("期望容量 8, 实际 %d", got)
	}
}

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool("resolve", ResolvePool, ResolvePoolConfig(10))
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	var counter atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
		if err != nil {
			t.Errorf("提交任务失败: %v", err)
			wg.Done()
		}
	}

	wg.Wait()

	if counter.Load() != 100 {
		t.Errorf("任务执行数不匹配: 期望 100, 实际 %d", counter.Load())
	}

	stats := p.Stats()
	if stats.SubmittedTasks != 100 || stats.CompletedTasks != 100 {
		t.Errorf("统计不匹配: submitted=%d completed=%d", stats.SubmittedTasks, stats.CompletedTasks)
	}
}

func TestPoolSubmitWithContext(t *testing.T) {
	p, err := NewPool("resolve", ResolvePool, ResolvePoolConfig(5))
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	var executed atomic.Bool
	if err := p.SubmitWithContext(context.Background(), func() {
		executed.Store(true)
	}); err != nil {
		t.Errorf("提交任务失败: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if !executed.Load() {
		t.Error("任务未执行")
	}

	// 已取消的上下文直接拒绝
	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.SubmitWithContext(canceledCtx, func() {
		t.Error("已取消的上下文不应执行任务")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("期望 context.Canceled 错误, 实际: %v", err)
	}
}

func TestPoolPanicRecovery(t *testing.T) {
	var panicCaught atomic.Bool

	cfg := ResolvePoolConfig(5)
	cfg.PanicHandler = func(r interface{}) {
		panicCaught.Store(true)
	}

	p, err := NewPool("resolve", ResolvePool, cfg)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	if err := p.Submit(func() {
		panic("测试 panic")
	}); err != nil {
		t.Errorf("提交任务失败: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if !panicCaught.Load() {
		t.Error("panic 未被捕获")
	}
	if p.Stats().PanicRecovered != 1 {
		t.Errorf("panic 统计不匹配: %d", p.Stats().PanicRecovered)
	}
}

func TestPoolClosed(t *testing.T) {
	p, err := NewPool("resolve", ResolvePool, ResolvePoolConfig(5))
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}

	p.Release()

	err = p.Submit(func() {
		t.Error("已关闭的池不应执行任务")
	})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("期望 ErrPoolClosed, 实际: %v", err)
	}

	// 重复 Release 应是幂等的
	p.Release()
}

func TestPoolNonblocking(t *testing.T) {
	p, err := NewPool("index", IndexPool, &Config{
		Capacity:       1,
		ExpiryDuration: 5 * time.Second,
		Nonblocking:    true,
	})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	// 占用唯一的 worker
	done := make(chan struct{})
	if err := p.Submit(func() {
		<-done
	}); err != nil {
		t.Errorf("提交任务失败: %v", err)
	}

	// 池满时应拒绝而非阻塞
	err = p.Submit(func() {
		t.Error("非阻塞模式下池满时不应执行任务")
	})
	if !errors.Is(err, ErrPoolOverload) {
		t.Errorf("期望 ErrPoolOverload, 实际: %v", err)
	}
	if p.Stats().RejectedTasks != 1 {
		t.Errorf("拒绝统计不匹配: %d", p.Stats().RejectedTasks)
	}

	close(done)
}

func TestPoolTune(t *testing.T) {
	p, err := NewPool("resolve", ResolvePool, ResolvePoolConfig(2))
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	p.Tune(8)
	if p.Cap() != 8 {
		t.Errorf("调整容量失败: 期望 8, 实际 %d", p.Cap())
	}
}

func TestPoolReleaseTimeout(t *testing.T) {
	p, err := NewPool("background", BackgroundPool, BackgroundPoolConfig())
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}

	var executed atomic.Bool
	_ = p.Submit(func() {
		executed.Store(true)
	})

	if err := p.ReleaseTimeout(time.Second); err != nil {
		t.Errorf("超时释放失败: %v", err)
	}
	if !executed.Load() {
		t.Error("释放前任务未完成")
	}
}

func BenchmarkPoolSubmit(b *testing.B) {
	cfg := ResolvePoolConfig(1000)
	cfg.PreAlloc = true
	p, _ := NewPool("bench", ResolvePool, cfg)
	defer p.Release()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = p.Submit(func() {})
		}
	})
}

func BenchmarkDirectGoroutine(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			go func() {}()
		}
	})
}
