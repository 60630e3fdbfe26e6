package biz

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"

	"github.com/kart-io/formfill/internal/formfill/metrics"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/infra/pool"
)

// PipelineConfig 管线配置。
type PipelineConfig struct {
	// Workers 并行解析字段的工作协程数；1 表示顺序处理。
	Workers int
}

// FillResult 一次整页填写的结果。
type FillResult struct {
	// Actions 按输入字段顺序排列的动作列表。
	Actions []*model.Action
	// Resolved 解析出具体值的字段数。
	Resolved int
	// Skipped 解析为 SKIP 或被短路的字段数。
	Skipped int
	// Failed 解析失败（降级为 SKIP）的字段数。
	Failed int
}

// Pipeline 驱动 分类 → 解析 → 合成 的整页处理流程。
// 字段解析可以有界并行，输出动作顺序始终与输入字段顺序一致。
type Pipeline struct {
	classifier  *Classifier
	resolver    *Resolver
	synthesizer *Synthesizer
	pool        *pool.Pool
	config      *PipelineConfig
	metrics     *metrics.FillMetrics
}

// NewPipeline 创建管线实例，内部持有一个有界工作池。
func NewPipeline(resolver *Resolver, config *PipelineConfig) (*Pipeline, error) {
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}

	p, err := pool.NewPool("formfill-resolve", pool.ResolvePool, pool.ResolvePoolConfig(workers))
	if err != nil {
		return nil, fmt.Errorf("failed to create resolve pool: %w", err)
	}

	return &Pipeline{
		classifier:  NewClassifier(),
		resolver:    resolver,
		synthesizer: NewSynthesizer(),
		pool:        p,
		config:      config,
		metrics:     metrics.GetFillMetrics(),
	}, nil
}

// fieldOutcome 单个字段的处理结果，按输入下标落位。
type fieldOutcome struct {
	action   *model.Action
	resolved bool
	skipped  bool
	failed   bool
}

// Run 处理一页表单字段，返回按输入顺序排列的动作列表。
// 惰性字段直接短路；单个字段的失败只影响该字段，不中断整页。
func (p *Pipeline) Run(ctx context.Context, tenantID string, fields []*model.Field) (*FillResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := make([]fieldOutcome, len(fields))
	var wg sync.WaitGroup

	for idx, field := range fields {
		classification := p.classifier.Classify(field)
		if !classification.Resolve {
			outcomes[idx].skipped = true
			continue
		}

		idx, field, question := idx, field, classification.Question
		wg.Add(1)
		task := func() {
			defer wg.Done()

			value, err := p.resolver.Resolve(ctx, field, question, tenantID)
			if err != nil {
				outcomes[idx].failed = true
				return
			}
			if value.Skip {
				outcomes[idx].skipped = true
				return
			}
			outcomes[idx].resolved = true
			outcomes[idx].action = p.synthesizer.Synthesize(field, value)
		}

		if err := p.pool.Submit(task); err != nil {
			// 池不可用时退化为同步执行
			logger.Warnw("resolve pool unavailable, running inline", "error", err.Error())
			task()
		}
	}

	wg.Wait()

	// 按输入顺序重组结果
	result := &FillResult{}
	for _, outcome := range outcomes {
		switch {
		case outcome.failed:
			result.Failed++
		case outcome.skipped:
			result.Skipped++
		case outcome.resolved:
			result.Resolved++
		}
		if outcome.action != nil {
			result.Actions = append(result.Actions, outcome.action)
		}
	}

	p.metrics.RecordFill(result.Resolved, result.Skipped, result.Failed, nil)
	return result, nil
}

// Close 释放内部工作池。
func (p *Pipeline) Close() {
	if p.pool != nil {
		p.pool.Release()
	}
}
