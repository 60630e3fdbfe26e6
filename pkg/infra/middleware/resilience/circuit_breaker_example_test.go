package resilience_test

import (
	"fmt"

	"github.com/kart-io/formfill/pkg/infra/middleware/resilience"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// ExampleCircuitBreaker 演示熔断器中间件的基本使用。
//
// 使用场景:
//   - 保护向量检索与 LLM 等慢速下游
//   - 持续失败时快速拒绝，避免资源浪费
func ExampleCircuitBreaker() {
	// 参数: maxFailures=5, timeout=60秒, halfOpenMaxCalls=1
	_ = resilience.CircuitBreaker(5, 60, 1)

	// 在 Gin 路由中使用:
	// router := gin.Default()
	// router.Use(middleware)
	// router.POST("/api/v1/fill", fillHandler)

	fmt.Println("熔断器中间件已启动")
	fmt.Println("配置: 5次失败后熔断，60秒后尝试恢复")

	// Output:
	// 熔断器中间件已启动
	// 配置: 5次失败后熔断，60秒后尝试恢复
}

// ExampleCircuitBreakerWithOptions 演示带配置选项的熔断器。
//
// 健康检查与指标端点应跳过熔断统计，否则探活失败会把
// 整个实例的业务流量一起熔断掉。
func ExampleCircuitBreakerWithOptions() {
	opts := mwopts.CircuitBreakerOptions{
		MaxFailures:      5,
		Timeout:          60, // 60 秒
		HalfOpenMaxCalls: 1,
		SkipPaths:        []string{"/health", "/metrics"},
		SkipPathPrefixes: []string{"/static/"},
		ErrorThreshold:   500, // 5xx 错误触发熔断
	}

	_ = resilience.CircuitBreakerWithOptions(opts)

	fmt.Println("熔断器中间件已配置")
	fmt.Println("跳过路径: /health, /metrics")
	fmt.Println("跳过前缀: /static/")
	fmt.Println("错误阈值: >= 500 (5xx 错误)")

	// Output:
	// 熔断器中间件已配置
	// 跳过路径: /health, /metrics
	// 跳过前缀: /static/
	// 错误阈值: >= 500 (5xx 错误)
}

// ExampleCircuitBreakerWithOptions_fallback 演示熔断打开时的降级处理。
func ExampleCircuitBreakerWithOptions_fallback() {
	callRetrieval := func() (string, error) {
		// 实际会调用向量检索服务，这里模拟熔断器已打开。
		return "", fmt.Errorf("circuit breaker is open")
	}

	result, err := callRetrieval()
	if err != nil {
		// 降级：跳过检索增强，直接返回基于规则的填充结果。
		result = "rule-based fill only"
	}
	fmt.Println("结果:", result)

	// Output:
	// 结果: rule-based fill only
}
