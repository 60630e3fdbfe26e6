// Package middleware 提供 HTTP 中间件的工厂注册。
// 通过 init() 函数自动注册所有内置中间件工厂。
package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/pkg/infra/middleware/observability"
	"github.com/kart-io/formfill/pkg/infra/middleware/performance"
	"github.com/kart-io/formfill/pkg/infra/middleware/resilience"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// factory 将一个按配置类型特化的构造函数适配为 mwopts.Factory。
// 所有内置中间件都不需要运行时依赖注入，NeedsRuntime 固定为 false。
type factory[T mwopts.MiddlewareConfig] struct {
	name  string
	build func(T) gin.HandlerFunc
}

func (f *factory[T]) Name() string { return f.name }

func (f *factory[T]) NeedsRuntime() bool { return false }

func (f *factory[T]) Create(cfg mwopts.MiddlewareConfig) (gin.HandlerFunc, error) {
	opts, err := typedConfig[T](f.name, cfg)
	if err != nil {
		return nil, err
	}
	return f.build(opts), nil
}

// routeRegistrar 将路由注册函数适配为 mwopts.RouteRegistrar。
type routeRegistrar[T mwopts.MiddlewareConfig] struct {
	name     string
	register func(*gin.Engine, T)
}

func (r *routeRegistrar[T]) RegisterRoutes(engine *gin.Engine, cfg mwopts.MiddlewareConfig) error {
	opts, err := typedConfig[T](r.name, cfg)
	if err != nil {
		return err
	}
	r.register(engine, opts)
	return nil
}

func typedConfig[T mwopts.MiddlewareConfig](name string, cfg mwopts.MiddlewareConfig) (T, error) {
	opts, ok := cfg.(T)
	if !ok {
		var want T
		return want, fmt.Errorf("invalid config type for %s: expected %T, got %T", name, want, cfg)
	}
	return opts, nil
}

func init() {
	mwopts.RegisterFactory(&factory[*mwopts.RecoveryOptions]{mwopts.MiddlewareRecovery, func(o *mwopts.RecoveryOptions) gin.HandlerFunc {
		return resilience.RecoveryWithOptions(*o, nil)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.RequestIDOptions]{mwopts.MiddlewareRequestID, func(o *mwopts.RequestIDOptions) gin.HandlerFunc {
		return RequestIDWithOptions(*o, nil)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.LoggerOptions]{mwopts.MiddlewareLogger, func(o *mwopts.LoggerOptions) gin.HandlerFunc {
		return observability.LoggerWithOptions(*o, nil)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.CORSOptions]{mwopts.MiddlewareCORS, func(o *mwopts.CORSOptions) gin.HandlerFunc {
		return CORSWithOptions(*o)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.TimeoutOptions]{mwopts.MiddlewareTimeout, func(o *mwopts.TimeoutOptions) gin.HandlerFunc {
		return TimeoutWithOptions(*o)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.BodyLimitOptions]{mwopts.MiddlewareBodyLimit, func(o *mwopts.BodyLimitOptions) gin.HandlerFunc {
		return resilience.BodyLimitWithOptions(*o)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.MetricsOptions]{mwopts.MiddlewareMetrics, func(o *mwopts.MetricsOptions) gin.HandlerFunc {
		return MetricsMiddlewareWithOptions(*o)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.CompressionOptions]{mwopts.MiddlewareCompression, func(o *mwopts.CompressionOptions) gin.HandlerFunc {
		return performance.CompressionWithOptions(*o)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.SecurityHeadersOptions]{mwopts.MiddlewareSecurityHeaders, func(o *mwopts.SecurityHeadersOptions) gin.HandlerFunc {
		return SecurityHeadersWithOptions(*o)
	}})
	mwopts.RegisterFactory(&factory[*mwopts.CircuitBreakerOptions]{mwopts.MiddlewareCircuitBreaker, func(o *mwopts.CircuitBreakerOptions) gin.HandlerFunc {
		return resilience.CircuitBreakerWithOptions(*o)
	}})

	// 纯路由类中间件不产生 HandlerFunc，只在 engine 上挂路由。
	mwopts.RegisterRouteRegistrar(mwopts.MiddlewareHealth, &routeRegistrar[*mwopts.HealthOptions]{mwopts.MiddlewareHealth, func(e *gin.Engine, o *mwopts.HealthOptions) {
		RegisterHealthRoutesWithOptions(e, *o, nil)
	}})
	mwopts.RegisterRouteRegistrar(mwopts.MiddlewareMetrics, &routeRegistrar[*mwopts.MetricsOptions]{mwopts.MiddlewareMetrics, func(e *gin.Engine, o *mwopts.MetricsOptions) {
		RegisterMetricsRoutesWithOptions(e, *o)
	}})
	mwopts.RegisterRouteRegistrar(mwopts.MiddlewarePprof, &routeRegistrar[*mwopts.PprofOptions]{mwopts.MiddlewarePprof, func(e *gin.Engine, o *mwopts.PprofOptions) {
		RegisterPprofRoutesWithOptions(e, *o)
	}})
	mwopts.RegisterRouteRegistrar(mwopts.MiddlewareVersion, &routeRegistrar[*mwopts.VersionOptions]{mwopts.MiddlewareVersion, func(e *gin.Engine, o *mwopts.VersionOptions) {
		RegisterVersionRoutes(e, *o)
	}})
}
