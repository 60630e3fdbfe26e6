package middleware

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// Config 定义中间件配置的统一接口。
// 所有中间件配置必须实现此接口以支持注册器模式。
type Config interface {
	// Validate 验证配置的有效性。
	Validate() []error

	// Complete 完成配置的默认值填充。
	Complete() error

	// AddFlags 添加命令行标志。
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// MiddlewareConfig 是 Config 的别名。
//
//nolint:revive // 保留完整名称以便与工厂接口对应
type MiddlewareConfig = Config

// Factory creates a gin middleware handler from its configuration.
// Factories with runtime dependencies (authenticators, limiter backends)
// report NeedsRuntime() true and are skipped by automatic assembly.
type Factory interface {
	// Name returns the middleware name the factory serves.
	Name() string

	// NeedsRuntime reports whether construction requires runtime
	// dependencies beyond the serializable configuration.
	NeedsRuntime() bool

	// Create builds the middleware handler from the given configuration.
	Create(cfg MiddlewareConfig) (gin.HandlerFunc, error)
}

// RouteRegistrar registers standalone routes for a middleware, such as
// health, metrics, pprof or version endpoints.
type RouteRegistrar interface {
	RegisterRoutes(engine *gin.Engine, cfg MiddlewareConfig) error
}

type registry struct {
	mu              sync.RWMutex
	factories       map[string]Factory
	routeRegistrars map[string]RouteRegistrar
}

var globalRegistry = &registry{
	factories:       make(map[string]Factory),
	routeRegistrars: make(map[string]RouteRegistrar),
}

// RegisterFactory 注册中间件工厂。
// 通常在各中间件实现包的 init() 函数中调用。
// 如果同名工厂已注册，会触发 panic。
func RegisterFactory(f Factory) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	name := f.Name()
	if _, exists := globalRegistry.factories[name]; exists {
		panic(fmt.Sprintf("middleware factory %q already registered", name))
	}
	globalRegistry.factories[name] = f
}

// MustRegisterFactory 注册中间件工厂（允许覆盖），用于测试场景。
func MustRegisterFactory(f Factory) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.factories[f.Name()] = f
}

// RegisterRouteRegistrar 注册路由注册器。
// 某些中间件需要注册独立路由（如 health、metrics、pprof、version）。
func RegisterRouteRegistrar(name string, r RouteRegistrar) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.routeRegistrars[name] = r
}

// GetFactory 获取中间件工厂。
func GetFactory(name string) (Factory, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	f, ok := globalRegistry.factories[name]
	return f, ok
}

// GetRouteRegistrar 获取路由注册器。
func GetRouteRegistrar(name string) (RouteRegistrar, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	r, ok := globalRegistry.routeRegistrars[name]
	return r, ok
}

// IsFactoryRegistered 检查中间件工厂是否已注册。
func IsFactoryRegistered(name string) bool {
	_, ok := GetFactory(name)
	return ok
}

// ListFactories 返回所有已注册的中间件工厂名称（按字母排序）。
func ListFactories() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.factories))
	for name := range globalRegistry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetRegistry 重置注册器（仅用于测试）。
func ResetRegistry() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.factories = make(map[string]Factory)
	globalRegistry.routeRegistrars = make(map[string]RouteRegistrar)
}

// Config 接口实现断言。
var (
	_ MiddlewareConfig = (*RecoveryOptions)(nil)
	_ MiddlewareConfig = (*RequestIDOptions)(nil)
	_ MiddlewareConfig = (*LoggerOptions)(nil)
	_ MiddlewareConfig = (*CORSOptions)(nil)
	_ MiddlewareConfig = (*TimeoutOptions)(nil)
	_ MiddlewareConfig = (*HealthOptions)(nil)
	_ MiddlewareConfig = (*MetricsOptions)(nil)
	_ MiddlewareConfig = (*PprofOptions)(nil)
	_ MiddlewareConfig = (*VersionOptions)(nil)
	_ MiddlewareConfig = (*BodyLimitOptions)(nil)
	_ MiddlewareConfig = (*CompressionOptions)(nil)
	_ MiddlewareConfig = (*SecurityHeadersOptions)(nil)
	_ MiddlewareConfig = (*RateLimitOptions)(nil)
	_ MiddlewareConfig = (*CircuitBreakerOptions)(nil)
)
