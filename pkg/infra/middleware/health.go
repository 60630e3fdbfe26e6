package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// HealthStatus 健康状态。
type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "UP"
	HealthStatusDown HealthStatus = "DOWN"
)

// HealthResponse 健康检查响应体。
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
	Version string                 `json:"version,omitempty"`
}

// CheckResult 单项检查结果。
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker 执行一项健康检查，返回 nil 表示健康。
type HealthChecker func() error

// HealthManager 聚合命名的健康检查并维护就绪状态。
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	ready    bool
	version  string
}

// NewHealthManager 创建健康管理器，初始为就绪。
func NewHealthManager() *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		ready:    true,
	}
}

var globalHealthManager = NewHealthManager()

// GetHealthManager 返回进程级健康管理器。
func GetHealthManager() *HealthManager {
	return globalHealthManager
}

// SetVersion 设置响应中携带的服务版本。
func (h *HealthManager) SetVersion(version string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version = version
}

// RegisterChecker 注册命名检查项，同名覆盖。
func (h *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// SetReady 更新就绪状态。
func (h *HealthManager) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady 返回就绪状态。
func (h *HealthManager) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Check 执行全部检查项，任一失败则整体状态为 DOWN。
func (h *HealthManager) Check() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := HealthResponse{
		Status:  HealthStatusUp,
		Version: h.version,
	}
	if len(h.checkers) == 0 {
		return resp
	}

	resp.Checks = make(map[string]CheckResult, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker(); err != nil {
			resp.Status = HealthStatusDown
			resp.Checks[name] = CheckResult{Status: HealthStatusDown, Message: err.Error()}
			continue
		}
		resp.Checks[name] = CheckResult{Status: HealthStatusUp}
	}

	return resp
}

func writeHealth(c *gin.Context, resp HealthResponse) {
	status := http.StatusOK
	if resp.Status == HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// RegisterHealthRoutesWithOptions 按配置注册健康检查端点。
// checker 为可选的自定义检查函数，注入运行时依赖：
//
//	opts := mwopts.NewHealthOptions()
//	RegisterHealthRoutesWithOptions(engine, *opts, func() error {
//	    return store.Ping(context.Background())
//	})
func RegisterHealthRoutesWithOptions(engine *gin.Engine, opts mwopts.HealthOptions, checker func() error) {
	manager := GetHealthManager()

	if checker != nil {
		manager.RegisterChecker("custom", checker)
	}

	if opts.Path != "" {
		engine.GET(opts.Path, func(c *gin.Context) {
			writeHealth(c, manager.Check())
		})
	}

	// liveness 只反映进程存活
	if opts.LivenessPath != "" {
		engine.GET(opts.LivenessPath, func(c *gin.Context) {
			c.JSON(http.StatusOK, HealthResponse{Status: HealthStatusUp})
		})
	}

	// readiness 在未就绪时直接返回 DOWN，不执行检查项
	if opts.ReadinessPath != "" {
		engine.GET(opts.ReadinessPath, func(c *gin.Context) {
			if !manager.IsReady() {
				c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: HealthStatusDown})
				return
			}
			writeHealth(c, manager.Check())
		})
	}
}
