package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/internal/formfill/store"
	"github.com/kart-io/formfill/pkg/infra/app"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// ProviderPinger 是可探活的 LLM 供应商。
type ProviderPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 提供存活与就绪探针。
type HealthHandler struct {
	chunkStore store.ChunkStore
	redis      *goredis.Client
	provider   ProviderPinger
}

// NewHealthHandler 创建健康检查处理器。redis 未启用时传 nil，就绪检查会跳过它。
func NewHealthHandler(chunkStore store.ChunkStore, redis *goredis.Client) *HealthHandler {
	return &HealthHandler{
		chunkStore: chunkStore,
		redis:      redis,
	}
}

// SetProviderPinger 绑定 LLM 供应商连通性检查。未绑定时就绪检查跳过 LLM。
func (h *HealthHandler) SetProviderPinger(p ProviderPinger) {
	h.provider = p
}

// Healthz 处理 GET /healthz，进程存活即返回 ok。
func (h *HealthHandler) Healthz(c *gin.Context) {
	response.OK(c, gin.H{"status": "ok", "version": app.GetVersion()})
}

// Readyz 处理 GET /readyz，逐项探测向量存储与 Redis。
// 任一依赖不可达时返回 503。
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}

	if _, err := h.chunkStore.Stats(ctx); err != nil {
		logger.Warnw("readiness check failed: vector store unreachable", "error", err.Error())
		checks["milvus"] = "unreachable"
		response.Fail(c, errors.ErrFillStoreUnavailable)
		return
	}
	checks["milvus"] = "ok"

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			logger.Warnw("readiness check failed: redis unreachable", "error", err.Error())
			checks["redis"] = "unreachable"
			response.Fail(c, errors.ErrFillStoreUnavailable.WithMessage("redis unreachable"))
			return
		}
		checks["redis"] = "ok"
	}

	if h.provider != nil {
		if err := h.provider.Ping(ctx); err != nil {
			logger.Warnw("readiness check failed: llm provider unreachable", "error", err.Error())
			checks["llm"] = "unreachable"
			response.Fail(c, errors.ErrFillProviderUnavailable)
			return
		}
		checks["llm"] = "ok"
	}

	response.OK(c, gin.H{"status": "ready", "checks": checks})
}
