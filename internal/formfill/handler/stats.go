package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/pkg/infra/app"
	"github.com/kart-io/formfill/pkg/utils/response"
	"github.com/kart-io/logger"
)

// Stats 处理 GET /api/v1/stats，聚合进程内计数器、向量存储与缓存状态。
// 外部依赖不可用时对应分区降级为 available=false，不使整个接口失败。
func (h *FormFillHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := h.metrics.Stats()

	info := app.GetVersionInfo()
	stats["build"] = map[string]interface{}{
		"version":    info.GitVersion,
		"commit":     info.GitCommit,
		"go_version": info.GoVersion,
	}

	storeStats := map[string]interface{}{"available": true}
	if rows, err := h.chunkStore.Stats(ctx); err != nil {
		logger.Warnw("chunk store stats unavailable", "error", err.Error())
		storeStats["available"] = false
	} else {
		storeStats["row_count"] = rows
	}
	stats["store"] = storeStats

	registryStats := map[string]interface{}{"available": true}
	if count, err := h.registry.Count(ctx); err != nil {
		logger.Warnw("document registry stats unavailable", "error", err.Error())
		registryStats["available"] = false
	} else {
		registryStats["document_count"] = count
	}
	stats["registry"] = registryStats

	if h.cache != nil {
		cacheStats, err := h.cache.Stats(ctx)
		if err != nil {
			logger.Warnw("resolution cache stats unavailable", "error", err.Error())
			cacheStats = map[string]interface{}{"enabled": h.cache.Enabled(), "available": false}
		}
		stats["resolution_cache"] = cacheStats
	}

	response.OK(c, stats)
}
