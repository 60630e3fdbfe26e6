// Package router provides form-fill service routing.
package router

import (
	"github.com/kart-io/formfill/internal/formfill/handler"
	"github.com/kart-io/formfill/pkg/infra/server"
	"github.com/kart-io/logger"
)

// Register registers the form-fill service routes.
func Register(mgr *server.Manager, fillHandler *handler.FormFillHandler, healthHandler *handler.HealthHandler) error {
	logger.Info("Registering form-fill routes...")

	httpServer := mgr.HTTPServer()
	if httpServer == nil {
		return nil
	}

	engine := httpServer.Engine()

	// Liveness / readiness probes
	engine.GET("/healthz", healthHandler.Healthz)
	engine.GET("/readyz", healthHandler.Readyz)

	v1 := engine.Group("/api/v1")
	{
		// CV 上传与索引
		v1.POST("/cv", fillHandler.UploadCV)

		// 表单填充
		v1.POST("/fill", fillHandler.Fill)

		// 文档管理
		v1.GET("/documents", fillHandler.ListDocuments)
		v1.GET("/documents/:source_id", fillHandler.GetDocument)
		v1.DELETE("/tenants/:tenant_id/chunks", fillHandler.DeleteTenantChunks)

		// 服务统计
		v1.GET("/stats", fillHandler.Stats)
	}

	logger.Info("HTTP routes registered")
	return nil
}
