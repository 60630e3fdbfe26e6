package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
	"github.com/kart-io/logger"
)

// ListDocuments 处理 GET /api/v1/documents?tenant_id=，列出租户已上传的文档。
func (h *FormFillHandler) ListDocuments(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		response.Fail(c, errors.ErrFillInvalidRequest.WithMessage("tenant_id is required"))
		return
	}

	docs, err := h.registry.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		logger.Errorw("failed to list documents", "tenant_id", tenantID, "error", err.Error())
		response.Fail(c, errors.ErrFillRegistryFailed.WithCause(err))
		return
	}

	response.OK(c, &model.ListDocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

// GetDocument 处理 GET /api/v1/documents/:source_id?tenant_id=，
// 返回单个文档的登记记录。
func (h *FormFillHandler) GetDocument(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	sourceID := c.Param("source_id")
	if tenantID == "" {
		response.Fail(c, errors.ErrFillInvalidRequest.WithMessage("tenant_id is required"))
		return
	}

	doc, err := h.registry.FindBySource(c.Request.Context(), tenantID, sourceID)
	if err != nil {
		logger.Errorw("failed to load document", "tenant_id", tenantID, "source_id", sourceID, "error", err.Error())
		response.Fail(c, errors.ErrFillRegistryFailed.WithCause(err))
		return
	}
	if doc == nil {
		response.Fail(c, errors.ErrFillDocumentNotFound)
		return
	}

	response.OK(c, doc)
}

// DeleteTenantChunks 处理 DELETE /api/v1/tenants/:tenant_id/chunks，
// 清除租户的全部向量块与文档登记。
func (h *FormFillHandler) DeleteTenantChunks(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		response.Fail(c, errors.ErrFillInvalidRequest.WithMessage("tenant_id is required"))
		return
	}

	if err := h.indexer.DeleteTenant(c.Request.Context(), tenantID); err != nil {
		logger.Errorw("failed to delete tenant chunks", "tenant_id", tenantID, "error", err.Error())
		response.Fail(c, errors.ErrFillIndexFailed.WithCause(err))
		return
	}

	response.OK(c, &model.DeleteChunksResponse{TenantID: tenantID})
}
