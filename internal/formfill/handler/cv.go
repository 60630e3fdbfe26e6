package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
	"github.com/kart-io/logger"
)

// UploadCV 处理 POST /api/v1/cv，解析并索引一份 CV 文档。
func (h *FormFillHandler) UploadCV(c *gin.Context) {
	var req model.UploadCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindOrValidation(c, err)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		response.Fail(c, errors.ErrFillEmptyDocument)
		return
	}

	mode := model.IndexModeAppend
	if req.Replace {
		mode = model.IndexModeReplace
	}
	if req.Mode != "" {
		parsed, ok := model.ParseIndexMode(req.Mode)
		if !ok {
			response.Fail(c, errors.ErrFillInvalidMode.WithMessage("mode must be APPEND or REPLACE"))
			return
		}
		mode = parsed
	}

	result, err := h.indexer.Index(c.Request.Context(), req.Text, req.SourceID, req.TenantID, mode)
	if err != nil {
		logger.Errorw("CV indexing failed",
			"tenant_id", req.TenantID,
			"source_id", req.SourceID,
			"error", err.Error(),
		)
		response.Fail(c, errors.ErrFillIndexFailed.WithCause(err))
		return
	}

	response.OK(c, &model.UploadCVResponse{
		ChunkNum:  result.ChunkNum,
		Document:  result.Document,
		Unchanged: result.Unchanged,
	})
}
