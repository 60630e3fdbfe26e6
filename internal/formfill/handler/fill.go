package handler

import (
	"context"
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
	"github.com/kart-io/logger"
)

// Fill 处理 POST /api/v1/fill，对一页表单字段执行解析并返回动作列表。
// 单个字段失败只计入 failed，不会中断整页处理。
func (h *FormFillHandler) Fill(c *gin.Context) {
	var req model.FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindOrValidation(c, err)
		return
	}

	if len(req.Fields) == 0 {
		response.Fail(c, errors.ErrFillNoFields)
		return
	}

	fields := make([]*model.Field, len(req.Fields))
	for i := range req.Fields {
		fields[i] = &req.Fields[i]
	}

	result, err := h.pipeline.Run(c.Request.Context(), req.TenantID, fields)
	if err != nil {
		logger.Errorw("form fill failed",
			"tenant_id", req.TenantID,
			"fields", len(req.Fields),
			"error", err.Error(),
		)
		if stderrors.Is(err, context.DeadlineExceeded) {
			response.Fail(c, errors.ErrFillResolveTimeout.WithCause(err))
			return
		}
		response.Fail(c, errors.ErrFillResolveFailed.WithCause(err))
		return
	}

	response.OK(c, &model.FillResponse{
		Actions:  result.Actions,
		Resolved: result.Resolved,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
	})
}
