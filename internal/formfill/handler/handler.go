// Package handler 提供表单填充服务的 HTTP 处理器。
package handler

import (
	"github.com/kart-io/formfill/internal/formfill/biz"
	"github.com/kart-io/formfill/internal/formfill/metrics"
	"github.com/kart-io/formfill/internal/formfill/store"
)

// FormFillHandler 处理 CV 上传、表单填充与文档管理请求。
type FormFillHandler struct {
	indexer    *biz.Indexer
	pipeline   *biz.Pipeline
	registry   store.DocumentRegistry
	chunkStore store.ChunkStore
	cache      *biz.ResolutionCache
	metrics    *metrics.FillMetrics
}

// NewFormFillHandler 创建表单填充处理器。
func NewFormFillHandler(
	indexer *biz.Indexer,
	pipeline *biz.Pipeline,
	registry store.DocumentRegistry,
	chunkStore store.ChunkStore,
	cache *biz.ResolutionCache,
) *FormFillHandler {
	return &FormFillHandler{
		indexer:    indexer,
		pipeline:   pipeline,
		registry:   registry,
		chunkStore: chunkStore,
		cache:      cache,
		metrics:    metrics.GetFillMetrics(),
	}
}
