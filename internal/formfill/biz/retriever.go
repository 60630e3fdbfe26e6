package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/formfill/internal/formfill/metrics"
	"github.com/kart-io/formfill/internal/formfill/store"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/llm"
)

// RetrieverConfig 检索器配置。
type RetrieverConfig struct {
	// TopK 默认返回的结果数量。
	TopK int
}

// Retriever 负责租户范围内的简历块检索。
type Retriever struct {
	store         store.ChunkStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
	metrics       *metrics.FillMetrics
}

// NewRetriever 创建检索器实例。
func NewRetriever(chunkStore store.ChunkStore, embedProvider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	return &Retriever{
		store:         chunkStore,
		embedProvider: embedProvider,
		config:        config,
		metrics:       metrics.GetFillMetrics(),
	}
}

// Query 检索与问题最相似的租户块，结果按相似度排序，长度不超过 k。
// 嵌入或检索失败时降级为空结果而不是返回错误，
// 下游解析在没有上下文的情况下继续进行。
func (r *Retriever) Query(ctx context.Context, text, tenantID string, k int) []*model.ScoredChunk {
	if k <= 0 {
		k = r.config.TopK
	}

	start := time.Now()

	embedding, err := r.embedProvider.EmbedSingle(ctx, text)
	if err != nil {
		logger.Warnw("查询嵌入失败，降级为空上下文",
			"tenant_id", tenantID,
			"error", err.Error(),
		)
		r.metrics.RecordRetrieval(time.Since(start), err)
		return nil
	}

	results, err := r.store.Search(ctx, embedding, tenantID, k)
	if err != nil {
		logger.Warnw("检索失败，降级为空上下文",
			"tenant_id", tenantID,
			"error", err.Error(),
		)
		r.metrics.RecordRetrieval(time.Since(start), err)
		return nil
	}

	r.metrics.RecordRetrieval(time.Since(start), nil)
	return results
}
