package biz

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kart-io/logger"

	"github.com/kart-io/formfill/internal/formfill/metrics"
	"github.com/kart-io/formfill/internal/formfill/store"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/internal/pkg/formfill/textutil"
	"github.com/kart-io/formfill/pkg/infra/tracing"
	"github.com/kart-io/formfill/pkg/llm"
)

// minChunkLen 过滤掉过短的无信息块。
const minChunkLen = 20

// IndexerConfig 索引器配置。
type IndexerConfig struct {
	// ChunkSize 文本块目标大小（Unicode 字符数）。
	ChunkSize int
	// ChunkOverlap 相邻块之间的重叠大小。
	ChunkOverlap int
}

// IndexResult 一次索引操作的结果。
type IndexResult struct {
	// ChunkNum 本次写入（或已存在）的块数量。
	ChunkNum int
	// Document 对应的文档登记记录。
	Document *model.Document
	// Unchanged 内容哈希与已有记录相同，本次为空操作。
	Unchanged bool
}

// Indexer 负责简历文本的分块、嵌入与入库。
// 同一租户的索引操作串行执行，APPEND 与 REPLACE 不会交错。
type Indexer struct {
	store         store.ChunkStore
	registry      store.DocumentRegistry
	embedProvider llm.EmbeddingProvider
	config        *IndexerConfig
	metrics       *metrics.FillMetrics
	cache         *ResolutionCache

	// tenantLocks 每租户一把互斥锁
	tenantLocks sync.Map
}

// NewIndexer 创建索引器实例。
func NewIndexer(chunkStore store.ChunkStore, registry store.DocumentRegistry, embedProvider llm.EmbeddingProvider, config *IndexerConfig) *Indexer {
	return &Indexer{
		store:         chunkStore,
		registry:      registry,
		embedProvider: embedProvider,
		config:        config,
		metrics:       metrics.GetFillMetrics(),
	}
}

// SetResolutionCache 绑定解析缓存。绑定后 REPLACE 与租户删除
// 会同步清除该租户的缓存条目。
func (i *Indexer) SetResolutionCache(cache *ResolutionCache) {
	i.cache = cache
}

// Index 索引一份简历文本。
// APPEND 模式保留租户已有的块；REPLACE 模式先删除租户全部块再写入。
// APPEND 模式下重复上传相同内容（哈希一致）是空操作。
func (i *Indexer) Index(ctx context.Context, text, sourceID, tenantID string, mode model.IndexMode) (*IndexResult, error) {
	ctx, span := tracing.StartSpan(ctx, "formfill.indexer", "index-document")
	defer span.End()
	tracing.AddSpanAttributes(ctx,
		tracing.String(tracing.TenantID, tenantID),
		tracing.String(tracing.SourceID, sourceID),
	)

	mu := i.tenantLock(tenantID)
	mu.Lock()
	defer mu.Unlock()

	hash := textutil.HashContent(text)

	if mode == model.IndexModeAppend {
		existing, err := i.registry.FindBySource(ctx, tenantID, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing document: %w", err)
		}
		if existing != nil && existing.Hash == hash {
			logger.Infow("document unchanged, skipping indexing",
				"tenant_id", tenantID,
				"source_id", sourceID,
			)
			return &IndexResult{
				ChunkNum:  existing.ChunkNum,
				Document:  existing,
				Unchanged: true,
			}, nil
		}
	}

	if err := i.store.EnsureCollection(ctx); err != nil {
		i.metrics.RecordIndexing(0, 0, err)
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	if mode == model.IndexModeReplace {
		if err := i.store.DeleteByTenant(ctx, tenantID); err != nil {
			i.metrics.RecordIndexing(0, 0, err)
			return nil, fmt.Errorf("failed to drop tenant chunks: %w", err)
		}
		// 块已删除，其它来源的登记哈希随之失效，否则后续 APPEND
		// 重传未变更的文档会被哈希短路而丢失内容。
		if _, err := i.registry.DeleteByTenant(ctx, tenantID); err != nil {
			i.metrics.RecordIndexing(0, 0, err)
			return nil, fmt.Errorf("failed to drop tenant document records: %w", err)
		}
		i.invalidateTenant(ctx, tenantID)
		logger.Infow("dropped existing tenant chunks", "tenant_id", tenantID)
	}

	chunks := i.parseAndChunk(text, sourceID, tenantID)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for idx, chunk := range chunks {
			texts[idx] = chunk.Text
		}

		embeddings, err := i.embedProvider.Embed(ctx, texts)
		if err != nil {
			i.metrics.RecordIndexing(0, 0, err)
			i.recordFailure(ctx, tenantID, sourceID, hash)
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}

		for idx, chunk := range chunks {
			chunk.Embedding = embeddings[idx]
		}

		if _, err := i.store.Insert(ctx, chunks); err != nil {
			i.metrics.RecordIndexing(0, 0, err)
			i.recordFailure(ctx, tenantID, sourceID, hash)
			return nil, fmt.Errorf("failed to insert chunks: %w", err)
		}
	}

	doc := &model.Document{
		TenantID: tenantID,
		SourceID: sourceID,
		Hash:     hash,
		ChunkNum: len(chunks),
		Status:   model.DocumentStatusIndexed,
	}
	if err := i.registry.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	i.metrics.RecordIndexing(1, len(chunks), nil)
	tracing.AddSpanAttributes(ctx, tracing.Int(tracing.ChunkCount, len(chunks)))
	logger.Infow("document indexed",
		"tenant_id", tenantID,
		"source_id", sourceID,
		"mode", string(mode),
		"chunks", len(chunks),
	)

	return &IndexResult{ChunkNum: len(chunks), Document: doc}, nil
}

// DeleteTenant 删除租户的全部块与文档记录。
func (i *Indexer) DeleteTenant(ctx context.Context, tenantID string) error {
	mu := i.tenantLock(tenantID)
	mu.Lock()
	defer mu.Unlock()

	if err := i.store.DeleteByTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to delete tenant chunks: %w", err)
	}

	deleted, err := i.registry.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete document records: %w", err)
	}
	i.invalidateTenant(ctx, tenantID)

	logger.Infow("tenant data deleted", "tenant_id", tenantID, "documents", deleted)
	return nil
}

// invalidateTenant 尽力清除租户的解析缓存，失败只记日志不中断索引。
func (i *Indexer) invalidateTenant(ctx context.Context, tenantID string) {
	if i.cache == nil {
		return
	}
	if err := i.cache.ClearTenant(ctx, tenantID); err != nil {
		logger.Warnw("failed to clear tenant resolution cache", "tenant_id", tenantID, "error", err.Error())
	}
}

// parseAndChunk 两遍分块：先按标题切分保留标题路径，
// 再对超长段落做带重叠的定长切分。租户标签仅在此处附加一次。
func (i *Indexer) parseAndChunk(text, sourceID, tenantID string) []*model.Chunk {
	var chunks []*model.Chunk

	sections := textutil.SplitMarkdownSections(text)
	for _, section := range sections {
		pieces := textutil.SplitIntoChunks(section.Content, i.config.ChunkSize, i.config.ChunkOverlap)
		for _, piece := range pieces {
			if len(strings.TrimSpace(piece)) < minChunkLen {
				continue
			}
			chunks = append(chunks, &model.Chunk{
				Text:        textutil.TruncateString(piece, 65000),
				SourceID:    sourceID,
				TenantID:    tenantID,
				HeadingPath: textutil.TruncateString(section.HeadingPath, 500),
			})
		}
	}

	return chunks
}

// recordFailure 尽力把失败状态写入登记表。
func (i *Indexer) recordFailure(ctx context.Context, tenantID, sourceID, hash string) {
	doc := &model.Document{
		TenantID: tenantID,
		SourceID: sourceID,
		Hash:     hash,
		Status:   model.DocumentStatusFailed,
	}
	if err := i.registry.Save(ctx, doc); err != nil {
		logger.Warnw("failed to record indexing failure", "tenant_id", tenantID, "source_id", sourceID, "error", err.Error())
	}
}

func (i *Indexer) tenantLock(tenantID string) *sync.Mutex {
	v, _ := i.tenantLocks.LoadOrStore(tenantID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
