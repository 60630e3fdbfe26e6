package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/component/milvus"
)

// MilvusChunkStore 实现基于 Milvus 的简历块存储。
type MilvusChunkStore struct {
	client *milvus.Client
	config *CollectionConfig
}

// NewMilvusChunkStore 创建 Milvus 块存储实例。
func NewMilvusChunkStore(client *milvus.Client, config *CollectionConfig) *MilvusChunkStore {
	return &MilvusChunkStore{
		client: client,
		config: config,
	}
}

// EnsureCollection 创建简历块集合（已存在时幂等返回）。
func (s *MilvusChunkStore) EnsureCollection(ctx context.Context) error {
	return s.client.CreateCollection(ctx, s.collectionSchema())
}

// collectionSchema 返回简历块集合的模式定义。
// 租户、来源与标题路径字段带标量索引，支撑过滤检索与按表达式删除。
func (s *MilvusChunkStore) collectionSchema() *milvus.CollectionSchema {
	return &milvus.CollectionSchema{
		Name:        s.config.Name,
		Description: s.config.Description,
		Dimension:   s.config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "tenant_id", DataType: entity.FieldTypeVarChar, MaxLen: 64, Filterable: true},
			{Name: "source_id", DataType: entity.FieldTypeVarChar, MaxLen: 255, Filterable: true},
			{Name: "heading_path", DataType: entity.FieldTypeVarChar, MaxLen: 512, Filterable: true},
			{Name: "text", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
}

// Insert 批量插入简历块。
func (s *MilvusChunkStore) Insert(ctx context.Context, chunks []*model.Chunk) ([]int64, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"tenant_id":    make([]any, len(chunks)),
		"source_id":    make([]any, len(chunks)),
		"heading_path": make([]any, len(chunks)),
		"text":         make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["tenant_id"][i] = chunk.TenantID
		metadata["source_id"][i] = chunk.SourceID
		metadata["heading_path"][i] = chunk.HeadingPath
		metadata["text"][i] = chunk.Text
	}

	data := &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	ids, err := s.client.Insert(ctx, s.config.Name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into milvus: %w", err)
	}

	return ids, nil
}

// Search 在指定租户的块内执行向量相似度搜索。
// 租户隔离通过过滤表达式实现。
func (s *MilvusChunkStore) Search(ctx context.Context, embedding []float32, tenantID string, topK int) ([]*model.ScoredChunk, error) {
	outputFields := []string{"tenant_id", "source_id", "heading_path", "text"}

	hits, err := s.client.Search(ctx, s.config.Name, embedding, topK, tenantFilter(tenantID), outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search with tenant filter: %w", err)
	}

	return scoredFromHits(hits), nil
}

// scoredFromHits 将 Milvus 命中结果映射为带评分的简历块。
func scoredFromHits(hits []milvus.SearchResult) []*model.ScoredChunk {
	scored := make([]*model.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		scored = append(scored, &model.ScoredChunk{
			Score: hit.Score,
			Chunk: model.Chunk{
				TenantID:    metaString(hit.Metadata, "tenant_id"),
				SourceID:    metaString(hit.Metadata, "source_id"),
				HeadingPath: metaString(hit.Metadata, "heading_path"),
				Text:        metaString(hit.Metadata, "text"),
			},
		})
	}
	return scored
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// DeleteByTenant 删除指定租户的全部块。
func (s *MilvusChunkStore) DeleteByTenant(ctx context.Context, tenantID string) error {
	if err := s.client.DeleteByExpr(ctx, s.config.Name, tenantFilter(tenantID)); err != nil {
		return fmt.Errorf("failed to delete tenant chunks: %w", err)
	}
	return nil
}

// Stats 返回集合内的块总数。
func (s *MilvusChunkStore) Stats(ctx context.Context) (int64, error) {
	return s.client.GetCollectionStats(ctx, s.config.Name)
}

// Close 关闭 Milvus 连接。
func (s *MilvusChunkStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

var exprEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// tenantFilter 构建租户过滤表达式，对值做转义防止表达式注入。
func tenantFilter(tenantID string) string {
	return fmt.Sprintf(`tenant_id == "%s"`, exprEscaper.Replace(tenantID))
}

// 确保 MilvusChunkStore 实现了 ChunkStore 接口。
var _ ChunkStore = (*MilvusChunkStore)(nil)
