package store

import (
	"context"

	"github.com/kart-io/formfill/internal/model"
)

// CollectionConfig 向量集合配置。
type CollectionConfig struct {
	// Name 集合名称。
	Name string
	// Description 集合描述。
	Description string
	// Dimension 向量维度。
	Dimension int
}

// ChunkStore 定义简历块向量存储接口。
// 所有读写都以租户为边界：检索与删除只作用于指定租户的块。
type ChunkStore interface {
	// EnsureCollection 创建集合（已存在时幂等返回）。
	EnsureCollection(ctx context.Context) error

	// Insert 批量插入简历块。
	Insert(ctx context.Context, chunks []*model.Chunk) ([]int64, error)

	// Search 在指定租户的块内执行向量相似度搜索。
	Search(ctx context.Context, embedding []float32, tenantID string, topK int) ([]*model.ScoredChunk, error)

	// DeleteByTenant 删除指定租户的全部块。
	DeleteByTenant(ctx context.Context, tenantID string) error

	// Stats 返回集合内的块总数。
	Stats(ctx context.Context) (int64, error)

	// Close 关闭连接。
	Close(ctx context.Context) error
}

// DocumentRegistry 定义文档登记表接口。
// 登记表记录每个租户已索引的简历来源及其内容哈希，
// 用于重复上传去重和文档列表查询。
type DocumentRegistry interface {
	// Save 新建或更新一条文档记录（按租户 + 来源唯一）。
	Save(ctx context.Context, doc *model.Document) error

	// FindBySource 按租户和来源查找文档记录，不存在时返回 (nil, nil)。
	FindBySource(ctx context.Context, tenantID, sourceID string) (*model.Document, error)

	// ListByTenant 列出指定租户的全部文档记录。
	ListByTenant(ctx context.Context, tenantID string) ([]*model.Document, error)

	// DeleteByTenant 删除指定租户的全部文档记录，返回删除条数。
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)

	// Count 返回文档记录总数。
	Count(ctx context.Context) (int64, error)

	// Close 关闭数据库连接。
	Close() error
}
