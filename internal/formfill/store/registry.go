package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	drivermysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/formfill/internal/model"
	registryopts "github.com/kart-io/formfill/pkg/options/registry"
	"github.com/kart-io/formfill/pkg/utils/id"
)

// GormDocumentRegistry 实现基于 GORM 的文档登记表，
// 默认使用 SQLite，可通过配置切换到 MySQL。
type GormDocumentRegistry struct {
	db    *gorm.DB
	idGen *id.ULIDGenerator
}

// NewDocumentRegistry 按配置创建文档登记表实例并完成建表。
func NewDocumentRegistry(opts *registryopts.Options) (*GormDocumentRegistry, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case registryopts.DriverMySQL:
		dialector = drivermysql.Open(opts.DSN)
	case registryopts.DriverSQLite:
		dialector = sqlite.Open(opts.Path)
	default:
		return nil, fmt.Errorf("unsupported registry driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConnections)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConnections)

	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate registry schema: %w", err)
	}

	return &GormDocumentRegistry{
		db:    db,
		idGen: id.NewULIDGenerator(),
	}, nil
}

// NewDocumentRegistryWithDB 基于已有的 GORM 连接创建登记表实例，主要用于测试。
func NewDocumentRegistryWithDB(db *gorm.DB) (*GormDocumentRegistry, error) {
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate registry schema: %w", err)
	}
	return &GormDocumentRegistry{
		db:    db,
		idGen: id.NewULIDGenerator(),
	}, nil
}

// Save 新建或更新一条文档记录。ID 为空时自动生成。
func (r *GormDocumentRegistry) Save(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = r.idGen.Generate()
	}

	existing, err := r.FindBySource(ctx, doc.TenantID, doc.SourceID)
	if err != nil {
		return err
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
			return fmt.Errorf("failed to update document record: %w", err)
		}
		return nil
	}

	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document record: %w", err)
	}
	return nil
}

// FindBySource 按租户和来源查找文档记录，不存在时返回 (nil, nil)。
func (r *GormDocumentRegistry) FindBySource(ctx context.Context, tenantID, sourceID string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query document record: %w", err)
	}
	return &doc, nil
}

// ListByTenant 列出指定租户的全部文档记录，按创建时间倒序。
func (r *GormDocumentRegistry) ListByTenant(ctx context.Context, tenantID string) ([]*model.Document, error) {
	var docs []*model.Document
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document records: %w", err)
	}
	return docs, nil
}

// DeleteByTenant 删除指定租户的全部文档记录，返回删除条数。
func (r *GormDocumentRegistry) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&model.Document{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete document records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Count 返回文档记录总数。
func (r *GormDocumentRegistry) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Document{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count document records: %w", err)
	}
	return count, nil
}

// Close 关闭数据库连接。
func (r *GormDocumentRegistry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// 确保 GormDocumentRegistry 实现了 DocumentRegistry 接口。
var _ DocumentRegistry = (*GormDocumentRegistry)(nil)
