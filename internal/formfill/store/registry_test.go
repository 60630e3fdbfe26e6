package store_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/formfill/internal/formfill/store"
	"github.com/kart-io/formfill/internal/model"
)

func setupRegistry(t *testing.T) *store.GormDocumentRegistry {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	reg, err := store.NewDocumentRegistryWithDB(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = reg.Close()
	})

	return reg
}

func TestRegistrySaveGeneratesID(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	doc := &model.Document{
		TenantID: "tenant-a",
		SourceID: "cv.md",
		Hash:     "abc123",
		ChunkNum: 5,
		Status:   model.DocumentStatusIndexed,
	}

	require.NoError(t, reg.Save(ctx, doc))
	assert.Len(t, doc.ID, 26)
}

func TestRegistrySaveUpsertsBySource(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	first := &model.Document{
		TenantID: "tenant-a",
		SourceID: "cv.md",
		Hash:     "hash-v1",
		ChunkNum: 3,
		Status:   model.DocumentStatusIndexed,
	}
	require.NoError(t, reg.Save(ctx, first))

	// 相同租户 + 来源的再次保存应更新原记录而非新建
	second := &model.Document{
		TenantID: "tenant-a",
		SourceID: "cv.md",
		Hash:     "hash-v2",
		ChunkNum: 7,
		Status:   model.DocumentStatusIndexed,
	}
	require.NoError(t, reg.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	found, err := reg.FindBySource(ctx, "tenant-a", "cv.md")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "hash-v2", found.Hash)
	assert.Equal(t, 7, found.ChunkNum)

	count, err := reg.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegistryFindBySourceNotFound(t *testing.T) {
	reg := setupRegistry(t)

	found, err := reg.FindBySource(context.Background(), "tenant-a", "missing.md")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRegistryListByTenant(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	docs := []*model.Document{
		{TenantID: "tenant-a", SourceID: "cv1.md", Hash: "h1", Status: model.DocumentStatusIndexed},
		{TenantID: "tenant-a", SourceID: "cv2.md", Hash: "h2", Status: model.DocumentStatusIndexed},
		{TenantID: "tenant-b", SourceID: "cv1.md", Hash: "h3", Status: model.DocumentStatusIndexed},
	}
	for _, doc := range docs {
		require.NoError(t, reg.Save(ctx, doc))
	}

	listed, err := reg.ListByTenant(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	for _, doc := range listed {
		assert.Equal(t, "tenant-a", doc.TenantID)
	}
}

func TestRegistryDeleteByTenant(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Save(ctx, &model.Document{TenantID: "tenant-a", SourceID: "cv1.md", Hash: "h1"}))
	require.NoError(t, reg.Save(ctx, &model.Document{TenantID: "tenant-a", SourceID: "cv2.md", Hash: "h2"}))
	require.NoError(t, reg.Save(ctx, &model.Document{TenantID: "tenant-b", SourceID: "cv1.md", Hash: "h3"}))

	deleted, err := reg.DeleteByTenant(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := reg.ListByTenant(ctx, "tenant-b")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
