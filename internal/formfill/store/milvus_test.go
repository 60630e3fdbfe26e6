package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/formfill/pkg/component/milvus"
)

func TestScoredFromHits(t *testing.T) {
	hits := []milvus.SearchResult{
		{
			ID:    1,
			Score: 0.92,
			Metadata: map[string]any{
				"tenant_id":    "tenant-acme",
				"source_id":    "resume-wei.pdf",
				"heading_path": "工作经历 > 全栈工程师",
				"text":         "负责表单自动填充服务的检索链路",
			},
		},
		{
			ID:    2,
			Score: 0.71,
			// 缺失的元数据字段映射为空串而不是 panic
			Metadata: map[string]any{
				"tenant_id": "tenant-acme",
				"text":      "五年 Go 后端开发经验",
			},
		},
	}

	scored := scoredFromHits(hits)

	assert.Len(t, scored, 2)
	assert.InDelta(t, 0.92, scored[0].Score, 1e-6)
	assert.Equal(t, "tenant-acme", scored[0].TenantID)
	assert.Equal(t, "resume-wei.pdf", scored[0].SourceID)
	assert.Equal(t, "工作经历 > 全栈工程师", scored[0].HeadingPath)
	assert.Equal(t, "负责表单自动填充服务的检索链路", scored[0].Text)

	assert.Equal(t, "", scored[1].SourceID)
	assert.Equal(t, "", scored[1].HeadingPath)
	assert.Equal(t, "五年 Go 后端开发经验", scored[1].Text)
}

func TestScoredFromHitsEmpty(t *testing.T) {
	assert.Empty(t, scoredFromHits(nil))
}

func TestCollectionSchemaFilterableFields(t *testing.T) {
	s := NewMilvusChunkStore(nil, &CollectionConfig{
		Name:      "cv_chunks",
		Dimension: 1536,
	})

	schema := s.collectionSchema()

	filterable := map[string]bool{}
	for _, f := range schema.MetaFields {
		filterable[f.Name] = f.Filterable
	}

	assert.True(t, filterable["tenant_id"], "tenant_id must carry a scalar index for filtered search")
	assert.True(t, filterable["source_id"], "source_id must carry a scalar index for expression deletes")
	assert.True(t, filterable["heading_path"], "heading_path must carry a scalar index")
	assert.False(t, filterable["text"], "chunk text is payload, not a filter target")
}

func TestTenantFilterEscaping(t *testing.T) {
	tests := []struct {
		name     string
		tenantID string
		want     string
	}{
		{"plain", "tenant-acme", `tenant_id == "tenant-acme"`},
		{"embedded quote", `t"x`, `tenant_id == "t\"x"`},
		{"backslash", `t\x`, `tenant_id == "t\\x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tenantFilter(tt.tenantID))
		})
	}
}
