package model

import (
	"time"
)

// Document status values.
const (
	DocumentStatusPending = "pending"
	DocumentStatusIndexed = "indexed"
	DocumentStatusFailed  = "failed"
)

// Document records one uploaded CV in the document registry.
type Document struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_tenant_source"`
	SourceID  string    `json:"source_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_source"`
	Hash      string    `json:"hash" gorm:"type:varchar(64);index"` // Content hash for deduplication
	ChunkNum  int       `json:"chunk_num" gorm:"default:0"`
	Status    string    `json:"status" gorm:"type:varchar(32);default:'pending'"` // pending, indexed, failed
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "formfill_documents"
}
