package model

import "strings"

// IndexMode controls how an upload interacts with the tenant's existing chunks.
type IndexMode string

const (
	// IndexModeAppend adds chunks alongside existing ones.
	IndexModeAppend IndexMode = "APPEND"
	// IndexModeReplace drops the tenant's existing chunks before writing.
	IndexModeReplace IndexMode = "REPLACE"
)

// ParseIndexMode maps a request mode string onto an IndexMode.
// Matching is case-insensitive; unknown values return ok=false.
func ParseIndexMode(s string) (IndexMode, bool) {
	switch strings.ToUpper(s) {
	case string(IndexModeAppend):
		return IndexModeAppend, true
	case string(IndexModeReplace):
		return IndexModeReplace, true
	default:
		return "", false
	}
}

// UploadCVRequest is the body of POST /api/v1/cv.
type UploadCVRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	SourceID string `json:"source_id" binding:"required"`
	// Text 为空由 handler 单独校验，以便返回专用错误码。
	Text string `json:"text"`
	// Mode is an explicit indexing mode ("APPEND" or "REPLACE").
	// Takes precedence over Replace when set.
	Mode string `json:"mode,omitempty"`
	// Replace maps to REPLACE indexing mode.
	Replace bool `json:"replace"`
}

// UploadCVResponse reports the outcome of a CV upload.
type UploadCVResponse struct {
	ChunkNum int       `json:"chunk_num"`
	Document *Document `json:"document"`
	// Unchanged 表示内容哈希未变化，本次上传被跳过。
	Unchanged bool `json:"unchanged,omitempty"`
}

// FillRequest is the body of POST /api/v1/fill.
type FillRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	// Fields 为空由 handler 单独校验，以便返回专用错误码。
	Fields []Field `json:"fields"`
}

// FillResponse carries the synthesized actions in input field order plus
// per-field outcome counters.
type FillResponse struct {
	Actions  []*Action `json:"actions"`
	Resolved int       `json:"resolved"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// ListDocumentsResponse is the body of GET /api/v1/documents.
type ListDocumentsResponse struct {
	Documents []*Document `json:"documents"`
	Total     int         `json:"total"`
}

// DeleteChunksResponse reports a tenant chunk purge.
type DeleteChunksResponse struct {
	TenantID string `json:"tenant_id"`
}
