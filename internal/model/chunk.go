package model

// Chunk is one indexed piece of a CV.
type Chunk struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// SourceID identifies the uploaded document the chunk came from.
	SourceID string `json:"source_id"`

	// TenantID scopes the chunk to one tenant. Applied exactly once, at
	// indexing time.
	TenantID string `json:"tenant_id"`

	// HeadingPath is the markdown heading path of the chunk, up to three
	// levels joined by " > ".
	HeadingPath string `json:"heading_path"`

	// Embedding is the chunk's vector, populated during indexing.
	Embedding []float32 `json:"-"`
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk
	// Score is the similarity score, higher is closer.
	Score float32 `json:"score"`
}
