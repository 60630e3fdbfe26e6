package biz_test

import (
	"context"
	"strings"
	"sync"

	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/llm"
)

// fakeEmbedder 返回固定向量的 Embedding 供应商。
type fakeEmbedder struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, 0, 0}
	}
	return embeddings, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeChat 按问题子串匹配返回预设回答，未命中时返回 SKIP。
type fakeChat struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	prompts []string
}

func (f *fakeChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return "", nil
}

func (f *fakeChat) Generate(_ context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	for question, answer := range f.answers {
		if strings.Contains(prompt, question) {
			return &llm.GenerateResponse{
				Content:    answer,
				TokenUsage: &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			}, nil
		}
	}
	return &llm.GenerateResponse{Content: model.SkipValue}, nil
}

func (f *fakeChat) Name() string { return "fake" }

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeChat) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeChunkStore 内存块存储，按租户过滤。
type fakeChunkStore struct {
	mu          sync.Mutex
	chunks      []*model.Chunk
	ensureCalls int
	deleted     []string
	insertErr   error
	searchErr   error
}

func (f *fakeChunkStore) EnsureCollection(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	return nil
}

func (f *fakeChunkStore) Insert(_ context.Context, chunks []*model.Chunk) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	ids := make([]int64, len(chunks))
	for i, chunk := range chunks {
		f.chunks = append(f.chunks, chunk)
		ids[i] = int64(len(f.chunks))
	}
	return ids, nil
}

func (f *fakeChunkStore) Search(_ context.Context, _ []float32, tenantID string, topK int) ([]*model.ScoredChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var results []*model.ScoredChunk
	for _, chunk := range f.chunks {
		if chunk.TenantID != tenantID {
			continue
		}
		results = append(results, &model.ScoredChunk{Chunk: *chunk, Score: 0.1})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

func (f *fakeChunkStore) DeleteByTenant(_ context.Context, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, tenantID)
	kept := f.chunks[:0]
	for _, chunk := range f.chunks {
		if chunk.TenantID != tenantID {
			kept = append(kept, chunk)
		}
	}
	f.chunks = kept
	return nil
}

func (f *fakeChunkStore) Stats(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.chunks)), nil
}

func (f *fakeChunkStore) Close(_ context.Context) error { return nil }

func (f *fakeChunkStore) tenantChunks(tenantID string) []*model.Chunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Chunk
	for _, chunk := range f.chunks {
		if chunk.TenantID == tenantID {
			out = append(out, chunk)
		}
	}
	return out
}

// fakeRegistry 内存文档登记表。
type fakeRegistry struct {
	mu   sync.Mutex
	docs map[string]*model.Document
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: make(map[string]*model.Document)}
}

func registryKey(tenantID, sourceID string) string {
	return tenantID + "\x00" + sourceID
}

func (f *fakeRegistry) Save(_ context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.ID == "" {
		doc.ID = "01HTESTDOC0000000000000000"
	}
	copied := *doc
	f.docs[registryKey(doc.TenantID, doc.SourceID)] = &copied
	return nil
}

func (f *fakeRegistry) FindBySource(_ context.Context, tenantID, sourceID string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[registryKey(tenantID, sourceID)]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeRegistry) ListByTenant(_ context.Context, tenantID string) ([]*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Document
	for _, doc := range f.docs {
		if doc.TenantID == tenantID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRegistry) DeleteByTenant(_ context.Context, tenantID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for key, doc := range f.docs {
		if doc.TenantID == tenantID {
			delete(f.docs, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeRegistry) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

func (f *fakeRegistry) Close() error { return nil }
