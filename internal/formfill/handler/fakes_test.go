package handler_test

import (
	"context"
	"strings"
	"sync"

	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/llm"
)

// fakeEmbedder 返回固定向量的 Embedding 供应商。
type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
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

// fakeChat 按问题子串匹配返回预设回答，未命中时返回 SKIP。
type fakeChat struct {
	mu      sync.Mutex
	answers map[string]string
}

func (f *fakeChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return "", nil
}

func (f *fakeChat) Generate(_ context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

// fakePinger 可注入失败的 LLM 供应商探针。
type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// fakeChunkStore 内存块存储，按租户过滤。
type fakeChunkStore struct {
	mu       sync.Mutex
	chunks   []*model.Chunk
	deleted  []string
	statsErr error
}

func (f *fakeChunkStore) EnsureCollection(_ context.Context) error { return nil }

func (f *fakeChunkStore) Insert(_ context.Context, chunks []*model.Chunk) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	if f.statsErr != nil {
		return 0, f.statsErr
	}
	return int64(len(f.chunks)), nil
}

func (f *fakeChunkStore) Close(_ context.Context) error { return nil }

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
