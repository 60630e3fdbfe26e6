package llm

import (
	"context"
	"testing"
)

// fakeProvider 固定返回值的供应商实现，用于注册表测试。
type fakeProvider struct {
	name string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (f *fakeProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeProvider) Chat(_ context.Context, _ []Message) (string, error) {
	return "canned reply", nil
}

func (f *fakeProvider) Generate(_ context.Context, _ string, _ string) (*GenerateResponse, error) {
	return &GenerateResponse{
		Content:    "canned generated text",
		TokenUsage: &TokenUsage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8},
	}, nil
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("registry-test", func(config map[string]any) (Provider, error) {
		name := "registry-test"
		if n, ok := config["name"].(string); ok {
			name = n
		}
		return &fakeProvider{name: name}, nil
	})

	provider, err := NewProvider("registry-test", map[string]any{"name": "custom-name"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if provider.Name() != "custom-name" {
		t.Errorf("expected name 'custom-name', got '%s'", provider.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider("unknown-provider", nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

// 专用工厂优先，未注册时回退到完整供应商工厂。
func TestNewEmbeddingProviderFallback(t *testing.T) {
	RegisterEmbeddingProvider("embed-only", func(_ map[string]any) (EmbeddingProvider, error) {
		return &fakeProvider{name: "embed-only"}, nil
	})

	provider, err := NewEmbeddingProvider("embed-only", nil)
	if err != nil {
		t.Fatalf("NewEmbeddingProvider failed: %v", err)
	}
	if provider.Name() != "embed-only" {
		t.Errorf("expected name 'embed-only', got '%s'", provider.Name())
	}

	fallback, err := NewEmbeddingProvider("registry-test", nil)
	if err != nil {
		t.Fatalf("NewEmbeddingProvider fallback failed: %v", err)
	}
	if fallback == nil {
		t.Error("expected non-nil provider from fallback")
	}
}

func TestNewChatProviderFallback(t *testing.T) {
	RegisterChatProvider("chat-only", func(_ map[string]any) (ChatProvider, error) {
		return &fakeProvider{name: "chat-only"}, nil
	})

	provider, err := NewChatProvider("chat-only", nil)
	if err != nil {
		t.Fatalf("NewChatProvider failed: %v", err)
	}
	if provider.Name() != "chat-only" {
		t.Errorf("expected name 'chat-only', got '%s'", provider.Name())
	}

	fallback, err := NewChatProvider("registry-test", nil)
	if err != nil {
		t.Fatalf("NewChatProvider fallback failed: %v", err)
	}
	if fallback == nil {
		t.Error("expected non-nil provider from fallback")
	}
}

func TestListProviders(t *testing.T) {
	RegisterProvider("list-check", func(_ map[string]any) (Provider, error) {
		return &fakeProvider{name: "list-check"}, nil
	})

	providers := ListProviders()
	if len(providers) == 0 {
		t.Fatal("expected at least one registered provider")
	}

	found := false
	for _, p := range providers {
		if p == "list-check" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected 'list-check' in provider list")
	}
}

func TestMessageRoles(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleSystem, "system"},
		{RoleUser, "user"},
		{RoleAssistant, "assistant"},
	}
	for _, tt := range tests {
		if string(tt.role) != tt.want {
			t.Errorf("expected role '%s', got '%s'", tt.want, tt.role)
		}
	}
}

func TestFakeProviderContract(t *testing.T) {
	provider := &fakeProvider{name: "contract"}
	ctx := context.Background()

	embeddings, err := provider.Embed(ctx, []string{"简历", "表单"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(embeddings) != 2 {
		t.Errorf("expected 2 embeddings, got %d", len(embeddings))
	}
	for i, emb := range embeddings {
		if len(emb) != 3 {
			t.Errorf("embedding %d: expected 3 dimensions, got %d", i, len(emb))
		}
	}

	reply, err := provider.Chat(ctx, []Message{{Role: RoleUser, Content: "Hello"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "canned reply" {
		t.Errorf("expected 'canned reply', got '%s'", reply)
	}

	gen, err := provider.Generate(ctx, "prompt", "system")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gen.Content != "canned generated text" {
		t.Errorf("expected 'canned generated text', got '%s'", gen.Content)
	}
	if gen.TokenUsage == nil || gen.TokenUsage.TotalTokens != 8 {
		t.Errorf("unexpected token usage: %+v", gen.TokenUsage)
	}
}
