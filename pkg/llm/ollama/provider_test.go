package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestGenerateSendsZeroTemperatureByDefault 验证请求体里显式携带
// options.temperature=0，而不是留给 Ollama 端的缺省采样。
func TestGenerateSendsZeroTemperatureByDefault(t *testing.T) {
	var rawReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&rawReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "deepseek-r1:7b",
			"response": "测试响应",
			"done":     true,
		})
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	provider := NewProviderWithConfig(cfg)

	if _, err := provider.Generate(context.Background(), "你好", ""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	opts, ok := rawReq["options"].(map[string]any)
	if !ok {
		t.Fatal("expected options to be present in the request body")
	}
	if opts["temperature"] != float64(0) {
		t.Errorf("expected temperature 0, got %v", opts["temperature"])
	}
}

func TestNewProviderReadsTemperature(t *testing.T) {
	provider, err := NewProvider(map[string]any{"temperature": 0.4})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	p, ok := provider.(*Provider)
	if !ok {
		t.Fatal("provider is not *Provider type")
	}
	if p.config.Temperature != 0.4 {
		t.Errorf("expected Temperature 0.4, got %f", p.config.Temperature)
	}
}
