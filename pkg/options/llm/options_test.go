package llm

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestNewProviderOptionsDefaultTemperature(t *testing.T) {
	opts := NewChatOptions()

	if opts.Temperature != 0 {
		t.Errorf("expected default temperature 0, got %v", opts.Temperature)
	}
	cfg := opts.ToConfigMap()
	if cfg["temperature"] != float64(0) {
		t.Errorf("expected temperature 0 in config map, got %v", cfg["temperature"])
	}
}

func TestValidateTemperatureRange(t *testing.T) {
	opts := NewChatOptions()
	opts.Temperature = 2.5

	errs := opts.Validate()
	found := false
	for _, err := range errs {
		if strings.Contains(err.Error(), "temperature") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a temperature range error, got %v", errs)
	}
}

func TestProviderFlagListsRegisteredProvidersOnly(t *testing.T) {
	opts := NewChatOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs, "chat.")

	flag := fs.Lookup("chat.llm.provider")
	if flag == nil {
		t.Fatal("expected chat.llm.provider flag to be registered")
	}
	for _, name := range []string{"ollama", "openai"} {
		if !strings.Contains(flag.Usage, name) {
			t.Errorf("expected provider flag help to mention %s, got %q", name, flag.Usage)
		}
	}
	if strings.Contains(flag.Usage, "deepseek") {
		t.Errorf("provider flag help mentions an unregistered provider: %q", flag.Usage)
	}

	if fs.Lookup("chat.llm.temperature") == nil {
		t.Error("expected chat.llm.temperature flag to be registered")
	}
}
