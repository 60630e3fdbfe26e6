// Package llm 提供 LLM 供应商配置选项。
package llm

import (
	"fmt"
	"time"

	"github.com/kart-io/formfill/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 描述一个 LLM 供应商连接。
// Embedding 与 Chat 各持有一份，模型名独立配置。
type ProviderOptions struct {
	// Provider 供应商名称，支持 ollama、openai。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥，openai 必填。
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model 模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Timeout 单次请求超时。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries 最大重试次数。
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// Organization 组织 ID，openai 可选。
	Organization string `json:"organization" mapstructure:"organization"`

	// Temperature 采样温度。默认 0，保证同一简历对同一字段
	// 的解析结果可复现。
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

// NewProviderOptions 返回默认配置：本地 ollama，120s 超时。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "ollama",
		BaseURL:    "http://localhost:11434",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// NewEmbeddingOptions 返回 Embedding 侧默认配置。
func NewEmbeddingOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "nomic-embed-text"
	return opts
}

// NewChatOptions 返回 Chat 侧默认配置。
func NewChatOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "deepseek-r1:7b"
	return opts
}

// ToConfigMap 展开为供应商工厂使用的配置 map。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"embed_model":  o.Model,
		"chat_model":   o.Model,
		"timeout":      o.Timeout,
		"max_retries":  o.MaxRetries,
		"organization": o.Organization,
		"temperature":  o.Temperature,
	}
}

// AddFlags 注册 LLM 供应商相关 flag。
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...)
	fs.StringVar(&o.Provider, prefix+"llm.provider", o.Provider, "LLM provider (ollama, openai).")
	fs.StringVar(&o.BaseURL, prefix+"llm.base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, prefix+"llm.api-key", o.APIKey, "LLM API key.")
	fs.StringVar(&o.Model, prefix+"llm.model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, prefix+"llm.timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, prefix+"llm.max-retries", o.MaxRetries, "LLM maximum number of retries.")
	fs.StringVar(&o.Organization, prefix+"llm.organization", o.Organization, "LLM organization ID (optional).")
	fs.Float64Var(&o.Temperature, prefix+"llm.temperature", o.Temperature, "LLM sampling temperature (0 keeps field resolution deterministic).")
}

// Validate 校验供应商配置。
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for openai provider"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %v is out of range [0, 2]", o.Temperature))
	}
	return errs
}

// Complete 补全缺省的重试次数。
func (o *ProviderOptions) Complete() error {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}
