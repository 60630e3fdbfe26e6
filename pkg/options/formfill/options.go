// Package formfill provides form-resolution pipeline configuration options.
package formfill

import (
	"fmt"

	"github.com/kart-io/formfill/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// DefaultResolvePrompt 是字段解析的系统提示词。
// 约束模型输出语法：自由文本字段返回字面值，勾选类字段返回 true/false，
// 下拉字段返回某个选项的原文，上下文缺少答案时返回 SKIP。
const DefaultResolvePrompt = `You are filling out a web form on behalf of a user, using excerpts from the user's CV as your only source of information.

Context from the CV:
{{context}}

Question about one form field: {{question}}

Answer rules:
- For a free-text field, answer with the literal value only, no explanation.
- For a yes/no question about checking a box, answer exactly "true" or "false".
- If the field lists options, answer with the exact text of exactly one option: {{options}}
- If the context does not contain the information needed, answer exactly "SKIP".`

// Options contains form-resolution pipeline configuration.
type Options struct {
	// ChunkSize 文本块目标大小（Unicode 字符数）。
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap 相邻块之间的重叠大小。
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK 每个字段检索的块数量。
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection Milvus 集合名称。
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim 嵌入向量维度。
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// ResolvePrompt 字段解析的系统提示词模板。
	ResolvePrompt string `json:"resolve-prompt" mapstructure:"resolve-prompt"`

	// Workers 并行解析字段的工作协程数；1 表示顺序处理。
	Workers int `json:"workers" mapstructure:"workers"`

	// ResolveTimeout 单个字段解析的超时时间（秒）。
	ResolveTimeoutSeconds int `json:"resolve-timeout-seconds" mapstructure:"resolve-timeout-seconds"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:             800,
		ChunkOverlap:          100,
		TopK:                  3,
		Collection:            "formfill_chunks",
		EmbeddingDim:          1536, // text-embedding-3-small dimension
		ResolvePrompt:         DefaultResolvePrompt,
		Workers:               4,
		ResolveTimeoutSeconds: 60,
	}
}

// AddFlags adds flags for formfill options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"formfill.chunk-size", o.ChunkSize, "Target size of text chunks.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"formfill.chunk-overlap", o.ChunkOverlap, "Overlap between adjacent chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"formfill.top-k", o.TopK, "Number of chunks retrieved per field.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"formfill.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"formfill.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.Workers, options.Join(prefixes...)+"formfill.workers", o.Workers, "Worker pool size for parallel field resolution (1 = sequential).")
	fs.IntVar(&o.ResolveTimeoutSeconds, options.Join(prefixes...)+"formfill.resolve-timeout-seconds", o.ResolveTimeoutSeconds, "Per-field resolution timeout in seconds.")
}

// Validate validates the formfill options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk-overlap must not be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive"))
	}
	return errs
}

// Complete completes the formfill options with defaults.
func (o *Options) Complete() error {
	if o.ResolvePrompt == "" {
		o.ResolvePrompt = DefaultResolvePrompt
	}
	return nil
}
