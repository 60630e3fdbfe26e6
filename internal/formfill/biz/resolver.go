package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/formfill/internal/formfill/metrics"
	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/infra/tracing"
	"github.com/kart-io/formfill/pkg/llm"
)

// ResolverConfig 解析器配置。
type ResolverConfig struct {
	// Prompt 系统提示词模板，包含 {{context}}、{{question}}、{{options}} 占位符。
	Prompt string
	// TopK 每个字段检索的块数量。
	TopK int
	// Timeout 单个字段解析的超时时间。
	Timeout time.Duration
}

// Resolver 负责用租户范围的简历上下文解析单个字段的值。
type Resolver struct {
	retriever    *Retriever
	chatProvider llm.ChatProvider
	cache        *ResolutionCache
	config       *ResolverConfig
	metrics      *metrics.FillMetrics
}

// NewResolver 创建字段解析器实例。
func NewResolver(retriever *Retriever, chatProvider llm.ChatProvider, cache *ResolutionCache, config *ResolverConfig) *Resolver {
	return &Resolver{
		retriever:    retriever,
		chatProvider: chatProvider,
		cache:        cache,
		config:       config,
		metrics:      metrics.GetFillMetrics(),
	}
}

// Resolve 解析单个字段：检索上下文、调用 LLM 并裁决输出。
// 模型输出去除首尾空白后，与 SKIP 做大小写敏感的精确比较；
// 不合语法的回答不重试，按字面值向下游传递。
// 任何解析失败都降级为 SKIP 并返回错误供调用方计数，从不中断整页处理。
func (r *Resolver) Resolve(ctx context.Context, field *model.Field, question, tenantID string) (*model.ResolvedValue, error) {
	ctx, span := tracing.StartSpan(ctx, "formfill.resolver", "resolve-field")
	defer span.End()
	tracing.AddSpanAttributes(ctx,
		tracing.String(tracing.TenantID, tenantID),
		tracing.String(tracing.FieldSelector, field.Selector),
		tracing.String(tracing.FieldType, string(field.Type)),
	)

	if question == "" {
		err := fmt.Errorf("empty question for field %q", field.Selector)
		tracing.RecordError(ctx, err)
		return &model.ResolvedValue{Skip: true}, err
	}

	if r.cache != nil && r.cache.Enabled() {
		cached, err := r.cache.Get(ctx, tenantID, field)
		if err == nil && cached != nil {
			r.metrics.RecordCacheHit()
			return cached, nil
		}
		r.metrics.RecordCacheMiss()
	}

	chunks := r.retriever.Query(ctx, question, tenantID, r.config.TopK)
	prompt := r.buildPrompt(question, field.Options, chunks)

	cctx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.chatProvider.Generate(cctx, prompt, "")
	if err != nil {
		r.metrics.RecordLLMCall(time.Since(start), 0, 0, err)
		logger.Warnw("字段解析失败，降级为 SKIP",
			"tenant_id", tenantID,
			"selector", field.Selector,
			"error", err.Error(),
		)
		wrapped := fmt.Errorf("failed to resolve field %q: %w", field.Selector, err)
		tracing.RecordError(ctx, wrapped)
		return &model.ResolvedValue{Skip: true}, wrapped
	}

	promptTokens, completionTokens := 0, 0
	if resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	r.metrics.RecordLLMCall(time.Since(start), promptTokens, completionTokens, nil)

	answer := strings.TrimSpace(resp.Content)
	if answer == model.SkipValue {
		value := &model.ResolvedValue{Skip: true}
		r.cacheResult(ctx, tenantID, field, value)
		return value, nil
	}

	value := &model.ResolvedValue{Value: answer}
	r.cacheResult(ctx, tenantID, field, value)
	return value, nil
}

// buildPrompt 用检索到的块填充提示词模板。
func (r *Resolver) buildPrompt(question string, options []string, chunks []*model.ScoredChunk) string {
	var contextBuilder strings.Builder
	for i, chunk := range chunks {
		if chunk.HeadingPath != "" {
			contextBuilder.WriteString(fmt.Sprintf("[%d] %s:\n%s\n\n", i+1, chunk.HeadingPath, chunk.Text))
		} else {
			contextBuilder.WriteString(fmt.Sprintf("[%d]:\n%s\n\n", i+1, chunk.Text))
		}
	}

	prompt := strings.ReplaceAll(r.config.Prompt, "{{context}}", contextBuilder.String())
	prompt = strings.ReplaceAll(prompt, "{{question}}", question)
	prompt = strings.ReplaceAll(prompt, "{{options}}", strings.Join(options, ", "))
	return prompt
}

func (r *Resolver) cacheResult(ctx context.Context, tenantID string, field *model.Field, value *model.ResolvedValue) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, tenantID, field, value); err != nil {
		logger.Debugw("failed to cache resolution", "selector", field.Selector, "error", err.Error())
	}
}
