package biz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/formfill/internal/formfill/biz"
	"github.com/kart-io/formfill/internal/model"
)

const testPrompt = `Context:
{{context}}
Question: {{question}}
Options: {{options}}`

func newTestResolver(chunkStore *fakeChunkStore, chat *fakeChat) *biz.Resolver {
	retriever := biz.NewRetriever(chunkStore, &fakeEmbedder{}, &biz.RetrieverConfig{TopK: 3})
	return biz.NewResolver(retriever, chat, nil, &biz.ResolverConfig{
		Prompt:  testPrompt,
		TopK:    3,
		Timeout: 5 * time.Second,
	})
}

func TestResolveValue(t *testing.T) {
	chunkStore := &fakeChunkStore{chunks: []*model.Chunk{
		{Text: "Email: jane@example.com is the primary contact", TenantID: "tenant-a", HeadingPath: "Contact"},
	}}
	chat := &fakeChat{answers: map[string]string{
		"What is the Email?": "jane@example.com",
	}}
	resolver := newTestResolver(chunkStore, chat)

	field := &model.Field{Selector: "#email", Type: model.FieldTypeEmail, Label: "Email"}
	value, err := resolver.Resolve(context.Background(), field, "What is the Email?", "tenant-a")
	require.NoError(t, err)
	assert.False(t, value.Skip)
	assert.Equal(t, "jane@example.com", value.Value)

	// 提示词包含检索上下文、标题路径和问题
	prompt := chat.lastPrompt()
	assert.Contains(t, prompt, "jane@example.com is the primary contact")
	assert.Contains(t, prompt, "Contact")
	assert.Contains(t, prompt, "What is the Email?")
}

func TestResolveTrimsWhitespace(t *testing.T) {
	chat := &fakeChat{answers: map[string]string{
		"What is the Name?": "  Jane Doe \n",
	}}
	resolver := newTestResolver(&fakeChunkStore{}, chat)

	field := &model.Field{Selector: "#name", Type: model.FieldTypeText, Label: "Name"}
	value, err := resolver.Resolve(context.Background(), field, "What is the Name?", "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", value.Value)
}

func TestResolveSkipSentinel(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		wantSkip bool
	}{
		{"精确 SKIP", "SKIP", true},
		{"带空白的 SKIP", "  SKIP\n", true},
		// SKIP 比较大小写敏感，小写按字面值传递
		{"小写 skip 不是哨兵", "skip", false},
		{"包含 SKIP 的句子不是哨兵", "SKIP this one", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{answers: map[string]string{"What is the X?": tt.answer}}
			resolver := newTestResolver(&fakeChunkStore{}, chat)

			field := &model.Field{Selector: "#x", Type: model.FieldTypeText, Label: "X"}
			value, err := resolver.Resolve(context.Background(), field, "What is the X?", "tenant-a")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, value.Skip)
		})
	}
}

func TestResolveOptionsInPrompt(t *testing.T) {
	chat := &fakeChat{answers: map[string]string{"What is the Degree?": "Master's"}}
	resolver := newTestResolver(&fakeChunkStore{}, chat)

	field := &model.Field{
		Selector: "#degree",
		Type:     model.FieldTypeSelect,
		Label:    "Degree",
		Options:  []string{"Bachelor's", "Master's", "PhD"},
	}
	_, err := resolver.Resolve(context.Background(), field, "What is the Degree?", "tenant-a")
	require.NoError(t, err)

	assert.Contains(t, chat.lastPrompt(), "Bachelor's, Master's, PhD")
}

func TestResolveProviderFailureDegradesToSkip(t *testing.T) {
	chat := &fakeChat{err: assert.AnError}
	resolver := newTestResolver(&fakeChunkStore{}, chat)

	field := &model.Field{Selector: "#x", Type: model.FieldTypeText, Label: "X"}
	value, err := resolver.Resolve(context.Background(), field, "What is the X?", "tenant-a")

	// 失败降级为 SKIP，同时返回错误供调用方计数
	require.Error(t, err)
	require.NotNil(t, value)
	assert.True(t, value.Skip)
}

func TestResolveEmptyQuestion(t *testing.T) {
	chat := &fakeChat{}
	resolver := newTestResolver(&fakeChunkStore{}, chat)

	field := &model.Field{Selector: "#x", Type: model.FieldTypeText}
	value, err := resolver.Resolve(context.Background(), field, "", "tenant-a")
	require.Error(t, err)
	assert.True(t, value.Skip)
	// 不触发任何 LLM 调用
	assert.Equal(t, 0, chat.callCount())
}
