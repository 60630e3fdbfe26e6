package openai_test

import (
	"context"
	"fmt"
	"log"

	"github.com/kart-io/formfill/pkg/llm"
	_ "github.com/kart-io/formfill/pkg/llm/openai"
)

// 演示如何使用基本配置创建 OpenAI 供应商并进行对话。
func ExampleNewProvider_basic() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key": "your-api-key-here",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	response, err := provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "根据简历内容推断候选人的期望职位"},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// 演示如何用高级配置精细控制生成参数。
// 字段值推断应使用低温度，避免模型自由发挥。
func ExampleNewProvider_advanced() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key":           "your-api-key-here",
		"chat_model":        "gpt-4o",
		"temperature":       0.2,             // 低随机性，字段值要求确定
		"top_p":             0.9,             // 核采样参数
		"max_tokens":        2000,            // 最大生成 token 数
		"frequency_penalty": 0.5,             // 频率惩罚，减少重复
		"presence_penalty":  0.5,             // 存在惩罚
		"stop":              []string{"\n"},  // 字段值只取一行
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "你是表单填充助手，只输出字段值本身"},
		{Role: llm.RoleUser, Content: "字段 '工作年限' 的值是多少？简历片段：……"},
	}

	response, err := provider.Chat(ctx, messages)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// 演示如何为简历片段生成向量嵌入。
func ExampleProvider_Embed() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key":     "your-api-key-here",
		"embed_model": "text-embedding-3-large",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	texts := []string{
		"五年 Go 后端开发经验",
		"主导过检索增强问答系统的落地",
		"熟悉向量数据库与召回调优",
	}

	embeddings, err := provider.Embed(ctx, texts)
	if err != nil {
		log.Fatal(err)
	}

	for i, emb := range embeddings {
		fmt.Printf("片段 %d 的向量维度: %d\n", i+1, len(emb))
	}
}

// 演示多轮对话式的字段澄清。
func ExampleProvider_Chat() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key":     "your-api-key-here",
		"temperature": 0.3,
		"max_tokens":  500,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "你是表单填充助手"},
		{Role: llm.RoleUser, Content: "字段 '最高学历' 的值？"},
		{Role: llm.RoleAssistant, Content: "硕士"},
		{Role: llm.RoleUser, Content: "毕业院校呢？"},
	}

	response, err := provider.Chat(ctx, messages)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// 演示如何配置 Azure OpenAI。
// Azure 端点下 chat_model/embed_model 填部署名称而不是模型名称。
func ExampleNewProvider_azureOpenAI() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key":     "your-azure-api-key",
		"base_url":    "https://your-resource.openai.azure.com/openai/deployments/your-deployment",
		"chat_model":  "gpt-4o",
		"embed_model": "text-embedding-3-small",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	response, err := provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Hello!"},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// 演示如何使用 Generate 方法进行一次性文本生成。
func ExampleProvider_Generate() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key":     "your-api-key-here",
		"temperature": 0.5,
		"max_tokens":  500,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	response, err := provider.Generate(
		ctx,
		"用一句话概括这份简历的核心亮点",
		"你是一位资深招聘顾问",
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("概括:", response.Content)
}

// 演示如何使用停止序列截断生成结果。
func ExampleNewProvider_stopSequences() {
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key": "your-api-key-here",
		"stop":    []string{"\n\n", "END", "。"},
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	response, err := provider.Generate(
		ctx,
		"请用一句话说明该候选人是否符合职位要求",
		"",
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response.Content)
}
