package ollama_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kart-io/formfill/pkg/llm"
	_ "github.com/kart-io/formfill/pkg/llm/ollama"
)

// 演示如何创建连接本地 Ollama 服务的供应商。
func ExampleNewProvider_basic() {
	provider, err := llm.NewProvider("ollama", map[string]any{
		"base_url":    "http://localhost:11434",
		"chat_model":  "llama3",
		"embed_model": "nomic-embed-text",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Ollama 供应商名称:", provider.Name())
	// Output: Ollama 供应商名称: ollama
}

// 演示如何用 Chat 方法对表单字段做值推断。
func ExampleProvider_Chat() {
	if os.Getenv("OLLAMA_BASE_URL") == "" {
		fmt.Println("跳过示例：需要设置 OLLAMA_BASE_URL 环境变量")
		return
	}

	provider, err := llm.NewProvider("ollama", map[string]any{
		"base_url":   os.Getenv("OLLAMA_BASE_URL"),
		"chat_model": "llama3",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "你是表单填充助手，只输出字段值本身"},
		{Role: llm.RoleUser, Content: "根据简历片段推断字段 '期望职位' 的值：……"},
	}

	response, err := provider.Chat(ctx, messages)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// 演示如何为简历片段批量生成向量嵌入。
func ExampleProvider_Embed() {
	if os.Getenv("OLLAMA_BASE_URL") == "" {
		fmt.Println("跳过示例：需要设置 OLLAMA_BASE_URL 环境变量")
		return
	}

	provider, err := llm.NewProvider("ollama", map[string]any{
		"base_url":    os.Getenv("OLLAMA_BASE_URL"),
		"embed_model": "nomic-embed-text",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	texts := []string{
		"五年 Go 后端开发经验，熟悉分布式系统",
		"主导过简历解析与信息抽取服务的设计",
	}

	embeddings, err := provider.Embed(ctx, texts)
	if err != nil {
		log.Fatal(err)
	}

	for i, emb := range embeddings {
		fmt.Printf("片段 %d 的向量维度: %d\n", i+1, len(emb))
	}
}

// 演示如何用 Generate 方法做一次性文本生成。
func ExampleProvider_Generate() {
	if os.Getenv("OLLAMA_BASE_URL") == "" {
		fmt.Println("跳过示例：需要设置 OLLAMA_BASE_URL 环境变量")
		return
	}

	provider, err := llm.NewProvider("ollama", map[string]any{
		"base_url":   os.Getenv("OLLAMA_BASE_URL"),
		"chat_model": "llama3",
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
