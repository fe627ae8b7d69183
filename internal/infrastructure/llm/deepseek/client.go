// Package deepseek configures the OpenAI-compatible client for the DeepSeek
// endpoint.
package deepseek

import (
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm/openai"
	"github.com/hmoralesr/document-intake/internal/infrastructure/resilience"
)

func New(apiKey string, limits llm.Limits, executor *resilience.Executor) *openai.Client {
	return openai.NewWithConfig(openai.Config{
		APIKey:       apiKey,
		BaseURL:      "https://api.deepseek.com",
		Model:        "deepseek-chat",
		ProviderName: "DeepSeek",
		MaxTokens:    1000,
		Temperature:  0.7,
	}, limits, executor)
}
