// Package ai selects and drives the configured metadata provider.
package ai

import (
	"log/slog"
	"strings"

	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm/deepseek"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm/gemini"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm/openai"
	"github.com/hmoralesr/document-intake/internal/infrastructure/resilience"
)

// ProviderSettings carries the configured provider name and the vendor keys.
type ProviderSettings struct {
	Provider    string
	GeminiKey   string
	OpenAIKey   string
	DeepSeekKey string
}

// NewProvider builds the vendor adapter for the configured name. Unknown
// names fall back to Gemini, matching the designated default.
func NewProvider(settings ProviderSettings, limits llm.Limits, executor *resilience.Executor) llm.Provider {
	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case "openai":
		return openai.New(settings.OpenAIKey, limits, executor)
	case "deepseek":
		return deepseek.New(settings.DeepSeekKey, limits, executor)
	case "google", "gemini":
		return gemini.New(settings.GeminiKey, limits, executor)
	default:
		slog.Warn("unsupported_ai_provider", "provider", settings.Provider, "fallback", "gemini")
		return gemini.New(settings.GeminiKey, limits, executor)
	}
}
