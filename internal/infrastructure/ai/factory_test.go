package ai

import (
	"testing"

	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
)

func TestNewProviderSelection(t *testing.T) {
	cases := []struct {
		configured string
		wantName   string
	}{
		{"openai", "OpenAI"},
		{"OpenAI", "OpenAI"},
		{"deepseek", "DeepSeek"},
		{"google", "Gemini"},
		{"gemini", "Gemini"},
		{"", "Gemini"},
		{"mistral", "Gemini"},
	}

	for _, tc := range cases {
		provider := NewProvider(ProviderSettings{Provider: tc.configured}, llm.DefaultLimits(), nil)
		if provider.Name() != tc.wantName {
			t.Fatalf("provider %q: expected %s, got %s", tc.configured, tc.wantName, provider.Name())
		}
	}
}
