// Package openai adapts the OpenAI chat-completions API. The same wire
// format serves DeepSeek, which exposes an OpenAI-compatible endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hmoralesr/document-intake/internal/infrastructure/extractor/office"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
	"github.com/hmoralesr/document-intake/internal/infrastructure/resilience"
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	ProviderName string
	MaxTokens    int
	Temperature  float64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.ProviderName == "" {
		c.ProviderName = "OpenAI"
	}
	return c
}

type Client struct {
	cfg        Config
	limits     llm.Limits
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(apiKey string, limits llm.Limits, executor *resilience.Executor) *Client {
	return NewWithConfig(Config{APIKey: apiKey}, limits, executor)
}

func NewWithConfig(cfg Config, limits llm.Limits, executor *resilience.Executor) *Client {
	return &Client{
		cfg:        cfg.withDefaults(),
		limits:     limits,
		httpClient: &http.Client{Timeout: limits.Timeout},
		executor:   executor,
	}
}

func (c *Client) Name() string  { return c.cfg.ProviderName }
func (c *Client) Model() string { return c.cfg.Model }

// Process converts the document to text locally (the chat API has no native
// office-document support) and asks for the metadata object. An empty
// conversion is a hard error for the call; like every other call-level
// failure it surfaces as the placeholder result.
func (c *Client) Process(ctx context.Context, fileContent []byte, filename, track, orgUnit string) llm.RawMetadata {
	ctx, cancel := context.WithTimeout(ctx, c.limits.Timeout)
	defer cancel()

	ext := strings.ToLower(filepath.Ext(filename))
	text := office.ExtractText(fileContent, ext)
	if strings.TrimSpace(text) == "" {
		err := fmt.Errorf("no text extracted from %s", filename)
		return llm.ProcessingErrorResult(c.Name(), err)
	}

	prompt := llm.BuildPrompt(track, orgUnit, c.limits) +
		"\nDOCUMENTO:\n" + llm.TruncateText(text, c.limits.MaxTextLength)

	var raw string
	call := func(ctx context.Context) error {
		var err error
		raw, err = c.chatCompletion(ctx, prompt)
		return err
	}

	var err error
	if c.executor != nil {
		operation := strings.ToLower(c.cfg.ProviderName) + ".chat"
		err = c.executor.Execute(ctx, operation, call, llm.ClassifyProviderError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return llm.ProcessingErrorResult(c.Name(), err)
	}

	return llm.NormalizeFields(llm.ParseReply(raw), track, orgUnit)
}

func (c *Client) chatCompletion(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{"role": "system", "content": "Eres un asistente experto en análisis de documentos."},
			{"role": "user", "content": prompt},
		},
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}
	if c.cfg.Temperature > 0 {
		body["temperature"] = c.cfg.Temperature
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	if err := llm.PostJSON(ctx, c.httpClient, url, headers, body, &resp, "chat completion"); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
