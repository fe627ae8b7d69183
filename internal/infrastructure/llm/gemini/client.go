// Package gemini adapts the Google Gemini generateContent API. Gemini is
// multimodal: small artifacts travel inline as base64, large ones go through
// the Files API upload-then-reference flow.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
	"github.com/hmoralesr/document-intake/internal/infrastructure/resilience"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	modelName      = "gemini-1.5-flash-latest"
)

type Client struct {
	baseURL    string
	apiKey     string
	limits     llm.Limits
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(apiKey string, limits llm.Limits, executor *resilience.Executor) *Client {
	return NewWithBaseURL(defaultBaseURL, apiKey, limits, executor)
}

func NewWithBaseURL(baseURL, apiKey string, limits llm.Limits, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limits:     limits,
		httpClient: &http.Client{Timeout: limits.Timeout},
		executor:   executor,
	}
}

func (c *Client) Name() string  { return "Gemini" }
func (c *Client) Model() string { return modelName }

// Process sends the document and the composed prompt to Gemini. Failures of
// any kind collapse into the placeholder result.
func (c *Client) Process(ctx context.Context, content []byte, filename, track, orgUnit string) llm.RawMetadata {
	ctx, cancel := context.WithTimeout(ctx, c.limits.Timeout)
	defer cancel()

	prompt := llm.BuildPrompt(track, orgUnit, c.limits)
	mimeType := detectMIME(filename)

	var raw string
	call := func(ctx context.Context) error {
		var err error
		if len(content) > llm.LargePayloadBytes {
			raw, err = c.generateViaUpload(ctx, prompt, mimeType, filename, content)
		} else {
			raw, err = c.generateInline(ctx, prompt, mimeType, content)
		}
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini.generate", call, llm.ClassifyProviderError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return llm.ProcessingErrorResult(c.Name(), err)
	}

	return llm.NormalizeFields(llm.ParseReply(raw), track, orgUnit)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
	FileData   *fileData   `json:"file_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type fileData struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateInline(ctx context.Context, prompt, mimeType string, payload []byte) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{
				MIMEType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(payload),
			}},
		}}},
	}
	return c.generate(ctx, req)
}

func (c *Client) generateViaUpload(ctx context.Context, prompt, mimeType, filename string, payload []byte) (string, error) {
	handle, err := c.uploadFile(ctx, mimeType, filename, payload)
	if err != nil {
		return "", err
	}
	// The remote handle is temporary scratch space; drop it on every exit
	// path.
	defer c.deleteFile(handle.Name)

	ready, err := c.waitUntilReady(ctx, handle)
	if err != nil {
		return "", err
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{FileData: &fileData{MIMEType: mimeType, FileURI: ready.URI}},
		}}},
	}
	return c.generate(ctx, req)
}

func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, modelName, c.apiKey)

	var resp generateResponse
	if err := llm.PostJSON(ctx, c.httpClient, url, nil, req, &resp, "gemini generate"); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini generate: empty candidate list")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}

func detectMIME(filename string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// pollInterval paces the Files API state checks during the upload flow.
var pollInterval = 2 * time.Second
