package meili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/infrastructure/resilience"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultTaskWait = 5 * time.Second
	taskPollEvery   = 200 * time.Millisecond
)

// Client talks to a Meilisearch instance over its REST API.
type Client struct {
	baseURL    string
	masterKey  string
	indexUID   string
	httpClient *http.Client
	executor   *resilience.Executor
	taskWait   time.Duration
}

func New(baseURL, masterKey, indexUID string, executor *resilience.Executor) *Client {
	if indexUID == "" {
		indexUID = "documents"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		masterKey:  masterKey,
		indexUID:   indexUID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		executor:   executor,
		taskWait:   defaultTaskWait,
	}
}

// EnsureIndex creates the index and pushes its settings. An index that
// already exists is fine.
func (c *Client) EnsureIndex(ctx context.Context) error {
	createBody := map[string]string{"uid": c.indexUID, "primaryKey": "id"}
	if err := c.doJSON(ctx, http.MethodPost, "/indexes", createBody, nil); err != nil {
		var statusErr *statusError
		alreadyExists := asStatusError(err, &statusErr) &&
			(statusErr.code == http.StatusConflict || strings.Contains(statusErr.body, "index_already_exists"))
		if !alreadyExists {
			return fmt.Errorf("create index: %w", err)
		}
	}

	settings := map[string]any{
		"filterableAttributes": []string{"public", "apartado", "file_extension", "track"},
		"sortableAttributes":   []string{"title", "filename", "date", "file_size_bytes", "uploaded_at", "version"},
		"searchableAttributes": []string{"title", "summary", "filename", "keywords"},
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/indexes/"+c.indexUID+"/settings", settings, nil); err != nil {
		return fmt.Errorf("push index settings: %w", err)
	}
	return nil
}

// Healthy probes the instance with progressively heavier requests and
// reports whether any of them answered.
func (c *Client) Healthy(ctx context.Context) bool {
	probes := []string{"/health", "/version", "/indexes"}
	for _, probe := range probes {
		if err := c.doJSON(ctx, http.MethodGet, probe, nil, nil); err == nil {
			return true
		}
	}
	return false
}

type taskRef struct {
	TaskUID int64 `json:"taskUid"`
}

type taskStatus struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Index submits documents and waits briefly for the indexing task. A wait
// that runs out of time counts as success: the task stays enqueued and the
// engine finishes it on its own.
func (c *Client) Index(ctx context.Context, docs []domain.MetadataRecord) bool {
	if len(docs) == 0 {
		return true
	}

	var ref taskRef
	call := func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, "/indexes/"+c.indexUID+"/documents", docs, &ref)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "meili.index", call, classifyMeiliError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		slog.Warn("meili_index_submit_failed", "error", err)
		return false
	}

	return c.waitForTask(ctx, ref.TaskUID)
}

func (c *Client) waitForTask(ctx context.Context, taskUID int64) bool {
	deadline := time.Now().Add(c.taskWait)
	for time.Now().Before(deadline) {
		var task taskStatus
		if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", taskUID), nil, &task); err != nil {
			slog.Warn("meili_task_poll_failed", "task_uid", taskUID, "error", err)
			return true
		}
		switch task.Status {
		case "succeeded":
			return true
		case "failed", "canceled":
			slog.Warn("meili_task_failed", "task_uid", taskUID, "code", task.Error.Code, "message", task.Error.Message)
			return false
		}

		select {
		case <-ctx.Done():
			return true
		case <-time.After(taskPollEvery):
		}
	}
	// Still enqueued. The engine will catch up.
	return true
}

type searchRequest struct {
	Query  string   `json:"q"`
	Filter string   `json:"filter,omitempty"`
	Sort   []string `json:"sort,omitempty"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

type searchResponse struct {
	Hits               []domain.MetadataRecord `json:"hits"`
	EstimatedTotalHits int                     `json:"estimatedTotalHits"`
	Limit              int                     `json:"limit"`
	Offset             int                     `json:"offset"`
}

func (c *Client) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	body := searchRequest{
		Query:  q.Query,
		Filter: q.Filter,
		Sort:   q.Sort,
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	var resp searchResponse
	call := func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, "/indexes/"+c.indexUID+"/search", body, &resp)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "meili.search", call, classifyMeiliError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("meili search: %w", err)
	}

	return &domain.SearchResult{
		Hits:               resp.Hits,
		EstimatedTotalHits: resp.EstimatedTotalHits,
		Limit:              resp.Limit,
		Offset:             resp.Offset,
		Source:             domain.SourceSearchEngine,
	}, nil
}

func (c *Client) Remove(ctx context.Context, documentID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/indexes/"+c.indexUID+"/documents/"+documentID, nil, nil)
	if err != nil {
		return fmt.Errorf("meili remove document: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.masterKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.masterKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			method: method,
			path:   path,
			code:   resp.StatusCode,
			body:   strings.TrimSpace(string(raw)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
