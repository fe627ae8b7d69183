package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// File states reported by the Files API.
const (
	stateProcessing = "PROCESSING"
	stateActive     = "ACTIVE"
	stateFailed     = "FAILED"
)

type fileHandle struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

type fileEnvelope struct {
	File fileHandle `json:"file"`
}

// uploadFile pushes raw bytes through the Files API and returns the remote
// handle, which may still be in a processing state.
func (c *Client) uploadFile(ctx context.Context, mimeType, filename string, payload []byte) (*fileHandle, error) {
	url := fmt.Sprintf("%s/upload/v1beta/files?key=%s", c.baseURL, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("X-Goog-File-Name", filename)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("gemini upload status: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var envelope fileEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if envelope.File.Name == "" {
		return nil, fmt.Errorf("gemini upload: response carries no file handle")
	}
	return &envelope.File, nil
}

// waitUntilReady polls the handle until it leaves the processing state. The
// poll loop is bounded by the context deadline set from the configured call
// timeout.
func (c *Client) waitUntilReady(ctx context.Context, handle *fileHandle) (*fileHandle, error) {
	current := *handle
	for current.State == stateProcessing || current.State == "" {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for file %s: %w", handle.Name, ctx.Err())
		case <-time.After(pollInterval):
		}

		refreshed, err := c.getFile(ctx, handle.Name)
		if err != nil {
			return nil, err
		}
		current = *refreshed
	}

	if current.State == stateFailed {
		return nil, fmt.Errorf("gemini file %s: remote processing failed", handle.Name)
	}
	if current.State != stateActive {
		return nil, fmt.Errorf("gemini file %s: unexpected state %s", handle.Name, current.State)
	}
	return &current, nil
}

func (c *Client) getFile(ctx context.Context, name string) (*fileHandle, error) {
	url := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create file status request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini file status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini file status: %s", resp.Status)
	}
	var handle fileHandle
	if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
		return nil, fmt.Errorf("decode file status: %w", err)
	}
	return &handle, nil
}

// deleteFile is best effort; a leaked handle expires server-side anyway.
func (c *Client) deleteFile(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}
