// Package dify implements a minimal client for the Dify HTTP API:
// blocking chat-messages, file upload and workflow runs.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yangzhihuimee/difybatch/internal/logging"
)

const (
	chatMessagesPath = "/v1/chat-messages"
	fileUploadPath   = "/v1/files/upload"
	workflowRunPath  = "/v1/workflows/run"

	// Responses are returned in one piece rather than streamed.
	responseModeBlocking = "blocking"
)

// Config holds client construction parameters.
type Config struct {
	APIKey  string        // Bearer credential, required
	BaseURL string        // Endpoint base URL, required
	Timeout time.Duration // Per-request timeout (default: 600s)
}

// Client is an immutable Dify API client. It holds no mutable state after
// construction and is safe for concurrent use from any number of workers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewClient creates a Dify client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("dify: api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dify: base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 600 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logging.Component("dify-client"),
	}, nil
}

type chatRequest struct {
	Inputs       map[string]any `json:"inputs"`
	Query        string         `json:"query"`
	ResponseMode string         `json:"response_mode"`
	User         string         `json:"user"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Chat sends one blocking chat-message request and returns the answer
// field of the response. A missing answer field yields an empty string,
// which callers treat the same as a failed call.
func (c *Client) Chat(ctx context.Context, query, user string) (string, error) {
	body := chatRequest{
		Inputs:       map[string]any{},
		Query:        query,
		ResponseMode: responseModeBlocking,
		User:         user,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatMessagesPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		snippet := readSnippet(resp.Body)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", snippet).
			Msg("chat request rejected")
		return "", fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	return parsed.Answer, nil
}

// readSnippet reads a short prefix of a response body for diagnostics and
// drains the rest.
func readSnippet(r io.Reader) string {
	const limit = 512
	data, _ := io.ReadAll(io.LimitReader(r, limit))
	_, _ = io.Copy(io.Discard, r)
	return strings.TrimSpace(string(data))
}
