package analyst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client talks to the analysis service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithModel selects the model the service should use.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze asks a question about the dataset.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	payload := map[string]any{
		"summary":     req.Summary,
		"question":    req.Question,
		"sample_rows": req.SampleRows,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	body, err := c.post(ctx, "/v1/analyze", payload)
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	if analysis.Text == "" {
		return nil, fmt.Errorf("empty analysis response")
	}
	return &analysis, nil
}

// CleaningSuggestions asks the service which cleaning actions it would
// apply to the dataset.
func (c *Client) CleaningSuggestions(ctx context.Context, summary string, sampleRows []any) ([]Suggestion, error) {
	payload := map[string]any{
		"summary":     summary,
		"sample_rows": sampleRows,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	body, err := c.post(ctx, "/v1/suggestions", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions response: %w", err)
	}
	return resp.Suggestions, nil
}

// post sends a JSON payload and maps HTTP status codes onto the error
// taxonomy.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrUnavailable
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("analyst request failed: %s", resp.Status)
	}

	return respBody, nil
}
