// Package scorer calls the external ML severity service and supplies a
// deterministic fallback when the service fails or times out.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emergency-alert-service/models"
)

// Client talks to the severity scoring endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a scorer client with a bounded request timeout. An
// empty baseURL disables remote scoring and every call falls back.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether a remote scoring endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type scoreRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type scoreResponse struct {
	Severity int      `json:"severity"`
	Tags     []string `json:"tags"`
	Error    string   `json:"error,omitempty"`
}

// Score asks the ML service for a severity in [0,100] plus tags.
func (c *Client) Score(ctx context.Context, kind models.ReportKind, content string) (*models.ScorerResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("scorer endpoint not configured")
	}

	payload, err := json.Marshal(scoreRequest{Kind: string(kind), Content: content})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read scorer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed scoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse scorer response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("scorer error: %s", parsed.Error)
	}
	if parsed.Severity < 0 || parsed.Severity > 100 {
		return nil, fmt.Errorf("scorer returned severity %d out of range", parsed.Severity)
	}

	return &models.ScorerResult{Severity: parsed.Severity, Tags: parsed.Tags}, nil
}
