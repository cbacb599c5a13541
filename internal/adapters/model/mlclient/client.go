// Package mlclient scores reviews with a remote classifier sidecar over HTTP
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
)

// DefaultTimeout bounds every sidecar call
const DefaultTimeout = 5 * time.Second

// PredictRequest is the body for POST /predict
type PredictRequest struct {
	Text string `json:"text"`
}

// PredictResponse is the body returned by POST /predict
type PredictResponse struct {
	FakeProbability  float64 `json:"fake_probability"`
	ModelVersion     string  `json:"model_version"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

type healthResponse struct {
	ModelVersion string `json:"model_version"`
}

// Client calls the sidecar; it implements engine.ModelScorer
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL; timeout <= 0 uses DefaultTimeout
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict sends the canonical text to the sidecar.
// Transport failures, timeouts and non-200 replies wrap engine.ErrModelUnavailable
func (c *Client) Predict(ctx context.Context, text string) (*PredictResponse, error) {
	body, err := json.Marshal(PredictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: sidecar returned %d", engine.ErrModelUnavailable, resp.StatusCode)
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", engine.ErrModelUnavailable, err)
	}
	return &out, nil
}

// Score implements engine.ModelScorer
func (c *Client) Score(ctx context.Context, t normalize.Text) (float64, error) {
	r, err := c.Predict(ctx, t.Value)
	if err != nil {
		return 0, err
	}
	return r.FakeProbability, nil
}

// Health calls GET /health and returns the sidecar's model version
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", engine.ErrModelUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unhealthy status %d", engine.ErrModelUnavailable, resp.StatusCode)
	}
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return "", fmt.Errorf("%w: decode health: %w", engine.ErrModelUnavailable, err)
	}
	return h.ModelVersion, nil
}

// Ping satisfies the readiness probe contract
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}
