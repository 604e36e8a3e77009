// Package ollama is a minimal client for a local Ollama-compatible
// generation service. Absence of the service is not an error: callers probe
// once and fall back to rule-based behavior when it is unreachable.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Options mirrors the generation options accepted by /api/generate.
type Options struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Client talks to a local generation endpoint. It is safe for sequential use
// only; the pipeline is single-threaded by design.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
	logger       *slog.Logger

	available bool
	models    []string
}

// NewClient creates a client for the given base URL (e.g. "http://localhost:11434").
func NewClient(baseURL string, callTimeout, probeTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: callTimeout},
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Probe checks whether the service is reachable and records the model list.
// A failed probe disables all model-assisted features for the run.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("model service unreachable", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}

	c.models = c.models[:0]
	for _, m := range tags.Models {
		c.models = append(c.models, m.Name)
	}
	c.available = len(c.models) > 0
	if c.available {
		c.logger.Info("model service available", "models", len(c.models))
	}
	return c.available
}

// Available reports the result of the last Probe.
func (c *Client) Available() bool { return c.available }

// Models returns the model identifiers reported by the service.
func (c *Client) Models() []string { return c.models }

// ResolveModel returns the first served model whose name contains want,
// falling back to the first available model. Mirrors the service's loose
// tag matching ("qwen2.5:14b" matches "qwen2.5:14b-instruct-q4").
func (c *Client) ResolveModel(want string) string {
	for _, m := range c.models {
		if strings.Contains(m, want) {
			return m
		}
	}
	if len(c.models) > 0 {
		return c.models[0]
	}
	return want
}

// Generate issues a single non-streaming completion and returns the raw
// response text. Errors (network, timeout, non-200, bad JSON) are returned
// for the caller to treat as "no improvement".
func (c *Client) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: opts,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: generate: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}

	return strings.TrimSpace(out.Response), nil
}
