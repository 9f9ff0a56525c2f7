// Package quote fetches short motivational quotes from a text completion
// endpoint and keeps the latest one current.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const maxErrorBody = 4 << 10

var (
	// ErrMissingAPIKey is returned when the key variable is unset or empty.
	ErrMissingAPIKey = errors.New("api key not set")
	// ErrNoChoices is returned for a well-formed response with no completions.
	ErrNoChoices = errors.New("completion returned no choices")
)

// StatusError is a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// Generator produces one quote per call.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context) (string, error) { return f(ctx) }

// ClientConfig configures a CompletionClient.
type ClientConfig struct {
	Endpoint    string
	APIKeyEnv   string // name of the variable holding the key
	Prompt      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// CompletionClient asks a completions endpoint for a single quote.
type CompletionClient struct {
	config ClientConfig
	client *http.Client
	getenv func(string) string
}

// NewCompletionClient creates a client. The API key is looked up on every
// call so it can be rotated without a restart.
func NewCompletionClient(cfg ClientConfig) *CompletionClient {
	return &CompletionClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		getenv: os.Getenv,
	}
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	N           int      `json:"n"`
	Stop        []string `json:"stop"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Generate requests one completion and returns its raw text.
func (c *CompletionClient) Generate(ctx context.Context) (string, error) {
	key := c.getenv(c.config.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s: %w", c.config.APIKeyEnv, ErrMissingAPIKey)
	}

	body, err := json.Marshal(completionRequest{
		Prompt:      c.config.Prompt,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoChoices
	}
	return out.Choices[0].Text, nil
}
