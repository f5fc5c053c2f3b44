package llm

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

	"claude-agent/internal/config"
)

const (
	messagesPath = "/v1/messages"

	// invokeTimeout bounds a single completion round trip.
	invokeTimeout = 60 * time.Second

	// maxErrorBodyBytes caps how much of an error response we keep.
	maxErrorBodyBytes = 1024
)

// APIError is a non-2xx response from the messages endpoint. Body holds the
// provider's error payload, truncated, for display to the user.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if body == "" {
		body = "Unknown error"
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, body)
}

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	maxTokens  int
	temp       float64
	client     *http.Client
}

var _ Backend = (*AnthropicProvider)(nil)

// NewAnthropicProvider builds a provider from cfg, reading the API key from
// cfg.KeyFile. A missing or empty key file is a construction error so the
// caller can fail before any conversation starts.
func NewAnthropicProvider(cfg *config.Config) (*AnthropicProvider, error) {
	key, err := config.LoadAPIKey(cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	return &AnthropicProvider{
		apiKey:     key,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		temp:       cfg.Temperature,
		client:     &http.Client{Timeout: invokeTimeout},
	}, nil
}

// Model reports the model this provider sends requests for.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Invoke sends one messages request and decodes the reply. It makes a single
// attempt: transport errors and non-2xx statuses come back as errors with no
// retry.
func (p *AnthropicProvider) Invoke(ctx context.Context, req Request) (*Response, error) {
	payload := messagesRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temp,
		System:      req.SystemPrompt,
		Messages:    req.Messages,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", p.apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := &Response{
		Content:      decoded.text(),
		InputTokens:  decoded.Usage.InputTokens,
		OutputTokens: decoded.Usage.OutputTokens,
	}
	slog.Debug("messages request completed",
		"model", p.model,
		"messages", len(req.Messages),
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens,
		"duration", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// Wire types for the messages endpoint.

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// text returns the first content block's text, or "" when the reply carries
// no content blocks.
func (r *messagesResponse) text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}
