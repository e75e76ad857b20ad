// Package genai provides a minimal HTTP client for OpenAI-compatible
// chat-completion endpoints. It exists so the assistant responder can talk to
// any hosted model without pulling in a vendor SDK.
//
// The client is deliberately small: one request shape, one response shape,
// explicit error returns. Retry and timing policy live with the caller.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyCompletion indicates the endpoint answered 200 but returned no
// usable choice.
var ErrEmptyCompletion = errors.New("genai: empty completion")

// TextGenerator produces a single completion for a prompt. It is the seam the
// assistant responder depends on, so tests can substitute a fake.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Message is one turn of a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	system   string
	http     *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSystemPrompt sets a system message prepended to every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.system = prompt }
}

// NewClient builds a chat-completion client. The endpoint must be the full
// URL of the completions route.
func NewClient(endpoint, model, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate implements TextGenerator. It sends a single-turn prompt and
// returns the first choice's trimmed content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msgs := make([]Message, 0, 2)
	if c.system != "" {
		msgs = append(msgs, Message{Role: "system", Content: c.system})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   512,
	})
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("genai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genai: endpoint returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
