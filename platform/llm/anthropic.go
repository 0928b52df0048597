// Package llm streams text completions from the Anthropic Messages API.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const apiVersion = "2023-06-01"

var (
	ErrNotConfigured = errors.New("llm: api key not configured")
	// ErrIncompleteStream means the connection ended before message_stop.
	ErrIncompleteStream = errors.New("llm: stream ended before message_stop")
)

// APIError is an error reported by the API, either as an HTTP status or as an
// error event inside the stream.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm: %d %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("llm: %s: %s", e.Type, e.Message)
}

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type Client struct {
	http      *resty.Client
	apiKey    string
	model     string
	maxTokens int
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.anthropic.com"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	httpClient := resty.New().
		SetBaseURL(base).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	return &Client{http: httpClient, apiKey: cfg.APIKey, model: cfg.Model, maxTokens: maxTokens}
}

func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
	Messages  []message `json:"messages"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamText sends prompt as a single user message and calls onDelta for
// every text fragment in the order received. It returns the full text only
// when the stream reached message_stop.
func (c *Client) StreamText(ctx context.Context, prompt string, onDelta func(string) error) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetBody(messagesRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Stream:    true,
			Messages:  []message{{Role: "user", Content: prompt}},
		}).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("llm: request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", decodeHTTPError(resp.StatusCode(), body)
	}

	var (
		sb       strings.Builder
		finished bool
	)
	err = readSSE(body, func(event, data string) error {
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("llm: decode %s event: %w", event, err)
		}
		switch ev.Type {
		case "content_block_delta":
			if ev.Delta.Type != "text_delta" || ev.Delta.Text == "" {
				return nil
			}
			sb.WriteString(ev.Delta.Text)
			if onDelta != nil {
				return onDelta(ev.Delta.Text)
			}
		case "message_stop":
			finished = true
		case "error":
			return &APIError{Type: ev.Error.Type, Message: ev.Error.Message}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !finished {
		return "", ErrIncompleteStream
	}
	return sb.String(), nil
}

func decodeHTTPError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error.Message == "" {
		return &APIError{Status: status, Type: "http_error", Message: strings.TrimSpace(string(raw))}
	}
	return &APIError{Status: status, Type: payload.Error.Type, Message: payload.Error.Message}
}
