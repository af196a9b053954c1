// Package assistant talks to an OpenAI compatible chat completions API and
// turns conversation history into a single assistant reply.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pamcare/pamcare/config"
)

// systemPrompt frames every conversation. It is always the first message of a
// completion request and never stored in the chat history.
const systemPrompt = "You are Pamcare, a friendly healthcare companion. " +
	"You help users understand appointments, medications and general wellness topics in plain language. " +
	"You never diagnose conditions or prescribe treatment, and you remind users to consult a medical professional for anything serious."

var (
	ErrRateLimited = errors.New("assistant: too many requests")
	ErrDisabled    = errors.New("assistant: not enabled")
)

// Message is one turn of a conversation in the wire format of the API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant is the interface the chat handlers depend on.
type Assistant interface {
	Complete(ctx context.Context, history []Message) (string, error)
}

// Client implements Assistant against a chat completions endpoint. It is safe
// for concurrent use; the rate limiter bounds outbound API calls globally.
type Client struct {
	configProvider *config.Provider
	logger         *slog.Logger
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
}

var _ Assistant = (*Client)(nil)

func New(provider *config.Provider, logger *slog.Logger) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("assistant: config provider is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("assistant: logger is required")
	}

	cfg := provider.Get().Assistant

	limit := rate.Inf
	if cfg.RateLimit.Duration > 0 {
		limit = rate.Every(cfg.RateLimit.Duration)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		configProvider: provider,
		logger:         logger,
		rateLimiter:    rate.NewLimiter(limit, burst),
		// Per request deadlines come from the context, not the client.
		httpClient: &http.Client{},
	}, nil
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the system prompt plus the given history and returns the
// reply text. History must be ordered oldest first.
func (c *Client) Complete(ctx context.Context, history []Message) (string, error) {
	cfg := c.configProvider.Get().Assistant
	if !cfg.Enabled {
		return "", ErrDisabled
	}

	if !c.rateLimiter.Allow() {
		return "", ErrRateLimited
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	body, err := json.Marshal(completionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: failed to encode request: %w", err)
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assistant: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.ApiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant: request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close assistant response body", "err", err)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("assistant: failed to read response: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("assistant: failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("assistant: api returned status %d: %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant: api returned no choices")
	}

	reply := parsed.Choices[0].Message.Content
	c.logger.Info("assistant completion",
		"model", cfg.Model,
		"history_len", len(history),
		"duration", time.Since(start))

	return reply, nil
}
