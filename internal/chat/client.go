// AngelaMos | 2026
// client.go

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
)

const userAgent = "qhub-cli/0.1.0"

// Completer produces the assistant's reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions endpoint. Rate
// limited and timed out attempts are retried with exponential backoff.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(cfg config.ChatConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxRetries: maxRetries,
		baseDelay:  cfg.RetryBaseDelay,
	}
}

func (c *Client) Complete(
	ctx context.Context,
	messages []Message,
) (reply string, err error) {
	ctx, span := core.StartSpan(ctx, "chat.Complete",
		attribute.String("chat.model", c.model),
		attribute.Int("chat.messages", len(messages)),
	)
	defer func() { core.EndSpan(span, err) }()

	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		return c.do(ctx, body)
	}

	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "chat completion retry",
			"attempt", attempt, "wait", wait, "error", err)
	}

	reply, err = backoff.RetryNotifyWithData(operation, c.newBackOff(ctx), notify)
	span.SetAttributes(attribute.Int("chat.attempts", attempt))
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.baseDelay << c.maxRetries
	b.MaxElapsedTime = 0

	return backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(c.maxRetries-1)),
		ctx,
	)
}

// do performs one attempt. Errors that should not be retried are wrapped
// with backoff.Permanent.
func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", backoff.Permanent(fmt.Errorf("%w: %w", ErrConnection, err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(payload)),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", backoff.Permanent(&StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(payload)),
		})
	}

	var parsed completionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return "", backoff.Permanent(fmt.Errorf("API error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(ErrEmptyResponse)
	}

	return parsed.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
