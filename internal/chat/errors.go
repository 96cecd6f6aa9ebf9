// AngelaMos | 2026
// errors.go

package chat

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingAPIKey = errors.New("chat API key not configured")
	ErrEmptyResponse = errors.New("no response from AI")
	ErrTimeout       = errors.New("request timeout")
	ErrConnection    = errors.New("network connection failed")
)

const (
	timeoutMessage   = "Request timed out. The AI service might be busy. Please try again."
	rateLimitMessage = "Rate limit reached. Please wait a moment before trying again."
	authMessage      = "Authentication failed. Please check your API key in CLOUDFLARE_AI_TOKEN environment variable."
	networkMessage   = "Network error. Please check your internet connection."
)

// StatusError is a non-2xx reply from the completion endpoint.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error %s: %s", e.Status, e.Body)
}

// FriendlyError turns a completion failure into the line shown in the
// chat. Known error types are matched first, then the error text, best
// effort.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return "No API key configured. Set CLOUDFLARE_AI_TOKEN or CHAT_API_KEY and restart."
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrTimeout):
		return timeoutMessage
	case errors.Is(err, ErrConnection):
		return networkMessage
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case 429:
			return rateLimitMessage
		case 401, 403:
			return authMessage
		}
	}

	text := err.Error()
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "deadline exceeded"):
		return timeoutMessage
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return rateLimitMessage
	case strings.Contains(lower, "401"), strings.Contains(lower, "403"):
		return authMessage
	case strings.Contains(lower, "network"), strings.Contains(lower, "connection"):
		return networkMessage
	default:
		return "AI service error: " + text
	}
}
