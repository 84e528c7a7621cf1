package clients

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
)

const maxDetailSize = 300

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends the system instruction and a single user prompt and returns the completion text
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// statusError renders an LLM HTTP failure so that auth, permission, rate limit
// and server problems read differently.
func statusError(provider string, status int, body string) error {
	detail := domain.Truncate(body, maxDetailSize)

	var msg string
	switch {
	case status == http.StatusUnauthorized:
		msg = fmt.Sprintf("Authentication error (401): invalid %s API key", provider)
	case status == http.StatusForbidden:
		msg = fmt.Sprintf("Authorization error (403): the %s API key lacks permission", provider)
	case status == http.StatusTooManyRequests:
		msg = "Rate limit exceeded (429): too many requests, try again later"
	case status >= 500 && status <= 599:
		msg = fmt.Sprintf("Server error (%d): %s API is experiencing issues", status, provider)
	default:
		msg = fmt.Sprintf("API returned error status %d", status)
	}
	if detail != "" {
		msg += ": " + detail
	}

	return domain.ExternalAPIError(status, msg, nil)
}

// retryable reports whether a failed completion may succeed on another attempt:
// rate limits, server errors and transport failures.
func retryable(err error) bool {
	var e *domain.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case domain.KindNetwork:
		return true
	case domain.KindExternalAPI:
		return e.Status == http.StatusTooManyRequests || e.Status >= 500
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
