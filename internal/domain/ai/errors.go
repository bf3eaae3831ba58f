package ai

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrMissingAPIKey indicates no credential was configured. Surfaced before
// any network call is made; sending an unauthenticated request is never
// attempted.
var ErrMissingAPIKey = errors.New("ai api key not configured")

// RequestError covers every way the model call can fail in transit: network
// failure, timeout, non-2xx status, or a response envelope without the
// expected message content. Body keeps the raw response for diagnostics.
// A timeout is not a distinct kind; the caller cannot tell a slow server
// from a dead one.
type RequestError struct {
	StatusCode int    // 0 when the failure happened below HTTP
	Body       string // raw response body or provider message, verbatim
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai request failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Retryable reports whether a caller-side retry policy may reasonably
// resubmit: transport-level failures and 5xx/429 responses qualify, other
// 4xx responses do not.
func (e *RequestError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == 429
}
