package llm

import (
	"errors"
	"fmt"
)

// Error definitions for the llm package. Every error returned by SendChat
// wraps exactly one of these.
var (
	// ErrConfiguration is returned for a missing API key, endpoint or model, or
	// for empty prompts.
	ErrConfiguration = errors.New("llm client misconfigured")

	// ErrAuth is returned when the provider rejects the credentials (401/403).
	ErrAuth = errors.New("provider rejected credentials")

	// ErrRateLimit is returned when the provider throttles the request (429).
	ErrRateLimit = errors.New("provider rate limit exceeded")

	// ErrProvider is returned for provider-side failures (5xx).
	ErrProvider = errors.New("provider error")

	// ErrClient is returned for any other 4xx response.
	ErrClient = errors.New("provider rejected request")

	// ErrNetwork is returned when the provider cannot be reached.
	ErrNetwork = errors.New("network error calling provider")

	// ErrTimeout is returned when a single attempt exceeds the request timeout.
	ErrTimeout = errors.New("provider request timed out")

	// ErrInvalidResponse is returned when a 2xx body lacks the expected shape.
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// maxProviderMessage bounds the provider message carried on an HTTPError.
const maxProviderMessage = 200

// HTTPError is a non-2xx provider response. It unwraps to the sentinel that
// classifies its status code.
type HTTPError struct {
	StatusCode int
	Message    string
	kind       error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: status %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", e.kind, e.StatusCode, e.Message)
}

// Unwrap returns the classifying sentinel.
func (e *HTTPError) Unwrap() error {
	return e.kind
}

// NewHTTPError classifies statusCode and builds the corresponding error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	if r := []rune(message); len(r) > maxProviderMessage {
		message = string(r[:maxProviderMessage])
	}
	return &HTTPError{StatusCode: statusCode, Message: message, kind: classifyStatus(statusCode)}
}

func classifyStatus(code int) error {
	switch {
	case code == 401 || code == 403:
		return ErrAuth
	case code == 429:
		return ErrRateLimit
	case code >= 500:
		return ErrProvider
	default:
		return ErrClient
	}
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrProvider)
}
