package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

// Shared client errors.
//
// Design decision: We define specific sentinel errors rather than wrapping
// all failures generically. This allows callers to handle different failure
// modes appropriately (e.g., surface a configuration problem for a missing
// key, but retry on a rate limit).
var (
	// ErrMissingAPIKey is returned when an operation requires an API key
	// and the client was constructed without one.
	ErrMissingAPIKey = errors.New("API key required for this operation")

	// ErrNotInitialized is returned when a client method is called before
	// the client's session has been opened.
	ErrNotInitialized = errors.New("client session not initialized")
)

// APIError describes a failed request to an upstream service. It carries
// the classified error kind alongside the raw HTTP status so callers can
// branch on semantics without re-parsing status codes.
type APIError struct {
	// Kind is the classified failure category.
	Kind model.ErrorKind

	// StatusCode is the HTTP status that produced this error.
	// Zero for transport-level failures that never got a response.
	StatusCode int

	// Message is a short human-readable description. It must never
	// contain request payloads; callers pass queries and those queries
	// may hold sensitive values.
	Message string

	// RetryAfter is the upstream-suggested backoff for rate limit
	// errors, parsed from the Retry-After header. Zero when absent.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is worth retrying.
func (e *APIError) Retryable() bool {
	return e.Kind.Retryable()
}

// Classify maps an HTTP status code to an error kind. Statuses that a
// client treats as success or empty (200, 204, 404) never reach this
// function; they are handled before an error is constructed.
func Classify(statusCode int) model.ErrorKind {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return model.ErrorRateLimited
	case statusCode == http.StatusUnauthorized:
		return model.ErrorUnauthorized
	case statusCode == http.StatusForbidden:
		return model.ErrorForbidden
	case statusCode == http.StatusNotFound:
		return model.ErrorNotFound
	case statusCode >= 500:
		return model.ErrorServer
	default:
		return model.ErrorServer
	}
}

// StatusError builds an APIError from a non-success HTTP response.
// The Retry-After header is honored for rate limit responses; both the
// delta-seconds and HTTP-date forms appear in the wild.
func StatusError(resp *http.Response, message string) *APIError {
	apiErr := &APIError{
		Kind:       Classify(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    message,
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return apiErr
}

// TransportError builds an APIError for a request that failed before an
// HTTP response arrived. Context deadline and net timeouts are reported
// as timeout errors; everything else as a server-side failure.
func TransportError(err error) *APIError {
	kind := model.ErrorServer
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = model.ErrorTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = model.ErrorTimeout
	}
	return &APIError{
		Kind:    kind,
		Message: err.Error(),
	}
}

// DecodeError builds an APIError for a response body that could not be
// decoded as the expected shape.
func DecodeError(err error) *APIError {
	return &APIError{
		Kind:    model.ErrorMalformedResponse,
		Message: fmt.Sprintf("decode response: %v", err),
	}
}

// PartialDecode reports whether a JSON decode failure left usable data
// behind. encoding/json keeps decoding past a field type mismatch, so
// on an UnmarshalTypeError the destination holds every field that did
// parse and the caller should keep the result as a best-effort partial
// rather than discard the whole response.
func PartialDecode(err error) bool {
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// ValidationError builds an APIError for invalid caller input, rejected
// before any request is sent.
func ValidationError(message string) *APIError {
	return &APIError{
		Kind:    model.ErrorValidation,
		Message: message,
	}
}

// parseRetryAfter parses a Retry-After header value. Returns zero for
// empty or unparseable values.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
