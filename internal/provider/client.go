package provider

import (
	"errors"
	"net/http"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

// userAgent identifies this tool to upstream services. Some services
// (notably the breach API) reject requests without a descriptive
// User-Agent header.
const userAgent = "SourceWeaver-OSINT-Tool/1.0 (Security Research)"

// redirectLimit caps redirect chains to prevent loops while allowing
// normal redirects.
const redirectLimit = 10

// NewHTTPClient creates an HTTP client tuned for polling-style API
// access: a modest connection pool, a hard per-request timeout, and a
// redirect cap.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= redirectLimit {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// UserAgent returns the User-Agent string sent with every request.
func UserAgent() string {
	return userAgent
}

// ToQueryError converts any client error into the wire-level QueryError
// recorded on a per-query result. APIError fields map across directly;
// anything else becomes a server error with the error text as message.
func ToQueryError(err error) *model.QueryError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &model.QueryError{
			Kind:       apiErr.Kind,
			Message:    apiErr.Message,
			HTTPStatus: apiErr.StatusCode,
			RetryAfter: apiErr.RetryAfter,
		}
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return &model.QueryError{
			Kind:    model.ErrorUnauthorized,
			Message: err.Error(),
		}
	}
	return &model.QueryError{
		Kind:    model.ErrorServer,
		Message: err.Error(),
	}
}
