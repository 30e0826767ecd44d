package model

// ErrorKind classifies a failed provider call.
// Every outbound request resolves to exactly one kind so that the
// aggregator and callers can distinguish "no findings" from "provider
// unreachable" from "quota exhausted, retry later".
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons. The String() method provides
// the wire representation used in JSON reports.
type ErrorKind int

const (
	// ErrorNone means the call succeeded. The zero value is deliberate:
	// a ProviderResult without an error carries ErrorNone.
	ErrorNone ErrorKind = iota

	// ErrorRateLimited means the provider signaled a quota violation
	// despite local throttling (HTTP 429). Retryable after the
	// provider-specified backoff.
	ErrorRateLimited

	// ErrorUnauthorized means a bad or missing credential (HTTP 401).
	// Fatal for that provider, not retryable.
	ErrorUnauthorized

	// ErrorForbidden means a malformed required header or identity
	// (HTTP 403). A configuration bug, not retryable.
	ErrorForbidden

	// ErrorNotFound means the resource genuinely does not exist on an
	// endpoint where 404 signals absence rather than empty data.
	ErrorNotFound

	// ErrorTimeout means the network deadline was exceeded. Retryable at
	// the caller's discretion; counted as a failed query in aggregation.
	ErrorTimeout

	// ErrorMalformedResponse means the payload could not be decoded at
	// all. Partial decode failures are downgraded, not classified here.
	ErrorMalformedResponse

	// ErrorValidation means the target was rejected before any network
	// call. Fatal for that single target only.
	ErrorValidation

	// ErrorServer covers 5xx responses and anything unexpected.
	ErrorServer
)

// String returns the report-facing name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorRateLimited:
		return "rate_limited"
	case ErrorUnauthorized:
		return "unauthorized"
	case ErrorForbidden:
		return "forbidden"
	case ErrorNotFound:
		return "not_found"
	case ErrorTimeout:
		return "timeout"
	case ErrorMalformedResponse:
		return "malformed_response"
	case ErrorValidation:
		return "validation_error"
	case ErrorServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its string name.
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Retryable reports whether a call failing with this kind may succeed
// on a later attempt without configuration changes.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorRateLimited, ErrorTimeout, ErrorServer:
		return true
	default:
		return false
	}
}
