package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no target is specified.
	// This error occurs when neither --list nor a positional argument
	// provides a target.
	ErrNoTarget = errors.New("no target specified: provide a target value or use --list")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// A concurrency of zero would mean no queries run at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxResults is returned when the per-query result count is
	// outside 1-10. The search provider rejects values above ten.
	ErrInvalidMaxResults = errors.New("invalid max results: must be between 1 and 10")

	// ErrInvalidDelay is returned when the inter-target delay is negative.
	// Use 0 for no delay between targets.
	ErrInvalidDelay = errors.New("invalid inter-target delay: must be non-negative")

	// ErrInvalidQuota is returned when a search quota is negative.
	// Use 0 to fall back to the provider's documented free-tier limits.
	ErrInvalidQuota = errors.New("invalid search quota: must be non-negative")

	// ErrInvalidPriority is returned when the template priority is not
	// one of "high", "medium", or "low".
	ErrInvalidPriority = errors.New("invalid priority: must be high, medium, low, or all")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
