package model

import (
	"time"
)

// SearchItem is a single search hit returned by the web-search provider.
// Fields mirror the subset of the provider payload the report cares about;
// unknown fields are dropped during decoding.
type SearchItem struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet,omitempty"`
	DisplayLink  string `json:"display_link,omitempty"`
	FormattedURL string `json:"formatted_url,omitempty"`
}

// QueryError records why a single provider query failed.
// It is data, not a Go error: provider-level failures never escape the
// aggregator as errors, they travel inside the ProviderResult.
type QueryError struct {
	// Kind classifies the failure per the provider error taxonomy.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable provider or transport message.
	Message string `json:"message"`

	// HTTPStatus is the original status code, or 0 when the failure
	// happened before a response arrived.
	HTTPStatus int `json:"http_status,omitempty"`

	// RetryAfter is the provider-specified backoff for rate-limit
	// failures, zero otherwise.
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// ProviderResult is the outcome of exactly one provider query.
// It is immutable once produced; the aggregator owns it for the duration
// of merging.
type ProviderResult struct {
	// Provider is the provider identifier (e.g., "websearch").
	Provider string `json:"provider"`

	// Query is the rendered query string that was executed.
	Query string `json:"query"`

	// Category and Objective identify the template that produced the
	// query. Together they form the report key for this result.
	Category  string `json:"category"`
	Objective string `json:"objective"`

	// Priority is the template priority ("high", "medium", "low").
	Priority string `json:"priority"`

	// Items holds the returned hits. Empty on failure or no findings.
	Items []SearchItem `json:"items"`

	// TotalCount is the provider-reported total match count, which may
	// exceed len(Items).
	TotalCount int64 `json:"total_count"`

	// Elapsed is the wall-clock duration of this single query.
	Elapsed time.Duration `json:"elapsed"`

	// Err is nil for successful queries, including queries that simply
	// found nothing.
	Err *QueryError `json:"error,omitempty"`
}

// OK reports whether the query completed without error.
// A query that returned zero items is still OK.
func (r *ProviderResult) OK() bool {
	return r.Err == nil
}

// HighValueFinding flags a high-priority query that returned results.
// It carries a short preview so an operator can triage without opening
// the full per-query result.
type HighValueFinding struct {
	Objective   string       `json:"objective"`
	Category    string       `json:"category"`
	ResultCount int64        `json:"result_count"`
	Preview     []SearchItem `json:"preview,omitempty"`
}

// AggregateReport is the merged result of one fan-out investigation.
// It is built incrementally as results arrive and finalized once all
// planned queries complete.
type AggregateReport struct {
	// Target is the entity this report describes.
	Target Target `json:"target"`

	// Results maps a query key (category_objective, lowercased with
	// underscores) to the result of that query.
	Results map[string]*ProviderResult `json:"results"`

	// Successful and Failed count completed queries by outcome.
	// Their sum always equals the number of planned queries.
	Successful int `json:"successful_queries"`
	Failed     int `json:"failed_queries"`

	// TotalItems sums provider-reported totals across successful queries.
	TotalItems int64 `json:"total_results_found"`

	// Categories lists the distinct template categories that produced at
	// least one completed query, in first-seen order.
	Categories []string `json:"categories_analyzed"`

	// HighValue lists high-priority queries that returned findings.
	HighValue []HighValueFinding `json:"high_value_findings"`

	// Recommendations suggests follow-up steps based on the findings.
	Recommendations []string `json:"recommendations,omitempty"`

	// Elapsed is the wall clock from first dispatch to last completion.
	Elapsed time.Duration `json:"elapsed"`
}

// NewAggregateReport creates an empty report for the given target.
func NewAggregateReport(target Target) *AggregateReport {
	return &AggregateReport{
		Target:  target,
		Results: make(map[string]*ProviderResult),
	}
}
