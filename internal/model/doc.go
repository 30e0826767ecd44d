// Package model defines the core data structures used throughout SourceWeaver.
//
// This package contains the following main types:
//   - Target: Validated investigation target (IP, domain, URL, email, ...)
//   - ProviderResult: Outcome of a single provider query
//   - AggregateReport: Merged result of one fan-out investigation
//   - ThreatScore: Bounded heuristic score derived from aggregated signals
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (provider clients, aggregate, score, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
