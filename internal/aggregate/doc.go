// Package aggregate fans a target's query templates out to a search
// executor with bounded concurrency and folds the per-query outcomes
// into one report.
//
// Query failures never abort a run: each failed query is recorded in
// the report with its classified error, and the success and failure
// counters always sum to the number of templates executed. Multiple
// targets can be processed in sequence with a fixed delay between
// them, each target isolated from its neighbors' failures.
package aggregate
