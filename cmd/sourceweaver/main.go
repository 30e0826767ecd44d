// Package main provides the entry point for the SourceWeaver CLI.
//
// SourceWeaver is an OSINT aggregation tool that fans a single
// investigative query out to web-search, breach-database, and
// malware-reputation providers and merges the answers into one report.
//
// Usage:
//
//	sourceweaver investigate <alias>
//	sourceweaver exposure --account <email>
//	sourceweaver reputation <domain>
//	sourceweaver scan --kind ip <address>
//
// See --help for all available options.
package main

// main is the entry point for SourceWeaver.
func main() {
	Execute()
}
