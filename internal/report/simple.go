package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sourceweaver/sourceweaver/internal/analyze"
	"github.com/sourceweaver/sourceweaver/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the investigation report in human-readable format.
func (w *SimpleWriter) Write(report *model.AggregateReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeHighValue(&sb, report)
	w.writeResults(&sb, report)
	w.writeRecommendations(&sb, report.Recommendations)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteBulk outputs the bulk alias report in human-readable format.
func (w *SimpleWriter) WriteBulk(report *analyze.BulkAliasReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    SOURCEWEAVER BULK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Aliases:    %d\n", report.TotalTargets))
	sb.WriteString(fmt.Sprintf("Successful: %d\n", report.Successful))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", report.Failed))
	sb.WriteString("\n")

	// Per-alias summary lines, sorted for stable output
	aliases := make([]string, 0, len(report.Reports))
	for alias := range report.Reports {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		r := report.Reports[alias]
		status := "ok"
		if r.Successful == 0 && r.Failed > 0 {
			status = "FAILED"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s: %d results across %d queries\n",
			status, alias, r.TotalItems, r.Successful+r.Failed))
	}
	sb.WriteString("\n")

	if len(report.Platforms) > 0 || w.showEmpty {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString("PLATFORMS WITH RESULTS\n")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n\n")
		if len(report.Platforms) == 0 {
			sb.WriteString("  No platforms with results\n")
		}
		for _, p := range report.Platforms {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", p))
		}
		sb.WriteString("\n")
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with investigation information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AggregateReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      SOURCEWEAVER REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:     %s (%s)\n", report.Target.Value, report.Target.Kind))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", report.Elapsed))

	switch {
	case report.Successful == 0 && report.Failed > 0:
		sb.WriteString("Status:     FAILED - every query failed\n")
	case report.Failed > 0:
		sb.WriteString(fmt.Sprintf("Status:     PARTIAL - %d of %d queries failed\n",
			report.Failed, report.Successful+report.Failed))
	default:
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the query summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AggregateReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("QUERY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  SUCCESSFUL: %d\n", report.Successful))
	sb.WriteString(fmt.Sprintf("  FAILED:     %d\n", report.Failed))
	sb.WriteString(fmt.Sprintf("  RESULTS:    %d\n", report.TotalItems))
	sb.WriteString("\n")

	if len(report.Categories) > 0 {
		sb.WriteString(fmt.Sprintf("  Categories: %s\n", strings.Join(report.Categories, ", ")))
		sb.WriteString("\n")
	}
}

// writeHighValue writes the high-value findings section.
func (w *SimpleWriter) writeHighValue(sb *strings.Builder, report *model.AggregateReport) {
	if len(report.HighValue) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("HIGH-VALUE FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.HighValue) == 0 {
		sb.WriteString("  No high-value findings\n\n")
		return
	}

	for _, f := range report.HighValue {
		sb.WriteString(fmt.Sprintf("  [!] %s (%s): %d results\n", f.Objective, f.Category, f.ResultCount))
		if w.verbose {
			for _, item := range f.Preview {
				sb.WriteString(fmt.Sprintf("      - %s\n", item.Link))
			}
		}
	}
	sb.WriteString("\n")
}

// writeResults writes per-query results grouped by category.
func (w *SimpleWriter) writeResults(sb *strings.Builder, report *model.AggregateReport) {
	if len(report.Results) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	keys := make([]string, 0, len(report.Results))
	for key := range report.Results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		r := report.Results[key]
		switch {
		case !r.OK():
			sb.WriteString(fmt.Sprintf("  [x] %s: %s\n", key, r.Err.Message))
		case r.TotalCount == 0:
			sb.WriteString(fmt.Sprintf("  [ ] %s: no results\n", key))
		default:
			sb.WriteString(fmt.Sprintf("  [+] %s: %d results\n", key, r.TotalCount))
			if w.verbose {
				for _, item := range r.Items {
					sb.WriteString(fmt.Sprintf("      - %s\n        %s\n", item.Title, item.Link))
				}
			}
		}
	}
	sb.WriteString("\n")
}

// writeRecommendations writes the recommendations section.
func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, recommendations []string) {
	if len(recommendations) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RECOMMENDATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, rec := range recommendations {
		sb.WriteString(fmt.Sprintf("  * %s\n", rec))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by SourceWeaver\n")
	sb.WriteString("https://github.com/sourceweaver/sourceweaver\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
