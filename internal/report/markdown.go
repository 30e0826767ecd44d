package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/sourceweaver/sourceweaver/internal/analyze"
	"github.com/sourceweaver/sourceweaver/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the investigation report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AggregateReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeHighValue(md, report)
	w.writeResults(md, report)
	w.writeRecommendations(md, report.Recommendations)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBulk outputs the bulk alias report in Markdown format.
func (w *MarkdownWriter) WriteBulk(report *analyze.BulkAliasReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("SourceWeaver Bulk Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Aliases", strconv.Itoa(report.TotalTargets)},
			{"Successful", strconv.Itoa(report.Successful)},
			{"Failed", strconv.Itoa(report.Failed)},
		},
	})
	md.PlainText("")

	md.H2("Aliases")
	md.PlainText("")

	aliases := make([]string, 0, len(report.Reports))
	for alias := range report.Reports {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	rows := make([][]string, 0, len(aliases))
	for _, alias := range aliases {
		r := report.Reports[alias]
		status := "✅ ok"
		if r.Successful == 0 && r.Failed > 0 {
			status = "❌ failed"
		}
		rows = append(rows, []string{
			"`" + alias + "`",
			status,
			strconv.FormatInt(r.TotalItems, 10),
			strconv.Itoa(len(r.HighValue)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Alias", "Status", "Results", "High Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Platforms With Results")
	md.PlainText("")
	if len(report.Platforms) == 0 {
		md.PlainText("No platforms returned results.")
		md.PlainText("")
	} else {
		md.BulletList(report.Platforms...)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with investigation information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AggregateReport) {
	md.H1("SourceWeaver Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target.Value + "`"},
			{"Kind", string(report.Target.Kind)},
			{"Elapsed", report.Elapsed.String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AggregateReport) string {
	switch {
	case report.Successful == 0 && report.Failed > 0:
		return "❌ Failed - every query failed"
	case report.Failed > 0:
		return "⚠️ Partial - " + strconv.Itoa(report.Failed) + " queries failed"
	default:
		return "✅ Complete"
	}
}

// writeSummary writes the query summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Query Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Successful queries", strconv.Itoa(report.Successful)},
			{"Failed queries", strconv.Itoa(report.Failed)},
			{"Total results", strconv.FormatInt(report.TotalItems, 10)},
			{"High-value findings", strconv.Itoa(len(report.HighValue))},
		},
	})
	md.PlainText("")

	// Add pie chart if any category produced results
	if report.TotalItems > 0 {
		w.writePieChart(md, report)
	}

	// Add alert based on findings
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of result distribution by category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.AggregateReport) {
	totals := make(map[string]int64)
	for _, r := range report.Results {
		if r.OK() && r.TotalCount > 0 {
			totals[r.Category] += r.TotalCount
		}
	}
	if len(totals) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Results by Category"),
		piechart.WithShowData(true),
	)

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		chart.LabelAndIntValue(category, uint64(totals[category]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the findings.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AggregateReport) {
	switch {
	case report.Successful == 0 && report.Failed > 0:
		md.Cautionf(
			"Every query failed (%d failures). The search provider may be unavailable or out of quota.",
			report.Failed,
		)
	case len(report.HighValue) > 0:
		md.Warningf(
			"%d high-priority quer(ies) returned findings. Review the high-value findings section first.",
			len(report.HighValue),
		)
	case report.TotalItems > 0:
		md.Importantf(
			"%d results were found. Review each result for relevance before acting on it.",
			report.TotalItems,
		)
	default:
		md.Tip("No indexed exposure found for this target.")
	}
	md.PlainText("")
}

// writeHighValue writes the high-value findings section.
func (w *MarkdownWriter) writeHighValue(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("High-Value Findings")
	md.PlainText("")

	if len(report.HighValue) == 0 {
		md.PlainText("No high-value findings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.HighValue))
	for i, f := range report.HighValue {
		preview := "-"
		if len(f.Preview) > 0 {
			preview = truncateString(f.Preview[0].Link, 60)
		}
		rows[i] = []string{
			f.Objective,
			f.Category,
			strconv.FormatInt(f.ResultCount, 10),
			preview,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Objective", "Category", "Results", "First Hit"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeResults writes per-query results grouped by key.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Results")
	md.PlainText("")

	if len(report.Results) == 0 {
		md.PlainText("No queries were executed.")
		md.PlainText("")
		return
	}

	keys := make([]string, 0, len(report.Results))
	for key := range report.Results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		r := report.Results[key]
		status := "✅"
		detail := strconv.FormatInt(r.TotalCount, 10) + " results"
		if !r.OK() {
			status = "❌"
			detail = truncateString(r.Err.Message, 60)
		} else if r.TotalCount == 0 {
			status = "⚪"
			detail = "no results"
		}
		rows = append(rows, []string{key, r.Priority, status, detail})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Query", "Priority", "Status", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	// Expandable hit lists for queries that found something
	for _, key := range keys {
		r := report.Results[key]
		if !r.OK() || len(r.Items) == 0 {
			continue
		}
		var body string
		for _, item := range r.Items {
			body += "- [" + item.Title + "](" + item.Link + ")\n"
		}
		md.Details(key, body)
	}
	md.PlainText("")
}

// writeRecommendations writes the recommendations section.
func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, recommendations []string) {
	if len(recommendations) == 0 {
		return
	}

	md.H2("Recommendations")
	md.PlainText("")
	md.BulletList(recommendations...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [SourceWeaver](https://github.com/sourceweaver/sourceweaver)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
