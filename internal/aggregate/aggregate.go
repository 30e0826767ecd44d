package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sourceweaver/sourceweaver/internal/dork"
	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider"
)

// Default tuning. Five results per query keeps a full template run
// inside a modest daily search quota.
const (
	defaultConcurrency        = 5
	defaultMaxResultsPerQuery = 5
	defaultInterTargetDelay   = time.Second
)

// highValuePreviewLen is the number of items carried into a
// high-value finding's preview.
const highValuePreviewLen = 3

// Executor runs one rendered query against a search provider.
// Implementations must be safe for concurrent use.
type Executor interface {
	// Execute returns the hits for a query, the provider-reported total
	// match count, and the provider name used in result records.
	Execute(ctx context.Context, query string, maxResults int) ([]model.SearchItem, int64, error)

	// Provider returns the provider identifier recorded on results.
	Provider() string
}

// Aggregator fans template queries out to an Executor and folds the
// outcomes into reports. Create with New.
type Aggregator struct {
	executor    Executor
	concurrency int
	maxResults  int
	delay       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency caps the number of queries in flight per target.
// Default is 5.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithMaxResultsPerQuery sets how many items each query requests.
func WithMaxResultsPerQuery(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxResults = n
		}
	}
}

// WithInterTargetDelay sets the pause between targets in RunMany.
func WithInterTargetDelay(d time.Duration) Option {
	return func(a *Aggregator) {
		if d >= 0 {
			a.delay = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// withSleep replaces the delay sleeper. Intended for tests.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(a *Aggregator) {
		a.sleep = sleep
	}
}

// New creates an Aggregator over the given executor.
func New(executor Executor, opts ...Option) *Aggregator {
	a := &Aggregator{
		executor:    executor,
		concurrency: defaultConcurrency,
		maxResults:  defaultMaxResultsPerQuery,
		delay:       defaultInterTargetDelay,
		sleep:       sleepContext,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the given templates for one target and merges the
// outcomes. Individual query failures are recorded in the report, not
// returned; the error is non-nil only when the context is cancelled.
//
// Templates execute highest priority first. With concurrency above
// one, dispatch order follows priority but completion order does not.
func (a *Aggregator) Run(ctx context.Context, target model.Target, templates []dork.Template) (*model.AggregateReport, error) {
	ordered := make([]dork.Template, len(templates))
	copy(ordered, templates)
	dork.SortByPriority(ordered)

	a.logger.Info("starting query fan-out",
		"target", target.String(),
		"templates", len(ordered),
		"concurrency", a.concurrency,
	)

	start := time.Now()
	report := model.NewAggregateReport(target)
	vars := varsFor(target)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, tmpl := range ordered {
		tmpl := tmpl
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			result := a.runQuery(gctx, tmpl, vars)

			mu.Lock()
			mergeResult(report, tmpl, result)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	report.Elapsed = time.Since(start)

	a.logger.Info("query fan-out complete",
		"target", target.String(),
		"successful", report.Successful,
		"failed", report.Failed,
		"total_results", report.TotalItems,
		"elapsed", report.Elapsed,
	)
	return report, err
}

// RunMany executes the templates for several targets in sequence with
// the configured delay between targets. A cancelled context returns
// the reports completed so far along with the context error; no other
// per-target failure stops the sequence.
func (a *Aggregator) RunMany(ctx context.Context, targets []model.Target, templates []dork.Template) ([]*model.AggregateReport, error) {
	reports := make([]*model.AggregateReport, 0, len(targets))
	for i, target := range targets {
		if i > 0 && a.delay > 0 {
			if err := a.sleep(ctx, a.delay); err != nil {
				return reports, err
			}
		}

		report, err := a.Run(ctx, target, templates)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// runQuery renders and executes one template, translating any failure
// into the result's error record.
func (a *Aggregator) runQuery(ctx context.Context, tmpl dork.Template, vars dork.Vars) *model.ProviderResult {
	query := tmpl.Render(vars)
	result := &model.ProviderResult{
		Provider:  a.executor.Provider(),
		Query:     query,
		Category:  tmpl.Category,
		Objective: tmpl.Objective,
		Priority:  tmpl.Priority.String(),
	}

	a.logger.Debug("executing query", "objective", tmpl.Objective, "query", query)

	start := time.Now()
	items, total, err := a.executor.Execute(ctx, query, a.maxResults)
	result.Elapsed = time.Since(start)

	if err != nil {
		result.Err = provider.ToQueryError(err)
		a.logger.Warn("query failed",
			"objective", tmpl.Objective,
			"kind", result.Err.Kind,
			"error", result.Err.Message,
		)
		return result
	}

	result.Items = items
	result.TotalCount = total
	return result
}

// mergeResult folds one query outcome into the report. Caller holds
// the report lock.
func mergeResult(report *model.AggregateReport, tmpl dork.Template, result *model.ProviderResult) {
	report.Results[tmpl.Key()] = result

	if !result.OK() {
		report.Failed++
		return
	}

	report.Successful++
	report.TotalItems += result.TotalCount
	addCategory(report, tmpl.Category)

	if tmpl.Priority == dork.PriorityHigh && result.TotalCount > 0 {
		preview := result.Items
		if len(preview) > highValuePreviewLen {
			preview = preview[:highValuePreviewLen]
		}
		report.HighValue = append(report.HighValue, model.HighValueFinding{
			Objective:   tmpl.Objective,
			Category:    tmpl.Category,
			ResultCount: result.TotalCount,
			Preview:     preview,
		})
	}
}

// addCategory appends a category on first sight, preserving order.
func addCategory(report *model.AggregateReport, category string) {
	for _, existing := range report.Categories {
		if existing == category {
			return
		}
	}
	report.Categories = append(report.Categories, category)
}

// varsFor maps a target onto the template substitution values.
func varsFor(target model.Target) dork.Vars {
	if target.Kind == model.TargetDomain {
		return dork.Vars{Domain: target.Value}
	}
	return dork.Vars{Target: target.Value}
}
