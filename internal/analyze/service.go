package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/aggregate"
	"github.com/sourceweaver/sourceweaver/internal/dork"
	"github.com/sourceweaver/sourceweaver/internal/model"
)

// highPresenceFloor is the number of distinct queries with findings at
// which an alias is reported as having a strong online footprint.
const highPresenceFloor = 5

// defaultBulkDelay spaces consecutive targets in a bulk investigation
// so one request does not burn through the per-minute search quota.
const defaultBulkDelay = time.Second

// Service plans and runs alias and domain investigations.
// Create with NewService.
type Service struct {
	agg    *aggregate.Aggregator
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBulkDelay sets the pause between targets in a bulk
// investigation. Default is 1s; zero disables the pause.
func WithBulkDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service over the given aggregator.
func NewService(agg *aggregate.Aggregator, opts ...ServiceOption) *Service {
	s := &Service{
		agg:    agg,
		delay:  defaultBulkDelay,
		sleep:  sleepContext,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

// InvestigateAlias runs the alias template set for one username.
// The ceiling selects which template priorities run: PriorityHigh runs
// only high templates, PriorityLow runs everything. The returned
// report carries follow-up recommendations; an error means the alias
// failed validation or the context was cancelled, never that queries
// failed.
func (s *Service) InvestigateAlias(ctx context.Context, alias string, ceiling dork.Priority) (*model.AggregateReport, error) {
	target, err := model.NewTarget(model.TargetAlias, alias)
	if err != nil {
		return nil, err
	}

	templates := dork.ByPriority(dork.AliasTemplates(), ceiling)
	report, err := s.agg.Run(ctx, target, templates)
	if err != nil {
		return report, err
	}
	report.Recommendations = aliasRecommendations(report)
	return report, nil
}

// InvestigateDomain runs the domain template set for one domain.
func (s *Service) InvestigateDomain(ctx context.Context, domain string, ceiling dork.Priority) (*model.AggregateReport, error) {
	target, err := model.NewTarget(model.TargetDomain, domain)
	if err != nil {
		return nil, err
	}

	templates := dork.ByPriority(dork.DomainTemplates(), ceiling)
	report, err := s.agg.Run(ctx, target, templates)
	if err != nil {
		return report, err
	}
	report.Recommendations = domainRecommendations(report)
	return report, nil
}

// BulkAliasReport summarizes a bulk alias investigation. Every
// requested alias has an entry in Reports: failed aliases get a
// placeholder report whose recommendations explain the failure.
type BulkAliasReport struct {
	// TotalTargets is the number of aliases requested.
	TotalTargets int `json:"total_usernames"`

	// Successful and Failed count aliases by search outcome. An alias
	// counts as failed when it does not validate or when every one of
	// its queries failed.
	Successful int `json:"successful_searches"`
	Failed     int `json:"failed_searches"`

	// Reports maps each alias to its report.
	Reports map[string]*model.AggregateReport `json:"results"`

	// Platforms is the union of query objectives that returned
	// findings across all aliases, in first-seen order.
	Platforms []string `json:"platforms_with_results"`
}

// InvestigateAliases investigates several aliases in sequence with the
// configured delay between them. One alias failing never affects its
// siblings; the error is non-nil only on context cancellation, with
// the report covering the aliases completed so far.
func (s *Service) InvestigateAliases(ctx context.Context, aliases []string, ceiling dork.Priority) (*BulkAliasReport, error) {
	s.logger.Info("starting bulk alias investigation", "aliases", len(aliases))

	bulk := &BulkAliasReport{
		TotalTargets: len(aliases),
		Reports:      make(map[string]*model.AggregateReport, len(aliases)),
	}
	seen := make(map[string]bool)

	for i, alias := range aliases {
		if i > 0 && s.delay > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return bulk, err
			}
		}

		report, err := s.InvestigateAlias(ctx, alias, ceiling)
		if err != nil {
			if ctx.Err() != nil {
				return bulk, err
			}
			s.logger.Warn("alias search failed", "alias", alias, "error", err)
			bulk.Failed++
			placeholder := model.NewAggregateReport(model.Target{Kind: model.TargetAlias, Value: alias})
			placeholder.Recommendations = []string{
				fmt.Sprintf("Search failed for %q: %v", alias, err),
			}
			bulk.Reports[alias] = placeholder
			continue
		}

		bulk.Reports[alias] = report
		if report.Successful == 0 && report.Failed > 0 {
			bulk.Failed++
			continue
		}

		bulk.Successful++
		for _, objective := range objectivesWithFindings(report) {
			if !seen[objective] {
				seen[objective] = true
				bulk.Platforms = append(bulk.Platforms, objective)
			}
		}
	}

	s.logger.Info("bulk alias investigation complete",
		"successful", bulk.Successful,
		"failed", bulk.Failed,
		"platforms", len(bulk.Platforms),
	)
	return bulk, nil
}

// objectivesWithFindings lists the objectives of queries that
// completed and found at least one result, sorted for stable output.
func objectivesWithFindings(report *model.AggregateReport) []string {
	var out []string
	for _, result := range report.Results {
		if result.OK() && result.TotalCount > 0 {
			out = append(out, result.Objective)
		}
	}
	sort.Strings(out)
	return out
}

// hasFinding reports whether the query under the given report key
// completed with at least one result.
func hasFinding(report *model.AggregateReport, key string) bool {
	result, ok := report.Results[key]
	return ok && result.OK() && result.TotalCount > 0
}

// aliasRecommendations derives follow-up guidance from a finished
// alias report. The count-based lines grade overall presence; the
// platform lines point at the profiles worth pivoting on.
func aliasRecommendations(report *model.AggregateReport) []string {
	alias := report.Target.CleanAlias()

	if report.Failed > 0 && report.Successful == 0 {
		return []string{
			fmt.Sprintf("Every query for %q failed; the search provider may be unavailable or out of quota.", alias),
			"Retry later or verify provider credentials before drawing conclusions.",
		}
	}

	found := len(objectivesWithFindings(report))

	var recs []string
	switch {
	case found == 0:
		recs = append(recs,
			fmt.Sprintf("No direct results found for %q. Try searching with variations or common misspellings.", alias),
			"Consider manual verification on major platforms directly.",
		)
	case found >= highPresenceFloor:
		recs = append(recs,
			fmt.Sprintf("High online presence detected across %d platforms.", found),
			"Cross-reference profile information for identity verification.",
			"Check profile creation dates and posting patterns for authenticity.",
		)
	default:
		recs = append(recs,
			fmt.Sprintf("Moderate presence found on %d platforms.", found),
			"Consider expanding search to additional platforms or variations.",
		)
	}

	if hasFinding(report, "development_github_repositories") {
		recs = append(recs, "GitHub profile found - analyze repositories and contribution patterns.")
	}
	if hasFinding(report, "social_media_linkedin_professional_profile") {
		recs = append(recs, "LinkedIn profile found - verify professional information and connections.")
	}
	if hasFinding(report, "social_media_twitter/x_profile") {
		recs = append(recs, "Twitter/X profile found - analyze tweet patterns and follower interactions.")
	}

	recs = append(recs, "Always verify identity through multiple sources before drawing conclusions.")
	return recs
}

// domainRecommendations derives follow-up guidance from a finished
// domain report.
func domainRecommendations(report *model.AggregateReport) []string {
	if report.Failed > 0 && report.Successful == 0 {
		return []string{
			fmt.Sprintf("Every query for %q failed; the search provider may be unavailable or out of quota.", report.Target.Value),
			"Retry later or verify provider credentials before drawing conclusions.",
		}
	}

	var recs []string
	if hasFinding(report, "infrastructure_subdomain_discovery") {
		recs = append(recs, "Indexed subdomains found - review which hosts are meant to be public.")
	}
	if hasFinding(report, "infrastructure_login_portal_identification") {
		recs = append(recs, "Login portals are indexed - confirm they should be internet-facing.")
	}
	if hasFinding(report, "sensitive_information_confidential_documents") {
		recs = append(recs, "Documents marked confidential are indexed - verify none expose sensitive data.")
	}
	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("No indexed exposure found for %q.", report.Target.Value))
	}
	return recs
}
