package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourceweaver/sourceweaver/internal/aggregate"
	"github.com/sourceweaver/sourceweaver/internal/analyze"
	"github.com/sourceweaver/sourceweaver/internal/config"
	"github.com/sourceweaver/sourceweaver/internal/dork"
	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider"
	"github.com/sourceweaver/sourceweaver/internal/provider/websearch"
	"github.com/sourceweaver/sourceweaver/internal/ratelimit"
)

// searchResetZone is the timezone whose midnight resets the search
// provider's daily quota.
const searchResetZone = "America/Los_Angeles"

// NewInvestigateCmd creates the investigate command.
func NewInvestigateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "investigate [target...]",
		Short: "Investigate aliases or domains through templated search queries",
		Long: `Investigate fans a set of prioritized search queries out to the
web-search provider and merges the answers into a single report with
high-value findings and follow-up recommendations.

Alias investigations cover social networks, development platforms,
content sites, documents, and communities. Domain investigations cover
infrastructure exposure and indexed sensitive information.

Examples:
  # Investigate a single alias
  sourceweaver investigate johndoe

  # Investigate several aliases with one combined summary
  sourceweaver investigate alice bob charlie

  # Investigate a domain with all query priorities
  sourceweaver investigate --kind domain --priority low example.com

  # Output a Markdown report to a file
  sourceweaver investigate --markdown -o report.md johndoe`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInvestigateCmd,
	}

	// Query planning flags
	cmd.Flags().StringP("kind", "k", "alias",
		"Target kind: alias or domain")
	cmd.Flags().StringP("priority", "p", config.DefaultPriority,
		"Lowest query priority to run: high, medium, low, or all")

	// Fan-out behavior flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of concurrent provider queries")
	cmd.Flags().Int("max-results", config.DefaultMaxResults,
		"Maximum results fetched per query (provider cap: 10)")
	cmd.Flags().DurationP("delay", "d", config.DefaultInterTargetDelay,
		"Delay between targets in multi-target runs")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each provider request")

	// Credential flags (environment and config file are consulted when unset)
	cmd.Flags().String("api-key", "", "Web search API key")
	cmd.Flags().String("engine-id", "", "Web search engine identifier")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sourceweaver.yml in current or XDG config directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runInvestigateCmd executes the investigate command.
func runInvestigateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildInvestigateConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runInvestigate(ctx, cmd, cfg, logger)
}

// buildInvestigateConfig creates a Config from cobra command flags,
// the environment, and the optional configuration file.
func buildInvestigateConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Targets = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	if cfg.Priority, err = cmd.Flags().GetString("priority"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = cmd.Flags().GetInt("max-results"); err != nil {
		return nil, err
	}
	if cfg.InterTargetDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	cfg.Providers, err = loadProvidersFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	// Credential precedence: flag > environment > config file.
	flagKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	flagEngine, err := cmd.Flags().GetString("engine-id")
	if err != nil {
		return nil, err
	}
	providerCfg := cfg.Providers.GetProviderConfig(websearch.ProviderID)
	cfg.WebSearchAPIKey = firstNonEmpty(flagKey, os.Getenv(envSearchAPIKey), providerCfg.APIKey)
	cfg.WebSearchEngineID = firstNonEmpty(flagEngine, os.Getenv(envSearchEngineID), providerCfg.EngineID)

	// Quotas from the config file override the free-tier defaults.
	if providerCfg.CallsPerMinute > 0 {
		cfg.SearchCallsPerMinute = providerCfg.CallsPerMinute
	}
	if providerCfg.CallsPerDay > 0 {
		cfg.SearchCallsPerDay = providerCfg.CallsPerDay
	}

	return cfg, nil
}

// runInvestigate executes the investigation.
func runInvestigate(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	kindFlag, err := cmd.Flags().GetString("kind")
	if err != nil {
		return err
	}
	if kindFlag != "alias" && kindFlag != "domain" {
		return fmt.Errorf("unsupported kind %q (want alias or domain)", kindFlag)
	}

	ceiling, err := dork.ParsePriority(cfg.Priority)
	if err != nil {
		return err
	}

	if cfg.WebSearchAPIKey == "" {
		return fmt.Errorf("web search API key missing (set --api-key, %s, or the config file)", envSearchAPIKey)
	}
	if cfg.WebSearchEngineID == "" {
		return fmt.Errorf("web search engine ID missing (set --engine-id, %s, or the config file)", envSearchEngineID)
	}

	svc, err := newInvestigationService(cfg, logger)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut()
	writer := newReportWriter(cfg, out)

	logger.Info("starting investigation",
		"kind", kindFlag,
		"targets", len(cfg.Targets),
		"priority", ceiling.String(),
	)

	// Multiple aliases get one combined bulk report.
	if kindFlag == "alias" && len(cfg.Targets) > 1 {
		bulk, err := svc.InvestigateAliases(ctx, cfg.Targets, ceiling)
		if err != nil {
			return err
		}
		_, err = writer.WriteBulk(bulk)
		return err
	}

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		fmt.Fprintf(cmd.ErrOrStderr(), "Investigating %s...\n", target)

		var rep *model.AggregateReport
		var repErr error
		if kindFlag == "domain" {
			rep, repErr = svc.InvestigateDomain(ctx, target, ceiling)
		} else {
			rep, repErr = svc.InvestigateAlias(ctx, target, ceiling)
		}
		if repErr != nil {
			logger.Error("investigation failed", "target", target, "error", repErr)
			fmt.Fprintf(cmd.ErrOrStderr(), "Investigation error for %s: %v\n", target, repErr)
			continue
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Investigation completed in %s\n\n",
			time.Since(start).Round(time.Millisecond))

		if _, err := writer.Write(rep); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// newInvestigationService wires the rate limiter, provider client,
// aggregator, and analysis service from the configuration.
func newInvestigationService(cfg *config.Config, logger *slog.Logger) (*analyze.Service, error) {
	limiter := ratelimit.New(ratelimit.WithLogger(logger))

	reset, err := time.LoadLocation(searchResetZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load search reset timezone: %w", err)
	}
	if err := limiter.Register(websearch.ProviderID, ratelimit.Quota{
		CallsPerMinute: cfg.SearchCallsPerMinute,
		CallsPerDay:    cfg.SearchCallsPerDay,
		ResetLocation:  reset,
	}); err != nil {
		return nil, err
	}

	client, err := websearch.NewClient(cfg.WebSearchAPIKey, cfg.WebSearchEngineID,
		websearch.WithGate(limiter),
		websearch.WithLogger(logger),
		websearch.WithHTTPClient(provider.NewHTTPClient(cfg.Timeout)),
	)
	if err != nil {
		return nil, err
	}

	agg := aggregate.New(aggregate.NewWebSearchExecutor(client),
		aggregate.WithConcurrency(cfg.Concurrency),
		aggregate.WithMaxResultsPerQuery(cfg.MaxResults),
		aggregate.WithLogger(logger),
	)

	return analyze.NewService(agg,
		analyze.WithBulkDelay(cfg.InterTargetDelay),
		analyze.WithServiceLogger(logger),
	), nil
}
