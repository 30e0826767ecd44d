package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourceweaver/sourceweaver/internal/config"
	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider"
	"github.com/sourceweaver/sourceweaver/internal/provider/reputation"
	"github.com/sourceweaver/sourceweaver/internal/ratelimit"
	"github.com/sourceweaver/sourceweaver/internal/report"
	"github.com/sourceweaver/sourceweaver/internal/score"
)

// NewReputationCmd creates the reputation command. It looks a target
// up in the malware-reputation service and scores the verdict.
func NewReputationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reputation [target]",
		Short: "Look up a target in the malware-reputation service",
		Long: `Reputation fetches the analysis report for an IP address, domain,
URL, or file hash and derives a threat score from the engine verdicts,
the detection ratio, and the domain registration age.

URLs that have never been scanned return a not-found error; pass
--submit to queue a fresh scan and wait for its result first.

The API key is read from --api-key, the SOURCEWEAVER_REPUTATION_API_KEY
environment variable, or the configuration file.

Examples:
  # Check a domain
  sourceweaver reputation --kind domain suspicious-site.example

  # Check an IP address with community comments
  sourceweaver reputation --kind ip --comments 203.0.113.7

  # Submit a URL for scanning and wait for the verdict
  sourceweaver reputation --kind url --submit https://example.com/login

  # Check a file hash
  sourceweaver reputation --kind hash d41d8cd98f00b204e9800998ecf8427e`,
		Args: cobra.ExactArgs(1),
		RunE: runReputationCmd,
	}

	cmd.Flags().StringP("kind", "k", "domain", "Target kind: ip, domain, url, or hash")
	cmd.Flags().String("api-key", "", "Reputation service API key")
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().Bool("comments", false, "Include community comments on the target")
	cmd.Flags().Bool("relations", false, "Include subdomains and DNS resolutions where applicable")
	cmd.Flags().Bool("submit", false, "Submit an unscanned URL and wait for its analysis")
	cmd.Flags().Duration("poll-interval", 15*time.Second, "Delay between analysis polls after --submit")
	cmd.Flags().Duration("wait", 2*time.Minute, "Maximum time to wait for a submitted analysis")
	cmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	return cmd
}

// reputationOutput is the JSON document the reputation command emits.
type reputationOutput struct {
	Target      model.Target           `json:"target"`
	Report      *reputation.Report     `json:"report"`
	Score       *model.ThreatScore     `json:"threat_score,omitempty"`
	Comments    *reputation.Collection `json:"comments,omitempty"`
	Subdomains  *reputation.Collection `json:"subdomains,omitempty"`
	Resolutions *reputation.Collection `json:"resolutions,omitempty"`
	Usage       reputation.UsageStats  `json:"usage"`
	Elapsed     time.Duration          `json:"elapsed"`
}

func runReputationCmd(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	kindFlag, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	kind, err := model.ParseTargetKind(kindFlag)
	if err != nil {
		return fmt.Errorf("unsupported kind %q (want ip, domain, url, or hash)", kindFlag)
	}
	switch kind {
	case model.TargetIP, model.TargetDomain, model.TargetURL, model.TargetHash:
	default:
		return fmt.Errorf("unsupported kind %q (want ip, domain, url, or hash)", kindFlag)
	}

	target, err := model.NewTarget(kind, args[0])
	if err != nil {
		return err
	}

	client, err := newReputationClient(cmd, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	out, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := report.NewJSONWriter(out, report.WithPrettyPrint())

	ctx, cancel := signalContext(logger)
	defer cancel()
	start := time.Now()

	rep, err := fetchReputationReport(ctx, cmd, client, target)
	if err != nil {
		return err
	}

	result := reputationOutput{
		Target: target,
		Report: rep,
		Usage:  client.Stats(),
	}
	threatScore := score.Score(kind, reputationSignals(kind, rep))
	result.Score = &threatScore

	if err := fetchReputationExtras(ctx, cmd, client, target, &result); err != nil {
		return err
	}
	result.Usage = client.Stats()
	result.Elapsed = time.Since(start)

	if _, err := writer.WriteValue(result); err != nil {
		return fmt.Errorf("failed to write reputation output: %w", err)
	}
	return nil
}

// newReputationClient builds the reputation client from the credential
// sources in precedence order: flag, environment, configuration file.
func newReputationClient(cmd *cobra.Command, logger *slog.Logger) (*reputation.Client, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	providersFile, err := loadProvidersFile(configPath)
	if err != nil {
		return nil, err
	}
	providerCfg := providersFile.GetProviderConfig(reputation.ProviderID)

	flagKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, fmt.Errorf("failed to get api-key flag: %w", err)
	}
	apiKey := firstNonEmpty(flagKey, os.Getenv(envReputationAPIKey), providerCfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("reputation API key is required: set --api-key, %s, or the %q provider in %s",
			envReputationAPIKey, reputation.ProviderID, config.DefaultConfigFile)
	}

	// Rolling-window quota: no ResetLocation, unlike the search
	// provider's fixed midnight boundary.
	quota := ratelimit.Quota{
		CallsPerMinute: providerCfg.CallsPerMinute,
		CallsPerDay:    providerCfg.CallsPerDay,
	}
	if quota.CallsPerMinute <= 0 {
		quota.CallsPerMinute = config.DefaultReputationCallsPerMinute
	}
	if quota.CallsPerDay <= 0 {
		quota.CallsPerDay = config.DefaultReputationCallsPerDay
	}
	limiter := ratelimit.New(ratelimit.WithLogger(logger))
	if err := limiter.Register(reputation.ProviderID, quota); err != nil {
		return nil, err
	}

	return reputation.NewClient(apiKey,
		reputation.WithGate(limiter),
		reputation.WithLogger(logger),
	)
}

// fetchReputationReport fetches the analysis report for the target,
// submitting URLs for a fresh scan first when --submit is set.
func fetchReputationReport(ctx context.Context, cmd *cobra.Command, client *reputation.Client, target model.Target) (*reputation.Report, error) {
	submit, err := cmd.Flags().GetBool("submit")
	if err != nil {
		return nil, fmt.Errorf("failed to get submit flag: %w", err)
	}
	if submit {
		if target.Kind != model.TargetURL {
			return nil, fmt.Errorf("--submit applies to url targets only")
		}
		if err := submitAndWait(ctx, cmd, client, target.Value); err != nil {
			return nil, err
		}
	}

	switch target.Kind {
	case model.TargetIP:
		return client.IPReport(ctx, target.Value)
	case model.TargetDomain:
		return client.DomainReport(ctx, target.Value)
	case model.TargetHash:
		return client.FileReport(ctx, target.Value)
	default:
		rep, err := client.URLReport(ctx, target.Value)
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == model.ErrorNotFound && !submit {
			return nil, fmt.Errorf("url has never been scanned; rerun with --submit to queue a scan")
		}
		return rep, err
	}
}

// submitAndWait queues a URL scan and polls the returned analysis until
// it completes or the --wait deadline passes.
func submitAndWait(ctx context.Context, cmd *cobra.Command, client *reputation.Client, rawURL string) error {
	pollInterval, err := cmd.Flags().GetDuration("poll-interval")
	if err != nil {
		return fmt.Errorf("failed to get poll-interval flag: %w", err)
	}
	wait, err := cmd.Flags().GetDuration("wait")
	if err != nil {
		return fmt.Errorf("failed to get wait flag: %w", err)
	}

	submission, err := client.SubmitURL(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("failed to submit url for scanning: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Submitted for scanning, waiting up to %s...\n", wait)

	pollCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		analysis, err := client.Analysis(pollCtx, submission.AnalysisID())
		if err != nil {
			return fmt.Errorf("failed to poll analysis: %w", err)
		}
		if analysis.Completed() {
			return nil
		}
		select {
		case <-pollCtx.Done():
			return fmt.Errorf("analysis did not complete within %s", wait)
		case <-ticker.C:
		}
	}
}

// fetchReputationExtras fills the optional comment and relation
// collections requested by flags.
func fetchReputationExtras(ctx context.Context, cmd *cobra.Command, client *reputation.Client, target model.Target, result *reputationOutput) error {
	comments, err := cmd.Flags().GetBool("comments")
	if err != nil {
		return fmt.Errorf("failed to get comments flag: %w", err)
	}
	relations, err := cmd.Flags().GetBool("relations")
	if err != nil {
		return fmt.Errorf("failed to get relations flag: %w", err)
	}

	if comments {
		var collection *reputation.Collection
		switch target.Kind {
		case model.TargetIP:
			collection, err = client.IPComments(ctx, target.Value, 0)
		case model.TargetDomain:
			collection, err = client.DomainComments(ctx, target.Value, 0)
		case model.TargetHash:
			collection, err = client.FileComments(ctx, target.Value, 0)
		default:
			collection, err = client.URLComments(ctx, target.Value, 0)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch comments: %w", err)
		}
		result.Comments = collection
	}

	if relations {
		switch target.Kind {
		case model.TargetDomain:
			if result.Subdomains, err = client.DomainSubdomains(ctx, target.Value, 0); err != nil {
				return fmt.Errorf("failed to fetch subdomains: %w", err)
			}
			if result.Resolutions, err = client.DomainResolutions(ctx, target.Value, 0); err != nil {
				return fmt.Errorf("failed to fetch resolutions: %w", err)
			}
		case model.TargetIP:
			if result.Resolutions, err = client.IPResolutions(ctx, target.Value, 0); err != nil {
				return fmt.Errorf("failed to fetch resolutions: %w", err)
			}
		}
	}

	return nil
}

// reputationSignals extracts the scoring signals present in a
// reputation report. Detections apply to every kind; the ratio is
// meaningful for domains and URLs, and the registration age for
// domains only.
func reputationSignals(kind model.TargetKind, rep *reputation.Report) score.Signals {
	stats := rep.Stats()
	sig := score.Signals{
		Detections: &score.Detections{
			Malicious:  stats.Malicious,
			Suspicious: stats.Suspicious,
		},
	}

	switch kind {
	case model.TargetDomain:
		ratio := stats.DetectionRatio()
		sig.DetectionRatio = &ratio
		if created := rep.Data.Attributes.CreationDate; created > 0 {
			days := int(time.Since(time.Unix(created, 0)).Hours() / 24)
			sig.DomainAgeDays = &days
		}
	case model.TargetURL:
		ratio := stats.DetectionRatio()
		sig.DetectionRatio = &ratio
	}

	return sig
}
