package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourceweaver/sourceweaver/internal/analyze"
	"github.com/sourceweaver/sourceweaver/internal/config"
	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/report"
	"github.com/sourceweaver/sourceweaver/internal/score"
)

// NewScanCmd creates the scan command. It dispatches targets to the
// external analysis scripts and scores the signals they return.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [target...]",
		Short: "Run external analysis scripts against IPs, domains, or URLs",
		Long: `Scan dispatches each target to the analysis script mapped to its
kind (ip_analysis.py, domain_analysis.py, url_analysis.py by default)
and derives a threat score from the signals the script reports.

Scripts receive the target value and a --format=json flag, run in an
environment built solely from --env (the parent environment is never
inherited), and must print a JSON document on stdout.

Examples:
  # Score a single IP address
  sourceweaver scan --kind ip 203.0.113.7

  # Scan several domains with custom scripts
  sourceweaver scan --kind domain --scripts-dir ./scripts example.com example.org

  # Pass an API key through to the scripts
  sourceweaver scan --kind url --env ABUSE_API_KEY=secret https://example.com/login

  # Check which scripts are available without running anything
  sourceweaver scan --health`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("kind", "k", "", "Target kind: ip, domain, or url")
	cmd.Flags().StringP("scripts-dir", "s", "scripts", "Directory holding the analysis scripts")
	cmd.Flags().String("interpreter", "python3", "Interpreter used to run the scripts")
	cmd.Flags().Duration("script-timeout", config.DefaultScriptTimeout, "Timeout for one script run")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency, "Maximum concurrent script runs")
	cmd.Flags().StringToString("env", nil, "Environment variables passed to the scripts (key=value)")
	cmd.Flags().Bool("health", false, "List configured scripts and their availability, then exit")
	cmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	return cmd
}

// scanOutput ties one script response back to its target, with the
// threat score derived from the reported signals.
type scanOutput struct {
	Target   model.Target       `json:"target"`
	Status   analyze.Status     `json:"status"`
	Analysis json.RawMessage    `json:"analysis,omitempty"`
	Score    *model.ThreatScore `json:"threat_score,omitempty"`
	Error    string             `json:"error,omitempty"`
	Elapsed  time.Duration      `json:"elapsed"`
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	scriptsDir, err := cmd.Flags().GetString("scripts-dir")
	if err != nil {
		return fmt.Errorf("failed to get scripts-dir flag: %w", err)
	}
	interpreter, err := cmd.Flags().GetString("interpreter")
	if err != nil {
		return fmt.Errorf("failed to get interpreter flag: %w", err)
	}
	scriptTimeout, err := cmd.Flags().GetDuration("script-timeout")
	if err != nil {
		return fmt.Errorf("failed to get script-timeout flag: %w", err)
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return fmt.Errorf("failed to get concurrency flag: %w", err)
	}
	scriptEnv, err := cmd.Flags().GetStringToString("env")
	if err != nil {
		return fmt.Errorf("failed to get env flag: %w", err)
	}
	health, err := cmd.Flags().GetBool("health")
	if err != nil {
		return fmt.Errorf("failed to get health flag: %w", err)
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	runner := analyze.NewExecRunner(scriptsDir,
		analyze.WithInterpreter(interpreter),
		analyze.WithScriptTimeout(scriptTimeout),
		analyze.WithScriptEnv(scriptEnv),
		analyze.WithRunnerLogger(logger),
	)

	out, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := report.NewJSONWriter(out, report.WithPrettyPrint())

	if health {
		if _, err := writer.WriteValue(runner.Health()); err != nil {
			return fmt.Errorf("failed to write health listing: %w", err)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("no targets given (see --help for usage)")
	}

	kindFlag, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	kind, err := model.ParseTargetKind(kindFlag)
	if err != nil {
		return fmt.Errorf("unsupported kind %q (want ip, domain, or url)", kindFlag)
	}
	if _, ok := analyze.DefaultScripts()[kind]; !ok {
		return fmt.Errorf("no analysis script for kind %q (want ip, domain, or url)", kindFlag)
	}

	targets := make([]model.Target, 0, len(args))
	for _, arg := range args {
		target, err := model.NewTarget(kind, arg)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", arg, err)
		}
		targets = append(targets, target)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	manager := analyze.NewManager(runner, analyze.WithManagerLogger(logger))
	defer manager.Close()

	responses := manager.AnalyzeBulk(ctx, targets, concurrency)

	outputs := make([]scanOutput, len(responses))
	for i, resp := range responses {
		outputs[i] = scanOutput{
			Target:   targets[i],
			Status:   resp.Status,
			Analysis: resp.Data,
			Error:    resp.Error,
			Elapsed:  resp.Elapsed,
		}
		if resp.Status != analyze.StatusSuccess {
			continue
		}
		sig, err := score.ParseSignals(resp.Data)
		if err != nil {
			logger.Warn("script output is not scoreable", "target", targets[i].Value, "error", err)
			continue
		}
		threatScore := score.Score(kind, sig)
		outputs[i].Score = &threatScore
	}

	if len(outputs) == 1 {
		_, err = writer.WriteValue(outputs[0])
	} else {
		_, err = writer.WriteValue(outputs)
	}
	if err != nil {
		return fmt.Errorf("failed to write scan output: %w", err)
	}
	return nil
}
