package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sourceweaver/sourceweaver/internal/config"
	"github.com/sourceweaver/sourceweaver/internal/log"
	"github.com/sourceweaver/sourceweaver/internal/report"
)

// Environment variables resolved by the cmd layer. Core packages never
// read the environment; credentials travel through config.Config.
const (
	envSearchAPIKey     = "SOURCEWEAVER_SEARCH_API_KEY"
	envSearchEngineID   = "SOURCEWEAVER_SEARCH_ENGINE_ID"
	envBreachAPIKey     = "SOURCEWEAVER_BREACH_API_KEY"
	envReputationAPIKey = "SOURCEWEAVER_REPUTATION_API_KEY"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a sanitizing structured logger based on verbosity.
// All CLI logging goes through the secure handler so provider
// credentials and checked secrets never reach stderr.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// loadProvidersFile resolves and loads the provider configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise a missing file yields an empty configuration.
func loadProvidersFile(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
		}
		return &config.File{Providers: make(map[string]config.ProviderConfig)}, nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return file, nil
}

// firstNonEmpty returns the first non-empty string.
// Used to resolve credentials with flag > environment > file precedence.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// openOutput returns the report destination. A non-empty path opens a
// file with owner-only permissions, creating parent directories as
// needed; an empty path means stdout. The caller must invoke the
// returned close function.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain sensitive information that should only be
	// readable by the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // Best effort cleanup
}

// newReportWriter builds a report writer for the configured format.
func newReportWriter(cfg *config.Config, out *os.File) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}
