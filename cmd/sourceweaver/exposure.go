package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sourceweaver/sourceweaver/internal/analyze"
	"github.com/sourceweaver/sourceweaver/internal/provider/breach"
	"github.com/sourceweaver/sourceweaver/internal/report"
)

// NewExposureCmd creates the exposure command.
func NewExposureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exposure",
		Short: "Check accounts and passwords against the breach database",
		Long: `Exposure checks an account, a password, or both against the breach
database provider.

Passwords are read from standard input, never from command-line
arguments, so they stay out of shell history and process listings.
Only the first five characters of the password's SHA-1 digest are sent
to the provider (k-anonymity range check); the plaintext never leaves
this machine and is never logged.

Account lookups require a breach provider API key. Password range
checks work without one.

Examples:
  # Check an account for known breaches
  sourceweaver exposure --account user@example.com

  # Check a password (typed or piped on stdin)
  echo -n 'hunter2' | sourceweaver exposure --password-stdin

  # Combined account and password check
  echo -n 'hunter2' | sourceweaver exposure --account user@example.com --password-stdin

  # Sweep one password per input line
  sourceweaver exposure --sweep < passwords.txt`,
		RunE: runExposureCmd,
	}

	cmd.Flags().StringP("account", "a", "",
		"Account (email address or username) to check for breaches")
	cmd.Flags().Bool("password-stdin", false,
		"Read one password from standard input and check it")
	cmd.Flags().Bool("sweep", false,
		"Read one password per line from standard input and check them all")
	cmd.Flags().Bool("include-unverified", true,
		"Include breaches not yet verified upstream in account lookups")
	cmd.Flags().String("domain-filter", "",
		"Limit account lookups to breaches of one domain")

	cmd.Flags().String("api-key", "", "Breach database API key")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sourceweaver.yml in current or XDG config directory)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runExposureCmd executes the exposure command.
func runExposureCmd(cmd *cobra.Command, _ []string) error {
	account, err := cmd.Flags().GetString("account")
	if err != nil {
		return err
	}
	passwordStdin, err := cmd.Flags().GetBool("password-stdin")
	if err != nil {
		return err
	}
	sweep, err := cmd.Flags().GetBool("sweep")
	if err != nil {
		return err
	}
	if account == "" && !passwordStdin && !sweep {
		return errors.New("nothing to check (set --account, --password-stdin, or --sweep)")
	}
	if passwordStdin && sweep {
		return errors.New("--password-stdin and --sweep are mutually exclusive")
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	svc, err := newExposureService(cmd, account, logger)
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()
	writer := report.NewJSONWriter(out, report.WithPrettyPrint())

	// Sweep mode: one password per line.
	if sweep {
		passwords, err := readLines(cmd)
		if err != nil {
			return err
		}
		result, err := svc.SweepPasswords(ctx, passwords)
		if err != nil {
			return err
		}
		_, err = writer.WriteValue(result)
		return err
	}

	var password string
	if passwordStdin {
		password, err = readPassword(cmd)
		if err != nil {
			return err
		}
	}

	switch {
	case account != "" && password != "":
		result, err := svc.CombinedCheck(ctx, account, password)
		if err != nil {
			return err
		}
		_, err = writer.WriteValue(result)
		return err
	case account != "":
		result, err := svc.CheckAccount(ctx, account, accountOptions(cmd))
		if err != nil {
			return err
		}
		_, err = writer.WriteValue(result)
		return err
	default:
		result, err := svc.CheckPassword(ctx, password)
		if err != nil {
			return err
		}
		_, err = writer.WriteValue(result)
		return err
	}
}

// newExposureService wires the breach client and exposure service.
// An API key is required only for account lookups.
func newExposureService(cmd *cobra.Command, account string, logger *slog.Logger) (*analyze.ExposureService, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	providers, err := loadProvidersFile(configPath)
	if err != nil {
		return nil, err
	}

	flagKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	providerCfg := providers.GetProviderConfig(breach.ProviderID)
	apiKey := firstNonEmpty(flagKey, os.Getenv(envBreachAPIKey), providerCfg.APIKey)

	if account != "" && apiKey == "" {
		return nil, fmt.Errorf("breach API key missing for account lookups (set --api-key, %s, or the config file)", envBreachAPIKey)
	}

	client := breach.NewClient(apiKey, breach.WithLogger(logger))
	return analyze.NewExposureService(client, analyze.WithExposureLogger(logger)), nil
}

// accountOptions builds breach account lookup options from flags.
func accountOptions(cmd *cobra.Command) *breach.AccountOptions {
	unverified, err := cmd.Flags().GetBool("include-unverified")
	if err != nil {
		unverified = true
	}
	domainFilter, err := cmd.Flags().GetString("domain-filter")
	if err != nil {
		domainFilter = ""
	}
	return &breach.AccountOptions{
		IncludeUnverified: unverified,
		DomainFilter:      domainFilter,
	}
}

// readPassword reads a single password line from the command's input.
func readPassword(cmd *cobra.Command) (string, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}

// readLines reads one password per line from the command's input,
// skipping blank lines.
func readLines(cmd *cobra.Command) ([]string, error) {
	var passwords []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			passwords = append(passwords, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read passwords from stdin: %w", err)
	}
	if len(passwords) == 0 {
		return nil, errors.New("no passwords on stdin")
	}
	return passwords, nil
}
