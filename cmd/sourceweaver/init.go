package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sourceweaver/sourceweaver/internal/config"
)

//go:embed templates/sourceweaver.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new SourceWeaver configuration file",
		Long: `Initialize creates a new .sourceweaver.yml configuration file in the
current directory.

The generated file includes:
- Per-provider API key and quota settings
- Commented examples for the supported providers
- Default quotas applied to providers without an entry

Examples:
  # Create .sourceweaver.yml in current directory
  sourceweaver init

  # Create config file at a specific path
  sourceweaver init -o myconfig.yml

  # Force overwrite existing file
  sourceweaver init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/sourceweaver.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure provider settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - API keys and the search engine identifier")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Per-minute and per-day call quotas")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Default quotas for providers without an entry")

	return nil
}
