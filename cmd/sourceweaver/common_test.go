package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sourceweaver/sourceweaver/internal/config"
	"github.com/sourceweaver/sourceweaver/internal/report"
)

// TestSetupLogger tests the logger setup.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates logger for verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(true)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("creates logger for non-verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(false)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewScanCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get scan subcommand
		scanCmd, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}

		result := getVerboseFlag(scanCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestFirstNonEmpty tests the credential precedence helper.
func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"first wins", []string{"flag", "env", "file"}, "flag"},
		{"skips empty values", []string{"", "env", "file"}, "env"},
		{"last resort", []string{"", "", "file"}, "file"},
		{"all empty", []string{"", "", ""}, ""},
		{"no values", nil, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := firstNonEmpty(tt.values...); got != tt.want {
				t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

// TestLoadProvidersFile tests provider configuration file loading.
func TestLoadProvidersFile(t *testing.T) {
	t.Run("returns error for missing explicit path", func(t *testing.T) {
		_, err := loadProvidersFile("/nonexistent/path/.sourceweaver.yml")
		if err == nil {
			t.Error("expected error for missing explicit path")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})

	t.Run("loads explicit file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, config.DefaultConfigFile)
		content := []byte(`providers:
  websearch:
    apiKey: test-key
    engineId: test-engine
`)
		if err := os.WriteFile(path, content, 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		file, err := loadProvidersFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := file.GetProviderConfig("websearch")
		if got.APIKey != "test-key" {
			t.Errorf("expected APIKey 'test-key', got %q", got.APIKey)
		}
		if got.EngineID != "test-engine" {
			t.Errorf("expected EngineID 'test-engine', got %q", got.EngineID)
		}
	})

	t.Run("returns error for invalid yaml", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, config.DefaultConfigFile)
		if err := os.WriteFile(path, []byte("{invalid yaml"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := loadProvidersFile(path)
		if err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

// TestOpenOutput tests the report destination helper.
func TestOpenOutput(t *testing.T) {
	t.Run("empty path means stdout", func(t *testing.T) {
		f, closeFn, err := openOutput("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeFn()
		if f != os.Stdout {
			t.Error("expected stdout for empty path")
		}
	})

	t.Run("creates output file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "report.json")

		f, closeFn, err := openOutput(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		closeFn()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Error("expected output file to be created")
		}
		if f == os.Stdout {
			t.Error("expected a real file, got stdout")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "subdir", "nested", "report.json")

		_, closeFn, err := openOutput(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		closeFn()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("file has owner-only permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("skipping permission test on Windows")
		}

		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "report.json")

		_, closeFn, err := openOutput(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		closeFn()

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}

// TestNewReportWriter tests report writer selection by format flags.
func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	t.Run("json format", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.JSONReport = true
		if _, ok := newReportWriter(cfg, os.Stdout).(*report.JSONWriter); !ok {
			t.Error("expected JSON writer")
		}
	})

	t.Run("markdown format", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		if _, ok := newReportWriter(cfg, os.Stdout).(*report.MarkdownWriter); !ok {
			t.Error("expected Markdown writer")
		}
	})

	t.Run("simple format by default", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		if _, ok := newReportWriter(cfg, os.Stdout).(*report.SimpleWriter); !ok {
			t.Error("expected simple writer")
		}
	})
}
