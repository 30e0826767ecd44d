package main

import (
	"strings"
	"testing"
)

// TestNewExposureCmd tests the exposure command creation.
func TestNewExposureCmd(t *testing.T) {
	t.Parallel()

	cmd := NewExposureCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "exposure" {
			t.Errorf("expected use 'exposure', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("documents stdin password handling", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(cmd.Long, "standard input") {
			t.Error("expected long description to document stdin password input")
		}
		if !strings.Contains(cmd.Long, "SHA-1") {
			t.Error("expected long description to document the k-anonymity range check")
		}
	})

	t.Run("has account flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("account")
		if flag == nil {
			t.Fatal("expected account flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
	})

	t.Run("has password-stdin flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("password-stdin") == nil {
			t.Fatal("expected password-stdin flag")
		}
	})

	t.Run("has no password value flag", func(t *testing.T) {
		t.Parallel()
		// Passwords must never travel through argv.
		if cmd.Flags().Lookup("password") != nil {
			t.Error("password flag must not exist; passwords are read from stdin only")
		}
	})

	t.Run("has sweep flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("sweep") == nil {
			t.Fatal("expected sweep flag")
		}
	})

	t.Run("include-unverified defaults to true", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("include-unverified")
		if flag == nil {
			t.Fatal("expected include-unverified flag")
		}
		if flag.DefValue != "true" {
			t.Errorf("expected default 'true', got %q", flag.DefValue)
		}
	})
}

// TestRunExposureCmdErrors tests exposure command error paths.
func TestRunExposureCmdErrors(t *testing.T) {
	t.Run("rejects empty invocation", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"exposure"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error when nothing to check")
		}
		if !strings.Contains(err.Error(), "nothing to check") {
			t.Errorf("expected 'nothing to check' error, got: %v", err)
		}
	})

	t.Run("rejects password-stdin with sweep", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"exposure", "--password-stdin", "--sweep"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for mutually exclusive flags")
		}
		if !strings.Contains(err.Error(), "mutually exclusive") {
			t.Errorf("expected 'mutually exclusive' error, got: %v", err)
		}
	})

	t.Run("requires api key for account lookups", func(t *testing.T) {
		t.Setenv(envBreachAPIKey, "")

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"exposure", "--account", "user@example.com"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing api key")
		}
		if !strings.Contains(err.Error(), "API key") {
			t.Errorf("expected API key error, got: %v", err)
		}
	})
}

// TestReadPassword tests single-password stdin reading.
func TestReadPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain password", "hunter2\n", "hunter2", false},
		{"no trailing newline", "hunter2", "hunter2", false},
		{"windows line ending", "hunter2\r\n", "hunter2", false},
		{"preserves inner whitespace", "pass word\n", "pass word", false},
		{"empty input", "", "", true},
		{"blank line", "\n", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewExposureCmd()
			cmd.SetIn(strings.NewReader(tt.input))

			got, err := readPassword(cmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("readPassword() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestReadLines tests sweep-mode stdin reading.
func TestReadLines(t *testing.T) {
	t.Parallel()

	t.Run("reads one password per line", func(t *testing.T) {
		t.Parallel()

		cmd := NewExposureCmd()
		cmd.SetIn(strings.NewReader("first\nsecond\nthird\n"))

		got, err := readLines(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 passwords, got %d", len(got))
		}
		if got[0] != "first" || got[2] != "third" {
			t.Errorf("unexpected passwords: %v", got)
		}
	})

	t.Run("skips blank lines", func(t *testing.T) {
		t.Parallel()

		cmd := NewExposureCmd()
		cmd.SetIn(strings.NewReader("first\n\n\nsecond\n"))

		got, err := readLines(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 passwords, got %d", len(got))
		}
	})

	t.Run("strips carriage returns", func(t *testing.T) {
		t.Parallel()

		cmd := NewExposureCmd()
		cmd.SetIn(strings.NewReader("first\r\nsecond\r\n"))

		got, err := readLines(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[0] != "first" {
			t.Errorf("expected 'first', got %q", got[0])
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		cmd := NewExposureCmd()
		cmd.SetIn(strings.NewReader(""))

		if _, err := readLines(cmd); err == nil {
			t.Error("expected error for empty input")
		}
	})
}

// TestAccountOptions tests account lookup option building.
func TestAccountOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewExposureCmd()
		opts := accountOptions(cmd)
		if !opts.IncludeUnverified {
			t.Error("expected IncludeUnverified to default to true")
		}
		if opts.DomainFilter != "" {
			t.Errorf("expected empty domain filter, got %q", opts.DomainFilter)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		cmd := NewExposureCmd()
		_ = cmd.Flags().Set("include-unverified", "false")
		_ = cmd.Flags().Set("domain-filter", "example.com")

		opts := accountOptions(cmd)
		if opts.IncludeUnverified {
			t.Error("expected IncludeUnverified false")
		}
		if opts.DomainFilter != "example.com" {
			t.Errorf("expected domain filter 'example.com', got %q", opts.DomainFilter)
		}
	})
}
