package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider/reputation"
)

// TestNewReputationCmd tests the reputation command creation.
func TestNewReputationCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReputationCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "reputation [target]" {
			t.Errorf("expected use 'reputation [target]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has kind flag defaulting to domain", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("kind")
		if flag == nil {
			t.Fatal("expected kind flag")
		}
		if flag.DefValue != "domain" {
			t.Errorf("expected default 'domain', got %q", flag.DefValue)
		}
	})

	t.Run("has comments flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("comments") == nil {
			t.Fatal("expected comments flag")
		}
	})

	t.Run("has relations flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("relations") == nil {
			t.Fatal("expected relations flag")
		}
	})

	t.Run("has submit flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("submit") == nil {
			t.Fatal("expected submit flag")
		}
	})
}

// TestRunReputationCmdErrors tests reputation command error paths.
func TestRunReputationCmdErrors(t *testing.T) {
	t.Run("rejects unsupported kind", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"reputation", "--kind", "alias", "johndoe"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for unsupported kind")
		}
		if !strings.Contains(err.Error(), "unsupported kind") {
			t.Errorf("expected 'unsupported kind' error, got: %v", err)
		}
	})

	t.Run("rejects invalid target value", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"reputation", "--kind", "ip", "not-an-ip"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for invalid target")
		}
	})

	t.Run("requires api key", func(t *testing.T) {
		t.Setenv(envReputationAPIKey, "")

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"reputation", "example.com"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing api key")
		}
		if !strings.Contains(err.Error(), "API key") {
			t.Errorf("expected API key error, got: %v", err)
		}
	})
}

// TestNewReputationClient tests that the client is built with a
// registered quota from each credential source.
func TestNewReputationClient(t *testing.T) {
	logger := setupLogger(false)

	t.Run("flag key with default quota", func(t *testing.T) {
		t.Setenv(envReputationAPIKey, "")

		cmd := NewReputationCmd()
		if err := cmd.Flags().Set("api-key", "test-key"); err != nil {
			t.Fatal(err)
		}

		client, err := newReputationClient(cmd, logger)
		if err != nil {
			t.Fatalf("newReputationClient() error = %v", err)
		}
		client.Close()
	})

	t.Run("config file key and quota override", func(t *testing.T) {
		t.Setenv(envReputationAPIKey, "")

		path := filepath.Join(t.TempDir(), "providers.yml")
		content := "providers:\n  reputation:\n    apiKey: file-key\n    callsPerMinute: 2\n    callsPerDay: 50\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewReputationCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		client, err := newReputationClient(cmd, logger)
		if err != nil {
			t.Fatalf("newReputationClient() error = %v", err)
		}
		client.Close()
	})
}

// TestReputationSignals tests signal extraction from reputation reports.
func TestReputationSignals(t *testing.T) {
	t.Parallel()

	newReport := func(malicious, suspicious, harmless int, creation int64) *reputation.Report {
		rep := &reputation.Report{}
		rep.Data.Attributes.LastAnalysisStats = reputation.AnalysisStats{
			Malicious:  malicious,
			Suspicious: suspicious,
			Harmless:   harmless,
		}
		rep.Data.Attributes.CreationDate = creation
		return rep
	}

	t.Run("extracts detections for every kind", func(t *testing.T) {
		t.Parallel()

		sig := reputationSignals(model.TargetIP, newReport(7, 2, 50, 0))
		if sig.Detections == nil {
			t.Fatal("expected detections")
		}
		if sig.Detections.Malicious != 7 || sig.Detections.Suspicious != 2 {
			t.Errorf("unexpected detections: %+v", sig.Detections)
		}
	})

	t.Run("ip has no ratio or age", func(t *testing.T) {
		t.Parallel()

		sig := reputationSignals(model.TargetIP, newReport(7, 0, 50, 0))
		if sig.DetectionRatio != nil {
			t.Error("expected nil detection ratio for ip")
		}
		if sig.DomainAgeDays != nil {
			t.Error("expected nil domain age for ip")
		}
	})

	t.Run("domain gets ratio and age", func(t *testing.T) {
		t.Parallel()

		created := time.Now().Add(-10 * 24 * time.Hour).Unix()
		sig := reputationSignals(model.TargetDomain, newReport(5, 0, 5, created))
		if sig.DetectionRatio == nil {
			t.Fatal("expected detection ratio")
		}
		if *sig.DetectionRatio != 50 {
			t.Errorf("expected ratio 50, got %v", *sig.DetectionRatio)
		}
		if sig.DomainAgeDays == nil {
			t.Fatal("expected domain age")
		}
		if *sig.DomainAgeDays != 10 {
			t.Errorf("expected age 10 days, got %d", *sig.DomainAgeDays)
		}
	})

	t.Run("domain without creation date has nil age", func(t *testing.T) {
		t.Parallel()

		sig := reputationSignals(model.TargetDomain, newReport(0, 0, 10, 0))
		if sig.DomainAgeDays != nil {
			t.Error("expected nil domain age without creation date")
		}
	})

	t.Run("url gets ratio but no age", func(t *testing.T) {
		t.Parallel()

		sig := reputationSignals(model.TargetURL, newReport(2, 0, 8, 0))
		if sig.DetectionRatio == nil {
			t.Fatal("expected detection ratio")
		}
		if *sig.DetectionRatio != 20 {
			t.Errorf("expected ratio 20, got %v", *sig.DetectionRatio)
		}
		if sig.DomainAgeDays != nil {
			t.Error("expected nil domain age for url")
		}
	})
}
