package score

import (
	"strings"
	"testing"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

func TestParseSignals(t *testing.T) {
	t.Parallel()

	t.Run("full payload", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{
			"detections": {"malicious": 7, "suspicious": 4},
			"abuse_confidence": 80,
			"detection_ratio": 35.5,
			"domain_age_days": 12,
			"redirect_count": 5,
			"http_status": 302
		}`)

		sig, err := ParseSignals(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if sig.Detections == nil || sig.Detections.Malicious != 7 || sig.Detections.Suspicious != 4 {
			t.Errorf("unexpected detections: %+v", sig.Detections)
		}
		if sig.AbuseConfidence == nil || *sig.AbuseConfidence != 80 {
			t.Error("expected abuse confidence 80")
		}
		if sig.DetectionRatio == nil || *sig.DetectionRatio != 35.5 {
			t.Error("expected detection ratio 35.5")
		}
		if sig.DomainAgeDays == nil || *sig.DomainAgeDays != 12 {
			t.Error("expected domain age 12")
		}
		if sig.RedirectCount == nil || *sig.RedirectCount != 5 {
			t.Error("expected redirect count 5")
		}
		if sig.HTTPStatus == nil || *sig.HTTPStatus != 302 {
			t.Error("expected http status 302")
		}
	})

	t.Run("absent fields stay nil", func(t *testing.T) {
		t.Parallel()

		sig, err := ParseSignals([]byte(`{"detections": {"malicious": 1}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if sig.Detections == nil || sig.Detections.Malicious != 1 {
			t.Errorf("unexpected detections: %+v", sig.Detections)
		}
		if sig.AbuseConfidence != nil || sig.DetectionRatio != nil ||
			sig.DomainAgeDays != nil || sig.RedirectCount != nil || sig.HTTPStatus != nil {
			t.Error("expected absent signals to stay nil")
		}
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		t.Parallel()

		sig, err := ParseSignals([]byte(`{"target": "1.2.3.4", "whois": {"org": "x"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sig.Detections != nil {
			t.Error("expected no detections")
		}
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseSignals([]byte(`not json`))
		if err == nil {
			t.Fatal("expected error for invalid JSON")
		}
		if !strings.Contains(err.Error(), "decode analysis signals") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("parsed signals feed the engine", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"detections": {"malicious": 7}, "abuse_confidence": 90}`)
		sig, err := ParseSignals(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := Score(model.TargetIP, sig)
		if result.Score != 70 {
			t.Errorf("expected score 70, got %d", result.Score)
		}
		if result.Level != model.LevelHigh {
			t.Errorf("expected high level, got %s", result.Level)
		}
	})
}
