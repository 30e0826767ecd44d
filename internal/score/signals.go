package score

import (
	"encoding/json"
	"fmt"
)

// signalPayload mirrors the JSON shape the analysis scripts emit.
// Absent fields stay nil and score nothing.
type signalPayload struct {
	Detections *struct {
		Malicious  int `json:"malicious"`
		Suspicious int `json:"suspicious"`
	} `json:"detections"`
	AbuseConfidence *int     `json:"abuse_confidence"`
	DetectionRatio  *float64 `json:"detection_ratio"`
	DomainAgeDays   *int     `json:"domain_age_days"`
	RedirectCount   *int     `json:"redirect_count"`
	HTTPStatus      *int     `json:"http_status"`
}

// ParseSignals extracts scoring signals from an analysis script's JSON
// output. Fields the script did not report are left unset; fields the
// parser does not recognize are ignored.
func ParseSignals(data []byte) (Signals, error) {
	var payload signalPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Signals{}, fmt.Errorf("failed to decode analysis signals: %w", err)
	}

	var sig Signals
	if payload.Detections != nil {
		sig.Detections = &Detections{
			Malicious:  payload.Detections.Malicious,
			Suspicious: payload.Detections.Suspicious,
		}
	}
	sig.AbuseConfidence = payload.AbuseConfidence
	sig.DetectionRatio = payload.DetectionRatio
	sig.DomainAgeDays = payload.DomainAgeDays
	sig.RedirectCount = payload.RedirectCount
	sig.HTTPStatus = payload.HTTPStatus
	return sig, nil
}
