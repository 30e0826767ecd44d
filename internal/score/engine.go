package score

import (
	"fmt"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

// Detection tier points. IPs score engine verdicts lower than domains
// and URLs because IP-level detections carry more noise (shared
// hosting, rotating assignments).
const (
	webMaliciousManyPoints = 40
	webMaliciousSomePoints = 20
	webSuspiciousPoints    = 15

	ipMaliciousManyPoints = 30
	ipMaliciousSomePoints = 15
	ipSuspiciousPoints    = 10

	maliciousManyFloor = 5
	suspiciousFloor    = 3
)

// Abuse confidence tier points (IP targets).
const (
	abuseHighPoints      = 40
	abuseMediumPoints    = 20
	abuseHighThreshold   = 75
	abuseMediumThreshold = 25
)

// Detection ratio tier points (domain and URL targets).
const (
	ratioHighPoints      = 25
	ratioMediumPoints    = 10
	ratioHighThreshold   = 30
	ratioMediumThreshold = 10
)

// Domain age tier points.
const (
	ageVeryRecentPoints = 15
	ageRecentPoints     = 5
	ageVeryRecentDays   = 30
	ageRecentDays       = 90
)

// URL behavior points.
const (
	redirectPoints    = 10
	redirectThreshold = 3
	nonOKStatusPoints = 5
)

// Detections holds the engine verdict counters for a target.
type Detections struct {
	Malicious  int
	Suspicious int
}

// Signals carries every input the engine can use. Nil fields mean the
// signal was not collected; they score nothing and reduce confidence.
type Signals struct {
	// Detections are the reputation service's engine verdicts.
	Detections *Detections

	// AbuseConfidence is the abuse database confidence percentage,
	// 0 to 100. IP targets only.
	AbuseConfidence *int

	// DetectionRatio is the blocklist detection share in percent.
	DetectionRatio *float64

	// DomainAgeDays is the days since domain registration.
	DomainAgeDays *int

	// RedirectCount is the length of the URL's redirect chain.
	RedirectCount *int

	// HTTPStatus is the status code the URL answered with.
	HTTPStatus *int
}

// Score computes the threat score for a target kind from its signals.
func Score(kind model.TargetKind, sig Signals) model.ThreatScore {
	total := 0
	var factors []string
	present := 0

	addDetections := func(manyPoints, somePoints, suspiciousPoints int) {
		if sig.Detections == nil {
			return
		}
		present++
		malicious := sig.Detections.Malicious
		suspicious := sig.Detections.Suspicious
		switch {
		case malicious > maliciousManyFloor:
			total += manyPoints
			factors = append(factors, fmt.Sprintf("%d malicious detections", malicious))
		case malicious > 0:
			total += somePoints
			factors = append(factors, fmt.Sprintf("%d malicious detections", malicious))
		}
		if suspicious > suspiciousFloor {
			total += suspiciousPoints
			factors = append(factors, fmt.Sprintf("%d suspicious detections", suspicious))
		}
	}

	addRatio := func() {
		if sig.DetectionRatio == nil {
			return
		}
		present++
		ratio := *sig.DetectionRatio
		switch {
		case ratio > ratioHighThreshold:
			total += ratioHighPoints
			factors = append(factors, fmt.Sprintf("High detection ratio: %.1f%%", ratio))
		case ratio > ratioMediumThreshold:
			total += ratioMediumPoints
			factors = append(factors, fmt.Sprintf("Medium detection ratio: %.1f%%", ratio))
		}
	}

	relevant := 1 // detections apply to every kind
	switch kind {
	case model.TargetIP:
		relevant = 2
		if sig.AbuseConfidence != nil {
			present++
			confidence := *sig.AbuseConfidence
			switch {
			case confidence > abuseHighThreshold:
				total += abuseHighPoints
				factors = append(factors, "High abuse confidence")
			case confidence > abuseMediumThreshold:
				total += abuseMediumPoints
				factors = append(factors, "Medium abuse confidence")
			}
		}
		addDetections(ipMaliciousManyPoints, ipMaliciousSomePoints, ipSuspiciousPoints)

	case model.TargetDomain:
		relevant = 3
		addDetections(webMaliciousManyPoints, webMaliciousSomePoints, webSuspiciousPoints)
		addRatio()
		if sig.DomainAgeDays != nil {
			present++
			days := *sig.DomainAgeDays
			switch {
			case days < ageVeryRecentDays:
				total += ageVeryRecentPoints
				factors = append(factors, fmt.Sprintf("Very recent domain (%d days old)", days))
			case days < ageRecentDays:
				total += ageRecentPoints
				factors = append(factors, fmt.Sprintf("Recent domain (%d days old)", days))
			}
		}

	case model.TargetURL:
		relevant = 4
		addDetections(webMaliciousManyPoints, webMaliciousSomePoints, webSuspiciousPoints)
		addRatio()
		if sig.RedirectCount != nil {
			present++
			if count := *sig.RedirectCount; count > redirectThreshold {
				total += redirectPoints
				factors = append(factors, fmt.Sprintf("Multiple redirects (%d)", count))
			}
		}
		if sig.HTTPStatus != nil {
			present++
			if status := *sig.HTTPStatus; status != 200 {
				total += nonOKStatusPoints
				factors = append(factors, fmt.Sprintf("Non-200 status code: %d", status))
			}
		}

	default:
		addDetections(webMaliciousManyPoints, webMaliciousSomePoints, webSuspiciousPoints)
	}

	if total > model.MaxScore {
		total = model.MaxScore
	}

	return model.ThreatScore{
		Score:      total,
		Level:      model.LevelForScore(total),
		Factors:    factors,
		Confidence: float64(present) / float64(relevant),
	}
}
