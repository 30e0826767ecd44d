package model

// ThreatLevel is the ordinal severity band derived from a numeric
// threat score. It is one of three independent ordinal scales in this
// package; see BreachRisk for the other two. The scales share some
// names but their thresholds are defined separately and must not be
// conflated.
type ThreatLevel int

const (
	// LevelClean means no scoring rule triggered.
	LevelClean ThreatLevel = iota

	// LevelLow means at least one minor signal triggered.
	LevelLow

	// LevelMedium indicates signals that warrant analyst attention.
	LevelMedium

	// LevelHigh indicates strong indicators of malicious activity.
	LevelHigh

	// LevelCritical indicates overwhelming indicators across signals.
	LevelCritical
)

// Score band thresholds. The numeric score is additive and capped at
// MaxScore; the level is derived from these fixed bands.
const (
	MaxScore           = 100
	criticalScoreFloor = 85
	highScoreFloor     = 60
	mediumScoreFloor   = 30
)

// LevelForScore maps a numeric score to its threat level band.
func LevelForScore(score int) ThreatLevel {
	switch {
	case score >= criticalScoreFloor:
		return LevelCritical
	case score >= highScoreFloor:
		return LevelHigh
	case score >= mediumScoreFloor:
		return LevelMedium
	case score > 0:
		return LevelLow
	default:
		return LevelClean
	}
}

// String returns the report-facing name of the level.
func (l ThreatLevel) String() string {
	switch l {
	case LevelClean:
		return "clean"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the level as its string name.
func (l ThreatLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// ThreatScore is the bounded heuristic summary of aggregated signals.
// Derived deterministically from a finalized report or single-provider
// payload; stateless and recomputed on each call.
type ThreatScore struct {
	// Score is the additive numeric score in [0, MaxScore].
	Score int `json:"score"`

	// Level is the band derived from Score via LevelForScore.
	Level ThreatLevel `json:"level"`

	// Factors lists one human-readable string per triggered rule, in
	// the order the rules were evaluated.
	Factors []string `json:"factors"`

	// Confidence in [0,1] reflects how many signal sources were present
	// in the input, not how strong the signals were.
	Confidence float64 `json:"confidence"`
}

// BreachRisk is the ordinal scale used for breach-database findings.
// Password exposure and account exposure each map counts onto this
// scale through their own fixed thresholds; neither mapping shares
// thresholds with the score bands above.
type BreachRisk int

const (
	// RiskSafe means no exposure was found.
	RiskSafe BreachRisk = iota

	// RiskLow means minimal exposure (few hits, or unverified only).
	RiskLow

	// RiskMedium means moderate exposure.
	RiskMedium

	// RiskHigh means substantial exposure.
	RiskHigh

	// RiskCritical means severe, widespread exposure.
	RiskCritical
)

// PasswordRiskLevel maps a pwned-password occurrence count onto the
// breach risk scale using hard count thresholds.
func PasswordRiskLevel(pwnCount int64) BreachRisk {
	switch {
	case pwnCount <= 0:
		return RiskSafe
	case pwnCount < 10:
		return RiskLow
	case pwnCount < 100:
		return RiskMedium
	case pwnCount < 1000:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// AccountRiskLevel maps account breach counts onto the breach risk
// scale. An account appearing only in unverified breaches stays low
// regardless of count.
func AccountRiskLevel(breachCount, verifiedCount int) BreachRisk {
	switch {
	case breachCount <= 0:
		return RiskSafe
	case verifiedCount == 0:
		return RiskLow
	case breachCount < 3:
		return RiskMedium
	case breachCount < 5:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// MaxBreachRisk returns the higher of two risks.
func MaxBreachRisk(a, b BreachRisk) BreachRisk {
	if a > b {
		return a
	}
	return b
}

// String returns the report-facing name of the risk.
func (r BreachRisk) String() string {
	switch r {
	case RiskSafe:
		return "safe"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the risk as its string name.
func (r BreachRisk) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}
