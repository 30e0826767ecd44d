package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider/breach"
)

// BreachChecker is the subset of the breach provider the exposure
// service needs. *breach.Client satisfies it.
type BreachChecker interface {
	AccountBreaches(ctx context.Context, account string, opts *breach.AccountOptions) ([]breach.Breach, error)
	CheckPassword(ctx context.Context, password string, addPadding bool) (*breach.PasswordResult, error)
}

// ExposureService summarizes breach-database findings for accounts
// and passwords. Create with NewExposureService.
type ExposureService struct {
	client BreachChecker
	logger *slog.Logger
}

// ExposureOption configures an ExposureService.
type ExposureOption func(*ExposureService)

// WithExposureLogger sets a custom logger.
func WithExposureLogger(logger *slog.Logger) ExposureOption {
	return func(s *ExposureService) {
		s.logger = logger
	}
}

// NewExposureService creates an ExposureService over the given
// breach checker.
func NewExposureService(client BreachChecker, opts ...ExposureOption) *ExposureService {
	s := &ExposureService{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccountExposure aggregates the breaches affecting one account.
type AccountExposure struct {
	Account  string `json:"account"`
	Breached bool   `json:"is_breached"`

	// BreachCount splits into verified and unverified records.
	BreachCount     int `json:"breach_count"`
	VerifiedCount   int `json:"verified_breaches_count"`
	UnverifiedCount int `json:"unverified_breaches_count"`

	// DataClasses is the sorted union of data classes exposed across
	// all breaches.
	DataClasses []string `json:"data_classes_affected"`

	// MostRecent is the latest breach date (YYYY-MM-DD), empty when
	// the account is clean.
	MostRecent string `json:"most_recent_breach,omitempty"`

	Risk model.BreachRisk `json:"risk"`

	Breaches []breach.Breach `json:"breaches,omitempty"`
}

// CheckAccount looks up the breaches for an account and folds them
// into an exposure summary.
func (s *ExposureService) CheckAccount(ctx context.Context, account string, opts *breach.AccountOptions) (*AccountExposure, error) {
	breaches, err := s.client.AccountBreaches(ctx, account, opts)
	if err != nil {
		return nil, fmt.Errorf("account exposure for %q: %w", account, err)
	}

	exp := &AccountExposure{
		Account:     account,
		Breached:    len(breaches) > 0,
		BreachCount: len(breaches),
		Breaches:    breaches,
	}

	classes := make(map[string]bool)
	for _, b := range breaches {
		if b.IsVerified {
			exp.VerifiedCount++
		} else {
			exp.UnverifiedCount++
		}
		for _, dc := range b.DataClasses {
			classes[dc] = true
		}
		if b.BreachDate > exp.MostRecent {
			exp.MostRecent = b.BreachDate
		}
	}
	for dc := range classes {
		exp.DataClasses = append(exp.DataClasses, dc)
	}
	sort.Strings(exp.DataClasses)

	exp.Risk = model.AccountRiskLevel(exp.BreachCount, exp.VerifiedCount)

	s.logger.Info("account exposure checked",
		"account", account,
		"breaches", exp.BreachCount,
		"risk", exp.Risk.String(),
	)
	return exp, nil
}

// PasswordExposure is the range-check outcome for one password. Only
// the digest suffix appears here; the plaintext is never retained.
type PasswordExposure struct {
	Pwned      bool             `json:"is_pwned"`
	Count      int64            `json:"pwn_count"`
	HashSuffix string           `json:"hash_suffix"`
	Risk       model.BreachRisk `json:"risk"`
}

// CheckPassword checks one password against the pwned range API.
func (s *ExposureService) CheckPassword(ctx context.Context, password string) (*PasswordExposure, error) {
	result, err := s.client.CheckPassword(ctx, password, true)
	if err != nil {
		return nil, fmt.Errorf("password exposure: %w", err)
	}
	return &PasswordExposure{
		Pwned:      result.Pwned,
		Count:      result.Count,
		HashSuffix: result.HashSuffix,
		Risk:       result.Risk(),
	}, nil
}

// CombinedReport pairs an account exposure with a password exposure
// and reduces both onto one overall risk.
type CombinedReport struct {
	Account         *AccountExposure  `json:"account"`
	Password        *PasswordExposure `json:"password"`
	OverallRisk     model.BreachRisk  `json:"overall_risk"`
	Recommendations []string          `json:"recommendations"`
}

// CombinedCheck runs the account and password checks together. The
// overall risk is the higher of the two individual risks.
func (s *ExposureService) CombinedCheck(ctx context.Context, account, password string) (*CombinedReport, error) {
	acc, err := s.CheckAccount(ctx, account, nil)
	if err != nil {
		return nil, err
	}
	pwd, err := s.CheckPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	return &CombinedReport{
		Account:         acc,
		Password:        pwd,
		OverallRisk:     model.MaxBreachRisk(acc.Risk, pwd.Risk),
		Recommendations: combinedRecommendations(acc, pwd),
	}, nil
}

func combinedRecommendations(acc *AccountExposure, pwd *PasswordExposure) []string {
	var recs []string
	if pwd.Pwned {
		recs = append(recs, fmt.Sprintf("Password appears in %d known breaches; stop using it everywhere immediately.", pwd.Count))
	}
	if acc.Breached {
		recs = append(recs,
			fmt.Sprintf("Account appears in %d breaches (%d verified); rotate credentials on the affected services.", acc.BreachCount, acc.VerifiedCount),
			"Enable multi-factor authentication on every service tied to this account.",
		)
	}
	if len(recs) == 0 {
		recs = append(recs, "No recorded exposure found for this account or password.")
	}
	return recs
}

// PasswordSweep summarizes a bulk password check. Results are
// positional so callers can map them back to their inputs without the
// plaintexts ever being echoed.
type PasswordSweep struct {
	Checked     int                 `json:"checked"`
	Pwned       int                 `json:"pwned"`
	HighestRisk model.BreachRisk    `json:"highest_risk"`
	Results     []*PasswordExposure `json:"results"`
}

// SweepPasswords checks each password in order and folds the
// individual risks into one highest risk. The first provider failure
// aborts the sweep and returns the results collected so far.
func (s *ExposureService) SweepPasswords(ctx context.Context, passwords []string) (*PasswordSweep, error) {
	sweep := &PasswordSweep{
		Checked: len(passwords),
		Results: make([]*PasswordExposure, 0, len(passwords)),
	}
	for _, password := range passwords {
		exp, err := s.CheckPassword(ctx, password)
		if err != nil {
			return sweep, err
		}
		sweep.Results = append(sweep.Results, exp)
		if exp.Pwned {
			sweep.Pwned++
		}
		sweep.HighestRisk = model.MaxBreachRisk(sweep.HighestRisk, exp.Risk)
	}
	return sweep, nil
}
