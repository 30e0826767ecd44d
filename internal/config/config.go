package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values follow the documented limits of the upstream provider
// APIs where applicable.
const (
	// DefaultTimeout is the per-request timeout for provider calls.
	// Provider APIs normally answer within a few seconds; 30 seconds
	// covers slow reputation analyses without hanging a whole
	// investigation on one dead connection.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of search queries in flight per
	// target. Five keeps a full template fan-out fast while staying
	// inside the per-minute search quota.
	DefaultConcurrency = 5

	// DefaultMaxResults is the number of results requested per query.
	// Five per query keeps a full alias fan-out inside a free daily
	// search quota; the provider caps a single request at ten anyway.
	DefaultMaxResults = 5

	// DefaultInterTargetDelay is the pause between targets in bulk
	// investigations. One second of spacing avoids tripping provider
	// rate limits when many targets run back to back.
	DefaultInterTargetDelay = 1 * time.Second

	// DefaultSearchCallsPerMinute and DefaultSearchCallsPerDay match
	// the free tier of the web-search API. The day quota resets at
	// midnight US Pacific, which the rate limiter accounts for.
	DefaultSearchCallsPerMinute = 50
	DefaultSearchCallsPerDay    = 100

	// DefaultReputationCallsPerMinute and DefaultReputationCallsPerDay
	// match the free tier of the reputation API. Its day quota rolls,
	// unlike the search provider's fixed midnight reset.
	DefaultReputationCallsPerMinute = 4
	DefaultReputationCallsPerDay    = 500

	// DefaultPriority selects which query templates run when the user
	// does not say. High-priority templates cover the major platforms
	// and give the best findings-per-quota ratio.
	DefaultPriority = "high"

	// DefaultScriptTimeout caps one external analysis script run.
	DefaultScriptTimeout = 2 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "sourceweaver"
)

// Config holds all configuration options for SourceWeaver.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than global
// state. Core packages never read the environment; the cmd layer
// resolves flags and environment variables into this struct.
//
// Design decision: We use a single flat struct instead of nested
// structs (e.g., ProviderConfig, ReportConfig) for simplicity. The
// number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// WebSearchAPIKey and WebSearchEngineID authenticate against the
	// web-search provider. Both are required for alias and domain
	// investigations.
	WebSearchAPIKey   string
	WebSearchEngineID string

	// BreachAPIKey authenticates account and domain breach lookups.
	// Password range checks and the public breach catalogue work
	// without it.
	BreachAPIKey string

	// ReputationAPIKey authenticates the malware/reputation provider.
	ReputationAPIKey string

	// Timeout is the per-request timeout for provider calls.
	// This applies to individual requests, not a whole investigation.
	Timeout time.Duration

	// Concurrency is the number of search queries in flight per target.
	// Higher values finish fan-outs faster but burn through the
	// per-minute quota sooner.
	Concurrency int

	// MaxResults is the number of results requested per query (1-10).
	MaxResults int

	// InterTargetDelay is the pause between targets in bulk runs.
	InterTargetDelay time.Duration

	// SearchCallsPerMinute and SearchCallsPerDay bound outbound
	// web-search calls. Zero means use the defaults.
	SearchCallsPerMinute int
	SearchCallsPerDay    int

	// Priority selects which query templates run: "high" runs only the
	// high-priority set, "medium" adds the medium set, "low" runs
	// everything.
	Priority string

	// ScriptsDir is the directory holding external analysis scripts.
	// When empty, script-based analysis is unavailable.
	ScriptsDir string

	// ScriptTimeout caps one external analysis script run.
	ScriptTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of values to investigate.
	Targets []string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sourceweaver.yml in the current
	// directory and then in the XDG config directory.
	ConfigFilePath string

	// Providers holds provider credentials and quota overrides loaded
	// from the config file. Populated by LoadConfigFile.
	Providers *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout,
// quotas). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:              DefaultTimeout,
		Concurrency:          DefaultConcurrency,
		MaxResults:           DefaultMaxResults,
		InterTargetDelay:     DefaultInterTargetDelay,
		SearchCallsPerMinute: DefaultSearchCallsPerMinute,
		SearchCallsPerDay:    DefaultSearchCallsPerDay,
		Priority:             DefaultPriority,
		ScriptTimeout:        DefaultScriptTimeout,
	}
}

// XDGDataDir returns the XDG data directory for SourceWeaver.
// On Linux: ~/.local/share/sourceweaver
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for SourceWeaver.
// On Linux: ~/.config/sourceweaver
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for SourceWeaver.
// On Linux: ~/.cache/sourceweaver
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network call.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxResults <= 0 || c.MaxResults > 10 {
		return ErrInvalidMaxResults
	}

	if c.InterTargetDelay < 0 {
		return ErrInvalidDelay
	}

	if c.SearchCallsPerMinute < 0 || c.SearchCallsPerDay < 0 {
		return ErrInvalidQuota
	}

	switch c.Priority {
	case "high", "medium", "low", "all":
	default:
		return ErrInvalidPriority
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
