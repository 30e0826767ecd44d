package config

// ProviderConfig holds credentials and quota overrides for a single
// provider. This allows configuring each upstream service per file
// instead of per flag.
type ProviderConfig struct {
	// APIKey authenticates calls to this provider.
	APIKey string `yaml:"apiKey,omitempty"`

	// EngineID is the search engine identifier. Only the web-search
	// provider uses it.
	EngineID string `yaml:"engineId,omitempty"`

	// CallsPerMinute overrides the per-minute call quota.
	// If zero, the provider's documented default is used.
	CallsPerMinute int `yaml:"callsPerMinute,omitempty"`

	// CallsPerDay overrides the per-day call quota.
	// If zero, the provider's documented default is used.
	CallsPerDay int `yaml:"callsPerDay,omitempty"`
}

// File represents the structure of the .sourceweaver.yml configuration
// file.
type File struct {
	// Providers maps provider identifiers ("websearch", "breach",
	// "reputation") to their configurations.
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`

	// Defaults contains default provider configuration applied to all
	// providers unless overridden in the provider-specific entry.
	Defaults ProviderConfig `yaml:"defaults,omitempty"`
}

// GetProviderConfig returns the configuration for a specific provider.
// It merges the provider-specific configuration with defaults.
func (cf *File) GetProviderConfig(providerID string) ProviderConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with provider-specific configuration if present
	if pc, ok := cf.Providers[providerID]; ok {
		if pc.APIKey != "" {
			result.APIKey = pc.APIKey
		}
		if pc.EngineID != "" {
			result.EngineID = pc.EngineID
		}
		if pc.CallsPerMinute != 0 {
			result.CallsPerMinute = pc.CallsPerMinute
		}
		if pc.CallsPerDay != 0 {
			result.CallsPerDay = pc.CallsPerDay
		}
	}

	return result
}
