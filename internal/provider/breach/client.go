package breach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/sourceweaver/sourceweaver/internal/provider"
)

// ProviderID identifies this client to the rate limiter.
const ProviderID = "breach"

// Default endpoints. Both are overridable for tests.
const (
	defaultBaseURL      = "https://haveibeenpwned.com/api/v3"
	defaultPasswordsURL = "https://api.pwnedpasswords.com"
)

// minRequestInterval spaces successive requests to stay under the
// subscription's per-minute ceiling even when the caller's own rate
// gate is absent.
const minRequestInterval = 1500 * time.Millisecond

// Client is a breach database client. Create with NewClient.
// The API key is optional: password range checks and the public breach
// catalogue work without one, account and domain lookups do not.
type Client struct {
	apiKey       string
	baseURL      string
	passwordsURL string
	httpClient   *http.Client
	gate         provider.Gate
	spacer       *rate.Limiter
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the breach catalogue endpoint. Intended for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithPasswordsURL overrides the password range endpoint. Intended for tests.
func WithPasswordsURL(passwordsURL string) Option {
	return func(c *Client) { c.passwordsURL = passwordsURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithGate sets the rate limit gate consulted before each request.
func WithGate(gate provider.Gate) Option {
	return func(c *Client) { c.gate = gate }
}

// WithRequestInterval overrides the minimum spacing between requests.
// Tests set this to zero to avoid real waiting.
func WithRequestInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.spacer = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.spacer = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a breach database client. An empty apiKey is
// allowed; key-requiring operations fail with ErrMissingAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		passwordsURL: defaultPasswordsURL,
		httpClient:   provider.NewHTTPClient(30 * time.Second),
		gate:         provider.OpenGate{},
		spacer:       rate.NewLimiter(rate.Every(minRequestInterval), 1),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breach describes one entry in the breach catalogue. Field names on
// the wire are PascalCase.
type Breach struct {
	Name               string   `json:"Name"`
	Title              string   `json:"Title"`
	Domain             string   `json:"Domain"`
	BreachDate         string   `json:"BreachDate"`
	AddedDate          string   `json:"AddedDate"`
	ModifiedDate       string   `json:"ModifiedDate"`
	PwnCount           int64    `json:"PwnCount"`
	Description        string   `json:"Description"`
	LogoPath           string   `json:"LogoPath"`
	DataClasses        []string `json:"DataClasses"`
	IsVerified         bool     `json:"IsVerified"`
	IsFabricated       bool     `json:"IsFabricated"`
	IsSensitive        bool     `json:"IsSensitive"`
	IsRetired          bool     `json:"IsRetired"`
	IsSpamList         bool     `json:"IsSpamList"`
	IsMalware          bool     `json:"IsMalware"`
	IsSubscriptionFree bool     `json:"IsSubscriptionFree"`
}

// DomainBreachEntry pairs one email alias of a monitored domain with
// the names of the breaches it appears in.
type DomainBreachEntry struct {
	Email    string   `json:"email"`
	Breaches []string `json:"breaches"`
}

// AccountOptions refines an account breach lookup.
type AccountOptions struct {
	// TruncateResponse requests name-only breach records.
	TruncateResponse bool

	// DomainFilter limits results to breaches of one domain.
	DomainFilter string

	// IncludeUnverified includes breaches not yet verified upstream.
	IncludeUnverified bool
}

// wait applies both the shared quota gate and the fixed inter-request
// spacing. Every outbound request funnels through here.
func (c *Client) wait(ctx context.Context) error {
	if err := c.gate.Admit(ctx, ProviderID); err != nil {
		return err
	}
	return c.spacer.Wait(ctx)
}

// newRequest builds a GET request with the standard headers. The API
// rejects requests without a descriptive User-Agent.
func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build breach request: %w", err)
	}
	req.Header.Set("User-Agent", provider.UserAgent())
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("hibp-api-key", c.apiKey)
	}
	return req, nil
}

// getJSON performs a catalogue request and decodes the 200 body into
// out. A 404 returns (false, nil) with out untouched: no breaches.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (found bool, err error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}

	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, provider.TransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if !provider.PartialDecode(err) {
				return false, provider.DecodeError(err)
			}
			// One malformed record must not void the whole catalogue
			// page: keep the fields that parsed.
			c.logger.Warn("breach response partially decoded", "error", err)
		}
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, provider.StatusError(resp, "breach catalogue request failed")
	}
}

// AccountBreaches lists the breaches a single account appears in.
// Requires an API key. A nil opts requests full, verified-only records.
func (c *Client) AccountBreaches(ctx context.Context, account string, opts *AccountOptions) ([]Breach, error) {
	if account == "" {
		return nil, provider.ValidationError("account must not be empty")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("account breach lookup: %w", provider.ErrMissingAPIKey)
	}
	if opts == nil {
		opts = &AccountOptions{}
	}

	params := url.Values{}
	if !opts.TruncateResponse {
		params.Set("truncateResponse", "false")
	}
	if opts.DomainFilter != "" {
		params.Set("domain", opts.DomainFilter)
	}
	if opts.IncludeUnverified {
		params.Set("includeUnverified", "true")
	}

	rawURL := c.baseURL + "/breachedaccount/" + url.PathEscape(account)
	if encoded := params.Encode(); encoded != "" {
		rawURL += "?" + encoded
	}

	var breaches []Breach
	found, err := c.getJSON(ctx, rawURL, &breaches)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	c.logger.Debug("account breach lookup completed", "account", account, "breaches", len(breaches))
	return breaches, nil
}

// DomainBreaches lists the breached email aliases of a monitored
// domain. Requires an API key.
func (c *Client) DomainBreaches(ctx context.Context, domain string) ([]DomainBreachEntry, error) {
	if domain == "" {
		return nil, provider.ValidationError("domain must not be empty")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("domain breach lookup: %w", provider.ErrMissingAPIKey)
	}

	rawURL := c.baseURL + "/breacheddomain/" + url.PathEscape(domain)

	var entries []DomainBreachEntry
	found, err := c.getJSON(ctx, rawURL, &entries)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return entries, nil
}

// AllBreaches lists every breach in the public catalogue, optionally
// filtered to one domain. No API key needed.
func (c *Client) AllBreaches(ctx context.Context, domainFilter string) ([]Breach, error) {
	rawURL := c.baseURL + "/breaches"
	if domainFilter != "" {
		rawURL += "?domain=" + url.QueryEscape(domainFilter)
	}

	var breaches []Breach
	if _, err := c.getJSON(ctx, rawURL, &breaches); err != nil {
		return nil, err
	}
	return breaches, nil
}

// BreachByName fetches a single breach record. Returns (nil, nil) when
// no breach has that name.
func (c *Client) BreachByName(ctx context.Context, name string) (*Breach, error) {
	if name == "" {
		return nil, provider.ValidationError("breach name must not be empty")
	}

	rawURL := c.baseURL + "/breach/" + url.PathEscape(name)

	var breach Breach
	found, err := c.getJSON(ctx, rawURL, &breach)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &breach, nil
}
