package reputation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/provider"
)

// ProviderID identifies this client to the rate limiter.
const ProviderID = "reputation"

// defaultBaseURL is the v3 REST endpoint.
const defaultBaseURL = "https://www.virustotal.com/api/v3"

// Default collection page sizes, matching the API defaults.
const (
	defaultCommentLimit  = 10
	defaultRelationLimit = 40
	defaultSearchLimit   = 300
)

// Client is a reputation API client. Create with NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	gate       provider.Gate
	logger     *slog.Logger

	// Usage counters for Stats. The daily counter resets 24 hours
	// after the first request of the current accounting window.
	statsMu       sync.Mutex
	totalRequests int64
	dailyRequests int64
	dayStart      time.Time
	now           func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Intended for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithGate sets the rate limit gate consulted before each request.
func WithGate(gate provider.Gate) Option {
	return func(c *Client) { c.gate = gate }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// withClock replaces the wall clock for the usage counters in tests.
func withClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a reputation client. The API key is required for
// every endpoint of this service.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("reputation: %w", provider.ErrMissingAPIKey)
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: provider.NewHTTPClient(30 * time.Second),
		gate:       provider.OpenGate{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// URLID returns the object ID for a raw URL: its unpadded URL-safe
// base64 encoding.
func URLID(rawURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rawURL))
}

// do performs one API request and decodes the JSON body into out.
// A 204 leaves out at its zero value: the API uses it for objects that
// exist but have no content yet.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out any) error {
	if err := c.gate.Admit(ctx, ProviderID); err != nil {
		return err
	}

	rawURL := c.baseURL + path
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("build reputation request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", provider.UserAgent())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.countRequest()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.TransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if !provider.PartialDecode(err) {
				return provider.DecodeError(err)
			}
			// A type mismatch in one attribute must not void the rest
			// of the report: keep the fields that parsed.
			c.logger.Warn("reputation response partially decoded", "error", err)
		}
		return nil
	case http.StatusNoContent:
		return nil
	default:
		return provider.StatusError(resp, "reputation request failed")
	}
}

// countRequest advances the usage counters.
func (c *Client) countRequest() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	now := c.now()
	if c.dayStart.IsZero() || now.Sub(c.dayStart) > 24*time.Hour {
		c.dayStart = now
		c.dailyRequests = 0
	}
	c.totalRequests++
	c.dailyRequests++
}

// UsageStats reports the client's request counters since construction.
type UsageStats struct {
	TotalRequests int64
	DailyRequests int64
}

// Stats returns a snapshot of the usage counters.
func (c *Client) Stats() UsageStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return UsageStats{
		TotalRequests: c.totalRequests,
		DailyRequests: c.dailyRequests,
	}
}

// FileReport fetches the analysis report for a file hash (MD5, SHA-1,
// or SHA-256).
func (c *Client) FileReport(ctx context.Context, fileHash string) (*Report, error) {
	if fileHash == "" {
		return nil, provider.ValidationError("file hash must not be empty")
	}
	var report Report
	if err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(fileHash), nil, nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// FileComments fetches community comments on a file. limit <= 0 uses
// the API default.
func (c *Client) FileComments(ctx context.Context, fileHash string, limit int) (*Collection, error) {
	return c.collection(ctx, "/files/"+url.PathEscape(fileHash)+"/comments", limitOrDefault(limit, defaultCommentLimit))
}

// SubmitURL submits a URL for scanning. The endpoint takes a
// form-encoded body, not JSON; the returned analysis ID is polled with
// Analysis until the scan completes.
func (c *Client) SubmitURL(ctx context.Context, rawURL string) (*Submission, error) {
	if rawURL == "" {
		return nil, provider.ValidationError("url must not be empty")
	}

	form := url.Values{}
	form.Set("url", rawURL)

	var submission Submission
	err := c.do(ctx, http.MethodPost, "/urls", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &submission)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("url submitted for analysis", "analysis_id", submission.Data.ID)
	return &submission, nil
}

// URLReport fetches the report for a previously scanned URL. The raw
// URL is accepted directly; it is converted to its object ID.
func (c *Client) URLReport(ctx context.Context, rawURL string) (*Report, error) {
	if rawURL == "" {
		return nil, provider.ValidationError("url must not be empty")
	}
	var report Report
	if err := c.do(ctx, http.MethodGet, "/urls/"+URLID(rawURL), nil, nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// URLComments fetches community comments on a URL.
func (c *Client) URLComments(ctx context.Context, rawURL string, limit int) (*Collection, error) {
	return c.collection(ctx, "/urls/"+URLID(rawURL)+"/comments", limitOrDefault(limit, defaultCommentLimit))
}

// DomainReport fetches a domain's reputation report.
func (c *Client) DomainReport(ctx context.Context, domain string) (*Report, error) {
	if domain == "" {
		return nil, provider.ValidationError("domain must not be empty")
	}
	var report Report
	if err := c.do(ctx, http.MethodGet, "/domains/"+url.PathEscape(domain), nil, nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DomainComments fetches community comments on a domain.
func (c *Client) DomainComments(ctx context.Context, domain string, limit int) (*Collection, error) {
	return c.collection(ctx, "/domains/"+url.PathEscape(domain)+"/comments", limitOrDefault(limit, defaultCommentLimit))
}

// DomainSubdomains lists observed subdomains of a domain.
func (c *Client) DomainSubdomains(ctx context.Context, domain string, limit int) (*Collection, error) {
	return c.collection(ctx, "/domains/"+url.PathEscape(domain)+"/subdomains", limitOrDefault(limit, defaultRelationLimit))
}

// DomainResolutions lists DNS resolutions observed for a domain.
func (c *Client) DomainResolutions(ctx context.Context, domain string, limit int) (*Collection, error) {
	return c.collection(ctx, "/domains/"+url.PathEscape(domain)+"/resolutions", limitOrDefault(limit, defaultRelationLimit))
}

// IPReport fetches an IP address's reputation report.
func (c *Client) IPReport(ctx context.Context, ipAddress string) (*Report, error) {
	if ipAddress == "" {
		return nil, provider.ValidationError("ip address must not be empty")
	}
	var report Report
	if err := c.do(ctx, http.MethodGet, "/ip_addresses/"+url.PathEscape(ipAddress), nil, nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// IPComments fetches community comments on an IP address.
func (c *Client) IPComments(ctx context.Context, ipAddress string, limit int) (*Collection, error) {
	return c.collection(ctx, "/ip_addresses/"+url.PathEscape(ipAddress)+"/comments", limitOrDefault(limit, defaultCommentLimit))
}

// IPResolutions lists DNS resolutions observed for an IP address.
func (c *Client) IPResolutions(ctx context.Context, ipAddress string, limit int) (*Collection, error) {
	return c.collection(ctx, "/ip_addresses/"+url.PathEscape(ipAddress)+"/resolutions", limitOrDefault(limit, defaultRelationLimit))
}

// Search runs a free-text search across files, URLs, domains, and IP
// addresses.
func (c *Client) Search(ctx context.Context, query string, limit int) (*Collection, error) {
	if query == "" {
		return nil, provider.ValidationError("search query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limitOrDefault(limit, defaultSearchLimit)))

	var collection Collection
	if err := c.do(ctx, http.MethodGet, "/search", params, nil, "", &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// Analysis fetches the state of an asynchronous analysis by its ID.
// Used to poll URL submissions until their status is "completed".
func (c *Client) Analysis(ctx context.Context, analysisID string) (*AnalysisReport, error) {
	if analysisID == "" {
		return nil, provider.ValidationError("analysis ID must not be empty")
	}
	var report AnalysisReport
	if err := c.do(ctx, http.MethodGet, "/analyses/"+url.PathEscape(analysisID), nil, nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// TestConnection probes the API key by fetching the current user.
func (c *Client) TestConnection(ctx context.Context) bool {
	var out json.RawMessage
	return c.do(ctx, http.MethodGet, "/users/current", nil, nil, "", &out) == nil
}

// collection performs a GET for a paged object collection.
func (c *Client) collection(ctx context.Context, path string, limit int) (*Collection, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var collection Collection
	if err := c.do(ctx, http.MethodGet, path, params, nil, "", &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// limitOrDefault substitutes the endpoint default for non-positive
// limits.
func limitOrDefault(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
