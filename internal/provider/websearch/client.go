package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider"
)

// ProviderID identifies this client to the rate limiter.
const ProviderID = "websearch"

// defaultBaseURL is the Custom Search JSON API endpoint.
const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// maxResultsPerRequest is the hard per-request ceiling imposed by the
// API. Larger requests are silently clamped rather than rejected.
const maxResultsPerRequest = 10

// defaultSafeLevel is the safe-search level sent when the caller does
// not choose one.
const defaultSafeLevel = "medium"

// Client is a web search API client. Create with NewClient.
type Client struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
	gate       provider.Gate
	logger     *slog.Logger
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

// NewClient creates a web search client. Both the API key and the
// search engine ID are required; the API rejects requests missing
// either one.
func NewClient(apiKey, engineID string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("websearch: %w", provider.ErrMissingAPIKey)
	}
	if engineID == "" {
		return nil, fmt.Errorf("websearch: search engine ID is required")
	}

	c := &Client{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    defaultBaseURL,
		httpClient: provider.NewHTTPClient(30 * time.Second),
		gate:       provider.OpenGate{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchOptions holds the optional refinements for a search request.
// String fields are sent only when non-empty.
type SearchOptions struct {
	// NumResults is the number of results to return, 1 to 10.
	// Zero means the maximum; values above 10 are clamped.
	NumResults int

	// StartIndex is the 1-based index of the first result.
	// Zero means 1.
	StartIndex int

	// SiteSearch restricts results to a single site.
	SiteSearch string

	// FileType restricts results to a file extension (e.g. "pdf").
	FileType string

	// DateRestrict limits results by age (e.g. "d1", "w1", "m6", "y1").
	DateRestrict string

	// ExactTerms must all appear in each result.
	ExactTerms string

	// ExcludeTerms must not appear in any result.
	ExcludeTerms string

	// LinkSite finds pages linking to the given site.
	LinkSite string

	// OrTerms requires at least one of the given terms.
	OrTerms string

	// RelatedSite finds pages related to the given site.
	RelatedSite string

	// Rights filters by license (e.g. "cc_publicdomain").
	Rights string

	// Safe is the safe-search level: "active", "medium", or "off".
	// Empty means "medium".
	Safe string

	// SearchType switches result modality; "image" selects image search.
	SearchType string
}

// ImageOptions holds the image-specific refinements for ImageSearch.
type ImageOptions struct {
	NumResults    int
	StartIndex    int
	Size          string
	Type          string
	ColorType     string
	DominantColor string
	Safe          string
}

// Response is a decoded search response.
type Response struct {
	Kind              string            `json:"kind"`
	SearchInformation SearchInformation `json:"searchInformation"`
	Context           EngineContext     `json:"context"`
	Items             []Item            `json:"items"`
}

// SearchInformation summarizes a search. TotalResults arrives as a
// decimal string on the wire.
type SearchInformation struct {
	SearchTime            float64 `json:"searchTime"`
	FormattedSearchTime   string  `json:"formattedSearchTime"`
	TotalResults          string  `json:"totalResults"`
	FormattedTotalResults string  `json:"formattedTotalResults"`
}

// EngineContext carries the search engine's display metadata.
type EngineContext struct {
	Title string `json:"title"`
}

// Item is a single search result.
type Item struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	DisplayLink  string `json:"displayLink"`
	FormattedURL string `json:"formattedUrl"`
	Mime         string `json:"mime,omitempty"`
	FileFormat   string `json:"fileFormat,omitempty"`
}

// TotalResults parses the estimated total match count. An absent or
// unparseable field counts as zero; the estimate is advisory only.
func (r *Response) TotalResults() int64 {
	n, err := strconv.ParseInt(r.SearchInformation.TotalResults, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SearchItems converts the response items to the shared result shape.
func (r *Response) SearchItems() []model.SearchItem {
	if len(r.Items) == 0 {
		return nil
	}
	items := make([]model.SearchItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, model.SearchItem{
			Title:        item.Title,
			Link:         item.Link,
			Snippet:      item.Snippet,
			DisplayLink:  item.DisplayLink,
			FormattedURL: item.FormattedURL,
		})
	}
	return items
}

// EngineInfo describes the configured search engine.
type EngineInfo struct {
	EngineID              string
	Title                 string
	SearchTime            float64
	FormattedSearchTime   string
	TotalResults          string
	FormattedTotalResults string
}

// Search performs a web search. A nil opts uses the defaults: the
// maximum result count, the first result page, and medium safe search.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (*Response, error) {
	if query == "" {
		return nil, provider.ValidationError("search query must not be empty")
	}
	if opts == nil {
		opts = &SearchOptions{}
	}

	if err := c.gate.Admit(ctx, ProviderID); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(clampResults(opts.NumResults)))
	params.Set("start", strconv.Itoa(startIndex(opts.StartIndex)))
	if opts.Safe != "" {
		params.Set("safe", opts.Safe)
	} else {
		params.Set("safe", defaultSafeLevel)
	}

	setIfPresent(params, "siteSearch", opts.SiteSearch)
	setIfPresent(params, "fileType", opts.FileType)
	setIfPresent(params, "dateRestrict", opts.DateRestrict)
	setIfPresent(params, "exactTerms", opts.ExactTerms)
	setIfPresent(params, "excludeTerms", opts.ExcludeTerms)
	setIfPresent(params, "linkSite", opts.LinkSite)
	setIfPresent(params, "orTerms", opts.OrTerms)
	setIfPresent(params, "relatedSite", opts.RelatedSite)
	setIfPresent(params, "rights", opts.Rights)
	setIfPresent(params, "searchType", opts.SearchType)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", provider.UserAgent())
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("web search request", "query", query, "num", params.Get("num"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.StatusError(resp, "search request failed")
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if !provider.PartialDecode(err) {
			return nil, provider.DecodeError(err)
		}
		// A type mismatch in one nested item must not cost the rest of
		// the page: keep whatever fields parsed.
		c.logger.Warn("web search response partially decoded", "query", query, "error", err)
	}

	c.logger.Debug("web search completed",
		"query", query,
		"items", len(decoded.Items),
		"total", decoded.SearchInformation.TotalResults,
	)
	return &decoded, nil
}

// ImageSearch performs an image search by switching the search type
// and attaching the image refinements.
func (c *Client) ImageSearch(ctx context.Context, query string, opts *ImageOptions) (*Response, error) {
	if opts == nil {
		opts = &ImageOptions{}
	}
	searchOpts := &SearchOptions{
		NumResults: opts.NumResults,
		StartIndex: opts.StartIndex,
		Safe:       opts.Safe,
		SearchType: "image",
	}
	resp, err := c.searchWithImageParams(ctx, query, searchOpts, opts)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// searchWithImageParams duplicates Search with the four image-only
// parameters appended. Kept separate so SearchOptions stays free of
// image fields that the plain search endpoint rejects.
func (c *Client) searchWithImageParams(ctx context.Context, query string, searchOpts *SearchOptions, imageOpts *ImageOptions) (*Response, error) {
	if query == "" {
		return nil, provider.ValidationError("search query must not be empty")
	}

	if err := c.gate.Admit(ctx, ProviderID); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(clampResults(searchOpts.NumResults)))
	params.Set("start", strconv.Itoa(startIndex(searchOpts.StartIndex)))
	if searchOpts.Safe != "" {
		params.Set("safe", searchOpts.Safe)
	} else {
		params.Set("safe", defaultSafeLevel)
	}
	params.Set("searchType", "image")

	setIfPresent(params, "imgSize", imageOpts.Size)
	setIfPresent(params, "imgType", imageOpts.Type)
	setIfPresent(params, "imgColorType", imageOpts.ColorType)
	setIfPresent(params, "imgDominantColor", imageOpts.DominantColor)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build image search request: %w", err)
	}
	req.Header.Set("User-Agent", provider.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.StatusError(resp, "image search request failed")
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if !provider.PartialDecode(err) {
			return nil, provider.DecodeError(err)
		}
		c.logger.Warn("image search response partially decoded", "query", query, "error", err)
	}
	return &decoded, nil
}

// SiteSearch searches within a single site.
func (c *Client) SiteSearch(ctx context.Context, query, site string, opts *SearchOptions) (*Response, error) {
	if site == "" {
		return nil, provider.ValidationError("site must not be empty")
	}
	if opts == nil {
		opts = &SearchOptions{}
	}
	scoped := *opts
	scoped.SiteSearch = site
	return c.Search(ctx, query, &scoped)
}

// EngineInfo fetches the search engine's metadata by issuing a minimal
// probe search. The probe consumes one quota unit.
func (c *Client) EngineInfo(ctx context.Context) (*EngineInfo, error) {
	resp, err := c.Search(ctx, "test", &SearchOptions{NumResults: 1})
	if err != nil {
		return nil, err
	}
	return &EngineInfo{
		EngineID:              c.engineID,
		Title:                 resp.Context.Title,
		SearchTime:            resp.SearchInformation.SearchTime,
		FormattedSearchTime:   resp.SearchInformation.FormattedSearchTime,
		TotalResults:          resp.SearchInformation.TotalResults,
		FormattedTotalResults: resp.SearchInformation.FormattedTotalResults,
	}, nil
}

// clampResults normalizes the requested result count to the API's
// 1..10 range. Zero selects the maximum.
func clampResults(n int) int {
	if n <= 0 || n > maxResultsPerRequest {
		return maxResultsPerRequest
	}
	return n
}

// startIndex normalizes the 1-based start index.
func startIndex(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// setIfPresent adds a parameter only when the value is non-empty.
func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
