package breach

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider"
)

const accountBreachesResponse = `[
	{
		"Name": "Adobe",
		"Title": "Adobe",
		"Domain": "adobe.com",
		"BreachDate": "2013-10-04",
		"AddedDate": "2013-12-04T00:00:00Z",
		"ModifiedDate": "2022-05-15T23:52:49Z",
		"PwnCount": 152445165,
		"Description": "In October 2013, 153 million Adobe accounts were breached.",
		"DataClasses": ["Email addresses", "Password hints", "Passwords", "Usernames"],
		"IsVerified": true,
		"IsFabricated": false,
		"IsSensitive": false,
		"IsRetired": false,
		"IsSpamList": false,
		"IsMalware": false
	},
	{
		"Name": "Collection1",
		"Title": "Collection #1",
		"Domain": "",
		"BreachDate": "2019-01-07",
		"PwnCount": 772904991,
		"DataClasses": ["Email addresses", "Passwords"],
		"IsVerified": false
	}
]`

// TestAccountBreaches tests a successful account lookup.
func TestAccountBreaches(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotTruncate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("hibp-api-key")
		gotTruncate = r.URL.Query().Get("truncateResponse")
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(accountBreachesResponse)); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL), WithRequestInterval(0))
	breaches, err := client.AccountBreaches(context.Background(), "victim@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/breachedaccount/victim@example.com" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("hibp-api-key = %q", gotKey)
	}
	if gotTruncate != "false" {
		t.Errorf("truncateResponse = %q, want false by default", gotTruncate)
	}

	if len(breaches) != 2 {
		t.Fatalf("breaches = %d, want 2", len(breaches))
	}
	if breaches[0].Name != "Adobe" || breaches[0].PwnCount != 152445165 {
		t.Errorf("first breach = %+v", breaches[0])
	}
	if !breaches[0].IsVerified || breaches[1].IsVerified {
		t.Error("IsVerified flags decoded incorrectly")
	}
	if len(breaches[0].DataClasses) != 4 {
		t.Errorf("DataClasses = %v", breaches[0].DataClasses)
	}
}

// TestAccountBreachesPartialDecode tests that one malformed record
// keeps the fields that parsed rather than voiding the whole page.
func TestAccountBreachesPartialDecode(t *testing.T) {
	t.Parallel()

	body := `[
		{"Name": 123, "Title": "Broken", "PwnCount": 42},
		{"Name": "Adobe", "Title": "Adobe", "PwnCount": 152445165, "IsVerified": true}
	]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL), WithRequestInterval(0))
	breaches, err := client.AccountBreaches(context.Background(), "victim@example.com", nil)
	if err != nil {
		t.Fatalf("one malformed record failed the lookup: %v", err)
	}
	if len(breaches) != 2 {
		t.Fatalf("breaches = %d, want 2", len(breaches))
	}
	if breaches[0].Name != "" || breaches[0].Title != "Broken" || breaches[0].PwnCount != 42 {
		t.Errorf("malformed record = %+v, want empty name with other fields kept", breaches[0])
	}
	if breaches[1].Name != "Adobe" || !breaches[1].IsVerified {
		t.Errorf("intact record = %+v", breaches[1])
	}
}

// TestAccountBreachesNotFound tests that 404 means a clean account.
func TestAccountBreachesNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL), WithRequestInterval(0))
	breaches, err := client.AccountBreaches(context.Background(), "clean@example.com", nil)
	if err != nil {
		t.Fatalf("404 must not be an error: %v", err)
	}
	if breaches != nil {
		t.Errorf("breaches = %v, want nil", breaches)
	}
}

// TestAccountBreachesRequiresKey tests the missing-key failure mode.
func TestAccountBreachesRequiresKey(t *testing.T) {
	t.Parallel()

	client := NewClient("", WithRequestInterval(0))
	_, err := client.AccountBreaches(context.Background(), "victim@example.com", nil)
	if !errors.Is(err, provider.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

// TestAccountBreachesOptions tests the optional query parameters.
func TestAccountBreachesOptions(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL), WithRequestInterval(0))
	opts := &AccountOptions{
		TruncateResponse:  true,
		DomainFilter:      "adobe.com",
		IncludeUnverified: true,
	}
	if _, err := client.AccountBreaches(context.Background(), "victim@example.com", opts); err != nil {
		t.Fatal(err)
	}

	if _, present := gotQuery["truncateResponse"]; present {
		t.Error("truncateResponse sent despite truncation being requested")
	}
	if got := gotQuery["domain"]; len(got) != 1 || got[0] != "adobe.com" {
		t.Errorf("domain = %v", got)
	}
	if got := gotQuery["includeUnverified"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("includeUnverified = %v", got)
	}
}

// TestAccountBreachesRateLimited tests error classification on 429.
func TestAccountBreachesRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL), WithRequestInterval(0))
	_, err := client.AccountBreaches(context.Background(), "victim@example.com", nil)

	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *provider.APIError, got %v", err)
	}
	if apiErr.Kind != model.ErrorRateLimited {
		t.Errorf("Kind = %v, want rate limited", apiErr.Kind)
	}
	if apiErr.RetryAfter == 0 {
		t.Error("RetryAfter not parsed")
	}
}

// TestDomainBreaches tests the monitored-domain lookup.
func TestDomainBreaches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/breacheddomain/example.com" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if _, err := w.Write([]byte(`[{"email": "alice", "breaches": ["Adobe", "Collection1"]}]`)); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL), WithRequestInterval(0))
	entries, err := client.DomainBreaches(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Email != "alice" || len(entries[0].Breaches) != 2 {
		t.Errorf("entries = %+v", entries)
	}
}

// TestAllBreaches tests the keyless catalogue listing.
func TestAllBreaches(t *testing.T) {
	t.Parallel()

	var gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("domain")
		if r.Header.Get("hibp-api-key") != "" {
			t.Error("API key header sent by keyless client")
		}
		if _, err := w.Write([]byte(accountBreachesResponse)); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient("", WithBaseURL(server.URL), WithRequestInterval(0))
	breaches, err := client.AllBreaches(context.Background(), "adobe.com")
	if err != nil {
		t.Fatal(err)
	}
	if gotFilter != "adobe.com" {
		t.Errorf("domain filter = %q", gotFilter)
	}
	if len(breaches) != 2 {
		t.Errorf("breaches = %d, want 2", len(breaches))
	}
}

// TestBreachByName tests single-record lookup including the miss case.
func TestBreachByName(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/breach/Adobe" {
			if _, err := w.Write([]byte(`{"Name": "Adobe", "Title": "Adobe", "PwnCount": 152445165}`)); err != nil {
				t.Error(err)
			}
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := NewClient("", WithBaseURL(server.URL), WithRequestInterval(0))

	breach, err := client.BreachByName(context.Background(), "Adobe")
	if err != nil {
		t.Fatal(err)
	}
	if breach == nil || breach.PwnCount != 152445165 {
		t.Errorf("breach = %+v", breach)
	}

	missing, err := client.BreachByName(context.Background(), "NoSuchBreach")
	if err != nil {
		t.Fatalf("miss must not be an error: %v", err)
	}
	if missing != nil {
		t.Errorf("missing = %+v, want nil", missing)
	}
}
