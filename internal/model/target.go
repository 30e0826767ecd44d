package model

import (
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// TargetKind identifies the type of entity under investigation.
// The kind determines which query templates, provider endpoints, and
// scoring rules apply to a target.
type TargetKind string

const (
	// TargetIP is an IPv4 or IPv6 address.
	TargetIP TargetKind = "ip"

	// TargetDomain is a registrable DNS domain (e.g., "example.com").
	TargetDomain TargetKind = "domain"

	// TargetURL is a full http(s) URL.
	TargetURL TargetKind = "url"

	// TargetEmail is an email address.
	TargetEmail TargetKind = "email"

	// TargetHash is an MD5, SHA-1, or SHA-256 file hash in hex.
	TargetHash TargetKind = "hash"

	// TargetPhone is a phone number in loose international format.
	TargetPhone TargetKind = "phone"

	// TargetAlias is a username or handle, optionally prefixed with '@'.
	TargetAlias TargetKind = "alias"
)

// Target validation errors.
var (
	// ErrUnknownTargetKind is returned when the kind string does not match
	// any supported target kind.
	ErrUnknownTargetKind = errors.New("unknown target kind")

	// ErrInvalidTarget is returned when a target value does not conform to
	// its declared kind. The wrapped message names the failing check.
	ErrInvalidTarget = errors.New("invalid target")
)

// hashPattern matches MD5 (32), SHA-1 (40), and SHA-256 (64) hex digests.
var hashPattern = regexp.MustCompile(`^(?i:[0-9a-f]{32}|[0-9a-f]{40}|[0-9a-f]{64})$`)

// phonePattern accepts digits with optional leading '+' and common
// separators. Providers apply stricter validation server-side.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)

// aliasPattern rejects whitespace and quote characters that would break
// rendered search queries. The leading '@' marker is allowed.
var aliasPattern = regexp.MustCompile(`^@?[^\s"']{1,64}$`)

// ParseTargetKind converts a string into a TargetKind.
// It returns ErrUnknownTargetKind for unrecognized values.
func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(strings.ToLower(strings.TrimSpace(s))) {
	case TargetIP:
		return TargetIP, nil
	case TargetDomain:
		return TargetDomain, nil
	case TargetURL:
		return TargetURL, nil
	case TargetEmail:
		return TargetEmail, nil
	case TargetHash:
		return TargetHash, nil
	case TargetPhone:
		return TargetPhone, nil
	case TargetAlias:
		return TargetAlias, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTargetKind, s)
	}
}

// Target is a validated investigation target.
// Construct with NewTarget so that Value always conforms to Kind.
type Target struct {
	// Kind is the target type.
	Kind TargetKind `json:"kind"`

	// Value is the raw target string as supplied by the caller.
	Value string `json:"value"`
}

// NewTarget validates value against kind and returns the resulting Target.
// Validation happens before any network call; a failure here is fatal for
// this target only and must not abort sibling targets in bulk requests.
func NewTarget(kind TargetKind, value string) (Target, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Target{}, fmt.Errorf("%w: empty value", ErrInvalidTarget)
	}

	switch kind {
	case TargetIP:
		if net.ParseIP(value) == nil {
			return Target{}, fmt.Errorf("%w: %q is not an IP address", ErrInvalidTarget, value)
		}
	case TargetDomain:
		if err := validateDomain(value); err != nil {
			return Target{}, err
		}
	case TargetURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Target{}, fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidTarget, value)
		}
	case TargetEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return Target{}, fmt.Errorf("%w: %q is not an email address", ErrInvalidTarget, value)
		}
	case TargetHash:
		if !hashPattern.MatchString(value) {
			return Target{}, fmt.Errorf("%w: %q is not an MD5/SHA-1/SHA-256 hex digest", ErrInvalidTarget, value)
		}
	case TargetPhone:
		if !phonePattern.MatchString(value) {
			return Target{}, fmt.Errorf("%w: %q is not a phone number", ErrInvalidTarget, value)
		}
	case TargetAlias:
		if !aliasPattern.MatchString(value) {
			return Target{}, fmt.Errorf("%w: %q is not a usable alias", ErrInvalidTarget, value)
		}
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTargetKind, kind)
	}

	return Target{Kind: kind, Value: value}, nil
}

// validateDomain checks that the value is a registrable domain name.
// The public suffix list catches values like "com" or "co.uk" that parse
// as hostnames but cannot identify a single registrant.
func validateDomain(value string) error {
	host := strings.ToLower(strings.TrimSuffix(value, "."))
	if strings.ContainsAny(host, "/:@ ") || !strings.Contains(host, ".") {
		return fmt.Errorf("%w: %q is not a domain name", ErrInvalidTarget, value)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return fmt.Errorf("%w: %q has no registrable domain: %v", ErrInvalidTarget, value, err)
	}
	return nil
}

// CleanAlias returns the alias without a leading '@' marker.
// For non-alias targets it returns Value unchanged.
func (t Target) CleanAlias() string {
	if t.Kind != TargetAlias {
		return t.Value
	}
	return strings.TrimPrefix(t.Value, "@")
}

// String returns "kind:value" for logging.
func (t Target) String() string {
	return string(t.Kind) + ":" + t.Value
}
