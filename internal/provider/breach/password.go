package breach

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // The range API is keyed on SHA-1 digests.
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider"
)

// HashType selects the digest family for a password hash check.
type HashType string

const (
	// HashSHA1 is the default digest family of the range API.
	HashSHA1 HashType = "sha1"

	// HashNTLM selects the NTLM range endpoint.
	HashNTLM HashType = "ntlm"
)

// hashPrefixLen is the number of leading hex characters sent to the
// range API. Only this prefix ever leaves the process.
const hashPrefixLen = 5

// PasswordResult reports how often a password appears in known dumps.
// It carries the digest suffix, never the plaintext.
type PasswordResult struct {
	// HashSuffix is the digest beyond the queried prefix.
	HashSuffix string

	// Count is the number of appearances in known dumps.
	Count int64

	// Pwned reports whether the password appeared at all.
	Pwned bool
}

// Risk maps the appearance count onto the password risk scale.
func (r *PasswordResult) Risk() model.BreachRisk {
	return model.PasswordRiskLevel(r.Count)
}

// CheckPassword checks a plaintext password against the range API
// using the k-anonymity model. The plaintext is hashed locally; only
// the first five hex characters of the SHA-1 digest are transmitted,
// and the plaintext never appears in logs or errors. addPadding asks
// the API to pad the response set so its size leaks nothing.
func (c *Client) CheckPassword(ctx context.Context, password string, addPadding bool) (*PasswordResult, error) {
	if password == "" {
		return nil, provider.ValidationError("password must not be empty")
	}

	sum := sha1.Sum([]byte(password)) //nolint:gosec // k-anonymity protocol digest
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return c.checkRange(ctx, HashSHA1, digest, addPadding)
}

// CheckPasswordHash checks a precomputed digest against the range API.
// The digest must be a full SHA-1 or NTLM hex string; case does not
// matter.
func (c *Client) CheckPasswordHash(ctx context.Context, passwordHash string, hashType HashType) (*PasswordResult, error) {
	switch hashType {
	case HashSHA1, HashNTLM:
	default:
		return nil, provider.ValidationError(fmt.Sprintf("unsupported hash type %q", hashType))
	}
	if len(passwordHash) <= hashPrefixLen {
		return nil, provider.ValidationError("password hash too short")
	}
	return c.checkRange(ctx, hashType, strings.ToUpper(passwordHash), addPaddingDefault)
}

// addPaddingDefault pads hash-based checks too; the cost is a larger
// response body, the benefit is a uniform request profile.
const addPaddingDefault = true

// checkRange queries the range endpoint for the digest's prefix and
// scans the suffix list for a match.
func (c *Client) checkRange(ctx context.Context, hashType HashType, digest string, addPadding bool) (*PasswordResult, error) {
	prefix := digest[:hashPrefixLen]
	suffix := digest[hashPrefixLen:]

	rawURL := c.passwordsURL
	if hashType == HashNTLM {
		rawURL += "/ntlm"
	}
	rawURL += "/range/" + prefix
	if addPadding {
		rawURL += "?Add-Padding=true"
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	// The range API serves plain text, one "SUFFIX:COUNT" per line.
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.StatusError(resp, "password range request failed")
	}

	count, err := scanRange(resp.Body, suffix)
	if err != nil {
		return nil, provider.DecodeError(err)
	}

	c.logger.Debug("password range check completed", "prefix", prefix, "pwned", count > 0)

	return &PasswordResult{
		HashSuffix: suffix,
		Count:      count,
		Pwned:      count > 0,
	}, nil
}

// scanRange reads "SUFFIX:COUNT" lines and returns the count for the
// given suffix, or zero when absent. Padding entries carry a count of
// zero and never match as pwned.
func scanRange(body io.Reader, wantSuffix string) (int64, error) {
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		suffix, countText, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !strings.EqualFold(suffix, wantSuffix) {
			continue
		}
		count, err := strconv.ParseInt(strings.TrimSpace(countText), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse appearance count %q: %w", countText, err)
		}
		return count, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read range response: %w", err)
	}
	return 0, nil
}
