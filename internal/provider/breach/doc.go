// Package breach implements the breach database provider client.
//
// Two upstream hosts are involved: the breach catalogue API, which
// requires an API key for account and domain lookups, and the pwned
// passwords range API, which is keyless. Password checks use the
// k-anonymity model: only the first five hex characters of the SHA-1
// (or NTLM) digest ever leave the process, and the plaintext is never
// logged or included in any error.
//
// The catalogue API returns 404 for accounts and domains with no known
// breaches. That is the common case, not a failure, so 404 decodes to
// an empty result.
package breach
