package provider

import "context"

// Gate admits outbound calls against a per-provider quota. The concrete
// implementation lives in internal/ratelimit; clients depend on this
// interface so tests can substitute a pass-through gate.
type Gate interface {
	// Admit blocks until a call to the given provider fits its quota.
	Admit(ctx context.Context, providerID string) error
}

// OpenGate is a Gate that admits everything immediately. Used when a
// client is constructed without a rate limiter.
type OpenGate struct{}

// Admit implements Gate.
func (OpenGate) Admit(_ context.Context, _ string) error { return nil }
