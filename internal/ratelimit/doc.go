// Package ratelimit implements per-provider quota tracking with two
// sliding windows: a per-minute window and a per-day window.
//
// Each provider registers a Quota and every outbound call goes through
// Admit, which blocks until the call fits inside both windows. The
// minute window is always checked before the day window so that a burst
// waiting out a daily quota cannot slip past the finer-grained limit.
//
// Day-window semantics differ per provider by design: providers whose
// vendor documents a fixed reset boundary register a reset timezone and
// their day window clears at that timezone's midnight; all other
// providers use a rolling 24-hour window measured from each recorded
// call. This asymmetry mirrors the documented vendor behavior and must
// not be generalized away.
//
// Admission decisions are serialized per provider; windows of different
// providers are independent and proceed fully in parallel.
package ratelimit
