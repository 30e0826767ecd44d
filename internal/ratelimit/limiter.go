package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Quota configuration errors.
var (
	// ErrZeroQuota is returned by Register when a quota ceiling is zero or
	// negative. A zero quota would make Admit wait forever, so it is
	// rejected before the limiter is constructed rather than at call time.
	ErrZeroQuota = errors.New("quota ceilings must be positive")

	// ErrUnknownProvider is returned by Admit for a provider that was
	// never registered.
	ErrUnknownProvider = errors.New("provider not registered with rate limiter")
)

// Quota describes the call budget for one provider.
type Quota struct {
	// CallsPerMinute is the sliding one-minute ceiling.
	CallsPerMinute int

	// CallsPerDay is the daily ceiling.
	CallsPerDay int

	// ResetLocation, when non-nil, pins the daily reset to midnight in
	// that timezone (vendor-documented fixed boundary). When nil the day
	// window rolls: an entry expires 24 hours after it was recorded.
	ResetLocation *time.Location

	// Grace is a small delay inserted after each admitted call to smooth
	// burst traffic. Zero disables it.
	Grace time.Duration
}

// Validate checks the quota ceilings.
func (q Quota) Validate() error {
	if q.CallsPerMinute <= 0 || q.CallsPerDay <= 0 {
		return fmt.Errorf("%w: minute=%d day=%d", ErrZeroQuota, q.CallsPerMinute, q.CallsPerDay)
	}
	return nil
}

// Limiter tracks call windows for any number of providers.
// The zero value is not usable; create with New.
type Limiter struct {
	// now and sleep abstract wall-clock access so tests can run without
	// real waiting. sleep must honor context cancellation.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	logger *slog.Logger

	// mu guards the providers map only. Each provider serializes its own
	// admissions with its own mutex so independent providers never block
	// each other.
	mu        sync.Mutex
	providers map[string]*window
}

// window holds the recorded call timestamps for one provider.
// Both slices are FIFO ordered: index 0 is always the oldest entry.
type window struct {
	mu     sync.Mutex
	quota  Quota
	minute []time.Time
	day    []time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock and sleeper. Intended for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// WithLogger sets a custom logger for wait announcements.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// New creates an empty Limiter. Providers are added with Register.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		now:       time.Now,
		sleep:     sleepContext,
		providers: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds a provider with its quota. Registering an existing
// provider replaces its quota but keeps its recorded history.
func (l *Limiter) Register(providerID string, quota Quota) error {
	if err := quota.Validate(); err != nil {
		return fmt.Errorf("provider %q: %w", providerID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.providers[providerID]; ok {
		w.mu.Lock()
		w.quota = quota
		w.mu.Unlock()
		return nil
	}
	l.providers[providerID] = &window{quota: quota}
	return nil
}

// Admit blocks until a call to the given provider fits inside both of
// its windows, then records the call. It returns an error only when the
// context is cancelled or the provider is unknown; quota pressure never
// produces an error, only waiting.
func (l *Limiter) Admit(ctx context.Context, providerID string) error {
	l.mu.Lock()
	w, ok := l.providers[providerID]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, providerID)
	}

	// Serialize the whole admission per provider, including any waiting.
	// Two concurrent callers must never both observe free capacity.
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		now := l.now()
		w.purge(now)

		// The minute check strictly precedes the day check so a burst
		// cannot violate the finer limit while waiting out the day limit.
		if len(w.minute) >= w.quota.CallsPerMinute {
			wait := w.minute[0].Add(time.Minute).Sub(now)
			l.logger.Debug("minute quota reached, waiting",
				"provider", providerID,
				"wait", wait,
			)
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if len(w.day) >= w.quota.CallsPerDay {
			wait := w.dayResetWait(now)
			l.logger.Warn("daily quota reached, waiting until reset",
				"provider", providerID,
				"wait", wait,
			)
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			if w.quota.ResetLocation != nil {
				// Fixed-boundary providers start a fresh day: both windows
				// are cleared at the vendor's reset instant.
				w.minute = w.minute[:0]
				w.day = w.day[:0]
			}
			continue
		}

		now = l.now()
		w.minute = append(w.minute, now)
		w.day = append(w.day, now)

		if w.quota.Grace > 0 {
			if err := l.sleep(ctx, w.quota.Grace); err != nil {
				return err
			}
		}
		return nil
	}
}

// Usage returns the current number of recorded calls in the minute and
// day windows after purging stale entries. Useful for stats endpoints
// and tests; it does not mutate quota decisions.
func (l *Limiter) Usage(providerID string) (minute, day int, err error) {
	l.mu.Lock()
	w, ok := l.providers[providerID]
	l.mu.Unlock()
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownProvider, providerID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.purge(l.now())
	return len(w.minute), len(w.day), nil
}

// purge drops entries that fell out of their window as of now.
// Entries are FIFO so only a leading prefix can ever be stale.
// An entry recorded exactly one window ago counts as expired, so a
// computed wait of w.minute[0]+60s-now always lands on a free slot.
func (w *window) purge(now time.Time) {
	minuteCutoff := now.Add(-time.Minute)
	w.minute = trimExpired(w.minute, minuteCutoff)

	if w.quota.ResetLocation != nil {
		// Fixed-boundary day window: everything before today's midnight
		// in the vendor timezone is a previous day. A call recorded at
		// the midnight instant itself belongs to the new day.
		w.day = trimBefore(w.day, startOfDay(now, w.quota.ResetLocation))
		return
	}
	w.day = trimExpired(w.day, now.Add(-24*time.Hour))
}

// dayResetWait computes how long a caller must wait for the day window
// to open. purge has already run, so the window is genuinely full.
func (w *window) dayResetWait(now time.Time) time.Duration {
	if w.quota.ResetLocation != nil {
		return nextMidnight(now, w.quota.ResetLocation).Sub(now)
	}
	return w.day[0].Add(24 * time.Hour).Sub(now)
}

// trimBefore removes leading entries strictly before cutoff.
func trimBefore(entries []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(entries) && entries[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return entries
	}
	return append(entries[:0], entries[i:]...)
}

// trimExpired removes leading entries at or before cutoff.
func trimExpired(entries []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return entries
	}
	return append(entries[:0], entries[i:]...)
}

// startOfDay returns midnight of now's calendar day in loc.
func startOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// nextMidnight returns the midnight after now in loc. Built from
// calendar components rather than adding 24h, so DST transitions in
// loc cannot shift the boundary.
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
