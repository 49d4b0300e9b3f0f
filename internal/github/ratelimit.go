package github

import (
	"fmt"
	"sync"
	"time"
)

// Status is the most recent rate limit observation: remaining quota, total
// quota, and the instant the window resets. Remaining is only ever set from
// the two authoritative channels (response headers, the /rate_limit poll),
// never guessed.
type Status struct {
	Remaining int
	Limit     int
	Reset     time.Time
	Observed  time.Time
}

// Gate tracks remote quota state and answers whether the API is currently
// unavailable due to quota exhaustion, and when it recovers.
//
// The gate has two states: Open (requests allowed) and Limited (requests
// refused until the reset instant). It transitions to Limited when an
// observation reports zero remaining requests and back to Open once the
// reset instant passes, checked lazily on every IsLimited call and on a
// one-second tick while a session is running.
type Gate struct {
	mu      sync.Mutex
	limited bool
	status  Status
}

// NewGate creates a Gate in the Open state with no observations.
func NewGate() *Gate {
	return &Gate{}
}

// Observe records the latest quota observation. The most recent observation
// always wins, regardless of which channel it came from.
func (g *Gate) Observe(remaining, limit int, reset time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.status = Status{
		Remaining: remaining,
		Limit:     limit,
		Reset:     reset,
		Observed:  time.Now(),
	}
	g.limited = remaining == 0
}

// IsLimited reports whether the gate refuses requests at the given instant.
// A Limited gate flips back to Open once now reaches the reset instant.
func (g *Gate) IsLimited(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.limited && !now.Before(g.status.Reset) {
		g.limited = false
	}
	return g.limited
}

// Status returns the latest observation. The zero Status means nothing has
// been observed yet.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Countdown returns the remaining wait until the reset instant, formatted
// for display. It returns "0:00" once the reset instant has passed.
func (g *Gate) Countdown(now time.Time) string {
	g.mu.Lock()
	reset := g.status.Reset
	g.mu.Unlock()
	return FormatCountdown(reset.Sub(now))
}

// FormatCountdown renders a duration as H:MM:SS when it is an hour or more,
// and M:SS otherwise. Negative durations render as "0:00".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
