// Package ratelimit implements per-requester sliding-window admission
// control. Unlike a token bucket, the window holds the exact timestamps of
// admitted requests, so at most limit requests are admitted in any trailing
// period.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks one window of admitted timestamps per requester.
type Limiter struct {
	limit  int
	period time.Duration

	mu      sync.Mutex
	windows map[int64][]time.Time
}

// New returns a limiter admitting at most limit requests per requester in
// any trailing period.
func New(limit int, period time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	return &Limiter{
		limit:   limit,
		period:  period,
		windows: make(map[int64][]time.Time),
	}
}

// Admit reports whether the requester may proceed. A denied call is not
// recorded and does not extend the window.
func (l *Limiter) Admit(requesterID int64) bool {
	return l.admitAt(requesterID, time.Now())
}

func (l *Limiter) admitAt(requesterID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.windows[requesterID]
	cutoff := now.Add(-l.period)

	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.windows[requesterID] = kept
		return false
	}

	l.windows[requesterID] = append(kept, now)
	return true
}
