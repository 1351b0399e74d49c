package auth

import (
	"sync"
	"time"
)

// SlidingWindowLimiter limits requests per key to a count within a rolling
// window. It backs the public form endpoints, where the key is the caller IP.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
	lastSweep  time.Time
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests per
// window per key.
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		lastSweep:  time.Now(),
	}
}

// Allow records a request for the key and reports whether it is within the
// limit.
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.maybeSweep(now)

	windowStart := now.Add(-l.windowSize)
	kept := l.windows[key][:0]
	for _, t := range l.windows[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return false
	}
	l.windows[key] = append(kept, now)
	return true
}

// Reset clears the window for a key.
func (l *SlidingWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// maybeSweep drops keys whose whole window has expired. Runs at most once per
// window so hot paths do not pay for idle keys.
func (l *SlidingWindowLimiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.windowSize {
		return
	}
	l.lastSweep = now
	windowStart := now.Add(-l.windowSize)
	for key, times := range l.windows {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(l.windows, key)
		}
	}
}
