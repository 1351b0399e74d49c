// Package cache provides the in-process query-result cache.
// The cache is a pure optimization layer over the durable document store: it
// holds no authoritative state and is discarded entirely on process restart.
package cache

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entries expire lazily on read. To bound memory between reads, Set also runs
// a full sweep on roughly one in sweepChance calls.
const (
	defaultSweepChance = 64
	defaultMaxAge      = 10 * time.Minute
)

// Store is a thread-safe in-memory key-value cache with per-entry TTL.
// It is process-wide state with process lifetime: constructed once at startup
// and injected into the components that need it.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	sweepChance int
	maxAge      time.Duration

	// Statistics
	hits      int64
	misses    int64
	evictions int64

	logger *zap.Logger
}

type entry struct {
	value     interface{}
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) fresh(now time.Time) bool {
	return now.Sub(e.createdAt) < e.ttl
}

// NewStore creates an empty cache store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries:     make(map[string]entry),
		sweepChance: defaultSweepChance,
		maxAge:      defaultMaxAge,
		logger:      logger,
	}
}

// Get returns the cached value for key if a fresh entry exists.
// Stale entries are evicted on touch.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}
	if !e.fresh(time.Now()) {
		delete(s.entries, key)
		s.evictions++
		s.misses++
		return nil, false
	}
	s.hits++
	return e.value, true
}

// Set stores value under key, unconditionally replacing any existing entry.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		createdAt: time.Now(),
		ttl:       ttl,
	}

	if rand.Intn(s.sweepChance) == 0 {
		s.sweepLocked(s.maxAge)
	}
}

// Delete removes the entry for key, if any.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// DeleteMatching removes every entry whose key satisfies pred and returns the
// number removed. Used for collection-scoped invalidation.
func (s *Store) DeleteMatching(pred func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if pred(key) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// SweepExpired removes entries older than maxAge regardless of their logical
// TTL and returns the number removed.
func (s *Store) SweepExpired(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(maxAge)
}

// sweepLocked must be called with the mutex held.
func (s *Store) sweepLocked(maxAge time.Duration) int {
	now := time.Now()
	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.createdAt) >= maxAge || !e.fresh(now) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		s.evictions += int64(removed)
		s.logger.Debug("swept expired cache entries", zap.Int("count", removed))
	}
	return removed
}

// Len returns the number of entries currently held, fresh or stale.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats holds cache hit/miss counters.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Items     int     `json:"items"`
	HitRate   float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the cache statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	hitRate := float64(0)
	if total := s.hits + s.misses; total > 0 {
		hitRate = float64(s.hits) / float64(total)
	}
	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Items:     len(s.entries),
		HitRate:   hitRate,
	}
}
