package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreGetSet(t *testing.T) {
	t.Run("Should return stored value while fresh", func(t *testing.T) {
		s := NewStore(nil)
		s.Set("k1", "v1", time.Minute)

		v, ok := s.Get("k1")
		assert.True(t, ok)
		assert.Equal(t, "v1", v)
	})

	t.Run("Should miss on absent key", func(t *testing.T) {
		s := NewStore(nil)

		_, ok := s.Get("absent")
		assert.False(t, ok)
	})

	t.Run("Should replace existing entry unconditionally", func(t *testing.T) {
		s := NewStore(nil)
		s.Set("k1", "old", time.Minute)
		s.Set("k1", "new", time.Minute)

		v, ok := s.Get("k1")
		assert.True(t, ok)
		assert.Equal(t, "new", v)
	})

	t.Run("Should expire entries after their TTL", func(t *testing.T) {
		s := NewStore(nil)
		s.Set("k1", "v1", 10*time.Millisecond)

		time.Sleep(20 * time.Millisecond)

		_, ok := s.Get("k1")
		assert.False(t, ok)
		assert.Equal(t, 0, s.Len(), "stale entry should be evicted on touch")
	})
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(nil)
	s.Set("k1", "v1", time.Minute)
	s.Delete("k1")

	_, ok := s.Get("k1")
	assert.False(t, ok)
}

func TestStoreDeleteMatching(t *testing.T) {
	s := NewStore(nil)
	s.Set("q:registrations|f:", 1, time.Minute)
	s.Set("q:registrations|f:status", 2, time.Minute)
	s.Set("q:courses|f:", 3, time.Minute)

	removed := s.DeleteMatching(func(key string) bool {
		return strings.HasPrefix(key, "q:registrations|")
	})

	assert.Equal(t, 2, removed)
	_, ok := s.Get("q:courses|f:")
	assert.True(t, ok, "unrelated keys must survive")
}

func TestStoreSweepExpired(t *testing.T) {
	s := NewStore(nil)
	s.Set("old", 1, time.Hour)
	s.Set("stale", 2, time.Nanosecond)
	s.Set("fresh", 3, time.Hour)

	time.Sleep(5 * time.Millisecond)

	// maxAge beyond every entry's age: only the logically stale one goes.
	removed := s.SweepExpired(time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, s.Len())

	// maxAge of zero removes everything regardless of TTL.
	removed = s.SweepExpired(0)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, s.Len())
}

func TestStoreStats(t *testing.T) {
	s := NewStore(nil)
	s.Set("k1", "v1", time.Minute)

	s.Get("k1")
	s.Get("k1")
	s.Get("absent")

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Items)
	assert.InDelta(t, 0.666, stats.HitRate, 0.01)
}
