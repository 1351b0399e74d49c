package query

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/infrastructure/cache"
)

func TestAfterWriteInvalidatesCollection(t *testing.T) {
	cacheStore := cache.NewStore(nil)
	inv := NewInvalidator(cacheStore, nil, nil)

	regQuery := Query{Collection: "registrations"}
	courseQuery := Query{Collection: "courses"}
	cacheStore.Set(regQuery.Key(), &Result{}, DefaultTTL)
	cacheStore.Set(DocumentKey("registrations", "r-1"), &ports.Document{ID: "r-1"}, DefaultTTL)
	cacheStore.Set(courseQuery.Key(), &Result{}, DefaultTTL)
	cacheStore.Set(DocumentKey("courses", "c-1"), &ports.Document{ID: "c-1"}, DefaultTTL)

	inv.AfterWrite("registrations")

	_, ok := cacheStore.Get(regQuery.Key())
	assert.False(t, ok, "registration list queries must be invalidated")
	_, ok = cacheStore.Get(DocumentKey("registrations", "r-1"))
	assert.False(t, ok, "registration document reads must be invalidated")

	_, ok = cacheStore.Get(courseQuery.Key())
	assert.True(t, ok, "other collections must keep their entries")
	_, ok = cacheStore.Get(DocumentKey("courses", "c-1"))
	assert.True(t, ok)
}

func TestAfterWriteWithIDsKeepsOtherDocuments(t *testing.T) {
	cacheStore := cache.NewStore(nil)
	inv := NewInvalidator(cacheStore, nil, nil)

	listKey := Query{Collection: "registrations"}.Key()
	cacheStore.Set(listKey, &Result{}, DefaultTTL)
	cacheStore.Set(DocumentKey("registrations", "r-1"), &ports.Document{ID: "r-1"}, DefaultTTL)
	cacheStore.Set(DocumentKey("registrations", "r-2"), &ports.Document{ID: "r-2"}, DefaultTTL)

	inv.AfterWrite("registrations", "r-1")

	_, ok := cacheStore.Get(DocumentKey("registrations", "r-1"))
	assert.False(t, ok, "written document must be invalidated")
	_, ok = cacheStore.Get(listKey)
	assert.False(t, ok, "list queries over the collection must be invalidated")
	_, ok = cacheStore.Get(DocumentKey("registrations", "r-2"))
	assert.True(t, ok, "untouched documents keep their entries")
}

func TestAfterWriteNeverPanicsToCaller(t *testing.T) {
	// A nil cache makes DeleteMatching panic; AfterWrite must swallow it so a
	// committed write never turns into an error.
	inv := NewInvalidator(nil, nil, nil)

	assert.NotPanics(t, func() {
		inv.AfterWrite("registrations", "r-1")
	})
}

// TestWriteThenReadSeesNewData walks the full cycle: a cached pending list, a
// new registration, synchronous invalidation, then a re-read returning the
// grown list from the store.
func TestWriteThenReadSeesNewData(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations",
		regDoc("r-1", "pending"), regDoc("r-2", "pending"), regDoc("r-3", "pending"))
	cacheStore := cache.NewStore(nil)
	exec := NewExecutor(store, cacheStore, nil, nil)
	inv := NewInvalidator(cacheStore, nil, nil)

	q := Query{
		Collection: "registrations",
		Filters:    []ports.Filter{{Field: "status", Op: ports.OpEqual, Value: "pending"}},
	}

	first, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, first.Documents, 3)

	// Write path: commit to the store, then invalidate before responding.
	require.NoError(t, store.Put(context.Background(), "registrations", regDoc("r-4", "pending")))
	inv.AfterWrite("registrations", "r-4")

	second, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, second.Documents, 4, "read after write must see the new registration")
	assert.Equal(t, int32(2), atomic.LoadInt32(&store.findCalls), "invalidation must force a store round-trip")
}

func TestInvalidationCountsReported(t *testing.T) {
	cacheStore := cache.NewStore(nil)
	metrics := &captureMetrics{}
	inv := NewInvalidator(cacheStore, metrics, nil)

	cacheStore.Set(Query{Collection: "posts"}.Key(), &Result{}, DefaultTTL)
	cacheStore.Set(DocumentKey("posts", "p-1"), &ports.Document{ID: "p-1"}, DefaultTTL)

	inv.InvalidateCollection("posts")

	assert.Equal(t, int32(2), atomic.LoadInt32(&metrics.invalidated))
}

type captureMetrics struct {
	hits, misses, invalidated int32
}

func (m *captureMetrics) CacheHit(string)  { atomic.AddInt32(&m.hits, 1) }
func (m *captureMetrics) CacheMiss(string) { atomic.AddInt32(&m.misses, 1) }
func (m *captureMetrics) Invalidated(_ string, n int) {
	atomic.AddInt32(&m.invalidated, int32(n))
}
func (m *captureMetrics) QueryDuration(string, time.Duration, error) {}
