package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/infrastructure/cache"
)

// fakeStore is an in-memory DocumentStore that counts calls and can be gated
// to hold fetches open while concurrent callers pile up.
type fakeStore struct {
	mu         sync.Mutex
	docs       map[string][]ports.Document // collection -> documents, in order
	findCalls  int32
	countCalls int32
	getCalls   int32
	findErr    error
	gate       chan struct{} // when non-nil, Find blocks until the gate closes
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string][]ports.Document{}}
}

func (f *fakeStore) seed(collection string, docs ...ports.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[collection] = docs
}

func (f *fakeStore) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	atomic.AddInt32(&f.getCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs[collection] {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, ports.ErrDocumentNotFound
}

func (f *fakeStore) Put(ctx context.Context, collection string, doc ports.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.docs[collection] {
		if d.ID == doc.ID {
			f.docs[collection][i] = doc
			return nil
		}
	}
	f.docs[collection] = append(f.docs[collection], doc)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.docs[collection]
	for i, d := range docs {
		if d.ID == id {
			f.docs[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) Find(ctx context.Context, spec ports.FindSpec) ([]ports.Document, error) {
	atomic.AddInt32(&f.findCalls, 1)
	if f.gate != nil {
		<-f.gate
	}
	if f.findErr != nil {
		return nil, f.findErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]ports.Document, 0)
	for _, d := range f.docs[spec.Collection] {
		if matchesFilters(d, spec.Filters) {
			matched = append(matched, d)
		}
	}
	if spec.Offset > 0 {
		if spec.Offset >= len(matched) {
			return []ports.Document{}, nil
		}
		matched = matched[spec.Offset:]
	}
	if spec.Limit > 0 && len(matched) > spec.Limit {
		matched = matched[:spec.Limit]
	}
	return matched, nil
}

func (f *fakeStore) Count(ctx context.Context, collection string, filters []ports.Filter) (int, error) {
	atomic.AddInt32(&f.countCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.docs[collection] {
		if matchesFilters(d, filters) {
			n++
		}
	}
	return n, nil
}

func matchesFilters(d ports.Document, filters []ports.Filter) bool {
	for _, flt := range filters {
		if flt.Op == ports.OpEqual && d.Fields[flt.Field] != flt.Value {
			return false
		}
	}
	return true
}

func regDoc(id, status string) ports.Document {
	return ports.Document{ID: id, Fields: map[string]interface{}{
		"course_id": "c-1",
		"status":    status,
	}}
}

func newTestExecutor(store ports.DocumentStore) (*Executor, *cache.Store) {
	cacheStore := cache.NewStore(nil)
	return NewExecutor(store, cacheStore, nil, nil), cacheStore
}

func TestExecuteDistinctQueriesNeverShareCacheEntries(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations", ports.Document{ID: "r-1", Fields: map[string]interface{}{
		"email": "a@x.io,course_id:==:c-2",
	}})
	exec, _ := newTestExecutor(store)

	// A filter value crafted to spell out a second filter in the key's own
	// syntax. Caching its one-document result must not leak it to the query it
	// tries to impersonate.
	smuggled := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "email", Op: ports.OpEqual, Value: "a@x.io,course_id:==:c-2"},
		},
	}
	res, err := exec.Execute(context.Background(), smuggled)
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)

	twoFilters := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "email", Op: ports.OpEqual, Value: "a@x.io"},
			{Field: "course_id", Op: ports.OpEqual, Value: "c-2"},
		},
	}
	res, err = exec.Execute(context.Background(), twoFilters)
	require.NoError(t, err)
	assert.Empty(t, res.Documents, "second query must hit the store, not the first query's entry")
	assert.Equal(t, int32(2), atomic.LoadInt32(&store.findCalls))
}

func TestExecuteCacheHitMatchesMiss(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations", regDoc("r-1", "pending"), regDoc("r-2", "pending"))
	exec, _ := newTestExecutor(store)

	q := Query{
		Collection: "registrations",
		Filters:    []ports.Filter{{Field: "status", Op: ports.OpEqual, Value: "pending"}},
		WithCount:  true,
	}

	miss, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	hit, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, miss, hit, "hit and miss must return equal results")
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.findCalls), "second call must be served from cache")
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.countCalls))
	require.NotNil(t, hit.TotalCount)
	assert.Equal(t, 2, *hit.TotalCount)
}

func TestExecuteTTLExpiryRefetches(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations", regDoc("r-1", "pending"))
	exec, _ := newTestExecutor(store)

	q := Query{Collection: "registrations", TTL: 15 * time.Millisecond}

	_, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	_, err = exec.Execute(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&store.findCalls), "expired entry must hit the store again")
}

func TestExecuteCoalescesConcurrentQueries(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations", regDoc("r-1", "pending"))
	store.gate = make(chan struct{})
	exec, _ := newTestExecutor(store)

	q := Query{Collection: "registrations"}

	const callers = 8
	results := make([]*Result, callers)
	errs := make([]error, callers)
	var started, done sync.WaitGroup
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i], errs[i] = exec.Execute(context.Background(), q)
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond) // let every caller reach the flight
	close(store.gate)
	done.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i], "coalesced callers share one result")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.findCalls), "N concurrent identical queries must make one store call")
}

func TestExecuteCancelledWaiterDetaches(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations", regDoc("r-1", "pending"))
	store.gate = make(chan struct{})
	exec, cacheStore := newTestExecutor(store)

	q := Query{Collection: "registrations"}
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := exec.Execute(ctx, q)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)

	// The fetch itself keeps running and still populates the cache.
	close(store.gate)
	assert.Eventually(t, func() bool {
		_, ok := cacheStore.Get(q.Key())
		return ok
	}, time.Second, 5*time.Millisecond, "fetch must survive waiter cancellation")
}

func TestExecuteFailedFetchNotCached(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("provisioned throughput exceeded")
	exec, cacheStore := newTestExecutor(store)

	q := Query{Collection: "registrations"}

	_, err := exec.Execute(context.Background(), q)
	require.Error(t, err)
	assert.ErrorContains(t, err, "provisioned throughput exceeded")
	_, ok := cacheStore.Get(q.Key())
	assert.False(t, ok, "failed fetch must not poison the cache")

	// Once the store recovers the next call goes through.
	store.findErr = nil
	store.seed("registrations", regDoc("r-1", "pending"))
	res, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, res.Documents, 1)
}

func TestExecuteLimitValidation(t *testing.T) {
	store := newFakeStore()
	exec, _ := newTestExecutor(store)

	for _, limit := range []int{0, -3} {
		q := Query{Collection: "registrations", Limit: intPtr(limit)}
		_, err := exec.Execute(context.Background(), q)
		require.Error(t, err, "limit %d must be rejected", limit)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&store.findCalls), "invalid queries must not reach the store")
}

func TestExecuteHasMoreAndPagination(t *testing.T) {
	store := newFakeStore()
	store.seed("registrations",
		regDoc("r-1", "pending"), regDoc("r-2", "pending"), regDoc("r-3", "pending"))
	exec, _ := newTestExecutor(store)

	t.Run("more pages remain", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), Query{Collection: "registrations", Limit: intPtr(2)})
		require.NoError(t, err)
		assert.Len(t, res.Documents, 2)
		assert.True(t, res.HasMore)
	})

	t.Run("last page", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), Query{Collection: "registrations", Limit: intPtr(2), Offset: 2})
		require.NoError(t, err)
		assert.Len(t, res.Documents, 1)
		assert.False(t, res.HasMore)
	})

	t.Run("offset beyond total", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), Query{Collection: "registrations", Limit: intPtr(2), Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, res.Documents)
		assert.False(t, res.HasMore)
	})
}

func TestGetDocument(t *testing.T) {
	store := newFakeStore()
	store.seed("courses", ports.Document{ID: "c-1", Fields: map[string]interface{}{"title": "Go"}})
	exec, _ := newTestExecutor(store)

	doc, err := exec.GetDocument(context.Background(), "courses", "c-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "Go", doc.Fields["title"])

	again, err := exec.GetDocument(context.Background(), "courses", "c-1", 0)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.getCalls))

	_, err = exec.GetDocument(context.Background(), "courses", "missing", 0)
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}
