package query

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/infrastructure/cache"
)

// Metrics receives cache and query telemetry. Implementations must be safe
// for concurrent use.
type Metrics interface {
	CacheHit(collection string)
	CacheMiss(collection string)
	Invalidated(collection string, entries int)
	QueryDuration(collection string, d time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) CacheHit(string)                            {}
func (nopMetrics) CacheMiss(string)                           {}
func (nopMetrics) Invalidated(string, int)                    {}
func (nopMetrics) QueryDuration(string, time.Duration, error) {}

// Executor resolves queries against the cache first and the document store on
// a miss, coalescing concurrent identical queries into one store round-trip.
type Executor struct {
	store   ports.DocumentStore
	cache   *cache.Store
	group   singleflight.Group
	metrics Metrics
	logger  *zap.Logger
}

// NewExecutor creates a query executor. metrics may be nil.
func NewExecutor(store ports.DocumentStore, cacheStore *cache.Store, metrics Metrics, logger *zap.Logger) *Executor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		store:   store,
		cache:   cacheStore,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute runs the query, serving from cache when a fresh entry exists.
//
// Concurrent calls with the same key share one underlying fetch; a caller
// whose context is cancelled while waiting detaches without affecting the
// fetch or the other waiters. Database errors propagate unmodified and are
// never cached.
func (e *Executor) Execute(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := q.Key()
	if v, ok := e.cache.Get(key); ok {
		e.metrics.CacheHit(q.Collection)
		return v.(*Result), nil
	}
	e.metrics.CacheMiss(q.Collection)

	// The fetch runs on a context detached from the triggering caller so a
	// cancelled waiter cannot kill the fetch for everyone else.
	fetchCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (interface{}, error) {
		return e.fetch(fetchCtx, q, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

// fetch performs the store round-trip(s) and populates the cache.
func (e *Executor) fetch(ctx context.Context, q Query, key string) (*Result, error) {
	start := time.Now()

	spec := ports.FindSpec{
		Collection: q.Collection,
		Filters:    q.Filters,
		OrderBy:    q.OrderBy,
		Offset:     q.Offset,
		Fields:     q.Fields,
	}
	if q.Limit != nil {
		// Over-fetch by one to learn whether a further page exists.
		spec.Limit = *q.Limit + 1
	}

	var docs []ports.Document
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = e.store.Find(gctx, spec)
		return err
	})
	if q.WithCount {
		// The count runs concurrently with the page fetch to bound latency.
		g.Go(func() error {
			var err error
			total, err = e.store.Count(gctx, q.Collection, q.Filters)
			return err
		})
	}
	err := g.Wait()
	e.metrics.QueryDuration(q.Collection, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result := &Result{Documents: docs}
	if q.Limit != nil && len(docs) > *q.Limit {
		result.Documents = docs[:*q.Limit]
		result.HasMore = true
	}
	if q.WithCount {
		result.TotalCount = &total
	}

	e.cache.Set(key, result, q.EffectiveTTL())
	return result, nil
}

// GetDocument reads a single document, caching it under its document key.
func (e *Executor) GetDocument(ctx context.Context, collection, id string, ttl time.Duration) (*ports.Document, error) {
	if collection == "" || id == "" {
		return nil, ports.ErrDocumentNotFound
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	key := DocumentKey(collection, id)
	if v, ok := e.cache.Get(key); ok {
		e.metrics.CacheHit(collection)
		return v.(*ports.Document), nil
	}
	e.metrics.CacheMiss(collection)

	fetchCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (interface{}, error) {
		doc, err := e.store.Get(fetchCtx, collection, id)
		if err != nil {
			return nil, err
		}
		e.cache.Set(key, doc, ttl)
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ports.Document), nil
	}
}
