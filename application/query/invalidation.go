package query

import (
	"strings"

	"go.uber.org/zap"

	"teamsqa-backend/infrastructure/cache"
)

// Invalidator removes cache entries made stale by writes.
//
// Write paths must call AfterWrite synchronously after the store has
// acknowledged the write and before responding to the caller, so any read
// that starts after the write returns cannot observe pre-write data.
type Invalidator struct {
	cache   *cache.Store
	metrics Metrics
	logger  *zap.Logger
}

// NewInvalidator creates an invalidator. metrics may be nil.
func NewInvalidator(cacheStore *cache.Store, metrics Metrics, logger *zap.Logger) *Invalidator {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{
		cache:   cacheStore,
		metrics: metrics,
		logger:  logger,
	}
}

// AfterWrite is the hook write paths call once the underlying write has
// committed. It never fails: invalidation is best-effort with respect to the
// write, and a panic here must not turn a durable write into an error.
func (i *Invalidator) AfterWrite(collection string, ids ...string) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("cache invalidation panicked",
				zap.String("collection", collection),
				zap.Any("panic", r),
			)
		}
	}()

	if len(ids) == 0 {
		i.InvalidateCollection(collection)
		return
	}
	for _, id := range ids {
		i.InvalidateDocument(collection, id)
	}
}

// InvalidateCollection removes every cache entry built for the collection,
// list queries and single-document reads alike.
func (i *Invalidator) InvalidateCollection(collection string) {
	listPrefix, docPrefix := collectionKeyPrefixes(collection)
	removed := i.cache.DeleteMatching(func(key string) bool {
		return strings.HasPrefix(key, listPrefix) || strings.HasPrefix(key, docPrefix)
	})
	i.metrics.Invalidated(collection, removed)
	if removed > 0 {
		i.logger.Debug("invalidated cache entries",
			zap.String("collection", collection),
			zap.Int("count", removed),
		)
	}
}

// InvalidateDocument removes the document's own cache entry and every list
// query over its collection; a changed document can move in or out of any
// filtered list.
func (i *Invalidator) InvalidateDocument(collection, id string) {
	listPrefix, _ := collectionKeyPrefixes(collection)
	docKey := DocumentKey(collection, id)
	removed := i.cache.DeleteMatching(func(key string) bool {
		return key == docKey || strings.HasPrefix(key, listPrefix)
	})
	i.metrics.Invalidated(collection, removed)
}
