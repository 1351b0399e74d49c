// Package query implements the caching query layer between HTTP handlers and
// the document store: deterministic cache keys, request coalescing, and
// post-write invalidation.
package query

import (
	"time"

	"teamsqa-backend/application/ports"
	apperrors "teamsqa-backend/pkg/errors"
)

// Default TTLs per query category. List views use DefaultTTL; duplicate
// detection and aggregate counts override it per call site. Tune replaces
// them from configuration at startup and on config reload.
var (
	DuplicateCheckTTL = 10 * time.Second
	DefaultTTL        = 30 * time.Second
	CountTTL          = 120 * time.Second
)

// Tune overrides the package TTL defaults. Zero or negative values leave the
// current default in place. Reload races with in-flight reads are harmless:
// a query caches under either the old or the new TTL.
func Tune(defaultTTL, countTTL, duplicateTTL time.Duration) {
	if defaultTTL > 0 {
		DefaultTTL = defaultTTL
	}
	if countTTL > 0 {
		CountTTL = countTTL
	}
	if duplicateTTL > 0 {
		DuplicateCheckTTL = duplicateTTL
	}
}

// Query describes a filtered, ordered, paginated read against one collection.
//
// Filter order is significant: two queries with the same filters in a
// different order produce different cache keys. Callers must supply filters in
// a stable order.
type Query struct {
	Collection string
	Filters    []ports.Filter
	OrderBy    *ports.Order
	Limit      *int // nil means no limit; a non-nil value must be positive
	Offset     int
	Fields     []string
	TTL        time.Duration // zero means DefaultTTL
	WithCount  bool          // also run a count query with the same filters
}

// Validate rejects malformed queries before any I/O.
func (q Query) Validate() error {
	if q.Collection == "" {
		return apperrors.NewValidation("collection is required")
	}
	if q.Limit != nil && *q.Limit <= 0 {
		return apperrors.NewValidation("limit must be positive")
	}
	if q.Offset < 0 {
		return apperrors.NewValidation("offset cannot be negative")
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return apperrors.NewValidation("filter field is required")
		}
		if !f.Op.Valid() {
			return apperrors.NewValidation("unknown filter operator: " + string(f.Op))
		}
	}
	return nil
}

// EffectiveTTL returns the TTL to cache this query's result under.
func (q Query) EffectiveTTL() time.Duration {
	if q.TTL > 0 {
		return q.TTL
	}
	return DefaultTTL
}

// Result is the materialized outcome of a query.
//
// Results are shared between cache hits and coalesced callers; treat Documents
// as immutable.
type Result struct {
	Documents  []ports.Document `json:"documents"`
	TotalCount *int             `json:"total_count,omitempty"`
	HasMore    bool             `json:"has_more"`
}
