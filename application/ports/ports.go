// Package ports defines the interfaces the application layer depends on.
// Infrastructure packages provide the concrete implementations.
package ports

import (
	"context"
	"errors"

	"teamsqa-backend/domain/events"
)

// ErrDocumentNotFound is returned by DocumentStore.Get for a missing document.
var ErrDocumentNotFound = errors.New("document not found")

// Operator is a filter comparison operator supported by the document store.
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpArrayContains  Operator = "array-contains"
)

// Valid reports whether the operator is one the store supports.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterOrEqual,
		OpLessThan, OpLessOrEqual, OpArrayContains:
		return true
	}
	return false
}

// Filter is a single field comparison applied to a query.
type Filter struct {
	Field string      `json:"field"`
	Op    Operator    `json:"op"`
	Value interface{} `json:"value"`
}

// Order describes result ordering by a single field.
type Order struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// Document is a stored record: an identifier plus a flat field mapping.
type Document struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// FindSpec is the declarative query shape handed to a DocumentStore.
// Filters are applied in the order given.
type FindSpec struct {
	Collection string
	Filters    []Filter
	OrderBy    *Order
	Limit      int // 0 means no limit
	Offset     int
	Fields     []string // projection; empty means all fields
}

// DocumentStore is the contract the underlying document database must satisfy.
// All errors from the store propagate to callers unmodified; this layer adds
// no retries.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Put(ctx context.Context, collection string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, spec FindSpec) ([]Document, error)
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
}

// EventBus publishes domain events to interested consumers.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
