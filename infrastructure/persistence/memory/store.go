// Package memory provides an in-memory DocumentStore used by unit tests and
// local development. It implements the full query surface, including ordering,
// pagination, and projection.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"teamsqa-backend/application/ports"
)

// Store keeps documents per collection in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]ports.Document
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: map[string][]ports.Document{}}
}

func (s *Store) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.collections[collection] {
		if d.ID == id {
			doc := cloneDocument(d)
			return &doc, nil
		}
	}
	return nil, ports.ErrDocumentNotFound
}

func (s *Store) Put(ctx context.Context, collection string, doc ports.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("put %s: document id is required", collection)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneDocument(doc)
	for i, d := range s.collections[collection] {
		if d.ID == doc.ID {
			s.collections[collection][i] = stored
			return nil
		}
	}
	s.collections[collection] = append(s.collections[collection], stored)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i, d := range docs {
		if d.ID == id {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) Find(ctx context.Context, spec ports.FindSpec) ([]ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]ports.Document, 0)
	for _, d := range s.collections[spec.Collection] {
		ok, err := matches(d, spec.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, d)
		}
	}

	if spec.OrderBy != nil {
		sortDocuments(matched, *spec.OrderBy)
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

	out := make([]ports.Document, len(matched))
	for i, d := range matched {
		out[i] = project(d, spec.Fields)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, collection string, filters []ports.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, d := range s.collections[collection] {
		ok, err := matches(d, filters)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Len reports the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func matches(d ports.Document, filters []ports.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matchField(d.Fields[f.Field], f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchField(fieldValue interface{}, f ports.Filter) (bool, error) {
	switch f.Op {
	case ports.OpEqual:
		return equalValues(fieldValue, f.Value), nil
	case ports.OpNotEqual:
		return !equalValues(fieldValue, f.Value), nil
	case ports.OpGreaterThan, ports.OpGreaterOrEqual, ports.OpLessThan, ports.OpLessOrEqual:
		cmp, ok := compareValues(fieldValue, f.Value)
		if !ok {
			return false, nil
		}
		switch f.Op {
		case ports.OpGreaterThan:
			return cmp > 0, nil
		case ports.OpGreaterOrEqual:
			return cmp >= 0, nil
		case ports.OpLessThan:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case ports.OpArrayContains:
		return arrayContains(fieldValue, f.Value), nil
	default:
		return false, fmt.Errorf("unsupported operator %q", f.Op)
	}
}

// equalValues compares with numeric widening so int documents match float
// filters and vice versa. JSON decoding turns all numbers into float64.
func equalValues(a, b interface{}) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

// compareValues orders two values of the same kind. The second return is
// false when the values are not comparable.
func compareValues(a, b interface{}) (int, bool) {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func arrayContains(fieldValue, want interface{}) bool {
	switch arr := fieldValue.(type) {
	case []string:
		for _, v := range arr {
			if equalValues(v, want) {
				return true
			}
		}
	case []interface{}:
		for _, v := range arr {
			if equalValues(v, want) {
				return true
			}
		}
	}
	return false
}

func sortDocuments(docs []ports.Document, order ports.Order) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp, ok := compareValues(docs[i].Fields[order.Field], docs[j].Fields[order.Field])
		if !ok {
			return false
		}
		if order.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func project(d ports.Document, fields []string) ports.Document {
	if len(fields) == 0 {
		return cloneDocument(d)
	}
	out := ports.Document{ID: d.ID, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		if v, ok := d.Fields[f]; ok {
			out.Fields[f] = v
		}
	}
	return out
}

// cloneDocument copies the field map so callers cannot mutate stored state.
func cloneDocument(d ports.Document) ports.Document {
	fields := make(map[string]interface{}, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return ports.Document{ID: d.ID, Fields: fields}
}
