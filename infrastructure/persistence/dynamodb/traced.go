package dynamodb

import (
	"context"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/pkg/observability"
)

// TracedStore annotates every store call with an X-Ray subsegment.
type TracedStore struct {
	inner  ports.DocumentStore
	tracer *observability.Tracer
}

// NewTracedStore wraps the store with tracing.
func NewTracedStore(inner ports.DocumentStore, tracer *observability.Tracer) *TracedStore {
	return &TracedStore{inner: inner, tracer: tracer}
}

func (t *TracedStore) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	var doc *ports.Document
	err := t.tracer.TraceFunction(ctx, "store.get", func(ctx context.Context) error {
		t.tracer.AddAnnotation(ctx, "collection", collection)
		var err error
		doc, err = t.inner.Get(ctx, collection, id)
		return err
	})
	return doc, err
}

func (t *TracedStore) Put(ctx context.Context, collection string, doc ports.Document) error {
	return t.tracer.TraceFunction(ctx, "store.put", func(ctx context.Context) error {
		t.tracer.AddAnnotation(ctx, "collection", collection)
		return t.inner.Put(ctx, collection, doc)
	})
}

func (t *TracedStore) Delete(ctx context.Context, collection, id string) error {
	return t.tracer.TraceFunction(ctx, "store.delete", func(ctx context.Context) error {
		t.tracer.AddAnnotation(ctx, "collection", collection)
		return t.inner.Delete(ctx, collection, id)
	})
}

func (t *TracedStore) Find(ctx context.Context, spec ports.FindSpec) ([]ports.Document, error) {
	var docs []ports.Document
	err := t.tracer.TraceFunction(ctx, "store.find", func(ctx context.Context) error {
		t.tracer.AddAnnotation(ctx, "collection", spec.Collection)
		var err error
		docs, err = t.inner.Find(ctx, spec)
		return err
	})
	return docs, err
}

func (t *TracedStore) Count(ctx context.Context, collection string, filters []ports.Filter) (int, error) {
	var n int
	err := t.tracer.TraceFunction(ctx, "store.count", func(ctx context.Context) error {
		t.tracer.AddAnnotation(ctx, "collection", collection)
		var err error
		n, err = t.inner.Count(ctx, collection, filters)
		return err
	})
	return n, err
}
