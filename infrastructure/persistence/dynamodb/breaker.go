package dynamodb

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"teamsqa-backend/application/ports"
	apperrors "teamsqa-backend/pkg/errors"
)

// BreakerStore wraps a DocumentStore with a circuit breaker so a struggling
// table sheds load fast instead of queueing requests behind timeouts.
//
// Not-found results pass through as successes; only real store failures count
// against the breaker.
type BreakerStore struct {
	inner   ports.DocumentStore
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerStore wraps the store. The breaker opens after 5 consecutive
// failures and probes again after 30 seconds.
func NewBreakerStore(inner ports.DocumentStore, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:    "document-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("document store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || err == ports.ErrDocumentNotFound
		},
	}
	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

func (b *BreakerStore) execute(op func() (interface{}, error)) (interface{}, error) {
	v, err := b.breaker.Execute(op)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.NewDatabase("document store unavailable", err)
	}
	return v, err
}

func (b *BreakerStore) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	v, err := b.execute(func() (interface{}, error) {
		return b.inner.Get(ctx, collection, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ports.Document), nil
}

func (b *BreakerStore) Put(ctx context.Context, collection string, doc ports.Document) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.Put(ctx, collection, doc)
	})
	return err
}

func (b *BreakerStore) Delete(ctx context.Context, collection, id string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.Delete(ctx, collection, id)
	})
	return err
}

func (b *BreakerStore) Find(ctx context.Context, spec ports.FindSpec) ([]ports.Document, error) {
	v, err := b.execute(func() (interface{}, error) {
		return b.inner.Find(ctx, spec)
	})
	if err != nil {
		return nil, err
	}
	return v.([]ports.Document), nil
}

func (b *BreakerStore) Count(ctx context.Context, collection string, filters []ports.Filter) (int, error) {
	v, err := b.execute(func() (interface{}, error) {
		return b.inner.Count(ctx, collection, filters)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}
