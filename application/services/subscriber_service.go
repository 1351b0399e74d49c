package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/application/query"
	"teamsqa-backend/domain"
	apperrors "teamsqa-backend/pkg/errors"
)

// SubscriberService manages newsletter and notification subscriptions.
type SubscriberService struct {
	store       ports.DocumentStore
	queries     *query.Executor
	invalidator *query.Invalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewSubscriberService creates the subscriber service.
func NewSubscriberService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	logger *zap.Logger,
) *SubscriberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriberService{
		store:       store,
		queries:     queries,
		invalidator: invalidator,
		validate:    validator.New(),
		logger:      logger,
	}
}

// SubscribeRequest is the public subscription payload.
type SubscribeRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"omitempty,max=200"`
	Channels []string `json:"channels" validate:"omitempty,dive,oneof=email push"`
}

// Subscribe adds a subscriber, or refreshes an existing one's channels.
// Subscribing twice with the same email is idempotent, not an error.
func (s *SubscriberService) Subscribe(ctx context.Context, req SubscribeRequest) (*domain.Subscriber, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	channels := req.Channels
	if len(channels) == 0 {
		channels = []string{domain.ChannelEmail}
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Name = req.Name
		existing.Channels = channels
		if err := s.store.Put(ctx, domain.CollectionSubscribers, existing.ToDocument()); err != nil {
			return nil, err
		}
		s.invalidator.AfterWrite(domain.CollectionSubscribers, existing.ID)
		return existing, nil
	}

	sub := domain.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         req.Name,
		Channels:     channels,
		SubscribedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, domain.CollectionSubscribers, sub.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionSubscribers, sub.ID)

	s.logger.Info("subscriber added", zap.String("subscriber_id", sub.ID))
	return &sub, nil
}

// Unsubscribe removes the subscriber with the given email. Unknown emails
// succeed silently so the unsubscribe link never errors for the recipient.
func (s *SubscriberService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if err := s.store.Delete(ctx, domain.CollectionSubscribers, existing.ID); err != nil {
		return err
	}
	s.invalidator.AfterWrite(domain.CollectionSubscribers, existing.ID)
	return nil
}

// List returns a page of subscribers for the admin dashboard.
func (s *SubscriberService) List(ctx context.Context, limit, offset int) ([]domain.Subscriber, int, error) {
	q := query.Query{
		Collection: domain.CollectionSubscribers,
		OrderBy:    &ports.Order{Field: "subscribed_at", Descending: true},
		Offset:     offset,
		WithCount:  true,
	}
	if limit > 0 {
		q.Limit = limitOf(limit)
	}

	res, err := s.queries.Execute(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	subs := make([]domain.Subscriber, len(res.Documents))
	for i, doc := range res.Documents {
		subs[i] = domain.SubscriberFromDocument(doc)
	}
	total := 0
	if res.TotalCount != nil {
		total = *res.TotalCount
	}
	return subs, total, nil
}

// Recipients returns every subscriber opted into the channel, read straight
// from the store: a broadcast must see the subscriber list as of send time,
// not a cached page.
func (s *SubscriberService) Recipients(ctx context.Context, channel string) ([]domain.Subscriber, error) {
	docs, err := s.store.Find(ctx, ports.FindSpec{
		Collection: domain.CollectionSubscribers,
		Filters:    []ports.Filter{{Field: "channels", Op: ports.OpArrayContains, Value: channel}},
	})
	if err != nil {
		return nil, err
	}
	subs := make([]domain.Subscriber, len(docs))
	for i, doc := range docs {
		subs[i] = domain.SubscriberFromDocument(doc)
	}
	return subs, nil
}

// SetConnection records the push connection for a subscriber, or clears it
// when connectionID is empty.
func (s *SubscriberService) SetConnection(ctx context.Context, subscriberID, connectionID string) error {
	doc, err := s.store.Get(ctx, domain.CollectionSubscribers, subscriberID)
	if err != nil {
		return err
	}
	sub := domain.SubscriberFromDocument(*doc)
	sub.ConnectionID = connectionID
	if err := s.store.Put(ctx, domain.CollectionSubscribers, sub.ToDocument()); err != nil {
		return err
	}
	s.invalidator.AfterWrite(domain.CollectionSubscribers, sub.ID)
	return nil
}

func (s *SubscriberService) findByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	res, err := s.queries.Execute(ctx, query.Query{
		Collection: domain.CollectionSubscribers,
		Filters:    []ports.Filter{{Field: "email", Op: ports.OpEqual, Value: email}},
		Limit:      limitOf(1),
		TTL:        query.DuplicateCheckTTL,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Documents) == 0 {
		return nil, nil
	}
	sub := domain.SubscriberFromDocument(res.Documents[0])
	return &sub, nil
}
