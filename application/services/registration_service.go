// Package services holds the application services behind the HTTP handlers.
// Each service owns one collection: reads go through the caching query
// executor, writes go to the document store and invalidate synchronously
// before returning.
package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/application/query"
	"teamsqa-backend/domain"
	"teamsqa-backend/domain/events"
	apperrors "teamsqa-backend/pkg/errors"
)

// RegistrationService manages course registrations.
type RegistrationService struct {
	store       ports.DocumentStore
	queries     *query.Executor
	invalidator *query.Invalidator
	events      ports.EventBus
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewRegistrationService creates the registration service. events may be nil.
func NewRegistrationService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		store:       store,
		queries:     queries,
		invalidator: invalidator,
		events:      eventBus,
		validate:    validator.New(),
		logger:      logger,
	}
}

// CreateRegistrationRequest is the public registration submission.
type CreateRegistrationRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Message  string `json:"message" validate:"omitempty,max=2000"`
}

// ListRegistrationsParams narrows and pages the admin registration list.
type ListRegistrationsParams struct {
	CourseID string
	Status   string
	Limit    int
	Offset   int
}

// RegistrationList is a page of registrations plus the unpaginated total.
type RegistrationList struct {
	Registrations []domain.Registration `json:"registrations"`
	TotalCount    int                   `json:"total_count"`
	HasMore       bool                  `json:"has_more"`
}

// RegistrationStats counts registrations per status.
type RegistrationStats struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// Create submits a registration. A registration with the same email and
// course that already exists is rejected with a conflict.
//
// The duplicate check runs under a short cache TTL, so a duplicate submitted
// within that window may slip past the cache; the check re-reads the store on
// every cache miss, which bounds the window to the TTL.
func (s *RegistrationService) Create(ctx context.Context, req CreateRegistrationRequest) (*domain.Registration, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	dup, err := s.queries.Execute(ctx, query.Query{
		Collection: domain.CollectionRegistrations,
		Filters: []ports.Filter{
			{Field: "email", Op: ports.OpEqual, Value: req.Email},
			{Field: "course_id", Op: ports.OpEqual, Value: req.CourseID},
		},
		Limit: limitOf(1),
		TTL:   query.DuplicateCheckTTL,
	})
	if err != nil {
		return nil, err
	}
	if len(dup.Documents) > 0 {
		return nil, apperrors.NewConflict("a registration for this email and course already exists")
	}

	now := time.Now().UTC()
	reg := domain.Registration{
		ID:        uuid.NewString(),
		CourseID:  req.CourseID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    domain.RegistrationPending,
		Message:   req.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, domain.CollectionRegistrations, reg.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionRegistrations, reg.ID)

	s.publish(ctx, events.NewRegistrationCreated(reg.ID, reg.CourseID, reg.Email))
	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("course_id", reg.CourseID),
	)
	return &reg, nil
}

// Get returns one registration by ID.
func (s *RegistrationService) Get(ctx context.Context, id string) (*domain.Registration, error) {
	doc, err := s.queries.GetDocument(ctx, domain.CollectionRegistrations, id, 0)
	if err != nil {
		return nil, err
	}
	reg := domain.RegistrationFromDocument(*doc)
	return &reg, nil
}

// List returns a filtered page of registrations with the total count.
func (s *RegistrationService) List(ctx context.Context, params ListRegistrationsParams) (*RegistrationList, error) {
	var filters []ports.Filter
	if params.CourseID != "" {
		filters = append(filters, ports.Filter{Field: "course_id", Op: ports.OpEqual, Value: params.CourseID})
	}
	if params.Status != "" {
		if !domain.ValidRegistrationStatus(params.Status) {
			return nil, apperrors.NewValidation("unknown registration status: " + params.Status)
		}
		filters = append(filters, ports.Filter{Field: "status", Op: ports.OpEqual, Value: params.Status})
	}

	q := query.Query{
		Collection: domain.CollectionRegistrations,
		Filters:    filters,
		OrderBy:    &ports.Order{Field: "created_at", Descending: true},
		Offset:     params.Offset,
		WithCount:  true,
	}
	if params.Limit > 0 {
		q.Limit = limitOf(params.Limit)
	}

	res, err := s.queries.Execute(ctx, q)
	if err != nil {
		return nil, err
	}

	list := &RegistrationList{
		Registrations: make([]domain.Registration, len(res.Documents)),
		HasMore:       res.HasMore,
	}
	for i, doc := range res.Documents {
		list.Registrations[i] = domain.RegistrationFromDocument(doc)
	}
	if res.TotalCount != nil {
		list.TotalCount = *res.TotalCount
	}
	return list, nil
}

// Stats returns per-status registration counts. Counts are cached longer than
// lists since the dashboard polls them.
func (s *RegistrationService) Stats(ctx context.Context) (*RegistrationStats, error) {
	stats := &RegistrationStats{}
	for _, st := range []struct {
		status string
		target *int
	}{
		{domain.RegistrationPending, &stats.Pending},
		{domain.RegistrationConfirmed, &stats.Confirmed},
		{domain.RegistrationCancelled, &stats.Cancelled},
	} {
		res, err := s.queries.Execute(ctx, query.Query{
			Collection: domain.CollectionRegistrations,
			Filters:    []ports.Filter{{Field: "status", Op: ports.OpEqual, Value: st.status}},
			Limit:      limitOf(1),
			Fields:     []string{"status"},
			TTL:        query.CountTTL,
			WithCount:  true,
		})
		if err != nil {
			return nil, err
		}
		if res.TotalCount != nil {
			*st.target = *res.TotalCount
		}
	}
	return stats, nil
}

// UpdateStatus moves a registration to a new status.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id, status string) (*domain.Registration, error) {
	if !domain.ValidRegistrationStatus(status) {
		return nil, apperrors.NewValidation("unknown registration status: " + status)
	}

	doc, err := s.store.Get(ctx, domain.CollectionRegistrations, id)
	if err != nil {
		return nil, err
	}
	reg := domain.RegistrationFromDocument(*doc)
	oldStatus := reg.Status
	reg.Status = status
	reg.UpdatedAt = time.Now().UTC()

	if err := s.store.Put(ctx, domain.CollectionRegistrations, reg.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionRegistrations, reg.ID)

	if oldStatus != status {
		s.publish(ctx, events.NewRegistrationStatusChanged(reg.ID, oldStatus, status))
	}
	return &reg, nil
}

// Delete removes a registration.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, domain.CollectionRegistrations, id); err != nil {
		return err
	}
	s.invalidator.AfterWrite(domain.CollectionRegistrations, id)
	return nil
}

func (s *RegistrationService) publish(ctx context.Context, event events.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}

func limitOf(n int) *int { return &n }
