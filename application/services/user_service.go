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

// UserService manages admin-dashboard accounts.
type UserService struct {
	store       ports.DocumentStore
	queries     *query.Executor
	invalidator *query.Invalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewUserService creates the user service.
func NewUserService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:       store,
		queries:     queries,
		invalidator: invalidator,
		validate:    validator.New(),
		logger:      logger,
	}
}

// UserInput is the admin create/update payload.
type UserInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=200"`
	Role        string `json:"role" validate:"required,oneof=admin editor viewer"`
	Disabled    bool   `json:"disabled"`
}

// List returns every account. The user table is small; no pagination.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	res, err := s.queries.Execute(ctx, query.Query{
		Collection: domain.CollectionUsers,
		OrderBy:    &ports.Order{Field: "email"},
	})
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, len(res.Documents))
	for i, doc := range res.Documents {
		users[i] = domain.UserFromDocument(doc)
	}
	return users, nil
}

// Get returns one account by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	doc, err := s.queries.GetDocument(ctx, domain.CollectionUsers, id, 0)
	if err != nil {
		return nil, err
	}
	user := domain.UserFromDocument(*doc)
	return &user, nil
}

// GetByEmail returns one account by email, for the auth middleware.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.queries.Execute(ctx, query.Query{
		Collection: domain.CollectionUsers,
		Filters:    []ports.Filter{{Field: "email", Op: ports.OpEqual, Value: email}},
		Limit:      limitOf(1),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Documents) == 0 {
		return nil, apperrors.NewNotFound("user " + email)
	}
	user := domain.UserFromDocument(res.Documents[0])
	return &user, nil
}

// Create adds an account.
func (s *UserService) Create(ctx context.Context, input UserInput) (*domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.store.Find(ctx, ports.FindSpec{
		Collection: domain.CollectionUsers,
		Filters:    []ports.Filter{{Field: "email", Op: ports.OpEqual, Value: email}},
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperrors.NewConflict("a user with this email already exists")
	}

	user := domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: input.DisplayName,
		Role:        input.Role,
		Disabled:    input.Disabled,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Put(ctx, domain.CollectionUsers, user.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionUsers, user.ID)

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// Update replaces an account's editable fields.
func (s *UserService) Update(ctx context.Context, id string, input UserInput) (*domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	doc, err := s.store.Get(ctx, domain.CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	user := domain.UserFromDocument(*doc)
	user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	user.DisplayName = input.DisplayName
	user.Role = input.Role
	user.Disabled = input.Disabled

	if err := s.store.Put(ctx, domain.CollectionUsers, user.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionUsers, user.ID)
	return &user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, domain.CollectionUsers, id); err != nil {
		return err
	}
	s.invalidator.AfterWrite(domain.CollectionUsers, id)
	return nil
}
