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

// PostService manages blog posts.
type PostService struct {
	store       ports.DocumentStore
	queries     *query.Executor
	invalidator *query.Invalidator
	events      ports.EventBus
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPostService creates the post service. events may be nil.
func NewPostService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		store:       store,
		queries:     queries,
		invalidator: invalidator,
		events:      eventBus,
		validate:    validator.New(),
		logger:      logger,
	}
}

// PostInput is the admin create/update payload.
type PostInput struct {
	Title     string   `json:"title" validate:"required,max=300"`
	Slug      string   `json:"slug" validate:"required,max=300"`
	Excerpt   string   `json:"excerpt" validate:"omitempty,max=1000"`
	Body      string   `json:"body" validate:"required"`
	Author    string   `json:"author" validate:"required,max=200"`
	Tags      []string `json:"tags" validate:"omitempty,dive,max=50"`
	Published bool     `json:"published"`
}

// ListPublished returns published posts, newest first. A tag narrows the
// list.
func (s *PostService) ListPublished(ctx context.Context, tag string, limit, offset int) ([]domain.Post, bool, error) {
	filters := []ports.Filter{{Field: "published", Op: ports.OpEqual, Value: true}}
	if tag != "" {
		filters = append(filters, ports.Filter{Field: "tags", Op: ports.OpArrayContains, Value: tag})
	}

	q := query.Query{
		Collection: domain.CollectionPosts,
		Filters:    filters,
		OrderBy:    &ports.Order{Field: "published_at", Descending: true},
		Offset:     offset,
	}
	if limit > 0 {
		q.Limit = limitOf(limit)
	}

	res, err := s.queries.Execute(ctx, q)
	if err != nil {
		return nil, false, err
	}
	posts := make([]domain.Post, len(res.Documents))
	for i, doc := range res.Documents {
		posts[i] = domain.PostFromDocument(doc)
	}
	return posts, res.HasMore, nil
}

// ListAll returns every post, drafts included, for the admin dashboard.
func (s *PostService) ListAll(ctx context.Context, limit, offset int) ([]domain.Post, bool, error) {
	q := query.Query{
		Collection: domain.CollectionPosts,
		OrderBy:    &ports.Order{Field: "updated_at", Descending: true},
		Offset:     offset,
	}
	if limit > 0 {
		q.Limit = limitOf(limit)
	}

	res, err := s.queries.Execute(ctx, q)
	if err != nil {
		return nil, false, err
	}
	posts := make([]domain.Post, len(res.Documents))
	for i, doc := range res.Documents {
		posts[i] = domain.PostFromDocument(doc)
	}
	return posts, res.HasMore, nil
}

// Get returns one post by ID.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	doc, err := s.queries.GetDocument(ctx, domain.CollectionPosts, id, 0)
	if err != nil {
		return nil, err
	}
	post := domain.PostFromDocument(*doc)
	return &post, nil
}

// GetBySlug returns one published post by its URL slug.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	res, err := s.queries.Execute(ctx, query.Query{
		Collection: domain.CollectionPosts,
		Filters: []ports.Filter{
			{Field: "slug", Op: ports.OpEqual, Value: slug},
			{Field: "published", Op: ports.OpEqual, Value: true},
		},
		Limit: limitOf(1),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Documents) == 0 {
		return nil, apperrors.NewNotFound("post " + slug)
	}
	post := domain.PostFromDocument(res.Documents[0])
	return &post, nil
}

// Create adds a post. Publishing on create raises PostPublished.
func (s *PostService) Create(ctx context.Context, input PostInput) (*domain.Post, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	now := time.Now().UTC()
	post := domain.Post{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Slug:      input.Slug,
		Excerpt:   input.Excerpt,
		Body:      input.Body,
		Author:    input.Author,
		Tags:      input.Tags,
		Published: input.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.Published {
		post.PublishedAt = now
	}
	if err := s.store.Put(ctx, domain.CollectionPosts, post.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionPosts, post.ID)

	if post.Published {
		s.publish(ctx, events.NewPostPublished(post.ID, post.Slug))
	}
	return &post, nil
}

// Update replaces a post's editable fields. A draft transitioning to
// published gets its publication timestamp set and raises PostPublished.
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*domain.Post, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	doc, err := s.store.Get(ctx, domain.CollectionPosts, id)
	if err != nil {
		return nil, err
	}
	post := domain.PostFromDocument(*doc)
	wasPublished := post.Published

	post.Title = input.Title
	post.Slug = input.Slug
	post.Excerpt = input.Excerpt
	post.Body = input.Body
	post.Author = input.Author
	post.Tags = input.Tags
	post.Published = input.Published
	post.UpdatedAt = time.Now().UTC()
	if post.Published && !wasPublished {
		post.PublishedAt = post.UpdatedAt
	}

	if err := s.store.Put(ctx, domain.CollectionPosts, post.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionPosts, post.ID)

	if post.Published && !wasPublished {
		s.publish(ctx, events.NewPostPublished(post.ID, post.Slug))
	}
	return &post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, domain.CollectionPosts, id); err != nil {
		return err
	}
	s.invalidator.AfterWrite(domain.CollectionPosts, id)
	return nil
}

func (s *PostService) publish(ctx context.Context, event events.DomainEvent) {
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
