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
	apperrors "teamsqa-backend/pkg/errors"
)

// CourseService manages the course catalog.
type CourseService struct {
	store       ports.DocumentStore
	queries     *query.Executor
	invalidator *query.Invalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewCourseService creates the course service.
func NewCourseService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	logger *zap.Logger,
) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		store:       store,
		queries:     queries,
		invalidator: invalidator,
		validate:    validator.New(),
		logger:      logger,
	}
}

// CourseInput is the admin create/update payload.
type CourseInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Slug        string    `json:"slug" validate:"required,max=200"`
	Description string    `json:"description" validate:"omitempty,max=10000"`
	Price       float64   `json:"price" validate:"gte=0"`
	Seats       int       `json:"seats" validate:"gte=0"`
	StartDate   time.Time `json:"start_date"`
	Published   bool      `json:"published"`
}

// ListPublished returns published courses ordered by start date, for the
// public site.
func (s *CourseService) ListPublished(ctx context.Context, limit, offset int) ([]domain.Course, bool, error) {
	q := query.Query{
		Collection: domain.CollectionCourses,
		Filters:    []ports.Filter{{Field: "published", Op: ports.OpEqual, Value: true}},
		OrderBy:    &ports.Order{Field: "start_date"},
		Offset:     offset,
	}
	if limit > 0 {
		q.Limit = limitOf(limit)
	}

	res, err := s.queries.Execute(ctx, q)
	if err != nil {
		return nil, false, err
	}
	courses := make([]domain.Course, len(res.Documents))
	for i, doc := range res.Documents {
		courses[i] = domain.CourseFromDocument(doc)
	}
	return courses, res.HasMore, nil
}

// ListAll returns every course, including drafts, for the admin dashboard.
func (s *CourseService) ListAll(ctx context.Context, limit, offset int) ([]domain.Course, bool, error) {
	q := query.Query{
		Collection: domain.CollectionCourses,
		OrderBy:    &ports.Order{Field: "created_at", Descending: true},
		Offset:     offset,
	}
	if limit > 0 {
		q.Limit = limitOf(limit)
	}

	res, err := s.queries.Execute(ctx, q)
	if err != nil {
		return nil, false, err
	}
	courses := make([]domain.Course, len(res.Documents))
	for i, doc := range res.Documents {
		courses[i] = domain.CourseFromDocument(doc)
	}
	return courses, res.HasMore, nil
}

// Get returns one course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	doc, err := s.queries.GetDocument(ctx, domain.CollectionCourses, id, 0)
	if err != nil {
		return nil, err
	}
	course := domain.CourseFromDocument(*doc)
	return &course, nil
}

// GetBySlug returns one published course by its URL slug.
func (s *CourseService) GetBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	res, err := s.queries.Execute(ctx, query.Query{
		Collection: domain.CollectionCourses,
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
		return nil, apperrors.NewNotFound("course " + slug)
	}
	course := domain.CourseFromDocument(res.Documents[0])
	return &course, nil
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, input CourseInput) (*domain.Course, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}
	if err := s.requireUniqueSlug(ctx, input.Slug, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	course := domain.Course{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Price:       input.Price,
		Seats:       input.Seats,
		StartDate:   input.StartDate,
		Published:   input.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Put(ctx, domain.CollectionCourses, course.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionCourses, course.ID)

	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("slug", course.Slug))
	return &course, nil
}

// Update replaces a course's editable fields.
func (s *CourseService) Update(ctx context.Context, id string, input CourseInput) (*domain.Course, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	doc, err := s.store.Get(ctx, domain.CollectionCourses, id)
	if err != nil {
		return nil, err
	}
	course := domain.CourseFromDocument(*doc)
	if input.Slug != course.Slug {
		if err := s.requireUniqueSlug(ctx, input.Slug, id); err != nil {
			return nil, err
		}
	}

	course.Title = input.Title
	course.Slug = input.Slug
	course.Description = input.Description
	course.Price = input.Price
	course.Seats = input.Seats
	course.StartDate = input.StartDate
	course.Published = input.Published
	course.UpdatedAt = time.Now().UTC()

	if err := s.store.Put(ctx, domain.CollectionCourses, course.ToDocument()); err != nil {
		return nil, err
	}
	s.invalidator.AfterWrite(domain.CollectionCourses, course.ID)
	return &course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, domain.CollectionCourses, id); err != nil {
		return err
	}
	s.invalidator.AfterWrite(domain.CollectionCourses, id)
	return nil
}

// requireUniqueSlug checks the store directly; slug collisions are rare and a
// stale cached check could let two courses share a URL.
func (s *CourseService) requireUniqueSlug(ctx context.Context, slug, excludeID string) error {
	docs, err := s.store.Find(ctx, ports.FindSpec{
		Collection: domain.CollectionCourses,
		Filters:    []ports.Filter{{Field: "slug", Op: ports.OpEqual, Value: slug}},
		Limit:      1,
	})
	if err != nil {
		return err
	}
	if len(docs) > 0 && docs[0].ID != excludeID {
		return apperrors.NewConflict("a course with this slug already exists")
	}
	return nil
}
