package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamsqa-backend/application/services"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

// CourseHandler serves course endpoints.
type CourseHandler struct {
	courses *services.CourseService
	logger  *zap.Logger
}

// NewCourseHandler creates the handler.
func NewCourseHandler(courses *services.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

type courseListResponse struct {
	Courses interface{} `json:"courses"`
	HasMore bool        `json:"has_more"`
}

// ListPublic handles GET /api/v1/courses.
func (h *CourseHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	courses, hasMore, err := h.courses.ListPublished(r.Context(), page.Limit, page.Offset)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, courseListResponse{Courses: courses, HasMore: hasMore})
}

// GetBySlug handles GET /api/v1/courses/{slug}.
func (h *CourseHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, course)
}

// ListAdmin handles GET /api/v1/admin/courses.
func (h *CourseHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	courses, hasMore, err := h.courses.ListAll(r.Context(), page.Limit, page.Offset)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, courseListResponse{Courses: courses, HasMore: hasMore})
}

// Get handles GET /api/v1/admin/courses/{courseID}.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.Get(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "course"))
		return
	}
	common.RespondJSON(w, http.StatusOK, course)
}

// Create handles POST /api/v1/admin/courses.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CourseInput
	if err := common.ParseJSONBody(w, r, &input, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	course, err := h.courses.Create(r.Context(), input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, course)
}

// Update handles PUT /api/v1/admin/courses/{courseID}.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.CourseInput
	if err := common.ParseJSONBody(w, r, &input, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	course, err := h.courses.Update(r.Context(), chi.URLParam(r, "courseID"), input)
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "course"))
		return
	}
	common.RespondJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /api/v1/admin/courses/{courseID}.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.courses.Delete(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
