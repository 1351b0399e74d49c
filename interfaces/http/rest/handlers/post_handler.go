package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamsqa-backend/application/services"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

// PostHandler serves blog post endpoints.
type PostHandler struct {
	posts  *services.PostService
	logger *zap.Logger
}

// NewPostHandler creates the handler.
func NewPostHandler(posts *services.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

type postListResponse struct {
	Posts   interface{} `json:"posts"`
	HasMore bool        `json:"has_more"`
}

// ListPublic handles GET /api/v1/posts. The tag query parameter narrows the
// list.
func (h *PostHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	posts, hasMore, err := h.posts.ListPublished(r.Context(), r.URL.Query().Get("tag"), page.Limit, page.Offset)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, postListResponse{Posts: posts, HasMore: hasMore})
}

// GetBySlug handles GET /api/v1/posts/{slug}.
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// ListAdmin handles GET /api/v1/admin/posts.
func (h *PostHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	posts, hasMore, err := h.posts.ListAll(r.Context(), page.Limit, page.Offset)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, postListResponse{Posts: posts, HasMore: hasMore})
}

// Get handles GET /api/v1/admin/posts/{postID}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "post"))
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// Create handles POST /api/v1/admin/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.PostInput
	if err := common.ParseJSONBody(w, r, &input, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	post, err := h.posts.Create(r.Context(), input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, post)
}

// Update handles PUT /api/v1/admin/posts/{postID}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.PostInput
	if err := common.ParseJSONBody(w, r, &input, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "postID"), input)
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "post"))
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/v1/admin/posts/{postID}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "postID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
