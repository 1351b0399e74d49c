package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamsqa-backend/application/services"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

// UserHandler serves admin account endpoints.
type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

// NewUserHandler creates the handler.
func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// List handles GET /api/v1/admin/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Get handles GET /api/v1/admin/users/{userID}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "user"))
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// Create handles POST /api/v1/admin/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := common.ParseJSONBody(w, r, &input, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	user, err := h.users.Create(r.Context(), input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, user)
}

// Update handles PUT /api/v1/admin/users/{userID}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := common.ParseJSONBody(w, r, &input, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "userID"), input)
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "user"))
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/admin/users/{userID}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
