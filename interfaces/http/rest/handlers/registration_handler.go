// Package handlers contains the HTTP handlers for the public site and the
// admin dashboard.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamsqa-backend/application/services"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// RegistrationHandler serves registration endpoints.
type RegistrationHandler struct {
	registrations *services.RegistrationService
	logger        *zap.Logger
}

// NewRegistrationHandler creates the handler.
func NewRegistrationHandler(registrations *services.RegistrationService, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, logger: logger}
}

// Create handles POST /api/v1/registrations (public).
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateRegistrationRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	reg, err := h.registrations.Create(r.Context(), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, reg)
}

// List handles GET /api/v1/admin/registrations.
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	list, err := h.registrations.List(r.Context(), services.ListRegistrationsParams{
		CourseID: r.URL.Query().Get("course_id"),
		Status:   r.URL.Query().Get("status"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/v1/admin/registrations/{registrationID}.
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrations.Get(r.Context(), chi.URLParam(r, "registrationID"))
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "registration"))
		return
	}
	common.RespondJSON(w, http.StatusOK, reg)
}

// UpdateStatus handles PATCH /api/v1/admin/registrations/{registrationID}.
func (h *RegistrationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	reg, err := h.registrations.UpdateStatus(r.Context(), chi.URLParam(r, "registrationID"), req.Status)
	if err != nil {
		common.RespondAppError(w, mapNotFound(err, "registration"))
		return
	}
	common.RespondJSON(w, http.StatusOK, reg)
}

// Delete handles DELETE /api/v1/admin/registrations/{registrationID}.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registrations.Delete(r.Context(), chi.URLParam(r, "registrationID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/admin/registrations/stats.
func (h *RegistrationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registrations.Stats(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stats)
}
