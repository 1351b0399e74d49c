package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"teamsqa-backend/application/services"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

// NewsletterHandler serves subscription endpoints.
type NewsletterHandler struct {
	subscribers *services.SubscriberService
	logger      *zap.Logger
}

// NewNewsletterHandler creates the handler.
func NewNewsletterHandler(subscribers *services.SubscriberService, logger *zap.Logger) *NewsletterHandler {
	return &NewsletterHandler{subscribers: subscribers, logger: logger}
}

// Subscribe handles POST /api/v1/newsletter/subscribe (public).
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req services.SubscribeRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	sub, err := h.subscribers.Subscribe(r.Context(), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sub)
}

// Unsubscribe handles POST /api/v1/newsletter/unsubscribe (public).
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}
	if req.Email == "" {
		common.RespondAppError(w, apperrors.NewValidation("email is required"))
		return
	}

	if err := h.subscribers.Unsubscribe(r.Context(), req.Email); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/admin/subscribers.
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	subs, total, err := h.subscribers.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"subscribers": subs,
		"total_count": total,
	})
}
