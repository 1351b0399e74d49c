package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"teamsqa-backend/application/notify"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

// BroadcastHandler serves broadcast endpoints.
type BroadcastHandler struct {
	broadcaster *notify.Broadcaster
	logger      *zap.Logger
}

// NewBroadcastHandler creates the handler.
func NewBroadcastHandler(broadcaster *notify.Broadcaster, logger *zap.Logger) *BroadcastHandler {
	return &BroadcastHandler{broadcaster: broadcaster, logger: logger}
}

// Send handles POST /api/v1/admin/broadcasts. The response carries the
// delivery report, including any per-recipient failures.
func (h *BroadcastHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req notify.BroadcastRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation("invalid request body"))
		return
	}

	report, err := h.broadcaster.Send(r.Context(), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}
