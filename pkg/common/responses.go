package common

import (
	"encoding/json"
	"net/http"

	apperrors "teamsqa-backend/pkg/errors"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains error details. Internal diagnostics (cache keys, stack
// traces, wrapped causes) never appear here.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetaInfo contains metadata about the response.
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// RespondJSON sends data inside the envelope.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	writeJSON(w, status, response)
}

// RespondError sends an error envelope.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
	writeJSON(w, status, response)
}

// RespondAppError maps an error through the AppError taxonomy. Unrecognized
// errors become a generic internal failure so no internals leak to clients.
func RespondAppError(w http.ResponseWriter, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus()
		message := appErr.Message
		if status >= 500 {
			message = "internal server error"
		}
		response := APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Code:    string(appErr.Type),
				Message: message,
				Details: appErr.Details,
			},
		}
		writeJSON(w, status, response)
		return
	}
	RespondError(w, http.StatusInternalServerError, string(apperrors.ErrorTypeInternal), "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ParseJSONBody parses a JSON request body with a size limit, rejecting
// unknown fields.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
