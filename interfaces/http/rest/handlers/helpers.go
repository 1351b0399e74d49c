package handlers

import (
	"errors"

	"teamsqa-backend/application/ports"
	apperrors "teamsqa-backend/pkg/errors"
)

// mapNotFound turns the store's not-found sentinel into a client-facing 404
// for the named resource. Other errors pass through untouched.
func mapNotFound(err error, resource string) error {
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return apperrors.NewNotFound(resource)
	}
	return err
}
