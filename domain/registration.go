package domain

import (
	"time"

	"teamsqa-backend/application/ports"
)

// Registration statuses.
const (
	RegistrationPending   = "pending"
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

// ValidRegistrationStatus reports whether s is a known status.
func ValidRegistrationStatus(s string) bool {
	return s == RegistrationPending || s == RegistrationConfirmed || s == RegistrationCancelled
}

// Registration is a course-registration submission.
type Registration struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDocument maps the registration to its stored document shape.
func (r Registration) ToDocument() ports.Document {
	return ports.Document{
		ID: r.ID,
		Fields: map[string]interface{}{
			"course_id":  r.CourseID,
			"full_name":  r.FullName,
			"email":      r.Email,
			"phone":      r.Phone,
			"status":     r.Status,
			"message":    r.Message,
			"created_at": r.CreatedAt.Format(time.RFC3339Nano),
			"updated_at": r.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
}

// RegistrationFromDocument reconstructs a registration from a stored document.
func RegistrationFromDocument(doc ports.Document) Registration {
	return Registration{
		ID:        doc.ID,
		CourseID:  fieldString(doc.Fields, "course_id"),
		FullName:  fieldString(doc.Fields, "full_name"),
		Email:     fieldString(doc.Fields, "email"),
		Phone:     fieldString(doc.Fields, "phone"),
		Status:    fieldString(doc.Fields, "status"),
		Message:   fieldString(doc.Fields, "message"),
		CreatedAt: fieldTime(doc.Fields, "created_at"),
		UpdatedAt: fieldTime(doc.Fields, "updated_at"),
	}
}
