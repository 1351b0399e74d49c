package domain

import (
	"time"

	"teamsqa-backend/application/ports"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// User is an admin-dashboard account. Authentication itself is delegated to
// the identity provider; this record carries role and status only.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	Disabled    bool      `json:"disabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToDocument maps the user to its stored document shape.
func (u User) ToDocument() ports.Document {
	return ports.Document{
		ID: u.ID,
		Fields: map[string]interface{}{
			"email":        u.Email,
			"display_name": u.DisplayName,
			"role":         u.Role,
			"disabled":     u.Disabled,
			"created_at":   u.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

// UserFromDocument reconstructs a user from a stored document.
func UserFromDocument(doc ports.Document) User {
	return User{
		ID:          doc.ID,
		Email:       fieldString(doc.Fields, "email"),
		DisplayName: fieldString(doc.Fields, "display_name"),
		Role:        fieldString(doc.Fields, "role"),
		Disabled:    fieldBool(doc.Fields, "disabled"),
		CreatedAt:   fieldTime(doc.Fields, "created_at"),
	}
}
