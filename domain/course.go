package domain

import (
	"time"

	"teamsqa-backend/application/ports"
)

// Course is an offered training course.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Seats       int       `json:"seats"`
	StartDate   time.Time `json:"start_date"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToDocument maps the course to its stored document shape.
func (c Course) ToDocument() ports.Document {
	return ports.Document{
		ID: c.ID,
		Fields: map[string]interface{}{
			"title":       c.Title,
			"slug":        c.Slug,
			"description": c.Description,
			"price":       c.Price,
			"seats":       c.Seats,
			"start_date":  c.StartDate.Format(time.RFC3339Nano),
			"published":   c.Published,
			"created_at":  c.CreatedAt.Format(time.RFC3339Nano),
			"updated_at":  c.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
}

// CourseFromDocument reconstructs a course from a stored document.
func CourseFromDocument(doc ports.Document) Course {
	return Course{
		ID:          doc.ID,
		Title:       fieldString(doc.Fields, "title"),
		Slug:        fieldString(doc.Fields, "slug"),
		Description: fieldString(doc.Fields, "description"),
		Price:       fieldFloat(doc.Fields, "price"),
		Seats:       fieldInt(doc.Fields, "seats"),
		StartDate:   fieldTime(doc.Fields, "start_date"),
		Published:   fieldBool(doc.Fields, "published"),
		CreatedAt:   fieldTime(doc.Fields, "created_at"),
		UpdatedAt:   fieldTime(doc.Fields, "updated_at"),
	}
}
