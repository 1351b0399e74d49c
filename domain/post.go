package domain

import (
	"time"

	"teamsqa-backend/application/ports"
)

// Post is a blog post on the marketing site.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags,omitempty"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToDocument maps the post to its stored document shape.
func (p Post) ToDocument() ports.Document {
	return ports.Document{
		ID: p.ID,
		Fields: map[string]interface{}{
			"title":        p.Title,
			"slug":         p.Slug,
			"excerpt":      p.Excerpt,
			"body":         p.Body,
			"author":       p.Author,
			"tags":         p.Tags,
			"published":    p.Published,
			"published_at": p.PublishedAt.Format(time.RFC3339Nano),
			"created_at":   p.CreatedAt.Format(time.RFC3339Nano),
			"updated_at":   p.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
}

// PostFromDocument reconstructs a post from a stored document.
func PostFromDocument(doc ports.Document) Post {
	return Post{
		ID:          doc.ID,
		Title:       fieldString(doc.Fields, "title"),
		Slug:        fieldString(doc.Fields, "slug"),
		Excerpt:     fieldString(doc.Fields, "excerpt"),
		Body:        fieldString(doc.Fields, "body"),
		Author:      fieldString(doc.Fields, "author"),
		Tags:        fieldStringSlice(doc.Fields, "tags"),
		Published:   fieldBool(doc.Fields, "published"),
		PublishedAt: fieldTime(doc.Fields, "published_at"),
		CreatedAt:   fieldTime(doc.Fields, "created_at"),
		UpdatedAt:   fieldTime(doc.Fields, "updated_at"),
	}
}
