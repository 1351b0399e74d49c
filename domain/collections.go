// Package domain holds the TeamsQA entities and their document mappings.
package domain

// Collection names used across the document store and the cache layer.
const (
	CollectionRegistrations = "registrations"
	CollectionCourses       = "courses"
	CollectionPosts         = "posts"
	CollectionSubscribers   = "subscribers"
	CollectionUsers         = "users"
)
