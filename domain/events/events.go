// Package events defines the domain events published after successful writes.
// Events represent something that has already happened; publishing them is
// best-effort and never fails the write that produced them.
package events

import "time"

// SourceTeamsQA identifies this backend as the event source.
const SourceTeamsQA = "teamsqa.backend"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// RegistrationCreated is raised when a course registration is submitted.
type RegistrationCreated struct {
	BaseEvent
	RegistrationID string `json:"registration_id"`
	CourseID       string `json:"course_id"`
	Email          string `json:"email"`
}

// NewRegistrationCreated creates a RegistrationCreated event.
func NewRegistrationCreated(registrationID, courseID, email string) RegistrationCreated {
	return RegistrationCreated{
		BaseEvent: BaseEvent{
			AggregateID: registrationID,
			EventType:   "registration.created",
			Timestamp:   time.Now().UTC(),
			Version:     1,
		},
		RegistrationID: registrationID,
		CourseID:       courseID,
		Email:          email,
	}
}

// RegistrationStatusChanged is raised when an admin updates a registration.
type RegistrationStatusChanged struct {
	BaseEvent
	RegistrationID string `json:"registration_id"`
	OldStatus      string `json:"old_status"`
	NewStatus      string `json:"new_status"`
}

// NewRegistrationStatusChanged creates a RegistrationStatusChanged event.
func NewRegistrationStatusChanged(registrationID, oldStatus, newStatus string) RegistrationStatusChanged {
	return RegistrationStatusChanged{
		BaseEvent: BaseEvent{
			AggregateID: registrationID,
			EventType:   "registration.status_changed",
			Timestamp:   time.Now().UTC(),
			Version:     1,
		},
		RegistrationID: registrationID,
		OldStatus:      oldStatus,
		NewStatus:      newStatus,
	}
}

// PostPublished is raised when a blog post transitions to published.
type PostPublished struct {
	BaseEvent
	PostID string `json:"post_id"`
	Slug   string `json:"slug"`
}

// NewPostPublished creates a PostPublished event.
func NewPostPublished(postID, slug string) PostPublished {
	return PostPublished{
		BaseEvent: BaseEvent{
			AggregateID: postID,
			EventType:   "post.published",
			Timestamp:   time.Now().UTC(),
			Version:     1,
		},
		PostID: postID,
		Slug:   slug,
	}
}

// BroadcastSent is raised after a newsletter/notification broadcast completes.
type BroadcastSent struct {
	BaseEvent
	BroadcastID string `json:"broadcast_id"`
	Attempted   int    `json:"attempted"`
	Delivered   int    `json:"delivered"`
	Failed      int    `json:"failed"`
}

// NewBroadcastSent creates a BroadcastSent event.
func NewBroadcastSent(broadcastID string, attempted, delivered, failed int) BroadcastSent {
	return BroadcastSent{
		BaseEvent: BaseEvent{
			AggregateID: broadcastID,
			EventType:   "broadcast.sent",
			Timestamp:   time.Now().UTC(),
			Version:     1,
		},
		BroadcastID: broadcastID,
		Attempted:   attempted,
		Delivered:   delivered,
		Failed:      failed,
	}
}
