package domain

import (
	"time"

	"teamsqa-backend/application/ports"
)

// Broadcast channels a subscriber can opt into.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Subscriber is a newsletter/notification recipient.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Channels     []string  `json:"channels"`
	ConnectionID string    `json:"connection_id,omitempty"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// HasChannel reports whether the subscriber opted into the given channel.
func (s Subscriber) HasChannel(channel string) bool {
	for _, c := range s.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// ToDocument maps the subscriber to its stored document shape.
func (s Subscriber) ToDocument() ports.Document {
	return ports.Document{
		ID: s.ID,
		Fields: map[string]interface{}{
			"email":         s.Email,
			"name":          s.Name,
			"channels":      s.Channels,
			"connection_id": s.ConnectionID,
			"subscribed_at": s.SubscribedAt.Format(time.RFC3339Nano),
		},
	}
}

// SubscriberFromDocument reconstructs a subscriber from a stored document.
func SubscriberFromDocument(doc ports.Document) Subscriber {
	return Subscriber{
		ID:           doc.ID,
		Email:        fieldString(doc.Fields, "email"),
		Name:         fieldString(doc.Fields, "name"),
		Channels:     fieldStringSlice(doc.Fields, "channels"),
		ConnectionID: fieldString(doc.Fields, "connection_id"),
		SubscribedAt: fieldTime(doc.Fields, "subscribed_at"),
	}
}
