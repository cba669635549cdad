package types

import "time"

// UserEventType names a user lifecycle transition.
type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// Message attributes set on every published UserEvent.
const (
	EventTypeAttribute   = "event_type"
	EventUserIDAttribute = "user_id"
)

// UserEvent is published to the message broker after a user changes.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	User       User          `json:"user"`
	OccurredAt time.Time     `json:"occurred_at"`
}
