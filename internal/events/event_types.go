package events

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventItemCreated      EventType = "item.created"
	EventItemUpdated      EventType = "item.updated"
	EventItemDeleted      EventType = "item.deleted"
	EventUserCreated      EventType = "user.created"
	EventUserUpdated      EventType = "user.updated"
	EventUserDeactivated  EventType = "user.deactivated"
	EventMovementRecorded EventType = "movement.recorded"
)

// EntityType names the aggregate an event refers to.
func (t EventType) EntityType() string {
	switch t {
	case EventItemCreated, EventItemUpdated, EventItemDeleted:
		return "item"
	case EventUserCreated, EventUserUpdated, EventUserDeactivated:
		return "user"
	case EventMovementRecorded:
		return "movement"
	default:
		return "unknown"
	}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  string    `json:"entityId"`
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ItemPayload describes an item after the change.
type ItemPayload struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity"`
}

// UserPayload describes a user after the change.
type UserPayload struct {
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Active bool        `json:"active"`
}

// MovementRecordedPayload is published for every applied check-in or check-out.
type MovementRecordedPayload struct {
	ItemID        string                   `json:"itemId"`
	Direction     domain.MovementDirection `json:"direction"`
	Quantity      int                      `json:"quantity"`
	QuantityAfter int                      `json:"quantityAfter"`
	RecipientID   string                   `json:"recipientId,omitempty"`
	Signed        bool                     `json:"signed"`
}
