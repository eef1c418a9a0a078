package dto

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// IdempotencyKeyHeader carries the client-chosen key that makes a movement
// submission safe to replay.
const IdempotencyKeyHeader = "Idempotency-Key"

// MovementRequest payload for check-in and check-out.
type MovementRequest struct {
	ItemID           string `json:"itemId" validate:"required,uuid"`
	Quantity         int    `json:"quantity" validate:"gt=0"`
	RecipientID      string `json:"recipientId,omitempty" validate:"omitempty,uuid"`
	DigitalSignature string `json:"digitalSignature,omitempty" validate:"max=10000"`
}

// MovementResponse is a recorded movement.
type MovementResponse struct {
	ID               string                   `json:"id"`
	ItemID           string                   `json:"itemId"`
	Direction        domain.MovementDirection `json:"direction"`
	Quantity         int                      `json:"quantity"`
	QuantityAfter    int                      `json:"quantityAfter"`
	ActorID          string                   `json:"actorId"`
	RecipientID      string                   `json:"recipientId,omitempty"`
	DigitalSignature string                   `json:"digitalSignature,omitempty"`
	IdempotencyKey   string                   `json:"idempotencyKey,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
}

// NewMovementResponse maps a domain movement.
func NewMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Direction:        m.Direction,
		Quantity:         m.Quantity,
		QuantityAfter:    m.QuantityAfter,
		ActorID:          m.ActorID,
		RecipientID:      m.RecipientID,
		DigitalSignature: m.DigitalSignature,
		IdempotencyKey:   m.IdempotencyKey,
		CreatedAt:        m.CreatedAt,
	}
}

// NewMovementList maps a slice of movements.
func NewMovementList(movements []domain.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, NewMovementResponse(&movements[i]))
	}
	return out
}
