package domain

import "time"

// MovementDirection tells whether stock enters or leaves the warehouse.
type MovementDirection string

const (
	MovementCheckIn  MovementDirection = "checkin"
	MovementCheckOut MovementDirection = "checkout"
)

// Valid reports whether d is a known direction.
func (d MovementDirection) Valid() bool {
	return d == MovementCheckIn || d == MovementCheckOut
}

// Delta returns the signed stock change for quantity units moving in direction d.
func (d MovementDirection) Delta(quantity int) int {
	if d == MovementCheckOut {
		return -quantity
	}
	return quantity
}

// Movement records a single check-in or check-out.
type Movement struct {
	ID               string
	ItemID           string
	Direction        MovementDirection
	Quantity         int
	QuantityAfter    int
	ActorID          string
	RecipientID      string
	DigitalSignature string
	IdempotencyKey   string
	CreatedAt        time.Time
}
