package domain

import "time"

// StockSummary aggregates the warehouse's current stock.
type StockSummary struct {
	ItemCount     int
	TotalQuantity int
	LowStock      []Item
}

// MovementSummary aggregates movements within a period.
type MovementSummary struct {
	From             time.Time
	To               time.Time
	CheckInCount     int
	CheckInQuantity  int
	CheckOutCount    int
	CheckOutQuantity int
}

// Holding is the net quantity of an item currently held by an employee.
type Holding struct {
	UserID   string
	FullName string
	ItemID   string
	ItemName string
	Quantity int
}
