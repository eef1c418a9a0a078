package domain

import "time"

// Item is a stocked piece of equipment or consumable.
type Item struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	Location    string
	Quantity    int
	MinQuantity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}
