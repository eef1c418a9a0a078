package dto

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// ItemRequest payload for create and update. quantity is ignored on update.
type ItemRequest struct {
	SKU         string `json:"sku" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
	Location    string `json:"location" validate:"max=100"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	MinQuantity int    `json:"minQuantity" validate:"gte=0"`
}

// ItemResponse is the public item shape.
type ItemResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"minQuantity"`
	LowStock    bool      `json:"lowStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewItemResponse maps a domain item.
func NewItemResponse(i *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          i.ID,
		SKU:         i.SKU,
		Name:        i.Name,
		Description: i.Description,
		Category:    i.Category,
		Location:    i.Location,
		Quantity:    i.Quantity,
		MinQuantity: i.MinQuantity,
		LowStock:    i.LowStock(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// NewItemList maps a slice of items.
func NewItemList(items []domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewItemResponse(&items[i]))
	}
	return out
}
