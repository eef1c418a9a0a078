package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// ItemService manages the item catalog. Stock levels change only through
// MovementService.
type ItemService struct {
	items      repository.ItemRepository
	dispatcher events.Dispatcher
}

// ItemInput carries the descriptive item fields. Quantity is honored on
// create only.
type ItemInput struct {
	SKU         string
	Name        string
	Description string
	Category    string
	Location    string
	Quantity    int
	MinQuantity int
}

// NewItemService constructs the service.
func NewItemService(items repository.ItemRepository, dispatcher events.Dispatcher) *ItemService {
	return &ItemService{items: items, dispatcher: dispatcher}
}

func itemPayload(i *domain.Item) events.ItemPayload {
	return events.ItemPayload{SKU: i.SKU, Name: i.Name, Category: i.Category, Quantity: i.Quantity}
}

func mapItemErr(err error, id string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("item", map[string]any{"id": id})
	case repository.IsUniqueViolation(err):
		return apperrors.NewConflict("sku already exists", nil)
	case repository.IsForeignKeyViolation(err):
		return apperrors.NewConflict("item has recorded movements", map[string]any{"id": id})
	default:
		return apperrors.MapError(err)
	}
}

// Create adds an item to the catalog.
func (s *ItemService) Create(ctx context.Context, actorID string, input ItemInput) (*domain.Item, error) {
	if input.Quantity < 0 || input.MinQuantity < 0 {
		return nil, apperrors.NewValidationError("quantities must not be negative", nil)
	}
	item := &domain.Item{
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		Quantity:    input.Quantity,
		MinQuantity: input.MinQuantity,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, mapItemErr(err, "")
	}
	publish(ctx, s.dispatcher, events.EventItemCreated, item.ID, actorID, itemPayload(item))
	return item, nil
}

// Get fetches an item by id.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, mapItemErr(err, id)
	}
	return item, nil
}

// List searches the catalog.
func (s *ItemService) List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Update replaces the descriptive fields of an item.
func (s *ItemService) Update(ctx context.Context, actorID, id string, input ItemInput) (*domain.Item, error) {
	if input.MinQuantity < 0 {
		return nil, apperrors.NewValidationError("minQuantity must not be negative", nil)
	}
	item := &domain.Item{
		ID:          id,
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		MinQuantity: input.MinQuantity,
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, mapItemErr(err, id)
	}
	publish(ctx, s.dispatcher, events.EventItemUpdated, item.ID, actorID, itemPayload(item))
	return item, nil
}

// Delete removes an item that has no movement history.
func (s *ItemService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return mapItemErr(err, id)
	}
	publish(ctx, s.dispatcher, events.EventItemDeleted, id, actorID, nil)
	return nil
}
