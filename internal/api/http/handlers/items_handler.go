package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	"github.com/spec-kit/inventory-service/internal/service"
)

// ItemService is the subset of service.ItemService the handler drives.
type ItemService interface {
	Create(ctx context.Context, actorID string, input service.ItemInput) (*domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error)
	Update(ctx context.Context, actorID, id string, input service.ItemInput) (*domain.Item, error)
	Delete(ctx context.Context, actorID, id string) error
}

// ItemsHandler exposes the item catalog.
type ItemsHandler struct {
	items ItemService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(items ItemService) *ItemsHandler {
	return &ItemsHandler{items: items}
}

func itemInput(req dto.ItemRequest) service.ItemInput {
	return service.ItemInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
	}
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.items.Create(c.UserContext(), actor.ID, itemInput(req))
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewItemResponse(item))
}

// List handles GET /api/items?search=&category=&lowStock=&limit=&offset=.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	page := parsePage(c)
	items, err := h.items.List(c.UserContext(), repository.ItemFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		LowStock: c.QueryBool("lowStock", false),
		Page:     page,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemList(items), "meta": pageMeta(page, nil)})
}

// Get handles GET /api/items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.items.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewItemResponse(item))
}

// Update handles PUT /api/items/:id.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.items.Update(c.UserContext(), actor.ID, id, itemInput(req))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewItemResponse(item))
}

// Delete handles DELETE /api/items/:id.
func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.items.Delete(c.UserContext(), actor.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
