package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	"github.com/spec-kit/inventory-service/internal/service"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// MovementService is the subset of service.MovementService the handler drives.
type MovementService interface {
	CheckIn(ctx context.Context, actor domain.Identity, input service.MovementInput) (*service.MovementResult, error)
	CheckOut(ctx context.Context, actor domain.Identity, input service.MovementInput) (*service.MovementResult, error)
	List(ctx context.Context, filter service.MovementListFilter) ([]domain.Movement, error)
	ListMine(ctx context.Context, userID string, page repository.Page) ([]domain.Movement, error)
}

// MovementsHandler exposes stock movements.
type MovementsHandler struct {
	movements MovementService
}

// NewMovementsHandler constructs handler.
func NewMovementsHandler(movements MovementService) *MovementsHandler {
	return &MovementsHandler{movements: movements}
}

// CheckIn handles POST /api/movements/checkin.
func (h *MovementsHandler) CheckIn(c *fiber.Ctx) error {
	return h.record(c, h.movements.CheckIn)
}

// CheckOut handles POST /api/movements/checkout.
func (h *MovementsHandler) CheckOut(c *fiber.Ctx) error {
	return h.record(c, h.movements.CheckOut)
}

type recordFunc func(context.Context, domain.Identity, service.MovementInput) (*service.MovementResult, error)

// record answers 201 for an applied movement and 200 when the
// Idempotency-Key matched an earlier one.
func (h *MovementsHandler) record(c *fiber.Ctx, fn recordFunc) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	key := c.Get(dto.IdempotencyKeyHeader)
	if key != "" {
		if _, err := uuid.Parse(key); err != nil {
			return apperrors.NewValidationError("invalid idempotency key", map[string]any{dto.IdempotencyKeyHeader: "must be a UUID"})
		}
	}
	var req dto.MovementRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := fn(c.UserContext(), actor, service.MovementInput{
		ItemID:           req.ItemID,
		Quantity:         req.Quantity,
		RecipientID:      req.RecipientID,
		DigitalSignature: req.DigitalSignature,
		IdempotencyKey:   key,
	})
	if err != nil {
		return err
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	return data(c, status, dto.NewMovementResponse(result.Movement))
}

// List handles GET /api/movements?itemId=&recipientId=&direction=&from=&to=.
func (h *MovementsHandler) List(c *fiber.Ctx) error {
	itemID, err := queryID(c, "itemId")
	if err != nil {
		return err
	}
	recipientID, err := queryID(c, "recipientId")
	if err != nil {
		return err
	}
	filter := service.MovementListFilter{
		ItemID:      itemID,
		RecipientID: recipientID,
		Direction:   domain.MovementDirection(c.Query("direction")),
		Page:        parsePage(c),
	}
	from, err := parseTime("from", c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseTime("to", c.Query("to"))
	if err != nil {
		return err
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		filter.To = &to
	}

	movements, err := h.movements.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMovementList(movements), "meta": pageMeta(filter.Page, nil)})
}

// Mine handles GET /api/movements/mine.
func (h *MovementsHandler) Mine(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	page := parsePage(c)
	movements, err := h.movements.ListMine(c.UserContext(), actor.ID, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMovementList(movements), "meta": pageMeta(page, nil)})
}
