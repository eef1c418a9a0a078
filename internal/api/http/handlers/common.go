package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// bind parses the JSON body into req and runs its validate tags.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return apperrors.ValidateStruct(req)
}

func principal(c *fiber.Ctx) (domain.Identity, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	return p.Identity, nil
}

// pathID returns the :id route parameter once it parses as a UUID.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid id", map[string]any{"id": "must be a UUID"})
	}
	return id, nil
}

// queryID returns an optional UUID query parameter. An absent value is "".
func queryID(c *fiber.Ctx, key string) (string, error) {
	val := c.Query(key)
	if val == "" {
		return "", nil
	}
	if _, err := uuid.Parse(val); err != nil {
		return "", apperrors.NewValidationError("invalid id", map[string]any{key: "must be a UUID"})
	}
	return val, nil
}

func parsePage(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Limit:  parseInt(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset"), 0),
	}.Normalize()
}

func pageMeta(p repository.Page, total *int) dto.PageMeta {
	return dto.PageMeta{Limit: p.Limit, Offset: p.Offset, Total: total}
}

// parseTime accepts RFC3339 timestamps or plain dates. An empty value yields
// the zero time.
func parseTime(key, val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, val); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.NewValidationError("invalid time", map[string]any{key: "must be RFC3339 or YYYY-MM-DD"})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
