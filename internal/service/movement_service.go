package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// MovementService applies check-ins and check-outs to stock.
type MovementService struct {
	movements  repository.MovementRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// MovementDependencies bundles repositories for movement service.
type MovementDependencies struct {
	MovementRepo repository.MovementRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// MovementInput describes one check-in or check-out request.
type MovementInput struct {
	ItemID           string
	Quantity         int
	RecipientID      string
	DigitalSignature string
	IdempotencyKey   string
}

// MovementResult is a recorded movement. Replayed is true when the
// idempotency key matched an earlier movement and nothing was applied.
type MovementResult struct {
	Movement *domain.Movement
	Replayed bool
}

// MovementListFilter narrows movement listings.
type MovementListFilter struct {
	ItemID      string
	RecipientID string
	Direction   domain.MovementDirection
	From        *time.Time
	To          *time.Time
	Page        repository.Page
}

// NewMovementService constructs the service.
func NewMovementService(deps MovementDependencies) *MovementService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementService{
		movements:  deps.MovementRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CheckIn returns stock to the warehouse.
func (s *MovementService) CheckIn(ctx context.Context, actor domain.Identity, input MovementInput) (*MovementResult, error) {
	return s.record(ctx, actor, domain.MovementCheckIn, input)
}

// CheckOut issues stock, optionally to a recipient employee.
func (s *MovementService) CheckOut(ctx context.Context, actor domain.Identity, input MovementInput) (*MovementResult, error) {
	return s.record(ctx, actor, domain.MovementCheckOut, input)
}

func (s *MovementService) record(ctx context.Context, actor domain.Identity, direction domain.MovementDirection, input MovementInput) (*MovementResult, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"quantity": "quantity must be greater than 0"})
	}
	if input.RecipientID != "" {
		recipient, err := s.users.GetByID(ctx, input.RecipientID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("recipient", map[string]any{"recipientId": input.RecipientID})
			}
			return nil, apperrors.MapError(err)
		}
		if !recipient.Active {
			return nil, apperrors.NewValidationError("recipient account is disabled", map[string]any{"recipientId": input.RecipientID})
		}
	}

	m := &domain.Movement{
		ItemID:           input.ItemID,
		Direction:        direction,
		Quantity:         input.Quantity,
		ActorID:          actor.ID,
		RecipientID:      input.RecipientID,
		DigitalSignature: input.DigitalSignature,
		IdempotencyKey:   input.IdempotencyKey,
	}
	replayed, err := s.movements.Record(ctx, m)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if replayed {
		s.logger.Info("movement replayed", zap.String("movement_id", m.ID), zap.String("idempotency_key", m.IdempotencyKey))
		return &MovementResult{Movement: m, Replayed: true}, nil
	}

	publish(ctx, s.dispatcher, events.EventMovementRecorded, m.ID, actor.ID, events.MovementRecordedPayload{
		ItemID:        m.ItemID,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		QuantityAfter: m.QuantityAfter,
		RecipientID:   m.RecipientID,
		Signed:        m.DigitalSignature != "",
	})
	return &MovementResult{Movement: m}, nil
}

// List returns movements matching filter, newest first.
func (s *MovementService) List(ctx context.Context, filter MovementListFilter) ([]domain.Movement, error) {
	if filter.Direction != "" && !filter.Direction.Valid() {
		return nil, apperrors.NewValidationError("unknown direction", map[string]any{"direction": string(filter.Direction)})
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, apperrors.NewValidationError("from must be before to", nil)
	}
	movements, err := s.movements.List(ctx, repository.MovementFilter{
		ItemID:      filter.ItemID,
		RecipientID: filter.RecipientID,
		Direction:   filter.Direction,
		From:        filter.From,
		To:          filter.To,
		Page:        filter.Page,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return movements, nil
}

// ListMine returns movements where userID was the recipient.
func (s *MovementService) ListMine(ctx context.Context, userID string, page repository.Page) ([]domain.Movement, error) {
	return s.List(ctx, MovementListFilter{RecipientID: userID, Page: page})
}
