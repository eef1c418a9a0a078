package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// auditedEvents are the state changes that land in the audit log.
var auditedEvents = []events.EventType{
	events.EventItemCreated,
	events.EventItemUpdated,
	events.EventItemDeleted,
	events.EventUserCreated,
	events.EventUserUpdated,
	events.EventUserDeactivated,
	events.EventMovementRecorded,
}

// AuditService writes audit entries for domain events and lists them.
type AuditService struct {
	audits     repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(audits repository.AuditRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{audits: audits, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, t := range auditedEvents {
		a.dispatcher.Subscribe(t, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	entry := &domain.AuditEntry{
		ActorID:    event.ActorID,
		Action:     string(event.Type),
		EntityType: event.Type.EntityType(),
		EntityID:   event.EntityID,
		Details:    detailsOf(event),
	}
	if err := a.audits.Create(ctx, entry); err != nil {
		return err
	}
	a.logger.Debug("audit entry written",
		zap.String("action", entry.Action),
		zap.String("entity_id", entry.EntityID),
		zap.String("event_id", event.ID))
	return nil
}

func detailsOf(event events.Event) map[string]any {
	details := map[string]any{"eventId": event.ID}
	if event.Payload == nil {
		return details
	}
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return details
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return details
	}
	for k, v := range fields {
		details[k] = v
	}
	return details
}

// List returns audit entries, newest first.
func (a *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	entries, err := a.audits.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
