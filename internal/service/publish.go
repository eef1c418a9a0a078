package service

import (
	"context"

	"github.com/spec-kit/inventory-service/internal/events"
)

func publish(ctx context.Context, d events.Dispatcher, t events.EventType, entityID, actorID string, payload any) {
	if d == nil {
		return
	}
	_ = d.Publish(ctx, events.Event{Type: t, EntityID: entityID, ActorID: actorID, Payload: payload})
}
