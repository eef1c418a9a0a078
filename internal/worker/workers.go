package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/service"
)

// StartAuditWorker registers audit trail handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// StartMovementForwarder publishes recorded movements to the configured AMQP
// queue. It returns nil when forwarding is disabled. A broker that cannot be
// reached at startup is logged and skipped so the API still serves.
func StartMovementForwarder(cfg config.AMQPConfig, dispatcher events.Dispatcher, logger *zap.Logger) *events.AMQPPublisher {
	if cfg.URL == "" || dispatcher == nil {
		return nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.URL, cfg.MovementsQueue, logger)
	if err != nil {
		logger.Warn("movement forwarding disabled", zap.Error(err))
		return nil
	}
	publisher.Subscribe(dispatcher, events.EventMovementRecorded)
	logger.Info("forwarding movements", zap.String("queue", cfg.MovementsQueue))
	return publisher
}
