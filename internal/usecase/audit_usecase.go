package usecase

import (
	"context"

	"taskboard/internal/domain/service"
)

// AuditUsecase persists auth events delivered to the audit worker.
type AuditUsecase interface {
	// Record stores event. Redelivered events are accepted without a second write.
	Record(ctx context.Context, event *service.AuthEvent) error
}
