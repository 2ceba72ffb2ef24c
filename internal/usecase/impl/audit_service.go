package impl

import (
	"context"
	"log/slog"

	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/infra/metrics"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type auditService struct {
	auditRepo repository.AuditLogRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// AuditServiceParams holds dependencies for AuditService, injected by Fx.
type AuditServiceParams struct {
	fx.In

	AuditRepo repository.AuditLogRepository
	Metrics   *metrics.Metrics `optional:"true"`
	Logger    *slog.Logger
}

// NewAuditService is the constructor for auditService.
func NewAuditService(params AuditServiceParams) usecase.AuditUsecase {
	return &auditService{
		auditRepo: params.AuditRepo,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
}

// Record stores one auth event. A duplicate event ID is treated as already done.
func (srv *auditService) Record(ctx context.Context, event *service.AuthEvent) error {
	logger := deliverycontext.Logger(ctx, srv.logger)

	if event == nil || event.EventID == "" || event.Type == "" {
		srv.metrics.AuditEvent(metrics.OutcomeFailure)

		return domainerrors.ErrValidationFailed.WithMessage("event_id and type are required")
	}

	log := &entity.AuditLog{
		EventID:    event.EventID,
		Action:     event.Type,
		RequestID:  event.RequestID,
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt,
	}
	if event.UserID != "" {
		actorID, err := uuid.Parse(event.UserID)
		if err != nil {
			srv.metrics.AuditEvent(metrics.OutcomeFailure)

			return domainerrors.ErrValidationFailed.WithMessage("user_id must be a valid UUID")
		}
		log.ActorID = &actorID
	}

	if err := srv.auditRepo.Create(ctx, log); err != nil {
		if errors.Is(err, repository.ErrAuditLogDuplicate) {
			logger.Debug("Audit event already recorded", slog.String("event_id", event.EventID))
			srv.metrics.AuditEvent("duplicate")

			return nil
		}
		srv.metrics.AuditEvent(metrics.OutcomeFailure)

		return errors.Wrap(err, "failed to record audit event")
	}

	srv.metrics.AuditEvent(metrics.OutcomeSuccess)
	logger.Info("Audit event recorded",
		slog.String("event_id", event.EventID),
		slog.String("type", event.Type),
	)

	return nil
}
