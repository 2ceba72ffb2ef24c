package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain/entity"
)

// ErrAuditLogDuplicate is returned when an event ID has already been recorded.
var ErrAuditLogDuplicate = errors.New("audit log already recorded")

// AuditLogRepository appends authentication events.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
