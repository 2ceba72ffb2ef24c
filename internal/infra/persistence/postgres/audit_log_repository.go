package postgres

import (
	"context"
	"encoding/json"

	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository is the constructor for auditLogRepository.
func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends an audit log. Redelivered events hit the event_id index
// and come back as repository.ErrAuditLogDuplicate.
func (repo *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	logM, err := fromAuditLogDomain(log)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(logM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrAuditLogDuplicate
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create audit log")
	}

	log.ID = logM.ID
	log.CreatedAt = logM.CreatedAt

	return nil
}

func fromAuditLogDomain(data *entity.AuditLog) (*model.AuditLogModel, error) {
	metadata := data.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode audit metadata")
	}

	return &model.AuditLogModel{
		ID:         data.ID,
		EventID:    data.EventID,
		Action:     data.Action,
		ActorID:    data.ActorID,
		RequestID:  data.RequestID,
		Metadata:   datatypes.JSON(raw),
		OccurredAt: data.OccurredAt,
	}, nil
}
