package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogModel mirrors the 'audit_logs' table written by the audit worker.
type AuditLogModel struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID    string         `gorm:"type:varchar(64);uniqueIndex:idx_audit_logs_event_id;not null"`
	Action     string         `gorm:"type:varchar(64);not null"`
	ActorID    *uuid.UUID     `gorm:"type:uuid;index"`
	RequestID  string         `gorm:"type:varchar(128)"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;default:'{}'::jsonb"`
	OccurredAt time.Time      `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

// TableName explicitly sets the table name for GORM.
func (AuditLogModel) TableName() string {
	return "audit_logs"
}
