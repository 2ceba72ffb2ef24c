package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is a persisted authentication event.
type AuditLog struct {
	ID         uuid.UUID
	EventID    string // Publisher-assigned id, unique per event.
	Action     string
	ActorID    *uuid.UUID
	RequestID  string
	Metadata   map[string]string
	OccurredAt time.Time
	CreatedAt  time.Time
}
