package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenModel mirrors the 'refresh_tokens' table.
// The unique index on user_id is the conflict target of every upsert.
type RefreshTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_refresh_tokens_user_id;not null"`
	TokenHash string    `gorm:"type:char(64);index:idx_refresh_tokens_token_hash;not null"`
	ExpiresAt time.Time `gorm:"not null;index:idx_refresh_tokens_expires_at"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
