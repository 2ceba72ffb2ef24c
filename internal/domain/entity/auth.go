// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the single outstanding refresh credential of a user.
// Only a SHA-256 digest of the signed token is kept.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this refresh token record.
	UserID    uuid.UUID // Owner reference; at most one record exists per user.
	TokenHash string    // Hex SHA-256 of the signed refresh token.
	ExpiresAt time.Time // Matches the exp claim of the token it represents.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the record is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
