package repository

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrRefreshTokenNotFound is returned when no record matches.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository stores at most one refresh token record per user.
// Every write is keyed by user ID so that a newer session replaces the older one.
type RefreshTokenRepository interface {
	// Upsert inserts the record or replaces the existing record for token.UserID.
	Upsert(ctx context.Context, token *entity.RefreshToken) error

	// Rotate replaces the record for userID only if it still holds oldHash.
	// Returns ErrRefreshTokenNotFound when the stored hash differs or no record exists.
	Rotate(ctx context.Context, userID uuid.UUID, oldHash string, next *entity.RefreshToken) error

	// DeleteByHash removes the record holding tokenHash and reports whether one existed.
	DeleteByHash(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpired removes every record that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}
