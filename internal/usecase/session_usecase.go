package usecase

import (
	"context"

	"taskboard/internal/domain/entity"
)

// RefreshOutput returns the rotated token pair.
type RefreshOutput struct {
	Session
}

// SessionUsecase defines the interface for session management operations.
type SessionUsecase interface {
	// Refresh verifies refreshToken, rotates the stored record and issues a new pair.
	// Every failure is reported as domainerrors.ErrRefreshUnauthorized.
	Refresh(ctx context.Context, refreshToken string) (*RefreshOutput, error)

	// Logout forgets the record holding refreshToken. Unknown or empty tokens are a no-op.
	Logout(ctx context.Context, refreshToken string) error

	// Authenticate resolves the user behind an access token.
	Authenticate(ctx context.Context, accessToken string) (*entity.User, error)

	// CleanupExpiredSessions removes expired refresh records.
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}
