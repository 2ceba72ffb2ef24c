package service

import (
	"time"

	"github.com/google/uuid"
)

// TokenService signs and verifies the two session token classes.
// Access and refresh tokens are signed with different secrets, so a token of
// one class never verifies as the other.
type TokenService interface {
	// IssueAccessToken returns a signed token carrying userID that expires after ttl.
	IssueAccessToken(userID uuid.UUID, ttl time.Duration) (string, error)

	// IssueRefreshToken is IssueAccessToken for the refresh secret.
	IssueRefreshToken(userID uuid.UUID, ttl time.Duration) (string, error)

	// VerifyAccessToken returns the user ID of a valid, unexpired access token.
	// Any failure is reported as domain errors.ErrInvalidToken.
	VerifyAccessToken(token string) (uuid.UUID, error)

	// VerifyRefreshToken is VerifyAccessToken for the refresh secret.
	VerifyRefreshToken(token string) (uuid.UUID, error)
}
