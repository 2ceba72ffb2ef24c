// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"taskboard/config"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  []byte           // Secret key for signing access tokens.
	refreshSecret []byte           // Secret key for signing refresh tokens.
	now           func() time.Time // Clock used for iat, exp and verification.
}

// NewJWTService is the constructor for jwtService.
// It copies the secrets out of the immutable configuration once.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	svc, err := newJWTService(cfg, time.Now)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func newJWTService(cfg *config.Config, now func() time.Time) (*jwtService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		now:           now,
	}, nil
}

// IssueAccessToken signs an access token for userID.
func (s *jwtService) IssueAccessToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	return s.issue(userID, ttl, s.accessSecret)
}

// IssueRefreshToken signs a refresh token for userID.
func (s *jwtService) IssueRefreshToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	return s.issue(userID, ttl, s.refreshSecret)
}

// VerifyAccessToken validates an access token and returns its subject.
func (s *jwtService) VerifyAccessToken(token string) (uuid.UUID, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its subject.
func (s *jwtService) VerifyRefreshToken(token string) (uuid.UUID, error) {
	return s.verify(token, s.refreshSecret)
}

// issue is a private helper to create a JWT carrying only the subject and timing claims.
func (s *jwtService) issue(userID uuid.UUID, ttl time.Duration, secret []byte) (string, error) {
	if ttl <= 0 {
		return "", errors.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		// jti keeps two tokens minted in the same second distinct.
		ID: uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

func (s *jwtService) verify(token string, secret []byte) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domainerrors.ErrInvalidToken.WrapMessage("empty token")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidToken.WrapMessage(err.Error())
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidToken.WrapMessage("malformed subject")
	}

	return userID, nil
}
