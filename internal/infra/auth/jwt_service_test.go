package auth

import (
	"testing"
	"time"

	"taskboard/config"
	domainerrors "taskboard/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test_access_secret_key_very_long_for_testing"
	testRefreshSecret = "test_refresh_secret_key_very_long_for_testing"
)

func testJWTConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = testAccessSecret
	cfg.SecretKey.Refresh = testRefreshSecret

	return cfg
}

// fakeClock is a settable time source for expiry tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestJWTService(t *testing.T) (*jwtService, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	svc, err := newJWTService(testJWTConfig(), clock.Now)
	require.NoError(t, err)

	return svc, clock
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc, _ := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc, _ := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.IssueRefreshToken(userID, 48*time.Hour)
	require.NoError(t, err)

	got, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTService_SecretsAreSeparated(t *testing.T) {
	svc, _ := newTestJWTService(t)
	userID := uuid.New()

	access, err := svc.IssueAccessToken(userID, time.Hour)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(userID, time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(access)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))

	_, err = svc.VerifyAccessToken(refresh)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestJWTService_Expiry(t *testing.T) {
	svc, clock := newTestJWTService(t)
	userID := uuid.New()
	issuedAt := clock.now

	token, err := svc.IssueAccessToken(userID, time.Hour)
	require.NoError(t, err)

	clock.now = issuedAt.Add(59*time.Minute + 59*time.Second)
	got, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	clock.now = issuedAt.Add(time.Hour)
	_, err = svc.VerifyAccessToken(token)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))

	clock.now = issuedAt.Add(2 * time.Hour)
	_, err = svc.VerifyAccessToken(token)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestJWTService_TokensIssuedTogetherDiffer(t *testing.T) {
	svc, _ := newTestJWTService(t)
	userID := uuid.New()

	first, err := svc.IssueRefreshToken(userID, time.Hour)
	require.NoError(t, err)
	second, err := svc.IssueRefreshToken(userID, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWTService_RejectsInvalidTokens(t *testing.T) {
	svc, clock := newTestJWTService(t)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":           "",
		"garbage":         "clearly-not-a-jwt-token-format",
		"wrong algorithm": hs512,
		"missing expiry":  noExpiry,
		"bad subject":     badSubject,
		"wrong secret":    otherSecret,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			userID, err := svc.VerifyAccessToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
			assert.Equal(t, uuid.Nil, userID)
		})
	}
}

func TestJWTService_RejectsNonPositiveTTL(t *testing.T) {
	svc, _ := newTestJWTService(t)

	_, err := svc.IssueAccessToken(uuid.New(), 0)
	assert.Error(t, err)
}

func TestNewJWTService_SecretValidation(t *testing.T) {
	empty := &config.Config{}
	svc, err := NewJWTService(empty)
	assert.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "jwt secrets must be provided")

	shared := testJWTConfig()
	shared.SecretKey.Refresh = shared.SecretKey.Access
	_, err = NewJWTService(shared)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}
