package impl

import (
	"context"
	"net/http"
	"testing"

	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/service"
	"taskboard/internal/infra/auth"
	"taskboard/internal/usecase"
	"taskboard/internal/util"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.auth.Register(ctx, usecase.RegisterInput{
		Name:     "Ada",
		Email:    "  Ada@Example.com ",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.Equal(t, entity.RoleUser, out.User.Role)
	assert.NotEqual(t, "correct-horse", out.User.PasswordHash)
	assert.Equal(t, []string{service.AuthEventUserRegistered}, env.publisher.types())
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "Ada", "ada@example.com")

	_, err := env.auth.Register(ctx, usecase.RegisterInput{
		Name:     "Other",
		Email:    "ADA@example.com",
		Password: "another-pass",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode())
	assert.Equal(t, "Email already exists", appErr.Message())

	count, err := env.store.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		input   usecase.RegisterInput
		wantMsg string
	}{
		{name: "missing name", input: usecase.RegisterInput{Email: "a@example.com", Password: "12345678"}, wantMsg: "name is required"},
		{name: "bad email", input: usecase.RegisterInput{Name: "A", Email: "not-an-email", Password: "12345678"}, wantMsg: "email must be a valid email address"},
		{name: "short password", input: usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "1234567"}, wantMsg: "password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.input)
			require.Error(t, err)

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
			assert.Equal(t, tt.wantMsg, appErr.Message())
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "Ada", "ada@example.com")

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: " ADA@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	assert.Equal(t, user.ID, out.User.ID)
	assert.Equal(t, env.cfg.Auth.Login.AccessTTL, out.AccessTTL)
	assert.Equal(t, env.cfg.Auth.Login.RefreshTTL, out.RefreshTTL)

	accessSubject, err := env.tokens.VerifyAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, accessSubject)

	refreshSubject, err := env.tokens.VerifyRefreshToken(out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshSubject)

	record, ok := env.store.RefreshTokenOf(user.ID)
	require.True(t, ok)
	assert.Equal(t, util.HashToken(out.RefreshToken), record.TokenHash)

	assert.Contains(t, env.publisher.types(), service.AuthEventUserLoggedIn)
}

func TestAuthService_Login_ReplacesPreviousRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "Ada", "ada@example.com")

	first, err := env.auth.Login(ctx, usecase.LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	second, err := env.auth.Login(ctx, usecase.LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	count, err := env.store.RefreshTokens().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	record, ok := env.store.RefreshTokenOf(user.ID)
	require.True(t, ok)
	assert.Equal(t, util.HashToken(second.RefreshToken), record.TokenHash)
	assert.NotEqual(t, util.HashToken(first.RefreshToken), record.TokenHash)
}

func TestAuthService_Login_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com")

	tests := []struct {
		name     string
		input    usecase.LoginInput
		wantErr  error
		wantCode int
		wantMsg  string
	}{
		{name: "unknown email", input: usecase.LoginInput{Email: "nobody@example.com", Password: "whatever1"}, wantErr: domainerrors.ErrUserNotFound, wantCode: http.StatusNotFound},
		{name: "wrong password", input: usecase.LoginInput{Email: "ada@example.com", Password: "wrong-horse"}, wantErr: domainerrors.ErrInvalidPassword, wantCode: http.StatusBadRequest},
		{name: "missing password", input: usecase.LoginInput{Email: "ada@example.com"}, wantErr: domainerrors.ErrValidationFailed, wantCode: http.StatusBadRequest},
		{name: "short password", input: usecase.LoginInput{Email: "nobody@example.com", Password: "short"}, wantErr: domainerrors.ErrValidationFailed, wantCode: http.StatusBadRequest, wantMsg: "password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.HTTPCode())
			if tt.wantMsg != "" {
				assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
				assert.Equal(t, tt.wantMsg, appErr.Message())
			}
		})
	}
}

func TestAuthService_Login_PersistFailurePropagates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com")

	refreshRepo := &mockRefreshTokenRepository{}
	refreshRepo.On("Upsert", mock.Anything, mock.Anything).
		Return(domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "failed to upsert refresh token"))

	authSvc := NewAuthService(AuthServiceParams{
		UserRepo:         env.store.Users(),
		RefreshTokenRepo: refreshRepo,
		Hasher:           auth.NewBcryptHasher(env.cfg),
		TokenService:     env.tokens,
		Config:           env.cfg,
		Logger:           newDiscardLogger(),
	})

	_, err := authSvc.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode())
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())
	refreshRepo.AssertExpectations(t)
}

func TestAuthService_PublishFailureDoesNotFailFlow(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")

	user := env.register(t, "Ada", "ada@example.com")
	assert.NotNil(t, user)

	_, err := env.auth.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	assert.NoError(t, err)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, isNew, err := env.auth.EnsureAdmin(ctx, usecase.RegisterInput{Name: "Root", Email: "root@example.com", Password: "super-secret"})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, entity.RoleAdmin, created.Role)

	existing := env.register(t, "Ada", "ada@example.com")
	promoted, isNew, err := env.auth.EnsureAdmin(ctx, usecase.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "ignored-pass"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, existing.ID, promoted.ID)

	stored, err := env.store.Users().FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())
}
