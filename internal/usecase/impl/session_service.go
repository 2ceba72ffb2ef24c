package impl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"taskboard/config"
	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/infra/metrics"
	"taskboard/internal/usecase"
	"taskboard/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	tokens      service.TokenService
	issuer      *sessionIssuer
	events      *eventEmitter
	lifetimes   config.TokenLifetimes
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	TokenService     service.TokenService
	Publisher        service.EventPublisher `optional:"true"`
	Metrics          *metrics.Metrics       `optional:"true"`
	Config           *config.Config
	Logger           *slog.Logger
	Clock            func() time.Time `name:"clock" optional:"true"`
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	now := orNow(params.Clock)

	return &sessionService{
		userRepo:    params.UserRepo,
		refreshRepo: params.RefreshTokenRepo,
		tokens:      params.TokenService,
		issuer: &sessionIssuer{
			tokens:      params.TokenService,
			refreshRepo: params.RefreshTokenRepo,
			now:         now,
		},
		events: &eventEmitter{
			publisher: params.Publisher,
			metrics:   params.Metrics,
			logger:    params.Logger,
			now:       now,
		},
		lifetimes: params.Config.Auth.Refresh,
		metrics:   params.Metrics,
		logger:    params.Logger,
		now:       now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// Refresh rotates the refresh record and issues a new pair.
// The stored hash is swapped only while it still matches the presented token,
// so among concurrent refreshes with one token exactly one succeeds.
func (srv *sessionService) Refresh(ctx context.Context, refreshToken string) (output *usecase.RefreshOutput, err error) {
	defer func() { srv.metrics.ObserveAuth("refresh", err) }()

	refreshToken = strings.TrimSpace(refreshToken)
	userID, err := srv.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		srv.log(ctx).Debug("Refresh rejected, token did not verify", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrRefreshUnauthorized, "refresh token rejected")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Refresh rejected, user no longer exists", slog.Any("userID", userID))

			return nil, errors.Wrap(domainerrors.ErrRefreshUnauthorized, "refresh token owner missing")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	session, expiresAt, err := srv.issuer.sign(user, srv.lifetimes)
	if err != nil {
		return nil, err
	}

	next := &entity.RefreshToken{
		TokenHash: util.HashToken(session.RefreshToken),
		ExpiresAt: expiresAt,
	}
	if err := srv.refreshRepo.Rotate(ctx, userID, util.HashToken(refreshToken), next); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			srv.log(ctx).Warn("Refresh rejected, token superseded or logged out", slog.Any("userID", userID))

			return nil, errors.Wrap(domainerrors.ErrRefreshUnauthorized, "refresh token not current")
		}

		return nil, errors.Wrap(err, "failed to rotate refresh token")
	}

	srv.log(ctx).Debug("Session refreshed", slog.Any("userID", userID))
	srv.events.emit(ctx, service.AuthEventSessionRefreshed, userID, nil)

	return &usecase.RefreshOutput{Session: *session}, nil
}

// Logout deletes the record holding refreshToken, if any.
func (srv *sessionService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { srv.metrics.ObserveAuth("logout", err) }()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	deleted, err := srv.refreshRepo.DeleteByHash(ctx, util.HashToken(refreshToken))
	if err != nil {
		return errors.Wrap(err, "failed to delete refresh token")
	}

	// The subject is informational here; an expired or foreign token still logs out.
	userID, verifyErr := srv.tokens.VerifyRefreshToken(refreshToken)
	if verifyErr != nil {
		userID = uuid.Nil
	}

	srv.log(ctx).Debug("User logged out", slog.Bool("recordDeleted", deleted))
	srv.events.emit(ctx, service.AuthEventUserLoggedOut, userID, map[string]string{
		"record_deleted": strconv.FormatBool(deleted),
	})

	return nil
}

// Authenticate resolves the user behind an access token.
func (srv *sessionService) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	userID, err := srv.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, err.Error())
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "token subject not found")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// CleanupExpiredSessions removes expired refresh records.
func (srv *sessionService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := srv.refreshRepo.DeleteExpired(ctx, srv.now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired refresh tokens")
	}

	srv.metrics.SessionsCleaned(removed)
	if removed > 0 {
		srv.log(ctx).Info("Expired sessions removed", slog.Int64("count", removed))
	}

	return removed, nil
}
