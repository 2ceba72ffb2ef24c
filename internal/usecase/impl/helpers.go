// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
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
)

// sessionIssuer signs token pairs and persists the refresh record.
// Login and refresh share it so both flows write the record the same way.
type sessionIssuer struct {
	tokens      service.TokenService
	refreshRepo repository.RefreshTokenRepository
	now         func() time.Time
}

// issue signs a new pair for user and upserts its refresh record.
func (i *sessionIssuer) issue(ctx context.Context, user *entity.User, lifetimes config.TokenLifetimes) (*usecase.Session, error) {
	session, expiresAt, err := i.sign(user, lifetimes)
	if err != nil {
		return nil, err
	}

	if err := i.PersistRefreshToken(ctx, session.RefreshToken, user.ID, expiresAt); err != nil {
		return nil, err
	}

	return session, nil
}

// sign issues both tokens without touching the store.
func (i *sessionIssuer) sign(user *entity.User, lifetimes config.TokenLifetimes) (*usecase.Session, time.Time, error) {
	accessToken, err := i.tokens.IssueAccessToken(user.ID, lifetimes.AccessTTL)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	refreshToken, err := i.tokens.IssueRefreshToken(user.ID, lifetimes.RefreshTTL)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	// The exp claim has second precision.
	expiresAt := i.now().Add(lifetimes.RefreshTTL).Truncate(time.Second)

	return &usecase.Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    lifetimes.AccessTTL,
		RefreshTTL:   lifetimes.RefreshTTL,
	}, expiresAt, nil
}

// PersistRefreshToken stores the digest of token as the only record of userID.
// Store failures are returned to the caller unchanged.
func (i *sessionIssuer) PersistRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	record := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: util.HashToken(token),
		ExpiresAt: expiresAt,
	}

	return errors.Wrap(i.refreshRepo.Upsert(ctx, record), "failed to persist refresh token")
}

// eventEmitter publishes auth events without failing the calling flow.
type eventEmitter struct {
	publisher service.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func (e *eventEmitter) emit(ctx context.Context, eventType string, userID uuid.UUID, metadata map[string]string) {
	if e.publisher == nil {
		return
	}

	event := &service.AuthEvent{
		RequestID:  deliverycontext.RequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: e.now().UTC(),
		Metadata:   metadata,
	}
	if userID == uuid.Nil {
		userID, _ = deliverycontext.UserIDFromContext(ctx)
	}
	if userID != uuid.Nil {
		event.UserID = userID.String()
	}

	if err := e.publisher.PublishAuthEvent(ctx, event); err != nil {
		e.metrics.PublishFailed(eventType)
		deliverycontext.Logger(ctx, e.logger).Warn("Failed to publish auth event",
			slog.String("type", eventType),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}

// orNow returns time.Now when clock is nil.
func orNow(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}

	return clock
}
