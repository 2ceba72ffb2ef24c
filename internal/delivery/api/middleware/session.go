package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/constants"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	contextKeyUser = "user"
	bearerPrefix   = "Bearer "
)

// SessionMiddleware gates protected routes on a valid access token.
type SessionMiddleware struct {
	sessions usecase.SessionUsecase
	logger   *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(sessions usecase.SessionUsecase, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, logger: logger}
}

// Authenticate resolves the access token from the accessToken cookie, or from
// an Authorization bearer header when the cookie is absent, and stores the
// user on the echo context.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := accessToken(c)
		if token == "" {
			return errors.WithStack(domainerrors.ErrUnauthorized)
		}

		ctx := c.Request().Context()
		user, err := m.sessions.Authenticate(ctx, token)
		if err != nil {
			return errors.WithStack(err)
		}

		c.Set(contextKeyUser, user)

		reqLogger := deliverycontext.Logger(ctx, m.logger).
			With(slog.String("user_id", user.ID.String()))
		ctx = deliverycontext.WithUserID(ctx, user.ID)
		ctx = deliverycontext.WithLogger(ctx, reqLogger)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRole rejects users without the given role. It must run after Authenticate.
func (m *SessionMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := GetUser(c)
			if !ok {
				return errors.WithStack(domainerrors.ErrUnauthorized)
			}

			if user.Role != role {
				return errors.WithStack(domainerrors.ErrForbidden)
			}

			return next(c)
		}
	}
}

// GetUser returns the authenticated user stored by Authenticate.
func GetUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(contextKeyUser).(*entity.User)

	return user, ok && user != nil
}

// GetUserID returns the authenticated user's id.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	user, ok := GetUser(c)
	if !ok {
		return uuid.Nil, false
	}

	return user.ID, true
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, bearerPrefix); ok {
		return strings.TrimSpace(token)
	}

	return ""
}
