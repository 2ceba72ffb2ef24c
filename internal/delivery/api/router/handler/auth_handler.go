// Package handler contains the HTTP handlers of the API server.
package handler

import (
	"net/http"

	"taskboard/config"
	"taskboard/internal/delivery/api/middleware"
	"taskboard/internal/delivery/api/response"
	"taskboard/internal/domain/constants"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandler serves registration, login and the session lifecycle routes.
type AuthHandler struct {
	auth     usecase.AuthUsecase
	sessions usecase.SessionUsecase
	cookies  *sessionCookies
}

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	Auth     usecase.AuthUsecase
	Sessions usecase.SessionUsecase
	Config   *config.Config
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		auth:     params.Auth,
		sessions: params.Sessions,
		cookies:  newSessionCookies(params.Config.Cookie),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("Invalid registration input"))
	}

	output, err := h.auth.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		User:    newUserResponse(output.User),
	})
}

// Login handles POST /api/auth/login and sets both session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("Invalid login input"))
	}

	output, err := h.auth.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.set(c, &output.Session)

	return response.Success(c, http.StatusOK, SessionResponse{
		User:    newUserResponse(output.User),
		Auth:    true,
		Message: "Login Successfully",
	})
}

// Refresh handles GET /api/auth/refresh. It rotates the refresh record and
// replaces both cookies.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var token string
	if cookie, err := c.Cookie(constants.CookieRefreshToken); err == nil {
		token = cookie.Value
	}

	output, err := h.sessions.Refresh(c.Request().Context(), token)
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.set(c, &output.Session)

	return response.Success(c, http.StatusOK, SessionResponse{
		User:    newUserResponse(output.User),
		Auth:    true,
		Message: "Token refreshed",
	})
}

// Logout handles GET /api/auth/logout. Both cookies are cleared even when
// the store call fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.clear(c)

	var token string
	if cookie, err := c.Cookie(constants.CookieRefreshToken); err == nil {
		token = cookie.Value
	}

	if err := h.sessions.Logout(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, SessionResponse{
		User:    nil,
		Auth:    false,
		Message: "Logout Successfully",
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return errors.WithStack(domainerrors.ErrUnauthorized)
	}

	return response.Success(c, http.StatusOK, SessionResponse{
		User: newUserResponse(user),
		Auth: true,
	})
}

// CleanupSessions handles POST /api/admin/sessions/cleanup, running the
// janitor's sweep on demand.
func (h *AuthHandler) CleanupSessions(c echo.Context) error {
	removed, err := h.sessions.CleanupExpiredSessions(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"removed": removed})
}
