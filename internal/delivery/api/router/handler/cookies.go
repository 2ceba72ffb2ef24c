package handler

import (
	"net/http"
	"strings"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/constants"
	"taskboard/internal/usecase"

	"github.com/labstack/echo/v4"
)

// sessionCookies writes and clears the accessToken and refreshToken cookies.
type sessionCookies struct {
	secure   bool
	sameSite http.SameSite
	domain   string
}

func newSessionCookies(cfg config.CookieConfig) *sessionCookies {
	return &sessionCookies{
		secure:   cfg.Secure,
		sameSite: parseSameSite(cfg.SameSite),
		domain:   cfg.Domain,
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}

// set writes both cookies with Max-Age equal to each token's lifetime.
func (s *sessionCookies) set(c echo.Context, session *usecase.Session) {
	c.SetCookie(s.cookie(constants.CookieAccessToken, session.AccessToken, session.AccessTTL))
	c.SetCookie(s.cookie(constants.CookieRefreshToken, session.RefreshToken, session.RefreshTTL))
}

// clear expires both cookies on the client.
func (s *sessionCookies) clear(c echo.Context) {
	for _, name := range []string{constants.CookieAccessToken, constants.CookieRefreshToken} {
		cookie := s.cookie(name, "", 0)
		cookie.MaxAge = -1
		c.SetCookie(cookie)
	}
}

func (s *sessionCookies) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite,
	}
}
