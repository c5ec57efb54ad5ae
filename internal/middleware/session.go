package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/geosearch/internal/auth"
	"github.com/octobees/geosearch/internal/session"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "geosearch_session"

// Session resolves the caller's search session from its signed cookie,
// issuing a new session when the cookie is missing, invalid or expired.
func Session(manager *auth.TokenManager, store *session.Store, secure bool, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sessionID string
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				if claims, err := manager.ParseToken(cookie.Value); err == nil {
					sessionID = claims.SessionID()
				}
			}

			if sessionID == "" {
				id, token, err := manager.NewSession()
				if err != nil {
					logger.Error("issue session token", "request_id", RequestIDFromContext(c), "error", err)
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": "unable to start session"})
				}
				sessionID = id
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(manager.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ContextKeySession, store.Get(sessionID))
			return next(c)
		}
	}
}

// SessionFromContext returns the session resolved by the Session middleware.
func SessionFromContext(c echo.Context) (*session.State, bool) {
	state, ok := c.Get(ContextKeySession).(*session.State)
	return state, ok && state != nil
}
