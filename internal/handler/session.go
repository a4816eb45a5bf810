package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"toko/internal/auth"
	"toko/internal/errors"
	"toko/internal/logger"
)

const (
	ctxUserID       = "user_id"
	ctxSessionToken = "session_token"
)

// Sessions binds the session cookie to the session binder.
type Sessions struct {
	binder     *auth.SessionBinder
	cookieName string
	secure     bool
	log        *logger.Logger
}

// NewSessions creates the cookie layer over binder.
func NewSessions(binder *auth.SessionBinder, cookieName string, secure bool, log *logger.Logger) *Sessions {
	return &Sessions{
		binder:     binder,
		cookieName: cookieName,
		secure:     secure,
		log:        log,
	}
}

// Middleware resolves the session cookie once per request. Requests with no
// cookie, or one that no longer resolves, continue anonymously.
func (s *Sessions) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(s.cookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}
		c.Set(ctxSessionToken, cookie.Value)

		userID, ok, err := s.binder.Resolve(c.Request().Context(), cookie.Value)
		if err != nil {
			s.log.Warnw("resolve session", "err", err)
			return next(c)
		}
		if ok {
			c.Set(ctxUserID, userID)
		}
		return next(c)
	}
}

// RequireUser rejects anonymous requests.
func (s *Sessions) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUserID(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "Please log in",
				Code:  "UNAUTHENTICATED",
			})
		}
		return next(c)
	}
}

// CurrentUserID returns the authenticated user of the request, if any.
func CurrentUserID(c echo.Context) (int64, bool) {
	userID, ok := c.Get(ctxUserID).(int64)
	return userID, ok && userID > 0
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(ctxSessionToken).(string)
	return token
}

// start replaces the request's session with a fresh one for userID.
func (s *Sessions) start(c echo.Context, userID int64) error {
	token, err := s.binder.Start(c.Request().Context(), userID, currentToken(c))
	if err != nil {
		return err
	}
	ttl := s.binder.TTL()
	c.SetCookie(&http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(ctxSessionToken, token)
	c.Set(ctxUserID, userID)
	return nil
}

func (s *Sessions) end(c echo.Context) error {
	if err := s.binder.End(c.Request().Context(), currentToken(c)); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
