package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/austinpray/feed-baby/internal/errors"
	"github.com/austinpray/feed-baby/internal/model"
)

const (
	// SessionCookieName is the cookie carrying the session id.
	SessionCookieName = "session_id"
	// CSRFHeader is the request header the client echoes the CSRF token in.
	CSRFHeader = "X-CSRFToken"

	contextUserKey = "feedbaby.user"
	contextCSRFKey = "feedbaby.csrf_token"
)

// UserLookup resolves a user by id for the auth middleware.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// LoadUser attaches the authenticated user and CSRF token to the request
// context when the session cookie resolves. It never blocks a request;
// authorization is decided per handler via CurrentUser.
func LoadUser(store SessionStore, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := resolveSession(c, store)
			if session != nil {
				user, err := users.GetByID(c.Request().Context(), session.UserID)
				// A dangling session (user row gone, or lookup failed)
				// degrades to anonymous.
				if err == nil && user != nil {
					c.Set(contextUserKey, user)
					c.Set(contextCSRFKey, session.CSRFToken)
				}
			}
			return next(c)
		}
	}
}

// CSRF rejects state-changing requests from authenticated sessions that do
// not echo the session's CSRF token in the X-CSRFToken header. Safe methods
// and unauthenticated requests pass through unchecked; registration and
// login have no session yet to carry a token.
func CSRF(store SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				return next(c)
			}

			session := resolveSession(c, store)
			if session == nil {
				return next(c)
			}

			clientToken := c.Request().Header.Get(CSRFHeader)
			if clientToken == "" {
				return c.JSON(http.StatusForbidden, errors.ErrorResponse{
					Error: "CSRF token missing",
					Code:  "CSRF_TOKEN_MISSING",
				})
			}
			if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(clientToken)) != 1 {
				return c.JSON(http.StatusForbidden, errors.ErrorResponse{
					Error: "CSRF token invalid",
					Code:  "CSRF_TOKEN_INVALID",
				})
			}
			return next(c)
		}
	}
}

// CurrentUser is the authorization guard handlers call explicitly. It returns
// the user attached by LoadUser, or false for anonymous requests.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(contextUserKey).(*model.User)
	return user, ok && user != nil
}

// CSRFToken returns the CSRF token of the current session, if any. Handlers
// embed it in responses so the client can echo it on protected writes.
func CSRFToken(c echo.Context) (string, bool) {
	token, ok := c.Get(contextCSRFKey).(string)
	return token, ok && token != ""
}
