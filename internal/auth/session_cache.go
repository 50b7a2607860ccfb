package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/austinpray/feed-baby/internal/model"
)

// sessionCacheKey holds the memoized session lookup on the echo.Context.
// The cache lives for exactly one request and is keyed implicitly by the
// session_id cookie of that request.
const sessionCacheKey = "feedbaby.session_cache"

// cachedSession distinguishes "not yet looked up" (no context value) from
// "looked up, no session" (Session == nil).
type cachedSession struct {
	Session *model.Session
}

// resolveSession returns the session for the request's session_id cookie,
// querying the store at most once per request regardless of how many
// middlewares or handlers need it. Registration order of the auth and CSRF
// middlewares therefore does not matter.
func resolveSession(c echo.Context, store SessionStore) *model.Session {
	if v := c.Get(sessionCacheKey); v != nil {
		if cached, ok := v.(*cachedSession); ok {
			return cached.Session
		}
	}

	var session *model.Session
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		session = store.Get(c.Request().Context(), cookie.Value)
	}

	c.Set(sessionCacheKey, &cachedSession{Session: session})
	return session
}
