package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austinpray/feed-baby/internal/model"
)

// fakeSessionStore is an in-memory SessionStore that counts lookups so tests
// can prove the per-request cache holds storage traffic to one query.
type fakeSessionStore struct {
	sessions map[string]*model.Session
	getCalls int
}

func newFakeSessionStore(sessions ...*model.Session) *fakeSessionStore {
	store := &fakeSessionStore{sessions: make(map[string]*model.Session)}
	for _, s := range sessions {
		store.sessions[s.ID] = s
	}
	return store
}

func (f *fakeSessionStore) Create(ctx context.Context, userID uint) (*model.Session, error) {
	panic("not used in middleware tests")
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) *model.Session {
	f.getCalls++
	return f.sessions[id]
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) {
	delete(f.sessions, id)
}

// fakeUserLookup resolves a fixed set of users.
type fakeUserLookup struct {
	users map[uint]*model.User
}

func (f *fakeUserLookup) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, echo.ErrNotFound
}

func testSession() *model.Session {
	return &model.Session{ID: "sess-1", UserID: 1, CSRFToken: "csrf-secret"}
}

func testApp(middlewares ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(middlewares...)
	handler := func(c echo.Context) error {
		resp := map[string]interface{}{"ok": true}
		if user, ok := CurrentUser(c); ok {
			resp["username"] = user.Username
		}
		if token, ok := CSRFToken(c); ok {
			resp["csrf_token"] = token
		}
		return c.JSON(http.StatusOK, resp)
	}
	e.GET("/probe", handler)
	e.POST("/probe", handler)
	return e
}

func doRequest(e *echo.Echo, method string, headers map[string]string, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/probe", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoadUserStates(t *testing.T) {
	users := &fakeUserLookup{users: map[uint]*model.User{1: {ID: 1, Username: "alice"}}}

	tests := []struct {
		name       string
		cookie     string
		wantUser   string
		wantAnon   bool
	}{
		{name: "no cookie is anonymous", cookie: "", wantAnon: true},
		{name: "valid session attaches user", cookie: "sess-1", wantUser: "alice"},
		{name: "unknown session is anonymous", cookie: "forged", wantAnon: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeSessionStore(testSession())
			e := testApp(LoadUser(store, users))

			rec := doRequest(e, http.MethodGet, nil, tt.cookie)
			require.Equal(t, http.StatusOK, rec.Code, "auth middleware must never block")

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantAnon {
				assert.NotContains(t, body, "username")
				assert.NotContains(t, body, "csrf_token")
			} else {
				assert.Equal(t, tt.wantUser, body["username"])
				assert.Equal(t, "csrf-secret", body["csrf_token"])
			}
		})
	}
}

func TestLoadUserDanglingSessionIsAnonymous(t *testing.T) {
	// Session row exists but the user it points at is gone.
	store := newFakeSessionStore(&model.Session{ID: "sess-orphan", UserID: 99, CSRFToken: "tok"})
	users := &fakeUserLookup{users: map[uint]*model.User{}}
	e := testApp(LoadUser(store, users))

	rec := doRequest(e, http.MethodGet, nil, "sess-orphan")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "username")
}

func TestCSRF(t *testing.T) {
	users := &fakeUserLookup{users: map[uint]*model.User{1: {ID: 1, Username: "alice"}}}

	tests := []struct {
		name       string
		method     string
		cookie     string
		header     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "safe method passes unchecked",
			method:     http.MethodGet,
			cookie:     "sess-1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unauthenticated write passes unchecked",
			method:     http.MethodPost,
			cookie:     "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "stale cookie counts as unauthenticated",
			method:     http.MethodPost,
			cookie:     "forged",
			wantStatus: http.StatusOK,
		},
		{
			name:       "authenticated write without token",
			method:     http.MethodPost,
			cookie:     "sess-1",
			wantStatus: http.StatusForbidden,
			wantCode:   "CSRF_TOKEN_MISSING",
		},
		{
			name:       "authenticated write with wrong token",
			method:     http.MethodPost,
			cookie:     "sess-1",
			header:     "not-the-token",
			wantStatus: http.StatusForbidden,
			wantCode:   "CSRF_TOKEN_INVALID",
		},
		{
			name:       "authenticated write with matching token",
			method:     http.MethodPost,
			cookie:     "sess-1",
			header:     "csrf-secret",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeSessionStore(testSession())
			e := testApp(LoadUser(store, users), CSRF(store))

			headers := map[string]string{}
			if tt.header != "" {
				headers[CSRFHeader] = tt.header
			}
			rec := doRequest(e, tt.method, headers, tt.cookie)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
			}
		})
	}
}

// Both middlewares resolve the session through the request-scoped cache, so
// registration order must not change behavior and the store must be queried
// at most once per request.
func TestMiddlewareOrderIndependence(t *testing.T) {
	users := &fakeUserLookup{users: map[uint]*model.User{1: {ID: 1, Username: "alice"}}}

	orders := []struct {
		name  string
		build func(store SessionStore) []echo.MiddlewareFunc
	}{
		{
			name: "auth before csrf",
			build: func(store SessionStore) []echo.MiddlewareFunc {
				return []echo.MiddlewareFunc{LoadUser(store, users), CSRF(store)}
			},
		},
		{
			name: "csrf before auth",
			build: func(store SessionStore) []echo.MiddlewareFunc {
				return []echo.MiddlewareFunc{CSRF(store), LoadUser(store, users)}
			},
		},
	}

	for _, order := range orders {
		t.Run(order.name, func(t *testing.T) {
			store := newFakeSessionStore(testSession())
			e := testApp(order.build(store)...)

			// Authenticated write with the right token succeeds.
			rec := doRequest(e, http.MethodPost, map[string]string{CSRFHeader: "csrf-secret"}, "sess-1")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 1, store.getCalls, "session must be looked up exactly once per request")

			// Authenticated write with a bad token is rejected identically.
			store.getCalls = 0
			rec = doRequest(e, http.MethodPost, map[string]string{CSRFHeader: "wrong"}, "sess-1")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, 1, store.getCalls)

			// Anonymous read performs no lookup at all.
			store.getCalls = 0
			rec = doRequest(e, http.MethodGet, nil, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 0, store.getCalls)
		})
	}
}
