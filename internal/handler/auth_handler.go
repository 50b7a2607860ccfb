package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/austinpray/feed-baby/internal/auth"
	"github.com/austinpray/feed-baby/internal/config"
	"github.com/austinpray/feed-baby/internal/errors"
	"github.com/austinpray/feed-baby/internal/service"
)

// nextPaths is the fixed allow-list of post-login destinations. The login
// form carries an opaque token, never a raw URL, so the redirect can not be
// pointed anywhere else.
var nextPaths = map[string]string{
	"feeds_new":  "/feeds/new",
	"feeds_list": "/feeds",
}

// NextPath maps a next token to its internal destination. Unknown tokens,
// raw paths and absolute URLs all fall back to the home page.
func NextPath(token string) string {
	if path, ok := nextPaths[token]; ok {
		return path
	}
	return "/"
}

// AuthHandler handles identity endpoints.
type AuthHandler struct {
	users    service.UserService
	sessions auth.SessionStore
	cfg      *config.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users service.UserService, sessions auth.SessionStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, cfg: cfg}
}

// CredentialsRequest represents a login or registration form submission.
type CredentialsRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"next,omitempty" form:"next"`
}

// LoginPageResponse describes the login form for the client.
type LoginPageResponse struct {
	Next string `json:"next,omitempty"`
}

// RegisterPage godoc
// @Summary Describe the registration form
// @Tags auth
// @Produce json
// @Success 200 {object} LoginPageResponse
// @Router /register [get]
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.JSON(http.StatusOK, LoginPageResponse{})
}

// Register godoc
// @Summary Register a new user and log them in
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 303
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	// Auto-login: registration creates a session like a successful login.
	session, err := h.sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	h.setSessionCookie(c, session.ID)
	return c.Redirect(http.StatusSeeOther, "/")
}

// LoginPage godoc
// @Summary Describe the login form
// @Tags auth
// @Produce json
// @Param next query string false "Post-login destination token"
// @Success 200 {object} LoginPageResponse
// @Router /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, LoginPageResponse{Next: c.QueryParam("next")})
}

// Login godoc
// @Summary Authenticate and start a session
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param next formData string false "Post-login destination token"
// @Success 303
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	session, err := h.sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	h.setSessionCookie(c, session.ID)
	return c.Redirect(http.StatusSeeOther, NextPath(req.Next))
}

// Logout godoc
// @Summary End the current session
// @Tags auth
// @Produce json
// @Success 303
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Delete(c.Request().Context(), cookie.Value)
	}
	h.clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) setSessionCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.cfg.SecureCookies(),
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.cfg.SecureCookies(),
	})
}
