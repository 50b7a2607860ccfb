package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/austinpray/feed-baby/internal/auth"
	"github.com/austinpray/feed-baby/internal/handler"
)

// Register wires routes and middleware. The auth and CSRF middlewares are
// applied app-wide; both resolve the session through the per-request cache,
// so their order here is immaterial.
func Register(
	e *echo.Echo,
	sessions auth.SessionStore,
	users auth.UserLookup,
	authHandler *handler.AuthHandler,
	feedHandler *handler.FeedHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(auth.LoadUser(sessions, users))
	e.Use(auth.CSRF(sessions))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Feeds
	e.GET("/", feedHandler.Home)
	e.GET("/feeds", feedHandler.List)
	e.GET("/feeds.ics", feedHandler.Calendar)
	e.GET("/feeds/new", feedHandler.NewForm)
	e.POST("/feeds", feedHandler.Create)
	e.DELETE("/feeds/:id", feedHandler.Delete)

	// Identity
	e.GET("/register", authHandler.RegisterPage)
	e.POST("/register", authHandler.Register)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
