package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/austinpray/feed-baby/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/austinpray/feed-baby/internal/auth"
	"github.com/austinpray/feed-baby/internal/cache"
	"github.com/austinpray/feed-baby/internal/config"
	"github.com/austinpray/feed-baby/internal/db"
	"github.com/austinpray/feed-baby/internal/handler"
	"github.com/austinpray/feed-baby/internal/model"
	"github.com/austinpray/feed-baby/internal/repository"
	"github.com/austinpray/feed-baby/internal/router"
	"github.com/austinpray/feed-baby/internal/service"
)

// @title Feed Baby API
// @version 1.0
// @description Baby feeding tracker with cookie sessions and CSRF protection.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Feed{},
			&model.Session{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Feed{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	feedRepo := repository.NewFeedRepository(gormDB)

	// Initialize auth components and services
	sessionStore := auth.NewSessionStore(sessionRepo)
	userService := service.NewUserService(userRepo)
	feedService := service.NewFeedService(feedRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, sessionStore, cfg)
	feedHandler := handler.NewFeedHandler(feedService)

	// Register routes
	router.Register(e, sessionStore, userService, authHandler, feedHandler)

	log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
