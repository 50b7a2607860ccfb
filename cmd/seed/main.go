package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/austinpray/feed-baby/internal/auth"
	"github.com/austinpray/feed-baby/internal/config"
	"github.com/austinpray/feed-baby/internal/db"
	"github.com/austinpray/feed-baby/internal/model"
	"github.com/austinpray/feed-baby/internal/repository"
	"github.com/austinpray/feed-baby/internal/service"
)

// Seeds a demo user plus a day of feeds so a fresh environment has something
// to look at. Safe to run repeatedly: each run creates a distinct user.
func main() {
	username := flag.String("username", "", "demo username (random when empty)")
	password := flag.String("password", "demo-password", "demo user password")
	feeds := flag.Int("feeds", 8, "number of demo feeds to create")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Session{}, &model.Feed{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	name := *username
	if name == "" {
		name = "demo-" + uuid.NewString()[:8]
	}

	ctx := context.Background()
	userService := service.NewUserService(repository.NewUserRepository(gormDB))

	user, err := userService.Register(ctx, name, *password)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created demo user %q (id=%d)", user.Username, user.ID)

	sessionStore := auth.NewSessionStore(repository.NewSessionRepository(gormDB))
	session, err := sessionStore.Create(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to create demo session: %v", err)
	}
	log.Printf("Demo session cookie value: %s", session.ID)
	log.Printf("Demo CSRF token: %s", session.CSRFToken)

	feedService := service.NewFeedService(repository.NewFeedRepository(gormDB), nil)

	// One feed every three hours working backwards from now, volumes cycling
	// through typical newborn amounts.
	volumes := []string{"2.50", "3.00", "3.25", "4.00"}
	now := time.Now()
	created := 0
	for i := 0; i < *feeds; i++ {
		at := now.Add(-time.Duration(i*3) * time.Hour)
		form := service.FeedForm{
			Ounces:   volumes[i%len(volumes)],
			Time:     at.Format("15:04"),
			Date:     at.Format("2006-01-02"),
			Timezone: "UTC",
		}
		if _, err := feedService.Create(ctx, form); err != nil {
			log.Fatalf("Failed to create demo feed: %v", err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Demo feeds created: %d", created)
}
