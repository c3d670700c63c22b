// Command seed creates a demo account with two published posts.
// Running it again is a no-op once the account exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"mdblog/internal/auth"
	"mdblog/internal/config"
	"mdblog/internal/database"
	"mdblog/internal/database/migration"
	"mdblog/internal/logging"
	"mdblog/internal/model"
	"mdblog/internal/repository/postgres"
)

const (
	demoEmail    = "test@example.com"
	demoName     = "Test User"
	demoPassword = "password123"
)

func main() {
	cfg := config.Load()
	loc := cfg.Location()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database, loc)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	users := postgres.NewUserPostgres(db)
	posts := postgres.NewPostPostgres(db)

	if _, err := users.FindByEmail(ctx, demoEmail); err == nil {
		logging.JSON(loc, map[string]any{
			"component": "seed",
			"event":     "seed_skip",
			"status":    "success",
			"msg":       "demo user already exists",
			"email":     demoEmail,
		})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to look up demo user: %v", err)
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user, err := users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Name:         demoName,
		Email:        demoEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		log.Fatalf("failed to create demo user: %v", err)
	}

	seeded := []model.Post{
		{
			Title:    "はじめてのブログ投稿",
			Content:  "これは最初のブログ投稿です。GoとFiberでブログを作成しています。",
			TopImage: "https://picsum.photos/seed/post1/600/400",
		},
		{
			Title:    "2番目の投稿",
			Content:  "ブログの機能を少しずつ追加していきます。認証機能やダッシュボードなども実装予定です。",
			TopImage: "https://picsum.photos/seed/post2/600/400",
		},
	}
	for i := range seeded {
		seeded[i].ID = uuid.NewString()
		seeded[i].Published = true
		seeded[i].AuthorID = user.ID
		seeded[i].CreatedAt = now.Add(-time.Duration(i) * time.Second)
		seeded[i].UpdatedAt = seeded[i].CreatedAt
	}
	if err := posts.CreateMany(ctx, seeded); err != nil {
		log.Fatalf("failed to create demo posts: %v", err)
	}

	logging.JSON(loc, map[string]any{
		"component": "seed",
		"event":     "seed_done",
		"status":    "success",
		"user_id":   user.ID,
		"email":     demoEmail,
		"posts":     len(seeded),
	})
}
