package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/mavrick-auth/config"
	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
	"github.com/oksasatya/mavrick-auth/internal/domain/repository"
	pginfra "github.com/oksasatya/mavrick-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
	"github.com/oksasatya/mavrick-auth/pkg/validation"
)

// Seeds a demo account into Postgres. SEED_EMAIL, SEED_NAME and
// SEED_PASSWORD override the defaults.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	email := getenv("SEED_EMAIL", "demo@mavrick.dev")
	name := getenv("SEED_NAME", "Demo User")
	password := getenv("SEED_PASSWORD", "Demo!Passw0rd2024")
	if !validation.StrongPassword(password) {
		log.Fatal("SEED_PASSWORD does not meet the password policy")
	}

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	hash, err := helpers.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	u := &entity.User{Name: name, Email: email, PasswordHash: hash}
	if err := users.Insert(ctx, u); err != nil {
		if !errors.Is(err, repository.ErrEmailTaken) {
			log.Fatalf("failed to seed user: %v", err)
		}
		existing, ferr := users.FindByEmail(ctx, email)
		if ferr != nil {
			log.Fatalf("failed to load existing user: %v", ferr)
		}
		if err := users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			log.Fatalf("failed to reset seeded password: %v", err)
		}
		u = existing
	}
	fmt.Printf("seeded user: id=%d email=%s name=%s\n", u.ID, u.Email, u.Name)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
