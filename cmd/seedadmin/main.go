// cmd/seedadmin creates the shop admin, or promotes an existing account to admin.
// Usage: ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seedadmin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ajitseee/sweetshop/internal/config"
	"github.com/ajitseee/sweetshop/internal/infra"
	"github.com/ajitseee/sweetshop/internal/model"
	"github.com/ajitseee/sweetshop/internal/repository"
	"github.com/ajitseee/sweetshop/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	username := envOr("ADMIN_USERNAME", "admin")
	email := service.NormalizeEmail(envOr("ADMIN_EMAIL", "admin@sweetshop.com"))
	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 6 {
		log.Fatal().Msg("ADMIN_PASSWORD must be set and at least 6 characters")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := seedAdmin(ctx, repository.NewUserRepository(db), cfg.BcryptCost, username, email, password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin")
	}
	if created {
		log.Info().Str("email", email).Msg("admin user created")
	} else {
		log.Info().Str("email", email).Msg("existing user promoted to admin, password reset")
	}
}

// seedAdmin is idempotent: re-running it leaves exactly one admin with the given credentials.
// The account is matched by email; a username held by a different account is an error.
func seedAdmin(ctx context.Context, repo repository.UserRepository, cost int, username, email, password string) (bool, error) {
	hash, err := service.HashPassword(password, cost)
	if err != nil {
		return false, err
	}

	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = model.RoleAdmin
		existing.PasswordHash = hash
		return false, repo.Update(ctx, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return false, err
	}

	err = repo.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, fmt.Errorf("username %q belongs to another account; set ADMIN_USERNAME", username)
	}
	return err == nil, err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
