package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/damilareoj/student-portal-backend/internal/auth"
	"github.com/damilareoj/student-portal-backend/internal/config"
	"github.com/damilareoj/student-portal-backend/internal/database"
	"github.com/damilareoj/student-portal-backend/internal/logging"
	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/damilareoj/student-portal-backend/internal/store"
	"github.com/joho/godotenv"
)

// Seeds the out-of-band admin account: pre-verified, admin role, and a
// placeholder matric that bypasses student matric validation.
func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	users := store.NewGormUserStore(db)

	email := envOr("ADMIN_EMAIL", "admin@portal.com")
	password := envOr("ADMIN_PASSWORD", "Password123")

	if _, err := users.ByEmail(email); err == nil {
		slog.Info("admin already exists", "email", email)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Error("admin lookup failed", "error", err)
		os.Exit(1)
	}

	passwordHash, err := auth.HashSecret(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	admin := models.User{
		Name:         "Super Admin",
		Email:        email,
		MatricNumber: "ADMIN",
		Password:     passwordHash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	}

	if err := users.Create(&admin); err != nil {
		slog.Error("failed to create admin", "error", err)
		os.Exit(1)
	}

	slog.Info("admin created successfully", "email", email)
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
