package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/princinho/storecatalog/config"
	"github.com/princinho/storecatalog/database"
	"github.com/princinho/storecatalog/models"
)

// SeedAdminUser creates the first merchant account unless it already exists.
// Blank credentials skip seeding.
func SeedAdminUser(ctx context.Context, users database.UserStore, cfg config.AdminConfig, log *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Password == "" {
		log.Info("admin seeding skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	inserted, err := users.SeedUser(ctx, models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		StoreID:      cfg.StoreID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}

	if inserted {
		log.Info("admin user seeded", zap.String("email", email), zap.String("storeId", cfg.StoreID))
	} else {
		log.Info("admin user already exists", zap.String("email", email))
	}
	return nil
}
