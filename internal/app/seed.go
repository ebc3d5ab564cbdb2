package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/config"
	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/internal/repositories"
	"boilerplate_backend/internal/services"

	"gorm.io/gorm"
)

// DevSeedPassword - пароль всех пользователей из SeedDevelopment
const DevSeedPassword = "Password123!"

// SeedFirstAdmin создает администратора из FIRST_ADMIN_EMAIL / FIRST_ADMIN_PASSWORD, если его еще нет
func SeedFirstAdmin(ctx context.Context, repo repositories.UserRepository, cfg config.SeedConfig) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	adminEmail := services.NormalizeEmail(cfg.FirstAdminEmail)
	_, err := repo.FindByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	admin, err := newSeedUser("Admin User", adminEmail, cfg.FirstAdminPassword, models.UserRoleAdmin)
	if err != nil {
		return err
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("Successfully created first admin user", "email", adminEmail)
	return nil
}

// SeedDevelopment пересоздает тестовых пользователей: один ADMIN и два USER
func SeedDevelopment(ctx context.Context, db *gorm.DB) ([]*models.User, error) {
	seed := []struct {
		name  string
		email string
		role  models.UserRole
	}{
		{"John Doe", "john@example.com", models.UserRoleAdmin},
		{"Jane Smith", "jane@example.com", models.UserRoleUser},
		{"Bob Johnson", "bob@example.com", models.UserRoleUser},
	}

	users := make([]*models.User, 0, len(seed))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}

		for _, s := range seed {
			user, err := newSeedUser(s.name, s.email, DevSeedPassword, s.role)
			if err != nil {
				return err
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("failed to create %s: %w", s.email, err)
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Сидированные пользователи сразу подтверждены
func newSeedUser(name, email, password string, role models.UserRole) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	verifiedAt := time.Now().UTC()
	return &models.User{
		Name:          name,
		Email:         email,
		Password:      hash,
		Role:          role,
		EmailVerified: &verifiedAt,
	}, nil
}
