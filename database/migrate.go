package database

import (
	"fmt"

	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate выполняет миграцию всех моделей
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("AutoMigrate completed")
	return nil
}
