package main

import (
	"context"
	"time"

	"boilerplate_backend/database"
	"boilerplate_backend/internal/app"
	"boilerplate_backend/internal/config"
	"boilerplate_backend/internal/logger"
)

// Заполняет базу тестовыми пользователями. Все существующие пользователи удаляются
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)

	if cfg.IsProduction() {
		logger.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg.Database, false)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := app.SeedDevelopment(ctx, db)
	if err != nil {
		logger.Fatal("Seeding failed", "error", err)
	}

	for _, u := range users {
		logger.Info("Seeded user", "email", u.Email, "role", u.Role)
	}
	logger.Info("Seeding completed", "count", len(users), "password", app.DevSeedPassword)
}
