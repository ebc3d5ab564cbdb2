package testutil

import (
	"testing"
	"time"

	"boilerplate_backend/database"
	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB - чистая in-memory SQLite с примененными миграциями
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("Не удалось открыть тестовую БД: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Не удалось получить *sql.DB из GORM: %v", err)
	}
	// Каждое соединение к :memory: - отдельная база
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Не удалось выполнить миграции: %v", err)
	}
	return db
}

// CreateUser создает пользователя с хешированным паролем
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string, role models.UserRole, verified bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Не удалось хешировать пароль: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if verified {
		now := time.Now().UTC()
		user.EmailVerified = &now
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Не удалось создать пользователя %s: %v", email, err)
	}
	return user
}

// ReloadUser перечитывает пользователя из базы
func ReloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("Не удалось загрузить пользователя %s: %v", id, err)
	}
	return &user
}
