package repositories

import (
	"context"
	"errors"
	"time"

	"boilerplate_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTokenNotFound     = errors.New("token not found or expired")
)

type UserRepository interface {
	// User operations
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDAndRefreshToken(ctx context.Context, id, token string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	// Token operations
	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	SetRefreshToken(ctx context.Context, id string, token *string) error
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error

	// Cleanup
	ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// User operations

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	// Check if user already exists
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepositoryImpl) FindByIDAndRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	return r.first(ctx, "id = ? AND refresh_token = ?", id, token)
}

func (r *UserRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Token operations

func (r *UserRepositoryImpl) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{
		"email_verification_token":   token,
		"email_verification_expires": expires.UTC(),
	})
}

func (r *UserRepositoryImpl) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{
		"password_reset_token":   token,
		"password_reset_expires": expires.UTC(),
	})
}

func (r *UserRepositoryImpl) ClearResetToken(ctx context.Context, id string) error {
	return r.Update(ctx, id, map[string]interface{}{
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	})
}

func (r *UserRepositoryImpl) SetRefreshToken(ctx context.Context, id string, token *string) error {
	return r.Update(ctx, id, map[string]interface{}{
		"refresh_token": token,
	})
}

// RotateRefreshToken заменяет токен, только если в базе всё еще старый
func (r *UserRepositoryImpl) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, oldToken).
		Update("refresh_token", newToken)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// ConsumeVerificationToken проверяет и гасит токен одним UPDATE
func (r *UserRepositoryImpl) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) error {
	now = now.UTC()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email_verification_token = ? AND email_verification_expires > ? AND email_verified IS NULL", token, now).
		Updates(map[string]interface{}{
			"email_verified":             now,
			"email_verification_token":   nil,
			"email_verification_expires": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// ConsumeResetToken меняет пароль и гасит reset-токен одним UPDATE, заодно отзывает refresh-токен
func (r *UserRepositoryImpl) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error {
	now = now.UTC()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_expires > ?", token, now).
		Updates(map[string]interface{}{
			"password":               passwordHash,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
			"refresh_token":          nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// Cleanup

func (r *UserRepositoryImpl) ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email_verification_expires IS NOT NULL AND email_verification_expires < ?", now.UTC()).
		Updates(map[string]interface{}{
			"email_verification_token":   nil,
			"email_verification_expires": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_expires IS NOT NULL AND password_reset_expires < ?", now.UTC()).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	return result.RowsAffected, result.Error
}
