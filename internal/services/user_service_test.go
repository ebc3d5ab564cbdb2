package services

import (
	"context"
	"fmt"
	"testing"

	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/internal/repositories"
	"boilerplate_backend/internal/services/dto"
	"boilerplate_backend/internal/testutil"
	"boilerplate_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, 5, 1, 5},
		{2, 500, 2, 100},
		{4, 25, 4, 25},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.page, tt.limit), func(t *testing.T) {
			page, limit := NormalizePagination(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestUserService_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(repositories.NewUserRepository(db), nil)

	for i := 0; i < 12; i++ {
		testutil.CreateUser(t, db, "U", fmt.Sprintf("u%d@x.com", i), testPassword, models.UserRoleUser, true)
	}

	res, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, int64(12), res.Total)
	assert.Len(t, res.Users, 10)

	res, err = svc.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, res.Users, 2)
}

func TestUserService_Get(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(repositories.NewUserRepository(db), nil)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "Admin", "admin@x.com", testPassword, models.UserRoleAdmin, true)
	alice := testutil.CreateUser(t, db, "Alice", "alice@x.com", testPassword, models.UserRoleUser, true)
	bob := testutil.CreateUser(t, db, "Bob", "bob@x.com", testPassword, models.UserRoleUser, true)

	got, err := svc.Get(ctx, alice.ID, models.UserRoleUser, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", got.Email)

	_, err = svc.Get(ctx, alice.ID, models.UserRoleUser, bob.ID)
	assertAppError(t, err, apperrors.ErrProfileAccessDenied)

	got, err = svc.Get(ctx, admin.ID, models.UserRoleAdmin, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = svc.Get(ctx, admin.ID, models.UserRoleAdmin, "missing")
	assertAppError(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_CreateIsVerified(t *testing.T) {
	db := testutil.NewTestDB(t)
	m := metrics.New()
	svc := NewUserService(repositories.NewUserRepository(db), m)
	ctx := context.Background()

	user, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "New", Email: "New@X.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleUser, user.Role)
	assert.Equal(t, "New@X.com", user.Email)

	stored := testutil.ReloadUser(t, db, user.ID)
	assert.True(t, stored.IsVerified())

	_, err = svc.Create(ctx, &dto.CreateUserRequest{Name: "Dup", Email: "New@X.com", Password: "secret123", Role: models.UserRoleAdmin})
	assertAppError(t, err, apperrors.ErrEmailAlreadyExists)

	// Другой регистр - другой адрес
	other, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "Other", Email: "new@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, user.ID, other.ID)
}

func TestUserService_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(repositories.NewUserRepository(db), nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@x.com", testPassword, models.UserRoleUser, true)
	testutil.CreateUser(t, db, "Bob", "bob@x.com", testPassword, models.UserRoleUser, true)

	_, err := svc.Update(ctx, alice.ID, &dto.UpdateUserRequest{})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	role := models.UserRoleAdmin
	got, err := svc.Update(ctx, alice.ID, &dto.UpdateUserRequest{Name: strPtr("Alicia"), Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, models.UserRoleAdmin, got.Role)

	_, err = svc.Update(ctx, alice.ID, &dto.UpdateUserRequest{Email: strPtr(" bob@x.com")})
	assertAppError(t, err, apperrors.ErrEmailAlreadyExists)

	// Свой же email не считается дубликатом
	got, err = svc.Update(ctx, alice.ID, &dto.UpdateUserRequest{Email: strPtr("alice@x.com ")})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", got.Email)

	got, err = svc.Update(ctx, alice.ID, &dto.UpdateUserRequest{Email: strPtr("Alice@X.com")})
	require.NoError(t, err)
	assert.Equal(t, "Alice@X.com", got.Email)

	_, err = svc.Update(ctx, "missing", &dto.UpdateUserRequest{Name: strPtr("Ghost")})
	assertAppError(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(repositories.NewUserRepository(db), metrics.New())
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "A", "a@x.com", testPassword, models.UserRoleUser, true)
	require.NoError(t, svc.Delete(ctx, user.ID))
	assertAppError(t, svc.Delete(ctx, user.ID), apperrors.ErrUserNotFound)
}
