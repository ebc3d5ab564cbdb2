package repositories_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"boilerplate_backend/internal/models"
	"boilerplate_backend/internal/repositories"
	"boilerplate_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h", Role: models.UserRoleUser}))
	err := repo.Create(ctx, &models.User{Name: "B", Email: "a@x.com", Password: "h", Role: models.UserRoleUser})
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)
}

func TestFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ann", "ann@x.com", "Password123!", models.UserRoleUser, true)

	got, err := repo.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Len(t, got.ID, 36)

	got, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestListAndCount(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		testutil.CreateUser(t, db, "U", e, "Password123!", models.UserRoleUser, true)
	}

	users, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestUpdateAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, true)
	testutil.CreateUser(t, db, "B", "b@x.com", "Password123!", models.UserRoleUser, true)

	require.NoError(t, repo.Update(ctx, a.ID, map[string]interface{}{"name": "Alice"}))
	assert.Equal(t, "Alice", testutil.ReloadUser(t, db, a.ID).Name)

	assert.ErrorIs(t, repo.Update(ctx, "missing", map[string]interface{}{"name": "x"}), repositories.ErrUserNotFound)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), repositories.ErrUserNotFound)
}

// ============================================
// Токены
// ============================================

func TestConsumeVerificationToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	user := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, false)

	require.NoError(t, repo.SetVerificationToken(ctx, user.ID, "tok", now.Add(24*time.Hour)))

	require.NoError(t, repo.ConsumeVerificationToken(ctx, "tok", now))

	reloaded := testutil.ReloadUser(t, db, user.ID)
	assert.True(t, reloaded.IsVerified())
	assert.Nil(t, reloaded.EmailVerificationToken)
	assert.Nil(t, reloaded.EmailVerificationExpires)

	// Второй раз тот же токен не проходит
	assert.ErrorIs(t, repo.ConsumeVerificationToken(ctx, "tok", now), repositories.ErrTokenNotFound)
}

func TestConsumeVerificationToken_ExpiredDoesNotMutate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	user := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, false)

	require.NoError(t, repo.SetVerificationToken(ctx, user.ID, "tok", now.Add(-time.Minute)))

	assert.ErrorIs(t, repo.ConsumeVerificationToken(ctx, "tok", now), repositories.ErrTokenNotFound)

	reloaded := testutil.ReloadUser(t, db, user.ID)
	assert.False(t, reloaded.IsVerified())
	require.NotNil(t, reloaded.EmailVerificationToken)
	assert.Equal(t, "tok", *reloaded.EmailVerificationToken)
}

func TestConsumeResetToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	user := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, true)
	refresh := "refresh"
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, &refresh))
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "reset", now.Add(time.Hour)))

	require.NoError(t, repo.ConsumeResetToken(ctx, "reset", "newhash", now))

	reloaded := testutil.ReloadUser(t, db, user.ID)
	assert.Equal(t, "newhash", reloaded.Password)
	assert.Nil(t, reloaded.PasswordResetToken)
	assert.Nil(t, reloaded.RefreshToken)

	assert.ErrorIs(t, repo.ConsumeResetToken(ctx, "reset", "other", now), repositories.ErrTokenNotFound)
}

func TestConsumeResetToken_ConcurrentSingleWinner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	user := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, true)
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "reset", now.Add(time.Hour)))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ConsumeResetToken(ctx, "reset", "hash", now) == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestRefreshToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, true)

	first := "first"
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, &first))

	_, err := repo.FindByIDAndRefreshToken(ctx, user.ID, "first")
	require.NoError(t, err)

	require.NoError(t, repo.RotateRefreshToken(ctx, user.ID, "first", "second"))
	assert.ErrorIs(t, repo.RotateRefreshToken(ctx, user.ID, "first", "third"), repositories.ErrTokenNotFound)

	_, err = repo.FindByIDAndRefreshToken(ctx, user.ID, "first")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, nil))
	assert.Nil(t, testutil.ReloadUser(t, db, user.ID).RefreshToken)
}

func TestClearExpiredTokens(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := testutil.CreateUser(t, db, "A", "a@x.com", "Password123!", models.UserRoleUser, false)
	fresh := testutil.CreateUser(t, db, "B", "b@x.com", "Password123!", models.UserRoleUser, false)
	require.NoError(t, repo.SetVerificationToken(ctx, expired.ID, "old", now.Add(-time.Hour)))
	require.NoError(t, repo.SetVerificationToken(ctx, fresh.ID, "new", now.Add(time.Hour)))
	require.NoError(t, repo.SetResetToken(ctx, expired.ID, "oldreset", now.Add(-time.Hour)))

	n, err := repo.ClearExpiredVerificationTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Nil(t, testutil.ReloadUser(t, db, expired.ID).EmailVerificationToken)
	assert.NotNil(t, testutil.ReloadUser(t, db, fresh.ID).EmailVerificationToken)
}
