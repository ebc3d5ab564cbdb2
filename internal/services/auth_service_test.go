package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/internal/repositories"
	"boilerplate_backend/internal/services/dto"
	"boilerplate_backend/internal/testutil"
	"boilerplate_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Password123!"

type authFixture struct {
	db      *gorm.DB
	mailer  *testutil.FakeMailer
	metrics *metrics.Metrics
	svc     *AuthServiceImpl
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	mailer := &testutil.FakeMailer{}
	m := metrics.New()
	tokens := auth.NewTokenManager(
		"access-secret-access-secret-access-secret",
		"refresh-secret-refresh-secret-refresh-secret",
		15*time.Minute, 7*24*time.Hour,
	)

	return &authFixture{
		db:      db,
		mailer:  mailer,
		metrics: m,
		svc:     NewAuthService(repositories.NewUserRepository(db), tokens, testutil.NewEmailService(mailer), m),
	}
}

func assertAppError(t *testing.T, err error, want *apperrors.AppError) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, want.Code, appErr.Code)
	assert.Equal(t, want.HTTPCode, appErr.HTTPCode)
	assert.Equal(t, want.Message, appErr.Message)
}

// authEventCount читает auth_events_total{event,outcome} из реестра
func authEventCount(t *testing.T, m *metrics.Metrics, event, outcome string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "auth_events_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["event"] == event && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestSignup_CreatesUnverifiedUserAndSendsEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, &dto.SignupRequest{Name: "A", Email: " A@X.com ", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, models.UserRoleUser, user.Role)

	stored := testutil.ReloadUser(t, f.db, user.ID)
	assert.Nil(t, stored.EmailVerified)
	require.NotNil(t, stored.EmailVerificationToken)
	require.NotNil(t, stored.EmailVerificationExpires)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), *stored.EmailVerificationExpires, time.Minute)
	assert.NotEqual(t, testPassword, stored.Password)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"a@x.com"}, sent[0].To)
	assert.Equal(t, *stored.EmailVerificationToken, f.mailer.LastToken())
	assert.Contains(t, sent[0].HTMLBody, "http://localhost:3000/api/auth/verify-email/")
}

func TestSignup_DuplicateEmailIsCaseSensitive(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Signup(ctx, &dto.SignupRequest{Name: "Ann", Email: "Ann@X.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "Ann@X.com", testutil.ReloadUser(t, f.db, first.ID).Email)

	_, err = f.svc.Signup(ctx, &dto.SignupRequest{Name: "Ann", Email: " Ann@X.com ", Password: testPassword})
	assertAppError(t, err, apperrors.ErrEmailAlreadyExists)

	second, err := f.svc.Signup(ctx, &dto.SignupRequest{Name: "Ann", Email: "ann@x.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "ann@x.com", testutil.ReloadUser(t, f.db, second.ID).Email)
}

func TestSignup_EmailFailureKeepsUser(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.SetErr(errors.New("smtp down"))

	user, err := f.svc.Signup(context.Background(), &dto.SignupRequest{Name: "A", Email: "a@x.com", Password: testPassword})
	assert.Nil(t, user)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEmailDeliveryFailed, appErr.Code)
	assert.Equal(t, 500, appErr.HTTPCode)
	assert.Equal(t, "Failed to send verification email", appErr.Message)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "email = ?", "a@x.com").Error)
	assert.Nil(t, stored.EmailVerified)
	assert.NotNil(t, stored.EmailVerificationToken)

	// После восстановления почты письмо можно запросить повторно
	f.mailer.SetErr(nil)
	require.NoError(t, f.svc.ResendVerification(context.Background(), "a@x.com"))
}

func TestVerifyEmail_ThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, &dto.SignupRequest{Name: "A", Email: "a@x.com", Password: testPassword})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: testPassword})
	assertAppError(t, err, apperrors.ErrEmailNotVerified)

	token := f.mailer.LastToken()
	require.NoError(t, f.svc.VerifyEmail(ctx, token))

	stored := testutil.ReloadUser(t, f.db, user.ID)
	assert.NotNil(t, stored.EmailVerified)
	assert.Nil(t, stored.EmailVerificationToken)

	assertAppError(t, f.svc.VerifyEmail(ctx, token), apperrors.ErrInvalidVerifyToken)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: " a@x.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)

	stored = testutil.ReloadUser(t, f.db, user.ID)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, resp.RefreshToken, *stored.RefreshToken)

	assert.Equal(t, 1.0, authEventCount(t, f.metrics, "login", "success"))
	assert.Equal(t, 1.0, authEventCount(t, f.metrics, "login", "failure"))
}

func TestVerifyEmail_ExpiredTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, &dto.SignupRequest{Name: "A", Email: "a@x.com", Password: testPassword})
	require.NoError(t, err)
	token := f.mailer.LastToken()

	f.svc.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
	assertAppError(t, f.svc.VerifyEmail(ctx, token), apperrors.ErrInvalidVerifyToken)

	stored := testutil.ReloadUser(t, f.db, user.ID)
	assert.Nil(t, stored.EmailVerified)
	assert.NotNil(t, stored.EmailVerificationToken)

	assertAppError(t, f.svc.VerifyEmail(ctx, ""), apperrors.ErrInvalidVerifyToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, false)

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	assertAppError(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@x.com", Password: testPassword})
	assertAppError(t, err, apperrors.ErrInvalidCredentials)
}

func TestResendVerification(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	assertAppError(t, f.svc.ResendVerification(ctx, "nobody@x.com"), apperrors.ErrUserNotFound)

	verified := testutil.CreateUser(t, f.db, "V", "v@x.com", testPassword, models.UserRoleUser, true)
	assertAppError(t, f.svc.ResendVerification(ctx, verified.Email), apperrors.ErrEmailAlreadyVerified)

	pending := testutil.CreateUser(t, f.db, "P", "p@x.com", testPassword, models.UserRoleUser, false)
	assertAppError(t, f.svc.ResendVerification(ctx, "P@x.com"), apperrors.ErrUserNotFound)
	require.NoError(t, f.svc.ResendVerification(ctx, "p@x.com"))
	stored := testutil.ReloadUser(t, f.db, pending.ID)
	require.NotNil(t, stored.EmailVerificationToken)
	assert.Equal(t, *stored.EmailVerificationToken, f.mailer.LastToken())

	f.mailer.SetErr(errors.New("smtp down"))
	err := f.svc.ResendVerification(ctx, "p@x.com")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEmailDeliveryFailed, appErr.Code)
	assert.Equal(t, 500, appErr.HTTPCode)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)

	_, err := f.svc.Refresh(ctx, "")
	assertAppError(t, err, apperrors.ErrRefreshTokenRequired)

	_, err = f.svc.Refresh(ctx, "garbage")
	assertAppError(t, err, apperrors.ErrInvalidRefreshToken)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: testPassword})
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	stored := testutil.ReloadUser(t, f.db, user.ID)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, rotated.RefreshToken, *stored.RefreshToken)

	// Старый токен подписан верно, но уже не совпадает с сохраненным
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assertAppError(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_ConcurrentRotationHasSingleWinner(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: testPassword})
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Refresh(ctx, login.RefreshToken); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&wins))
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, user.ID))
	require.NoError(t, f.svc.Logout(ctx, user.ID))
	assert.Nil(t, testutil.ReloadUser(t, f.db, user.ID).RefreshToken)

	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assertAppError(t, err, apperrors.ErrInvalidRefreshToken)

	assertAppError(t, f.svc.Logout(ctx, ""), apperrors.ErrAuthenticationMissing)
}

func TestForgotPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	assertAppError(t, f.svc.ForgotPassword(ctx, "nobody@x.com"), apperrors.ErrUserNotFound)

	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)
	require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))

	stored := testutil.ReloadUser(t, f.db, user.ID)
	require.NotNil(t, stored.PasswordResetToken)
	require.NotNil(t, stored.PasswordResetExpires)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), *stored.PasswordResetExpires, time.Minute)
	assert.Equal(t, *stored.PasswordResetToken, f.mailer.LastToken())
	assert.Contains(t, f.mailer.Sent()[0].HTMLBody, "http://localhost:3001/reset-password/")
}

func TestForgotPassword_SendFailureClearsToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)
	sendErr := errors.New("smtp down")
	f.mailer.SetErr(sendErr)

	err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEmailDeliveryFailed, appErr.Code)

	stored := testutil.ReloadUser(t, f.db, user.ID)
	assert.Nil(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))
	token := f.mailer.LastToken()

	const newPassword = "NewPassword456$"
	require.NoError(t, f.svc.ResetPassword(ctx, token, newPassword))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: testPassword})
	assertAppError(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: newPassword})
	require.NoError(t, err)

	assertAppError(t, f.svc.ResetPassword(ctx, token, "Another789!"), apperrors.ErrInvalidResetToken)

	// Сброс пароля отзывает прежний refresh-токен
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assertAppError(t, err, apperrors.ErrInvalidRefreshToken)

	stored := testutil.ReloadUser(t, f.db, user.ID)
	assert.Nil(t, stored.PasswordResetToken)
}

func TestResetPassword_ExpiredTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleUser, true)

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))
	token := f.mailer.LastToken()
	before := testutil.ReloadUser(t, f.db, user.ID).Password

	f.svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	assertAppError(t, f.svc.ResetPassword(ctx, token, "NewPassword456$"), apperrors.ErrInvalidResetToken)

	stored := testutil.ReloadUser(t, f.db, user.ID)
	assert.Equal(t, before, stored.Password)
	assert.NotNil(t, stored.PasswordResetToken)
}

func TestMe(t *testing.T) {
	f := newAuthFixture(t)
	user := testutil.CreateUser(t, f.db, "A", "a@x.com", testPassword, models.UserRoleAdmin, true)

	me, err := f.svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, me.Role)

	_, err = f.svc.Me(context.Background(), "missing")
	assertAppError(t, err, apperrors.ErrUserNotFound)
}
