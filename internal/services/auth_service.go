package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/internal/repositories"
	"boilerplate_backend/internal/services/dto"
	"boilerplate_backend/pkg/apperrors"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

// Mailer - письма, которые отправляет auth-поток
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*models.PublicUser, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	Me(ctx context.Context, userID string) (*models.PublicUser, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	mailer   Mailer
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	mailer Mailer,
	m *metrics.Metrics,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail - срезает пробелы по краям. Регистр сохраняется как есть
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Signup - регистрация нового пользователя
func (s *AuthServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*models.PublicUser, error) {
	email := NormalizeEmail(req.Email)

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	expires := s.now().Add(verificationTokenTTL)

	user := &models.User{
		Name:                     strings.TrimSpace(req.Name),
		Email:                    email,
		Password:                 hashedPassword,
		Role:                     models.UserRoleUser,
		EmailVerificationToken:   &token,
		EmailVerificationExpires: &expires,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.event("signup", false)
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.Internal(err)
	}
	s.event("signup", true)

	// Строка остается, повторное письмо - через resend-verification
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		logger.CtxWithError(ctx, "verification email not sent on signup", err, "user_id", user.ID)
		return nil, apperrors.EmailDeliveryFailed(err, "Failed to send verification email")
	}

	public := user.ToPublic()
	return &public, nil
}

// VerifyEmail - подтверждение email одноразовым токеном
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.ErrInvalidVerifyToken
	}

	if err := s.userRepo.ConsumeVerificationToken(ctx, token, s.now()); err != nil {
		s.event("verify_email", false)
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return apperrors.ErrInvalidVerifyToken
		}
		return apperrors.Internal(err)
	}

	s.event("verify_email", true)
	return nil
}

// ResendVerification - новый токен подтверждения и повторное письмо
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, email string) error {
	if n, err := s.userRepo.ClearExpiredVerificationTokens(ctx, s.now()); err != nil {
		logger.CtxWithError(ctx, "failed to clear expired verification tokens", err)
	} else if n > 0 {
		logger.CtxDebug(ctx, "expired verification tokens cleared", "count", n)
	}

	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Internal(err)
	}

	if user.IsVerified() {
		return apperrors.ErrEmailAlreadyVerified
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, token, s.now().Add(verificationTokenTTL)); err != nil {
		return apperrors.Internal(err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		return apperrors.EmailDeliveryFailed(err, "Failed to send verification email")
	}
	return nil
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.event("login", false)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		s.event("login", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified() {
		s.event("login", false)
		return nil, apperrors.ErrEmailNotVerified
	}

	accessToken, refreshToken, err := s.issueTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.event("login", true)
	public := user.ToPublic()
	return &dto.AuthResponse{
		User:         &public,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh - ротация пары токенов. Принимается только refresh-токен, сохраненный у пользователя
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrRefreshTokenRequired
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		s.event("refresh", false)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByIDAndRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.event("refresh", false)
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.Internal(err)
	}

	accessToken, newRefreshToken, err := s.issueTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	// Условный UPDATE: параллельная ротация тем же токеном проиграет
	if err := s.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken); err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			s.event("refresh", false)
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.Internal(err)
	}

	s.event("refresh", true)
	public := user.ToPublic()
	return &dto.AuthResponse{
		User:         &public,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout - сброс refresh-токена, повторный вызов безопасен
func (s *AuthServiceImpl) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.ErrAuthenticationMissing
	}

	if err := s.userRepo.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}
	s.event("logout", true)
	return nil
}

// ForgotPassword - выдает reset-токен. Если письмо не ушло, токен снимается
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Internal(err)
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return apperrors.Internal(err)
	}

	if sendErr := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); sendErr != nil {
		if err := s.userRepo.ClearResetToken(ctx, user.ID); err != nil {
			logger.CtxWithError(ctx, "failed to roll back reset token", err, "user_id", user.ID)
		}
		s.event("forgot_password", false)
		return apperrors.EmailDeliveryFailed(sendErr, "Failed to send password reset email")
	}

	s.event("forgot_password", true)
	return nil
}

// ResetPassword - смена пароля по reset-токену
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return apperrors.ErrInvalidResetToken
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := s.userRepo.ConsumeResetToken(ctx, token, hashedPassword, s.now()); err != nil {
		s.event("password_reset", false)
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Internal(err)
	}

	s.event("password_reset", true)
	return nil
}

// Me - профиль текущего пользователя
func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	public := user.ToPublic()
	return &public, nil
}

// =======================
// Вспомогательные методы
// =======================

func (s *AuthServiceImpl) issueTokens(user *models.User) (string, string, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthServiceImpl) event(name string, ok bool) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	s.metrics.AuthEvent(name, outcome)
}
