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
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type UserService interface {
	List(ctx context.Context, page, limit int) (*dto.UserListResponse, error)
	Get(ctx context.Context, requesterID string, requesterRole models.UserRole, id string) (*models.PublicUser, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.PublicUser, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*models.PublicUser, error)
	Delete(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewUserService(userRepo repositories.UserRepository, m *metrics.Metrics) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizePagination - значения по умолчанию и верхняя граница limit
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *UserServiceImpl) List(ctx context.Context, page, limit int) (*dto.UserListResponse, error) {
	page, limit = NormalizePagination(page, limit)

	users, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].ToPublic())
	}

	return &dto.UserListResponse{
		Users: public,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

// Get - админ видит любой профиль, пользователь только свой
func (s *UserServiceImpl) Get(ctx context.Context, requesterID string, requesterRole models.UserRole, id string) (*models.PublicUser, error) {
	if !auth.CanReadUser(requesterID, requesterRole, id) {
		return nil, apperrors.ErrProfileAccessDenied
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	public := user.ToPublic()
	return &public, nil
}

// Create - пользователь, созданный администратором, сразу подтвержден
func (s *UserServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.PublicUser, error) {
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	role := req.Role
	if role == "" {
		role = models.UserRoleUser
	}
	verifiedAt := s.now()

	user := &models.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         NormalizeEmail(req.Email),
		Password:      hashedPassword,
		Role:          role,
		EmailVerified: &verifiedAt,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.Internal(err)
	}

	s.refreshActiveUsers(ctx)
	public := user.ToPublic()
	return &public, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*models.PublicUser, error) {
	if req.IsEmpty() {
		return nil, apperrors.ValidationError("At least one field must be provided", nil)
	}

	fields := make(map[string]interface{}, 3)
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		existing, err := s.userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != id:
			return nil, apperrors.ErrEmailAlreadyExists
		case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
			return nil, apperrors.Internal(err)
		}
		fields["email"] = email
	}

	if err := s.userRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, s.mapNotFound(err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	public := user.ToPublic()
	return &public, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return s.mapNotFound(err)
	}
	s.refreshActiveUsers(ctx)
	return nil
}

func (s *UserServiceImpl) mapNotFound(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.Internal(err)
}

// refreshActiveUsers - ошибка подсчета не должна ломать основную операцию
func (s *UserServiceImpl) refreshActiveUsers(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		logger.CtxWithError(ctx, "failed to count users for metrics", err)
		return
	}
	s.metrics.SetActiveUsers(total)
}
