package services

import (
	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/internal/repositories"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService AuthService
	UserService UserService
}

func NewServiceContainer(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	mailer Mailer,
	m *metrics.Metrics,
) *ServiceContainer {
	return &ServiceContainer{
		AuthService: NewAuthService(userRepo, tokens, mailer, m),
		UserService: NewUserService(userRepo, m),
	}
}
