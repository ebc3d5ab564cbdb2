package dto

import "boilerplate_backend/internal/models"

// SignupRequest - запрос регистрации
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=99"`
	Email    string `json:"email" validate:"required,email,max=99"`
	Password string `json:"password" validate:"required,min=8,max=100,strong-password"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RefreshRequest - пустой токен отклоняет сервис
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// EmailRequest - resend-verification и forgot-password
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest - новый пароль, токен приходит в пути
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=100,strong-password"`
}

// AuthResponse - ответ логина и refresh
type AuthResponse struct {
	User         *models.PublicUser `json:"user,omitempty"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// MessageResponse - ответ без данных, только текст
type MessageResponse struct {
	Message string `json:"message"`
}
