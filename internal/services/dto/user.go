package dto

import "boilerplate_backend/internal/models"

// CreateUserRequest - создание пользователя администратором
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=99"`
	Email    string          `json:"email" validate:"required,email,max=99"`
	Password string          `json:"password" validate:"required,min=8,max=100"`
	Role     models.UserRole `json:"role" validate:"omitempty,user-role"`
}

// UpdateUserRequest - частичное обновление, nil означает "не менять"
type UpdateUserRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=2,max=99"`
	Email *string          `json:"email" validate:"omitempty,email,max=99"`
	Role  *models.UserRole `json:"role" validate:"omitempty,user-role"`
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Role == nil
}

// UserListResponse - страница пользователей
type UserListResponse struct {
	Users []models.PublicUser `json:"users"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Total int64               `json:"total"`
}

// ListUsersQuery - параметры пагинации
type ListUsersQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
