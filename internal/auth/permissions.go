package auth

import "boilerplate_backend/internal/models"

// RBAC разрешения
const (
	PermUsersRead     = "users:read"
	PermUsersReadSelf = "users:read:self"
	PermUsersWrite    = "users:write"
	PermUsersDelete   = "users:delete"
)

// Permissions список разрешений
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermUsersRead,
		PermUsersReadSelf,
		PermUsersWrite,
		PermUsersDelete,
	},
	models.UserRoleUser: {
		PermUsersReadSelf,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanReadUser - админ читает всех, остальные только себя
func CanReadUser(requesterID string, role models.UserRole, targetID string) bool {
	if HasPermission(role, PermUsersRead) {
		return true
	}
	return requesterID == targetID && HasPermission(role, PermUsersReadSelf)
}
