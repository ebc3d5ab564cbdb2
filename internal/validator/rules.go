package validator

import (
	"log"
	"strings"

	"boilerplate_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&"

// registerCustomRules регистрирует все кастомные функции валидации
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правил приложение запускать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("user-role", validateUserRole)
	mustRegister("strong-password", validateStrongPassword)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}
	return models.UserRole(value).IsValid()
}

// validateStrongPassword: строчная, заглавная, цифра и спецсимвол из @$!%*?&, других символов нет
func validateStrongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
