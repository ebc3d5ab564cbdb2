package apperrors

import "net/http"

// =========================================================================
// Предопределенные ошибки
// =========================================================================

var (
	// Аутентификация
	ErrNoToken               = New(CodeUnauthorized, "No token provided", http.StatusUnauthorized)
	ErrUnauthorizedToken     = New(CodeInvalidToken, "Unauthorized - Invalid token", http.StatusUnauthorized)
	ErrInsufficientRole      = New(CodeForbidden, "Forbidden - Insufficient permissions", http.StatusForbidden)
	ErrInvalidCredentials    = New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
	ErrEmailNotVerified      = New(CodeUnauthorized, "Please verify your email before logging in", http.StatusUnauthorized)
	ErrInvalidRefreshToken   = New(CodeInvalidToken, "Invalid refresh token", http.StatusUnauthorized)
	ErrRefreshTokenRequired  = New(CodeInvalidToken, "Refresh token is required", http.StatusBadRequest)
	ErrInvalidVerifyToken    = New(CodeInvalidToken, "Invalid or expired verification token", http.StatusBadRequest)
	ErrInvalidResetToken     = New(CodeInvalidToken, "Invalid or expired reset token", http.StatusBadRequest)
	ErrEmailAlreadyVerified  = New(CodeInvalidRequest, "Email is already verified", http.StatusBadRequest)
	ErrProfileAccessDenied   = New(CodeForbidden, "Not authorized to access this profile", http.StatusForbidden)
	ErrAuthenticationMissing = New(CodeUnauthorized, "User not authenticated", http.StatusUnauthorized)

	// Пользователи
	ErrUserNotFound       = New(CodeNotFound, "User not found", http.StatusNotFound)
	ErrEmailAlreadyExists = New(CodeAlreadyExists, "Email already exists", http.StatusBadRequest)

	// Запросы
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrInvalidBody      = New(CodeInvalidInput, "Invalid request body", http.StatusBadRequest)
	ErrBodyTooLarge     = New(CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
	ErrRouteNotFound    = New(CodeNotFound, "Route not found", http.StatusNotFound)
	ErrTooManyRequests  = New(CodeTooManyRequests, "Too many requests, please try again later", http.StatusTooManyRequests)

	// Системные
	ErrInternal           = Internal(nil)
	ErrServiceUnavailable = New(CodeServiceUnavailable, "Service unavailable", http.StatusServiceUnavailable)
)

// =========================================================================
// Фабрики
// =========================================================================

// ValidationError - 400 с картой "поле -> сообщение" и первым сообщением в message
func ValidationError(message string, details interface{}) *AppError {
	if message == "" {
		message = ErrValidationFailed.Message
	}
	return ErrValidationFailed.WithMessage(message).WithDetails(details)
}

// EmailDeliveryFailed - письмо не ушло, причина сохраняется в Err
func EmailDeliveryFailed(err error, message string) *AppError {
	return Wrap(err, CodeEmailDeliveryFailed, message, http.StatusInternalServerError)
}

// NewBadRequestError - 400 с произвольным текстом
func NewBadRequestError(message string) *AppError {
	return New(CodeInvalidRequest, message, http.StatusBadRequest)
}

// NewNotFoundError - 404 с произвольным текстом
func NewNotFoundError(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// NewStatusError - ошибка с произвольным статусом, код подбирается по статусу
func NewStatusError(status int, message string) *AppError {
	code := CodeInternalError
	switch {
	case status == http.StatusServiceUnavailable:
		code = CodeServiceUnavailable
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusTooManyRequests:
		code = CodeTooManyRequests
	case status >= 400 && status < 500:
		code = CodeInvalidRequest
	}
	return New(code, message, status)
}
