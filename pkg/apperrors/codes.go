package apperrors

// ErrorCode - код ошибки, который уходит клиенту в поле error.code
type ErrorCode string

// Коды сгруппированы по сотням:
// 1xxx - аутентификация, 2xxx - входные данные, 3xxx - ресурсы,
// 4xxx - лимиты, 5xxx - системные ошибки.
const (
	// Аутентификация и авторизация
	CodeUnauthorized       ErrorCode = "ERR_1001"
	CodeForbidden          ErrorCode = "ERR_1002"
	CodeInvalidCredentials ErrorCode = "ERR_1003"
	CodeInvalidToken       ErrorCode = "ERR_1004"
	CodeTokenExpired       ErrorCode = "ERR_1005"

	// Входные данные
	CodeInvalidInput     ErrorCode = "ERR_2001"
	CodeInvalidRequest   ErrorCode = "ERR_2002"
	CodeValidationFailed ErrorCode = "ERR_2003"

	// Ресурсы
	CodeNotFound      ErrorCode = "ERR_3001"
	CodeAlreadyExists ErrorCode = "ERR_3002"

	// Лимиты
	CodeTooManyRequests ErrorCode = "ERR_4001"

	// Системные ошибки
	CodeInternalError       ErrorCode = "ERR_5000"
	CodeDatabaseError       ErrorCode = "ERR_5001"
	CodeEmailDeliveryFailed ErrorCode = "ERR_5002"
	CodeServiceUnavailable  ErrorCode = "ERR_5003"
)

var codeNames = map[ErrorCode]string{
	CodeUnauthorized:        "UNAUTHORIZED",
	CodeForbidden:           "FORBIDDEN",
	CodeInvalidCredentials:  "INVALID_CREDENTIALS",
	CodeInvalidToken:        "INVALID_TOKEN",
	CodeTokenExpired:        "TOKEN_EXPIRED",
	CodeInvalidInput:        "INVALID_INPUT",
	CodeInvalidRequest:      "INVALID_REQUEST",
	CodeValidationFailed:    "VALIDATION_ERROR",
	CodeNotFound:            "NOT_FOUND",
	CodeAlreadyExists:       "ALREADY_EXISTS",
	CodeTooManyRequests:     "TOO_MANY_REQUESTS",
	CodeInternalError:       "INTERNAL_SERVER_ERROR",
	CodeDatabaseError:       "DATABASE_ERROR",
	CodeEmailDeliveryFailed: "EMAIL_DELIVERY_FAILED",
	CodeServiceUnavailable:  "SERVICE_UNAVAILABLE",
}

// Name возвращает символьное имя кода (для логов и метрик)
func (c ErrorCode) Name() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
