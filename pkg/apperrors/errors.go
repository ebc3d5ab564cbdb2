package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError - единственный тип ошибки приложения.
// Operational=true означает ожидаемую ошибку (неверный пароль, нет ресурса),
// её сообщение можно показывать клиенту. Остальные схлопываются в 500.
type AppError struct {
	Code        ErrorCode   `json:"code"`
	Message     string      `json:"message"`
	Details     interface{} `json:"details,omitempty"`
	Err         error       `json:"-"`
	HTTPCode    int         `json:"-"`
	Operational bool        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New - конструктор операционной ошибки
func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		HTTPCode:    httpCode,
		Operational: true,
	}
}

// Wrap - операционная ошибка с причиной
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Err:         err,
		HTTPCode:    httpCode,
		Operational: true,
	}
}

// Internal - неожиданная ошибка, клиент увидит только общий текст
func Internal(err error) *AppError {
	return &AppError{
		Code:     CodeInternalError,
		Message:  "Internal server error",
		Err:      err,
		HTTPCode: http.StatusInternalServerError,
	}
}

// WithDetails возвращает копию ошибки с деталями.
// Предопределенные ошибки - общие переменные, поэтому не мутируем их.
func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithError возвращает копию ошибки с причиной
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// WithMessage возвращает копию ошибки с другим текстом
func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

// Is сравнивает ошибки по коду и статусу
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.HTTPCode == t.HTTPCode && e.Message == t.Message
}

// MarshalJSON - в ответ попадают только code, message и details
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// AsAppError - пытается достать *AppError из цепочки
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
