package apperrors

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse - конверт ответа об ошибке: {"success": false, "error": {...}}
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *AppError `json:"error"`
}

// Resolve приводит любую ошибку к тому, что можно отдать клиенту.
// Неоперационные ошибки превращаются в общий 500.
func Resolve(err error) *AppError {
	appErr, ok := AsAppError(err)
	if !ok || !appErr.Operational {
		return ErrInternal
	}
	return appErr
}

// HandleError пишет конверт ошибки и прерывает цепочку gin
func HandleError(c *gin.Context, err error) {
	appErr := Resolve(err)
	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Success: false, Error: appErr})
}
