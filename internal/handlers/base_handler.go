package handlers

import (
	"errors"
	"net/http"

	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/middleware"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/internal/monitoring"
	"boilerplate_backend/internal/validator"
	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
	monitor   *monitoring.ErrorMonitor
}

func NewBaseHandler(v *validator.Validator, monitor *monitoring.ErrorMonitor) *BaseHandler {
	return &BaseHandler{
		validator: v,
		monitor:   monitor,
	}
}

// SuccessResponse - конверт успешного ответа
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ============================================================================
// 2. Ответы
// ============================================================================

func (h *BaseHandler) RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func (h *BaseHandler) RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleServiceError(c, apperrors.ErrBodyTooLarge)
			return false
		}
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		h.HandleServiceError(c, apperrors.ErrInvalidBody)
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}

	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		h.HandleServiceError(c, apperrors.ValidationError(vErr.First, vErr.Errors))
	} else {
		h.HandleServiceError(c, apperrors.Internal(err))
	}
	return false
}

// ============================================================================
// 4. Ошибки
// ============================================================================

// HandleServiceError - учет через ErrorMonitor и конверт ошибки клиенту
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	if h.monitor != nil {
		h.monitor.Report(c.Request.Context(), err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
	apperrors.HandleError(c, err)
}

// ============================================================================
// 5. Текущий пользователь
// ============================================================================

func (h *BaseHandler) CurrentUser(c *gin.Context) (string, models.UserRole, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		h.HandleServiceError(c, apperrors.ErrAuthenticationMissing)
		return "", "", false
	}

	role, _ := c.Get(middleware.ContextRole)
	userRole, _ := role.(models.UserRole)
	return userID, userRole, true
}
