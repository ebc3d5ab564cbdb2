package handlers

import (
	"boilerplate_backend/internal/services"
	"boilerplate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// Signup godoc
// @Summary      Регистрация
// @Description  Создает пользователя и отправляет письмо для подтверждения email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SignupRequest  true  "Данные регистрации"
// @Success      201      {object}  SuccessResponse{data=models.PublicUser}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      429      {object}  apperrors.ErrorResponse
// @Failure      500      {object}  apperrors.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondCreated(c, user)
}

// Login godoc
// @Summary      Вход
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LoginRequest  true  "Учетные данные"
// @Success      200      {object}  SuccessResponse{data=dto.AuthResponse}
// @Failure      401      {object}  apperrors.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, response)
}

// Logout godoc
// @Summary      Выход
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      401  {object}  apperrors.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.MessageResponse{Message: "Logged out successfully"})
}

// Refresh godoc
// @Summary      Обновление токенов
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.RefreshRequest  true  "Refresh-токен"
// @Success      200      {object}  SuccessResponse{data=dto.AuthResponse}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      401      {object}  apperrors.ErrorResponse
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.AuthResponse{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
	})
}

// VerifyEmail godoc
// @Summary      Подтверждение email
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Токен из письма"
// @Success      200    {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      400    {object}  apperrors.ErrorResponse
// @Router       /api/auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.MessageResponse{Message: "Email verified successfully"})
}

// ResendVerification godoc
// @Summary      Повторная отправка письма подтверждения
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.EmailRequest  true  "Email"
// @Success      200      {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      404      {object}  apperrors.ErrorResponse
// @Failure      429      {object}  apperrors.ErrorResponse
// @Router       /api/auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.EmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.MessageResponse{Message: "Verification email sent"})
}

// ForgotPassword godoc
// @Summary      Запрос сброса пароля
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.EmailRequest  true  "Email"
// @Success      200      {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      404      {object}  apperrors.ErrorResponse
// @Failure      500      {object}  apperrors.ErrorResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.EmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.MessageResponse{Message: "Password reset email sent"})
}

// ResetPassword godoc
// @Summary      Сброс пароля
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token    path      string                    true  "Токен из письма"
// @Param        request  body      dto.ResetPasswordRequest  true  "Новый пароль"
// @Success      200      {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Router       /api/auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.MessageResponse{Message: "Password reset successfully"})
}

// Me godoc
// @Summary      Текущий пользователь
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PublicUser}
// @Failure      401  {object}  apperrors.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, user)
}
