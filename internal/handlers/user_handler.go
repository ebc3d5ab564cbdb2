package handlers

import (
	"boilerplate_backend/internal/services"
	"boilerplate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// List godoc
// @Summary      Список пользователей
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Страница (с 1)"
// @Param        limit  query     int  false  "Размер страницы (до 100)"
// @Success      200    {object}  SuccessResponse{data=dto.UserListResponse}
// @Failure      401    {object}  apperrors.ErrorResponse
// @Failure      403    {object}  apperrors.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query dto.ListUsersQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.userService.List(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, res)
}

// Get godoc
// @Summary      Пользователь по id
// @Description  Администратор видит любой профиль, пользователь только свой
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID пользователя"
// @Success      200  {object}  SuccessResponse{data=models.PublicUser}
// @Failure      403  {object}  apperrors.ErrorResponse
// @Failure      404  {object}  apperrors.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	requesterID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), requesterID, role, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, user)
}

// Create godoc
// @Summary      Создание пользователя
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.CreateUserRequest  true  "Новый пользователь"
// @Success      201      {object}  SuccessResponse{data=models.PublicUser}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      403      {object}  apperrors.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondCreated(c, user)
}

// Update godoc
// @Summary      Изменение пользователя
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "ID пользователя"
// @Param        request  body      dto.UpdateUserRequest  true  "Изменяемые поля"
// @Success      200      {object}  SuccessResponse{data=models.PublicUser}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      404      {object}  apperrors.ErrorResponse
// @Router       /api/users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, user)
}

// Delete godoc
// @Summary      Удаление пользователя
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID пользователя"
// @Success      200  {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      404  {object}  apperrors.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondOK(c, dto.MessageResponse{Message: "User deleted successfully"})
}
