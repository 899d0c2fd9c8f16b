package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/handler/helper"
	"github.com/yourusername/exam-api/internal/service"
)

// UserHandler обрабатывает административные операции над пользователями
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// ListStudents возвращает всех студентов
func (h *UserHandler) ListStudents(c *gin.Context) {
	users, err := h.userService.ListStudents()
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListUserResponse(users))
}

// ListCoordinators возвращает всех координаторов
func (h *UserHandler) ListCoordinators(c *gin.Context) {
	users, err := h.userService.ListCoordinators()
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListUserResponse(users))
}

// CreateCoordinatorRequest представляет создание координатора администратором
type CreateCoordinatorRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// CreateCoordinator создает учетную запись координатора
func (h *UserHandler) CreateCoordinator(c *gin.Context) {
	var req CreateCoordinatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.FullName, req.Email, req.Password, entity.RoleCoordinator)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// SetBlockedRequest представляет блокировку/разблокировку пользователя
type SetBlockedRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

// SetBlocked блокирует или разблокирует пользователя
func (h *UserHandler) SetBlocked(c *gin.Context) {
	targetID := c.MustGet("userID").(uint)

	var req SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetBlocked(targetID, *req.Blocked)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateSessionRequest представляет выбор сессии студентом
type UpdateSessionRequest struct {
	Session string `json:"session" binding:"required,max=100"`
}

// UpdateMySession сохраняет выбранную студентом сессию
func (h *UserHandler) UpdateMySession(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateSession(userID, req.Session)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteUser удаляет пользователя вместе с его попытками
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID := c.MustGet("userID").(uint)

	if err := h.userService.DeleteUser(targetID); err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
