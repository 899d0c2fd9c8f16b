package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// UserResponse представляет пользователя в формате для ответа клиенту.
// Хеш пароля наружу не отдается никогда.
type UserResponse struct {
	ID              uint      `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	SelectedSession string    `json:"selected_session,omitempty"`
	IsBlocked       bool      `json:"is_blocked"`
	CreatedAt       time.Time `json:"created_at"`
}

// AuthResponse — ответ на успешный вход: пользователь плюс токен
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:              user.ID,
		FullName:        user.FullName,
		Email:           user.Email,
		Role:            user.Role,
		SelectedSession: user.SelectedSession,
		IsBlocked:       user.IsBlocked,
		CreatedAt:       user.CreatedAt,
	}
}

// NewListUserResponse создает слайс DTO для списка пользователей
func NewListUserResponse(users []entity.User) []*UserResponse {
	list := make([]*UserResponse, len(users))
	for i := range users {
		list[i] = NewUserResponse(&users[i])
	}
	return list
}
