package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	ListByRole(role string) ([]entity.User, error)
	Update(user *entity.User) error
	// Delete удаляет пользователя; его попытки удаляются каскадно на уровне БД
	Delete(id uint) error
}
