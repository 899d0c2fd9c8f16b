package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с квизами
type QuizRepository interface {
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	List() ([]entity.Quiz, error)
	ListCategories() ([]string, error)
	// Delete удаляет квиз вместе с его вопросами (каскад на уровне БД)
	Delete(id uint) error
}
