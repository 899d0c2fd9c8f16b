package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий квизов
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новый квиз
func (r *QuizRepo) Create(quiz *entity.Quiz) error {
	return translateError(r.db.Create(quiz).Error)
}

// GetByID возвращает квиз по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.First(&quiz, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

// GetWithQuestions возвращает квиз вместе с вопросами
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.Preload("Questions").First(&quiz, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

// Update обновляет информацию о квизе
func (r *QuizRepo) Update(quiz *entity.Quiz) error {
	return translateError(r.db.Save(quiz).Error)
}

// List возвращает все квизы, отсортированные по времени начала
func (r *QuizRepo) List() ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Order("start_time ASC NULLS FIRST").Find(&quizzes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return quizzes, nil
}

// ListCategories возвращает уникальные категории квизов
func (r *QuizRepo) ListCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&entity.Quiz{}).Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

// Delete удаляет квиз вместе с вопросами в одной транзакции
func (r *QuizRepo) Delete(id uint) error {
	return translateError(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Quiz{}, id).Error
	}))
}
