package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return translateError(r.db.Create(question).Error)
}

// CreateBatch создает несколько вопросов в одной транзакции
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return translateError(r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	}))
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

// GetByQuizID возвращает вопросы квиза в порядке создания
func (r *QuestionRepo) GetByQuizID(quizID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("quiz_id = ?", quizID).Order("id").Find(&questions).Error
	if err != nil {
		return nil, translateError(err)
	}
	return questions, nil
}

// Update обновляет вопрос
func (r *QuestionRepo) Update(question *entity.Question) error {
	return translateError(r.db.Save(question).Error)
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id uint) error {
	return translateError(r.db.Delete(&entity.Question{}, id).Error)
}

// DeleteBatch удаляет вопросы по списку ID и возвращает число удалённых
func (r *QuestionRepo) DeleteBatch(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&entity.Question{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}
