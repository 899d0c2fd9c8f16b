package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// GetOrCreate возвращает попытку пары (userID, quizID), создавая её при отсутствии.
// Гонка двух одновременных вставок разрешается уникальным индексом
// idx_attempt_user_quiz: проигравшая вставка получает 23505 и перечитывает
// существующую запись. Никакой предварительной проверки "существует ли" нет.
func (r *AttemptRepo) GetOrCreate(userID, quizID uint) (*entity.Attempt, bool, error) {
	attempt := &entity.Attempt{
		UserID: userID,
		QuizID: quizID,
		Status: entity.AttemptStatusInProgress,
	}

	err := r.db.Create(attempt).Error
	if err == nil {
		return attempt, true, nil
	}

	if !isUniqueViolation(err) {
		return nil, false, fmt.Errorf("create attempt (user=%d, quiz=%d) failed: %w", userID, quizID, translateError(err))
	}

	existing, err := r.GetByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, false, fmt.Errorf("reload attempt after unique violation (user=%d, quiz=%d): %w", userID, quizID, err)
	}
	return existing, false, nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

// GetByUserAndQuiz возвращает попытку пары (user, quiz)
func (r *AttemptRepo) GetByUserAndQuiz(userID, quizID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&attempt).Error; err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

// FinalizeScore атомарно завершает попытку: записывает счёт и статус Completed.
// Обновление условное (WHERE status = In-Progress), поэтому повторная отправка
// не перезаписывает уже зафиксированный результат:
// - RowsAffected == 1 → попытка завершена этим вызовом
// - RowsAffected == 0 → попытка уже была Completed (или не существует)
func (r *AttemptRepo) FinalizeScore(attemptID uint, totalScore int) (bool, error) {
	result := r.db.Model(&entity.Attempt{}).
		Where("id = ? AND status = ?", attemptID, entity.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"total_score": totalScore,
			"status":      entity.AttemptStatusCompleted,
		})

	if result.Error != nil {
		return false, fmt.Errorf("finalize attempt #%d failed: %w", attemptID, translateError(result.Error))
	}
	return result.RowsAffected > 0, nil
}

// SetCertificateApproved выставляет флаг одобрения сертификата и возвращает
// обновлённую попытку
func (r *AttemptRepo) SetCertificateApproved(attemptID uint, approved bool) (*entity.Attempt, error) {
	result := r.db.Model(&entity.Attempt{}).
		Where("id = ?", attemptID).
		Update("certificate_approved", approved)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.GetByID(attemptID)
}

// ListWithDetails возвращает все попытки с именем студента и названием квиза,
// отсортированные по убыванию счёта
func (r *AttemptRepo) ListWithDetails() ([]repository.AttemptListItem, error) {
	var items []repository.AttemptListItem
	err := r.db.Table("quiz_attempts AS a").
		Select("a.*, u.full_name, u.email, q.title").
		Joins("JOIN users u ON u.id = a.user_id").
		Joins("JOIN quizzes q ON q.id = a.quiz_id").
		Order("a.total_score DESC, a.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// ListByUser возвращает попытки пользователя с названиями квизов
func (r *AttemptRepo) ListByUser(userID uint) ([]repository.AttemptListItem, error) {
	var items []repository.AttemptListItem
	err := r.db.Table("quiz_attempts AS a").
		Select("a.*, u.full_name, u.email, q.title").
		Joins("JOIN users u ON u.id = a.user_id").
		Joins("JOIN quizzes q ON q.id = a.quiz_id").
		Where("a.user_id = ?", userID).
		Order("a.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// CountDistinctUsers возвращает число студентов, сдававших хотя бы один экзамен
func (r *AttemptRepo) CountDistinctUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Attempt{}).Distinct("user_id").Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}
