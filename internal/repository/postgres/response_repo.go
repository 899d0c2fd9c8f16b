package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ResponseRepo реализует repository.ResponseRepository
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo создает новый репозиторий ответов
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Upsert сохраняет ответ через INSERT ... ON CONFLICT DO UPDATE по паре
// (attempt_id, question_id). Побеждает последняя запись. Вставка обусловлена
// статусом In-Progress владеющей попытки: сохранение, проигравшее гонку
// одновременной отправке, не пройдет и вернет ErrAttemptFinished, поэтому
// зафиксированный счёт не может разойтись с содержимым ответов.
func (r *ResponseRepo) Upsert(response *entity.Response) error {
	now := time.Now()
	result := r.db.Exec(`
		INSERT INTO quiz_responses (attempt_id, question_id, selected_option, is_flagged, created_at, updated_at)
		SELECT a.id, ?, ?, ?, ?, ?
		FROM quiz_attempts a
		WHERE a.id = ? AND a.status = ?
		ON CONFLICT (attempt_id, question_id) DO UPDATE
		SET selected_option = EXCLUDED.selected_option,
		    is_flagged      = EXCLUDED.is_flagged,
		    updated_at      = EXCLUDED.updated_at`,
		response.QuestionID, response.SelectedOption, response.IsFlagged, now, now,
		response.AttemptID, entity.AttemptStatusInProgress)

	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		// Существование попытки вызывающий уже проверил чтением,
		// значит нулевая вставка — это завершённая попытка
		return fmt.Errorf("%w: attempt #%d", apperrors.ErrAttemptFinished, response.AttemptID)
	}
	return nil
}

// GetByAttempt возвращает все ответы попытки
func (r *ResponseRepo) GetByAttempt(attemptID uint) ([]entity.Response, error) {
	var responses []entity.Response
	err := r.db.Where("attempt_id = ?", attemptID).Order("question_id").Find(&responses).Error
	if err != nil {
		return nil, translateError(err)
	}
	return responses, nil
}

// CountCorrect считает правильные ответы попытки одним запросом:
// совпадение с correct_option либо сентинел CODE_SUCCESS для задач с кодом
func (r *ResponseRepo) CountCorrect(attemptID uint) (int64, error) {
	var count int64
	err := r.db.Table("quiz_responses AS r").
		Joins("JOIN questions q ON q.id = r.question_id").
		Where("r.attempt_id = ?", attemptID).
		Where("r.selected_option = q.correct_option OR r.selected_option = ?", entity.CodeSuccessMarker).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}
