package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ResponseRepository определяет методы для работы с сохранёнными ответами.
// Идентичность ответа — пара (attempt_id, question_id); семантика записи —
// upsert: повторное сохранение перезаписывает, побеждает последняя запись.
type ResponseRepository interface {
	// Upsert сохраняет ответ, перезаписывая существующий для той же пары
	// (attempt_id, question_id). Дубликаты невозможны: уникальный индекс
	// idx_response_attempt_question + ON CONFLICT DO UPDATE.
	Upsert(response *entity.Response) error
	GetByAttempt(attemptID uint) ([]entity.Response, error)
	// CountCorrect возвращает число ответов попытки, совпадающих
	// с правильным вариантом своего вопроса; ответы с сентинелом
	// CODE_SUCCESS учитываются как правильные.
	CountCorrect(attemptID uint) (int64, error)
}
