package entity

import (
	"time"
)

// Response представляет сохранённый ответ студента на один вопрос
// внутри попытки. Идентичность задаётся парой (attempt_id, question_id):
// повторное сохранение перезаписывает запись, а не дублирует её
// (upsert, побеждает последняя запись).
type Response struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AttemptID      uint      `gorm:"not null;index;uniqueIndex:idx_response_attempt_question" json:"attempt_id"`
	QuestionID     uint      `gorm:"not null;index;uniqueIndex:idx_response_attempt_question" json:"question_id"`
	SelectedOption string    `gorm:"size:20;not null" json:"selected_option"`
	IsFlagged      bool      `gorm:"not null;default:false" json:"is_flagged"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Response) TableName() string {
	return "quiz_responses"
}
