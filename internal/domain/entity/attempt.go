package entity

import (
	"time"
)

// Константы статусов попытки
const (
	AttemptStatusInProgress = "In-Progress"
	AttemptStatusCompleted  = "Completed"
)

// PointsPerCorrectAnswer — фиксированная стоимость правильного ответа.
// Историческое поведение системы: каждый правильный ответ даёт 5 баллов
// независимо от поля marks вопроса.
const PointsPerCorrectAnswer = 5

// Attempt представляет попытку студента пройти квиз.
// Инвариант: не более одной попытки на пару (user_id, quiz_id) —
// обеспечивается уникальным индексом idx_attempt_user_quiz на уровне БД.
// Статус Completed терминален: после него счёт и статус не меняются.
type Attempt struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;index;uniqueIndex:idx_attempt_user_quiz" json:"user_id"`
	QuizID              uint      `gorm:"not null;index;uniqueIndex:idx_attempt_user_quiz" json:"quiz_id"`
	TotalScore          int       `gorm:"not null;default:0" json:"total_score"`
	Status              string    `gorm:"size:20;not null;default:'In-Progress';index" json:"status"`
	CertificateApproved bool      `gorm:"not null;default:false" json:"certificate_approved"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "quiz_attempts"
}

// IsFinished проверяет, завершена ли попытка
func (a *Attempt) IsFinished() bool {
	return a.Status == AttemptStatusCompleted
}
