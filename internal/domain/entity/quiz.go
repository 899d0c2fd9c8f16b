package entity

import (
	"time"
)

// Quiz представляет экзаменационную сессию (квиз)
type Quiz struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:100;not null" json:"title"`
	Category        string     `gorm:"size:100;not null;default:'General';index" json:"category"`
	DurationMinutes int        `gorm:"not null;default:30" json:"duration_minutes"`
	TotalMarks      int        `gorm:"not null;default:0" json:"total_marks"`
	StartTime       *time.Time `gorm:"index" json:"start_time,omitempty"`
	Questions       []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsLocked проверяет, закрыт ли квиз для входа: start_time в будущем.
// Квиз без start_time считается открытым всегда.
func (q *Quiz) IsLocked(now time.Time) bool {
	return q.StartTime != nil && now.Before(*q.StartTime)
}

// SecondsLeft возвращает количество секунд до открытия квиза.
// Для открытого квиза возвращает 0.
func (q *Quiz) SecondsLeft(now time.Time) int64 {
	if !q.IsLocked(now) {
		return 0
	}
	return int64(q.StartTime.Sub(now).Seconds())
}
