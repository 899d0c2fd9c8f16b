package entity

import (
	"time"
)

// Announcement представляет объявление на дашборде студентов
// (например, объявление победителя). Хранится одной строкой с ID=1.
type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Message   string    `gorm:"size:500;not null;default:''" json:"message"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Announcement) TableName() string {
	return "announcements"
}
