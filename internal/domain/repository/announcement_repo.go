package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AnnouncementRepository определяет методы для работы с объявлением.
// Объявление хранится единственной строкой (ID=1).
type AnnouncementRepository interface {
	Get() (*entity.Announcement, error)
	Set(message string) error
	Clear() error
}
