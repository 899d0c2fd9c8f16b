package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// announcementRowID — объявление хранится единственной строкой
const announcementRowID = 1

// AnnouncementRepo реализует repository.AnnouncementRepository
type AnnouncementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo создает новый репозиторий объявлений
func NewAnnouncementRepo(db *gorm.DB) *AnnouncementRepo {
	return &AnnouncementRepo{db: db}
}

// Get возвращает текущее активное объявление
func (r *AnnouncementRepo) Get() (*entity.Announcement, error) {
	var announcement entity.Announcement
	err := r.db.Where("id = ? AND is_active = ?", announcementRowID, true).First(&announcement).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &announcement, nil
}

// Set записывает текст объявления, перезаписывая предыдущий (upsert по ID=1)
func (r *AnnouncementRepo) Set(message string) error {
	announcement := &entity.Announcement{
		ID:       announcementRowID,
		Message:  message,
		IsActive: true,
	}
	return translateError(r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"message":   message,
			"is_active": true,
		}),
	}).Create(announcement).Error)
}

// Clear деактивирует объявление, не удаляя строку
func (r *AnnouncementRepo) Clear() error {
	return translateError(r.db.Model(&entity.Announcement{}).
		Where("id = ?", announcementRowID).
		Update("is_active", false).Error)
}
