package repository

import (
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// ChangeLogRepository append-only change log reads. Entries are written
// inside VersionRepository.Transition; there is deliberately no update
// or delete here.
type ChangeLogRepository interface {
	FindByContentID(contentID string) ([]*domain.ChangeLogEntry, error)
}

type changeLogRepository struct {
	db *gorm.DB
}

// NewChangeLogRepository creates a new ChangeLogRepository
func NewChangeLogRepository(db *gorm.DB) ChangeLogRepository {
	return &changeLogRepository{db: db}
}

func (r *changeLogRepository) FindByContentID(contentID string) ([]*domain.ChangeLogEntry, error) {
	var entries []*domain.ChangeLogEntry
	err := r.db.Where("content_id = ?", contentID).Order("created_at ASC, id ASC").Find(&entries).Error
	return entries, err
}
