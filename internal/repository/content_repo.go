package repository

import (
	"errors"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// ContentRepository content item data access
type ContentRepository interface {
	Create(item *domain.ContentItem) error
	FindByID(id string) (*domain.ContentItem, error)
	FindByDate(date string) (*domain.ContentItem, error)
	Update(item *domain.ContentItem) error
	UpdateStatus(id, status string) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(item *domain.ContentItem) error {
	return r.db.Create(item).Error
}

func (r *contentRepository) FindByID(id string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) FindByDate(date string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.Where("content_date = ?", date).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) Update(item *domain.ContentItem) error {
	return r.db.Save(item).Error
}

func (r *contentRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&domain.ContentItem{}).Where("id = ?", id).Update("status", status).Error
}
