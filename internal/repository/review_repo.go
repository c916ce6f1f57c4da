package repository

import (
	"errors"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// ReviewRepository review queue data access
type ReviewRepository interface {
	Create(item *domain.ReviewItem) error
	FindByID(id uint64) (*domain.ReviewItem, error)
	FindByContentID(contentID string) (*domain.ReviewItem, error)
	Update(item *domain.ReviewItem) error
	Queue(status string, reviewerID string, limit, offset int) ([]*domain.ReviewItem, int64, error)
	CountByStatus(status string) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(item *domain.ReviewItem) error {
	return r.db.Create(item).Error
}

func (r *reviewRepository) FindByID(id uint64) (*domain.ReviewItem, error) {
	var item domain.ReviewItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrReviewItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *reviewRepository) FindByContentID(contentID string) (*domain.ReviewItem, error) {
	var item domain.ReviewItem
	err := r.db.Where("content_id = ?", contentID).Order("created_at DESC").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrReviewItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *reviewRepository) Update(item *domain.ReviewItem) error {
	return r.db.Save(item).Error
}

// Queue returns pending work oldest-first so reviewers drain in FIFO order.
func (r *reviewRepository) Queue(status string, reviewerID string, limit, offset int) ([]*domain.ReviewItem, int64, error) {
	query := r.db.Model(&domain.ReviewItem{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if reviewerID != "" {
		query = query.Where("reviewer_id = ?", reviewerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*domain.ReviewItem
	err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *reviewRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ReviewItem{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
