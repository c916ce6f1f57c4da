package repository

import (
	"errors"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryRepository cache metadata data access
type DeliveryRepository interface {
	Upsert(record *domain.DeliveryOptimizationRecord) error
	FindByContentID(contentID string) (*domain.DeliveryOptimizationRecord, error)
	FindByDate(date string) (*domain.DeliveryOptimizationRecord, error)
	FindByDateRange(from, to string) ([]*domain.DeliveryOptimizationRecord, error)
	IncrementHit(contentID string) error
	IncrementMiss(contentID string) error
}

type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

// Upsert writes cache validators keyed by content_id. Hit and miss
// counters survive a recompute.
func (r *deliveryRepository) Upsert(record *domain.DeliveryOptimizationRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content_date", "etag", "last_modified", "cache_control",
			"compression_type", "content_size", "cdn_url", "updated_at",
		}),
	}).Create(record).Error
}

func (r *deliveryRepository) FindByContentID(contentID string) (*domain.DeliveryOptimizationRecord, error) {
	var record domain.DeliveryOptimizationRecord
	err := r.db.Where("content_id = ?", contentID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *deliveryRepository) FindByDate(date string) (*domain.DeliveryOptimizationRecord, error) {
	var record domain.DeliveryOptimizationRecord
	err := r.db.Where("content_date = ?", date).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *deliveryRepository) FindByDateRange(from, to string) ([]*domain.DeliveryOptimizationRecord, error) {
	var records []*domain.DeliveryOptimizationRecord
	err := r.db.Where("content_date BETWEEN ? AND ?", from, to).
		Order("content_date ASC").Find(&records).Error
	return records, err
}

func (r *deliveryRepository) IncrementHit(contentID string) error {
	return r.db.Model(&domain.DeliveryOptimizationRecord{}).
		Where("content_id = ?", contentID).
		Update("cache_hit_count", gorm.Expr("cache_hit_count + 1")).Error
}

func (r *deliveryRepository) IncrementMiss(contentID string) error {
	return r.db.Model(&domain.DeliveryOptimizationRecord{}).
		Where("content_id = ?", contentID).
		Update("cache_miss_count", gorm.Expr("cache_miss_count + 1")).Error
}
