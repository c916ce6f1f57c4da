package repository

import (
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// BatchRepository batch moderation audit data access
type BatchRepository interface {
	Create(op *domain.BatchOperation) error
}

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(op *domain.BatchOperation) error {
	return r.db.Create(op).Error
}
