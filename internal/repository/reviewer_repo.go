package repository

import (
	"errors"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// ReviewerRepository reviewer roster data access
type ReviewerRepository interface {
	Create(reviewer *domain.Reviewer) error
	FindByID(id string) (*domain.Reviewer, error)
	FindSeniors() ([]*domain.Reviewer, error)
	IncrementAssigned(id string) error
	ResetDailyCounts() error
}

type reviewerRepository struct {
	db *gorm.DB
}

// NewReviewerRepository creates a new ReviewerRepository
func NewReviewerRepository(db *gorm.DB) ReviewerRepository {
	return &reviewerRepository{db: db}
}

func (r *reviewerRepository) Create(reviewer *domain.Reviewer) error {
	return r.db.Create(reviewer).Error
}

func (r *reviewerRepository) FindByID(id string) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	err := r.db.Where("id = ?", id).First(&reviewer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}

func (r *reviewerRepository) FindSeniors() ([]*domain.Reviewer, error) {
	var reviewers []*domain.Reviewer
	err := r.db.Where("is_senior = ?", true).
		Order("current_reviews_assigned ASC").Find(&reviewers).Error
	return reviewers, err
}

// IncrementAssigned bumps the daily counter only while the reviewer is
// under capacity; a full reviewer returns ErrReviewerAtCapacity without
// a write.
func (r *reviewerRepository) IncrementAssigned(id string) error {
	res := r.db.Model(&domain.Reviewer{}).
		Where("id = ? AND current_reviews_assigned < max_reviews_per_day", id).
		Update("current_reviews_assigned", gorm.Expr("current_reviews_assigned + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrReviewerAtCapacity
	}
	return nil
}

func (r *reviewerRepository) ResetDailyCounts() error {
	return r.db.Model(&domain.Reviewer{}).
		Where("current_reviews_assigned > 0").
		Update("current_reviews_assigned", 0).Error
}
