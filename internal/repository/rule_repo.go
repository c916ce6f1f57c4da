package repository

import (
	"errors"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// RuleRepository approval rule data access
type RuleRepository interface {
	Create(rule *domain.ApprovalRule) error
	FindByID(id uint64) (*domain.ApprovalRule, error)
	FindAll() ([]domain.ApprovalRule, error)
	FindEnabledOrdered() ([]domain.ApprovalRule, error)
	SetEnabled(id uint64, enabled bool) error
	RecordEvaluations(records []domain.RuleEvaluationRecord) error
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(rule *domain.ApprovalRule) error {
	return r.db.Create(rule).Error
}

func (r *ruleRepository) FindByID(id uint64) (*domain.ApprovalRule, error) {
	var rule domain.ApprovalRule
	err := r.db.Where("id = ?", id).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) FindAll() ([]domain.ApprovalRule, error) {
	var ruleSet []domain.ApprovalRule
	err := r.db.Order("created_at ASC, id ASC").Find(&ruleSet).Error
	return ruleSet, err
}

// FindEnabledOrdered returns enabled rules in evaluation order,
// oldest-first. The id tiebreak keeps ordering stable for rules created
// in the same instant.
func (r *ruleRepository) FindEnabledOrdered() ([]domain.ApprovalRule, error) {
	var ruleSet []domain.ApprovalRule
	err := r.db.Where("enabled = ?", true).Order("created_at ASC, id ASC").Find(&ruleSet).Error
	return ruleSet, err
}

func (r *ruleRepository) SetEnabled(id uint64, enabled bool) error {
	res := r.db.Model(&domain.ApprovalRule{}).Where("id = ?", id).Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrRuleNotFound
	}
	return nil
}

func (r *ruleRepository) RecordEvaluations(records []domain.RuleEvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}
