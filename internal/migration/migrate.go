package migration

import (
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/rules"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all governance tables and seeds default
// approval rules when the rules table is empty.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.ContentItem{},
		&domain.ContentVersion{},
		&domain.ChangeLogEntry{},
		&domain.ReviewItem{},
		&domain.ApprovalRule{},
		&domain.RuleEvaluationRecord{},
		&domain.DeliveryOptimizationRecord{},
		&domain.Reviewer{},
		&domain.Notification{},
		&domain.BatchOperation{},
	); err != nil {
		return err
	}

	var count int64
	db.Model(&domain.ApprovalRule{}).Count(&count)
	if count == 0 {
		return seedDefaultRules(db)
	}

	return nil
}

// seedDefaultRules installs the baseline rule set: a conservative
// auto-approve for clean high-scoring content, and an escalation for
// anything whose safety score is clearly below the line. Seed order
// matters; rules evaluate oldest-first.
func seedDefaultRules(db *gorm.DB) error {
	type seed struct {
		name       string
		conditions []rules.Condition
		actions    []rules.Action
	}

	seeds := []seed{
		{
			name: "auto-approve clean high scorers",
			conditions: []rules.Condition{
				{Field: "safety_score", Op: rules.OpGTE, Value: 0.95},
				{Field: "overall_score", Op: rules.OpGTE, Value: 0.9},
				{Field: "issue_count", Op: rules.OpEQ, Value: 0},
			},
			actions: []rules.Action{
				{Type: domain.RuleActionAutoApprove},
			},
		},
		{
			name: "escalate unsafe content",
			conditions: []rules.Condition{
				{Field: "safety_score", Op: rules.OpLT, Value: 0.5},
			},
			actions: []rules.Action{
				{Type: domain.RuleActionEscalate},
				{Type: domain.RuleActionNotify, Target: "senior"},
			},
		},
	}

	for _, s := range seeds {
		conds, err := rules.EncodeConditions(s.conditions)
		if err != nil {
			return err
		}
		actions, err := rules.EncodeActions(s.actions)
		if err != nil {
			return err
		}
		rule := domain.ApprovalRule{
			Name:       s.name,
			Conditions: conds,
			Actions:    actions,
			Enabled:    true,
		}
		if err := db.Create(&rule).Error; err != nil {
			return err
		}
	}

	return nil
}
