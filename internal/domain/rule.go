package domain

import "time"

// Rule action types executed when an approval rule matches.
const (
	RuleActionAutoApprove = "auto_approve"
	RuleActionNotify      = "notify"
	RuleActionEscalate    = "escalate"
	RuleActionAssign      = "assign"
)

// ApprovalRule is a data-defined predicate+action pair. Conditions and
// actions are stored as JSON and decoded by the rules package; rules are
// evaluated oldest-first and the first fully-satisfied rule wins.
type ApprovalRule struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;size:128" json:"name"`
	Conditions string    `gorm:"column:conditions;type:text" json:"conditions"`
	Actions    string    `gorm:"column:actions;type:text" json:"actions"`
	Enabled    bool      `gorm:"column:enabled;index" json:"enabled"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (ApprovalRule) TableName() string {
	return "approval_rules"
}

// RuleEvaluationRecord is the audit trail of one rule evaluation against
// one content item, including per-condition boolean results.
type RuleEvaluationRecord struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RuleID           uint64    `gorm:"column:rule_id;index" json:"rule_id"`
	ContentID        string    `gorm:"column:content_id;size:36;index" json:"content_id"`
	Matched          bool      `gorm:"column:matched" json:"matched"`
	ConditionResults string    `gorm:"column:condition_results;type:text" json:"condition_results"`
	MetricsSnapshot  string    `gorm:"column:metrics_snapshot;type:text" json:"metrics_snapshot"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (RuleEvaluationRecord) TableName() string {
	return "rule_evaluation_records"
}
