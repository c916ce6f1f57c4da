package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReviewStatus is the closed set of review workflow states.
type ReviewStatus string

const (
	ReviewAutoApproved  ReviewStatus = "auto_approved"  // terminal
	ReviewPending       ReviewStatus = "pending_review" // initial
	ReviewApproved      ReviewStatus = "approved"       // terminal, triggers publication
	ReviewRejected      ReviewStatus = "rejected"       // terminal
	ReviewEscalated     ReviewStatus = "escalated"      // re-enterable
)

// ReviewAction is a reviewer-driven transition trigger.
type ReviewAction string

const (
	ActionApprove  ReviewAction = "approve"
	ActionReject   ReviewAction = "reject"
	ActionEscalate ReviewAction = "escalate"
	// ActionReassign returns an escalated item to the pending queue
	// after senior reassignment.
	ActionReassign ReviewAction = "reassign"
)

// transitions is the exhaustive state machine table. A (state, action)
// pair absent from the table is an invalid transition.
var transitions = map[ReviewStatus]map[ReviewAction]ReviewStatus{
	ReviewPending: {
		ActionApprove:  ReviewApproved,
		ActionReject:   ReviewRejected,
		ActionEscalate: ReviewEscalated,
	},
	ReviewEscalated: {
		ActionApprove:  ReviewApproved,
		ActionReject:   ReviewRejected,
		ActionReassign: ReviewPending,
	},
}

// CanTransition returns the resulting state for an action, or false when
// the transition is not allowed from the current state.
func (s ReviewStatus) CanTransition(a ReviewAction) (ReviewStatus, bool) {
	next, ok := transitions[s][a]
	return next, ok
}

// Terminal reports whether no further transitions are possible.
func (s ReviewStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// ParseReviewStatus validates a wire-format status string.
func ParseReviewStatus(raw string) (ReviewStatus, error) {
	switch s := ReviewStatus(raw); s {
	case ReviewAutoApproved, ReviewPending, ReviewApproved, ReviewRejected, ReviewEscalated:
		return s, nil
	}
	return "", fmt.Errorf("unknown review status %q", raw)
}

// ParseReviewAction validates a wire-format action string.
func ParseReviewAction(raw string) (ReviewAction, error) {
	switch a := ReviewAction(raw); a {
	case ActionApprove, ActionReject, ActionEscalate, ActionReassign:
		return a, nil
	}
	return "", fmt.Errorf("unknown review action %q", raw)
}

// ReviewItem tracks one pass of human oversight for a content item.
// A content item can accumulate several review items across its lifetime
// (one per regeneration that fails auto-approval).
type ReviewItem struct {
	ID               uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID        string       `gorm:"column:content_id;size:36;index" json:"content_id"`
	SafetyScore      float64      `gorm:"column:safety_score" json:"safety_score"`
	FlaggedIssues    string       `gorm:"column:flagged_issues;type:text" json:"-"`
	Status           ReviewStatus `gorm:"column:status;size:32;index" json:"status"`
	ReviewerID       string       `gorm:"column:reviewer_id;size:64" json:"reviewer_id"`
	ReviewerEmail    string       `gorm:"column:reviewer_email;size:128" json:"reviewer_email"`
	Notes            string       `gorm:"column:notes;type:text" json:"notes"`
	EscalationReason string       `gorm:"column:escalation_reason;size:255" json:"escalation_reason,omitempty"`
	ReviewedAt       *time.Time   `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	EscalatedAt      *time.Time   `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	CreatedAt        time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (ReviewItem) TableName() string {
	return "review_items"
}

// Issues decodes the ordered flagged-issue list.
func (r *ReviewItem) Issues() []string {
	if r.FlaggedIssues == "" {
		return nil
	}
	var issues []string
	if err := json.Unmarshal([]byte(r.FlaggedIssues), &issues); err != nil {
		return nil
	}
	return issues
}

// SetIssues encodes the ordered flagged-issue list.
func (r *ReviewItem) SetIssues(issues []string) {
	if issues == nil {
		issues = []string{}
	}
	data, err := json.Marshal(issues)
	if err != nil {
		r.FlaggedIssues = "[]"
		return
	}
	r.FlaggedIssues = string(data)
}

// MarshalJSON includes the decoded issue list in API payloads.
func (r ReviewItem) MarshalJSON() ([]byte, error) {
	type alias ReviewItem
	return json.Marshal(struct {
		alias
		Issues []string `json:"flagged_issues"`
	}{
		alias:  alias(r),
		Issues: (&r).Issues(),
	})
}
