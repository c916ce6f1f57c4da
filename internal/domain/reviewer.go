package domain

import "time"

// Reviewer is a human reviewer with a daily assignment capacity.
type Reviewer struct {
	ID                     string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Email                  string    `gorm:"column:email;size:128" json:"email"`
	IsSenior               bool      `gorm:"column:is_senior" json:"is_senior"`
	MaxReviewsPerDay       int       `gorm:"column:max_reviews_per_day" json:"max_reviews_per_day"`
	CurrentReviewsAssigned int       `gorm:"column:current_reviews_assigned" json:"current_reviews_assigned"`
	CreatedAt              time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Reviewer) TableName() string {
	return "reviewers"
}

// HasCapacity reports whether another review can be assigned today.
func (r *Reviewer) HasCapacity() bool {
	return r.CurrentReviewsAssigned < r.MaxReviewsPerDay
}

// Notification is a bookkeeping row emitted on escalate/assign actions.
// Delivery transport is handled outside this service.
type Notification struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReviewItemID uint64    `gorm:"column:review_item_id;index" json:"review_item_id"`
	ContentID    string    `gorm:"column:content_id;size:36" json:"content_id"`
	RecipientID  string    `gorm:"column:recipient_id;size:64" json:"recipient_id"`
	Kind         string    `gorm:"column:kind;size:16" json:"kind"` // escalation | assignment | rule_match
	Message      string    `gorm:"column:message;size:255" json:"message"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
