package domain

import "time"

// Content item lifecycle states. Items are never deleted, only superseded
// by new versions; rejected content stays on record.
const (
	ContentStatusPending      = "pending_review"
	ContentStatusAutoApproved = "auto_approved"
	ContentStatusPublished    = "published"
	ContentStatusRejected     = "rejected"
)

// ContentItem is the canonical record for one day's content.
// Mutated only through the version manager.
type ContentItem struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ContentDate string    `gorm:"column:content_date;uniqueIndex;size:10" json:"content_date"` // YYYY-MM-DD
	Title       string    `gorm:"column:title;size:255" json:"title"`
	Summary     string    `gorm:"column:summary;type:text" json:"summary"`
	Topic       string    `gorm:"column:topic;size:64" json:"topic"`
	Confidence  float64   `gorm:"column:confidence" json:"confidence"`
	Status      string    `gorm:"column:status;size:32;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ContentItem) TableName() string {
	return "content_items"
}

// Snapshot captures the versioned fields of the item.
func (c *ContentItem) Snapshot() VersionSnapshot {
	return VersionSnapshot{
		Title:      c.Title,
		Summary:    c.Summary,
		Topic:      c.Topic,
		Confidence: c.Confidence,
	}
}

// ApplySnapshot writes versioned fields back onto the item (rollback path).
func (c *ContentItem) ApplySnapshot(s VersionSnapshot) {
	c.Title = s.Title
	c.Summary = s.Summary
	c.Topic = s.Topic
	c.Confidence = s.Confidence
}
