package domain

import (
	"encoding/json"
	"time"
)

// ChangeType classifies why a version was created.
type ChangeType string

const (
	ChangeInitial      ChangeType = "initial"
	ChangeUpdate       ChangeType = "update"
	ChangeRollback     ChangeType = "rollback"
	ChangeRegeneration ChangeType = "regeneration"
)

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeInitial, ChangeUpdate, ChangeRollback, ChangeRegeneration:
		return true
	}
	return false
}

// VersionSnapshot is the set of fields frozen into a version.
type VersionSnapshot struct {
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// Equal reports whether two snapshots carry identical content.
// Used to suppress no-op versions.
func (s VersionSnapshot) Equal(o VersionSnapshot) bool {
	return s.Title == o.Title && s.Summary == o.Summary &&
		s.Topic == o.Topic && s.Confidence == o.Confidence
}

// ContentVersion is one entry in an item's append-only version history.
// version_number starts at 1 and is strictly increasing per item;
// exactly one version per item has is_active=true.
type ContentVersion struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID     string     `gorm:"column:content_id;size:36;uniqueIndex:idx_content_version,priority:1" json:"content_id"`
	VersionNumber int        `gorm:"column:version_number;uniqueIndex:idx_content_version,priority:2" json:"version_number"`
	Title         string     `gorm:"column:title;size:255" json:"title"`
	Summary       string     `gorm:"column:summary;type:text" json:"summary"`
	Topic         string     `gorm:"column:topic;size:64" json:"topic"`
	Confidence    float64    `gorm:"column:confidence" json:"confidence"`
	ChangeType    ChangeType `gorm:"column:change_type;size:16" json:"change_type"`
	ChangeReason  string     `gorm:"column:change_reason;size:255" json:"change_reason"`
	Author        string     `gorm:"column:author;size:64" json:"author"`
	IsActive      bool       `gorm:"column:is_active;index" json:"is_active"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (ContentVersion) TableName() string {
	return "content_versions"
}

// Snapshot returns the content frozen into this version.
func (v *ContentVersion) Snapshot() VersionSnapshot {
	return VersionSnapshot{
		Title:      v.Title,
		Summary:    v.Summary,
		Topic:      v.Topic,
		Confidence: v.Confidence,
	}
}

// SetSnapshot copies snapshot fields into the version row.
func (v *ContentVersion) SetSnapshot(s VersionSnapshot) {
	v.Title = s.Title
	v.Summary = s.Summary
	v.Topic = s.Topic
	v.Confidence = s.Confidence
}

// ChangeLogEntry is an immutable audit record of a version transition.
// Append-only; never updated or deleted.
type ChangeLogEntry struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID   string    `gorm:"column:content_id;size:36;index" json:"content_id"`
	FromVersion int       `gorm:"column:from_version" json:"from_version"` // 0 for initial
	ToVersion   int       `gorm:"column:to_version" json:"to_version"`
	ActionType  string    `gorm:"column:action_type;size:16" json:"action_type"`
	Diff        string    `gorm:"column:diff;type:text" json:"diff"`
	Author      string    `gorm:"column:author;size:64" json:"author"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ChangeLogEntry) TableName() string {
	return "content_change_log"
}

// fieldDiff is one before/after pair inside a change log diff.
type fieldDiff struct {
	Field  string      `json:"field"`
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// BuildDiff serializes the changed fields between two snapshots.
// before may be nil for the initial version.
func BuildDiff(before *VersionSnapshot, after VersionSnapshot) string {
	var diffs []fieldDiff
	if before == nil {
		diffs = append(diffs,
			fieldDiff{Field: "title", Before: nil, After: after.Title},
			fieldDiff{Field: "summary", Before: nil, After: after.Summary},
			fieldDiff{Field: "topic", Before: nil, After: after.Topic},
			fieldDiff{Field: "confidence", Before: nil, After: after.Confidence},
		)
	} else {
		if before.Title != after.Title {
			diffs = append(diffs, fieldDiff{Field: "title", Before: before.Title, After: after.Title})
		}
		if before.Summary != after.Summary {
			diffs = append(diffs, fieldDiff{Field: "summary", Before: before.Summary, After: after.Summary})
		}
		if before.Topic != after.Topic {
			diffs = append(diffs, fieldDiff{Field: "topic", Before: before.Topic, After: after.Topic})
		}
		if before.Confidence != after.Confidence {
			diffs = append(diffs, fieldDiff{Field: "confidence", Before: before.Confidence, After: after.Confidence})
		}
	}
	data, err := json.Marshal(diffs)
	if err != nil {
		return "[]"
	}
	return string(data)
}
