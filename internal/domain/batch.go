package domain

import (
	"encoding/json"
	"time"
)

// Batch operation statuses.
const (
	BatchCompleted = "completed"
	BatchPartial   = "partial"
	BatchFailed    = "failed"
)

// BatchItemResult is the outcome for one item inside a batch call.
// Failures are isolated: one failed item never aborts its siblings.
type BatchItemResult struct {
	ReviewItemID uint64 `json:"review_item_id"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// BatchOperation records a batch review call and its per-item outcomes.
type BatchOperation struct {
	ID                   uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Action               string    `gorm:"column:action;size:16" json:"action"`
	TotalItems           int       `gorm:"column:total_items" json:"total_items"`
	SuccessfulOperations int       `gorm:"column:successful_operations" json:"successful_operations"`
	FailedOperations     int       `gorm:"column:failed_operations" json:"failed_operations"`
	Results              string    `gorm:"column:results;type:text" json:"-"`
	InitiatedBy          string    `gorm:"column:initiated_by;size:64" json:"initiated_by"`
	Status               string    `gorm:"column:status;size:16" json:"status"`
	CreatedAt            time.Time `gorm:"column:created_at" json:"created_at"`
}

func (BatchOperation) TableName() string {
	return "batch_operations"
}

// SetResults encodes the per-item results and derives the aggregate status.
func (b *BatchOperation) SetResults(results []BatchItemResult) {
	b.TotalItems = len(results)
	b.SuccessfulOperations = 0
	b.FailedOperations = 0
	for _, r := range results {
		if r.Success {
			b.SuccessfulOperations++
		} else {
			b.FailedOperations++
		}
	}
	switch {
	case b.FailedOperations == 0:
		b.Status = BatchCompleted
	case b.SuccessfulOperations == 0:
		b.Status = BatchFailed
	default:
		b.Status = BatchPartial
	}
	data, err := json.Marshal(results)
	if err != nil {
		b.Results = "[]"
		return
	}
	b.Results = string(data)
}

// ItemResults decodes the per-item results.
func (b *BatchOperation) ItemResults() []BatchItemResult {
	var results []BatchItemResult
	if b.Results == "" {
		return results
	}
	if err := json.Unmarshal([]byte(b.Results), &results); err != nil {
		return nil
	}
	return results
}
