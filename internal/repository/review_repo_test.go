package repository

import (
	"testing"
	"time"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository_QueueOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewRepository(db)

	for i := 0; i < 3; i++ {
		item := &domain.ReviewItem{
			ContentID:   uuid.NewString(),
			SafetyScore: 0.7,
			Status:      domain.ReviewPending,
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Minute),
		}
		item.SetIssues([]string{"low engagement score"})
		require.NoError(t, repo.Create(item))
	}

	items, total, err := repo.Queue(string(domain.ReviewPending), "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.True(t, items[0].CreatedAt.Before(items[2].CreatedAt))
}

func TestReviewRepository_QueueFiltersByReviewer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewRepository(db)

	mine := &domain.ReviewItem{ContentID: uuid.NewString(), Status: domain.ReviewPending, ReviewerID: "rev-1"}
	other := &domain.ReviewItem{ContentID: uuid.NewString(), Status: domain.ReviewPending, ReviewerID: "rev-2"}
	require.NoError(t, repo.Create(mine))
	require.NoError(t, repo.Create(other))

	items, total, err := repo.Queue("", "rev-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
}

func TestReviewRepository_FindMissing(t *testing.T) {
	repo := NewReviewRepository(setupTestDB(t))

	_, err := repo.FindByID(999)
	assert.ErrorIs(t, err, common.ErrReviewItemNotFound)
}

func TestReviewerRepository_CapacityGuard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewerRepository(db)

	require.NoError(t, repo.Create(&domain.Reviewer{
		ID: "rev-1", Email: "rev1@example.com", MaxReviewsPerDay: 2,
	}))

	require.NoError(t, repo.IncrementAssigned("rev-1"))
	require.NoError(t, repo.IncrementAssigned("rev-1"))
	assert.ErrorIs(t, repo.IncrementAssigned("rev-1"), common.ErrReviewerAtCapacity)

	reviewer, err := repo.FindByID("rev-1")
	require.NoError(t, err)
	assert.Equal(t, 2, reviewer.CurrentReviewsAssigned)
	assert.False(t, reviewer.HasCapacity())

	require.NoError(t, repo.ResetDailyCounts())
	reviewer, err = repo.FindByID("rev-1")
	require.NoError(t, err)
	assert.Equal(t, 0, reviewer.CurrentReviewsAssigned)
}

func TestDeliveryRepository_UpsertPreservesCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db)
	contentID := uuid.NewString()

	require.NoError(t, repo.Upsert(&domain.DeliveryOptimizationRecord{
		ContentID:       contentID,
		ContentDate:     "2026-08-29",
		ETag:            "abc123",
		LastModified:    time.Now(),
		CompressionType: domain.CompressionGzip,
		ContentSize:     2048,
	}))

	require.NoError(t, repo.IncrementHit(contentID))
	require.NoError(t, repo.IncrementHit(contentID))
	require.NoError(t, repo.IncrementMiss(contentID))

	// recompute after a new active version
	require.NoError(t, repo.Upsert(&domain.DeliveryOptimizationRecord{
		ContentID:       contentID,
		ContentDate:     "2026-08-29",
		ETag:            "def456",
		LastModified:    time.Now(),
		CompressionType: domain.CompressionBrotli,
		ContentSize:     1900,
	}))

	record, err := repo.FindByContentID(contentID)
	require.NoError(t, err)
	assert.Equal(t, "def456", record.ETag)
	assert.Equal(t, int64(2), record.CacheHitCount)
	assert.Equal(t, int64(1), record.CacheMissCount)

	var total int64
	require.NoError(t, db.Model(&domain.DeliveryOptimizationRecord{}).
		Where("content_id = ?", contentID).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestRuleRepository_EnabledOrdered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRuleRepository(db)

	now := time.Now()
	older := &domain.ApprovalRule{Name: "older", Conditions: "[]", Actions: "[]", Enabled: true, CreatedAt: now.Add(-time.Hour)}
	newer := &domain.ApprovalRule{Name: "newer", Conditions: "[]", Actions: "[]", Enabled: true, CreatedAt: now}
	disabled := &domain.ApprovalRule{Name: "disabled", Conditions: "[]", Actions: "[]", Enabled: false, CreatedAt: now.Add(-2 * time.Hour)}
	require.NoError(t, repo.Create(newer))
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(disabled))

	ruleSet, err := repo.FindEnabledOrdered()
	require.NoError(t, err)
	require.Len(t, ruleSet, 2)
	assert.Equal(t, "older", ruleSet[0].Name)
	assert.Equal(t, "newer", ruleSet[1].Name)
}
