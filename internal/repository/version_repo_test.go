package repository

import (
	"testing"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	)
	require.NoError(t, err)
	return db
}

func newVersion(contentID string, number int, title string, changeType domain.ChangeType) *domain.ContentVersion {
	return &domain.ContentVersion{
		ContentID:     contentID,
		VersionNumber: number,
		Title:         title,
		Summary:       "A short practical summary about sleep hygiene and evening routines.",
		Topic:         "sleep",
		Confidence:    0.8,
		ChangeType:    changeType,
		Author:        "system",
	}
}

func TestVersionRepository_InitialTransition(t *testing.T) {
	repo := NewVersionRepository(setupTestDB(t))
	contentID := uuid.NewString()

	v1 := newVersion(contentID, 1, "Evening Wind-Down Routine", domain.ChangeInitial)
	entry := &domain.ChangeLogEntry{
		ContentID: contentID, FromVersion: 0, ToVersion: 1,
		ActionType: string(domain.ChangeInitial), Author: "system",
	}
	require.NoError(t, repo.Transition(v1, entry, 0))

	active, err := repo.FindActive(contentID)
	require.NoError(t, err)
	assert.Equal(t, 1, active.VersionNumber)
	assert.True(t, active.IsActive)
}

func TestVersionRepository_InitialConflictWhenHistoryExists(t *testing.T) {
	repo := NewVersionRepository(setupTestDB(t))
	contentID := uuid.NewString()

	require.NoError(t, repo.Transition(newVersion(contentID, 1, "First", domain.ChangeInitial), nil, 0))

	err := repo.Transition(newVersion(contentID, 2, "Second", domain.ChangeInitial), nil, 0)
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestVersionRepository_TransitionKeepsSingleActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	contentID := uuid.NewString()

	require.NoError(t, repo.Transition(newVersion(contentID, 1, "First", domain.ChangeInitial), nil, 0))
	require.NoError(t, repo.Transition(newVersion(contentID, 2, "Second", domain.ChangeUpdate), nil, 1))
	require.NoError(t, repo.Transition(newVersion(contentID, 3, "Third", domain.ChangeUpdate), nil, 2))

	var activeCount int64
	require.NoError(t, db.Model(&domain.ContentVersion{}).
		Where("content_id = ? AND is_active = ?", contentID, true).
		Count(&activeCount).Error)
	assert.Equal(t, int64(1), activeCount)

	active, err := repo.FindActive(contentID)
	require.NoError(t, err)
	assert.Equal(t, 3, active.VersionNumber)

	versions, err := repo.FindByContentID(contentID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	// newest first
	assert.Equal(t, 3, versions[0].VersionNumber)
	assert.Equal(t, 1, versions[2].VersionNumber)
}

func TestVersionRepository_StaleExpectedActiveConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	contentID := uuid.NewString()

	require.NoError(t, repo.Transition(newVersion(contentID, 1, "First", domain.ChangeInitial), nil, 0))
	require.NoError(t, repo.Transition(newVersion(contentID, 2, "Second", domain.ChangeUpdate), nil, 1))

	// a concurrent writer already moved active to v2; expecting v1 is stale
	err := repo.Transition(newVersion(contentID, 3, "Third", domain.ChangeUpdate), nil, 1)
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	// nothing was written and v2 is still active
	var total int64
	require.NoError(t, db.Model(&domain.ContentVersion{}).
		Where("content_id = ?", contentID).Count(&total).Error)
	assert.Equal(t, int64(2), total)

	active, err := repo.FindActive(contentID)
	require.NoError(t, err)
	assert.Equal(t, 2, active.VersionNumber)
	assert.True(t, active.IsActive)
}

func TestVersionRepository_ChangeLogWrittenWithTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	logs := NewChangeLogRepository(db)
	contentID := uuid.NewString()

	require.NoError(t, repo.Transition(newVersion(contentID, 1, "First", domain.ChangeInitial),
		&domain.ChangeLogEntry{ContentID: contentID, FromVersion: 0, ToVersion: 1, ActionType: string(domain.ChangeInitial)}, 0))
	require.NoError(t, repo.Transition(newVersion(contentID, 2, "Second", domain.ChangeUpdate),
		&domain.ChangeLogEntry{ContentID: contentID, FromVersion: 1, ToVersion: 2, ActionType: string(domain.ChangeUpdate)}, 1))

	entries, err := logs.FindByContentID(contentID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].FromVersion)
	assert.Equal(t, 1, entries[0].ToVersion)
	assert.Equal(t, 2, entries[1].ToVersion)
}

func TestVersionRepository_NextVersionNumber(t *testing.T) {
	repo := NewVersionRepository(setupTestDB(t))
	contentID := uuid.NewString()

	next, err := repo.NextVersionNumber(contentID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	require.NoError(t, repo.Transition(newVersion(contentID, 1, "First", domain.ChangeInitial), nil, 0))
	require.NoError(t, repo.Transition(newVersion(contentID, 2, "Second", domain.ChangeUpdate), nil, 1))

	next, err = repo.NextVersionNumber(contentID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestVersionRepository_FindByNumberMissing(t *testing.T) {
	repo := NewVersionRepository(setupTestDB(t))

	_, err := repo.FindByContentIDAndNumber(uuid.NewString(), 7)
	assert.ErrorIs(t, err, common.ErrVersionNotFound)
}
