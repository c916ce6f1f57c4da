package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/config"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/internal/scoring"
	"github.com/dailywell/content-engine/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubGenerator returns canned content or a canned error and counts calls.
type stubGenerator struct {
	content GeneratedContent
	err     error
	calls   int
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ string) (*GeneratedContent, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	c := g.content
	return &c, nil
}

func cleanContent() GeneratedContent {
	return GeneratedContent{
		Title:      "A Gentle Evening Stretch Routine",
		Summary:    "A few minutes of light stretching before bed may help you unwind. Consider keeping it short and comfortable.",
		Topic:      "movement",
		Confidence: 0.85,
	}
}

func newGenerationEnv(t *testing.T, db *gorm.DB, upstream Generator) GenerationService {
	t.Helper()

	contents := repository.NewContentRepository(db)
	cacheSvc := cache.NewService(nil)
	delivery := NewDeliveryService(contents, repository.NewDeliveryRepository(db), cacheSvc,
		config.DeliveryConfig{MinCompressSize: 1024, CacheControl: "public, max-age=86400"})
	reviews := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewReviewerRepository(db),
		repository.NewNotificationRepository(db),
		repository.NewBatchRepository(db),
		contents, delivery, cacheSvc)
	versions := newVersionService(t, db)

	retrying := NewRetryingGenerator(upstream, config.GeneratorConfig{
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
		BackoffCap:  5 * time.Millisecond,
	})

	return NewGenerationService(
		retrying,
		StaticFallbackGenerator{},
		scoring.New(scoring.DefaultConfig()),
		contents,
		repository.NewRuleRepository(db),
		versions,
		reviews,
		delivery,
		cacheSvc,
		config.GovernanceThresholds{
			AutoApproveSafety:  0.95,
			AutoApproveOverall: 0.9,
			BlockedIssueTerms:  []string{"prohibited", "inappropriate", "emergency", "urgent"},
		},
	)
}

func TestGeneration_ScheduledIsIdempotentPerDate(t *testing.T) {
	db := setupTestDB(t)
	svc := newGenerationEnv(t, db, &stubGenerator{content: cleanContent()})
	ctx := context.Background()

	created := 0
	skipped := 0
	for i := 0; i < 7; i++ {
		result, err := svc.Generate(ctx, GenerateRequest{Date: "2026-09-01", Scheduled: true})
		require.NoError(t, err)
		if result.Skipped {
			skipped++
		} else {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 6, skipped)

	var rows int64
	require.NoError(t, db.Model(&domain.ContentItem{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestGeneration_AutoApproveViaRule(t *testing.T) {
	db := setupTestDB(t)

	ruleRepo := repository.NewRuleRepository(db)
	require.NoError(t, ruleRepo.Create(&domain.ApprovalRule{
		Name:       "high safety auto approve",
		Conditions: `[{"field":"safety_score","operator":"gte","value":0.9}]`,
		Actions:    `[{"type":"auto_approve"}]`,
		Enabled:    true,
		CreatedAt:  time.Now(),
	}))

	svc := newGenerationEnv(t, db, &stubGenerator{content: cleanContent()})

	result, err := svc.Generate(context.Background(), GenerateRequest{Date: "2026-09-02"})
	require.NoError(t, err)
	assert.True(t, result.AutoApproved)
	require.NotNil(t, result.MatchedRuleID)
	assert.Equal(t, uint64(1), *result.MatchedRuleID)
	assert.Zero(t, result.ReviewItemID)

	content, err := repository.NewContentRepository(db).FindByDate("2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStatusPublished, content.Status)

	// publication side effects: v1 active, delivery record, audit trail
	version, err := repository.NewVersionRepository(db).FindActive(content.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, version.VersionNumber)
	assert.Equal(t, domain.ChangeInitial, version.ChangeType)

	_, err = repository.NewDeliveryRepository(db).FindByContentID(content.ID)
	require.NoError(t, err)

	var audits int64
	require.NoError(t, db.Model(&domain.RuleEvaluationRecord{}).
		Where("content_id = ?", content.ID).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestGeneration_LowScoreGoesToReview(t *testing.T) {
	db := setupTestDB(t)
	hype := cleanContent()
	hype.Summary = "This detox routine will boost your energy every single day, guaranteed results for everyone who tries it."
	svc := newGenerationEnv(t, db, &stubGenerator{content: hype})

	result, err := svc.Generate(context.Background(), GenerateRequest{Date: "2026-09-03"})
	require.NoError(t, err)
	assert.False(t, result.AutoApproved)
	assert.NotZero(t, result.ReviewItemID)

	content, err := repository.NewContentRepository(db).FindByDate("2026-09-03")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStatusPending, content.Status)

	review, err := repository.NewReviewRepository(db).FindByID(result.ReviewItemID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPending, review.Status)
	assert.Equal(t, result.Score.Safety, review.SafetyScore)
}

func TestGeneration_FallbackAfterRetriesExhausted(t *testing.T) {
	db := setupTestDB(t)
	upstream := &stubGenerator{err: errors.New("model endpoint unavailable")}
	svc := newGenerationEnv(t, db, upstream)

	result, err := svc.Generate(context.Background(), GenerateRequest{Date: "2026-09-04"})
	require.NoError(t, err)
	assert.Equal(t, 3, upstream.calls)
	assert.True(t, result.UsedFallback)
	// curated fallback carries low confidence and lands in review
	assert.InDelta(t, 0.4, result.Content.Confidence, 0.001)
	assert.False(t, result.AutoApproved)
	assert.NotZero(t, result.ReviewItemID)
}

func TestGeneration_ManualRegenerationAddsVersion(t *testing.T) {
	db := setupTestDB(t)
	upstream := &stubGenerator{content: cleanContent()}
	svc := newGenerationEnv(t, db, upstream)
	ctx := context.Background()

	first, err := svc.Generate(ctx, GenerateRequest{Date: "2026-09-05"})
	require.NoError(t, err)
	require.False(t, first.Skipped)

	upstream.content.Title = "A Calmer Evening Stretch Routine"
	second, err := svc.Generate(ctx, GenerateRequest{Date: "2026-09-05"})
	require.NoError(t, err)
	assert.True(t, second.Regenerated)

	versions, err := repository.NewVersionRepository(db).FindByContentID(first.Content.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, domain.ChangeRegeneration, versions[0].ChangeType)
	assert.Equal(t, "A Calmer Evening Stretch Routine", versions[0].Title)

	// a fresh review item per regeneration that misses auto-approval
	var reviews int64
	require.NoError(t, db.Model(&domain.ReviewItem{}).
		Where("content_id = ?", first.Content.ID).Count(&reviews).Error)
	assert.Equal(t, int64(2), reviews)
}

func TestGeneration_IdenticalRegenerationSkips(t *testing.T) {
	db := setupTestDB(t)
	svc := newGenerationEnv(t, db, &stubGenerator{content: cleanContent()})
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateRequest{Date: "2026-09-06"})
	require.NoError(t, err)

	result, err := svc.Generate(ctx, GenerateRequest{Date: "2026-09-06"})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.False(t, result.Regenerated)
}

func TestGeneration_RejectsMalformedDate(t *testing.T) {
	svc := newGenerationEnv(t, setupTestDB(t), &stubGenerator{content: cleanContent()})

	_, err := svc.Generate(context.Background(), GenerateRequest{Date: "09/01/2026"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGeneration_ValidateIsReadOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newGenerationEnv(t, db, &stubGenerator{content: cleanContent()})

	score := svc.Validate(scoring.Input{
		Title:      "Cure Your Disease Instantly",
		Summary:    "Take this supplement immediately without consulting your doctor.",
		Confidence: 0.9,
	})
	assert.LessOrEqual(t, score.Safety, 0.3)
	assert.False(t, score.IsValid)

	var rows int64
	require.NoError(t, db.Model(&domain.ContentItem{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestGeneration_MatchedRuleActionsRun(t *testing.T) {
	db := setupTestDB(t)

	reviewers := repository.NewReviewerRepository(db)
	require.NoError(t, reviewers.Create(&domain.Reviewer{ID: "senior-1", IsSenior: true, MaxReviewsPerDay: 10}))

	ruleRepo := repository.NewRuleRepository(db)
	require.NoError(t, ruleRepo.Create(&domain.ApprovalRule{
		Name:       "escalate unsafe content",
		Conditions: `[{"field":"safety_score","operator":"lt","value":0.5}]`,
		Actions:    `[{"type":"escalate"},{"type":"notify","target":"senior"}]`,
		Enabled:    true,
		CreatedAt:  time.Now(),
	}))

	hype := cleanContent()
	hype.Summary = "This detox routine will boost your energy every single day, guaranteed results for everyone who tries it."
	svc := newGenerationEnv(t, db, &stubGenerator{content: hype})

	result, err := svc.Generate(context.Background(), GenerateRequest{Date: "2026-09-07"})
	require.NoError(t, err)
	assert.False(t, result.AutoApproved)
	require.NotNil(t, result.MatchedRuleID)
	require.NotZero(t, result.ReviewItemID)

	// the matched rule's escalate action ran against the queue item
	review, err := repository.NewReviewRepository(db).FindByID(result.ReviewItemID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewEscalated, review.Status)
	assert.Contains(t, review.EscalationReason, "escalate unsafe content")
	require.NotNil(t, review.EscalatedAt)

	// and the notify action reached the senior bench
	var notifications []domain.Notification
	require.NoError(t, db.Where("review_item_id = ?", review.ID).Find(&notifications).Error)
	kinds := map[string]int{}
	for _, n := range notifications {
		assert.Equal(t, "senior-1", n.RecipientID)
		kinds[n.Kind]++
	}
	assert.Equal(t, 1, kinds["escalation"])
	assert.Equal(t, 1, kinds["rule_match"])
}
