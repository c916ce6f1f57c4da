package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/config"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/internal/rules"
	"github.com/dailywell/content-engine/internal/scoring"
	"github.com/dailywell/content-engine/pkg/cache"
	"github.com/dailywell/content-engine/pkg/logger"
	"github.com/google/uuid"
)

// GenerateRequest asks the pipeline for one day's content.
type GenerateRequest struct {
	Date      string `json:"date"`
	Topic     string `json:"topic"`
	Scheduled bool   `json:"scheduled"`
}

// GenerateResult reports what the pipeline did.
type GenerateResult struct {
	Content       *domain.ContentItem `json:"content"`
	Score         scoring.Result      `json:"score"`
	Skipped       bool                `json:"skipped"`
	Regenerated   bool                `json:"regenerated"`
	AutoApproved  bool                `json:"auto_approved"`
	UsedFallback  bool                `json:"used_fallback"`
	ReviewItemID  uint64              `json:"review_item_id,omitempty"`
	MatchedRuleID *uint64             `json:"matched_rule_id,omitempty"`
}

// GenerationService orchestrates the full pipeline: generate, score,
// evaluate approval, then publish or enqueue for review.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Validate(in scoring.Input) scoring.Result
}

type generationService struct {
	generator Generator
	fallback  Generator
	scorer    *scoring.Scorer
	contents  repository.ContentRepository
	rules     repository.RuleRepository
	versions  VersionService
	reviews   ReviewService
	delivery  DeliveryService
	cache     cache.Service
	policy    rules.Fallback
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	generator Generator,
	fallback Generator,
	scorer *scoring.Scorer,
	contents repository.ContentRepository,
	ruleRepo repository.RuleRepository,
	versions VersionService,
	reviews ReviewService,
	delivery DeliveryService,
	cacheSvc cache.Service,
	thresholds config.GovernanceThresholds,
) GenerationService {
	return &generationService{
		generator: generator,
		fallback:  fallback,
		scorer:    scorer,
		contents:  contents,
		rules:     ruleRepo,
		versions:  versions,
		reviews:   reviews,
		delivery:  delivery,
		cache:     cacheSvc,
		policy: rules.Fallback{
			MinSafety:         thresholds.AutoApproveSafety,
			MinOverall:        thresholds.AutoApproveOverall,
			BlockedIssueTerms: thresholds.BlockedIssueTerms,
		},
	}
}

// Generate runs the pipeline for one date. Scheduled callers are
// idempotent per date: existing content short-circuits with skipped:true.
// Manual callers regenerate existing content as a new version.
func (s *generationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrInvalidInput)
	}

	existing, err := s.contents.FindByDate(date)
	switch {
	case err == nil:
		if req.Scheduled {
			return &GenerateResult{Content: existing, Skipped: true}, nil
		}
		return s.regenerate(ctx, existing, req.Topic)
	case errors.Is(err, common.ErrContentNotFound):
		return s.createNew(ctx, date, req.Topic)
	default:
		return nil, err
	}
}

// Validate scores content without writing anything.
func (s *generationService) Validate(in scoring.Input) scoring.Result {
	return s.scorer.Score(in)
}

func (s *generationService) createNew(ctx context.Context, date, topic string) (*GenerateResult, error) {
	generated, usedFallback, err := s.generate(ctx, date, topic)
	if err != nil {
		return nil, err
	}

	score := s.scoreContent(generated)

	item := &domain.ContentItem{
		ID:          uuid.NewString(),
		ContentDate: date,
		Title:       generated.Title,
		Summary:     generated.Summary,
		Topic:       generated.Topic,
		Confidence:  generated.Confidence,
		Status:      domain.ContentStatusPending,
	}

	outcome := s.evaluateApproval(ctx, item.ID, item.Topic, generated.Confidence, score)
	if outcome.AutoApprove {
		item.Status = domain.ContentStatusAutoApproved
	}

	if err := s.contents.Create(item); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrContentExists, err)
	}
	if _, _, err := s.versions.CreateVersion(ctx, item.ID, item.Snapshot(),
		domain.ChangeInitial, "initial generation", "system", 0); err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Content:       item,
		Score:         score,
		UsedFallback:  usedFallback,
		AutoApproved:  outcome.AutoApprove,
		MatchedRuleID: outcome.MatchedRuleID,
	}
	if err := s.finish(ctx, item, score, outcome, result); err != nil {
		return nil, err
	}
	return result, nil
}

// regenerate produces a fresh candidate for an existing date as a new
// version and re-runs governance on it.
func (s *generationService) regenerate(ctx context.Context, item *domain.ContentItem, topic string) (*GenerateResult, error) {
	generated, usedFallback, err := s.generate(ctx, item.ContentDate, topic)
	if err != nil {
		return nil, err
	}

	score := s.scoreContent(generated)

	active, err := s.versions.ActiveVersion(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	snapshot := domain.VersionSnapshot{
		Title:      generated.Title,
		Summary:    generated.Summary,
		Topic:      generated.Topic,
		Confidence: generated.Confidence,
	}
	_, created, err := s.versions.CreateVersion(ctx, item.ID, snapshot,
		domain.ChangeRegeneration, "manual regeneration", "system", active.VersionNumber)
	if err != nil {
		return nil, err
	}
	if !created {
		return &GenerateResult{Content: item, Score: score, Skipped: true, UsedFallback: usedFallback}, nil
	}
	item.ApplySnapshot(snapshot)

	outcome := s.evaluateApproval(ctx, item.ID, item.Topic, item.Confidence, score)

	result := &GenerateResult{
		Content:       item,
		Score:         score,
		Regenerated:   true,
		UsedFallback:  usedFallback,
		AutoApproved:  outcome.AutoApprove,
		MatchedRuleID: outcome.MatchedRuleID,
	}
	if err := s.finish(ctx, item, score, outcome, result); err != nil {
		return nil, err
	}
	return result, nil
}

// finish publishes auto-approved content or enqueues it for review,
// running the matched rule's remaining actions against the queue item.
func (s *generationService) finish(ctx context.Context, item *domain.ContentItem, score scoring.Result, outcome rules.Outcome, result *GenerateResult) error {
	log := logger.WithContentID(item.ID)

	if result.AutoApproved {
		item.Status = domain.ContentStatusPublished
		if err := s.contents.UpdateStatus(item.ID, domain.ContentStatusPublished); err != nil {
			return err
		}
		if _, err := s.delivery.Recompute(ctx, item); err != nil {
			log.Warn().Err(err).Msg("delivery recompute after publication failed")
		}
		contentGeneratedTotal.WithLabelValues("auto_approved").Inc()
		log.Info().Str("date", item.ContentDate).Float64("overall", score.Overall).
			Msg("content auto-approved and published")
		return nil
	}

	item.Status = domain.ContentStatusPending
	if err := s.contents.UpdateStatus(item.ID, domain.ContentStatusPending); err != nil {
		return err
	}
	review, err := s.reviews.Enqueue(ctx, item, score)
	if err != nil {
		return err
	}
	result.ReviewItemID = review.ID

	if outcome.MatchedRuleID != nil && len(outcome.Actions) > 0 {
		// the queue item exists; a failed action never fails generation
		if err := s.reviews.ApplyRuleActions(ctx, review, outcome.MatchedRuleName, outcome.Actions); err != nil {
			log.Warn().Err(err).Str("rule", outcome.MatchedRuleName).Msg("rule action dispatch failed")
		}
	}

	if result.UsedFallback {
		contentGeneratedTotal.WithLabelValues("fallback").Inc()
	} else {
		contentGeneratedTotal.WithLabelValues("pending_review").Inc()
	}
	log.Info().Str("date", item.ContentDate).Uint64("review_item_id", review.ID).
		Float64("safety", score.Safety).Msg("content enqueued for review")
	return nil
}

// generate calls the upstream generator and falls back to curated
// content when it is exhausted.
func (s *generationService) generate(ctx context.Context, date, topic string) (*GeneratedContent, bool, error) {
	generated, err := s.generator.Generate(ctx, date, topic)
	if err == nil {
		return generated, false, nil
	}
	if !errors.Is(err, common.ErrGenerationFailed) {
		return nil, false, err
	}

	logger.GetLogger().Warn().Err(err).Str("date", date).Msg("generator exhausted, serving fallback content")
	generated, err = s.fallback.Generate(ctx, date, topic)
	if err != nil {
		return nil, false, err
	}
	return generated, true, nil
}

func (s *generationService) scoreContent(g *GeneratedContent) scoring.Result {
	score := s.scorer.Score(scoring.Input{
		Title:      g.Title,
		Summary:    g.Summary,
		Topic:      g.Topic,
		Confidence: g.Confidence,
	})

	scoreHistogram.WithLabelValues("safety").Observe(score.Safety)
	scoreHistogram.WithLabelValues("overall").Observe(score.Overall)
	scoreHistogram.WithLabelValues("readability").Observe(score.Readability)
	scoreHistogram.WithLabelValues("engagement").Observe(score.Engagement)
	return score
}

// evaluateApproval runs the rule engine, records the audit trail, and
// applies the static fallback thresholds when no rule matched.
func (s *generationService) evaluateApproval(ctx context.Context, contentID, topic string, confidence float64, score scoring.Result) rules.Outcome {
	m := rules.Metrics{
		SafetyScore:          score.Safety,
		OverallScore:         score.Overall,
		FormatScore:          score.Format,
		ReadabilityScore:     score.Readability,
		EngagementScore:      score.Engagement,
		AppropriatenessScore: score.Appropriateness,
		Confidence:           confidence,
		Topic:                topic,
		Issues:               score.Issues,
	}

	out := rules.Evaluate(s.loadRules(ctx), m)
	s.recordEvaluations(contentID, m, out)

	switch {
	case out.MatchedRuleID != nil:
		ruleEvaluationsTotal.WithLabelValues("matched").Inc()
	case s.policy.AutoApprove(m):
		out.AutoApprove = true
		ruleEvaluationsTotal.WithLabelValues("fallback").Inc()
	default:
		ruleEvaluationsTotal.WithLabelValues("none").Inc()
	}
	return out
}

// loadRules serves the enabled rule set cache-first.
func (s *generationService) loadRules(ctx context.Context) []domain.ApprovalRule {
	if data, err := s.cache.GetRuleSet(ctx); err == nil && len(data) > 0 {
		var ruleSet []domain.ApprovalRule
		if err := json.Unmarshal(data, &ruleSet); err == nil {
			return ruleSet
		}
	}

	ruleSet, err := s.rules.FindEnabledOrdered()
	if err != nil {
		// fail closed: no rules means the static fallback decides
		logger.GetLogger().Error().Err(err).Msg("rule set load failed")
		return nil
	}
	if err := s.cache.SetRuleSet(ctx, ruleSet); err != nil {
		logger.GetLogger().Debug().Err(err).Msg("rule set cache write failed")
	}
	return ruleSet
}

func (s *generationService) recordEvaluations(contentID string, m rules.Metrics, out rules.Outcome) {
	if len(out.Evaluations) == 0 {
		return
	}
	snapshot, err := json.Marshal(m)
	if err != nil {
		snapshot = []byte("{}")
	}

	records := make([]domain.RuleEvaluationRecord, 0, len(out.Evaluations))
	now := time.Now().UTC()
	for _, eval := range out.Evaluations {
		conditions, err := json.Marshal(eval.Conditions)
		if err != nil {
			conditions = []byte("[]")
		}
		records = append(records, domain.RuleEvaluationRecord{
			RuleID:           eval.RuleID,
			ContentID:        contentID,
			Matched:          eval.Matched,
			ConditionResults: string(conditions),
			MetricsSnapshot:  string(snapshot),
			CreatedAt:        now,
		})
	}
	if err := s.rules.RecordEvaluations(records); err != nil {
		log := logger.WithContentID(contentID)
		log.Warn().Err(err).Msg("rule evaluation audit write failed")
	}
}
