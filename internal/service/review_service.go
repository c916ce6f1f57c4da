package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/internal/rules"
	"github.com/dailywell/content-engine/internal/scoring"
	"github.com/dailywell/content-engine/pkg/cache"
	"github.com/dailywell/content-engine/pkg/logger"
)

// ActionRequest is one reviewer decision on one queue item.
type ActionRequest struct {
	Action           string `json:"action" binding:"required"`
	ReviewerID       string `json:"reviewer_id" binding:"required"`
	ReviewerEmail    string `json:"reviewer_email"`
	Notes            string `json:"notes"`
	EscalationReason string `json:"escalation_reason"`
}

// BatchRequest applies one action to many queue items.
type BatchRequest struct {
	Action        string   `json:"action" binding:"required"`
	ReviewItemIDs []uint64 `json:"review_item_ids" binding:"required"`
	ReviewerID    string   `json:"reviewer_id" binding:"required"`
	ReviewerEmail string   `json:"reviewer_email"`
	Notes         string   `json:"notes"`
}

// ReviewService drives the human review workflow.
type ReviewService interface {
	Enqueue(ctx context.Context, item *domain.ContentItem, score scoring.Result) (*domain.ReviewItem, error)
	Act(ctx context.Context, id uint64, req ActionRequest) (*domain.ReviewItem, error)
	ApplyRuleActions(ctx context.Context, review *domain.ReviewItem, ruleName string, actions []rules.Action) error
	Queue(ctx context.Context, status, reviewerID string, limit, offset int) ([]*domain.ReviewItem, int64, error)
	PendingDepth(ctx context.Context) int64
	Batch(ctx context.Context, req BatchRequest) (*domain.BatchOperation, error)
}

type reviewService struct {
	reviews       repository.ReviewRepository
	reviewers     repository.ReviewerRepository
	notifications repository.NotificationRepository
	batches       repository.BatchRepository
	contents      repository.ContentRepository
	delivery      DeliveryService
	cache         cache.Service
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviews repository.ReviewRepository,
	reviewers repository.ReviewerRepository,
	notifications repository.NotificationRepository,
	batches repository.BatchRepository,
	contents repository.ContentRepository,
	delivery DeliveryService,
	cacheSvc cache.Service,
) ReviewService {
	return &reviewService{
		reviews:       reviews,
		reviewers:     reviewers,
		notifications: notifications,
		batches:       batches,
		contents:      contents,
		delivery:      delivery,
		cache:         cacheSvc,
	}
}

// Enqueue puts content that failed auto-approval into the pending queue.
func (s *reviewService) Enqueue(ctx context.Context, item *domain.ContentItem, score scoring.Result) (*domain.ReviewItem, error) {
	review := &domain.ReviewItem{
		ContentID:   item.ID,
		SafetyScore: score.Safety,
		Status:      domain.ReviewPending,
	}
	review.SetIssues(score.Issues)

	if err := s.reviews.Create(review); err != nil {
		return nil, err
	}
	s.refreshQueueDepth(ctx, domain.ReviewPending)
	return review, nil
}

// Act applies one reviewer action, enforcing the transition table and
// running the resulting side effects (publication, rejection,
// escalation notifications, reassignment).
func (s *reviewService) Act(ctx context.Context, id uint64, req ActionRequest) (*domain.ReviewItem, error) {
	action, err := domain.ParseReviewAction(req.Action)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	item, err := s.reviews.FindByID(id)
	if err != nil {
		return nil, err
	}

	next, ok := item.Status.CanTransition(action)
	if !ok {
		reviewActionsTotal.WithLabelValues(string(action), "invalid").Inc()
		return nil, fmt.Errorf("%w: %s from %s", common.ErrInvalidTransition, action, item.Status)
	}
	if action == domain.ActionEscalate && req.EscalationReason == "" {
		return nil, common.ErrEscalationReasonRequired
	}

	now := time.Now().UTC()
	item.Status = next
	item.ReviewerID = req.ReviewerID
	item.ReviewerEmail = req.ReviewerEmail
	item.Notes = req.Notes
	item.UpdatedAt = now

	switch action {
	case domain.ActionApprove, domain.ActionReject:
		item.ReviewedAt = &now
	case domain.ActionEscalate:
		item.EscalationReason = req.EscalationReason
		item.EscalatedAt = &now
	case domain.ActionReassign:
		if err := s.reviewers.IncrementAssigned(req.ReviewerID); err != nil {
			return nil, err
		}
	}

	if err := s.reviews.Update(item); err != nil {
		return nil, err
	}

	if err := s.runSideEffects(ctx, item, action, req); err != nil {
		// the transition itself committed; side effect failures are
		// logged, not rolled back
		log := logger.WithContentID(item.ContentID)
		log.Error().Err(err).
			Str("action", string(action)).Msg("review side effect failed")
	}

	reviewActionsTotal.WithLabelValues(string(action), "applied").Inc()
	s.refreshQueueDepth(ctx, domain.ReviewPending)
	return item, nil
}

func (s *reviewService) runSideEffects(ctx context.Context, item *domain.ReviewItem, action domain.ReviewAction, req ActionRequest) error {
	switch action {
	case domain.ActionApprove:
		if err := s.contents.UpdateStatus(item.ContentID, domain.ContentStatusPublished); err != nil {
			return err
		}
		content, err := s.contents.FindByID(item.ContentID)
		if err != nil {
			return err
		}
		_, err = s.delivery.Recompute(ctx, content)
		return err

	case domain.ActionReject:
		return s.contents.UpdateStatus(item.ContentID, domain.ContentStatusRejected)

	case domain.ActionEscalate:
		seniors, err := s.reviewers.FindSeniors()
		if err != nil {
			return err
		}
		for _, senior := range seniors {
			n := &domain.Notification{
				ReviewItemID: item.ID,
				ContentID:    item.ContentID,
				RecipientID:  senior.ID,
				Kind:         "escalation",
				Message:      fmt.Sprintf("review item %d escalated: %s", item.ID, req.EscalationReason),
				CreatedAt:    time.Now().UTC(),
			}
			if err := s.notifications.Create(n); err != nil {
				return err
			}
		}
		return nil

	case domain.ActionReassign:
		n := &domain.Notification{
			ReviewItemID: item.ID,
			ContentID:    item.ContentID,
			RecipientID:  req.ReviewerID,
			Kind:         "assignment",
			Message:      fmt.Sprintf("review item %d assigned to you", item.ID),
			CreatedAt:    time.Now().UTC(),
		}
		return s.notifications.Create(n)
	}
	return nil
}

// ruleActorID marks workflow transitions driven by a matched approval
// rule rather than a human reviewer.
const ruleActorID = "rule-engine"

// ApplyRuleActions executes a matched rule's action list against a
// freshly enqueued review item. Actions run in rule order and are
// isolated from each other; the first error is returned after the rest
// have run. auto_approve is the approval decision itself and is not
// dispatched here.
func (s *reviewService) ApplyRuleActions(ctx context.Context, review *domain.ReviewItem, ruleName string, actions []rules.Action) error {
	var firstErr error
	for _, a := range actions {
		var err error
		switch a.Type {
		case domain.RuleActionAutoApprove:
			continue

		case domain.RuleActionEscalate:
			var updated *domain.ReviewItem
			updated, err = s.Act(ctx, review.ID, ActionRequest{
				Action:           string(domain.ActionEscalate),
				ReviewerID:       ruleActorID,
				EscalationReason: fmt.Sprintf("matched rule %q", ruleName),
			})
			if err == nil {
				*review = *updated
			}

		case domain.RuleActionNotify:
			err = s.notifyRuleMatch(review, ruleName, a.Target)

		case domain.RuleActionAssign:
			err = s.assignByRule(review, ruleName, a.Target)

		default:
			err = fmt.Errorf("%w: unknown action type %q", common.ErrMalformedRule, a.Type)
		}

		if err != nil {
			log := logger.WithContentID(review.ContentID)
			log.Error().Err(err).Str("rule", ruleName).Str("action", a.Type).
				Msg("rule action failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// notifyRuleMatch sends a rule-triggered notification. An empty or
// "senior" target fans out to all senior reviewers; anything else is a
// direct recipient id.
func (s *reviewService) notifyRuleMatch(review *domain.ReviewItem, ruleName, target string) error {
	message := fmt.Sprintf("review item %d flagged by rule %q", review.ID, ruleName)
	now := time.Now().UTC()

	if target == "" || target == "senior" {
		seniors, err := s.reviewers.FindSeniors()
		if err != nil {
			return err
		}
		for _, senior := range seniors {
			n := &domain.Notification{
				ReviewItemID: review.ID,
				ContentID:    review.ContentID,
				RecipientID:  senior.ID,
				Kind:         "rule_match",
				Message:      message,
				CreatedAt:    now,
			}
			if err := s.notifications.Create(n); err != nil {
				return err
			}
		}
		return nil
	}

	return s.notifications.Create(&domain.Notification{
		ReviewItemID: review.ID,
		ContentID:    review.ContentID,
		RecipientID:  target,
		Kind:         "rule_match",
		Message:      message,
		CreatedAt:    now,
	})
}

// assignByRule hands a queue item straight to a named reviewer without a
// status change, honoring the daily capacity guard.
func (s *reviewService) assignByRule(review *domain.ReviewItem, ruleName, target string) error {
	if target == "" {
		return fmt.Errorf("%w: assign action without target", common.ErrMalformedRule)
	}
	if err := s.reviewers.IncrementAssigned(target); err != nil {
		return err
	}

	review.ReviewerID = target
	review.Notes = fmt.Sprintf("assigned by rule %q", ruleName)
	review.UpdatedAt = time.Now().UTC()
	if err := s.reviews.Update(review); err != nil {
		return err
	}

	return s.notifications.Create(&domain.Notification{
		ReviewItemID: review.ID,
		ContentID:    review.ContentID,
		RecipientID:  target,
		Kind:         "assignment",
		Message:      fmt.Sprintf("review item %d assigned to you", review.ID),
		CreatedAt:    time.Now().UTC(),
	})
}

func (s *reviewService) Queue(ctx context.Context, status, reviewerID string, limit, offset int) ([]*domain.ReviewItem, int64, error) {
	if status != "" {
		if _, err := domain.ParseReviewStatus(status); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.reviews.Queue(status, reviewerID, limit, offset)
}

// Batch applies one action to each item sequentially. Items are
// isolated: a failure is recorded in that item's result and the rest
// continue. Partial success is a normal outcome.
func (s *reviewService) Batch(ctx context.Context, req BatchRequest) (*domain.BatchOperation, error) {
	if _, err := domain.ParseReviewAction(req.Action); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if len(req.ReviewItemIDs) == 0 {
		return nil, fmt.Errorf("%w: empty review_item_ids", common.ErrInvalidInput)
	}

	results := make([]domain.BatchItemResult, 0, len(req.ReviewItemIDs))
	for _, id := range req.ReviewItemIDs {
		result := domain.BatchItemResult{ReviewItemID: id}
		_, err := s.Act(ctx, id, ActionRequest{
			Action:        req.Action,
			ReviewerID:    req.ReviewerID,
			ReviewerEmail: req.ReviewerEmail,
			Notes:         req.Notes,
		})
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
		}
		results = append(results, result)
	}

	op := &domain.BatchOperation{
		Action:      req.Action,
		InitiatedBy: req.ReviewerID,
		CreatedAt:   time.Now().UTC(),
	}
	op.SetResults(results)
	if err := s.batches.Create(op); err != nil {
		return nil, err
	}
	return op, nil
}

// PendingDepth reports how many items await review, cache-first with a
// direct count on miss. The count can lag the queue by one cache refresh.
func (s *reviewService) PendingDepth(ctx context.Context) int64 {
	if depth, found, err := s.cache.GetQueueDepth(ctx, string(domain.ReviewPending)); err == nil && found {
		return depth
	}
	depth, err := s.reviews.CountByStatus(string(domain.ReviewPending))
	if err != nil {
		return 0
	}
	if err := s.cache.SetQueueDepth(ctx, string(domain.ReviewPending), depth); err != nil {
		logger.GetLogger().Debug().Err(err).Msg("queue depth cache write failed")
	}
	return depth
}

// refreshQueueDepth keeps the cached pending count roughly current.
// Best-effort only.
func (s *reviewService) refreshQueueDepth(ctx context.Context, status domain.ReviewStatus) {
	depth, err := s.reviews.CountByStatus(string(status))
	if err != nil {
		return
	}
	if err := s.cache.SetQueueDepth(ctx, string(status), depth); err != nil {
		logger.GetLogger().Debug().Err(err).Msg("queue depth cache write failed")
	}
}
