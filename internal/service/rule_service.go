package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/internal/rules"
	"github.com/dailywell/content-engine/pkg/cache"
)

// CreateRuleRequest defines a new approval rule.
type CreateRuleRequest struct {
	Name       string            `json:"name" binding:"required"`
	Conditions []rules.Condition `json:"conditions" binding:"required"`
	Actions    []rules.Action    `json:"actions" binding:"required"`
	Enabled    bool              `json:"enabled"`
}

// RuleService manages the approval rule set.
type RuleService interface {
	List(ctx context.Context) ([]domain.ApprovalRule, error)
	Create(ctx context.Context, req CreateRuleRequest) (*domain.ApprovalRule, error)
	SetEnabled(ctx context.Context, id uint64, enabled bool) error
}

type ruleService struct {
	rules repository.RuleRepository
	cache cache.Service
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo repository.RuleRepository, cacheSvc cache.Service) RuleService {
	return &ruleService{rules: ruleRepo, cache: cacheSvc}
}

func (s *ruleService) List(ctx context.Context) ([]domain.ApprovalRule, error) {
	return s.rules.FindAll()
}

// Create validates and stores a rule. Validation happens here so the
// engine never sees a rule that cannot decode; engine-side fail-closed
// handling remains as defense for rows edited out of band.
func (s *ruleService) Create(ctx context.Context, req CreateRuleRequest) (*domain.ApprovalRule, error) {
	if len(req.Conditions) == 0 || len(req.Actions) == 0 {
		return nil, fmt.Errorf("%w: conditions and actions must be non-empty", common.ErrMalformedRule)
	}
	for _, c := range req.Conditions {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedRule, err)
		}
	}
	for _, a := range req.Actions {
		switch a.Type {
		case domain.RuleActionAutoApprove, domain.RuleActionNotify,
			domain.RuleActionEscalate, domain.RuleActionAssign:
		default:
			return nil, fmt.Errorf("%w: unknown action type %q", common.ErrMalformedRule, a.Type)
		}
	}

	conditions, err := rules.EncodeConditions(req.Conditions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedRule, err)
	}
	actions, err := rules.EncodeActions(req.Actions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedRule, err)
	}

	rule := &domain.ApprovalRule{
		Name:       req.Name,
		Conditions: conditions,
		Actions:    actions,
		Enabled:    req.Enabled,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.rules.Create(rule); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rule, nil
}

func (s *ruleService) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	if err := s.rules.SetEnabled(id, enabled); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ruleService) invalidate(ctx context.Context) {
	_ = s.cache.InvalidateRuleSet(ctx)
}
