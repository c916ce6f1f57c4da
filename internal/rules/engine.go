package rules

import (
	"encoding/json"
	"strings"

	"github.com/dailywell/content-engine/internal/domain"
)

// Action is one entry in a rule's action list.
type Action struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
}

// ConditionResult is the audit outcome for one condition.
type ConditionResult struct {
	Condition Condition `json:"condition"`
	Satisfied bool      `json:"satisfied"`
}

// Evaluation is the audit outcome for one rule.
type Evaluation struct {
	RuleID     uint64            `json:"rule_id"`
	RuleName   string            `json:"rule_name"`
	Matched    bool              `json:"matched"`
	Malformed  bool              `json:"malformed,omitempty"`
	Conditions []ConditionResult `json:"conditions"`
	Actions    []Action          `json:"actions,omitempty"`
}

// Outcome is the result of evaluating the full rule set.
type Outcome struct {
	AutoApprove     bool
	MatchedRuleID   *uint64
	MatchedRuleName string
	Actions         []Action
	Evaluations     []Evaluation
}

// Evaluate runs the ordered rule set against a metrics snapshot.
// Rules are evaluated oldest-first; evaluation stops at the first rule
// whose every condition holds. A matched rule's auto_approve action
// short-circuits with success. Malformed rules fail closed to
// "no match" and are flagged in the audit trail. Every evaluation,
// matched or not, is returned for audit.
func Evaluate(ruleSet []domain.ApprovalRule, m Metrics) Outcome {
	out := Outcome{}

	for _, rule := range ruleSet {
		eval := Evaluation{RuleID: rule.ID, RuleName: rule.Name}

		conds, err := DecodeConditions(rule.Conditions)
		if err != nil || len(conds) == 0 {
			eval.Malformed = true
			out.Evaluations = append(out.Evaluations, eval)
			continue
		}

		matched := true
		for _, c := range conds {
			ok := c.Eval(m)
			eval.Conditions = append(eval.Conditions, ConditionResult{Condition: c, Satisfied: ok})
			if !ok {
				matched = false
			}
		}
		eval.Matched = matched

		if matched {
			actions, err := decodeActions(rule.Actions)
			if err != nil {
				// conditions matched but the action list is broken:
				// still fail closed on approval
				eval.Malformed = true
				out.Evaluations = append(out.Evaluations, eval)
				continue
			}
			eval.Actions = actions
			out.Evaluations = append(out.Evaluations, eval)

			ruleID := rule.ID
			out.MatchedRuleID = &ruleID
			out.MatchedRuleName = rule.Name
			out.Actions = actions
			for _, a := range actions {
				if a.Type == domain.RuleActionAutoApprove {
					out.AutoApprove = true
				}
			}
			return out
		}

		out.Evaluations = append(out.Evaluations, eval)
	}

	return out
}

// Fallback holds the static auto-approve thresholds applied when no rule
// matches. It is a second, deliberately separate approval path.
type Fallback struct {
	MinSafety         float64
	MinOverall        float64
	BlockedIssueTerms []string
}

// AutoApprove applies the static threshold path.
func (f Fallback) AutoApprove(m Metrics) bool {
	if m.SafetyScore < f.MinSafety || m.OverallScore < f.MinOverall {
		return false
	}
	for _, issue := range m.Issues {
		lower := strings.ToLower(issue)
		for _, blocked := range f.BlockedIssueTerms {
			if strings.Contains(lower, blocked) {
				return false
			}
		}
	}
	return true
}

func decodeActions(raw string) ([]Action, error) {
	var actions []Action
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

// EncodeConditions serializes conditions for rule storage.
func EncodeConditions(conds []Condition) (string, error) {
	data, err := json.Marshal(conds)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EncodeActions serializes actions for rule storage.
func EncodeActions(actions []Action) (string, error) {
	data, err := json.Marshal(actions)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
