package rules

import (
	"testing"
	"time"

	"github.com/dailywell/content-engine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func makeRule(id uint64, name, conditions, actions string, createdAt time.Time) domain.ApprovalRule {
	return domain.ApprovalRule{
		ID:         id,
		Name:       name,
		Conditions: conditions,
		Actions:    actions,
		Enabled:    true,
		CreatedAt:  createdAt,
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	now := time.Now()
	// R1 created first with the stricter threshold, R2 created second
	// with the looser one. Content at 0.95 satisfies both; R1 must win.
	r1 := makeRule(1, "strict safety",
		`[{"field":"safety_score","operator":"gte","value":0.9}]`,
		`[{"type":"auto_approve"}]`, now)
	r2 := makeRule(2, "loose safety",
		`[{"field":"safety_score","operator":"gte","value":0.5}]`,
		`[{"type":"auto_approve"}]`, now.Add(time.Minute))

	m := Metrics{SafetyScore: 0.95, OverallScore: 0.9}
	out := Evaluate([]domain.ApprovalRule{r1, r2}, m)

	assert.True(t, out.AutoApprove)
	if assert.NotNil(t, out.MatchedRuleID) {
		assert.Equal(t, uint64(1), *out.MatchedRuleID)
	}
	// evaluation stops at the first match: R2 never evaluated
	assert.Len(t, out.Evaluations, 1)
}

func TestEvaluate_AllConditionsMustHold(t *testing.T) {
	rule := makeRule(1, "safety and overall",
		`[{"field":"safety_score","operator":"gte","value":0.9},{"field":"overall_score","operator":"gte","value":0.85}]`,
		`[{"type":"auto_approve"}]`, time.Now())

	out := Evaluate([]domain.ApprovalRule{rule}, Metrics{SafetyScore: 0.95, OverallScore: 0.5})

	assert.False(t, out.AutoApprove)
	assert.Nil(t, out.MatchedRuleID)
	if assert.Len(t, out.Evaluations, 1) {
		eval := out.Evaluations[0]
		assert.False(t, eval.Matched)
		// per-condition results are recorded even for a non-match
		if assert.Len(t, eval.Conditions, 2) {
			assert.True(t, eval.Conditions[0].Satisfied)
			assert.False(t, eval.Conditions[1].Satisfied)
		}
	}
}

func TestEvaluate_MatchedWithoutAutoApprove(t *testing.T) {
	rule := makeRule(1, "escalate low safety",
		`[{"field":"safety_score","operator":"lt","value":0.5}]`,
		`[{"type":"escalate"},{"type":"notify","target":"safety-team"}]`, time.Now())

	out := Evaluate([]domain.ApprovalRule{rule}, Metrics{SafetyScore: 0.3})

	assert.False(t, out.AutoApprove)
	if assert.NotNil(t, out.MatchedRuleID) {
		assert.Equal(t, uint64(1), *out.MatchedRuleID)
	}
	assert.Len(t, out.Actions, 2)
	assert.Equal(t, "escalate", out.Actions[0].Type)
}

func TestEvaluate_MalformedRuleFailsClosed(t *testing.T) {
	broken := makeRule(1, "broken", `{{{not json`, `[{"type":"auto_approve"}]`, time.Now())
	valid := makeRule(2, "valid",
		`[{"field":"safety_score","operator":"gte","value":0.9}]`,
		`[{"type":"auto_approve"}]`, time.Now().Add(time.Minute))

	out := Evaluate([]domain.ApprovalRule{broken, valid}, Metrics{SafetyScore: 0.95})

	// the broken rule is skipped and flagged; the next rule still runs
	assert.True(t, out.AutoApprove)
	if assert.NotNil(t, out.MatchedRuleID) {
		assert.Equal(t, uint64(2), *out.MatchedRuleID)
	}
	if assert.Len(t, out.Evaluations, 2) {
		assert.True(t, out.Evaluations[0].Malformed)
		assert.False(t, out.Evaluations[0].Matched)
	}
}

func TestEvaluate_MalformedActionsBlockApproval(t *testing.T) {
	rule := makeRule(1, "broken actions",
		`[{"field":"safety_score","operator":"gte","value":0.5}]`,
		`not json`, time.Now())

	out := Evaluate([]domain.ApprovalRule{rule}, Metrics{SafetyScore: 0.95})

	assert.False(t, out.AutoApprove)
	assert.Nil(t, out.MatchedRuleID)
	if assert.Len(t, out.Evaluations, 1) {
		assert.True(t, out.Evaluations[0].Malformed)
	}
}

func TestEvaluate_EmptyRuleSet(t *testing.T) {
	out := Evaluate(nil, Metrics{SafetyScore: 1.0, OverallScore: 1.0})
	assert.False(t, out.AutoApprove)
	assert.Nil(t, out.MatchedRuleID)
	assert.Empty(t, out.Evaluations)
}

func TestFallback_AutoApprove(t *testing.T) {
	fb := Fallback{
		MinSafety:         0.95,
		MinOverall:        0.9,
		BlockedIssueTerms: []string{"prohibited", "inappropriate", "emergency", "urgent"},
	}

	tests := []struct {
		name string
		m    Metrics
		want bool
	}{
		{"clean content approves", Metrics{SafetyScore: 0.97, OverallScore: 0.92}, true},
		{"boundary approves", Metrics{SafetyScore: 0.95, OverallScore: 0.9}, true},
		{"low safety rejects", Metrics{SafetyScore: 0.94, OverallScore: 0.95}, false},
		{"low overall rejects", Metrics{SafetyScore: 0.99, OverallScore: 0.89}, false},
		{"blocked issue rejects", Metrics{
			SafetyScore: 0.99, OverallScore: 0.95,
			Issues: []string{`prohibited medical term: "cure"`},
		}, false},
		{"blocked issue case-insensitive", Metrics{
			SafetyScore: 0.99, OverallScore: 0.95,
			Issues: []string{"URGENT language detected"},
		}, false},
		{"benign issue approves", Metrics{
			SafetyScore: 0.99, OverallScore: 0.95,
			Issues: []string{"title exceeds 60 characters"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fb.AutoApprove(tt.m))
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	conds := []Condition{{Field: "safety_score", Op: OpGTE, Value: 0.9}}
	raw, err := EncodeConditions(conds)
	assert.NoError(t, err)

	decoded, err := DecodeConditions(raw)
	assert.NoError(t, err)
	if assert.Len(t, decoded, 1) {
		assert.Equal(t, "safety_score", decoded[0].Field)
		assert.Equal(t, OpGTE, decoded[0].Op)
	}
}
