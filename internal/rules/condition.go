package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operator is the closed set of condition operators.
type Operator string

const (
	OpGT    Operator = "gt"
	OpGTE   Operator = "gte"
	OpLT    Operator = "lt"
	OpLTE   Operator = "lte"
	OpEQ    Operator = "eq"
	OpNE    Operator = "ne"
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
)

// Condition is one (field, operator, value) triple. Conditions inside a
// rule are joined by implicit AND.
type Condition struct {
	Field string      `json:"field"`
	Op    Operator    `json:"operator"`
	Value interface{} `json:"value"`
}

// Metrics is the typed score snapshot a rule is evaluated against.
type Metrics struct {
	SafetyScore          float64  `json:"safety_score"`
	OverallScore         float64  `json:"overall_score"`
	FormatScore          float64  `json:"format_score"`
	ReadabilityScore     float64  `json:"readability_score"`
	EngagementScore      float64  `json:"engagement_score"`
	AppropriatenessScore float64  `json:"appropriateness_score"`
	Confidence           float64  `json:"confidence"`
	Topic                string   `json:"topic"`
	Issues               []string `json:"issues"`
}

// numericFields is the single dynamic-lookup point for rule fields,
// isolated behind typed accessors instead of reflection.
var numericFields = map[string]func(Metrics) float64{
	"safety_score":          func(m Metrics) float64 { return m.SafetyScore },
	"overall_score":         func(m Metrics) float64 { return m.OverallScore },
	"format_score":          func(m Metrics) float64 { return m.FormatScore },
	"readability_score":     func(m Metrics) float64 { return m.ReadabilityScore },
	"engagement_score":      func(m Metrics) float64 { return m.EngagementScore },
	"appropriateness_score": func(m Metrics) float64 { return m.AppropriatenessScore },
	"confidence":            func(m Metrics) float64 { return m.Confidence },
	"issue_count":           func(m Metrics) float64 { return float64(len(m.Issues)) },
}

var stringFields = map[string]func(Metrics) string{
	"topic": func(m Metrics) string { return m.Topic },
}

// Eval evaluates the condition against the metrics snapshot.
// Unknown operators and unknown fields evaluate to false (fail closed).
func (c Condition) Eval(m Metrics) bool {
	if get, ok := numericFields[c.Field]; ok {
		want, ok := toFloat(c.Value)
		switch c.Op {
		case OpGT:
			return ok && get(m) > want
		case OpGTE:
			return ok && get(m) >= want
		case OpLT:
			return ok && get(m) < want
		case OpLTE:
			return ok && get(m) <= want
		case OpEQ:
			return ok && get(m) == want
		case OpNE:
			return ok && get(m) != want
		case OpIn:
			return floatInList(get(m), c.Value)
		case OpNotIn:
			return listContainsFloat(c.Value) && !floatInList(get(m), c.Value)
		}
		return false
	}

	if get, ok := stringFields[c.Field]; ok {
		switch c.Op {
		case OpEQ:
			s, ok := c.Value.(string)
			return ok && get(m) == s
		case OpNE:
			s, ok := c.Value.(string)
			return ok && get(m) != s
		case OpIn:
			return stringInList(get(m), c.Value)
		case OpNotIn:
			return listContainsString(c.Value) && !stringInList(get(m), c.Value)
		}
		return false
	}

	// unknown field: fail closed
	return false
}

// Validate rejects conditions the engine could never satisfy: unknown
// fields, unknown operators, or values of the wrong shape.
func (c Condition) Validate() error {
	switch c.Op {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpNE, OpIn, OpNotIn:
	default:
		return fmt.Errorf("unknown operator %q", c.Op)
	}

	if _, ok := numericFields[c.Field]; ok {
		switch c.Op {
		case OpIn, OpNotIn:
			if !listContainsFloat(c.Value) {
				return fmt.Errorf("field %q needs a non-empty numeric list", c.Field)
			}
		default:
			if _, ok := toFloat(c.Value); !ok {
				return fmt.Errorf("field %q needs a numeric value", c.Field)
			}
		}
		return nil
	}
	if _, ok := stringFields[c.Field]; ok {
		switch c.Op {
		case OpEQ, OpNE:
			if _, ok := c.Value.(string); !ok {
				return fmt.Errorf("field %q needs a string value", c.Field)
			}
		case OpIn, OpNotIn:
			if !listContainsString(c.Value) {
				return fmt.Errorf("field %q needs a non-empty string list", c.Field)
			}
		default:
			return fmt.Errorf("operator %q not valid for string field %q", c.Op, c.Field)
		}
		return nil
	}
	return fmt.Errorf("unknown field %q", c.Field)
}

// DecodeConditions parses a rule's JSON condition list.
func DecodeConditions(raw string) ([]Condition, error) {
	var conds []Condition
	if err := json.Unmarshal([]byte(raw), &conds); err != nil {
		return nil, err
	}
	return conds, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func floatInList(v float64, list interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		return false
	}
	for _, item := range items {
		if f, ok := toFloat(item); ok && f == v {
			return true
		}
	}
	return false
}

// listContainsFloat reports whether list is a well-formed numeric list.
// not_in against a malformed list must fail closed, not match everything.
func listContainsFloat(list interface{}) bool {
	items, ok := list.([]interface{})
	if !ok || len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := toFloat(item); !ok {
			return false
		}
	}
	return true
}

func stringInList(v string, list interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		return false
	}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func listContainsString(list interface{}) bool {
	items, ok := list.([]interface{})
	if !ok || len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}
