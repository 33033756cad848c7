package types

// RuleAction is what a firing rule does to its field.
type RuleAction string

const (
	ActionShow    RuleAction = "show"
	ActionHide    RuleAction = "hide"
	ActionRequire RuleAction = "require"
)

// RuleLogic combines the conditions of a single rule.
type RuleLogic string

const (
	LogicAnd RuleLogic = "and"
	LogicOr  RuleLogic = "or"
)

// Operator names understood by the logic evaluator.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpStartsWith  = "starts_with"
	OpEndsWith    = "ends_with"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpIsEmpty     = "is_empty"
	OpIsNotEmpty  = "is_not_empty"
	OpIn          = "in"
)

// Rule is one conditional-logic clause attached to a field.
type Rule struct {
	Action     RuleAction  `json:"action" yaml:"action"`
	Logic      RuleLogic   `json:"logic" yaml:"logic"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// Condition compares another field's current answer against a literal value.
// Field is a lookup key into the schema, not an ownership pointer.
type Condition struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Clone deep-copies the rule including condition values.
func (r Rule) Clone() Rule {
	out := r
	if r.Conditions != nil {
		out.Conditions = make([]Condition, len(r.Conditions))
		for i, c := range r.Conditions {
			c.Value = CloneValue(c.Value)
			out.Conditions[i] = c
		}
	}
	return out
}

// CloneValue deep-copies JSON-shaped values (slices and maps of any).
func CloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}
