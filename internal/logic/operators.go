package logic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matthewbaird/commonapply/internal/types"
)

// Operator compares a current answer against a condition's literal value.
// Implementations must never panic; a comparison that makes no sense for the
// given values is simply false.
type Operator func(answer, value any) bool

var operators = map[string]Operator{
	types.OpEquals:      opEquals,
	types.OpNotEquals:   func(a, v any) bool { return !opEquals(a, v) },
	types.OpContains:    opContains,
	types.OpNotContains: func(a, v any) bool { return !opContains(a, v) },
	types.OpStartsWith: func(a, v any) bool {
		return strings.HasPrefix(toString(a), toString(v))
	},
	types.OpEndsWith: func(a, v any) bool {
		return strings.HasSuffix(toString(a), toString(v))
	},
	types.OpGreaterThan: func(a, v any) bool {
		return compareNumeric(a, v, func(x, y float64) bool { return x > y })
	},
	types.OpLessThan: func(a, v any) bool {
		return compareNumeric(a, v, func(x, y float64) bool { return x < y })
	},
	types.OpIsEmpty:    func(a, _ any) bool { return isEmpty(a) },
	types.OpIsNotEmpty: func(a, _ any) bool { return !isEmpty(a) },
	types.OpIn:         opIn,
}

// LookupOperator returns the named operator.
func LookupOperator(name string) (Operator, bool) {
	op, ok := operators[name]
	return op, ok
}

// OperatorNames lists the registered operator names.
func OperatorNames() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	return names
}

// opEquals treats nil and "" alike, compares numerically when both sides are
// numbers (or numeric strings), and falls back to string comparison.
func opEquals(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	if list, ok := asList(a); ok {
		// A multi-choice answer equals a scalar only when it is exactly that one choice.
		if other, ok := asList(b); ok {
			if len(list) != len(other) {
				return false
			}
			for i := range list {
				if !opEquals(list[i], other[i]) {
					return false
				}
			}
			return true
		}
		return len(list) == 1 && opEquals(list[0], b)
	}
	aNum, aOk := toFloat(a)
	bNum, bOk := toFloat(b)
	if aOk && bOk {
		return aNum == bNum
	}
	return toString(a) == toString(b)
}

// opContains does substring matching on text answers and membership on
// multi-choice answers.
func opContains(a, v any) bool {
	if list, ok := asList(a); ok {
		for _, item := range list {
			if opEquals(item, v) {
				return true
			}
		}
		return false
	}
	if a == nil {
		return false
	}
	needle := toString(v)
	if needle == "" {
		return false
	}
	return strings.Contains(toString(a), needle)
}

// opIn checks the answer against a list literal (or a comma separated string).
func opIn(a, v any) bool {
	list, ok := asList(v)
	if !ok {
		s, isStr := v.(string)
		if !isStr || s == "" {
			return false
		}
		for _, part := range strings.Split(s, ",") {
			list = append(list, strings.TrimSpace(part))
		}
	}
	for _, item := range list {
		if opEquals(a, item) {
			return true
		}
	}
	return false
}

func compareNumeric(a, b any, cmp func(float64, float64) bool) bool {
	x, ok := toFloat(a)
	if !ok {
		return false
	}
	y, ok := toFloat(b)
	if !ok {
		return false
	}
	return cmp(x, y)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// toFloat converts numbers and numeric strings. Answers typed into an input
// arrive as strings, so "18" must compare equal to 18.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
