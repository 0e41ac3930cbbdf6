// Package visibility decides which fields of a form are active for a given
// submission snapshot. Evaluation is pure: the same field and snapshot always
// produce the same answer and nothing is ever returned as an error.
package visibility

import (
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Evaluator determines whether a field is active for a submission snapshot.
type Evaluator interface {
	Visible(field model.Field, snapshot map[string]any) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.Field, snapshot map[string]any) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field model.Field, snapshot map[string]any) bool {
	return fn(field, snapshot)
}

// Rules is the Evaluator backed by each field's declared VisibilityRules.
type Rules struct{}

// Visible implements Evaluator.
func (Rules) Visible(field model.Field, snapshot map[string]any) bool {
	return IsVisible(field, snapshot)
}

// IsVisible reports whether every visibility rule of field holds against
// snapshot. Fields without rules are always visible.
func IsVisible(field model.Field, snapshot map[string]any) bool {
	for _, rule := range field.VisibleWhen() {
		if !Evaluate(rule, snapshot) {
			return false
		}
	}
	return true
}

// VisibleFields returns the form's flattened fields filtered by IsVisible,
// preserving order.
func VisibleFields(form *model.Form, snapshot map[string]any) []model.Field {
	if form == nil {
		return nil
	}
	return Filter(form.Fields(), snapshot, nil)
}

// Filter keeps the fields eval considers visible. A nil eval uses Rules.
func Filter(fields []model.Field, snapshot map[string]any, eval Evaluator) []model.Field {
	if eval == nil {
		eval = Rules{}
	}
	out := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if eval.Visible(field, snapshot) {
			out = append(out, field)
		}
	}
	return out
}

// Evaluate applies a single rule. A controlling field that is absent from the
// snapshot reads as empty.
func Evaluate(rule model.VisibilityRule, snapshot map[string]any) bool {
	actual := snapshot[rule.Field]
	switch rule.Operator {
	case model.OpEquals, "":
		return equal(actual, rule.Value)
	case model.OpNotEquals:
		return !equal(actual, rule.Value)
	case model.OpIn:
		return member(actual, rule.Value)
	case model.OpNotIn:
		return !member(actual, rule.Value)
	case model.OpGreater:
		cmp, ok := compare(actual, rule.Value)
		return ok && cmp > 0
	case model.OpLess:
		cmp, ok := compare(actual, rule.Value)
		return ok && cmp < 0
	case model.OpEmpty:
		return IsEmpty(actual)
	case model.OpNotEmpty:
		return !IsEmpty(actual)
	default:
		return false
	}
}

// IsEmpty reports whether value is nil, an empty string, or an empty
// collection.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch typed := value.(type) {
	case string:
		return typed == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// equal compares without cross-type coercion: "5" never equals 5. Numeric Go
// types are unified so int and float64 of the same value match.
func equal(actual, expected any) bool {
	if IsEmpty(actual) && IsEmpty(expected) {
		return true
	}
	if a, ok := model.ToFloat(actual); ok {
		b, ok := model.ToFloat(expected)
		return ok && a == b
	}
	if left, ok := model.AsList(actual); ok {
		right, ok := model.AsList(expected)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !equal(left[i], right[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(actual, expected)
}

// member tests actual against the rule's value set. A list-valued actual
// (checkbox group, multiple select) is a member when any element is.
func member(actual, set any) bool {
	candidates, ok := model.AsList(set)
	if !ok {
		return false
	}
	if values, isList := model.AsList(actual); isList {
		for _, value := range values {
			if contains(candidates, value) {
				return true
			}
		}
		return false
	}
	return contains(candidates, actual)
}

func contains(candidates []any, value any) bool {
	for _, candidate := range candidates {
		if equal(value, candidate) {
			return true
		}
	}
	return false
}

// compare orders two numbers or two dates. The second result is false when
// the operands are not mutually orderable.
func compare(actual, expected any) (int, bool) {
	if a, ok := model.ToFloat(actual); ok {
		b, ok := model.ToFloat(expected)
		if !ok {
			return 0, false
		}
		return compareFloat(a, b), true
	}
	a, ok := asDate(actual)
	if !ok {
		return 0, false
	}
	b, ok := asDate(expected)
	if !ok {
		return 0, false
	}
	return a.Compare(b), true
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asDate(value any) (time.Time, bool) {
	switch typed := value.(type) {
	case time.Time:
		return typed, true
	case string:
		parsed, err := time.Parse(model.DateLayout, strings.TrimSpace(typed))
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}
