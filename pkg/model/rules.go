package model

import "fmt"

// Operator names a visibility comparison.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpGreater   Operator = "gt"
	OpLess      Operator = "lt"
	OpEmpty     Operator = "is_empty"
	OpNotEmpty  Operator = "is_not_empty"
)

const defaultRuleOp = OpEquals

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpIn, OpNotIn, OpGreater, OpLess, OpEmpty, OpNotEmpty:
		return true
	default:
		return false
	}
}

// VisibilityRule gates a field on the current value of another field. Value
// is ignored by the emptiness checks and must be a list for in/not_in.
type VisibilityRule struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// When is shorthand for building a VisibilityRule.
func When(field string, op Operator, value any) VisibilityRule {
	return VisibilityRule{Field: field, Operator: op, Value: value}
}

func (r VisibilityRule) normalized() VisibilityRule {
	if r.Operator == "" {
		r.Operator = defaultRuleOp
	}
	return r
}

func (r VisibilityRule) check(owner string) error {
	if r.Field == "" {
		return constructionErr(owner, "visible_when", "rule field is required")
	}
	if !r.Operator.Valid() {
		return constructionErr(owner, "visible_when", "unknown operator %q", r.Operator)
	}
	if r.Operator == OpIn || r.Operator == OpNotIn {
		if _, ok := AsList(r.Value); !ok && r.Value != nil {
			return constructionErr(owner, "visible_when", "operator %q needs a list value", r.Operator)
		}
	}
	return nil
}

// SelectOption is one machine value plus its display label.
type SelectOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// Choice is shorthand for building a SelectOption.
func Choice(value, label string) SelectOption {
	return SelectOption{Value: value, Label: label}
}

// OptionValues returns the machine values of opts in order.
func OptionValues(opts []SelectOption) []string {
	if len(opts) == 0 {
		return nil
	}
	out := make([]string, len(opts))
	for i, opt := range opts {
		out[i] = opt.Value
	}
	return out
}

func checkOptions(owner, attribute string, opts []SelectOption) error {
	seen := make(map[string]struct{}, len(opts))
	for _, opt := range opts {
		if opt.Value == "" {
			return constructionErr(owner, attribute, "option value must not be empty")
		}
		if _, dup := seen[opt.Value]; dup {
			return constructionErr(owner, attribute, "duplicate option value %q", opt.Value)
		}
		seen[opt.Value] = struct{}{}
	}
	return nil
}

// DependentOptions narrows a choice field's allowed values based on the
// current value of another field.
type DependentOptions struct {
	DependsOn  string                    `json:"depends_on"`
	OptionsMap map[string][]SelectOption `json:"options_map"`
}

// Resolve returns the option set for the controlling value, falling back to
// the declared options when the value is absent or unmapped.
func (d *DependentOptions) Resolve(controlling any, declared []SelectOption) []SelectOption {
	if d == nil || controlling == nil {
		return declared
	}
	key, ok := controlling.(string)
	if !ok {
		key = fmt.Sprint(controlling)
	}
	if opts, found := d.OptionsMap[key]; found {
		return opts
	}
	return declared
}

func (d *DependentOptions) clone() *DependentOptions {
	if d == nil {
		return nil
	}
	out := &DependentOptions{DependsOn: d.DependsOn}
	if d.OptionsMap != nil {
		out.OptionsMap = make(map[string][]SelectOption, len(d.OptionsMap))
		for key, opts := range d.OptionsMap {
			out.OptionsMap[key] = append([]SelectOption(nil), opts...)
		}
	}
	return out
}

// AsList converts slice-like values into []any. It reports false for
// anything that is not a list.
func AsList(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	case []int:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	case []float64:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	case []bool:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	default:
		return nil, false
	}
}
