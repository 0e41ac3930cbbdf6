// Package compiler turns a field into a Plan: the single constraint
// description that both the validation engine and the schema exporter read.
// Every rule a Plan enforces is also a keyword of its schema fragment, so the
// two consumers cannot drift apart.
package compiler

import (
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/schema"
)

// JSON Schema base types used by plans. An empty Type marks an opaque plan
// that accepts any value.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Constraint is one rule derived from a field's parameters. Keyword and Value
// form the schema keyword; Test implements the same rule for validation.
type Constraint struct {
	Keyword string
	Value   any
	Code    string
	Params  map[string]any
	// Test reports whether a type-checked value satisfies the rule. A nil
	// Test makes the constraint schema-only.
	Test func(value any) bool
}

// Violation is one failed constraint.
type Violation struct {
	Code   string
	Params map[string]any
}

// Plan is the compiled form of a single field.
type Plan struct {
	Field      string
	Kind       model.Kind
	FieldType  string
	Type       string
	Required   bool
	Default    any
	HasDefault bool
	// Meta carries the annotation keywords (title, description, default,
	// readOnly) in encoding order.
	Meta        []schema.Keyword
	Constraints []Constraint
	Items       *Plan
	// Options are the declared option values; Dependent narrows them at
	// validation time.
	Options   []string
	Dependent *model.DependentOptions

	coerce   func(value any) (any, bool)
	wrapBare bool
}

// Fragment builds the schema fragment: type first, then annotations, then
// the constraint keywords in compile order.
func (p Plan) Fragment() schema.Fragment {
	var f schema.Fragment
	if p.Type != "" {
		f.Set("type", p.Type)
	}
	for _, kw := range p.Meta {
		f.Set(kw.Name, kw.Value)
	}
	if p.Items != nil {
		f.Set("items", p.Items.Fragment())
	}
	for _, c := range p.Constraints {
		if c.Keyword == "" {
			continue
		}
		f.Set(c.Keyword, c.Value)
	}
	return f
}

// Keywords lists the constraint keywords in order, including those of the
// item plan prefixed with "items.".
func (p Plan) Keywords() []string {
	var out []string
	for _, c := range p.Constraints {
		out = append(out, c.Keyword)
	}
	if p.Items != nil {
		for _, kw := range p.Items.Keywords() {
			out = append(out, "items."+kw)
		}
	}
	return out
}

// Coerce converts value into the plan's base type. The second result is false
// when the value does not have the right shape.
func (p Plan) Coerce(value any) (any, bool) {
	if p.coerce != nil {
		return p.coerce(value)
	}
	switch p.Type {
	case TypeString:
		return coerceString(value)
	case TypeNumber:
		return coerceNumber(value)
	case TypeBoolean:
		return coerceBool(value)
	case TypeArray:
		return coerceList(value, p.wrapBare)
	default:
		return value, true
	}
}

// Check coerces value and runs every constraint against it, collecting all
// violations. The returned value is the coerced form.
func (p Plan) Check(value any) (any, []Violation) {
	coerced, ok := p.Coerce(value)
	if !ok {
		return value, []Violation{{
			Code:   CodeInvalidType,
			Params: map[string]any{"Value": value, "Type": p.Type},
		}}
	}

	var out []Violation
	if p.Items != nil {
		if list, isList := coerced.([]any); isList {
			items, violations := p.checkItems(list)
			coerced = items
			out = append(out, violations...)
		}
	}
	for _, c := range p.Constraints {
		if c.Test == nil || c.Test(coerced) {
			continue
		}
		out = append(out, Violation{Code: c.Code, Params: withValue(c.Params, coerced)})
	}
	return coerced, out
}

// checkItems validates list elements against the item plan. Each code is
// reported once per field, however many elements fail it.
func (p Plan) checkItems(list []any) ([]any, []Violation) {
	out := make([]any, len(list))
	var violations []Violation
	seen := map[string]bool{}
	for i, element := range list {
		coerced, failed := p.Items.Check(element)
		out[i] = coerced
		for _, v := range failed {
			if seen[v.Code] {
				continue
			}
			seen[v.Code] = true
			violations = append(violations, v)
		}
	}
	return out, violations
}

// Resolve returns the plan that applies for a submission snapshot. Plans
// without dependent options are returned unchanged.
func (p Plan) Resolve(snapshot map[string]any) Plan {
	if p.Dependent == nil {
		return p
	}
	declared := make([]model.SelectOption, len(p.Options))
	for i, value := range p.Options {
		declared[i] = model.SelectOption{Value: value}
	}
	resolved := p.Dependent.Resolve(snapshot[p.Dependent.DependsOn], declared)
	return p.Narrow(model.OptionValues(resolved))
}

// Narrow replaces the enum constraint with allowed, on the plan itself or on
// its item plan.
func (p Plan) Narrow(allowed []string) Plan {
	out := p
	out.Constraints = replaceEnum(p.Constraints, allowed)
	if p.Items != nil {
		items := *p.Items
		items.Constraints = replaceEnum(p.Items.Constraints, allowed)
		out.Items = &items
	}
	return out
}

func replaceEnum(constraints []Constraint, allowed []string) []Constraint {
	out := make([]Constraint, len(constraints))
	for i, c := range constraints {
		if c.Keyword == "enum" {
			c = enumConstraint(allowed)
		}
		out[i] = c
	}
	return out
}

func withValue(params map[string]any, value any) map[string]any {
	out := make(map[string]any, len(params)+1)
	for key, v := range params {
		out[key] = v
	}
	if _, ok := out["Value"]; !ok {
		out["Value"] = value
	}
	return out
}
