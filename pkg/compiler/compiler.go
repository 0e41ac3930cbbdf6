package compiler

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/schema"
)

// Contribution is what a custom field kind supplies in place of the built-in
// mapping. Constraints must carry both the schema keyword and the Test.
type Contribution struct {
	Type        string
	Constraints []Constraint
	Items       *Plan
	// Coerce overrides the default coercion for Type when set.
	Coerce func(value any) (any, bool)
}

// Contributor compiles fields of a custom kind.
type Contributor interface {
	Contribute(field model.Field) (Contribution, error)
}

// ContributorFunc adapts a function into a Contributor.
type ContributorFunc func(field model.Field) (Contribution, error)

// Contribute delegates to the underlying function.
func (fn ContributorFunc) Contribute(field model.Field) (Contribution, error) {
	return fn(field)
}

// Lookup resolves the Contributor registered for a field_type tag. The field
// registry implements it.
type Lookup interface {
	Contributor(fieldType string) (Contributor, bool)
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLookup makes custom kinds resolvable through lookup.
func WithLookup(lookup Lookup) Option {
	return func(c *Compiler) { c.lookup = lookup }
}

// Compiler maps fields to Plans. It holds no mutable state, so one instance
// can be shared across goroutines.
type Compiler struct {
	lookup Lookup
}

// New constructs a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var defaultCompiler = New()

// Compile maps field with a compiler that knows no custom contributors.
func Compile(field model.Field) (Plan, error) {
	return defaultCompiler.Compile(field)
}

// CompileAll compiles fields in order.
func (c *Compiler) CompileAll(fields []model.Field) ([]Plan, error) {
	plans := make([]Plan, 0, len(fields))
	for _, field := range fields {
		plan, err := c.Compile(field)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// Compile maps one field to its Plan. The result depends only on the field
// and the contributors reachable through the lookup.
func (c *Compiler) Compile(field model.Field) (Plan, error) {
	plan := Plan{
		Field:     field.Name(),
		Kind:      field.Kind(),
		FieldType: field.Type(),
		Required:  field.Required(),
	}
	plan.Default, plan.HasDefault = effectiveDefault(field)
	plan.Meta = meta(field, plan.Default, plan.HasDefault)

	if field.Kind() == model.KindCustom {
		return c.compileCustom(field, plan)
	}

	cons := field.Constraints()
	switch field.Kind() {
	case model.KindText:
		plan.Type = TypeString
		plan.Constraints = lengthConstraints(cons)
		if cons.Pattern != "" {
			plan.Constraints = append(plan.Constraints, patternConstraint(cons.Pattern))
		}
	case model.KindEmail:
		plan.Type = TypeString
		plan.Constraints = []Constraint{formatConstraint("email")}
	case model.KindNumber:
		plan.Type = TypeNumber
		if cons.Minimum != nil {
			plan.Constraints = append(plan.Constraints, minimumConstraint(*cons.Minimum))
		}
		if cons.Maximum != nil {
			plan.Constraints = append(plan.Constraints, maximumConstraint(*cons.Maximum))
		}
		if cons.Step != nil {
			plan.Constraints = append(plan.Constraints, multipleOfConstraint(*cons.Step))
		}
	case model.KindDate:
		plan.Type = TypeString
		plan.Constraints = []Constraint{formatConstraint("date")}
		if cons.MinDate != nil {
			plan.Constraints = append(plan.Constraints, dateMinConstraint(*cons.MinDate))
		}
		if cons.MaxDate != nil {
			plan.Constraints = append(plan.Constraints, dateMaxConstraint(*cons.MaxDate))
		}
	case model.KindSelect:
		plan.Options = model.OptionValues(cons.Options)
		plan.Dependent = field.Dependent()
		if !cons.Multiple {
			plan.Type = TypeString
			plan.Constraints = []Constraint{enumConstraint(plan.Options)}
			break
		}
		plan.Type = TypeArray
		plan.wrapBare = true
		plan.Items = &Plan{Field: field.Name(), Type: TypeString, Constraints: []Constraint{enumConstraint(plan.Options)}}
		if cons.MinSelected != nil {
			plan.Constraints = append(plan.Constraints, minItemsConstraint(*cons.MinSelected))
		}
		if cons.MaxSelected != nil {
			plan.Constraints = append(plan.Constraints, maxItemsConstraint(*cons.MaxSelected))
		}
		plan.Constraints = append(plan.Constraints, uniqueItemsConstraint())
	case model.KindRadio:
		plan.Type = TypeString
		plan.Options = model.OptionValues(cons.Options)
		plan.Dependent = field.Dependent()
		plan.Constraints = []Constraint{enumConstraint(plan.Options)}
	case model.KindCheckbox:
		plan.Type = TypeBoolean
	case model.KindCheckboxGroup:
		plan.Type = TypeArray
		plan.wrapBare = true
		plan.Options = model.OptionValues(cons.Options)
		plan.Dependent = field.Dependent()
		plan.Items = &Plan{Field: field.Name(), Type: TypeString, Constraints: []Constraint{enumConstraint(plan.Options)}}
		plan.Constraints = []Constraint{uniqueItemsConstraint()}
	case model.KindFile:
		encoded := []Constraint{base64Constraint()}
		if !cons.Multiple {
			plan.Type = TypeString
			plan.Constraints = encoded
			break
		}
		plan.Type = TypeArray
		plan.Items = &Plan{Field: field.Name(), Type: TypeString, Constraints: encoded}
	case model.KindHidden:
		plan.Type = TypeString
	case model.KindURL:
		plan.Type = TypeString
		plan.Constraints = append([]Constraint{formatConstraint("uri")}, lengthConstraints(cons)...)
	case model.KindTextarea:
		plan.Type = TypeString
		plan.Constraints = lengthConstraints(cons)
	case model.KindList:
		plan.Type = TypeArray
		itemType := TypeString
		if cons.ItemType == "number" {
			itemType = TypeNumber
		}
		plan.Items = &Plan{Field: field.Name(), Type: itemType}
		if cons.MinItems != nil {
			plan.Constraints = append(plan.Constraints, minItemsConstraint(*cons.MinItems))
		}
		if cons.MaxItems != nil {
			plan.Constraints = append(plan.Constraints, maxItemsConstraint(*cons.MaxItems))
		}
	default:
		return Plan{}, fmt.Errorf("compiler: field %q: unsupported kind %q", field.Name(), field.Kind())
	}
	return plan, nil
}

// compileCustom asks the registered contributor for the field's rules. An
// unregistered kind compiles to an opaque plan that only the required check
// applies to.
func (c *Compiler) compileCustom(field model.Field, plan Plan) (Plan, error) {
	if c.lookup == nil {
		return plan, nil
	}
	contributor, ok := c.lookup.Contributor(field.Type())
	if !ok || contributor == nil {
		return plan, nil
	}
	contribution, err := contributor.Contribute(field)
	if err != nil {
		return Plan{}, fmt.Errorf("compiler: field %q: %w", field.Name(), err)
	}
	plan.Type = contribution.Type
	plan.Items = contribution.Items
	plan.coerce = contribution.Coerce
	for _, constraint := range contribution.Constraints {
		if constraint.Code == "" {
			constraint.Code = CodeCustom
		}
		plan.Constraints = append(plan.Constraints, constraint)
	}
	return plan, nil
}

func lengthConstraints(cons model.Constraints) []Constraint {
	var out []Constraint
	if cons.MinLength != nil {
		out = append(out, minLengthConstraint(*cons.MinLength))
	}
	if cons.MaxLength != nil {
		out = append(out, maxLengthConstraint(*cons.MaxLength))
	}
	return out
}

// effectiveDefault returns the declared default, or a hidden field's value.
func effectiveDefault(field model.Field) (any, bool) {
	if value, ok := field.Default(); ok {
		return value, true
	}
	if field.Kind() == model.KindHidden {
		if value := field.Constraints().Value; value != nil {
			return value, true
		}
	}
	return nil, false
}

func meta(field model.Field, def any, hasDefault bool) []schema.Keyword {
	var out []schema.Keyword
	if label := field.Label(); label != "" {
		out = append(out, schema.Keyword{Name: "title", Value: label})
	}
	if help := field.HelpText(); help != "" {
		out = append(out, schema.Keyword{Name: "description", Value: help})
	}
	if hasDefault && def != nil {
		out = append(out, schema.Keyword{Name: "default", Value: def})
	}
	if field.ReadOnly() {
		out = append(out, schema.Keyword{Name: "readOnly", Value: true})
	}
	return out
}

// Check builds a validator-and-schema constraint from its parts.
func Check(keyword string, value any, code string, test func(any) bool) Constraint {
	return Constraint{Keyword: keyword, Value: value, Code: code, Test: test}
}

// PatternCheck builds a pattern constraint for custom string kinds.
func PatternCheck(expr string) (Constraint, error) {
	if _, err := regexp.Compile(expr); err != nil {
		return Constraint{}, fmt.Errorf("compiler: invalid pattern %q: %w", expr, err)
	}
	return patternConstraint(expr), nil
}

// FormatCheck builds a format keyword with no validator-side test for
// formats the engine does not know.
func FormatCheck(format string) Constraint {
	return formatConstraint(format)
}
