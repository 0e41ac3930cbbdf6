package model

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire layout for date values and date bounds.
const DateLayout = "2006-01-02"

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// LooksLikeEmail applies the permissive local@domain.tld check used for both
// defaults and submitted values.
func LooksLikeEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// LooksLikeURL reports whether value is an absolute http or https URL.
func LooksLikeURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// Constraints carries the kind-specific parameters of a field. Only the
// members relevant to the field's kind may be set; NewField rejects the rest.
type Constraints struct {
	MinLength *int
	MaxLength *int
	Pattern   string

	Minimum *float64
	Maximum *float64
	Step    *float64

	MinDate *time.Time
	MaxDate *time.Time

	Options     []SelectOption
	Multiple    bool
	MinSelected *int
	MaxSelected *int
	Dependent   *DependentOptions

	MinItems *int
	MaxItems *int
	ItemType string

	Accept  string
	Value   any
	Checked bool
	Inline  bool
	Rows    *int
	Cols    *int

	// Params holds parameters of custom shapes that have no built-in slot.
	Params map[string]any
}

func (c Constraints) clone() Constraints {
	out := c
	out.Options = append([]SelectOption(nil), c.Options...)
	if len(out.Options) == 0 {
		out.Options = nil
	}
	out.Dependent = c.Dependent.clone()
	if len(c.Params) > 0 {
		out.Params = make(map[string]any, len(c.Params))
		for key, value := range c.Params {
			out.Params[key] = value
		}
	} else {
		out.Params = nil
	}
	return out
}

// Field is one declared input. Instances are immutable once built: accessors
// hand out copies of every slice and map.
type Field struct {
	name         string
	fieldType    string
	kind         Kind
	label        string
	required     bool
	placeholder  string
	defaultValue any
	hasDefault   bool
	helpText     string
	readonly     bool
	cssClasses   string
	attributes   map[string]string
	visibleWhen  []VisibilityRule
	constraints  Constraints
}

func (Field) isItem() {}

// FieldOption configures a field under construction.
type FieldOption func(*Field)

// NewField builds a field of a built-in kind, or a custom field when kind is
// KindCustom and a FieldType option names its tag.
func NewField(kind Kind, name string, opts ...FieldOption) (Field, error) {
	f := Field{
		name: strings.TrimSpace(name),
		kind: kind,
	}
	if kind.Builtin() {
		f.fieldType = kind.Tag()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&f)
	}
	f.normalize()
	if err := f.check(); err != nil {
		return Field{}, err
	}
	return f, nil
}

// NewCustomField builds a field for a registered custom tag.
func NewCustomField(fieldType, name string, opts ...FieldOption) (Field, error) {
	return NewField(KindCustom, name, append([]FieldOption{FieldType(fieldType)}, opts...)...)
}

// MustField is NewField that panics on error. Intended for package level
// fixtures and tests.
func MustField(kind Kind, name string, opts ...FieldOption) Field {
	f, err := NewField(kind, name, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the field's unique identifier within its form.
func (f Field) Name() string { return f.name }

// Kind returns the dispatch discriminator.
func (f Field) Kind() Kind { return f.kind }

// Type returns the field_type tag the field serialises under.
func (f Field) Type() string { return f.fieldType }

func (f Field) Label() string       { return f.label }
func (f Field) Required() bool      { return f.required }
func (f Field) Placeholder() string { return f.placeholder }
func (f Field) HelpText() string    { return f.helpText }
func (f Field) ReadOnly() bool      { return f.readonly }
func (f Field) CSSClasses() string  { return f.cssClasses }

// Default returns the declared default value and whether one was set.
func (f Field) Default() (any, bool) {
	return f.defaultValue, f.hasDefault
}

// Attributes returns a copy of the free-form attribute map.
func (f Field) Attributes() map[string]string {
	if len(f.attributes) == 0 {
		return nil
	}
	out := make(map[string]string, len(f.attributes))
	for key, value := range f.attributes {
		out[key] = value
	}
	return out
}

// VisibleWhen returns a copy of the visibility rules.
func (f Field) VisibleWhen() []VisibilityRule {
	return append([]VisibilityRule(nil), f.visibleWhen...)
}

// Constraints returns a copy of the kind-specific parameters.
func (f Field) Constraints() Constraints {
	return f.constraints.clone()
}

// Options returns a copy of the declared option list.
func (f Field) Options() []SelectOption {
	return append([]SelectOption(nil), f.constraints.Options...)
}

// Dependent returns the dependent option configuration, or nil.
func (f Field) Dependent() *DependentOptions {
	return f.constraints.Dependent.clone()
}

// Multiple reports whether the field accepts several values.
func (f Field) Multiple() bool { return f.constraints.Multiple }

// Param returns a custom parameter.
func (f Field) Param(key string) (any, bool) {
	value, ok := f.constraints.Params[key]
	return value, ok
}

// Equal reports whether two fields describe the same input.
func (f Field) Equal(other Field) bool {
	return reflect.DeepEqual(f, other)
}

func (f *Field) normalize() {
	f.label = strings.TrimSpace(f.label)
	if len(f.attributes) == 0 {
		f.attributes = nil
	}
	if len(f.visibleWhen) == 0 {
		f.visibleWhen = nil
	} else {
		rules := make([]VisibilityRule, len(f.visibleWhen))
		for i, rule := range f.visibleWhen {
			rules[i] = rule.normalized()
		}
		f.visibleWhen = rules
	}
	f.constraints = f.constraints.clone()
	if f.kind == KindCheckbox && len(f.constraints.Options) > 0 {
		f.kind = KindCheckboxGroup
	}
	if f.kind == KindCheckbox && f.constraints.Value == nil {
		f.constraints.Value = "on"
	}
	if f.kind == KindTextarea && f.constraints.Rows == nil {
		rows := 3
		f.constraints.Rows = &rows
	}
	if f.kind == KindList && f.constraints.ItemType == "" {
		f.constraints.ItemType = "text"
	}
}

func (f Field) check() error {
	if f.name == "" {
		return constructionErr("", "name", "name is required")
	}
	if !namePattern.MatchString(f.name) {
		return constructionErr(f.name, "name", "must match %s", namePattern.String())
	}
	if f.kind == KindCustom {
		if strings.TrimSpace(f.fieldType) == "" {
			return constructionErr(f.name, "field_type", "custom fields need a field_type tag")
		}
	} else if !f.kind.Builtin() {
		return constructionErr(f.name, "field_type", "unknown kind %q", f.kind)
	}
	for _, rule := range f.visibleWhen {
		if err := rule.check(f.name); err != nil {
			return err
		}
	}
	if err := f.checkConstraints(); err != nil {
		return err
	}
	if f.hasDefault && f.defaultValue != nil {
		return f.checkDefault()
	}
	return nil
}

func (f Field) checkConstraints() error {
	c := f.constraints

	if !f.kind.HasLength() && (c.MinLength != nil || c.MaxLength != nil) {
		return constructionErr(f.name, "minlength", "length bounds do not apply to %s fields", f.kind)
	}
	if c.Pattern != "" && f.kind != KindText {
		return constructionErr(f.name, "pattern", "pattern only applies to text fields")
	}
	if err := checkIntBounds(f.name, "minlength", "maxlength", c.MinLength, c.MaxLength, 0); err != nil {
		return err
	}
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return constructionErr(f.name, "pattern", "invalid regular expression: %v", err)
		}
	}

	if f.kind != KindNumber && (c.Minimum != nil || c.Maximum != nil || c.Step != nil) {
		return constructionErr(f.name, "min_value", "numeric bounds only apply to number fields")
	}
	if c.Minimum != nil && c.Maximum != nil && *c.Minimum > *c.Maximum {
		return constructionErr(f.name, "min_value", "min_value %v exceeds max_value %v", *c.Minimum, *c.Maximum)
	}
	if c.Step != nil && *c.Step <= 0 {
		return constructionErr(f.name, "step", "step must be greater than zero")
	}

	if f.kind != KindDate && (c.MinDate != nil || c.MaxDate != nil) {
		return constructionErr(f.name, "min_date", "date bounds only apply to date fields")
	}
	if c.MinDate != nil && c.MaxDate != nil && c.MinDate.After(*c.MaxDate) {
		return constructionErr(f.name, "min_date", "min_date is after max_date")
	}

	if f.kind.HasOptions() {
		if len(c.Options) == 0 {
			return constructionErr(f.name, "options", "%s fields need at least one option", f.kind)
		}
		if err := checkOptions(f.name, "options", c.Options); err != nil {
			return err
		}
	} else if len(c.Options) > 0 && f.kind != KindCustom {
		return constructionErr(f.name, "options", "options do not apply to %s fields", f.kind)
	}

	if c.Multiple && f.kind != KindSelect && f.kind != KindFile {
		return constructionErr(f.name, "multiple", "multiple only applies to select and file fields")
	}
	if c.MinSelected != nil {
		if *c.MinSelected < 0 {
			return constructionErr(f.name, "min_selected", "min_selected cannot be negative")
		}
		if f.kind != KindSelect || !c.Multiple {
			return constructionErr(f.name, "min_selected", "min_selected requires a multiple select")
		}
	}
	if c.MaxSelected != nil {
		if *c.MaxSelected < 1 {
			return constructionErr(f.name, "max_selected", "max_selected must be greater than zero")
		}
		if f.kind != KindSelect || !c.Multiple {
			return constructionErr(f.name, "max_selected", "max_selected requires a multiple select")
		}
		if c.MinSelected != nil && *c.MaxSelected < *c.MinSelected {
			return constructionErr(f.name, "max_selected", "max_selected is lower than min_selected")
		}
	}

	if f.kind != KindList && (c.MinItems != nil || c.MaxItems != nil) {
		return constructionErr(f.name, "min_items", "item bounds only apply to list fields")
	}
	if err := checkIntBounds(f.name, "min_items", "max_items", c.MinItems, c.MaxItems, 0); err != nil {
		return err
	}

	if c.Dependent != nil {
		return f.checkDependent()
	}
	return nil
}

func (f Field) checkDependent() error {
	dep := f.constraints.Dependent
	if !f.kind.HasOptions() {
		return constructionErr(f.name, "dependent_options", "dependent options need a choice field")
	}
	if strings.TrimSpace(dep.DependsOn) == "" {
		return constructionErr(f.name, "dependent_options", "depends_on is required")
	}
	if dep.DependsOn == f.name {
		return constructionErr(f.name, "dependent_options", "a field cannot depend on itself")
	}
	declared := make(map[string]struct{}, len(f.constraints.Options))
	for _, opt := range f.constraints.Options {
		declared[opt.Value] = struct{}{}
	}
	keys := make([]string, 0, len(dep.OptionsMap))
	for key := range dep.OptionsMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attribute := "dependent_options[" + key + "]"
		opts := dep.OptionsMap[key]
		if err := checkOptions(f.name, attribute, opts); err != nil {
			return err
		}
		// Mapped values must be declared so the schema enum covers them.
		for _, opt := range opts {
			if _, ok := declared[opt.Value]; !ok {
				return constructionErr(f.name, attribute, "option %q is not a declared option", opt.Value)
			}
		}
	}
	return nil
}

func (f Field) checkDefault() error {
	value := f.defaultValue
	switch f.kind {
	case KindCheckbox:
		if _, ok := value.(bool); !ok {
			return constructionErr(f.name, "default_value", "checkbox default must be a boolean")
		}
	case KindCheckboxGroup:
		if _, ok := AsList(value); !ok {
			return constructionErr(f.name, "default_value", "checkbox group default must be a list")
		}
	case KindRadio:
		if _, ok := value.(string); !ok {
			return constructionErr(f.name, "default_value", "radio default must be a string")
		}
	case KindSelect:
		if f.constraints.Multiple {
			if _, ok := AsList(value); !ok {
				return constructionErr(f.name, "default_value", "multiple select default must be a list")
			}
		} else if _, ok := value.(string); !ok {
			return constructionErr(f.name, "default_value", "select default must be a string")
		}
	case KindEmail:
		str, ok := value.(string)
		if !ok {
			return constructionErr(f.name, "default_value", "email default must be a string")
		}
		if !LooksLikeEmail(str) {
			return constructionErr(f.name, "default_value", "invalid email %q", str)
		}
	case KindURL:
		if str, ok := value.(string); ok && !LooksLikeURL(str) {
			return constructionErr(f.name, "default_value", "url must start with http:// or https://")
		}
	case KindNumber:
		if _, ok := ToFloat(value); !ok {
			return constructionErr(f.name, "default_value", "number default must be numeric")
		}
	case KindDate:
		str, ok := value.(string)
		if !ok {
			return constructionErr(f.name, "default_value", "date default must be a YYYY-MM-DD string")
		}
		if _, err := time.Parse(DateLayout, str); err != nil {
			return constructionErr(f.name, "default_value", "date default must be a YYYY-MM-DD string")
		}
	}
	return nil
}

func checkIntBounds(field, minAttr, maxAttr string, minValue, maxValue *int, floor int) error {
	if minValue != nil && *minValue < floor {
		return constructionErr(field, minAttr, "%s cannot be negative", minAttr)
	}
	if maxValue != nil && *maxValue < floor {
		return constructionErr(field, maxAttr, "%s cannot be negative", maxAttr)
	}
	if minValue != nil && maxValue != nil && *minValue > *maxValue {
		return constructionErr(field, minAttr, "%s %d exceeds %s %d", minAttr, *minValue, maxAttr, *maxValue)
	}
	return nil
}

// ToFloat converts numeric Go values into float64. Strings are not parsed.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
