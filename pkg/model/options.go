package model

import "time"

// FieldType sets the field_type tag. Built-in kinds set it automatically, so
// this is only needed for custom fields.
func FieldType(tag string) FieldOption {
	return func(f *Field) { f.fieldType = tag }
}

func Label(label string) FieldOption {
	return func(f *Field) { f.label = label }
}

func Required() FieldOption {
	return func(f *Field) { f.required = true }
}

// RequiredIf sets the required flag explicitly.
func RequiredIf(required bool) FieldOption {
	return func(f *Field) { f.required = required }
}

func Placeholder(text string) FieldOption {
	return func(f *Field) { f.placeholder = text }
}

func HelpText(text string) FieldOption {
	return func(f *Field) { f.helpText = text }
}

func ReadOnly() FieldOption {
	return func(f *Field) { f.readonly = true }
}

func CSSClasses(classes string) FieldOption {
	return func(f *Field) { f.cssClasses = classes }
}

// Default declares the value used when a submission omits the field.
func Default(value any) FieldOption {
	return func(f *Field) {
		f.defaultValue = value
		f.hasDefault = true
	}
}

// Attributes merges free-form attributes. They are opaque to validation.
func Attributes(attrs map[string]string) FieldOption {
	return func(f *Field) {
		if len(attrs) == 0 {
			return
		}
		if f.attributes == nil {
			f.attributes = make(map[string]string, len(attrs))
		}
		for key, value := range attrs {
			f.attributes[key] = value
		}
	}
}

// VisibleWhen appends visibility rules; all of them must hold.
func VisibleWhen(rules ...VisibilityRule) FieldOption {
	return func(f *Field) { f.visibleWhen = append(f.visibleWhen, rules...) }
}

func MinLength(n int) FieldOption {
	return func(f *Field) { f.constraints.MinLength = &n }
}

func MaxLength(n int) FieldOption {
	return func(f *Field) { f.constraints.MaxLength = &n }
}

func Pattern(expr string) FieldOption {
	return func(f *Field) { f.constraints.Pattern = expr }
}

func Min(value float64) FieldOption {
	return func(f *Field) { f.constraints.Minimum = &value }
}

func Max(value float64) FieldOption {
	return func(f *Field) { f.constraints.Maximum = &value }
}

// StepSize requires numeric values to be multiples of value.
func StepSize(value float64) FieldOption {
	return func(f *Field) { f.constraints.Step = &value }
}

func MinDate(value time.Time) FieldOption {
	return func(f *Field) {
		d := civil(value)
		f.constraints.MinDate = &d
	}
}

func MaxDate(value time.Time) FieldOption {
	return func(f *Field) {
		d := civil(value)
		f.constraints.MaxDate = &d
	}
}

func Options(opts ...SelectOption) FieldOption {
	return func(f *Field) { f.constraints.Options = append(f.constraints.Options, opts...) }
}

func Multiple() FieldOption {
	return func(f *Field) { f.constraints.Multiple = true }
}

func MinSelected(n int) FieldOption {
	return func(f *Field) { f.constraints.MinSelected = &n }
}

func MaxSelected(n int) FieldOption {
	return func(f *Field) { f.constraints.MaxSelected = &n }
}

// DependsOn narrows the allowed options based on another field's value.
func DependsOn(field string, optionsMap map[string][]SelectOption) FieldOption {
	return func(f *Field) {
		f.constraints.Dependent = &DependentOptions{DependsOn: field, OptionsMap: optionsMap}
	}
}

func MinItems(n int) FieldOption {
	return func(f *Field) { f.constraints.MinItems = &n }
}

func MaxItems(n int) FieldOption {
	return func(f *Field) { f.constraints.MaxItems = &n }
}

// ItemType selects the element type of a list field ("text" or "number").
func ItemType(kind string) FieldOption {
	return func(f *Field) { f.constraints.ItemType = kind }
}

func Accept(mime string) FieldOption {
	return func(f *Field) { f.constraints.Accept = mime }
}

// Value sets a hidden field's value or a checkbox's submitted value.
func Value(value any) FieldOption {
	return func(f *Field) { f.constraints.Value = value }
}

func Checked() FieldOption {
	return func(f *Field) { f.constraints.Checked = true }
}

func Inline() FieldOption {
	return func(f *Field) { f.constraints.Inline = true }
}

func Rows(n int) FieldOption {
	return func(f *Field) { f.constraints.Rows = &n }
}

func Cols(n int) FieldOption {
	return func(f *Field) { f.constraints.Cols = &n }
}

// Param sets a custom shape parameter.
func Param(key string, value any) FieldOption {
	return func(f *Field) {
		if f.constraints.Params == nil {
			f.constraints.Params = make(map[string]any)
		}
		f.constraints.Params[key] = value
	}
}

// WithConstraints replaces every kind-specific parameter at once. Decoders
// use it to apply a fully populated Constraints value.
func WithConstraints(c Constraints) FieldOption {
	return func(f *Field) { f.constraints = c }
}

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}
