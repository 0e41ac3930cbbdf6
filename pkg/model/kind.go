package model

// Kind discriminates a field's base type and constraint shape. Built-in kinds
// form a closed set; anything registered under another tag compiles as
// KindCustom.
type Kind string

const (
	KindText          Kind = "text"
	KindEmail         Kind = "email"
	KindNumber        Kind = "number"
	KindDate          Kind = "date"
	KindSelect        Kind = "select"
	KindRadio         Kind = "radio"
	KindCheckbox      Kind = "checkbox"
	KindCheckboxGroup Kind = "checkbox_group"
	KindFile          Kind = "file"
	KindHidden        Kind = "hidden"
	KindURL           Kind = "url"
	KindTextarea      Kind = "textarea"
	KindList          Kind = "list"
	KindCustom        Kind = "custom"
)

var builtinKinds = []Kind{
	KindText,
	KindEmail,
	KindNumber,
	KindDate,
	KindSelect,
	KindRadio,
	KindCheckbox,
	KindCheckboxGroup,
	KindFile,
	KindHidden,
	KindURL,
	KindTextarea,
	KindList,
}

// BuiltinKinds returns the built-in kinds in declaration order.
func BuiltinKinds() []Kind {
	return append([]Kind(nil), builtinKinds...)
}

// Builtin reports whether k is one of the built-in kinds.
func (k Kind) Builtin() bool {
	for _, candidate := range builtinKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Tag returns the field_type tag the kind serialises under. Checkbox groups
// share the "checkbox" tag with single checkboxes and are told apart by shape.
func (k Kind) Tag() string {
	if k == KindCheckboxGroup {
		return string(KindCheckbox)
	}
	return string(k)
}

// HasOptions reports whether the kind carries a SelectOption list.
func (k Kind) HasOptions() bool {
	switch k {
	case KindSelect, KindRadio, KindCheckboxGroup:
		return true
	default:
		return false
	}
}

// HasLength reports whether minlength/maxlength apply to the kind.
func (k Kind) HasLength() bool {
	switch k {
	case KindText, KindURL, KindTextarea:
		return true
	default:
		return false
	}
}

// ValidationMode is a UI hint for when a container should be validated. It
// never changes validation results.
type ValidationMode string

const (
	ValidationModeOnChange ValidationMode = "on_change"
	ValidationModeOnSubmit ValidationMode = "on_submit"
	ValidationModeOnNext   ValidationMode = "on_next"
)

func (m ValidationMode) valid() bool {
	switch m {
	case "", ValidationModeOnChange, ValidationModeOnSubmit, ValidationModeOnNext:
		return true
	default:
		return false
	}
}
