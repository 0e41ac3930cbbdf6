package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
)

type scopeKind int

const (
	scopeForm scopeKind = iota
	scopeStep
	scopeFields
)

// Scope selects the candidate fields of one validation call. The zero value
// is the whole form.
type Scope struct {
	kind   scopeKind
	step   int
	fields []string
}

// WholeForm validates every field in flattened order.
func WholeForm() Scope { return Scope{kind: scopeForm} }

// Step validates the fields of one top-level step.
func Step(index int) Scope { return Scope{kind: scopeStep, step: index} }

// Fields validates an explicit subset, kept in the form's flattened order.
func Fields(names ...string) Scope {
	return Scope{kind: scopeFields, fields: append([]string(nil), names...)}
}

// IsWholeForm reports whether the scope covers every field.
func (s Scope) IsWholeForm() bool { return s.kind == scopeForm }

// String renders the scope for logs.
func (s Scope) String() string {
	switch s.kind {
	case scopeStep:
		return fmt.Sprintf("step[%d]", s.step)
	case scopeFields:
		return "fields[" + strings.Join(s.fields, ",") + "]"
	default:
		return "form"
	}
}

// candidates resolves the scope against form. Bad step indexes and unknown
// field names are configuration errors.
func (s Scope) candidates(form *model.Form) ([]model.Field, error) {
	switch s.kind {
	case scopeStep:
		return form.StepFields(s.step)
	case scopeFields:
		wanted := make(map[string]struct{}, len(s.fields))
		for _, name := range s.fields {
			if !form.Has(name) {
				return nil, model.Configurationf(name, "field is not declared in form %q", form.Name())
			}
			wanted[name] = struct{}{}
		}
		var out []model.Field
		for _, field := range form.Fields() {
			if _, ok := wanted[field.Name()]; ok {
				out = append(out, field)
			}
		}
		return out, nil
	default:
		return form.Fields(), nil
	}
}
