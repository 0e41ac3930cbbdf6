// Package jsonschema exports a form as a draft-07 JSON Schema document. Each
// property is the schema fragment of the field's compiled plan, so the export
// describes exactly what the validation engine enforces.
package jsonschema

import (
	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/schema"
)

// Exporter builds schema documents with a configurable compiler.
type Exporter struct {
	compiler *compiler.Compiler
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithCompiler sets the compiler, typically one wired to a field registry.
func WithCompiler(c *compiler.Compiler) Option {
	return func(e *Exporter) {
		if c != nil {
			e.compiler = c
		}
	}
}

// NewExporter constructs an Exporter.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{compiler: compiler.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ToSchema flattens the form and emits one property per field in flattened
// order, with the required set gathered across every nesting level.
func (e *Exporter) ToSchema(form *model.Form) (schema.Document, error) {
	doc := schema.Document{
		Schema: schema.Draft07,
		Type:   "object",
	}
	if form == nil {
		return doc, model.Configurationf("", "form is required")
	}
	doc.Title = form.Name()

	plans, err := e.compiler.CompileAll(form.Fields())
	if err != nil {
		return schema.Document{}, err
	}
	doc.Properties = make([]schema.Property, 0, len(plans))
	for _, plan := range plans {
		doc.Properties = append(doc.Properties, schema.Property{Name: plan.Field, Fragment: plan.Fragment()})
		if plan.Required {
			doc.Required = append(doc.Required, plan.Field)
		}
	}
	return doc, nil
}

// Marshal exports the form and encodes it, indented when indent is true.
func (e *Exporter) Marshal(form *model.Form, indent bool) ([]byte, error) {
	doc, err := e.ToSchema(form)
	if err != nil {
		return nil, err
	}
	if indent {
		return doc.Indent()
	}
	return doc.MarshalJSON()
}

var defaultExporter = NewExporter()

// ToSchema exports form with a compiler that knows no custom kinds.
func ToSchema(form *model.Form) (schema.Document, error) {
	return defaultExporter.ToSchema(form)
}

// Marshal exports and encodes form with the default exporter.
func Marshal(form *model.Form, indent bool) ([]byte, error) {
	return defaultExporter.Marshal(form, indent)
}
