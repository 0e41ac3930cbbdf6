// Package openapi exports forms as OpenAPI 3 component schemas. Schemas are
// built from the same compiled plans as the JSON Schema exporter, so an API
// described with them accepts exactly the submissions the validator accepts.
package openapi

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
)

// Version is the OpenAPI version written into generated documents.
const Version = "3.0.3"

// Extension keys for keywords OpenAPI 3.0 has no slot for.
const (
	ExtFormatMinimum = "x-formatMinimum"
	ExtFormatMaximum = "x-formatMaximum"
	ExtPropertyOrder = "x-property-order"
	ExtFormVersion   = "x-form-version"
)

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

// Exporter converts forms into kin-openapi schemas.
type Exporter struct {
	compiler *compiler.Compiler
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

// SchemaFor returns the object schema of a form's submission. Properties are
// keyed by field name; ExtPropertyOrder records the flattened field order
// because OpenAPI property maps carry none.
func (e *Exporter) SchemaFor(form *model.Form) (*openapi3.Schema, error) {
	if form == nil {
		return nil, model.Configurationf("", "form is required")
	}
	plans, err := e.compiler.CompileAll(form.Fields())
	if err != nil {
		return nil, err
	}

	closed := false
	out := openapi3.NewObjectSchema()
	out.Title = form.Name()
	out.AdditionalProperties = openapi3.AdditionalProperties{Has: &closed}
	out.Properties = make(openapi3.Schemas, len(plans))
	order := make([]string, 0, len(plans))
	for _, plan := range plans {
		out.Properties[plan.Field] = openapi3.NewSchemaRef("", planSchema(plan))
		order = append(order, plan.Field)
		if plan.Required {
			out.Required = append(out.Required, plan.Field)
		}
	}
	out.Extensions = map[string]any{
		ExtPropertyOrder: order,
		ExtFormVersion:   form.Version(),
	}
	return out, nil
}

// Document builds an OpenAPI document holding one component schema per form,
// keyed by form name.
func (e *Exporter) Document(title, version string, forms ...*model.Form) (*openapi3.T, error) {
	if title == "" {
		return nil, fmt.Errorf("openapi: document title is required")
	}
	if version == "" {
		version = "1.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(forms)),
		},
	}
	for _, form := range forms {
		schema, err := e.SchemaFor(form)
		if err != nil {
			return nil, err
		}
		if _, dup := doc.Components.Schemas[form.Name()]; dup {
			return nil, model.Configurationf("", "duplicate form name %q", form.Name())
		}
		doc.Components.Schemas[form.Name()] = openapi3.NewSchemaRef("", schema)
	}
	return doc, nil
}

func planSchema(plan compiler.Plan) *openapi3.Schema {
	out := &openapi3.Schema{}
	if plan.Type != "" {
		out.Type = &openapi3.Types{plan.Type}
	}
	for _, kw := range plan.Meta {
		switch kw.Name {
		case "title":
			out.Title, _ = kw.Value.(string)
		case "description":
			out.Description, _ = kw.Value.(string)
		case "default":
			out.Default = kw.Value
		case "readOnly":
			out.ReadOnly, _ = kw.Value.(bool)
		}
	}
	if plan.Items != nil {
		out.Items = openapi3.NewSchemaRef("", planSchema(*plan.Items))
	}
	for _, c := range plan.Constraints {
		applyKeyword(out, c.Keyword, c.Value)
	}
	return out
}

// applyKeyword maps a JSON Schema keyword onto its OpenAPI field. Keywords
// without a field become "x-" extensions.
func applyKeyword(out *openapi3.Schema, keyword string, value any) {
	switch keyword {
	case "":
		return
	case "minLength":
		out.MinLength = toUint(value)
	case "maxLength":
		n := toUint(value)
		out.MaxLength = &n
	case "pattern":
		out.Pattern, _ = value.(string)
	case "format":
		out.Format, _ = value.(string)
	case "minimum":
		if f, ok := model.ToFloat(value); ok {
			out.Min = &f
		}
	case "maximum":
		if f, ok := model.ToFloat(value); ok {
			out.Max = &f
		}
	case "multipleOf":
		if f, ok := model.ToFloat(value); ok {
			out.MultipleOf = &f
		}
	case "enum":
		out.Enum = enumValues(value)
	case "minItems":
		out.MinItems = toUint(value)
	case "maxItems":
		n := toUint(value)
		out.MaxItems = &n
	case "uniqueItems":
		out.UniqueItems, _ = value.(bool)
	case "contentEncoding":
		if value == "base64" {
			out.Format = "byte"
			return
		}
		setExtension(out, "x-contentEncoding", value)
	case "formatMinimum":
		setExtension(out, ExtFormatMinimum, value)
	case "formatMaximum":
		setExtension(out, ExtFormatMaximum, value)
	default:
		setExtension(out, "x-"+keyword, value)
	}
}

func setExtension(out *openapi3.Schema, key string, value any) {
	if out.Extensions == nil {
		out.Extensions = make(map[string]any)
	}
	out.Extensions[key] = value
}

func enumValues(value any) []any {
	list, ok := model.AsList(value)
	if !ok {
		return []any{value}
	}
	return list
}

func toUint(value any) uint64 {
	f, ok := model.ToFloat(value)
	if !ok || f < 0 {
		return 0
	}
	return uint64(f)
}

// ComponentNames lists the schema names of doc, sorted.
func ComponentNames(doc *openapi3.T) []string {
	if doc == nil || doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultExporter = NewExporter()

// SchemaFor converts form with a compiler that knows no custom kinds.
func SchemaFor(form *model.Form) (*openapi3.Schema, error) {
	return defaultExporter.SchemaFor(form)
}

// Document builds a document with the default exporter.
func Document(title, version string, forms ...*model.Form) (*openapi3.T, error) {
	return defaultExporter.Document(title, version, forms...)
}
