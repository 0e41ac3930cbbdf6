// Package formdef is the quick start entry point for declarative forms. It
// re-exports the common types and wires the process-wide field registry into
// validation and schema export so custom field types work everywhere.
package formdef

import (
	"io/fs"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdef/pkg/codec"
	"github.com/goliatone/go-formdef/pkg/i18n"
	"github.com/goliatone/go-formdef/pkg/jsonschema"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/openapi"
	"github.com/goliatone/go-formdef/pkg/registry"
	"github.com/goliatone/go-formdef/pkg/validation"
)

// Form aliases model.Form.
type Form = model.Form

// Field aliases model.Field.
type Field = model.Field

// Result aliases validation.Result.
type Result = validation.Result

// FieldError aliases validation.FieldError.
type FieldError = validation.FieldError

// ValidateOptions aliases validation.Options.
type ValidateOptions = validation.Options

// Shape aliases registry.Shape for callers registering custom field types.
type Shape = registry.Shape

var (
	validatorOnce sync.Once
	validator     *validation.Validator
)

// defaultValidator resolves custom kinds through registry.Default. Shapes
// registered later are still seen because the registry is consulted per call.
func defaultValidator() *validation.Validator {
	validatorOnce.Do(func() {
		validator = validation.New(validation.WithCompiler(registry.Default().Compiler()))
	})
	return validator
}

// RegisterFieldType adds a custom field shape to the process-wide registry.
func RegisterFieldType(shape Shape) error {
	return registry.Register(shape)
}

// LoadFile decodes a .json, .yaml or .yml form definition.
func LoadFile(path string) (*Form, error) {
	return codec.LoadFile(path)
}

// Validate checks a submission against the whole form unless opts narrows
// the scope.
func Validate(form *Form, submission map[string]any, opts ValidateOptions) (Result, error) {
	return defaultValidator().Validate(form, submission, opts)
}

// ValidateAllSteps validates every step of a wizard and groups the errors by
// step index.
func ValidateAllSteps(form *Form, submission map[string]any, opts ValidateOptions) (Result, error) {
	return defaultValidator().ValidateAllSteps(form, submission, opts)
}

// JSONSchema renders form as an indented draft-07 JSON Schema document.
func JSONSchema(form *Form) ([]byte, error) {
	exporter := jsonschema.NewExporter(jsonschema.WithCompiler(registry.Default().Compiler()))
	return exporter.Marshal(form, true)
}

// OpenAPIDocument builds an OpenAPI 3 document with one component schema per
// form.
func OpenAPIDocument(title, version string, forms ...*Form) (*openapi3.T, error) {
	exporter := openapi.NewExporter(openapi.WithCompiler(registry.Default().Compiler()))
	return exporter.Document(title, version, forms...)
}

// MessagesFS exposes the built-in message catalogs so applications can copy
// them when adding a locale.
//
// Typical use:
//
//	data, _ := fs.ReadFile(formdef.MessagesFS(), "active.en.toml")
func MessagesFS() fs.FS {
	return i18n.LocalesFS()
}
