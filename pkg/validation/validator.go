// Package validation applies compiled field plans to submitted data. It never
// stops at the first failure and never returns an error for bad data: every
// violated constraint becomes a FieldError in the Result. Errors are reserved
// for caller bugs such as an out of range step index.
package validation

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/i18n"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/visibility"
)

// Options tunes a single validation call.
type Options struct {
	Scope Scope
	// RespectVisibility skips fields whose visibility rules do not hold for
	// the submission. Skipped fields never report errors.
	RespectVisibility bool
	// Locale selects the message language; empty uses the validator default.
	Locale string
	// AllowUnknown disables the unknown_field check on whole-form scope.
	AllowUnknown bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithCompiler sets the compiler, typically one wired to a field registry so
// custom kinds resolve.
func WithCompiler(c *compiler.Compiler) Option {
	return func(v *Validator) {
		if c != nil {
			v.compiler = c
		}
	}
}

// WithTranslator sets the message source.
func WithTranslator(t i18n.Translator) Option {
	return func(v *Validator) {
		if t != nil {
			v.translator = t
		}
	}
}

// WithLogger sets the logger used for per-call debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithDefaultLocale sets the locale used when Options.Locale is empty.
func WithDefaultLocale(locale string) Option {
	return func(v *Validator) { v.locale = locale }
}

// WithEvaluator replaces the visibility evaluator.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(v *Validator) {
		if eval != nil {
			v.evaluator = eval
		}
	}
}

// Validator runs validation calls. It is safe for concurrent use as long as
// its translator is.
type Validator struct {
	compiler   *compiler.Compiler
	translator i18n.Translator
	evaluator  visibility.Evaluator
	logger     *slog.Logger
	locale     string
}

// New constructs a Validator. Without options it uses the built-in catalog,
// a compiler without custom kinds and a discard logger.
func New(opts ...Option) *Validator {
	v := &Validator{
		compiler:  compiler.New(),
		evaluator: visibility.Rules{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		locale:    i18n.FallbackLocale,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.translator == nil {
		v.translator = i18n.Default()
	}
	return v
}

// Validate checks submission against the fields selected by opts.Scope.
func (v *Validator) Validate(form *model.Form, submission map[string]any, opts Options) (Result, error) {
	if form == nil {
		return Result{}, model.Configurationf("", "form is required")
	}
	locale := v.localeFor(opts)

	candidates, err := opts.Scope.candidates(form)
	if err != nil {
		return Result{}, err
	}
	errs, data, err := v.run(candidates, submission, opts, locale)
	if err != nil {
		return Result{}, err
	}
	if opts.Scope.IsWholeForm() && !opts.AllowUnknown {
		errs = append(errs, v.unknownKeys(form, submission, locale)...)
	}

	result := v.finish(errs, data, locale, MessageFailure)
	v.logger.Debug("validated submission",
		slog.String("form", form.Name()),
		slog.String("scope", opts.Scope.String()),
		slog.Int("fields", len(candidates)),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// ValidateStep validates the fields of one step. Forms without steps and out
// of range indexes are configuration errors.
func (v *Validator) ValidateStep(form *model.Form, index int, submission map[string]any, opts Options) (Result, error) {
	opts.Scope = Step(index)
	return v.Validate(form, submission, opts)
}

// ValidateAllSteps validates every step and records failures per step index.
// Fields declared outside the steps are validated as well; their failures
// appear in Errors only. A form without steps is validated as a whole.
func (v *Validator) ValidateAllSteps(form *model.Form, submission map[string]any, opts Options) (Result, error) {
	if form == nil {
		return Result{}, model.Configurationf("", "form is required")
	}
	if !form.IsWizard() {
		opts.Scope = WholeForm()
		return v.Validate(form, submission, opts)
	}
	locale := v.localeFor(opts)

	var all []FieldError
	data := make(map[string]any)
	stepErrors := make(map[int][]FieldError)
	// Content is walked in order so fields declared beside the steps are
	// validated too, keeping errors in flattened order.
	step := 0
	for _, item := range form.Content() {
		var fields []model.Field
		isStep := false
		if _, ok := item.(model.Step); ok {
			stepFields, err := form.StepFields(step)
			if err != nil {
				return Result{}, err
			}
			fields, isStep = stepFields, true
		} else {
			fields = model.Flatten([]model.Item{item})
		}
		errs, itemData, err := v.run(fields, submission, opts, locale)
		if err != nil {
			return Result{}, err
		}
		if len(errs) > 0 {
			if isStep {
				stepErrors[step] = errs
			}
			all = append(all, errs...)
		}
		for key, value := range itemData {
			data[key] = value
		}
		if isStep {
			step++
		}
	}
	if !opts.AllowUnknown {
		all = append(all, v.unknownKeys(form, submission, locale)...)
	}

	result := v.finish(all, data, locale, MessageWizardFailed)
	if len(stepErrors) > 0 {
		result.StepErrors = stepErrors
	}
	v.logger.Debug("validated wizard submission",
		slog.String("form", form.Name()),
		slog.Int("steps", len(form.Steps())),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (v *Validator) localeFor(opts Options) string {
	if opts.Locale != "" {
		return opts.Locale
	}
	return v.locale
}

// run validates fields in order and returns the collected errors and the
// coerced values of the fields that passed.
func (v *Validator) run(fields []model.Field, submission map[string]any, opts Options, locale string) ([]FieldError, map[string]any, error) {
	if opts.RespectVisibility {
		fields = visibility.Filter(fields, submission, v.evaluator)
	}

	var errs []FieldError
	data := make(map[string]any, len(fields))
	for _, field := range fields {
		plan, err := v.compiler.Compile(field)
		if err != nil {
			return nil, nil, err
		}
		plan = plan.Resolve(submission)

		value, present := submission[field.Name()]
		if (!present || value == nil) && plan.HasDefault {
			value = plan.Default
		}
		if plan.Required && visibility.IsEmpty(value) {
			errs = append(errs, v.fieldError(field, compiler.CodeRequired, nil, locale))
			continue
		}
		// Optional fields skip only absent values; "" and [] still run every
		// constraint.
		if value == nil {
			continue
		}

		coerced, violations := plan.Check(value)
		if len(violations) == 0 {
			data[field.Name()] = coerced
			continue
		}
		for _, violation := range violations {
			errs = append(errs, v.fieldError(field, violation.Code, violation.Params, locale))
		}
	}
	return errs, data, nil
}

// unknownKeys reports submission keys the form does not declare, sorted for
// stable output.
func (v *Validator) unknownKeys(form *model.Form, submission map[string]any, locale string) []FieldError {
	var names []string
	for key := range submission {
		if !form.Has(key) {
			names = append(names, key)
		}
	}
	sort.Strings(names)

	out := make([]FieldError, 0, len(names))
	for _, name := range names {
		params := map[string]any{"Field": name}
		out = append(out, FieldError{
			Field:   name,
			Code:    compiler.CodeUnknownField,
			Message: v.translator.Translate(locale, messageKey(compiler.CodeUnknownField), params),
			Params:  params,
		})
	}
	return out
}

func (v *Validator) fieldError(field model.Field, code string, params map[string]any, locale string) FieldError {
	merged := make(map[string]any, len(params)+1)
	for key, value := range params {
		merged[key] = value
	}
	merged["Field"] = field.Name()
	return FieldError{
		Field:   field.Name(),
		Code:    code,
		Message: v.translator.Translate(locale, messageKey(code), merged),
		Params:  merged,
	}
}

func (v *Validator) finish(errs []FieldError, data map[string]any, locale, failureKey string) Result {
	if len(errs) == 0 {
		return Result{
			Success: true,
			Errors:  []FieldError{},
			Data:    data,
			Message: v.translator.Translate(locale, MessageSuccess, nil),
		}
	}
	return Result{
		Success: false,
		Errors:  errs,
		Message: v.translator.Translate(locale, failureKey, nil),
	}
}

func messageKey(code string) string {
	return "validation." + code
}

var (
	defaultOnce sync.Once
	fallback    *Validator
)

func defaultValidator() *Validator {
	defaultOnce.Do(func() { fallback = New() })
	return fallback
}

// Validate runs a validation call with the package default validator.
func Validate(form *model.Form, submission map[string]any, opts Options) (Result, error) {
	return defaultValidator().Validate(form, submission, opts)
}

// ValidateStep runs a step validation with the package default validator.
func ValidateStep(form *model.Form, index int, submission map[string]any, opts Options) (Result, error) {
	return defaultValidator().ValidateStep(form, index, submission, opts)
}

// ValidateAllSteps runs a wizard validation with the package default
// validator.
func ValidateAllSteps(form *model.Form, submission map[string]any, opts Options) (Result, error) {
	return defaultValidator().ValidateAllSteps(form, submission, opts)
}
