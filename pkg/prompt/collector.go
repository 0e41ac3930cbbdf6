// Package prompt fills a form interactively. Fields are asked in flattened
// order; visibility and dependent options are re-evaluated against the
// answers collected so far, and each answer is checked by the validation
// engine before moving on.
package prompt

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-formdef/pkg/i18n"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/validation"
	"github.com/goliatone/go-formdef/pkg/visibility"
)

const (
	defaultAttempts = 3
	skipLabel       = "(skip)"
)

// Option configures a Collector.
type Option func(*Collector)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(c *Collector) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithValidator sets the validator answers are checked with.
func WithValidator(v *validation.Validator) Option {
	return func(c *Collector) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithTranslator sets the catalog used for prompt messages.
func WithTranslator(t i18n.Translator) Option {
	return func(c *Collector) {
		if t != nil {
			c.translator = t
		}
	}
}

// WithLocale selects the message language.
func WithLocale(locale string) Option {
	return func(c *Collector) { c.locale = locale }
}

// WithMaxAttempts bounds how often a field is asked again after an invalid
// answer.
func WithMaxAttempts(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFileReader overrides how file fields turn a path into bytes.
func WithFileReader(read func(path string) ([]byte, error)) Option {
	return func(c *Collector) {
		if read != nil {
			c.readFile = read
		}
	}
}

// Collector asks for field values one at a time.
type Collector struct {
	driver     Driver
	validator  *validation.Validator
	translator i18n.Translator
	locale     string
	attempts   int
	logger     *slog.Logger
	readFile   func(path string) ([]byte, error)
}

// New constructs a Collector that prompts on the terminal.
func New(opts ...Option) *Collector {
	c := &Collector{
		attempts: defaultAttempts,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.driver == nil {
		c.driver = NewSurveyDriver()
	}
	if c.translator == nil {
		c.translator = i18n.Default()
	}
	if c.validator == nil {
		c.validator = validation.New(validation.WithTranslator(c.translator))
	}
	return c
}

// Collect returns the submission built from the answers. Skipped optional
// fields and invisible fields are absent from the result.
func (c *Collector) Collect(ctx context.Context, form *model.Form) (map[string]any, error) {
	if form == nil {
		return nil, model.Configurationf("", "form is required")
	}
	answers := make(map[string]any)
	for _, field := range form.Fields() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !visibility.IsVisible(field, answers) {
			c.logger.Debug("skipping hidden field", slog.String("field", field.Name()))
			continue
		}
		if field.Kind() == model.KindHidden {
			if value, ok := hiddenValue(field); ok {
				answers[field.Name()] = value
			}
			continue
		}
		if err := c.collectField(ctx, form, field, answers); err != nil {
			return nil, err
		}
	}
	return answers, nil
}

func (c *Collector) collectField(ctx context.Context, form *model.Form, field model.Field, answers map[string]any) error {
	for attempt := 1; attempt <= c.attempts; attempt++ {
		value, answered, err := c.ask(ctx, field, answers)
		if err != nil {
			return err
		}

		candidate := make(map[string]any, len(answers)+1)
		for key, v := range answers {
			candidate[key] = v
		}
		if answered {
			candidate[field.Name()] = value
		}
		result, err := c.validator.Validate(form, candidate, validation.Options{
			Scope:  validation.Fields(field.Name()),
			Locale: c.locale,
		})
		if err != nil {
			return err
		}
		if result.Success {
			if coerced, ok := result.Data[field.Name()]; ok {
				answers[field.Name()] = coerced
			}
			return nil
		}
		for _, fe := range result.Errors {
			msg := c.translator.Translate(c.locale, "prompt.invalid_answer", map[string]any{"Message": fe.Message})
			if err := c.driver.Info(ctx, msg); err != nil {
				return err
			}
		}
		c.logger.Debug("invalid answer",
			slog.String("field", field.Name()),
			slog.Int("attempt", attempt),
			slog.Int("errors", len(result.Errors)),
		)
	}
	return fmt.Errorf("%w: field %q", ErrTooManyAttempts, field.Name())
}

// ask prompts once. answered is false when the user skipped the field.
func (c *Collector) ask(ctx context.Context, field model.Field, answers map[string]any) (any, bool, error) {
	message := label(field)
	help := field.HelpText()
	def, hasDefault := field.Default()

	switch field.Kind() {
	case model.KindCheckbox:
		initial := field.Constraints().Checked
		if b, ok := def.(bool); ok && hasDefault {
			initial = b
		}
		value, err := c.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: initial, Help: help})
		return value, err == nil, err

	case model.KindSelect, model.KindRadio, model.KindCheckboxGroup:
		opts := field.Dependent().Resolve(answers[dependsOn(field)], field.Options())
		labels := make([]string, len(opts))
		for i, opt := range opts {
			labels[i] = opt.Label
		}
		if field.Kind() == model.KindCheckboxGroup || field.Multiple() {
			picked, err := c.driver.MultiSelect(ctx, SelectConfig{
				Message:  message,
				Options:  labels,
				Defaults: selectedIndices(opts, def),
				Help:     help,
			})
			if err != nil {
				return nil, false, err
			}
			values := make([]any, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(opts) {
					values = append(values, opts[idx].Value)
				}
			}
			return values, len(values) > 0, nil
		}
		if !field.Required() {
			labels = append(labels, skipLabel)
		}
		defaults := selectedIndices(opts, def)
		initial := -1
		if len(defaults) > 0 {
			initial = defaults[0]
		}
		idx, err := c.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: initial, Help: help})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(opts) {
			return nil, false, nil
		}
		return opts[idx].Value, true, nil

	case model.KindTextarea:
		text, err := c.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: stringDefault(def), Help: help})
		return text, err == nil && text != "", err

	case model.KindFile:
		path, err := c.driver.Input(ctx, InputConfig{Message: message + " (path)", Help: help})
		if err != nil || strings.TrimSpace(path) == "" {
			return nil, false, err
		}
		data, err := c.readFile(strings.TrimSpace(path))
		if err != nil {
			return nil, false, fmt.Errorf("prompt: field %q: %w", field.Name(), err)
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		if field.Multiple() {
			return []any{encoded}, true, nil
		}
		return encoded, true, nil

	case model.KindList:
		text, err := c.driver.Input(ctx, InputConfig{Message: message + " (comma separated)", Help: help})
		if err != nil || strings.TrimSpace(text) == "" {
			return nil, false, err
		}
		parts := strings.Split(text, ",")
		items := make([]any, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, true, nil

	default:
		text, err := c.driver.Input(ctx, InputConfig{Message: message, Default: stringDefault(def), Help: help})
		if err != nil {
			return nil, false, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, false, nil
		}
		return text, true, nil
	}
}

func label(field model.Field) string {
	text := field.Label()
	if text == "" {
		text = field.Name()
	}
	if placeholder := field.Placeholder(); placeholder != "" {
		text += " [" + placeholder + "]"
	}
	return text
}

func dependsOn(field model.Field) string {
	if dep := field.Dependent(); dep != nil {
		return dep.DependsOn
	}
	return ""
}

func selectedIndices(opts []model.SelectOption, def any) []int {
	wanted := map[string]bool{}
	if list, ok := model.AsList(def); ok {
		for _, v := range list {
			wanted[fmt.Sprint(v)] = true
		}
	} else if str, ok := def.(string); ok {
		wanted[str] = true
	}
	var out []int
	for i, opt := range opts {
		if opt.Selected || wanted[opt.Value] {
			out = append(out, i)
		}
	}
	return out
}

func stringDefault(def any) string {
	if def == nil {
		return ""
	}
	return fmt.Sprint(def)
}

func hiddenValue(field model.Field) (any, bool) {
	if def, ok := field.Default(); ok && def != nil {
		return def, true
	}
	if value := field.Constraints().Value; value != nil {
		return value, true
	}
	return nil, false
}

// Collect fills form on the terminal with default settings.
func Collect(ctx context.Context, form *model.Form, opts ...Option) (map[string]any, error) {
	return New(opts...).Collect(ctx, form)
}
