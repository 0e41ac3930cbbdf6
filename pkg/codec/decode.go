package codec

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formdef/pkg/model"
)

// commonKeys are accepted on every field whatever its kind.
var commonKeys = map[string]bool{
	"name": true, "label": true, "field_type": true, "required": true,
	"placeholder": true, "default_value": true, "help_text": true,
	"readonly": true, "css_classes": true, "attributes": true,
	"visible_when": true, "dependent_options": true,
}

// constraintKeys are the built-in kind parameters.
var constraintKeys = map[string]bool{
	"minlength": true, "maxlength": true, "pattern": true,
	"min_value": true, "max_value": true, "step": true,
	"min_date": true, "max_date": true,
	"options": true, "multiple": true, "min_selected": true, "max_selected": true,
	"min_items": true, "max_items": true, "item_type": true,
	"accept": true, "value": true, "checked": true, "inline": true,
	"rows": true, "cols": true,
}

// FromMap builds a form from an already parsed payload.
func (c *Codec) FromMap(raw map[string]any) (*model.Form, error) {
	r := &reader{raw: raw}
	name := r.str("name")
	var opts []model.FormOption
	if id := r.str("id"); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("codec: form id %q: %w", id, err)
		}
		opts = append(opts, model.WithID(parsed))
	}
	if version := r.intPtr("version"); version != nil {
		opts = append(opts, model.WithVersion(*version))
	}
	if version := r.intPtr("schema_version"); version != nil {
		opts = append(opts, model.WithSchemaVersion(*version))
	}
	if action := r.str("action"); action != "" {
		opts = append(opts, model.WithAction(action))
	}
	if classes := r.str("css_classes"); classes != "" {
		opts = append(opts, model.WithFormCSSClasses(classes))
	}
	if attrs := r.stringMap("attributes"); attrs != nil {
		opts = append(opts, model.WithFormAttributes(attrs))
	}
	key := "content"
	if _, ok := raw[key]; !ok {
		key = "fields"
	}
	entries := r.list(key)
	if r.err != nil {
		return nil, r.err
	}

	content, err := c.items(entries, "")
	if err != nil {
		return nil, err
	}
	return model.NewForm(name, content, opts...)
}

func (c *Codec) items(entries []any, path string) ([]model.Item, error) {
	out := make([]model.Item, 0, len(entries))
	for idx, entry := range entries {
		where := fmt.Sprintf("%scontent[%d]", path, idx)
		raw, ok := asMap(entry)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected an object, got %T", where, entry)
		}
		item, err := c.item(raw, where+".")
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Codec) item(raw map[string]any, path string) (model.Item, error) {
	kind, _ := raw["type"].(string)
	container, _ := raw["container_type"].(string)
	_, hasFieldType := raw["field_type"]
	_, hasTitle := raw["title"]

	switch {
	case kind == "step":
		return c.step(raw, path)
	case container == "group" || (hasTitle && !hasFieldType):
		return c.group(raw, path)
	default:
		return c.field(raw)
	}
}

func (c *Codec) step(raw map[string]any, path string) (model.Item, error) {
	r := &reader{raw: raw}
	step := model.Step{
		ID:             r.uuid("id"),
		Title:          c.text(r.str("title")),
		Description:    c.text(r.str("description")),
		CSSClasses:     r.str("css_classes"),
		Attributes:     r.stringMap("attributes"),
		ValidationMode: model.ValidationMode(r.str("validation_mode")),
		Skippable:      r.boolean("skippable"),
	}
	children := r.children()
	if r.err != nil {
		return nil, r.err
	}
	items, err := c.items(children, path)
	if err != nil {
		return nil, err
	}
	step.Items = items
	return step, nil
}

func (c *Codec) group(raw map[string]any, path string) (model.Item, error) {
	r := &reader{raw: raw}
	group := model.Group{
		ID:             r.uuid("id"),
		Title:          c.text(r.str("title")),
		Description:    c.text(r.str("description")),
		CSSClasses:     r.str("css_classes"),
		Attributes:     r.stringMap("attributes"),
		Collapsible:    r.boolean("collapsible"),
		Collapsed:      r.boolean("collapsed"),
		ValidationMode: model.ValidationMode(r.str("validation_mode")),
	}
	children := r.children()
	if r.err != nil {
		return nil, r.err
	}
	items, err := c.items(children, path)
	if err != nil {
		return nil, err
	}
	group.Items = items
	return group, nil
}

func (c *Codec) field(raw map[string]any) (model.Item, error) {
	r := &reader{raw: raw}
	name := r.str("name")
	r.field = name
	tag := strings.TrimSpace(r.str("field_type"))
	if r.err != nil {
		return nil, r.err
	}
	if tag == "" {
		return nil, &model.ConstructionError{Field: name, Attribute: "field_type", Reason: "field_type is required"}
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	shape, err := c.registry.Resolve(tag, keys)
	if err != nil {
		return nil, fmt.Errorf("codec: field %q: %w", name, err)
	}
	if len(c.registry.Shapes(tag)) > 1 {
		c.logger.Debug("resolved field shape",
			slog.String("field", name),
			slog.String("field_type", tag),
			slog.String("kind", string(shape.Kind)),
		)
	}

	opts := []model.FieldOption{
		model.Label(c.text(r.str("label"))),
		model.RequiredIf(r.boolean("required")),
		model.Placeholder(c.text(r.str("placeholder"))),
		model.HelpText(c.text(r.str("help_text"))),
		model.CSSClasses(r.str("css_classes")),
		model.Attributes(r.stringMap("attributes")),
		model.VisibleWhen(r.rules("visible_when")...),
	}
	if r.boolean("readonly") {
		opts = append(opts, model.ReadOnly())
	}
	if value, ok := raw["default_value"]; ok && value != nil {
		opts = append(opts, model.Default(scalar(value)))
	}

	var cons model.Constraints
	if shape.Kind == model.KindCustom {
		cons.Options = c.options(r, "options")
		for _, key := range keys {
			if commonKeys[key] || key == "options" {
				continue
			}
			if cons.Params == nil {
				cons.Params = make(map[string]any)
			}
			cons.Params[key] = scalar(raw[key])
		}
	} else {
		cons = c.constraints(r)
		for _, key := range keys {
			if !commonKeys[key] && !constraintKeys[key] {
				c.logger.Debug("ignoring unknown field key", slog.String("field", name), slog.String("key", key))
			}
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	opts = append(opts, model.WithConstraints(cons))

	if shape.Kind == model.KindCustom {
		return model.NewCustomField(tag, name, opts...)
	}
	return model.NewField(shape.Kind, name, opts...)
}

func (c *Codec) constraints(r *reader) model.Constraints {
	cons := model.Constraints{
		MinLength:   r.intPtr("minlength"),
		MaxLength:   r.intPtr("maxlength"),
		Pattern:     r.str("pattern"),
		Minimum:     r.floatPtr("min_value"),
		Maximum:     r.floatPtr("max_value"),
		Step:        r.floatPtr("step"),
		MinDate:     r.datePtr("min_date"),
		MaxDate:     r.datePtr("max_date"),
		Options:     c.options(r, "options"),
		Multiple:    r.boolean("multiple"),
		MinSelected: r.intPtr("min_selected"),
		MaxSelected: r.intPtr("max_selected"),
		MinItems:    r.intPtr("min_items"),
		MaxItems:    r.intPtr("max_items"),
		ItemType:    r.str("item_type"),
		Accept:      r.str("accept"),
		Checked:     r.boolean("checked"),
		Inline:      r.boolean("inline"),
		Rows:        r.intPtr("rows"),
		Cols:        r.intPtr("cols"),
	}
	if value, ok := r.raw["value"]; ok {
		cons.Value = scalar(value)
	}
	if dep, ok := r.object("dependent_options"); ok {
		sub := &reader{raw: dep, field: r.field}
		cons.Dependent = &model.DependentOptions{DependsOn: sub.str("depends_on")}
		if mapping, ok := sub.object("options_map"); ok {
			cons.Dependent.OptionsMap = make(map[string][]model.SelectOption, len(mapping))
			for key := range mapping {
				cons.Dependent.OptionsMap[key] = c.options(&reader{raw: mapping, field: r.field}, key)
			}
		}
		if sub.err != nil && r.err == nil {
			r.err = sub.err
		}
	}
	return cons
}

// options reads an option list. Entries are objects with value and label, or
// bare strings used as both.
func (c *Codec) options(r *reader, key string) []model.SelectOption {
	entries := r.list(key)
	if len(entries) == 0 {
		return nil
	}
	out := make([]model.SelectOption, 0, len(entries))
	for _, entry := range entries {
		switch typed := entry.(type) {
		case string:
			out = append(out, model.SelectOption{Value: typed, Label: c.text(typed)})
		default:
			raw, ok := asMap(entry)
			if !ok {
				r.fail(key, "option must be an object or a string, got %T", entry)
				return nil
			}
			sub := &reader{raw: raw, field: r.field}
			opt := model.SelectOption{
				Label:    c.text(sub.str("label")),
				Selected: sub.boolean("selected"),
			}
			if v := raw["value"]; v != nil {
				opt.Value = fmt.Sprint(scalar(v))
			}
			if sub.err != nil {
				r.err = sub.err
				return nil
			}
			if opt.Label == "" {
				opt.Label = opt.Value
			}
			out = append(out, opt)
		}
	}
	return out
}

func (c *Codec) text(value string) string {
	if !c.stripMarkup {
		return value
	}
	return stripMarkup(value)
}

// reader pulls typed values out of a decoded object, keeping the first type
// error it meets.
type reader struct {
	raw   map[string]any
	field string
	err   error
}

func (r *reader) fail(key, format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = &model.ConstructionError{Field: r.field, Attribute: key, Reason: fmt.Sprintf(format, args...)}
}

func (r *reader) str(key string) string {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case time.Time:
		return typed.Format(model.DateLayout)
	default:
		r.fail(key, "expected a string, got %T", value)
		return ""
	}
}

func (r *reader) boolean(key string) bool {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return false
	}
	b, ok := value.(bool)
	if !ok {
		r.fail(key, "expected a boolean, got %T", value)
	}
	return b
}

func (r *reader) intPtr(key string) *int {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return nil
	}
	f, ok := model.ToFloat(value)
	if !ok || f != math.Trunc(f) {
		r.fail(key, "expected an integer, got %v", value)
		return nil
	}
	n := int(f)
	return &n
}

func (r *reader) floatPtr(key string) *float64 {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return nil
	}
	f, ok := model.ToFloat(value)
	if !ok {
		r.fail(key, "expected a number, got %v", value)
		return nil
	}
	return &f
}

func (r *reader) datePtr(key string) *time.Time {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return nil
	}
	if t, ok := value.(time.Time); ok {
		d := model.Date(t.Year(), t.Month(), t.Day())
		return &d
	}
	str := r.str(key)
	if str == "" {
		return nil
	}
	t, err := model.ParseDate(str)
	if err != nil {
		r.fail(key, "expected a YYYY-MM-DD date, got %q", str)
		return nil
	}
	return &t
}

func (r *reader) uuid(key string) uuid.UUID {
	str := r.str(key)
	if str == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(str)
	if err != nil {
		r.fail(key, "invalid id %q", str)
		return uuid.Nil
	}
	return id
}

func (r *reader) list(key string) []any {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return nil
	}
	list, ok := model.AsList(value)
	if !ok {
		r.fail(key, "expected a list, got %T", value)
	}
	return list
}

func (r *reader) object(key string) (map[string]any, bool) {
	value, ok := r.raw[key]
	if !ok || value == nil {
		return nil, false
	}
	m, ok := asMap(value)
	if !ok {
		r.fail(key, "expected an object, got %T", value)
	}
	return m, ok
}

// stringMap reads a free-form attribute map, coercing values to strings.
func (r *reader) stringMap(key string) map[string]string {
	m, ok := r.object(key)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = ""
			continue
		}
		out[k] = fmt.Sprint(scalar(v))
	}
	return out
}

// children returns a container's items: groups hold "fields" and steps hold
// "content", but either key is accepted.
func (r *reader) children() []any {
	if _, ok := r.raw["content"]; ok {
		return r.list("content")
	}
	return r.list("fields")
}

func (r *reader) rules(key string) []model.VisibilityRule {
	entries := r.list(key)
	if len(entries) == 0 {
		return nil
	}
	out := make([]model.VisibilityRule, 0, len(entries))
	for _, entry := range entries {
		raw, ok := asMap(entry)
		if !ok {
			r.fail(key, "rule must be an object, got %T", entry)
			return nil
		}
		sub := &reader{raw: raw, field: r.field}
		rule := model.VisibilityRule{
			Field:    sub.str("field"),
			Operator: model.Operator(sub.str("operator")),
			Value:    scalar(raw["value"]),
		}
		if sub.err != nil {
			r.err = sub.err
			return nil
		}
		out = append(out, rule)
	}
	return out
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// scalar normalises decoded values: YAML timestamps become date strings and
// nested lists and maps are normalised recursively.
func scalar(value any) any {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format(model.DateLayout)
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = scalar(v)
		}
		return out
	case map[any]any:
		m, _ := asMap(typed)
		return scalar(m)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = scalar(v)
		}
		return out
	default:
		return value
	}
}
