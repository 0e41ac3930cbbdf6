package codec

import (
	"github.com/goliatone/go-formdef/pkg/model"
)

type wireForm struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Version       int               `json:"version" yaml:"version"`
	SchemaVersion *int              `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	Action        string            `json:"action,omitempty" yaml:"action,omitempty"`
	CSSClasses    string            `json:"css_classes,omitempty" yaml:"css_classes,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Content       []any             `json:"content" yaml:"content"`
}

type wireGroup struct {
	ContainerType  string            `json:"container_type" yaml:"container_type"`
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	CSSClasses     string            `json:"css_classes,omitempty" yaml:"css_classes,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Collapsible    bool              `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
	Collapsed      bool              `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	ValidationMode string            `json:"validation_mode,omitempty" yaml:"validation_mode,omitempty"`
	Fields         []any             `json:"fields" yaml:"fields"`
}

type wireStep struct {
	Type           string            `json:"type" yaml:"type"`
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	CSSClasses     string            `json:"css_classes,omitempty" yaml:"css_classes,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ValidationMode string            `json:"validation_mode,omitempty" yaml:"validation_mode,omitempty"`
	Skippable      bool              `json:"skippable,omitempty" yaml:"skippable,omitempty"`
	Content        []any             `json:"content" yaml:"content"`
}

func encodeForm(form *model.Form) wireForm {
	wire := wireForm{
		ID:         form.ID().String(),
		Name:       form.Name(),
		Version:    form.Version(),
		Action:     form.Action(),
		CSSClasses: form.CSSClasses(),
		Attributes: form.Attributes(),
		Content:    encodeItems(form.Content()),
	}
	if version, ok := form.SchemaVersion(); ok {
		wire.SchemaVersion = &version
	}
	return wire
}

func encodeItems(items []model.Item) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case model.Field:
			out = append(out, encodeField(typed))
		case model.Group:
			out = append(out, wireGroup{
				ContainerType:  "group",
				ID:             typed.ID.String(),
				Title:          typed.Title,
				Description:    typed.Description,
				CSSClasses:     typed.CSSClasses,
				Attributes:     typed.Attributes,
				Collapsible:    typed.Collapsible,
				Collapsed:      typed.Collapsed,
				ValidationMode: string(typed.ValidationMode),
				Fields:         encodeItems(typed.Items),
			})
		case model.Step:
			out = append(out, wireStep{
				Type:           "step",
				ID:             typed.ID.String(),
				Title:          typed.Title,
				Description:    typed.Description,
				CSSClasses:     typed.CSSClasses,
				Attributes:     typed.Attributes,
				ValidationMode: string(typed.ValidationMode),
				Skippable:      typed.Skippable,
				Content:        encodeItems(typed.Items),
			})
		}
	}
	return out
}

// encodeField emits only the keys that carry information, so a decoded and
// re-encoded field produces the same object.
func encodeField(field model.Field) map[string]any {
	out := map[string]any{
		"name":       field.Name(),
		"field_type": field.Type(),
	}
	putString(out, "label", field.Label())
	putString(out, "placeholder", field.Placeholder())
	putString(out, "help_text", field.HelpText())
	putString(out, "css_classes", field.CSSClasses())
	putBool(out, "required", field.Required())
	putBool(out, "readonly", field.ReadOnly())
	if value, ok := field.Default(); ok && value != nil {
		out["default_value"] = value
	}
	if attrs := field.Attributes(); len(attrs) > 0 {
		out["attributes"] = attrs
	}
	if rules := field.VisibleWhen(); len(rules) > 0 {
		encoded := make([]map[string]any, len(rules))
		for i, rule := range rules {
			entry := map[string]any{"field": rule.Field, "operator": string(rule.Operator)}
			if rule.Value != nil {
				entry["value"] = rule.Value
			}
			encoded[i] = entry
		}
		out["visible_when"] = encoded
	}

	cons := field.Constraints()
	putInt(out, "minlength", cons.MinLength)
	putInt(out, "maxlength", cons.MaxLength)
	putString(out, "pattern", cons.Pattern)
	putFloat(out, "min_value", cons.Minimum)
	putFloat(out, "max_value", cons.Maximum)
	putFloat(out, "step", cons.Step)
	if cons.MinDate != nil {
		out["min_date"] = cons.MinDate.Format(model.DateLayout)
	}
	if cons.MaxDate != nil {
		out["max_date"] = cons.MaxDate.Format(model.DateLayout)
	}
	if len(cons.Options) > 0 {
		out["options"] = encodeOptions(cons.Options)
	}
	putBool(out, "multiple", cons.Multiple)
	putInt(out, "min_selected", cons.MinSelected)
	putInt(out, "max_selected", cons.MaxSelected)
	if dep := cons.Dependent; dep != nil {
		mapping := make(map[string]any, len(dep.OptionsMap))
		for key, opts := range dep.OptionsMap {
			mapping[key] = encodeOptions(opts)
		}
		out["dependent_options"] = map[string]any{"depends_on": dep.DependsOn, "options_map": mapping}
	}
	putInt(out, "min_items", cons.MinItems)
	putInt(out, "max_items", cons.MaxItems)
	if field.Kind() == model.KindList {
		putString(out, "item_type", cons.ItemType)
	}
	putString(out, "accept", cons.Accept)
	if cons.Value != nil {
		out["value"] = cons.Value
	}
	putBool(out, "checked", cons.Checked)
	putBool(out, "inline", cons.Inline)
	putInt(out, "rows", cons.Rows)
	putInt(out, "cols", cons.Cols)
	for key, value := range cons.Params {
		if _, taken := out[key]; !taken {
			out[key] = value
		}
	}
	return out
}

func encodeOptions(opts []model.SelectOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, opt := range opts {
		entry := map[string]any{"value": opt.Value, "label": opt.Label}
		if opt.Selected {
			entry["selected"] = true
		}
		out[i] = entry
	}
	return out
}

func putString(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func putBool(out map[string]any, key string, value bool) {
	if value {
		out[key] = true
	}
}

func putInt(out map[string]any, key string, value *int) {
	if value != nil {
		out[key] = *value
	}
}

func putFloat(out map[string]any, key string, value *float64) {
	if value != nil {
		out[key] = *value
	}
}
