package schema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Draft07 is the $schema URI emitted on exported documents.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Property is one named entry of a document's properties.
type Property struct {
	Name     string
	Fragment Fragment
}

// Document is the object schema describing a whole form submission.
type Document struct {
	Schema               string
	Type                 string
	Title                string
	Properties           []Property
	Required             []string
	AdditionalProperties bool
}

// Property returns the fragment registered under name.
func (d Document) Property(name string) (Fragment, bool) {
	for _, prop := range d.Properties {
		if prop.Name == name {
			return prop.Fragment, true
		}
	}
	return Fragment{}, false
}

// PropertyNames returns property names in document order.
func (d Document) PropertyNames() []string {
	out := make([]string, len(d.Properties))
	for i, prop := range d.Properties {
		out[i] = prop.Name
	}
	return out
}

// Map converts the document into plain maps.
func (d Document) Map() map[string]any {
	props := make(map[string]any, len(d.Properties))
	for _, prop := range d.Properties {
		props[prop.Name] = prop.Fragment.Map()
	}
	out := map[string]any{
		"$schema":              d.Schema,
		"type":                 d.Type,
		"title":                d.Title,
		"properties":           props,
		"additionalProperties": d.AdditionalProperties,
	}
	if len(d.Required) > 0 {
		required := make([]any, len(d.Required))
		for i, name := range d.Required {
			required[i] = name
		}
		out["required"] = required
	}
	return out
}

// MarshalJSON writes $schema, type, title, properties, required and
// additionalProperties in that order. required is omitted when empty.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, "$schema", d.Schema); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, "type", d.Type); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, "title", d.Title); err != nil {
		return nil, err
	}
	buf.WriteString(`,"properties":{`)
	for i, prop := range d.Properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, prop.Name, prop.Fragment); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	if len(d.Required) > 0 {
		buf.WriteByte(',')
		if err := writeMember(&buf, "required", d.Required); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, "additionalProperties", d.AdditionalProperties); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indent marshals the document and indents it with two spaces.
func (d Document) Indent() ([]byte, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
