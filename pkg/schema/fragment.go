// Package schema holds the value types of an exported JSON Schema document.
// Keyword order is part of the contract: fragments and documents encode their
// keys in insertion order so the same form always yields identical bytes.
package schema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Keyword is one JSON Schema keyword and its value.
type Keyword struct {
	Name  string
	Value any
}

// Fragment is an ordered set of keywords describing one property.
type Fragment struct {
	keywords []Keyword
}

// NewFragment builds a fragment from keywords, later duplicates replacing
// earlier ones in place.
func NewFragment(keywords ...Keyword) Fragment {
	var f Fragment
	for _, kw := range keywords {
		f.Set(kw.Name, kw.Value)
	}
	return f
}

// Set assigns a keyword, keeping its original position when it already exists.
func (f *Fragment) Set(name string, value any) {
	for i := range f.keywords {
		if f.keywords[i].Name == name {
			f.keywords[i].Value = value
			return
		}
	}
	f.keywords = append(f.keywords, Keyword{Name: name, Value: value})
}

// Get returns a keyword value.
func (f Fragment) Get(name string) (any, bool) {
	for _, kw := range f.keywords {
		if kw.Name == name {
			return kw.Value, true
		}
	}
	return nil, false
}

// Keywords returns the keywords in encoding order.
func (f Fragment) Keywords() []Keyword {
	return append([]Keyword(nil), f.keywords...)
}

// Names returns the keyword names in encoding order.
func (f Fragment) Names() []string {
	out := make([]string, len(f.keywords))
	for i, kw := range f.keywords {
		out[i] = kw.Name
	}
	return out
}

func (f Fragment) Len() int { return len(f.keywords) }

// Map returns the fragment as plain maps, recursing into nested fragments.
// Useful for comparisons and for feeding libraries that expect map input.
func (f Fragment) Map() map[string]any {
	out := make(map[string]any, len(f.keywords))
	for _, kw := range f.keywords {
		out[kw.Name] = plain(kw.Value)
	}
	return out
}

// MarshalJSON encodes the keywords in order.
func (f Fragment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kw := range f.keywords {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, kw.Name, kw.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, value any) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(encoded)
	return nil
}

func plain(value any) any {
	switch typed := value.(type) {
	case Fragment:
		return typed.Map()
	case *Fragment:
		if typed == nil {
			return nil
		}
		return typed.Map()
	default:
		return value
	}
}
