// Package codec reads and writes form definitions as JSON or YAML. Decoding
// goes through a field registry so every field_type tag is rebuilt as the
// right kind; unregistered tags fail with *registry.UnknownFieldTypeError.
//
// The decoder also accepts older payload layouts: "fields" in place of
// "content", steps marked with type "step" and groups marked either with
// container_type "group" or by carrying a title and no field_type.
package codec

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/registry"
)

// Format names a wire encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the format from a file extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("codec: unsupported form file %q (want .json, .yaml or .yml)", name)
	}
}

// Option configures a Codec.
type Option func(*Codec)

// WithRegistry sets the registry used to resolve field_type tags.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Codec) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithMarkupStripping removes HTML from labels, help texts, placeholders,
// option labels and container titles while decoding.
func WithMarkupStripping(enabled bool) Option {
	return func(c *Codec) { c.stripMarkup = enabled }
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Codec converts between forms and their wire representation.
type Codec struct {
	registry    *registry.Registry
	stripMarkup bool
	logger      *slog.Logger
}

// New constructs a Codec backed by the process-wide registry unless
// WithRegistry says otherwise.
func New(opts ...Option) *Codec {
	c := &Codec{
		registry: registry.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Registry returns the registry the codec resolves tags with.
func (c *Codec) Registry() *registry.Registry {
	return c.registry
}

// Decode parses a form definition.
func (c *Codec) Decode(data []byte, format Format) (*model.Form, error) {
	raw := map[string]any{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("codec: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("codec: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("codec: unsupported format %q", format)
	}
	return c.FromMap(raw)
}

// Encode serialises form. The output is deterministic: encoding the same
// form twice yields identical bytes.
func (c *Codec) Encode(form *model.Form, format Format) ([]byte, error) {
	if form == nil {
		return nil, fmt.Errorf("codec: form is required")
	}
	wire := encodeForm(form)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(wire, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("codec: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(wire)
		if err != nil {
			return nil, fmt.Errorf("codec: encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("codec: unsupported format %q", format)
	}
}

// Load reads and decodes a form from src, choosing the format from its
// location's extension.
func (c *Codec) Load(src Source) (*model.Form, error) {
	if src == nil {
		return nil, fmt.Errorf("codec: source is required")
	}
	format, err := FormatFor(src.Location())
	if err != nil {
		return nil, err
	}
	data, err := src.read()
	if err != nil {
		return nil, err
	}
	form, err := c.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Location(), err)
	}
	c.logger.Debug("loaded form",
		slog.String("source", string(src.Kind())),
		slog.String("location", src.Location()),
		slog.String("form", form.Name()),
		slog.Int("fields", len(form.Fields())),
	)
	return form, nil
}

// LoadFile is Load for a path on disk.
func (c *Codec) LoadFile(path string) (*model.Form, error) {
	return c.Load(SourceFromFile(path))
}

var defaultCodec = New()

// Decode parses data with the default codec.
func Decode(data []byte, format Format) (*model.Form, error) {
	return defaultCodec.Decode(data, format)
}

// Encode serialises form with the default codec.
func Encode(form *model.Form, format Format) ([]byte, error) {
	return defaultCodec.Encode(form, format)
}

// LoadFile reads a form file with the default codec.
func LoadFile(path string) (*model.Form, error) {
	return defaultCodec.LoadFile(path)
}
