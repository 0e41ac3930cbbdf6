// Package registry maps field_type tags to the field shapes that share them.
// Decoders consult it to rebuild the right kind from a tag and the keys
// present in the payload; the compiler consults it for custom contributions.
// A registry only grows: there is no removal.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
)

var (
	// ErrUnknownFieldType matches every *UnknownFieldTypeError via errors.Is.
	ErrUnknownFieldType = errors.New("registry: unknown field type")
	// ErrNoMatchingShape is returned when a tag is known but none of its shapes
	// has all of its required keys present.
	ErrNoMatchingShape = errors.New("registry: no matching shape")
)

// UnknownFieldTypeError reports a tag nobody registered.
type UnknownFieldTypeError struct {
	Type string
}

func (e *UnknownFieldTypeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("registry: unknown field type %q", e.Type)
}

// Is lets errors.Is(err, ErrUnknownFieldType) succeed.
func (e *UnknownFieldTypeError) Is(target error) bool {
	return target == ErrUnknownFieldType
}

// Shape is one way of reading a field_type tag.
type Shape struct {
	// Type is the field_type tag.
	Type string
	// Kind is the built-in kind the shape decodes to, or model.KindCustom.
	Kind model.Kind
	// Required lists payload keys that must be present for this shape to
	// match. Shapes with more required keys win over looser ones.
	Required []string
	// Params lists the extra payload keys a custom shape keeps as field
	// parameters. Unlisted keys of custom fields are kept as well.
	Params []string
	// Contributor supplies the compiler rules of a custom shape.
	Contributor compiler.Contributor
}

func (s Shape) matches(keys map[string]struct{}) bool {
	for _, key := range s.Required {
		if _, ok := keys[key]; !ok {
			return false
		}
	}
	return true
}

type entry struct {
	shape Shape
	order int
}

// Registry is safe for concurrent use. Registration takes the write lock so
// readers resolving tags during decoding never observe a partial update.
type Registry struct {
	mu     sync.RWMutex
	shapes map[string][]entry
	count  int
}

// New constructs a registry with every built-in kind registered.
func New() *Registry {
	r := &Registry{shapes: make(map[string][]entry)}
	r.registerBuiltins()
	return r
}

// Empty constructs a registry without the built-in kinds.
func Empty() *Registry {
	return &Registry{shapes: make(map[string][]entry)}
}

// Register appends a shape. Registering a tag again adds another shape for it
// rather than replacing the existing ones.
func (r *Registry) Register(shape Shape) error {
	if r == nil {
		return errors.New("registry: nil registry")
	}
	shape.Type = strings.TrimSpace(shape.Type)
	if shape.Type == "" {
		return errors.New("registry: shape type is required")
	}
	if shape.Kind == "" {
		shape.Kind = model.KindCustom
	}
	if shape.Kind != model.KindCustom && !shape.Kind.Builtin() {
		return fmt.Errorf("registry: shape %q: unknown kind %q", shape.Type, shape.Kind)
	}
	shape.Required = append([]string(nil), shape.Required...)
	shape.Params = append([]string(nil), shape.Params...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes[shape.Type] = append(r.shapes[shape.Type], entry{shape: shape, order: r.count})
	r.count++
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(shape Shape) {
	if err := r.Register(shape); err != nil {
		panic(err)
	}
}

// Has reports whether any shape is registered for tag.
func (r *Registry) Has(tag string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shapes[tag]) > 0
}

// Shapes returns the shapes registered for tag in registration order.
func (r *Registry) Shapes(tag string) []Shape {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.shapes[tag]
	out := make([]Shape, len(entries))
	for i, e := range entries {
		out[i] = e.shape
	}
	return out
}

// Types lists every registered tag, sorted.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.shapes))
	for tag := range r.shapes {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Resolve picks the shape for tag given the keys present in a payload. Among
// the shapes whose required keys are all present, the most specific wins;
// ties go to the earliest registration.
func (r *Registry) Resolve(tag string, keys []string) (Shape, error) {
	if r == nil {
		return Shape{}, &UnknownFieldTypeError{Type: tag}
	}
	present := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		present[key] = struct{}{}
	}

	r.mu.RLock()
	entries := append([]entry(nil), r.shapes[tag]...)
	r.mu.RUnlock()
	if len(entries) == 0 {
		return Shape{}, &UnknownFieldTypeError{Type: tag}
	}
	shape, ok := pick(entries, present)
	if !ok {
		return Shape{}, fmt.Errorf("%w for %q", ErrNoMatchingShape, tag)
	}
	return shape, nil
}

func pick(entries []entry, present map[string]struct{}) (Shape, bool) {
	best := -1
	for i, e := range entries {
		if !e.shape.matches(present) {
			continue
		}
		if best < 0 || len(e.shape.Required) > len(entries[best].shape.Required) {
			best = i
		}
	}
	if best < 0 {
		return Shape{}, false
	}
	return entries[best].shape, true
}

// Contributor implements compiler.Lookup. When several shapes share the tag,
// the shape is chosen per field from the parameter keys it carries.
func (r *Registry) Contributor(fieldType string) (compiler.Contributor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	entries := append([]entry(nil), r.shapes[fieldType]...)
	r.mu.RUnlock()

	var withContributor []entry
	for _, e := range entries {
		if e.shape.Contributor != nil {
			withContributor = append(withContributor, e)
		}
	}
	switch len(withContributor) {
	case 0:
		return nil, false
	case 1:
		return withContributor[0].shape.Contributor, true
	}
	return compiler.ContributorFunc(func(field model.Field) (compiler.Contribution, error) {
		keys := make(map[string]struct{})
		for key := range field.Constraints().Params {
			keys[key] = struct{}{}
		}
		shape, ok := pick(withContributor, keys)
		if !ok {
			return compiler.Contribution{}, fmt.Errorf("%w for %q", ErrNoMatchingShape, fieldType)
		}
		return shape.Contributor.Contribute(field)
	}), true
}

// Compiler returns a compiler that resolves custom kinds through r.
func (r *Registry) Compiler() *compiler.Compiler {
	return compiler.New(compiler.WithLookup(r))
}

func (r *Registry) registerBuiltins() {
	for _, kind := range model.BuiltinKinds() {
		shape := Shape{Type: kind.Tag(), Kind: kind}
		if kind == model.KindCheckboxGroup {
			shape.Required = []string{"options"}
		}
		r.MustRegister(shape)
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = New() })
	return defaultRegistry
}

// Register adds a shape to the process-wide registry.
func Register(shape Shape) error {
	return Default().Register(shape)
}

// Resolve looks tag up in the process-wide registry.
func Resolve(tag string, keys []string) (Shape, error) {
	return Default().Resolve(tag, keys)
}
