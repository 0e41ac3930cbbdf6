package model

import (
	"strings"

	"github.com/google/uuid"
)

// Item is one entry of a form's content tree: a Field, a Group or a Step.
type Item interface {
	isItem()
}

// Group is a titled section of fields and nested groups.
type Group struct {
	ID             uuid.UUID
	Title          string
	Description    string
	CSSClasses     string
	Attributes     map[string]string
	Collapsible    bool
	Collapsed      bool
	ValidationMode ValidationMode
	Items          []Item
}

func (Group) isItem() {}

// Step is one page of a multi-step (wizard) form. Steps only appear at the
// top level of a form's content.
type Step struct {
	ID             uuid.UUID
	Title          string
	Description    string
	CSSClasses     string
	Attributes     map[string]string
	ValidationMode ValidationMode
	Skippable      bool
	Items          []Item
}

func (Step) isItem() {}

// Fields returns the step's flattened field sequence.
func (s Step) Fields() []Field {
	return Flatten(s.Items)
}

// Flatten collapses a content tree into its depth-first, left-to-right field
// sequence.
func Flatten(items []Item) []Field {
	var out []Field
	flattenInto(items, &out)
	return out
}

func flattenInto(items []Item, out *[]Field) {
	for _, item := range items {
		switch typed := item.(type) {
		case Field:
			*out = append(*out, typed)
		case Group:
			flattenInto(typed.Items, out)
		case Step:
			flattenInto(typed.Items, out)
		case *Group:
			if typed != nil {
				flattenInto(typed.Items, out)
			}
		case *Step:
			if typed != nil {
				flattenInto(typed.Items, out)
			}
		}
	}
}

// Form is the root of a declarative form description.
type Form struct {
	id            uuid.UUID
	name          string
	content       []Item
	version       int
	schemaVersion *int
	attributes    map[string]string
	action        string
	cssClasses    string

	fields []Field
	index  map[string]int
	steps  []Step
}

// FormOption configures a form under construction.
type FormOption func(*Form)

// WithID keeps an existing identity, typically when decoding.
func WithID(id uuid.UUID) FormOption {
	return func(f *Form) { f.id = id }
}

func WithVersion(version int) FormOption {
	return func(f *Form) { f.version = version }
}

func WithSchemaVersion(version int) FormOption {
	return func(f *Form) { f.schemaVersion = &version }
}

func WithFormAttributes(attrs map[string]string) FormOption {
	return func(f *Form) {
		if len(attrs) == 0 {
			return
		}
		if f.attributes == nil {
			f.attributes = make(map[string]string, len(attrs))
		}
		for key, value := range attrs {
			f.attributes[key] = value
		}
	}
}

func WithAction(action string) FormOption {
	return func(f *Form) { f.action = action }
}

func WithFormCSSClasses(classes string) FormOption {
	return func(f *Form) { f.cssClasses = classes }
}

// NewForm validates and freezes a content tree. Field names must be unique
// across every nesting level; visibility rules and dependent options must
// reference fields of the same form.
func NewForm(name string, content []Item, opts ...FormOption) (*Form, error) {
	form := &Form{
		name:    strings.TrimSpace(name),
		version: 1,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(form)
	}
	if form.name == "" {
		return nil, constructionErr("", "name", "form name is required")
	}
	if form.id == uuid.Nil {
		form.id = uuid.New()
	}

	items, err := freezeItems(content, true)
	if err != nil {
		return nil, err
	}
	form.content = items
	form.fields = Flatten(items)
	form.index = make(map[string]int, len(form.fields))
	for idx, field := range form.fields {
		if _, dup := form.index[field.Name()]; dup {
			return nil, constructionErr(field.Name(), "name", "duplicate field name in form %q", form.name)
		}
		form.index[field.Name()] = idx
	}
	for _, item := range items {
		if step, ok := item.(Step); ok {
			form.steps = append(form.steps, step)
		}
	}
	if err := form.checkReferences(); err != nil {
		return nil, err
	}
	return form, nil
}

// MustForm is NewForm that panics on error.
func MustForm(name string, content []Item, opts ...FormOption) *Form {
	form, err := NewForm(name, content, opts...)
	if err != nil {
		panic(err)
	}
	return form
}

func freezeItems(items []Item, topLevel bool) ([]Item, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case Field:
			out = append(out, typed)
		case *Group:
			if typed == nil {
				continue
			}
			frozen, err := freezeGroup(*typed)
			if err != nil {
				return nil, err
			}
			out = append(out, frozen)
		case Group:
			frozen, err := freezeGroup(typed)
			if err != nil {
				return nil, err
			}
			out = append(out, frozen)
		case *Step:
			if typed == nil {
				continue
			}
			frozen, err := freezeStep(*typed, topLevel)
			if err != nil {
				return nil, err
			}
			out = append(out, frozen)
		case Step:
			frozen, err := freezeStep(typed, topLevel)
			if err != nil {
				return nil, err
			}
			out = append(out, frozen)
		case nil:
			continue
		default:
			return nil, constructionErr("", "content", "unsupported content item %T", item)
		}
	}
	return out, nil
}

func freezeGroup(group Group) (Group, error) {
	if strings.TrimSpace(group.Title) == "" {
		return Group{}, constructionErr("", "title", "group title is required")
	}
	if !group.ValidationMode.valid() {
		return Group{}, constructionErr("", "validation_mode", "unknown mode %q in group %q", group.ValidationMode, group.Title)
	}
	items, err := freezeItems(group.Items, false)
	if err != nil {
		return Group{}, err
	}
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	group.Items = items
	group.Attributes = copyStrings(group.Attributes)
	return group, nil
}

func freezeStep(step Step, topLevel bool) (Step, error) {
	if !topLevel {
		return Step{}, constructionErr("", "content", "step %q must be a top-level item", step.Title)
	}
	if strings.TrimSpace(step.Title) == "" {
		return Step{}, constructionErr("", "title", "step title is required")
	}
	if !step.ValidationMode.valid() {
		return Step{}, constructionErr("", "validation_mode", "unknown mode %q in step %q", step.ValidationMode, step.Title)
	}
	items, err := freezeItems(step.Items, false)
	if err != nil {
		return Step{}, err
	}
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	step.Items = items
	step.Attributes = copyStrings(step.Attributes)
	return step, nil
}

func (f *Form) checkReferences() error {
	for _, field := range f.fields {
		for _, rule := range field.visibleWhen {
			if rule.Field == field.Name() {
				return Configurationf(field.Name(), "visibility rule references the field itself")
			}
			if _, ok := f.index[rule.Field]; !ok {
				return Configurationf(field.Name(), "visibility rule references unknown field %q", rule.Field)
			}
		}
		if dep := field.constraints.Dependent; dep != nil {
			if _, ok := f.index[dep.DependsOn]; !ok {
				return Configurationf(field.Name(), "dependent options reference unknown field %q", dep.DependsOn)
			}
		}
	}
	return nil
}

func (f *Form) ID() uuid.UUID      { return f.id }
func (f *Form) Name() string       { return f.name }
func (f *Form) Version() int       { return f.version }
func (f *Form) Action() string     { return f.action }
func (f *Form) CSSClasses() string { return f.cssClasses }

// SchemaVersion returns the compatibility marker when one was declared.
func (f *Form) SchemaVersion() (int, bool) {
	if f.schemaVersion == nil {
		return 0, false
	}
	return *f.schemaVersion, true
}

func (f *Form) Attributes() map[string]string {
	return copyStrings(f.attributes)
}

// Content returns the top-level content items in declaration order.
func (f *Form) Content() []Item {
	return append([]Item(nil), f.content...)
}

// Fields returns the flattened field sequence.
func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// Field looks up a field by name anywhere in the tree.
func (f *Form) Field(name string) (Field, bool) {
	idx, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.fields[idx], true
}

// Has reports whether the form declares a field with that name.
func (f *Form) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Steps returns the top-level steps. It is empty for non-wizard forms.
func (f *Form) Steps() []Step {
	return append([]Step(nil), f.steps...)
}

// IsWizard reports whether the form is organised into steps.
func (f *Form) IsWizard() bool {
	return len(f.steps) > 0
}

// StepFields returns the flattened fields of one step.
func (f *Form) StepFields(index int) ([]Field, error) {
	if len(f.steps) == 0 {
		return nil, Configurationf("", "form %q has no steps", f.name)
	}
	if index < 0 || index >= len(f.steps) {
		return nil, Configurationf("", "invalid step index %d, must be between 0 and %d", index, len(f.steps)-1)
	}
	return f.steps[index].Fields(), nil
}

// RequiredNames lists the names of required fields in flattened order.
func (f *Form) RequiredNames() []string {
	var out []string
	for _, field := range f.fields {
		if field.required {
			out = append(out, field.name)
		}
	}
	return out
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
