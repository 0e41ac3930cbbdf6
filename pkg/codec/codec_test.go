package codec

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/registry"
)

func fieldNames(form *model.Form) []string {
	fields := form.Fields()
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = field.Name()
	}
	return out
}

func TestDecodeLegacyLayout(t *testing.T) {
	t.Parallel()

	form, err := LoadFile("testdata/legacy_signup.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{"username", "email", "age", "newsletter", "topics", "frequency"}
	if diff := cmp.Diff(want, fieldNames(form)); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if version, ok := form.SchemaVersion(); !ok || version != 2 {
		t.Fatalf("expected schema_version 2, got %d (%v)", version, ok)
	}
	if form.Action() != "/signup" {
		t.Fatalf("expected action to survive, got %q", form.Action())
	}

	content := form.Content()
	group, ok := content[0].(model.Group)
	if !ok {
		t.Fatalf("expected a group first, got %T", content[0])
	}
	if group.Title != "Account" || group.Description != "Login details" {
		t.Fatalf("unexpected group %+v", group)
	}

	kinds := map[string]model.Kind{}
	for _, field := range form.Fields() {
		kinds[field.Name()] = field.Kind()
	}
	if kinds["newsletter"] != model.KindCheckbox {
		t.Fatalf("newsletter decoded as %s", kinds["newsletter"])
	}
	if kinds["topics"] != model.KindCheckboxGroup {
		t.Fatalf("topics decoded as %s", kinds["topics"])
	}

	topics, _ := form.Field("topics")
	wantOpts := []model.SelectOption{{Value: "go", Label: "Go"}, {Value: "rust", Label: "rust"}}
	if diff := cmp.Diff(wantOpts, topics.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	frequency, _ := form.Field("frequency")
	if diff := cmp.Diff(map[string]string{"data-columns": "2"}, frequency.Attributes()); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
	if rules := frequency.VisibleWhen(); len(rules) != 1 || rules[0].Value != true {
		t.Fatalf("unexpected rules %+v", rules)
	}

	age, _ := form.Field("age")
	cons := age.Constraints()
	if cons.Minimum == nil || *cons.Minimum != 18 || cons.Step == nil || *cons.Step != 1 {
		t.Fatalf("unexpected number constraints %+v", cons)
	}
}

func TestDecodeYAMLWizard(t *testing.T) {
	t.Parallel()

	form, err := LoadFile("testdata/wizard.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !form.IsWizard() || len(form.Steps()) != 2 {
		t.Fatalf("expected two steps, got %d", len(form.Steps()))
	}
	if form.Version() != 3 {
		t.Fatalf("expected version 3, got %d", form.Version())
	}
	steps := form.Steps()
	if steps[0].ValidationMode != model.ValidationModeOnNext || !steps[1].Skippable {
		t.Fatalf("step attributes lost: %+v / %+v", steps[0], steps[1])
	}

	second, err := form.StepFields(1)
	if err != nil {
		t.Fatalf("step fields: %v", err)
	}
	if len(second) != 3 {
		t.Fatalf("expected 3 fields in the second step, got %d", len(second))
	}
	start := second[0].Constraints()
	if start.MinDate == nil || !start.MinDate.Equal(model.Date(2024, 1, 1)) {
		t.Fatalf("min_date not decoded: %+v", start.MinDate)
	}
	if start.MaxDate == nil || !start.MaxDate.Equal(model.Date(2030, 12, 31)) {
		t.Fatalf("max_date not decoded: %+v", start.MaxDate)
	}

	region, _ := form.Field("region")
	dep := region.Dependent()
	if dep == nil || dep.DependsOn != "country" || len(dep.OptionsMap) != 2 {
		t.Fatalf("dependent options not decoded: %+v", dep)
	}
}

func TestRoundTripIsStable(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"testdata/legacy_signup.json", "testdata/wizard.yaml"} {
		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			form, err := LoadFile(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			for _, format := range []Format{FormatJSON, FormatYAML} {
				first, err := Encode(form, format)
				if err != nil {
					t.Fatalf("encode %s: %v", format, err)
				}
				decoded, err := Decode(first, format)
				if err != nil {
					t.Fatalf("decode %s: %v\n%s", format, err, first)
				}
				second, err := Encode(decoded, format)
				if err != nil {
					t.Fatalf("re-encode %s: %v", format, err)
				}
				if !bytes.Equal(first, second) {
					t.Fatalf("%s round trip changed output:\n%s\n---\n%s", format, first, second)
				}
				if decoded.ID() != form.ID() {
					t.Fatalf("form id changed: %s != %s", decoded.ID(), form.ID())
				}
				if diff := cmp.Diff(fieldNames(form), fieldNames(decoded)); diff != "" {
					t.Fatalf("fields changed (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestRoundTripPreservesFields(t *testing.T) {
	t.Parallel()

	form := model.MustForm("profile", []model.Item{
		model.MustField(model.KindText, "nickname", model.Label("Nickname"), model.Pattern(`^[a-z]+$`), model.Placeholder("lowercase")),
		model.MustField(model.KindHidden, "source", model.Value("web")),
		model.MustField(model.KindURL, "site", model.Default("https://example.com"), model.MaxLength(200)),
		model.MustField(model.KindSelect, "langs", model.Multiple(), model.MinSelected(1), model.MaxSelected(2),
			model.Options(model.Choice("go", "Go"), model.Choice("zig", "Zig"))),
		model.MustField(model.KindFile, "avatar", model.Accept("image/*")),
	})

	data, err := Encode(form, FormatJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data, FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, data)
	}
	if diff := cmp.Diff(form.Fields(), decoded.Fields()); diff != "" {
		t.Fatalf("fields changed (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownFieldType(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"name": "f", "content": [{"name": "sig", "field_type": "signature"}]}`)
	_, err := Decode(payload, FormatJSON)
	if !errors.Is(err, registry.ErrUnknownFieldType) {
		t.Fatalf("expected unknown field type, got %v", err)
	}
	var typed *registry.UnknownFieldTypeError
	if !errors.As(err, &typed) || typed.Type != "signature" {
		t.Fatalf("expected UnknownFieldTypeError for signature, got %v", err)
	}
}

func TestDecodeCustomShape(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	if err := reg.Register(registry.Shape{
		Type:   "rating",
		Params: []string{"stars"},
		Contributor: compiler.ContributorFunc(func(field model.Field) (compiler.Contribution, error) {
			stars, _ := field.Param("stars")
			max, _ := model.ToFloat(stars)
			return compiler.Contribution{
				Type: compiler.TypeNumber,
				Constraints: []compiler.Constraint{
					compiler.Check("maximum", max, compiler.CodeAboveMaximum, func(v any) bool {
						n, ok := model.ToFloat(v)
						return !ok || n <= max
					}),
				},
			}, nil
		}),
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	c := New(WithRegistry(reg))

	payload := []byte("name: review\ncontent:\n  - name: score\n    field_type: rating\n    stars: 5\n")
	form, err := c.Decode(payload, FormatYAML)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	score, _ := form.Field("score")
	if score.Kind() != model.KindCustom || score.Type() != "rating" {
		t.Fatalf("unexpected field %s/%s", score.Kind(), score.Type())
	}
	if stars, ok := score.Param("stars"); !ok || stars != 5 {
		t.Fatalf("expected stars param 5, got %v", stars)
	}

	plan, err := reg.Compiler().Compile(score)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, violations := plan.Check(7); len(violations) != 1 {
		t.Fatalf("expected one violation, got %+v", violations)
	}

	if _, err := Decode(payload, FormatYAML); !errors.Is(err, registry.ErrUnknownFieldType) {
		t.Fatalf("default registry should not know rating, got %v", err)
	}
}

func TestMarkupStripping(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"name": "f", "content": [
		{"title": "<b>Terms</b> & Conditions", "fields": [
			{"name": "agree", "field_type": "checkbox", "label": "I <script>alert(1)</script>agree", "help_text": "<i>Required</i>"}
		]}
	]}`)

	stripped, err := New(WithMarkupStripping(true)).Decode(payload, FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	group := stripped.Content()[0].(model.Group)
	if group.Title != "Terms & Conditions" {
		t.Fatalf("unexpected title %q", group.Title)
	}
	agree, _ := stripped.Field("agree")
	if agree.Label() != "I agree" || agree.HelpText() != "Required" {
		t.Fatalf("markup survived: %q / %q", agree.Label(), agree.HelpText())
	}

	raw, err := New().Decode(payload, FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if label := raw.Content()[0].(model.Group).Title; label != "<b>Terms</b> & Conditions" {
		t.Fatalf("markup should be kept by default, got %q", label)
	}
}

func TestDecodeReportsTypeErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
	}{
		{"non integer length", `{"name":"f","content":[{"name":"a","field_type":"text","minlength":1.5}]}`},
		{"string bound", `{"name":"f","content":[{"name":"a","field_type":"number","min_value":"x"}]}`},
		{"bad date", `{"name":"f","content":[{"name":"a","field_type":"date","min_date":"01/02/2024"}]}`},
		{"missing tag", `{"name":"f","content":[{"name":"a"}]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tc.payload), FormatJSON)
			if !errors.Is(err, model.ErrConstruction) {
				t.Fatalf("expected a construction error, got %v", err)
			}
		})
	}
}

func TestLoadFromFS(t *testing.T) {
	t.Parallel()

	form, err := New().Load(SourceFromFS(os.DirFS("testdata"), "wizard.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if form.Name() != "onboarding" {
		t.Fatalf("unexpected form %q", form.Name())
	}

	if _, err := New().Load(SourceFromBytes("form.txt", []byte("{}"))); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{"a.json": FormatJSON, "b.YAML": FormatYAML, "c.yml": FormatYAML}
	for name, want := range cases {
		got, err := FormatFor(name)
		if err != nil || got != want {
			t.Fatalf("FormatFor(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := FormatFor("d.toml"); err == nil {
		t.Fatalf("expected error for toml")
	}
}
