package jsonschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/testsupport"
)

func TestToSchemaFlattensInContainerOrder(t *testing.T) {
	t.Parallel()

	form := model.MustForm("wizard", []model.Item{
		model.Step{Title: "First", Items: []model.Item{
			model.MustField(model.KindText, "a", model.Required()),
			model.MustField(model.KindText, "b"),
		}},
		model.MustField(model.KindText, "c", model.Required()),
	})

	doc, err := ToSchema(form)
	if err != nil {
		t.Fatalf("to schema: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, doc.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, doc.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestRequiredMatchesFlattenedRequiredFields(t *testing.T) {
	t.Parallel()

	form := model.MustForm("nested", []model.Item{
		model.Group{Title: "Outer", Items: []model.Item{
			model.Group{Title: "Inner", Items: []model.Item{
				model.MustField(model.KindEmail, "deep", model.Required()),
			}},
			model.MustField(model.KindNumber, "mid"),
		}},
		model.MustField(model.KindCheckbox, "top", model.Required()),
	})

	doc, err := ToSchema(form)
	if err != nil {
		t.Fatalf("to schema: %v", err)
	}
	if diff := cmp.Diff(form.RequiredNames(), doc.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	t.Parallel()

	form := model.MustForm("signup", []model.Item{
		model.MustField(model.KindText, "username", model.Label("Username"), model.Required(), model.MinLength(3)),
		model.MustField(model.KindNumber, "age", model.HelpText("Years"), model.Min(18), model.Default(21)),
		model.MustField(model.KindSelect, "plan", model.ReadOnly(), model.Options(model.Choice("free", "Free"), model.Choice("pro", "Pro"))),
	})

	first, err := Marshal(form, false)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Marshal(form, false)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("output changed between runs:\n%s\n%s", first, again)
		}
	}

	want := `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object","title":"signup","properties":{` +
		`"username":{"type":"string","title":"Username","minLength":3},` +
		`"age":{"type":"number","description":"Years","default":21,"minimum":18},` +
		`"plan":{"type":"string","readOnly":true,"enum":["free","pro"]}},` +
		`"required":["username"],"additionalProperties":false}`
	if string(first) != want {
		t.Fatalf("unexpected schema:\nwant %s\ngot  %s", want, first)
	}
}

func TestToSchemaWithoutRequiredFields(t *testing.T) {
	t.Parallel()

	form := model.MustForm("optional", []model.Item{model.MustField(model.KindText, "note")})
	doc, err := ToSchema(form)
	if err != nil {
		t.Fatalf("to schema: %v", err)
	}
	if doc.Required != nil {
		t.Fatalf("expected no required names, got %v", doc.Required)
	}
	if _, ok := doc.Map()["required"]; ok {
		t.Fatalf("required should be omitted")
	}
}

func TestMarshalMatchesGolden(t *testing.T) {
	t.Parallel()

	form := testsupport.MustLoadForm(t, "testdata/contact.yaml")
	got, err := Marshal(form, true)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	testsupport.AssertGolden(t, "testdata/contact.schema.golden.json", got)
}
