package openapi

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/validation"
)

func parityForm() *model.Form {
	return model.MustForm("account", []model.Item{
		model.Group{Title: "Identity", Items: []model.Item{
			model.MustField(model.KindText, "username", model.Required(), model.MinLength(3), model.MaxLength(12)),
			model.MustField(model.KindNumber, "age", model.Min(18), model.Max(99)),
		}},
		model.MustField(model.KindRadio, "plan", model.Required(), model.Options(model.Choice("free", "Free"), model.Choice("pro", "Pro"))),
		model.MustField(model.KindSelect, "topics", model.Multiple(), model.MaxSelected(2),
			model.Options(model.Choice("a", "A"), model.Choice("b", "B"), model.Choice("c", "C"))),
		model.MustField(model.KindCheckbox, "terms"),
		model.MustField(model.KindText, "nickname", model.MinLength(3)),
		model.MustField(model.KindList, "labels", model.MinItems(2)),
		model.MustField(model.KindSelect, "color", model.Options(model.Choice("red", "Red"))),
	})
}

func TestSchemaForMatchesValidator(t *testing.T) {
	t.Parallel()

	form := parityForm()
	schema, err := SchemaFor(form)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	cases := []struct {
		name       string
		submission map[string]any
		valid      bool
	}{
		{"valid", map[string]any{"username": "alice", "age": 30.0, "plan": "pro", "topics": []any{"a", "b"}, "terms": true}, true},
		{"minimal", map[string]any{"username": "bob", "plan": "free"}, true},
		{"missing required", map[string]any{"plan": "free"}, false},
		{"too short", map[string]any{"username": "al", "plan": "free"}, false},
		{"below minimum", map[string]any{"username": "alice", "plan": "free", "age": 10.0}, false},
		{"bad option", map[string]any{"username": "alice", "plan": "gold"}, false},
		{"too many items", map[string]any{"username": "alice", "plan": "free", "topics": []any{"a", "b", "c"}}, false},
		{"duplicate items", map[string]any{"username": "alice", "plan": "free", "topics": []any{"a", "a"}}, false},
		{"bad item", map[string]any{"username": "alice", "plan": "free", "topics": []any{"z"}}, false},
		{"unknown key", map[string]any{"username": "alice", "plan": "free", "extra": "x"}, false},
		{"empty optional number", map[string]any{"username": "alice", "plan": "free", "age": ""}, false},
		{"empty optional text below minimum length", map[string]any{"username": "alice", "plan": "free", "nickname": ""}, false},
		{"empty optional list below minimum items", map[string]any{"username": "alice", "plan": "free", "labels": []any{}}, false},
		{"empty optional select", map[string]any{"username": "alice", "plan": "free", "color": ""}, false},
		{"empty optional multiple select", map[string]any{"username": "alice", "plan": "free", "topics": []any{}}, true},
		{"filled optional fields", map[string]any{"username": "alice", "plan": "free", "nickname": "ali", "labels": []any{"x", "y"}, "color": "red"}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := validation.Validate(form, tc.submission, validation.Options{})
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			visitErr := schema.VisitJSON(tc.submission)
			if result.Success != tc.valid {
				t.Fatalf("validator success=%v, want %v: %+v", result.Success, tc.valid, result.Errors)
			}
			if (visitErr == nil) != tc.valid {
				t.Fatalf("openapi schema valid=%v, want %v: %v", visitErr == nil, tc.valid, visitErr)
			}
		})
	}
}

func TestSchemaForKeywords(t *testing.T) {
	t.Parallel()

	form := model.MustForm("uploads", []model.Item{
		model.MustField(model.KindFile, "avatar", model.Label("Avatar")),
		model.MustField(model.KindFile, "gallery", model.Multiple()),
		model.MustField(model.KindDate, "when", model.MinDate(model.Date(2024, 1, 1)), model.MaxDate(model.Date(2024, 12, 31))),
		model.MustField(model.KindNumber, "qty", model.StepSize(0.5), model.Default(1.5), model.ReadOnly()),
		model.MustField(model.KindURL, "site", model.HelpText("Homepage")),
	})
	schema, err := SchemaFor(form)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	avatar := schema.Properties["avatar"].Value
	if avatar.Format != "byte" || avatar.Title != "Avatar" {
		t.Fatalf("unexpected avatar schema %+v", avatar)
	}
	gallery := schema.Properties["gallery"].Value
	if !gallery.Type.Is("array") || gallery.Items.Value.Format != "byte" {
		t.Fatalf("unexpected gallery schema %+v", gallery)
	}
	when := schema.Properties["when"].Value
	if when.Format != "date" || when.Extensions[ExtFormatMinimum] != "2024-01-01" || when.Extensions[ExtFormatMaximum] != "2024-12-31" {
		t.Fatalf("unexpected date schema %+v", when)
	}
	qty := schema.Properties["qty"].Value
	if qty.MultipleOf == nil || *qty.MultipleOf != 0.5 || qty.Default != 1.5 || !qty.ReadOnly {
		t.Fatalf("unexpected number schema %+v", qty)
	}
	site := schema.Properties["site"].Value
	if site.Format != "uri" || site.Description != "Homepage" {
		t.Fatalf("unexpected url schema %+v", site)
	}

	order, _ := schema.Extensions[ExtPropertyOrder].([]string)
	if diff := cmp.Diff([]string{"avatar", "gallery", "when", "qty", "site"}, order); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if schema.Required != nil {
		t.Fatalf("expected no required names, got %v", schema.Required)
	}
}

func TestDocumentCollectsComponents(t *testing.T) {
	t.Parallel()

	other := model.MustForm("contact", []model.Item{model.MustField(model.KindEmail, "email", model.Required())})
	doc, err := Document("Forms", "2.0.0", parityForm(), other)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc.OpenAPI != Version || doc.Info.Title != "Forms" || doc.Info.Version != "2.0.0" {
		t.Fatalf("unexpected header %+v", doc.Info)
	}
	if diff := cmp.Diff([]string{"account", "contact"}, ComponentNames(doc)); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty document")
	}

	if _, err := Document("Forms", "1", other, other); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if _, err := Document("", "1", other); err == nil {
		t.Fatalf("expected missing title error")
	}
}
