package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/model"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	selectCfgs   []SelectConfig
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestCollectAsksVisibleFieldsInOrder(t *testing.T) {
	t.Parallel()

	form := model.MustForm("order", []model.Item{
		model.MustField(model.KindText, "name", model.Required()),
		model.MustField(model.KindNumber, "quantity", model.Min(1)),
		model.MustField(model.KindCheckbox, "gift"),
		model.MustField(model.KindTextarea, "message", model.VisibleWhen(model.When("gift", model.OpEquals, true))),
		model.MustField(model.KindHidden, "channel", model.Value("cli")),
	})
	driver := &stubDriver{
		inputs:  []string{"Ada", "3"},
		confirm: []bool{false},
	}

	got, err := New(WithDriver(driver)).Collect(context.Background(), form)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]any{"name": "Ada", "quantity": 3.0, "gift": false, "channel": "cli"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
	if driver.textPos != 0 {
		t.Fatalf("message should not be asked when gift is false")
	}
}

func TestCollectRetriesInvalidAnswers(t *testing.T) {
	t.Parallel()

	form := model.MustForm("signup", []model.Item{
		model.MustField(model.KindEmail, "email", model.Required()),
	})
	driver := &stubDriver{inputs: []string{"", "not-an-email", "ada@example.com"}}

	got, err := New(WithDriver(driver)).Collect(context.Background(), form)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got["email"] != "ada@example.com" {
		t.Fatalf("unexpected answers %v", got)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected two validation messages, got %v", driver.infoMessages)
	}
	for _, msg := range driver.infoMessages {
		if !strings.HasPrefix(msg, "Invalid answer: ") {
			t.Fatalf("unexpected message %q", msg)
		}
	}
}

func TestCollectGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	form := model.MustForm("f", []model.Item{
		model.MustField(model.KindNumber, "age", model.Required(), model.Min(18)),
	})
	driver := &stubDriver{inputs: []string{"10", "12"}}

	_, err := New(WithDriver(driver), WithMaxAttempts(2)).Collect(context.Background(), form)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestCollectResolvesDependentOptions(t *testing.T) {
	t.Parallel()

	form := model.MustForm("address", []model.Item{
		model.MustField(model.KindSelect, "country", model.Required(),
			model.Options(model.Choice("es", "Spain"), model.Choice("us", "United States"))),
		model.MustField(model.KindSelect, "region", model.Required(),
			model.Options(model.Choice("madrid", "Madrid"), model.Choice("texas", "Texas")),
			model.DependsOn("country", map[string][]model.SelectOption{
				"us": {model.Choice("texas", "Texas")},
			})),
		model.MustField(model.KindCheckbox, "topics", model.Options(model.Choice("go", "Go"), model.Choice("rust", "Rust"))),
	})
	driver := &stubDriver{selectIdx: []int{1, 0}, multiIdx: [][]int{{0, 1}}}

	got, err := New(WithDriver(driver)).Collect(context.Background(), form)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]any{"country": "us", "region": "texas", "topics": []any{"go", "rust"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Texas"}, driver.selectCfgs[1].Options); diff != "" {
		t.Fatalf("region options not narrowed (-want +got):\n%s", diff)
	}
}

func TestCollectSkipsOptionalChoice(t *testing.T) {
	t.Parallel()

	form := model.MustForm("f", []model.Item{
		model.MustField(model.KindRadio, "size", model.Options(model.Choice("s", "Small"), model.Choice("l", "Large"))),
	})
	driver := &stubDriver{selectIdx: []int{2}}

	got, err := New(WithDriver(driver)).Collect(context.Background(), form)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no answers, got %v", got)
	}
	if last := driver.selectCfgs[0].Options; last[len(last)-1] != skipLabel {
		t.Fatalf("expected a skip option, got %v", last)
	}
}

func TestCollectEncodesFiles(t *testing.T) {
	t.Parallel()

	form := model.MustForm("f", []model.Item{model.MustField(model.KindFile, "doc", model.Required())})
	driver := &stubDriver{inputs: []string{"notes.txt"}}
	read := func(path string) ([]byte, error) {
		if path != "notes.txt" {
			t.Fatalf("unexpected path %q", path)
		}
		return []byte("hi"), nil
	}

	got, err := New(WithDriver(driver), WithFileReader(read)).Collect(context.Background(), form)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got["doc"] != "aGk=" {
		t.Fatalf("unexpected encoding %v", got["doc"])
	}
}

func TestCollectHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	form := model.MustForm("f", []model.Item{model.MustField(model.KindText, "a")})
	if _, err := New(WithDriver(&stubDriver{})).Collect(ctx, form); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
