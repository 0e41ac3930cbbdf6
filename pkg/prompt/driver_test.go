package prompt

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSurveyDriverChecksContextBeforePrompting(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewSurveyDriver()

	if _, err := d.Input(ctx, InputConfig{Message: "name"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("input: expected context.Canceled, got %v", err)
	}
	if _, err := d.Select(ctx, SelectConfig{Message: "pick", Options: []string{"a"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("select: expected context.Canceled, got %v", err)
	}
	if err := d.Info(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("info: expected context.Canceled, got %v", err)
	}
}

func TestSurveyDriverInfoWritesLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := &SurveyDriver{out: &buf}
	if err := d.Info(context.Background(), "Invalid answer: too short"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if buf.String() != "Invalid answer: too short\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestValidIndexes(t *testing.T) {
	t.Parallel()

	got := validIndexes([]int{-1, 0, 2, 5}, 3)
	if diff := cmp.Diff([]int{0, 2}, got); diff != "" {
		t.Fatalf("indexes mismatch (-want +got):\n%s", diff)
	}
}
