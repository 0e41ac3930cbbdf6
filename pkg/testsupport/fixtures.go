// Package testsupport holds fixture and golden file helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/codec"
	"github.com/goliatone/go-formdef/pkg/model"
)

// MustLoadForm decodes a JSON or YAML form fixture.
func MustLoadForm(t *testing.T, path string) *model.Form {
	t.Helper()

	form, err := LoadForm(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadForm decodes a form fixture, returning an error for callers managing
// setup outside of *testing.T.
func LoadForm(path string, opts ...codec.Option) (*model.Form, error) {
	if path == "" {
		return nil, errors.New("testsupport: form path is required")
	}
	form, err := codec.New(opts...).LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: %w", err)
	}
	return form, nil
}

// MustLoadSubmission reads a JSON submission fixture.
func MustLoadSubmission(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read submission: %v", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal submission: %v", err)
	}
	return out
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file, ignoring surrounding
// whitespace. With UPDATE_GOLDENS set it rewrites the golden instead.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGolden(t, path)
	if diff := cmp.Diff(string(bytes.TrimSpace(want)), string(bytes.TrimSpace(got))); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}
