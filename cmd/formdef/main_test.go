package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formdef/pkg/i18n"
	"github.com/goliatone/go-formdef/pkg/prompt"
	"github.com/goliatone/go-formdef/pkg/validation"
)

// execute runs the CLI with args and returns stdout and the command error.
func execute(t *testing.T, state *app, args ...string) (string, error) {
	t.Helper()
	if state == nil {
		state = &app{}
	}
	cmd := newRootCmd(state)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func decodeResult(t *testing.T, out string) validation.Result {
	t.Helper()
	var result validation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func readJSONFile(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "formdef version 0.1.0 (build: dev)\n", out)
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, nil, "schema", "testdata/booking.yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", doc["$schema"])
	assert.Equal(t, "booking", doc["title"])
	assert.Equal(t, []any{"guest_name", "guest_email", "check_in"}, doc["required"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 5)
	assert.Contains(t, props, "room")
}

func TestSchemaCommandCompact(t *testing.T) {
	out, err := execute(t, nil, "schema", "--compact", "testdata/booking.yaml")
	require.NoError(t, err)
	assert.NotContains(t, out, "\n  ")
}

func TestSchemaCommandRejectsUnknownExtension(t *testing.T) {
	_, err := execute(t, nil, "schema", "testdata/lint/notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported form file")
}

func TestOpenAPICommand(t *testing.T) {
	out, err := execute(t, nil, "openapi", "--title", "Bookings", "testdata/booking.yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	info := doc["info"].(map[string]any)
	assert.Equal(t, "Bookings", info["title"])
	assert.Equal(t, "1.0.0", info["version"])

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	booking, ok := schemas["booking"].(map[string]any)
	require.True(t, ok, "booking component missing")
	assert.Equal(t, false, booking["additionalProperties"])
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid submission", func(t *testing.T) {
		out, err := execute(t, nil, "validate", "testdata/booking.yaml", "testdata/booking_valid.json")
		require.NoError(t, err)

		result := decodeResult(t, out)
		assert.True(t, result.Success)
		assert.Empty(t, result.Errors)
		assert.Equal(t, float64(1), result.Data["nights"])
	})

	t.Run("invalid submission exits with failure", func(t *testing.T) {
		out, err := execute(t, nil, "validate", "testdata/booking.yaml", "testdata/booking_invalid.json")
		require.ErrorIs(t, err, errInvalid)

		result := decodeResult(t, out)
		assert.False(t, result.Success)
		var fields []string
		for _, fe := range result.Errors {
			fields = append(fields, fe.Field)
		}
		assert.Equal(t, []string{"guest_name", "check_in", "nights", "room"}, fields)
	})

	t.Run("single step", func(t *testing.T) {
		out, err := execute(t, nil, "validate", "--step", "0", "testdata/booking.yaml", "testdata/booking_invalid.json")
		require.ErrorIs(t, err, errInvalid)

		result := decodeResult(t, out)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "guest_name", result.Errors[0].Field)
		assert.Equal(t, "too_short", result.Errors[0].Code)
	})

	t.Run("all steps", func(t *testing.T) {
		out, err := execute(t, nil, "validate", "--all-steps", "testdata/booking.yaml", "testdata/booking_invalid.json")
		require.ErrorIs(t, err, errInvalid)

		result := decodeResult(t, out)
		require.Len(t, result.StepErrors, 2)
		assert.Len(t, result.StepErrors[0], 1)
		assert.Len(t, result.StepErrors[1], 3)
	})

	t.Run("step out of range is a usage error", func(t *testing.T) {
		_, err := execute(t, nil, "validate", "--step", "7", "testdata/booking.yaml", "testdata/booking_valid.json")
		require.Error(t, err)
		assert.False(t, errors.Is(err, errInvalid))
	})

	t.Run("step and all-steps conflict", func(t *testing.T) {
		_, err := execute(t, nil, "validate", "--step", "1", "--all-steps", "testdata/booking.yaml", "testdata/booking_valid.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})
}

func TestValidateCommandUsesConfigLocale(t *testing.T) {
	out, err := execute(t, nil, "--config", "testdata/strict.toml", "validate", "testdata/booking.yaml", "testdata/booking_invalid.json")
	require.ErrorIs(t, err, errInvalid)

	result := decodeResult(t, out)
	assert.Equal(t, i18n.Default().Translate("es", validation.MessageFailure, nil), result.Message)
}

func TestLocaleFlagOverridesConfig(t *testing.T) {
	out, err := execute(t, nil, "--config", "testdata/strict.toml", "--locale", "en", "validate", "testdata/booking.yaml", "testdata/booking_invalid.json")
	require.ErrorIs(t, err, errInvalid)

	result := decodeResult(t, out)
	assert.Equal(t, i18n.Default().Translate("en", validation.MessageFailure, nil), result.Message)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := t.TempDir() + "/bad.toml"
	require.NoError(t, writeFile(path, "colour = \"red\"\n"))

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLintCommand(t *testing.T) {
	t.Run("warnings alone pass", func(t *testing.T) {
		out, err := execute(t, nil, "lint", "testdata/lint/sloppy.yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "testdata/lint/sloppy.yaml: warning: field company -> missing label")
		assert.Contains(t, out, `visibility rule references "is_business", which is declared later`)
	})

	t.Run("strict fails on warnings", func(t *testing.T) {
		_, err := execute(t, nil, "lint", "--strict", "testdata/lint/sloppy.yaml")
		require.ErrorIs(t, err, errInvalid)
	})

	t.Run("load errors fail and other files are skipped", func(t *testing.T) {
		out, err := execute(t, nil, "lint", "testdata/lint/*")
		require.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "testdata/lint/broken.json: error: form ->")
		assert.NotContains(t, out, "notes.txt")
	})

	t.Run("recursive glob", func(t *testing.T) {
		out, err := execute(t, nil, "lint", "testdata/**/booking.yaml")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("pattern without matches", func(t *testing.T) {
		_, err := execute(t, nil, "lint", "testdata/missing/*.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no files match")
	})
}

type scriptedDriver struct {
	inputs  []string
	selects []int
}

func (d *scriptedDriver) Input(_ context.Context, _ prompt.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no scripted input left")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (d *scriptedDriver) Select(_ context.Context, _ prompt.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, errors.New("no scripted selection left")
	}
	next := d.selects[0]
	d.selects = d.selects[1:]
	return next, nil
}

func (d *scriptedDriver) MultiSelect(_ context.Context, _ prompt.SelectConfig) ([]int, error) {
	return nil, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (d *scriptedDriver) Info(_ context.Context, _ string) error { return nil }

func TestFillCommand(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"Ana", "ana@example.com", "2025-03-10", "2"},
		selects: []int{1},
	}
	out, err := execute(t, &app{driver: driver}, "fill", "testdata/booking.yaml")
	require.NoError(t, err)

	var answers map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &answers))
	assert.Equal(t, "Ana", answers["guest_name"])
	assert.Equal(t, float64(2), answers["nights"])
	assert.Equal(t, "double", answers["room"])
	assert.Empty(t, driver.inputs)
}

func TestFillCommandWritesOutputFile(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"Ana", "ana@example.com", "2025-03-10", ""},
		selects: []int{2},
	}
	path := t.TempDir() + "/answers.json"
	out, err := execute(t, &app{driver: driver}, "fill", "--output", path, "testdata/booking.yaml")
	require.NoError(t, err)
	assert.Empty(t, out)

	answers := readJSONFile(t, path)
	assert.NotContains(t, answers, "room")
	assert.Equal(t, "ana@example.com", answers["guest_email"])
}
