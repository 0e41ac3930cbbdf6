package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when an answer keeps failing validation.
	ErrTooManyAttempts = errors.New("prompt: too many invalid answers")
)

// InputConfig configures a single line text prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a choice prompt. DefaultIndex applies to Select and
// Defaults to MultiSelect; both index into Options and -1 means no default.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// TextAreaConfig configures a prompt that accepts several lines.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// Driver abstracts the terminal so collection logic can be tested without one
// and callers can swap implementations.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// SurveyDriver implements Driver with survey prompts. Choice prompts answer
// with option indexes, so duplicate labels stay distinguishable.
type SurveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// DriverOption configures a SurveyDriver.
type DriverOption func(*SurveyDriver)

// WithStdio binds the prompts to explicit terminal streams instead of the
// process stdio.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) DriverOption {
	return func(d *SurveyDriver) {
		d.opts = append(d.opts, survey.WithStdio(in, out, errOut))
		if out != nil {
			d.out = out
		}
	}
}

// WithPageSize limits how many options a choice prompt shows at once.
func WithPageSize(n int) DriverOption {
	return func(d *SurveyDriver) {
		if n > 0 {
			d.opts = append(d.opts, survey.WithPageSize(n))
		}
	}
}

// NewSurveyDriver returns a driver on the process terminal. Informational
// messages go to stdout unless WithStdio says otherwise.
func NewSurveyDriver(opts ...DriverOption) *SurveyDriver {
	d := &SurveyDriver{out: os.Stdout}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *SurveyDriver) ask(ctx context.Context, p survey.Prompt, answer any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(p, answer, d.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

func (d *SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var text string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &text)
	return text, err
}

func (d *SurveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var yes bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &yes)
	return yes, err
}

func (d *SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	p := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		p.Default = cfg.DefaultIndex
	}
	idx := -1
	if err := d.ask(ctx, p, &idx); err != nil {
		return -1, err
	}
	return idx, nil
}

func (d *SurveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	p := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if defaults := validIndexes(cfg.Defaults, len(cfg.Options)); len(defaults) > 0 {
		p.Default = defaults
	}
	var picked []int
	if err := d.ask(ctx, p, &picked); err != nil {
		return nil, err
	}
	return picked, nil
}

func (d *SurveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var text string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &text)
	return text, err
}

func (d *SurveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func validIndexes(indexes []int, n int) []int {
	var out []int
	for _, idx := range indexes {
		if idx >= 0 && idx < n {
			out = append(out, idx)
		}
	}
	return out
}
