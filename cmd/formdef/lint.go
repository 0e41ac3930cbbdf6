package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdef/pkg/codec"
	"github.com/goliatone/go-formdef/pkg/model"
)

type severity string

const (
	severityError   severity = "error"
	severityWarning severity = "warning"
)

type violation struct {
	file     string
	location string
	severity severity
	message  string
}

func lintCmd(state *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint GLOB...",
		Short: "Check form definition files",
		Long: `Check form definition files matched by one or more glob patterns.
Patterns support ** for recursive matches.

Files that fail to load are errors. Missing labels, empty containers and
rules that reference fields declared further down are warnings, which only
fail the run with --strict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandGlobs(args)
			if err != nil {
				return err
			}

			var violations []violation
			for _, path := range paths {
				if _, err := codec.FormatFor(path); err != nil {
					state.logger.Debug("skipping non-form file", "path", path)
					continue
				}
				violations = append(violations, lintFile(state.codec, path)...)
			}
			state.logger.Info("lint finished", "files", len(paths), "violations", len(violations))
			return report(cmd.OutOrStdout(), violations, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}

func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			paths = append(paths, match)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func lintFile(c *codec.Codec, path string) []violation {
	form, err := c.LoadFile(path)
	if err != nil {
		return []violation{{file: path, location: "form", severity: severityError, message: err.Error()}}
	}

	var out []violation
	warn := func(location, format string, args ...any) {
		out = append(out, violation{
			file:     path,
			location: location,
			severity: severityWarning,
			message:  fmt.Sprintf(format, args...),
		})
	}

	lintContainers(form.Content(), "form", warn)

	position := make(map[string]int)
	for idx, field := range form.Fields() {
		position[field.Name()] = idx
	}
	for idx, field := range form.Fields() {
		location := "field " + field.Name()
		if field.Label() == "" {
			warn(location, "missing label")
		}
		if _, ok := field.Default(); field.ReadOnly() && field.Required() && !ok {
			warn(location, "read-only required field has no default")
		}
		for _, rule := range field.VisibleWhen() {
			if position[rule.Field] > idx {
				warn(location, "visibility rule references %q, which is declared later", rule.Field)
			}
		}
		if dep := field.Dependent(); dep != nil && position[dep.DependsOn] > idx {
			warn(location, "dependent options reference %q, which is declared later", dep.DependsOn)
		}
	}
	return out
}

func lintContainers(items []model.Item, parent string, warn func(location, format string, args ...any)) {
	for _, item := range items {
		switch typed := item.(type) {
		case model.Step:
			location := fmt.Sprintf("%s > step %q", parent, typed.Title)
			if len(typed.Fields()) == 0 {
				warn(location, "step has no fields")
			}
			lintContainers(typed.Items, location, warn)
		case model.Group:
			location := fmt.Sprintf("%s > group %q", parent, typed.Title)
			if len(model.Flatten(typed.Items)) == 0 {
				warn(location, "group has no fields")
			}
			lintContainers(typed.Items, location, warn)
		}
	}
}

func report(w io.Writer, violations []violation, strict bool) error {
	if len(violations) == 0 {
		return nil
	}
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})

	failed := false
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s: %s -> %s\n", v.file, v.severity, v.location, v.message)
		if v.severity == severityError || strict {
			failed = true
		}
	}
	if failed {
		return errInvalid
	}
	return nil
}
