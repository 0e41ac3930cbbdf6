package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdef/pkg/jsonschema"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/openapi"
	"github.com/goliatone/go-formdef/pkg/prompt"
	"github.com/goliatone/go-formdef/pkg/validation"
)

func schemaCmd(state *app) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "schema FILE",
		Short: "Export a form as a JSON Schema (draft-07) document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := state.codec.LoadFile(args[0])
			if err != nil {
				return err
			}
			exporter := jsonschema.NewExporter(jsonschema.WithCompiler(state.registry.Compiler()))
			data, err := exporter.Marshal(form, !compact)
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Emit compact JSON")
	return cmd
}

func openapiCmd(state *app) *cobra.Command {
	var (
		title   string
		version string
	)

	cmd := &cobra.Command{
		Use:   "openapi FILE...",
		Short: "Export forms as OpenAPI 3 component schemas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forms := make([]*model.Form, 0, len(args))
			for _, path := range args {
				form, err := state.codec.LoadFile(path)
				if err != nil {
					return err
				}
				forms = append(forms, form)
			}

			exporter := openapi.NewExporter(openapi.WithCompiler(state.registry.Compiler()))
			doc, err := exporter.Document(title, version, forms...)
			if err != nil {
				return err
			}
			raw, err := doc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("marshal openapi document: %w", err)
			}
			var out bytes.Buffer
			if err := json.Indent(&out, raw, "", "  "); err != nil {
				return fmt.Errorf("indent openapi document: %w", err)
			}
			return writeLine(cmd.OutOrStdout(), out.Bytes())
		},
	}

	cmd.Flags().StringVar(&title, "title", "Forms", "Document title")
	cmd.Flags().StringVar(&version, "version", "1.0.0", "Document version")
	return cmd
}

func validateCmd(state *app) *cobra.Command {
	var (
		step              int
		allSteps          bool
		respectVisibility bool
		allowUnknown      bool
	)

	cmd := &cobra.Command{
		Use:   "validate FORM DATA",
		Short: "Validate a JSON submission against a form",
		Long: `Validate a JSON submission against a form and print the result as JSON.

The whole form is validated unless --step or --all-steps is given. The
command exits non-zero when the submission is invalid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if allSteps && cmd.Flags().Changed("step") {
				return fmt.Errorf("--step and --all-steps are mutually exclusive")
			}
			form, err := state.codec.LoadFile(args[0])
			if err != nil {
				return err
			}
			submission, err := readSubmission(args[1])
			if err != nil {
				return err
			}

			opts := validation.Options{
				Scope:             validation.WholeForm(),
				RespectVisibility: respectVisibility || state.cfg.RespectVisibility,
				Locale:            state.cfg.Locale,
				AllowUnknown:      allowUnknown,
			}
			var result validation.Result
			switch {
			case allSteps:
				result, err = state.validator.ValidateAllSteps(form, submission, opts)
			case cmd.Flags().Changed("step"):
				result, err = state.validator.ValidateStep(form, step, submission, opts)
			default:
				result, err = state.validator.Validate(form, submission, opts)
			}
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal result: %w", err)
			}
			if err := writeLine(cmd.OutOrStdout(), data); err != nil {
				return err
			}
			if !result.Success {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "Validate only the fields of this step (zero based)")
	cmd.Flags().BoolVar(&allSteps, "all-steps", false, "Validate every step and report errors per step")
	cmd.Flags().BoolVar(&respectVisibility, "respect-visibility", false, "Skip fields hidden by their visibility rules")
	cmd.Flags().BoolVar(&allowUnknown, "allow-unknown", false, "Accept submission keys the form does not declare")
	return cmd
}

func fillCmd(state *app) *cobra.Command {
	var (
		output   string
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "fill FORM",
		Short: "Fill in a form interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := state.codec.LoadFile(args[0])
			if err != nil {
				return err
			}
			driver := state.driver
			if driver == nil {
				// Prompts go to stderr so stdout carries only the answers.
				driver = prompt.NewSurveyDriver(prompt.WithStdio(os.Stdin, os.Stderr, os.Stderr))
			}
			collector := prompt.New(
				prompt.WithDriver(driver),
				prompt.WithValidator(state.validator),
				prompt.WithTranslator(state.catalog),
				prompt.WithLocale(state.cfg.Locale),
				prompt.WithMaxAttempts(attempts),
				prompt.WithLogger(state.logger),
			)
			answers, err := collector.Collect(cmd.Context(), form)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(answers, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal answers: %w", err)
			}
			if output == "" {
				return writeLine(cmd.OutOrStdout(), data)
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			state.logger.Info("answers written", "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the submission to this file instead of stdout")
	cmd.Flags().IntVar(&attempts, "attempts", 3, "Invalid answers allowed per field")
	return cmd
}

func readSubmission(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read submission: %w", err)
	}
	submission := map[string]any{}
	if err := json.Unmarshal(raw, &submission); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", path, err)
	}
	return submission, nil
}

func writeLine(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
