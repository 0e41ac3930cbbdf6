// Package main provides the formdef binary. It exports form definitions as
// JSON Schema or OpenAPI components, validates submissions against them,
// fills them in interactively and lints definition files.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdef/pkg/codec"
	"github.com/goliatone/go-formdef/pkg/i18n"
	"github.com/goliatone/go-formdef/pkg/prompt"
	"github.com/goliatone/go-formdef/pkg/registry"
	"github.com/goliatone/go-formdef/pkg/validation"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "formdef"
)

// errInvalid marks a command that ran fine but found problems in its input.
// main exits non-zero without repeating the already printed report.
var errInvalid = errors.New("formdef: input is invalid")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app is the shared state built once flags and the config file are known.
type app struct {
	cfg       config
	logger    *slog.Logger
	catalog   *i18n.Catalog
	registry  *registry.Registry
	codec     *codec.Codec
	validator *validation.Validator
	// driver overrides the terminal prompts of fill.
	driver prompt.Driver
}

func rootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(state *app) *cobra.Command {
	var (
		configPath string
		logLevel   string
		locale     string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Form definition toolkit",
		Long: `formdef works with declarative form definitions written in JSON or YAML.

It can:
- export a form as JSON Schema (draft-07) or as OpenAPI 3 components
- validate a submission against a form, a single step or every step
- fill in a form interactively on the terminal
- lint form definition files`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("locale") || cfg.Locale == "" {
				cfg.Locale = locale
			}
			return state.init(cfg, cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (TOML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&locale, "locale", i18n.FallbackLocale, "Message locale")

	cmd.AddCommand(
		schemaCmd(state),
		openapiCmd(state),
		validateCmd(state),
		fillCmd(state),
		lintCmd(state),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func (a *app) init(cfg config, stderr io.Writer) error {
	level := slog.LevelWarn
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	catalog, err := i18n.New(
		i18n.WithDefaultLocale(cfg.Locale),
		i18n.WithMessageFiles(cfg.MessageFiles...),
	)
	if err != nil {
		return err
	}
	reg := registry.Default()

	a.cfg = cfg
	a.logger = logger
	a.catalog = catalog
	a.registry = reg
	a.codec = codec.New(
		codec.WithRegistry(reg),
		codec.WithMarkupStripping(cfg.stripMarkup()),
		codec.WithLogger(logger),
	)
	a.validator = validation.New(
		validation.WithCompiler(reg.Compiler()),
		validation.WithTranslator(catalog),
		validation.WithDefaultLocale(cfg.Locale),
		validation.WithLogger(logger),
	)
	logger.Debug("formdef configured",
		slog.String("locale", cfg.Locale),
		slog.Bool("strip_markup", cfg.stripMarkup()),
		slog.Int("message_files", len(cfg.MessageFiles)),
	)
	return nil
}
