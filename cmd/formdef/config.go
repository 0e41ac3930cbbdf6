package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// config mirrors the optional TOML file passed with --config. Flags given on
// the command line win over file values.
type config struct {
	Locale            string   `toml:"locale"`
	LogLevel          string   `toml:"log_level"`
	RespectVisibility bool     `toml:"respect_visibility"`
	StripMarkup       *bool    `toml:"strip_markup"`
	MessageFiles      []string `toml:"message_files"`
}

// stripMarkup defaults to true so labels pasted from HTML sources print
// cleanly on the terminal.
func (c config) stripMarkup() bool {
	if c.StripMarkup == nil {
		return true
	}
	return *c.StripMarkup
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}
