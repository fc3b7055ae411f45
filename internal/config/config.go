// Package config provides project-level configuration for the Tanto
// compiler.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SourceMapFormat controls how tantoc emits source maps alongside the
// lowered kernel output.
type SourceMapFormat string

const (
	// FormatInline embeds the source map as a trailing comment in the
	// generated kernel file.
	FormatInline SourceMapFormat = "inline"
	// FormatSeparate writes the source map to a sibling ".map" file.
	FormatSeparate SourceMapFormat = "separate"
	// FormatBoth writes both.
	FormatBoth SourceMapFormat = "both"
	// FormatNone disables source map generation entirely.
	FormatNone SourceMapFormat = "none"
)

func (f SourceMapFormat) isValid() bool {
	switch f {
	case FormatInline, FormatSeparate, FormatBoth, FormatNone:
		return true
	default:
		return false
	}
}

// Config is the complete Tanto project configuration, loaded from
// tanto.toml.
type Config struct {
	Build     BuildConfig     `toml:"build"`
	SourceMap SourceMapConfig `toml:"sourcemaps"`
}

// BuildConfig controls frontend.Compile's default invocation shape for
// every kernel source file tantoc builds.
type BuildConfig struct {
	// Defines lists "#define NAME VALUE" pairs passed to every compile,
	// the project-wide analogue of frontend.Define.
	Defines map[string]string `toml:"defines"`

	// StrictUndefinedParams is read from "strict_undefined_params" and
	// defaults to true. Nothing in tantoc consults it: frontend.Compile
	// always reports an undefined top-level "param" declaration as an
	// InputError, and setting the field to false does not make such a
	// build succeed.
	StrictUndefinedParams bool `toml:"strict_undefined_params"`
}

// SourceMapConfig controls source map generation.
type SourceMapConfig struct {
	Enabled bool            `toml:"enabled"`
	Format  SourceMapFormat `toml:"format"`
}

// DefaultConfig returns the built-in configuration used when no
// tanto.toml is present.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Defines:               map[string]string{},
			StrictUndefinedParams: true,
		},
		SourceMap: SourceMapConfig{
			Enabled: true,
			Format:  FormatInline,
		},
	}
}

// Load applies a four-tier precedence: built-in defaults, then
// "~/.tanto/config.toml", then "./tanto.toml", then overrides (CLI
// flags) last and highest priority.
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".tanto", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "tanto.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		if overrides.SourceMap.Format != "" {
			cfg.SourceMap.Format = overrides.SourceMap.Format
		}
		for name, value := range overrides.Build.Defines {
			cfg.Build.Defines[name] = value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate reports whether c holds acceptable values.
func (c *Config) Validate() error {
	if !c.SourceMap.Format.isValid() {
		return fmt.Errorf("invalid sourcemap format: %q (must be 'inline', 'separate', 'both', or 'none')",
			c.SourceMap.Format)
	}
	return nil
}
