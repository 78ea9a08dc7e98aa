// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"crosscheck/internal/detector"
	"crosscheck/internal/paths"

	"gopkg.in/yaml.v3"
)

// Mode selects the matching strategy
type Mode string

const (
	// ModeExact reports the first literal occurrence of each value
	ModeExact Mode = "exact"
	// ModeFuzzy reports the best approximate occurrence of each value
	ModeFuzzy Mode = "fuzzy"
)

// Layout selects how several documents are searched
type Layout string

const (
	// LayoutConcat joins every document's text and searches it once
	LayoutConcat Layout = "concat"
	// LayoutSeparate searches each document on its own
	LayoutSeparate Layout = "separate"
)

// Threshold limits accepted on the command line and in configuration files
const (
	MinThreshold     = 50.0
	MaxThreshold     = 100.0
	DefaultThreshold = 80.0
)

// Defaults holds the settings used when no profile or flag overrides them
type Defaults struct {
	Format                string  `yaml:"format"`
	Mode                  Mode    `yaml:"mode"`
	Threshold             float64 `yaml:"threshold"`
	ThresholdBoundary     string  `yaml:"threshold_boundary"`
	ContextRadius         int     `yaml:"context_radius"`
	CollapseWhitespace    bool    `yaml:"collapse_whitespace"`
	FoldUnicode           bool    `yaml:"fold_unicode"`
	Layout                Layout  `yaml:"layout"`
	MaxCredentialAttempts int     `yaml:"max_credential_attempts"`
	Verbose               bool    `yaml:"verbose"`
	Debug                 bool    `yaml:"debug"`
	NoColor               bool    `yaml:"no_color"`
}

// Columns names the reference columns bound to the fixed comparison fields
type Columns struct {
	Phone  string `yaml:"phone"`
	Email  string `yaml:"email"`
	Name   string `yaml:"name"`
	Agency string `yaml:"agency"`
}

// ReferenceConfig describes how the base table is read
type ReferenceConfig struct {
	Sheet   string  `yaml:"sheet"`
	Columns Columns `yaml:"columns"`
}

// Config represents the application configuration
type Config struct {
	Defaults  Defaults           `yaml:"defaults"`
	Reference ReferenceConfig    `yaml:"reference"`
	Profiles  map[string]Profile `yaml:"profiles"`
}

// Profile overrides a subset of the defaults. Unset fields keep the default.
type Profile struct {
	Description        string   `yaml:"description,omitempty"`
	Format             *string  `yaml:"format,omitempty"`
	Mode               *Mode    `yaml:"mode,omitempty"`
	Threshold          *float64 `yaml:"threshold,omitempty"`
	ThresholdBoundary  *string  `yaml:"threshold_boundary,omitempty"`
	ContextRadius      *int     `yaml:"context_radius,omitempty"`
	CollapseWhitespace *bool    `yaml:"collapse_whitespace,omitempty"`
	FoldUnicode        *bool    `yaml:"fold_unicode,omitempty"`
	Layout             *Layout  `yaml:"layout,omitempty"`
}

// Settings is the flat result of applying a profile to the defaults
type Settings struct {
	Format                string
	Mode                  Mode
	Threshold             float64
	Boundary              detector.Boundary
	ContextRadius         int
	CollapseWhitespace    bool
	FoldUnicode           bool
	Layout                Layout
	MaxCredentialAttempts int
	Verbose               bool
	Debug                 bool
	NoColor               bool
	Sheet                 string
	Columns               Columns
}

func ptr[T any](v T) *T { return &v }

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Format:                "text",
			Mode:                  ModeExact,
			Threshold:             DefaultThreshold,
			ThresholdBoundary:     string(detector.BoundaryDefault),
			ContextRadius:         detector.DefaultContextChars,
			Layout:                LayoutConcat,
			MaxCredentialAttempts: 3,
		},
		Reference: ReferenceConfig{
			Columns: Columns{
				Phone:  "Mobile No",
				Email:  "Mail ID",
				Name:   "Passenger Name",
				Agency: "Travel Agency",
			},
		},
		Profiles: map[string]Profile{
			"legacy": {
				Description: "First literal occurrence in the joined text of all documents",
				Mode:        ptr(ModeExact),
				Layout:      ptr(LayoutConcat),
			},
			"whitespace": {
				Description:        "Literal matching that ignores whitespace in values and documents",
				Mode:               ptr(ModeExact),
				Layout:             ptr(LayoutConcat),
				CollapseWhitespace: ptr(true),
			},
			"advanced": {
				Description:        "Fuzzy matching per document with a similarity threshold",
				Mode:               ptr(ModeFuzzy),
				Layout:             ptr(LayoutSeparate),
				CollapseWhitespace: ptr(true),
				Threshold:          ptr(DefaultThreshold),
			},
		},
	}
}

// LoadConfig loads configuration from the specified file path. Keys absent
// from the file keep their built-in values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(paths.NormalizePath(configPath))
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unknown keys are errors
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file: the working directory
// first, then the configuration directory
func FindConfigFile() string {
	for _, name := range []string{"crosscheck.yaml", "crosscheck.yml", ".crosscheck.yaml", ".crosscheck.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns the default configuration
// together with the error so the caller can warn about it.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ListProfiles returns the sorted profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Resolve applies the named profile (none when empty) to the defaults
func (c *Config) Resolve(profileName string) (Settings, error) {
	d := c.Defaults
	s := Settings{
		Format:                d.Format,
		Mode:                  d.Mode,
		Threshold:             d.Threshold,
		ContextRadius:         d.ContextRadius,
		CollapseWhitespace:    d.CollapseWhitespace,
		FoldUnicode:           d.FoldUnicode,
		Layout:                d.Layout,
		MaxCredentialAttempts: d.MaxCredentialAttempts,
		Verbose:               d.Verbose,
		Debug:                 d.Debug,
		NoColor:               d.NoColor,
		Sheet:                 c.Reference.Sheet,
		Columns:               c.Reference.Columns,
	}
	boundary := d.ThresholdBoundary

	if profileName != "" {
		p := c.GetProfile(profileName)
		if p == nil {
			return s, fmt.Errorf("unknown profile %q (available: %s)", profileName, strings.Join(c.ListProfiles(), ", "))
		}
		if p.Format != nil {
			s.Format = *p.Format
		}
		if p.Mode != nil {
			s.Mode = *p.Mode
		}
		if p.Threshold != nil {
			s.Threshold = *p.Threshold
		}
		if p.ThresholdBoundary != nil {
			boundary = *p.ThresholdBoundary
		}
		if p.ContextRadius != nil {
			s.ContextRadius = *p.ContextRadius
		}
		if p.CollapseWhitespace != nil {
			s.CollapseWhitespace = *p.CollapseWhitespace
		}
		if p.FoldUnicode != nil {
			s.FoldUnicode = *p.FoldUnicode
		}
		if p.Layout != nil {
			s.Layout = *p.Layout
		}
	}

	b, ok := detector.ParseBoundary(boundary)
	if !ok {
		return s, fmt.Errorf("invalid threshold_boundary %q", boundary)
	}
	s.Boundary = b

	return s, s.Validate()
}

// Validate checks that every setting is in range
func (s Settings) Validate() error {
	switch s.Mode {
	case ModeExact, ModeFuzzy:
	default:
		return fmt.Errorf("invalid mode %q: must be exact or fuzzy", s.Mode)
	}
	switch s.Layout {
	case LayoutConcat, LayoutSeparate:
	default:
		return fmt.Errorf("invalid layout %q: must be concat or separate", s.Layout)
	}
	if s.Threshold < MinThreshold || s.Threshold > MaxThreshold {
		return fmt.Errorf("threshold %.2f out of range [%g, %g]", s.Threshold, MinThreshold, MaxThreshold)
	}
	if s.ContextRadius < 0 {
		return fmt.Errorf("context_radius must not be negative")
	}
	if s.MaxCredentialAttempts < 1 {
		return fmt.Errorf("max_credential_attempts must be at least 1")
	}
	return nil
}

// ValidateConfig validates the defaults and every profile
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	cols := config.Reference.Columns
	if cols.Phone == "" || cols.Email == "" || cols.Name == "" || cols.Agency == "" {
		return fmt.Errorf("reference columns must all be named")
	}

	if _, err := config.Resolve(""); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for _, name := range config.ListProfiles() {
		if _, err := config.Resolve(name); err != nil {
			return fmt.Errorf("profile '%s': %w", name, err)
		}
	}
	return nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the built-in configuration to path, refusing to
// overwrite an existing file unless force is set
func WriteDefault(path string, force bool) error {
	if fileExists(path) && !force {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := DefaultConfig().Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
