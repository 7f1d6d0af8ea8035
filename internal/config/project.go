package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Colour modes for diagnostics
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Environment dump formats
const (
	EnvFormatText = "text"
	EnvFormatYAML = "yaml"
)

// ProjectConfig is the content of smlc.yaml or smlc.toml. Command-line
// flags override every field.
type ProjectConfig struct {
	// Verbosity is 0 (silent), 1 or 2.
	Verbosity int `yaml:"verbosity" toml:"verbosity"`

	// Measure prints per-phase timings.
	Measure bool `yaml:"measure" toml:"measure"`

	// Phase stops compilation after the named phase. Short names
	// (elab, mono, flat) are accepted.
	Phase string `yaml:"phase,omitempty" toml:"phase"`

	// Color is auto, always or never. Defaults to auto.
	Color string `yaml:"color,omitempty" toml:"color"`

	// Files are compiled when none are given on the command line. Relative
	// paths are resolved against the directory of the config file.
	Files []string `yaml:"files,omitempty" toml:"files"`

	// EnvFormat selects how the type environment is printed at verbosity 2:
	// text or yaml.
	EnvFormat string `yaml:"env_format,omitempty" toml:"env_format"`
}

// Default returns the configuration used when no project file exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a project file.
func LoadConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i, f := range cfg.Files {
		if !filepath.IsAbs(f) {
			cfg.Files[i] = filepath.Join(dir, f)
		}
	}
	return cfg, nil
}

// ParseConfig parses project file content. The format follows the
// extension of path; the path is otherwise used only for error messages.
func ParseConfig(data []byte, path string) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig looks for a project file in dir. It returns an empty path
// and no error when there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for _, name := range []string{ProjectFileYAML, "smlc.yml", ProjectFileTOML} {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// validate checks the configuration for semantic errors.
func (c *ProjectConfig) validate(path string) error {
	if c.Verbosity < 0 || c.Verbosity > 2 {
		return fmt.Errorf("%s: verbosity must be 0, 1 or 2, got %d", path, c.Verbosity)
	}
	if c.Phase != "" {
		phase, ok := NormalizePhase(c.Phase)
		if !ok {
			return fmt.Errorf("%s: unknown phase %q (expected one of %s)", path, c.Phase, strings.Join(PhaseArguments, ", "))
		}
		c.Phase = phase
	}
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	switch c.EnvFormat {
	case "", EnvFormatText, EnvFormatYAML:
	default:
		return fmt.Errorf("%s: env_format must be text or yaml, got %q", path, c.EnvFormat)
	}
	for i, f := range c.Files {
		if f == "" {
			return fmt.Errorf("%s: files[%d]: empty path", path, i)
		}
	}
	return nil
}

func (c *ProjectConfig) setDefaults() {
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.EnvFormat == "" {
		c.EnvFormat = EnvFormatText
	}
}

// PhaseArguments are the values accepted by --phase.
var PhaseArguments = []string{"parse", "elab", "mono", "flat"}

// NormalizePhase maps a --phase argument, short or long, to a phase name.
func NormalizePhase(arg string) (string, bool) {
	switch arg {
	case PhaseParse:
		return PhaseParse, true
	case "elab", PhaseElaborate:
		return PhaseElaborate, true
	case "mono", PhaseMonomorphize:
		return PhaseMonomorphize, true
	case "flat", PhaseFlatten:
		return PhaseFlatten, true
	}
	return "", false
}
