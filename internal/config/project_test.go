package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig_YAML(t *testing.T) {
	yaml := `
verbosity: 2
measure: true
phase: elab
color: never
env_format: yaml
files:
  - a.sml
  - b.sml
`
	cfg, err := ParseConfig([]byte(yaml), "smlc.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", cfg.Verbosity)
	}
	if !cfg.Measure {
		t.Error("expected measure to be true")
	}
	if cfg.Phase != PhaseElaborate {
		t.Errorf("phase = %q, want %q", cfg.Phase, PhaseElaborate)
	}
	if cfg.Color != ColorNever {
		t.Errorf("color = %q, want never", cfg.Color)
	}
	if cfg.EnvFormat != EnvFormatYAML {
		t.Errorf("env_format = %q, want yaml", cfg.EnvFormat)
	}
	if len(cfg.Files) != 2 || cfg.Files[0] != "a.sml" || cfg.Files[1] != "b.sml" {
		t.Errorf("files = %v", cfg.Files)
	}
}

func TestParseConfig_TOML(t *testing.T) {
	toml := `
verbosity = 1
phase = "parse"
files = ["main.sml"]
`
	cfg, err := ParseConfig([]byte(toml), "smlc.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Verbosity != 1 {
		t.Errorf("verbosity = %d, want 1", cfg.Verbosity)
	}
	if cfg.Phase != PhaseParse {
		t.Errorf("phase = %q, want parse", cfg.Phase)
	}
	if len(cfg.Files) != 1 || cfg.Files[0] != "main.sml" {
		t.Errorf("files = %v", cfg.Files)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("measure: false\n"), "smlc.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("color = %q, want auto", cfg.Color)
	}
	if cfg.EnvFormat != EnvFormatText {
		t.Errorf("env_format = %q, want text", cfg.EnvFormat)
	}
	if cfg.Verbosity != 0 || cfg.Phase != "" {
		t.Errorf("unexpected values %+v", cfg)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
		want string
	}{
		{"verbosity", "smlc.yaml", "verbosity: 3\n", "verbosity must be 0, 1 or 2"},
		{"phase", "smlc.yaml", "phase: link\n", "unknown phase"},
		{"color", "smlc.yaml", "color: rainbow\n", "color must be"},
		{"env format", "smlc.yaml", "env_format: json\n", "env_format must be"},
		{"empty file entry", "smlc.yaml", "files: [\"\"]\n", "files[0]: empty path"},
		{"bad yaml", "smlc.yaml", "verbosity: [\n", "parsing smlc.yaml"},
		{"bad toml", "smlc.toml", "verbosity = \n", "parsing smlc.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestNormalizePhase(t *testing.T) {
	tests := []struct {
		arg  string
		want string
		ok   bool
	}{
		{"parse", PhaseParse, true},
		{"elab", PhaseElaborate, true},
		{"elaborate", PhaseElaborate, true},
		{"mono", PhaseMonomorphize, true},
		{"flat", PhaseFlatten, true},
		{"flatten", PhaseFlatten, true},
		{"codegen", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhase(tt.arg)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizePhase(%q) = %q, %v; want %q, %v", tt.arg, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoadAndFindConfig(t *testing.T) {
	dir := t.TempDir()
	if path, err := FindConfig(dir); err != nil || path != "" {
		t.Fatalf("FindConfig on empty dir = %q, %v", path, err)
	}
	path := filepath.Join(dir, ProjectFileTOML)
	if err := os.WriteFile(path, []byte("files = [\"src/main.sml\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	found, err := FindConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != path {
		t.Fatalf("FindConfig = %q, want %q", found, path)
	}
	cfg, err := LoadConfig(found)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(dir, "src", "main.sml")
	if len(cfg.Files) != 1 || cfg.Files[0] != want {
		t.Errorf("files = %v, want [%s]", cfg.Files, want)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("expected read error, got %v", err)
	}
}
