package cli

import (
	"reflect"
	"testing"

	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/diagnostics"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{"files only", []string{"a.sml", "b.sml"}, Options{Files: []string{"a.sml", "b.sml"}}},
		{"verbose", []string{"--v", "a.sml"}, Options{Verbosity: 1, Files: []string{"a.sml"}}},
		{"very verbose", []string{"--vv", "a.sml"}, Options{Verbosity: 2, Files: []string{"a.sml"}}},
		{"last verbosity wins", []string{"--vv", "--silent", "a.sml"}, Options{Files: []string{"a.sml"}}},
		{"measure", []string{"--measure", "a.sml"}, Options{Measure: true, Files: []string{"a.sml"}}},
		{"phase short", []string{"--phase", "elab", "a.sml"}, Options{Phase: config.PhaseElaborate, Files: []string{"a.sml"}}},
		{"phase equals", []string{"--phase=flat", "a.sml"}, Options{Phase: config.PhaseFlatten, Files: []string{"a.sml"}}},
		{"help", []string{"--help"}, Options{Help: true}},
		{"double dash", []string{"--", "--v.sml"}, Options{Files: []string{"--v.sml"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got.verbositySet = false
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		args []string
		code diagnostics.ErrorCode
	}{
		{[]string{"--fast", "a.sml"}, diagnostics.ErrUnknownFlag},
		{[]string{"-x"}, diagnostics.ErrUnknownFlag},
		{[]string{"--measure=yes"}, diagnostics.ErrUnknownFlag},
		{[]string{"a.sml", "--phase"}, diagnostics.ErrMissingPhaseArgument},
		{[]string{"--phase", "--v"}, diagnostics.ErrMissingPhaseArgument},
		{[]string{"--phase", "link"}, diagnostics.ErrUnrecognizedPhase},
		{[]string{"--phase="}, diagnostics.ErrUnrecognizedPhase},
	}
	for _, tt := range tests {
		_, err := ParseArgs(tt.args)
		ae, ok := err.(*ArgError)
		if !ok {
			t.Errorf("%v: expected *ArgError, got %v", tt.args, err)
			continue
		}
		if ae.Code != tt.code {
			t.Errorf("%v: code %s, want %s", tt.args, ae.Code, tt.code)
		}
	}
}

func TestMergeConfig(t *testing.T) {
	cfg := &config.ProjectConfig{Verbosity: 2, Measure: true, Phase: config.PhaseParse, Files: []string{"main.sml"}}

	opts, _ := ParseArgs(nil)
	opts.merge(cfg)
	if opts.Verbosity != 2 || !opts.Measure || opts.Phase != config.PhaseParse || len(opts.Files) != 1 {
		t.Errorf("config not applied: %+v", opts)
	}

	opts, _ = ParseArgs([]string{"--silent", "--phase", "elab", "other.sml"})
	opts.merge(cfg)
	if opts.Verbosity != 0 {
		t.Errorf("--silent should override config verbosity, got %d", opts.Verbosity)
	}
	if opts.Phase != config.PhaseElaborate {
		t.Errorf("--phase should override config phase, got %q", opts.Phase)
	}
	if !reflect.DeepEqual(opts.Files, []string{"other.sml"}) {
		t.Errorf("command-line files should replace config files, got %v", opts.Files)
	}
}
