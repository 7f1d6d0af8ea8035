package cli

import (
	"fmt"
	"strings"

	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/diagnostics"
)

// Options is the parsed command line.
type Options struct {
	Verbosity int
	Measure   bool
	// Phase is the phase to stop after, empty to run every phase.
	Phase string
	Files []string
	Help  bool

	verbositySet bool
}

// ArgError is an invalid command line. It is reported before any file is
// read.
type ArgError struct {
	Code diagnostics.ErrorCode
	Arg  string
}

func (e *ArgError) Error() string {
	switch e.Code {
	case diagnostics.ErrMissingPhaseArgument:
		return fmt.Sprintf("error[%s]: --phase needs one of %s", e.Code, strings.Join(config.PhaseArguments, ", "))
	case diagnostics.ErrUnrecognizedPhase:
		return fmt.Sprintf("error[%s]: unknown phase %q (expected one of %s)", e.Code, e.Arg, strings.Join(config.PhaseArguments, ", "))
	}
	return fmt.Sprintf("error[%s]: unknown flag %s", e.Code, e.Arg)
}

const usage = `Usage: smlc [options] <file>...

Options:
  --silent           print diagnostics only (default)
  --v                also print phase progress
  --vv               also print the Core IR and the type environment
  --measure          print per-phase timings
  --phase <phase>    stop after parse, elab, mono or flat
  --help             show this message

Settings may also come from smlc.yaml or smlc.toml in the working
directory; flags take precedence.
`

// ParseArgs reads the command line. Positional arguments are input files,
// compiled in the order given; a lone `--` ends the flags.
func ParseArgs(args []string) (*Options, error) {
	opts := &Options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			opts.Files = append(opts.Files, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.Files = append(opts.Files, arg)
			continue
		}
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--silent":
			opts.Verbosity, opts.verbositySet = 0, true
		case "--v":
			opts.Verbosity, opts.verbositySet = 1, true
		case "--vv":
			opts.Verbosity, opts.verbositySet = 2, true
		case "--measure":
			opts.Measure = true
		case "--help", "-h":
			opts.Help = true
		case "--phase":
			if !hasValue {
				if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
					return nil, &ArgError{Code: diagnostics.ErrMissingPhaseArgument, Arg: arg}
				}
				i++
				value = args[i]
			}
			phase, ok := config.NormalizePhase(value)
			if !ok {
				return nil, &ArgError{Code: diagnostics.ErrUnrecognizedPhase, Arg: value}
			}
			opts.Phase = phase
		default:
			return nil, &ArgError{Code: diagnostics.ErrUnknownFlag, Arg: arg}
		}
		if hasValue && name != "--phase" {
			return nil, &ArgError{Code: diagnostics.ErrUnknownFlag, Arg: arg}
		}
	}
	return opts, nil
}

// merge fills the options the command line left unset from the project
// file.
func (o *Options) merge(cfg *config.ProjectConfig) {
	if !o.verbositySet {
		o.Verbosity = cfg.Verbosity
	}
	if !o.Measure {
		o.Measure = cfg.Measure
	}
	if o.Phase == "" {
		o.Phase = cfg.Phase
	}
	if len(o.Files) == 0 {
		o.Files = cfg.Files
	}
}
