// Package cli implements the smlc command: argument handling, the compiler
// pipeline and everything printed to the user.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/elaborate"
	"github.com/funvibe/smlc/internal/lexer"
	"github.com/funvibe/smlc/internal/parser"
	"github.com/funvibe/smlc/internal/pipeline"
	"github.com/funvibe/smlc/internal/prettyprinter"
	"github.com/funvibe/smlc/internal/source"
)

// Exit codes
const (
	ExitOK          = 0
	ExitDiagnostics = 1
	ExitUsage       = 2
)

// Run compiles the files named by args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	opts, err := ParseArgs(args)
	if err != nil {
		newReporter(stdout, stderr, config.ColorAuto).argError(err)
		return ExitUsage
	}
	if opts.Help {
		fmt.Fprint(stdout, usage)
		return ExitOK
	}

	cfg := config.Default()
	if path, err := config.FindConfig("."); err == nil && path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			newReporter(stdout, stderr, config.ColorAuto).failure(diagnostics.ErrInvalidProjectConfig, "%s", err)
			return ExitUsage
		}
		cfg = loaded
	}
	opts.merge(cfg)
	r := newReporter(stdout, stderr, cfg.Color)

	if len(opts.Files) == 0 {
		r.argError(errors.New("error: no input files"))
		return ExitUsage
	}

	sm := source.NewSourceMap()
	var files []source.FileID
	for _, path := range opts.Files {
		if !isSourceFile(path) {
			r.failure(diagnostics.ErrUnsupportedExtension, "%s: expected one of %s", path, strings.Join(config.SourceFileExtensions, ", "))
			return ExitDiagnostics
		}
		data, err := os.ReadFile(path)
		if err != nil {
			r.failure(diagnostics.ErrReadFile, "%s", err)
			return ExitDiagnostics
		}
		files = append(files, sm.Add(path, string(data)))
	}

	ctx := pipeline.NewContext(sm, files)
	if opts.Verbosity >= 1 {
		r.info("session %s", ctx.SessionID)
	}
	switch opts.Phase {
	case config.PhaseMonomorphize, config.PhaseFlatten:
		if opts.Verbosity >= 1 {
			r.info("phase %s is not part of this build; stopping after %s", opts.Phase, config.PhaseElaborate)
		}
	default:
		ctx.StopAfter = opts.Phase
	}

	stages := []pipeline.Processor{&lexer.LexerProcessor{}, &parser.ParserProcessor{}, &elaborate.ElaborateProcessor{}}
	if opts.Verbosity >= 1 {
		stages = traced(r, stages)
	}
	ctx = pipeline.New(stages...).Run(ctx)

	for _, d := range ctx.Diagnostics.Items() {
		r.diagnostic(sm, d)
	}
	if opts.Verbosity >= 2 && ctx.LastPhase() == config.PhaseElaborate {
		if err := dump(r, ctx, cfg.EnvFormat); err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
	if opts.Measure {
		if err := r.measure(ctx); err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
	if ctx.Diagnostics.HasErrors() {
		r.summary(ctx.Diagnostics)
		return ExitDiagnostics
	}
	return ExitOK
}

// dump prints the Core IR and the top-level type environment.
func dump(r *reporter, ctx *pipeline.PipelineContext, format string) error {
	fmt.Fprintln(r.out, "(* core *)")
	fmt.Fprint(r.out, prettyprinter.NewCodePrinter(ctx.Interner).Decls(ctx.Decls))
	fmt.Fprintln(r.out, "(* environment *)")
	if format == config.EnvFormatYAML {
		out, err := prettyprinter.EnvironmentYAML(ctx.Interner, ctx.TopLevel)
		if err != nil {
			return err
		}
		fmt.Fprint(r.out, out)
		return nil
	}
	fmt.Fprint(r.out, prettyprinter.Environment(ctx.Interner, ctx.TopLevel))
	return nil
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range config.SourceFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// tracer announces each phase as it starts.
type tracer struct {
	pipeline.Processor
	r    *reporter
	show bool
}

func (t *tracer) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if t.show {
		t.r.info("running %s", t.Phase())
	}
	return t.Processor.Process(ctx)
}

func traced(r *reporter, stages []pipeline.Processor) []pipeline.Processor {
	out := make([]pipeline.Processor, len(stages))
	for i, s := range stages {
		show := i == 0 || stages[i-1].Phase() != s.Phase()
		out[i] = &tracer{Processor: s, r: r, show: show}
	}
	return out
}
