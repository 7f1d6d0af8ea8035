package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/pipeline"
	"github.com/funvibe/smlc/internal/source"
)

var (
	errorStyle = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	warnStyle  = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	infoStyle  = pterm.NewStyle(pterm.FgLightGreen)
)

// reporter writes everything the driver shows the user.
type reporter struct {
	out   io.Writer
	err   io.Writer
	color bool
}

func newReporter(stdout, stderr io.Writer, mode string) *reporter {
	return &reporter{out: stdout, err: stderr, color: useColor(stderr, mode)}
}

// useColor decides whether w gets ANSI styling.
func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if config.IsTestMode {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *reporter) style(s *pterm.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Sprint(text)
}

// diagnostic prints one diagnostic as file:line:col: severity[CODE]: message.
func (r *reporter) diagnostic(sm *source.SourceMap, d *diagnostics.DiagnosticError) {
	label := fmt.Sprintf("%s[%s]", d.Severity, d.Code)
	if d.IsWarning() {
		label = r.style(warnStyle, label)
	} else {
		label = r.style(errorStyle, label)
	}
	pos := ""
	if sm != nil && d.Span.File != 0 {
		pos = sm.Position(d.Span).String() + ": "
	}
	fmt.Fprintf(r.err, "%s%s: %s\n", pos, label, d.Message)
}

// argError prints a command-line problem followed by the usage text.
func (r *reporter) argError(err error) {
	fmt.Fprintf(r.err, "%s\n\n%s", err, usage)
}

// failure prints a problem found outside the program text.
func (r *reporter) failure(code diagnostics.ErrorCode, format string, args ...any) {
	label := r.style(errorStyle, fmt.Sprintf("error[%s]", code))
	fmt.Fprintf(r.err, "%s: %s\n", label, fmt.Sprintf(format, args...))
}

// summary prints the error and warning counts after a failed compilation.
func (r *reporter) summary(list *diagnostics.List) {
	errors := list.ErrorCount()
	warnings := list.Len() - errors
	fmt.Fprintf(r.err, "%s, %s\n",
		r.style(errorStyle, plural(errors, "error")),
		plural(warnings, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// info prints a progress line at verbosity 1 and above.
func (r *reporter) info(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.style(infoStyle, "smlc:"), fmt.Sprintf(format, args...))
}

// measure prints the per-phase timing table.
func (r *reporter) measure(ctx *pipeline.PipelineContext) error {
	data := pterm.TableData{{"phase", "time", "nodes", "memory"}}
	for _, t := range ctx.Timings {
		data = append(data, []string{
			t.Phase,
			t.Duration.String(),
			humanize.Comma(int64(t.Nodes)),
			humanize.Bytes(t.Bytes),
		})
	}
	total := ctx.Stats()
	data = append(data, []string{"total", "", humanize.Comma(int64(total.Nodes)), humanize.Bytes(total.Bytes)})
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering measure table: %w", err)
	}
	if !r.color {
		table = pterm.RemoveColorFromString(table)
	}
	fmt.Fprintf(r.out, "session %s\n%s\n", ctx.SessionID, table)
	return nil
}
