package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/smlc/internal/source"
)

// List accumulates diagnostics, dropping exact repeats at the same span.
type List struct {
	items  []*DiagnosticError
	seen   map[string]bool
	errors int
}

// Add records d unless the same code and message were already reported at
// the same span.
func (l *List) Add(d *DiagnosticError) {
	key := fmt.Sprintf("%s:%s:%s", d.Span, d.Code, d.Message)
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	if l.seen[key] {
		return
	}
	l.seen[key] = true
	l.items = append(l.items, d)
	if !d.IsWarning() {
		l.errors++
	}
}

func (l *List) Errorf(code ErrorCode, span source.Span, format string, args ...any) *DiagnosticError {
	d := NewError(code, span, fmt.Sprintf(format, args...))
	l.Add(d)
	return d
}

func (l *List) Warnf(code ErrorCode, span source.Span, format string, args ...any) *DiagnosticError {
	d := NewWarning(code, span, fmt.Sprintf(format, args...))
	l.Add(d)
	return d
}

func (l *List) HasErrors() bool { return l.errors > 0 }

// ErrorCount returns the number of error-severity diagnostics.
func (l *List) ErrorCount() int { return l.errors }

func (l *List) Len() int { return len(l.items) }

// Items returns the diagnostics sorted by file, then offset. Diagnostics at
// the same place keep the order they were reported in.
func (l *List) Items() []*DiagnosticError {
	out := make([]*DiagnosticError, len(l.items))
	copy(out, l.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span, out[j].Span
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Lo < b.Lo
	})
	return out
}

// Codes lists the codes of every diagnostic in report order.
func (l *List) Codes() []ErrorCode {
	codes := make([]ErrorCode, len(l.items))
	for i, d := range l.items {
		codes[i] = d.Code
	}
	return codes
}
