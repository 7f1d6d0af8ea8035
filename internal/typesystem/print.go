package typesystem

import (
	"strconv"
	"strings"

	"github.com/funvibe/smlc/internal/symbols"
)

// Names resolves symbols for printing. *symbols.Interner implements it.
type Names interface {
	Resolve(sym symbols.Symbol) string
}

const (
	precArrow = iota
	precTuple
	precApp
)

// Printer renders types in SML syntax. Type variables are named 'a, 'b,
// ... in order of first appearance and keep their name across calls, so a
// message mentioning several types stays consistent.
type Printer struct {
	names Names
	vars  map[*TypeVar]string
	next  int
}

func NewPrinter(names Names) *Printer {
	return &Printer{names: names, vars: make(map[*TypeVar]string)}
}

// Type renders t.
func (p *Printer) Type(t Type) string {
	var sb strings.Builder
	p.write(&sb, t, precArrow)
	return sb.String()
}

// Scheme renders s with its quantified variables named from 'a in order of
// appearance. Free variables of the body print as '_a, '_b, ... so that a
// monomorphic binding left over by the value restriction is visible.
func (p *Printer) Scheme(s Scheme) string {
	sp := &Printer{names: p.names, vars: make(map[*TypeVar]string)}
	quantified := make(map[uint32]bool, len(s.Vars))
	for _, id := range s.Vars {
		quantified[id] = true
	}
	weak := 0
	for _, v := range FreeVars(s.Body) {
		if quantified[v.ID] {
			sp.vars[v] = "'" + varName(sp.next)
			sp.next++
		} else {
			sp.vars[v] = "'_" + varName(weak)
			weak++
		}
	}
	return sp.Type(s.Body)
}

func varName(i int) string {
	letter := string(rune('a' + i%26))
	if i < 26 {
		return letter
	}
	return letter + strconv.Itoa(i/26)
}

func (p *Printer) varName(v *TypeVar) string {
	if n, ok := p.vars[v]; ok {
		return n
	}
	n := "'" + varName(p.next)
	p.next++
	p.vars[v] = n
	return n
}

func (p *Printer) write(sb *strings.Builder, t Type, prec int) {
	switch t := Apply(t).(type) {
	case *TypeVar:
		sb.WriteString(p.varName(t))
	case *TCon:
		name := p.names.Resolve(t.Tycon.Name)
		if name == "->" && len(t.Args) == 2 {
			if prec > precArrow {
				sb.WriteByte('(')
			}
			p.write(sb, t.Args[0], precTuple)
			sb.WriteString(" -> ")
			p.write(sb, t.Args[1], precArrow)
			if prec > precArrow {
				sb.WriteByte(')')
			}
			return
		}
		switch len(t.Args) {
		case 0:
		case 1:
			p.write(sb, t.Args[0], precApp)
			sb.WriteByte(' ')
		default:
			sb.WriteByte('(')
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				p.write(sb, arg, precArrow)
			}
			sb.WriteString(") ")
		}
		sb.WriteString(name)
	case *TRecord, *TFlex:
		var order LabelOrder
		if o, ok := p.names.(LabelOrder); ok {
			order = o
		}
		rows, tail := FlattenRow(t, order)
		if tail == nil && p.isTuple(rows) {
			if prec > precTuple {
				sb.WriteByte('(')
			}
			for i, r := range rows {
				if i > 0 {
					sb.WriteString(" * ")
				}
				p.write(sb, r.Data, precApp)
			}
			if prec > precTuple {
				sb.WriteByte(')')
			}
			return
		}
		p.writeRecord(sb, rows, tail != nil)
	}
}

func (p *Printer) writeRecord(sb *strings.Builder, rows []Row[Type], open bool) {
	sb.WriteByte('{')
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.names.Resolve(r.Label))
		sb.WriteString(": ")
		p.write(sb, r.Data, precArrow)
	}
	if open {
		if len(rows) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteByte('}')
}

// isTuple reports whether rows are exactly the labels 1..n with n >= 2.
func (p *Printer) isTuple(rows []Row[Type]) bool {
	if len(rows) < 2 {
		return false
	}
	seen := make([]bool, len(rows)+1)
	for _, r := range rows {
		n, err := strconv.Atoi(p.names.Resolve(r.Label))
		if err != nil || n < 1 || n > len(rows) || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}
