package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/smlc/internal/builtin"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

type patternKind uint8

const (
	kindWild patternKind = iota
	kindCon
	kindLit
	kindRecord
)

// pattern is the matrix form of a Core pattern: variables are wildcards,
// list literals are nil/cons chains and records list their fields in label
// order.
type pattern struct {
	kind   patternKind
	con    typesystem.Constructor
	lit    core.Literal
	labels []symbols.Symbol
	args   []*pattern
}

var wild = &pattern{kind: kindWild}

// field returns the sub-pattern for label l, or a wildcard when the record
// pattern does not mention it.
func (p *pattern) field(l symbols.Symbol) *pattern {
	for i, have := range p.labels {
		if have == l {
			return p.args[i]
		}
	}
	return wild
}

func (c *Checker) lower(p *core.Pat) *pattern {
	switch k := p.Kind.(type) {
	case *core.PatApp:
		out := &pattern{kind: kindCon, con: k.Con}
		if k.Con.Arity == 1 {
			arg := wild
			if k.Arg != nil {
				arg = c.lower(k.Arg)
			}
			out.args = []*pattern{arg}
		}
		return out
	case *core.PatConst:
		return &pattern{kind: kindLit, lit: k.Value}
	case *core.PatList:
		out := &pattern{kind: kindCon, con: c.builtins.Nil}
		for i := len(k.Elems) - 1; i >= 0; i-- {
			out = c.cons(c.lower(k.Elems[i]), out)
		}
		return out
	case *core.PatRecord:
		out := &pattern{kind: kindRecord}
		for _, r := range k.Rows {
			out.labels = append(out.labels, r.Label)
			out.args = append(out.args, c.lower(r.Data))
		}
		return out
	}
	return wild
}

func (c *Checker) cons(hd, tl *pattern) *pattern {
	pair := &pattern{
		kind:   kindRecord,
		labels: []symbols.Symbol{c.in.Tuple(1), c.in.Tuple(2)},
		args:   []*pattern{hd, tl},
	}
	return &pattern{kind: kindCon, con: c.builtins.Cons, args: []*pattern{pair}}
}

const (
	precTop = iota
	precCons
	precApp
)

// render prints a witness in SML pattern syntax.
func (c *Checker) render(p *pattern, prec int) string {
	switch p.kind {
	case kindLit:
		return renderLiteral(p.lit)
	case kindRecord:
		return c.renderRecord(p)
	case kindCon:
		name := c.in.Resolve(p.con.Name)
		if p.con.Tycon.ID == builtin.ListID && p.con.Tag == builtin.TagCons && len(p.args) == 1 {
			hd, tl := wild, wild
			if pair := p.args[0]; pair.kind == kindRecord && len(pair.args) == 2 {
				hd, tl = pair.args[0], pair.args[1]
			}
			s := c.render(hd, precApp) + " :: " + c.render(tl, precCons)
			if prec > precCons {
				return "(" + s + ")"
			}
			return s
		}
		if len(p.args) == 0 {
			return name
		}
		s := name + " " + c.render(p.args[0], precApp+1)
		if prec >= precApp {
			return "(" + s + ")"
		}
		return s
	}
	return "_"
}

func (c *Checker) renderRecord(p *pattern) string {
	tuple := len(p.labels) >= 2
	for i, l := range p.labels {
		if c.in.Resolve(l) != strconv.Itoa(i+1) {
			tuple = false
		}
	}
	parts := make([]string, len(p.args))
	for i, a := range p.args {
		if tuple {
			parts[i] = c.render(a, precTop)
		} else {
			parts[i] = c.in.Resolve(p.labels[i]) + " = " + c.render(a, precTop)
		}
	}
	if tuple {
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func renderLiteral(l core.Literal) string {
	switch l.Kind {
	case core.LitInt:
		if l.Int < 0 {
			return "~" + strconv.FormatInt(-l.Int, 10)
		}
		return strconv.FormatInt(l.Int, 10)
	case core.LitReal:
		return strconv.FormatFloat(l.Real, 'g', -1, 64)
	case core.LitString:
		return strconv.Quote(l.Str)
	case core.LitChar:
		return fmt.Sprintf("#%s", strconv.Quote(string(l.Char)))
	}
	return "_"
}
