package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// --- Code Printer (output looks like SML source) ---

// Precedence of printed expressions (higher = binds tighter).
const (
	precLow = iota
	precInfix
	precApp
	precAtom
)

// CodePrinter renders Core IR as SML-like text. Binders carry their types;
// other nodes print untyped.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	names  *symbols.Interner
	types  *typesystem.Printer
}

func NewCodePrinter(names *symbols.Interner) *CodePrinter {
	return &CodePrinter{names: names, types: typesystem.NewPrinter(names)}
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

// newline starts a new line at the current indentation.
func (p *CodePrinter) newline() {
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// Decls renders top-level declarations, one per line. Type variables are
// named afresh for every declaration.
func (p *CodePrinter) Decls(decls []core.Decl) string {
	p.buf.Reset()
	for _, d := range decls {
		p.types = typesystem.NewPrinter(p.names)
		p.printDecl(d)
		p.buf.WriteByte('\n')
	}
	return p.buf.String()
}

// Expr renders a single expression.
func (p *CodePrinter) Expr(e *core.Expr) string {
	p.buf.Reset()
	p.printExpr(e, precLow)
	return p.buf.String()
}

// Pat renders a single pattern.
func (p *CodePrinter) Pat(pt *core.Pat) string {
	p.buf.Reset()
	p.printPat(pt, precLow)
	return p.buf.String()
}

func (p *CodePrinter) name(sym symbols.Symbol) string {
	return p.names.Resolve(sym)
}

func (p *CodePrinter) printDecl(d core.Decl) {
	switch d := d.(type) {
	case *core.DatatypeDecl:
		p.write("datatype ")
		p.write(p.params(d.Data.Params))
		p.write(p.name(d.Data.Tycon.Name))
		for i, dc := range d.Data.Constructors {
			if i == 0 {
				p.write(" = ")
			} else {
				p.write(" | ")
			}
			p.write(p.name(dc.Con.Name))
			if dc.Payload != nil {
				p.write(" of ")
				p.write(p.types.Type(dc.Payload))
			}
		}
	case *core.ExnDecl:
		p.write("exception ")
		p.write(p.name(d.Con.Name))
		if d.Payload != nil {
			p.write(" of ")
			p.write(p.types.Type(d.Payload))
		}
	case *core.ValDecl:
		p.write("val ")
		p.write(p.quantified(d.Tyvars, d.Rule.Pat.Type))
		p.printPat(d.Rule.Pat, precApp)
		p.write(" : ")
		p.write(p.types.Type(d.Rule.Pat.Type))
		p.write(" = ")
		p.printExpr(d.Rule.Expr, precLow)
	case *core.FunDecl:
		var tys []typesystem.Type
		for _, l := range d.Lambdas() {
			tys = append(tys, l.ArgType, l.Body.Type)
		}
		for i, b := range d.Binds {
			if i == 0 {
				p.write("fun ")
				p.write(p.quantified(d.Tyvars, tys...))
			} else {
				p.newline()
				p.write("and ")
			}
			p.write(p.name(b.Name))
			p.write(" = ")
			p.printLambda(b.Lambda)
		}
	}
}

// params renders a datatype's parameter list, with a trailing space when
// it is not empty.
func (p *CodePrinter) params(vars []*typesystem.TypeVar) string {
	switch len(vars) {
	case 0:
		return ""
	case 1:
		return p.types.Type(vars[0]) + " "
	}
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = p.types.Type(v)
	}
	return "(" + strings.Join(parts, ", ") + ") "
}

// quantified lists the generalized variables of a binding as they occur
// in tys.
func (p *CodePrinter) quantified(ids []uint32, tys ...typesystem.Type) string {
	if len(ids) == 0 {
		return ""
	}
	want := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var parts []string
	for _, t := range tys {
		for _, v := range typesystem.FreeVars(t) {
			if want[v.ID] {
				want[v.ID] = false
				parts = append(parts, p.types.Type(v))
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "] "
}

func (p *CodePrinter) printLambda(l *core.Lambda) {
	p.write("fn (")
	p.write(p.name(l.Arg))
	p.write(" : ")
	p.write(p.types.Type(l.ArgType))
	p.write(") => ")
	p.printExpr(l.Body, precLow)
}

func exprPrec(e *core.Expr) int {
	switch e.Kind.(type) {
	case *core.Lambda, *core.Case, *core.Handle, *core.Raise:
		return precLow
	case *core.App:
		return precApp
	}
	return precAtom
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(e *core.Expr, parentPrec int) {
	prec := exprPrec(e)
	op, left, right, infix := p.infixApp(e)
	if infix {
		prec = precInfix
	}
	if prec < parentPrec {
		p.write("(")
		defer p.write(")")
	}
	if infix {
		p.printExpr(left, precApp)
		p.write(" " + op + " ")
		p.printExpr(right, precApp)
		return
	}
	switch k := e.Kind.(type) {
	case *core.Var:
		p.write(p.name(k.Name))
	case *core.Primitive:
		p.write(p.operator(k.Name))
	case *core.Con:
		p.write(p.operator(k.Con.Name))
	case *core.Const:
		p.write(formatLiteral(k.Value))
	case *core.App:
		p.printExpr(k.Fn, precApp)
		p.write(" ")
		p.printExpr(k.Arg, precAtom)
	case *core.Lambda:
		p.printLambda(k)
	case *core.Case:
		p.write("case ")
		p.printExpr(k.Scrutinee, precLow)
		p.write(" of")
		p.printRules(k.Rules)
	case *core.Handle:
		p.printExpr(k.Body, precApp)
		p.write(" handle")
		p.printRules(k.Rules)
	case *core.Raise:
		p.write("raise ")
		p.printExpr(k.Exn, precApp)
	case *core.Let:
		p.write("let")
		p.indent++
		for _, d := range k.Decls {
			p.newline()
			p.printDecl(d)
		}
		p.indent--
		p.newline()
		p.write("in")
		p.indent++
		p.newline()
		p.printExpr(k.Body, precLow)
		p.indent--
		p.newline()
		p.write("end")
	case *core.List:
		p.write("[")
		for i, el := range k.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, precLow)
		}
		p.write("]")
	case *core.Record:
		p.printRows(len(k.Rows), func(i int) (symbols.Symbol, func()) {
			r := k.Rows[i]
			return r.Label, func() { p.printExpr(r.Data, precLow) }
		}, " = ", false)
	case *core.Seq:
		p.write("(")
		for i, el := range k.Exprs {
			if i > 0 {
				p.write("; ")
			}
			p.printExpr(el, precLow)
		}
		p.write(")")
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) printRules(rules []core.Rule) {
	p.indent++
	for i, r := range rules {
		p.newline()
		if i == 0 {
			p.write("  ")
		} else {
			p.write("| ")
		}
		p.printPat(r.Pat, precLow)
		p.write(" => ")
		p.printExpr(r.Expr, precLow)
	}
	p.indent--
}

// infixApp recognizes an application of a symbolic operator or constructor
// to a pair, which prints as `a op b`.
func (p *CodePrinter) infixApp(e *core.Expr) (string, *core.Expr, *core.Expr, bool) {
	app, ok := e.Kind.(*core.App)
	if !ok {
		return "", nil, nil, false
	}
	var sym symbols.Symbol
	switch fn := app.Fn.Kind.(type) {
	case *core.Primitive:
		sym = fn.Name
	case *core.Con:
		sym = fn.Con.Name
	case *core.Var:
		sym = fn.Name
	default:
		return "", nil, nil, false
	}
	name := p.name(sym)
	if !isSymbolic(name) {
		return "", nil, nil, false
	}
	rec, ok := app.Arg.Kind.(*core.Record)
	if !ok || len(rec.Rows) != 2 || rec.Rows[0].Label != p.names.Tuple(1) || rec.Rows[1].Label != p.names.Tuple(2) {
		return "", nil, nil, false
	}
	return name, rec.Rows[0].Data, rec.Rows[1].Data, true
}

// operator renders a name used as a value, marking symbolic ones with op.
func (p *CodePrinter) operator(sym symbols.Symbol) string {
	name := p.name(sym)
	if isSymbolic(name) && name != "()" {
		return "op " + name
	}
	return name
}

func isSymbolic(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' && r != '\'' && r != '('
}

// printRows prints a record, or a tuple when its labels are 1..n.
// printRows writes a record or tuple. An open record pattern, one that
// names fewer labels than its type has, ends in `...`.
func (p *CodePrinter) printRows(n int, row func(i int) (symbols.Symbol, func()), sep string, open bool) {
	tuple := n > 1 && !open
	for i := 0; i < n && tuple; i++ {
		l, _ := row(i)
		tuple = l == p.names.Tuple(i+1)
	}
	if tuple {
		p.write("(")
	} else {
		p.write("{")
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			p.write(", ")
		}
		l, body := row(i)
		if !tuple {
			p.write(p.name(l))
			p.write(sep)
		}
		body()
	}
	if open {
		if n > 0 {
			p.write(", ")
		}
		p.write("...")
	}
	if tuple {
		p.write(")")
	} else {
		p.write("}")
	}
}

func patPrec(pt *core.Pat) int {
	if app, ok := pt.Kind.(*core.PatApp); ok && app.Arg != nil {
		return precApp
	}
	return precAtom
}

func (p *CodePrinter) printPat(pt *core.Pat, parentPrec int) {
	prec := patPrec(pt)
	op, left, right, infix := p.infixPat(pt)
	if infix {
		prec = precInfix
	}
	if prec < parentPrec {
		p.write("(")
		defer p.write(")")
	}
	if infix {
		p.printPat(left, precApp)
		p.write(" " + op + " ")
		p.printPat(right, precApp)
		return
	}
	switch k := pt.Kind.(type) {
	case *core.PatWild:
		p.write("_")
	case *core.PatVar:
		p.write(p.name(k.Name))
	case *core.PatConst:
		p.write(formatLiteral(k.Value))
	case *core.PatApp:
		p.write(p.operator(k.Con.Name))
		if k.Arg != nil {
			p.write(" ")
			p.printPat(k.Arg, precAtom)
		}
	case *core.PatList:
		p.write("[")
		for i, el := range k.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.printPat(el, precLow)
		}
		p.write("]")
	case *core.PatRecord:
		all, _ := typesystem.FlattenRow(pt.Type, nil)
		p.printRows(len(k.Rows), func(i int) (symbols.Symbol, func()) {
			r := k.Rows[i]
			return r.Label, func() { p.printPat(r.Data, precLow) }
		}, " = ", len(all) > len(k.Rows))
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) infixPat(pt *core.Pat) (string, *core.Pat, *core.Pat, bool) {
	app, ok := pt.Kind.(*core.PatApp)
	if !ok || app.Arg == nil {
		return "", nil, nil, false
	}
	name := p.name(app.Con.Name)
	if !isSymbolic(name) {
		return "", nil, nil, false
	}
	rec, ok := app.Arg.Kind.(*core.PatRecord)
	if !ok || len(rec.Rows) != 2 || rec.Rows[0].Label != p.names.Tuple(1) || rec.Rows[1].Label != p.names.Tuple(2) {
		return "", nil, nil, false
	}
	return name, rec.Rows[0].Data, rec.Rows[1].Data, true
}

func formatLiteral(l core.Literal) string {
	switch l.Kind {
	case core.LitInt:
		if l.Int < 0 {
			return "~" + strconv.FormatInt(-l.Int, 10)
		}
		return strconv.FormatInt(l.Int, 10)
	case core.LitReal:
		s := strconv.FormatFloat(l.Real, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return strings.ReplaceAll(s, "-", "~")
	case core.LitString:
		return strconv.Quote(l.Str)
	case core.LitChar:
		return fmt.Sprintf("#%s", strconv.Quote(string(l.Char)))
	}
	return "<???>"
}
