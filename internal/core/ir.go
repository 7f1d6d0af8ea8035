// Package core defines the typed Core IR produced by elaboration.
//
// Every node lives in an Arena and carries its type and source span. The
// IR is a DAG: nodes never point at an ancestor, although many nodes may
// share one type. After construction the only mutation allowed is linking
// type variables during unification.
package core

import (
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// LiteralKind selects the field of Literal that holds the value.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitReal
	LitString
	LitChar
)

// Literal is a constant from the source text.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Real float64
	Str  string
	Char rune
}

// Expr is a typed expression node.
type Expr struct {
	Kind ExprKind
	Type typesystem.Type
	Span source.Span
}

// ExprKind is one of *App, *Case, *Con, *Const, *Handle, *Lambda, *Let,
// *List, *Primitive, *Raise, *Record, *Seq or *Var.
type ExprKind interface {
	exprKind()
}

type App struct {
	Fn  *Expr
	Arg *Expr
}

type Case struct {
	Scrutinee *Expr
	Rules     []Rule
}

// Con is a constructor used as a value, with the type arguments its
// datatype was instantiated at.
type Con struct {
	Con      typesystem.Constructor
	TypeArgs []typesystem.Type
}

type Const struct {
	Value Literal
}

type Handle struct {
	Body  *Expr
	Rules []Rule
}

type Let struct {
	Decls []Decl
	Body  *Expr
}

type List struct {
	Elems []*Expr
}

// Primitive refers to an operator from the built-in table.
type Primitive struct {
	Name symbols.Symbol
}

type Raise struct {
	Exn *Expr
}

// Record rows are sorted by label.
type Record struct {
	Rows []typesystem.Row[*Expr]
}

type Seq struct {
	Exprs []*Expr
}

type Var struct {
	Name symbols.Symbol
}

// Lambda is a one-argument function. The body's type is the result type.
type Lambda struct {
	Arg     symbols.Symbol
	ArgType typesystem.Type
	Body    *Expr
}

func (*App) exprKind()       {}
func (*Case) exprKind()      {}
func (*Con) exprKind()       {}
func (*Const) exprKind()     {}
func (*Handle) exprKind()    {}
func (*Lambda) exprKind()    {}
func (*Let) exprKind()       {}
func (*List) exprKind()      {}
func (*Primitive) exprKind() {}
func (*Raise) exprKind()     {}
func (*Record) exprKind()    {}
func (*Seq) exprKind()       {}
func (*Var) exprKind()       {}

// Rule is one arm of a match: every Pat.Type equals the scrutinee type and
// every Expr.Type equals the match's result type.
type Rule struct {
	Pat  *Pat
	Expr *Expr
}

// Pat is a typed pattern node.
type Pat struct {
	Kind PatKind
	Type typesystem.Type
	Span source.Span
}

// PatKind is one of PatApp, PatConst, PatList, PatRecord, PatVar or PatWild.
type PatKind interface {
	patKind()
}

// PatApp matches a constructor; Arg is nil for constants.
type PatApp struct {
	Con typesystem.Constructor
	Arg *Pat
}

type PatConst struct {
	Value Literal
}

type PatList struct {
	Elems []*Pat
}

// PatRecord rows are sorted by label. An open record pattern has already
// been expanded to every label of its type.
type PatRecord struct {
	Rows []typesystem.Row[*Pat]
}

type PatVar struct {
	Name symbols.Symbol
}

type PatWild struct{}

func (*PatApp) patKind()    {}
func (*PatConst) patKind()  {}
func (*PatList) patKind()   {}
func (*PatRecord) patKind() {}
func (*PatVar) patKind()    {}
func (*PatWild) patKind()   {}

// Datatype is an elaborated datatype declaration.
type Datatype = typesystem.Datatype

// Decl is one of DatatypeDecl, FunDecl, ValDecl or ExnDecl.
type Decl interface {
	declNode()
}

// DatatypeDecl declares one datatype of a group. A mutually recursive group
// is emitted as consecutive DatatypeDecls.
type DatatypeDecl struct {
	Data *Datatype
}

// FunBind is one function of a recursive group.
type FunBind struct {
	Name   symbols.Symbol
	Lambda *Lambda
	Span   source.Span
}

// FunDecl is a group of mutually recursive functions generalized over
// Tyvars.
type FunDecl struct {
	Tyvars []uint32
	Binds  []FunBind
}

// ValDecl binds the variables of Rule.Pat to Rule.Expr. Tyvars lists the
// variables generalized, which is empty for expansive right-hand sides.
type ValDecl struct {
	Tyvars []uint32
	Rule   Rule
}

// ExnDecl adds a constructor to exn. Payload is nil for constants.
type ExnDecl struct {
	Con     typesystem.Constructor
	Payload typesystem.Type
}

func (*DatatypeDecl) declNode() {}
func (*FunDecl) declNode()      {}
func (*ValDecl) declNode()      {}
func (*ExnDecl) declNode()      {}

// Lambdas returns the lambdas of the group in declaration order.
func (d *FunDecl) Lambdas() []*Lambda {
	out := make([]*Lambda, len(d.Binds))
	for i, b := range d.Binds {
		out[i] = b.Lambda
	}
	return out
}
