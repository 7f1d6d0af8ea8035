package ast

import (
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
	Span() source.Span
}

// Expr is a Node in expression position.
type Expr interface {
	Node
	exprNode()
}

// Pat is a Node in pattern position.
type Pat interface {
	Node
	patNode()
}

// Ty is a Node in type position.
type Ty interface {
	Node
	tyNode()
}

// Dec is a declaration.
type Dec interface {
	Node
	decNode()
}

// Program is the root node of one source file.
type Program struct {
	File source.FileID
	Decs []Dec
}

// Ident is a value, constructor or operator name. Op is set when the name
// was written with op, which suspends its infix status.
type Ident struct {
	Token token.Token
	Name  string
	Op    bool
}

func (i *Ident) GetToken() token.Token { return i.Token }
func (i *Ident) Span() source.Span     { return i.Token.Span }

// ValBind is `pat = exp` inside a val declaration.
type ValBind struct {
	Pat  Pat
	Expr Expr
}

// ValDec is `val [tyvars] [rec] bind and ...`.
type ValDec struct {
	Token  token.Token
	Tyvars []token.Token
	Rec    bool
	Binds  []ValBind
	Loc    source.Span
}

func (d *ValDec) decNode()              {}
func (d *ValDec) GetToken() token.Token { return d.Token }
func (d *ValDec) Span() source.Span     { return d.Loc }

// Clause is one `f p1 ... pn [: ty] = exp` line of a fun binding.
type Clause struct {
	Pats     []Pat
	ResultTy Ty
	Body     Expr
	Loc      source.Span
}

// FunBind is one function of a fun declaration.
type FunBind struct {
	Name    *Ident
	Clauses []Clause
	Loc     source.Span
}

// FunDec is `fun [tyvars] bind and ...`.
type FunDec struct {
	Token  token.Token
	Tyvars []token.Token
	Binds  []FunBind
	Loc    source.Span
}

func (d *FunDec) decNode()              {}
func (d *FunDec) GetToken() token.Token { return d.Token }
func (d *FunDec) Span() source.Span     { return d.Loc }

// TypeBind is `[tyvars] name = ty`.
type TypeBind struct {
	Tyvars []token.Token
	Name   *Ident
	Ty     Ty
}

// TypeDec is a type abbreviation.
type TypeDec struct {
	Token token.Token
	Binds []TypeBind
	Loc   source.Span
}

func (d *TypeDec) decNode()              {}
func (d *TypeDec) GetToken() token.Token { return d.Token }
func (d *TypeDec) Span() source.Span     { return d.Loc }

// ConBind is one constructor of a datatype; Arg is nil for constants.
type ConBind struct {
	Name *Ident
	Arg  Ty
}

// DataBind is `[tyvars] name = con | ...`.
type DataBind struct {
	Tyvars []token.Token
	Name   *Ident
	Cons   []ConBind
}

// DatatypeDec declares a group of mutually recursive datatypes.
type DatatypeDec struct {
	Token    token.Token
	Binds    []DataBind
	WithType []TypeBind
	Loc      source.Span
}

func (d *DatatypeDec) decNode()              {}
func (d *DatatypeDec) GetToken() token.Token { return d.Token }
func (d *DatatypeDec) Span() source.Span     { return d.Loc }

// ExnBind declares a new exception constructor, or renames an existing one
// when Alias is set.
type ExnBind struct {
	Name  *Ident
	Arg   Ty
	Alias *Ident
}

// ExceptionDec is `exception bind and ...`.
type ExceptionDec struct {
	Token token.Token
	Binds []ExnBind
	Loc   source.Span
}

func (d *ExceptionDec) decNode()              {}
func (d *ExceptionDec) GetToken() token.Token { return d.Token }
func (d *ExceptionDec) Span() source.Span     { return d.Loc }

// LocalDec is `local decs in decs end`.
type LocalDec struct {
	Token token.Token
	Inner []Dec
	Outer []Dec
	Loc   source.Span
}

func (d *LocalDec) decNode()              {}
func (d *LocalDec) GetToken() token.Token { return d.Token }
func (d *LocalDec) Span() source.Span     { return d.Loc }

// FixityDec is infix, infixr or nonfix. The parser applies it as it reads.
type FixityDec struct {
	Token token.Token
	Prec  int
	Names []*Ident
	Loc   source.Span
}

func (d *FixityDec) decNode()              {}
func (d *FixityDec) GetToken() token.Token { return d.Token }
func (d *FixityDec) Span() source.Span     { return d.Loc }

// ExprDec is a top-level expression; it binds it.
type ExprDec struct {
	Expr Expr
}

func (d *ExprDec) decNode()              {}
func (d *ExprDec) GetToken() token.Token { return d.Expr.GetToken() }
func (d *ExprDec) Span() source.Span     { return d.Expr.Span() }
