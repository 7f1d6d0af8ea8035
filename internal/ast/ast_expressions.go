package ast

import (
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/token"
)

func (i *Ident) exprNode() {}

// Constant is an INT, REAL, STRING or CHAR literal; the value is in
// Token.Literal.
type Constant struct {
	Token token.Token
}

func (c *Constant) exprNode()             {}
func (c *Constant) patNode()              {}
func (c *Constant) GetToken() token.Token { return c.Token }
func (c *Constant) Span() source.Span     { return c.Token.Span }

// Selector is `#label`.
type Selector struct {
	Token token.Token
	Label string
	Loc   source.Span
}

func (s *Selector) exprNode()             {}
func (s *Selector) GetToken() token.Token { return s.Token }
func (s *Selector) Span() source.Span     { return s.Loc }

// TupleExpr is `(e1, ..., en)`; with no elements it is `()`.
type TupleExpr struct {
	Token token.Token
	Elems []Expr
	Loc   source.Span
}

func (t *TupleExpr) exprNode()             {}
func (t *TupleExpr) GetToken() token.Token { return t.Token }
func (t *TupleExpr) Span() source.Span     { return t.Loc }

// ExprField is `label = exp`.
type ExprField struct {
	Label token.Token
	Value Expr
}

// RecordExpr is `{l1 = e1, ...}`.
type RecordExpr struct {
	Token  token.Token
	Fields []ExprField
	Loc    source.Span
}

func (r *RecordExpr) exprNode()             {}
func (r *RecordExpr) GetToken() token.Token { return r.Token }
func (r *RecordExpr) Span() source.Span     { return r.Loc }

// ListExpr is `[e1, ..., en]`.
type ListExpr struct {
	Token token.Token
	Elems []Expr
	Loc   source.Span
}

func (l *ListExpr) exprNode()             {}
func (l *ListExpr) GetToken() token.Token { return l.Token }
func (l *ListExpr) Span() source.Span     { return l.Loc }

// SeqExpr is `(e1; ...; en)`.
type SeqExpr struct {
	Token token.Token
	Exprs []Expr
	Loc   source.Span
}

func (s *SeqExpr) exprNode()             {}
func (s *SeqExpr) GetToken() token.Token { return s.Token }
func (s *SeqExpr) Span() source.Span     { return s.Loc }

// LetExpr is `let decs in e1; ...; en end`.
type LetExpr struct {
	Token token.Token
	Decs  []Dec
	Body  []Expr
	Loc   source.Span
}

func (l *LetExpr) exprNode()             {}
func (l *LetExpr) GetToken() token.Token { return l.Token }
func (l *LetExpr) Span() source.Span     { return l.Loc }

// AppExpr is juxtaposition `f x`.
type AppExpr struct {
	Fn  Expr
	Arg Expr
}

func (a *AppExpr) exprNode()             {}
func (a *AppExpr) GetToken() token.Token { return a.Fn.GetToken() }
func (a *AppExpr) Span() source.Span     { return a.Fn.Span().To(a.Arg.Span()) }

// InfixExpr is `l op r` after fixity resolution.
type InfixExpr struct {
	Op    *Ident
	Left  Expr
	Right Expr
}

func (i *InfixExpr) exprNode()             {}
func (i *InfixExpr) GetToken() token.Token { return i.Op.Token }
func (i *InfixExpr) Span() source.Span     { return i.Left.Span().To(i.Right.Span()) }

// TypedExpr is `exp : ty`.
type TypedExpr struct {
	Expr Expr
	Ty   Ty
}

func (t *TypedExpr) exprNode()             {}
func (t *TypedExpr) GetToken() token.Token { return t.Expr.GetToken() }
func (t *TypedExpr) Span() source.Span     { return t.Expr.Span().To(t.Ty.Span()) }

// AndalsoExpr is `l andalso r`.
type AndalsoExpr struct {
	Token token.Token
	Left  Expr
	Right Expr
}

func (a *AndalsoExpr) exprNode()             {}
func (a *AndalsoExpr) GetToken() token.Token { return a.Token }
func (a *AndalsoExpr) Span() source.Span     { return a.Left.Span().To(a.Right.Span()) }

// OrelseExpr is `l orelse r`.
type OrelseExpr struct {
	Token token.Token
	Left  Expr
	Right Expr
}

func (o *OrelseExpr) exprNode()             {}
func (o *OrelseExpr) GetToken() token.Token { return o.Token }
func (o *OrelseExpr) Span() source.Span     { return o.Left.Span().To(o.Right.Span()) }

// Rule is `pat => exp`.
type Rule struct {
	Pat  Pat
	Expr Expr
}

// HandleExpr is `exp handle match`.
type HandleExpr struct {
	Token token.Token
	Expr  Expr
	Rules []Rule
	Loc   source.Span
}

func (h *HandleExpr) exprNode()             {}
func (h *HandleExpr) GetToken() token.Token { return h.Token }
func (h *HandleExpr) Span() source.Span     { return h.Loc }

// RaiseExpr is `raise exp`.
type RaiseExpr struct {
	Token token.Token
	Expr  Expr
}

func (r *RaiseExpr) exprNode()             {}
func (r *RaiseExpr) GetToken() token.Token { return r.Token }
func (r *RaiseExpr) Span() source.Span     { return r.Token.Span.To(r.Expr.Span()) }

// IfExpr is `if c then t else e`.
type IfExpr struct {
	Token token.Token
	Cond  Expr
	Then  Expr
	Else  Expr
}

func (i *IfExpr) exprNode()             {}
func (i *IfExpr) GetToken() token.Token { return i.Token }
func (i *IfExpr) Span() source.Span     { return i.Token.Span.To(i.Else.Span()) }

// WhileExpr is `while c do body`.
type WhileExpr struct {
	Token token.Token
	Cond  Expr
	Body  Expr
}

func (w *WhileExpr) exprNode()             {}
func (w *WhileExpr) GetToken() token.Token { return w.Token }
func (w *WhileExpr) Span() source.Span     { return w.Token.Span.To(w.Body.Span()) }

// CaseExpr is `case exp of match`.
type CaseExpr struct {
	Token token.Token
	Expr  Expr
	Rules []Rule
	Loc   source.Span
}

func (c *CaseExpr) exprNode()             {}
func (c *CaseExpr) GetToken() token.Token { return c.Token }
func (c *CaseExpr) Span() source.Span     { return c.Loc }

// FnExpr is `fn match`.
type FnExpr struct {
	Token token.Token
	Rules []Rule
	Loc   source.Span
}

func (f *FnExpr) exprNode()             {}
func (f *FnExpr) GetToken() token.Token { return f.Token }
func (f *FnExpr) Span() source.Span     { return f.Loc }
