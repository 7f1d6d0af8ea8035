package ast

import (
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/token"
)

// WildPat is `_`.
type WildPat struct {
	Token token.Token
}

func (w *WildPat) patNode()              {}
func (w *WildPat) GetToken() token.Token { return w.Token }
func (w *WildPat) Span() source.Span     { return w.Token.Span }

// VarPat is a name in pattern position: a variable, or a nullary
// constructor when one is in scope.
type VarPat struct {
	Name *Ident
}

func (v *VarPat) patNode()              {}
func (v *VarPat) GetToken() token.Token { return v.Name.Token }
func (v *VarPat) Span() source.Span     { return v.Name.Span() }

// ConPat is a constructor applied to an argument pattern. Infix is set for
// `p1 con p2`, whose Arg is the pair.
type ConPat struct {
	Con   *Ident
	Arg   Pat
	Infix bool
	Loc   source.Span
}

func (c *ConPat) patNode()              {}
func (c *ConPat) GetToken() token.Token { return c.Con.Token }
func (c *ConPat) Span() source.Span     { return c.Loc }

// TuplePat is `(p1, ..., pn)`; with no elements it is `()`.
type TuplePat struct {
	Token token.Token
	Elems []Pat
	Loc   source.Span
}

func (t *TuplePat) patNode()              {}
func (t *TuplePat) GetToken() token.Token { return t.Token }
func (t *TuplePat) Span() source.Span     { return t.Loc }

// PatField is `label = pat`; a punned `label` has a VarPat.
type PatField struct {
	Label token.Token
	Pat   Pat
}

// RecordPat is `{l1 = p1, ...}`, flexible when it ends in `...`.
type RecordPat struct {
	Token    token.Token
	Fields   []PatField
	Flexible bool
	Loc      source.Span
}

func (r *RecordPat) patNode()              {}
func (r *RecordPat) GetToken() token.Token { return r.Token }
func (r *RecordPat) Span() source.Span     { return r.Loc }

// ListPat is `[p1, ..., pn]`.
type ListPat struct {
	Token token.Token
	Elems []Pat
	Loc   source.Span
}

func (l *ListPat) patNode()              {}
func (l *ListPat) GetToken() token.Token { return l.Token }
func (l *ListPat) Span() source.Span     { return l.Loc }

// TypedPat is `pat : ty`.
type TypedPat struct {
	Pat Pat
	Ty  Ty
}

func (t *TypedPat) patNode()              {}
func (t *TypedPat) GetToken() token.Token { return t.Pat.GetToken() }
func (t *TypedPat) Span() source.Span     { return t.Pat.Span().To(t.Ty.Span()) }
