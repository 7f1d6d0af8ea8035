package ast

import (
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/token"
)

// VarTy is a type variable such as 'a.
type VarTy struct {
	Token token.Token
}

func (v *VarTy) tyNode()               {}
func (v *VarTy) GetToken() token.Token { return v.Token }
func (v *VarTy) Span() source.Span     { return v.Token.Span }

// ConTy is a type constructor applied to arguments: int, 'a list,
// (int, bool) pair.
type ConTy struct {
	Name *Ident
	Args []Ty
	Loc  source.Span
}

func (c *ConTy) tyNode()               {}
func (c *ConTy) GetToken() token.Token { return c.Name.Token }
func (c *ConTy) Span() source.Span     { return c.Loc }

// TupleTy is `t1 * ... * tn`.
type TupleTy struct {
	Elems []Ty
}

func (t *TupleTy) tyNode()               {}
func (t *TupleTy) GetToken() token.Token { return t.Elems[0].GetToken() }
func (t *TupleTy) Span() source.Span     { return t.Elems[0].Span().To(t.Elems[len(t.Elems)-1].Span()) }

// TyField is `label : ty`.
type TyField struct {
	Label token.Token
	Ty    Ty
}

// RecordTy is `{l1 : t1, ...}`.
type RecordTy struct {
	Token  token.Token
	Fields []TyField
	Loc    source.Span
}

func (r *RecordTy) tyNode()               {}
func (r *RecordTy) GetToken() token.Token { return r.Token }
func (r *RecordTy) Span() source.Span     { return r.Loc }

// ArrowTy is `dom -> cod`.
type ArrowTy struct {
	Dom Ty
	Cod Ty
}

func (a *ArrowTy) tyNode()               {}
func (a *ArrowTy) GetToken() token.Token { return a.Dom.GetToken() }
func (a *ArrowTy) Span() source.Span     { return a.Dom.Span().To(a.Cod.Span()) }
