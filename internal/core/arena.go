package core

import (
	"github.com/funvibe/smlc/internal/arena"
	"github.com/funvibe/smlc/internal/builtin"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// Arena owns every Core IR and type node of one compilation. NewArena
// installs the built-in table; Release drops everything at once.
type Arena struct {
	Types    *typesystem.TypeArena
	Builtins *builtin.Registry
	Interner *symbols.Interner

	exprs    *arena.Slab[Expr]
	pats     *arena.Slab[Pat]
	lambdas  *arena.Slab[Lambda]
	rules    *arena.Slab[Rule]
	exprRefs *arena.Slab[*Expr]
	patRefs  *arena.Slab[*Pat]
	exprRows *arena.Slab[typesystem.Row[*Expr]]
	patRows  *arena.Slab[typesystem.Row[*Pat]]
	typeRefs *arena.Slab[typesystem.Type]
	decls    *arena.Slab[Decl]

	apps     *arena.Slab[App]
	cases    *arena.Slab[Case]
	cons     *arena.Slab[Con]
	consts   *arena.Slab[Const]
	handles  *arena.Slab[Handle]
	lets     *arena.Slab[Let]
	lists    *arena.Slab[List]
	prims    *arena.Slab[Primitive]
	raises   *arena.Slab[Raise]
	records  *arena.Slab[Record]
	seqs     *arena.Slab[Seq]
	vars     *arena.Slab[Var]
	patApps  *arena.Slab[PatApp]
	patConst *arena.Slab[PatConst]
	patLists *arena.Slab[PatList]
	patRecs  *arena.Slab[PatRecord]
	patVars  *arena.Slab[PatVar]

	wild *PatWild
}

func NewArena(in *symbols.Interner) *Arena {
	types := typesystem.NewTypeArena(in)
	return &Arena{
		Types:    types,
		Builtins: builtin.Install(types, in),
		Interner: in,

		exprs:    arena.NewSlab[Expr](1024),
		pats:     arena.NewSlab[Pat](256),
		lambdas:  arena.NewSlab[Lambda](128),
		rules:    arena.NewSlab[Rule](128),
		exprRefs: arena.NewSlab[*Expr](512),
		patRefs:  arena.NewSlab[*Pat](128),
		exprRows: arena.NewSlab[typesystem.Row[*Expr]](128),
		patRows:  arena.NewSlab[typesystem.Row[*Pat]](128),
		typeRefs: arena.NewSlab[typesystem.Type](256),
		decls:    arena.NewSlab[Decl](128),

		apps:     arena.NewSlab[App](512),
		cases:    arena.NewSlab[Case](64),
		cons:     arena.NewSlab[Con](256),
		consts:   arena.NewSlab[Const](256),
		handles:  arena.NewSlab[Handle](32),
		lets:     arena.NewSlab[Let](64),
		lists:    arena.NewSlab[List](64),
		prims:    arena.NewSlab[Primitive](128),
		raises:   arena.NewSlab[Raise](32),
		records:  arena.NewSlab[Record](128),
		seqs:     arena.NewSlab[Seq](32),
		vars:     arena.NewSlab[Var](512),
		patApps:  arena.NewSlab[PatApp](128),
		patConst: arena.NewSlab[PatConst](64),
		patLists: arena.NewSlab[PatList](32),
		patRecs:  arena.NewSlab[PatRecord](64),
		patVars:  arena.NewSlab[PatVar](256),

		wild: &PatWild{},
	}
}

func (a *Arena) expr(kind ExprKind, ty typesystem.Type, span source.Span) *Expr {
	return a.exprs.Alloc(Expr{Kind: kind, Type: ty, Span: span})
}

func (a *Arena) pat(kind PatKind, ty typesystem.Type, span source.Span) *Pat {
	return a.pats.Alloc(Pat{Kind: kind, Type: ty, Span: span})
}

func (a *Arena) App(fn, arg *Expr, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.apps.Alloc(App{Fn: fn, Arg: arg}), ty, span)
}

func (a *Arena) Case(scrut *Expr, rules []Rule, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.cases.Alloc(Case{Scrutinee: scrut, Rules: a.rules.AllocSlice(rules)}), ty, span)
}

func (a *Arena) Con(con typesystem.Constructor, args []typesystem.Type, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.cons.Alloc(Con{Con: con, TypeArgs: a.typeRefs.AllocSlice(args)}), ty, span)
}

func (a *Arena) Const(lit Literal, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.consts.Alloc(Const{Value: lit}), ty, span)
}

func (a *Arena) Handle(body *Expr, rules []Rule, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.handles.Alloc(Handle{Body: body, Rules: a.rules.AllocSlice(rules)}), ty, span)
}

// Lambda allocates a lambda node without an expression header, for use in
// FunDecl groups.
func (a *Arena) Lambda(arg symbols.Symbol, argTy typesystem.Type, body *Expr) *Lambda {
	return a.lambdas.Alloc(Lambda{Arg: arg, ArgType: argTy, Body: body})
}

// LambdaExpr wraps lam in an expression of type argTy -> body type.
func (a *Arena) LambdaExpr(lam *Lambda, span source.Span) *Expr {
	return a.expr(lam, a.Types.Arrow(lam.ArgType, lam.Body.Type), span)
}

func (a *Arena) Let(decls []Decl, body *Expr, span source.Span) *Expr {
	return a.expr(a.lets.Alloc(Let{Decls: a.decls.AllocSlice(decls), Body: body}), body.Type, span)
}

func (a *Arena) List(elems []*Expr, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.lists.Alloc(List{Elems: a.exprRefs.AllocSlice(elems)}), ty, span)
}

func (a *Arena) Primitive(name symbols.Symbol, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.prims.Alloc(Primitive{Name: name}), ty, span)
}

func (a *Arena) Raise(exn *Expr, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.raises.Alloc(Raise{Exn: exn}), ty, span)
}

// Record sorts rows by label. The caller has already rejected duplicate
// labels.
func (a *Arena) Record(rows []typesystem.Row[*Expr], ty typesystem.Type, span source.Span) *Expr {
	rs := a.exprRows.AllocSlice(rows)
	typesystem.SortRows(rs, a.Interner)
	return a.expr(a.records.Alloc(Record{Rows: rs}), ty, span)
}

func (a *Arena) Seq(exprs []*Expr, span source.Span) *Expr {
	ty := exprs[len(exprs)-1].Type
	return a.expr(a.seqs.Alloc(Seq{Exprs: a.exprRefs.AllocSlice(exprs)}), ty, span)
}

// Retype gives e's node a different type, as when a failed annotation
// replaces the type with a hole.
func (a *Arena) Retype(e *Expr, ty typesystem.Type) *Expr {
	return a.expr(e.Kind, ty, e.Span)
}

func (a *Arena) Var(name symbols.Symbol, ty typesystem.Type, span source.Span) *Expr {
	return a.expr(a.vars.Alloc(Var{Name: name}), ty, span)
}

func (a *Arena) PatApp(con typesystem.Constructor, arg *Pat, ty typesystem.Type, span source.Span) *Pat {
	return a.pat(a.patApps.Alloc(PatApp{Con: con, Arg: arg}), ty, span)
}

func (a *Arena) PatConst(lit Literal, ty typesystem.Type, span source.Span) *Pat {
	return a.pat(a.patConst.Alloc(PatConst{Value: lit}), ty, span)
}

func (a *Arena) PatList(elems []*Pat, ty typesystem.Type, span source.Span) *Pat {
	return a.pat(a.patLists.Alloc(PatList{Elems: a.patRefs.AllocSlice(elems)}), ty, span)
}

func (a *Arena) PatRecord(rows []typesystem.Row[*Pat], ty typesystem.Type, span source.Span) *Pat {
	rs := a.patRows.AllocSlice(rows)
	typesystem.SortRows(rs, a.Interner)
	return a.pat(a.patRecs.Alloc(PatRecord{Rows: rs}), ty, span)
}

func (a *Arena) PatVar(name symbols.Symbol, ty typesystem.Type, span source.Span) *Pat {
	return a.pat(a.patVars.Alloc(PatVar{Name: name}), ty, span)
}

func (a *Arena) PatWild(ty typesystem.Type, span source.Span) *Pat {
	return a.pat(a.wild, ty, span)
}

// Decls copies a declaration list into the arena.
func (a *Arena) Decls(ds []Decl) []Decl {
	return a.decls.AllocSlice(ds)
}

// Stats reports the occupancy of every slab, types included.
func (a *Arena) Stats() arena.Stats {
	st := a.Types.Stats()
	st.Add(a.exprs.Len(), a.exprs.Bytes())
	st.Add(a.pats.Len(), a.pats.Bytes())
	st.Add(a.lambdas.Len(), a.lambdas.Bytes())
	st.Add(a.rules.Len(), a.rules.Bytes())
	st.Add(a.exprRefs.Len(), a.exprRefs.Bytes())
	st.Add(a.patRefs.Len(), a.patRefs.Bytes())
	st.Add(a.exprRows.Len(), a.exprRows.Bytes())
	st.Add(a.patRows.Len(), a.patRows.Bytes())
	st.Add(a.typeRefs.Len(), a.typeRefs.Bytes())
	st.Add(a.decls.Len(), a.decls.Bytes())
	st.Add(a.apps.Len(), a.apps.Bytes())
	st.Add(a.cases.Len(), a.cases.Bytes())
	st.Add(a.cons.Len(), a.cons.Bytes())
	st.Add(a.consts.Len(), a.consts.Bytes())
	st.Add(a.handles.Len(), a.handles.Bytes())
	st.Add(a.lets.Len(), a.lets.Bytes())
	st.Add(a.lists.Len(), a.lists.Bytes())
	st.Add(a.prims.Len(), a.prims.Bytes())
	st.Add(a.raises.Len(), a.raises.Bytes())
	st.Add(a.records.Len(), a.records.Bytes())
	st.Add(a.seqs.Len(), a.seqs.Bytes())
	st.Add(a.vars.Len(), a.vars.Bytes())
	st.Add(a.patApps.Len(), a.patApps.Bytes())
	st.Add(a.patConst.Len(), a.patConst.Bytes())
	st.Add(a.patLists.Len(), a.patLists.Bytes())
	st.Add(a.patRecs.Len(), a.patRecs.Bytes())
	st.Add(a.patVars.Len(), a.patVars.Bytes())
	return st
}

// Release drops every node. Nothing allocated from the arena may be used
// afterwards.
func (a *Arena) Release() {
	a.Types.Release()
	a.exprs.Release()
	a.pats.Release()
	a.lambdas.Release()
	a.rules.Release()
	a.exprRefs.Release()
	a.patRefs.Release()
	a.exprRows.Release()
	a.patRows.Release()
	a.typeRefs.Release()
	a.decls.Release()
	a.apps.Release()
	a.cases.Release()
	a.cons.Release()
	a.consts.Release()
	a.handles.Release()
	a.lets.Release()
	a.lists.Release()
	a.prims.Release()
	a.raises.Release()
	a.records.Release()
	a.seqs.Release()
	a.vars.Release()
	a.patApps.Release()
	a.patConst.Release()
	a.patLists.Release()
	a.patRecs.Release()
	a.patVars.Release()
}
