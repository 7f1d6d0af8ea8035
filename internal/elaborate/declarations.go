package elaborate

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/builtin"
	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// ElaborateProgram elaborates the declarations of every program in order
// and returns the Core declarations of all of them.
func (c *Context) ElaborateProgram(progs ...*ast.Program) []core.Decl {
	var out []core.Decl
	for _, p := range progs {
		for _, d := range p.Decs {
			out = append(out, c.elabDec(d)...)
			c.resolveFlex()
		}
	}
	return c.arena.Decls(out)
}

func (c *Context) elabDecs(decs []ast.Dec) []core.Decl {
	var out []core.Decl
	for _, d := range decs {
		out = append(out, c.elabDec(d)...)
	}
	return out
}

func (c *Context) elabDec(d ast.Dec) []core.Decl {
	switch d := d.(type) {
	case *ast.ValDec:
		if d.Rec {
			return c.elabValRec(d)
		}
		return c.elabVal(d)
	case *ast.FunDec:
		return c.elabFun(d)
	case *ast.TypeDec:
		c.elabTypeDec(d)
		return nil
	case *ast.DatatypeDec:
		return c.elabDatatype(d)
	case *ast.ExceptionDec:
		return c.elabException(d)
	case *ast.LocalDec:
		return c.elabLocal(d)
	case *ast.FixityDec:
		return nil
	case *ast.ExprDec:
		it := &ast.Ident{Token: d.GetToken(), Name: config.ItName}
		it.Token.Span = source.Synthetic(d.Span().File, d.Span().Lo)
		return c.elabVal(&ast.ValDec{
			Token: d.GetToken(),
			Binds: []ast.ValBind{{Pat: &ast.VarPat{Name: it}, Expr: d.Expr}},
			Loc:   d.Span(),
		})
	}
	return nil
}

type valBinding struct {
	pat  *core.Pat
	rhs  *core.Expr
	vars *binders
	span source.Span
	// failed is set when the binding itself reported an error.
	failed bool
}

// elabVal elaborates a non-recursive val. Every right-hand side is checked
// before any of the new names is visible.
func (c *Context) elabVal(d *ast.ValDec) []core.Decl {
	tvs := c.pushTyvars(true, false, c.rank+1)
	c.declareTyvars(d.Tyvars)
	c.rank++
	binds := make([]valBinding, 0, len(d.Binds))
	for _, vb := range d.Binds {
		before := c.errors.ErrorCount()
		rhs := c.elabExpr(vb.Expr)
		b := newBinders()
		pat := c.elabPat(vb.Pat, b)
		c.unifyPat(vb.Pat.Span(), pat, rhs.Type)
		binds = append(binds, valBinding{
			pat: pat, rhs: rhs, vars: b, span: vb.Pat.Span(),
			failed: c.errors.ErrorCount() > before,
		})
	}
	c.rank--
	c.popTyvars()

	out := make([]core.Decl, 0, len(binds))
	var generalized []uint32
	type named struct {
		name symbols.Symbol
		v    value
		span source.Span
	}
	var bound []named
	seen := make(map[symbols.Symbol]bool)
	for _, vb := range binds {
		res := c.checker.Check([]*core.Pat{vb.pat}, true)
		if !res.Exhaustive {
			w := diagnostics.NewWarning(diagnostics.ErrInexhaustiveMatch, vb.span,
				"binding is not exhaustive; not matched: "+res.Witness)
			w.Witness = res.Witness
			c.errors.Add(w)
		}
		poly := core.NonExpansive(vb.rhs)
		var tyvars []uint32
		if poly {
			tyvars = typesystem.Generalize(c.rank, vb.pat.Type).Vars
			generalized = append(generalized, tyvars...)
		} else {
			typesystem.LowerRank(vb.pat.Type, c.rank)
		}
		for _, name := range vb.vars.names {
			bv := vb.vars.vars[name]
			if seen[name] {
				c.errors.Errorf(diagnostics.ErrDuplicateBinding, bv.span, "%s is bound twice in one declaration", c.in.Resolve(name))
				continue
			}
			seen[name] = true
			scheme := typesystem.Mono(bv.ty)
			if poly {
				scheme = typesystem.Generalize(c.rank, bv.ty)
			} else if c.rank == 0 && !vb.failed && len(typesystem.FreeVars(bv.ty)) > 0 {
				c.errors.Warnf(diagnostics.ErrValueRestriction, bv.span,
					"type of %s is not generalized because its right-hand side is expansive: %s",
					c.in.Resolve(name), c.printer.Scheme(scheme))
			}
			bound = append(bound, named{name: name, v: value{kind: valVar, core: bv.core, scheme: scheme}, span: bv.span})
		}
		out = append(out, &core.ValDecl{Tyvars: tyvars, Rule: core.Rule{Pat: vb.pat, Expr: vb.rhs}})
	}
	c.checkTyvars(tvs, generalized)
	for _, n := range bound {
		c.bindValue(n.name, n.v, n.span)
	}
	return out
}

// elabValRec elaborates `val rec`, whose bindings must be variables bound
// to fn expressions. It produces the same group as fun.
func (c *Context) elabValRec(d *ast.ValDec) []core.Decl {
	tvs := c.pushTyvars(true, false, c.rank+1)
	c.declareTyvars(d.Tyvars)
	c.rank++
	b := newBinders()
	pats := make([]*core.Pat, len(d.Binds))
	for i, vb := range d.Binds {
		pats[i] = c.elabPat(vb.Pat, b)
		if _, ok := pats[i].Kind.(*core.PatVar); !ok {
			c.errors.Errorf(diagnostics.ErrUnexpectedToken, vb.Pat.Span(), "val rec can only bind variables")
		}
	}
	c.pushScope()
	c.bindMono(b)
	group := &core.FunDecl{}
	for i, vb := range d.Binds {
		rhs := c.elabExpr(vb.Expr)
		lam, ok := rhs.Kind.(*core.Lambda)
		if !ok {
			c.errors.Errorf(diagnostics.ErrNotAFunction, vb.Expr.Span(), "the right-hand side of val rec must be a fn expression")
			continue
		}
		c.unify(vb.Expr.Span(), pats[i].Type, rhs.Type)
		if v, ok := pats[i].Kind.(*core.PatVar); ok {
			group.Binds = append(group.Binds, core.FunBind{Name: v.Name, Lambda: lam, Span: vb.Pat.Span()})
		}
	}
	c.popScope()
	c.rank--
	c.popTyvars()
	return c.finishGroup(group, b, tvs)
}

// elabFun elaborates a group of clausal function definitions.
func (c *Context) elabFun(d *ast.FunDec) []core.Decl {
	tvs := c.pushTyvars(true, false, c.rank+1)
	c.declareTyvars(d.Tyvars)
	c.rank++
	b := newBinders()
	binds := make([]ast.FunBind, 0, len(d.Binds))
	for _, fb := range d.Binds {
		name := c.in.Intern(fb.Name.Name)
		if _, dup := b.vars[name]; dup {
			c.errors.Errorf(diagnostics.ErrDuplicateBinding, fb.Name.Span(), "function %s is defined twice in one declaration", fb.Name.Name)
			continue
		}
		b.names = append(b.names, name)
		b.vars[name] = binder{core: c.binderName(name), ty: c.fresh(), span: fb.Name.Span()}
		binds = append(binds, fb)
	}
	c.pushScope()
	c.bindMono(b)
	group := &core.FunDecl{}
	for _, fb := range binds {
		lam := c.elabClauses(fb)
		fv := b.vars[c.in.Intern(fb.Name.Name)]
		c.unify(fb.Loc, fv.ty, c.types.Arrow(lam.ArgType, lam.Body.Type))
		group.Binds = append(group.Binds, core.FunBind{Name: fv.core, Lambda: lam, Span: fb.Loc})
	}
	c.popScope()
	c.rank--
	c.popTyvars()
	return c.finishGroup(group, b, tvs)
}

// finishGroup generalizes the functions of a recursive group and binds
// them.
func (c *Context) finishGroup(group *core.FunDecl, b *binders, tvs *tyvarScope) []core.Decl {
	seen := make(map[uint32]bool)
	schemes := make([]typesystem.Scheme, len(b.names))
	for i, name := range b.names {
		schemes[i] = typesystem.Generalize(c.rank, b.vars[name].ty)
		for _, id := range schemes[i].Vars {
			if !seen[id] {
				seen[id] = true
				group.Tyvars = append(group.Tyvars, id)
			}
		}
	}
	c.checkTyvars(tvs, group.Tyvars)
	for i, name := range b.names {
		bv := b.vars[name]
		c.bindValue(name, value{kind: valVar, core: bv.core, scheme: schemes[i]}, bv.span)
	}
	if len(group.Binds) == 0 {
		return nil
	}
	return []core.Decl{group}
}

// elabClauses compiles the clauses of one function into curried lambdas
// around a case on the tuple of arguments.
func (c *Context) elabClauses(fb ast.FunBind) *core.Lambda {
	span := fb.Loc
	clauses := fb.Clauses
	n := len(clauses[0].Pats)
	resTy := c.fresh()

	if len(clauses) == 1 && n == 1 {
		b := newBinders()
		pat := c.elabPat(clauses[0].Pats[0], b)
		if v, ok := pat.Kind.(*core.PatVar); ok {
			return c.arena.Lambda(v.Name, pat.Type, c.clauseBody(b, clauses[0], resTy))
		}
		argTy := c.fresh()
		c.unifyPat(clauses[0].Pats[0].Span(), pat, argTy)
		rule := core.Rule{Pat: pat, Expr: c.clauseBody(b, clauses[0], resTy)}
		c.checkMatch([]core.Rule{rule}, span, true, "function "+fb.Name.Name)
		arg := c.in.Gensym("arg")
		body := c.arena.Case(c.arena.Var(arg, argTy, span), []core.Rule{rule}, resTy, span)
		return c.arena.Lambda(arg, argTy, body)
	}

	args := make([]symbols.Symbol, n)
	argTys := make([]typesystem.Type, n)
	for i := range args {
		args[i] = c.in.Gensym("arg")
		argTys[i] = c.fresh()
	}
	rules := make([]core.Rule, 0, len(clauses))
	for _, cl := range clauses {
		if len(cl.Pats) != n {
			c.errors.Errorf(diagnostics.ErrMismatch, cl.Loc,
				"clauses of %s take %d arguments, this one takes %d", fb.Name.Name, n, len(cl.Pats))
			continue
		}
		b := newBinders()
		pats := make([]*core.Pat, n)
		for i, p := range cl.Pats {
			pats[i] = c.elabPat(p, b)
			c.unifyPat(p.Span(), pats[i], argTys[i])
		}
		pat := pats[0]
		if n > 1 {
			rows := make([]typesystem.Row[*core.Pat], n)
			for i, p := range pats {
				rows[i] = typesystem.Row[*core.Pat]{Label: c.in.Tuple(i + 1), Data: p, Span: p.Span}
			}
			pat = c.arena.PatRecord(rows, c.types.Tuple(argTys...), cl.Loc)
		}
		rules = append(rules, core.Rule{Pat: pat, Expr: c.clauseBody(b, cl, resTy)})
	}
	c.checkMatch(rules, span, true, "function "+fb.Name.Name)

	var scrut *core.Expr
	if n == 1 {
		scrut = c.arena.Var(args[0], argTys[0], span)
	} else {
		vars := make([]*core.Expr, n)
		for i := range args {
			vars[i] = c.arena.Var(args[i], argTys[i], span)
		}
		scrut = c.tuple(vars, span)
	}
	body := c.arena.Case(scrut, rules, resTy, span)
	for i := n - 1; i > 0; i-- {
		body = c.arena.LambdaExpr(c.arena.Lambda(args[i], argTys[i], body), span)
	}
	return c.arena.Lambda(args[0], argTys[0], body)
}

func (c *Context) clauseBody(b *binders, cl ast.Clause, resTy typesystem.Type) *core.Expr {
	if cl.ResultTy != nil {
		c.unify(cl.ResultTy.Span(), c.elabTy(cl.ResultTy), resTy)
	}
	return c.ruleBody(b, cl.Body, resTy)
}

// checkTyvars reports type variables of a declaration that were not
// generalized by it: those unified with a type, with each other, or with a
// variable of the enclosing environment.
func (c *Context) checkTyvars(tvs *tyvarScope, generalized []uint32) {
	gen := make(map[uint32]bool, len(generalized))
	for _, id := range generalized {
		gen[id] = true
	}
	owner := make(map[*typesystem.TypeVar]string)
	for i, v := range tvs.order {
		name := tvs.names[i]
		rep, ok := typesystem.Apply(v).(*typesystem.TypeVar)
		switch {
		case !ok:
			c.errors.Errorf(diagnostics.ErrEscapingTyvar, tvs.spans[i],
				"type variable %s is used at type %s", name, c.printer.Type(v))
		case owner[rep] != "":
			c.errors.Errorf(diagnostics.ErrEscapingTyvar, tvs.spans[i],
				"type variables %s and %s are the same type", owner[rep], name)
		case rep.Rank <= c.rank && !gen[rep.ID]:
			c.errors.Errorf(diagnostics.ErrEscapingTyvar, tvs.spans[i],
				"type variable %s cannot be generalized here", name)
		default:
			owner[rep] = name
		}
	}
}

// elabTypeDec elaborates abbreviations. The bindings of one declaration do
// not see each other.
func (c *Context) elabTypeDec(d *ast.TypeDec) {
	entries := c.typeBinds(d.Binds)
	for i, tb := range d.Binds {
		c.bindType(c.in.Intern(tb.Name.Name), entries[i], tb.Name.Span())
	}
}

func (c *Context) typeBinds(binds []ast.TypeBind) []typeEntry {
	out := make([]typeEntry, len(binds))
	for i, tb := range binds {
		c.pushTyvars(false, true, builtin.GenericRank)
		params := c.declareTyvars(tb.Tyvars)
		body := c.elabTy(tb.Ty)
		c.popTyvars()
		out[i] = typeEntry{abbrev: true, params: params, body: body, arity: len(params)}
	}
	return out
}

// elabDatatype declares a group of datatypes. All names of the group are
// in scope in every constructor payload and withtype abbreviation.
func (c *Context) elabDatatype(d *ast.DatatypeDec) []core.Decl {
	depth := c.lets
	type pending struct {
		bind   ast.DataBind
		tycon  typesystem.Tycon
		params []*typesystem.TypeVar
		tvs    *tyvarScope
	}
	group := make([]pending, 0, len(d.Binds))
	names := make(map[symbols.Symbol]bool)
	for _, db := range d.Binds {
		name := c.in.Intern(db.Name.Name)
		if names[name] {
			c.errors.Errorf(diagnostics.ErrDuplicateBinding, db.Name.Span(), "type %s is declared twice", db.Name.Name)
			continue
		}
		names[name] = true
		tvs := c.pushTyvars(false, true, builtin.GenericRank)
		params := c.declareTyvars(db.Tyvars)
		c.popTyvars()
		tc := c.types.NewTycon(name, uint8(len(params)), depth)
		c.bindType(name, typeEntry{tycon: tc, params: params, arity: len(params)}, db.Name.Span())
		group = append(group, pending{bind: db, tycon: tc, params: params, tvs: tvs})
	}
	if len(d.WithType) > 0 {
		entries := c.typeBinds(d.WithType)
		for i, tb := range d.WithType {
			c.bindType(c.in.Intern(tb.Name.Name), entries[i], tb.Name.Span())
		}
	}

	out := make([]core.Decl, 0, len(group))
	cons := make(map[symbols.Symbol]bool)
	var datatypes []*typesystem.Datatype
	for _, g := range group {
		dt := &typesystem.Datatype{Tycon: g.tycon, Params: g.params}
		c.tyvars = append(c.tyvars, g.tvs)
		for _, cb := range g.bind.Cons {
			name := c.in.Intern(cb.Name.Name)
			if cons[name] {
				c.errors.Errorf(diagnostics.ErrDuplicateBinding, cb.Name.Span(), "constructor %s is declared twice", cb.Name.Name)
				continue
			}
			cons[name] = true
			dc := typesystem.DataCon{Con: typesystem.Constructor{
				Name: name, Tycon: g.tycon, Tag: uint16(len(dt.Constructors)),
			}}
			if cb.Arg != nil {
				dc.Payload = c.elabTy(cb.Arg)
				dc.Con.Arity = 1
			}
			dt.Constructors = append(dt.Constructors, dc)
		}
		c.popTyvars()
		c.datatypes[g.tycon.ID] = dt
		datatypes = append(datatypes, dt)
		out = append(out, &core.DatatypeDecl{Data: dt})
	}
	for i, dt := range datatypes {
		for _, dc := range dt.Constructors {
			span := group[i].bind.Name.Span()
			for _, cb := range group[i].bind.Cons {
				if cb.Name.Name == c.in.Resolve(dc.Con.Name) {
					span = cb.Name.Span()
					break
				}
			}
			c.bindValue(dc.Con.Name, value{
				kind:   valCon,
				core:   dc.Con.Name,
				con:    dc.Con,
				scheme: c.types.ConstructorScheme(dt, dc),
			}, span)
		}
	}
	return out
}

// elabException declares new exception constructors or aliases existing
// ones. Payload types may only mention type variables of an enclosing
// declaration.
func (c *Context) elabException(d *ast.ExceptionDec) []core.Decl {
	var out []core.Decl
	exn := c.exnType()
	for _, eb := range d.Binds {
		name := c.in.Intern(eb.Name.Name)
		if eb.Alias != nil {
			v, ok := c.lookupValue(c.in.Intern(eb.Alias.Name))
			if !ok || v.kind != valExn {
				c.errors.Errorf(diagnostics.ErrUnboundCon, eb.Alias.Span(), "unbound exception %s", eb.Alias.Name)
				continue
			}
			c.bindValue(name, v, eb.Name.Span())
			continue
		}
		con := typesystem.Constructor{Name: name, Tycon: c.builtins.Exn, Tag: c.builtins.NextExnTag()}
		var payload typesystem.Type
		if eb.Arg != nil {
			payload = c.elabTy(eb.Arg)
			con.Arity = 1
		}
		c.bindValue(name, c.exnValue(con, payload, exn), eb.Name.Span())
		out = append(out, &core.ExnDecl{Con: con, Payload: payload})
	}
	return out
}

// elabLocal elaborates `local inner in outer end`. Only the names of outer
// stay visible; the Core declarations of both parts are returned in order.
func (c *Context) elabLocal(d *ast.LocalDec) []core.Decl {
	c.pushScope()
	c.hiding++
	inner := c.elabDecs(d.Inner)
	c.hiding--
	c.pushScope()
	outer := c.elabDecs(d.Outer)
	body := c.popScope()
	c.popScope()
	c.exportScope(body)
	return append(inner, outer...)
}
