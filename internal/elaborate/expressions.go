package elaborate

import (
	"fmt"

	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/token"
	"github.com/funvibe/smlc/internal/typesystem"
)

func (c *Context) elabExpr(e ast.Expr) *core.Expr {
	switch e := e.(type) {
	case *ast.Ident:
		return c.elabIdent(e)
	case *ast.Constant:
		lit, ty := c.literal(e)
		return c.arena.Const(lit, ty, e.Span())
	case *ast.Selector:
		return c.elabSelector(e)
	case *ast.TupleExpr:
		if len(e.Elems) == 0 {
			return c.unitExpr(e.Span())
		}
		elems := make([]*core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = c.elabExpr(el)
		}
		return c.tuple(elems, e.Span())
	case *ast.RecordExpr:
		return c.elabRecord(e)
	case *ast.ListExpr:
		elem := c.fresh()
		elems := make([]*core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = c.elabExpr(el)
			if !c.unify(el.Span(), elem, elems[i].Type) {
				elems[i] = c.arena.Retype(elems[i], c.fresh())
			}
		}
		return c.arena.List(elems, c.listType(elem), e.Span())
	case *ast.SeqExpr:
		exprs := make([]*core.Expr, len(e.Exprs))
		for i, el := range e.Exprs {
			exprs[i] = c.elabExpr(el)
		}
		return c.arena.Seq(exprs, e.Span())
	case *ast.LetExpr:
		return c.elabLet(e)
	case *ast.AppExpr:
		return c.apply(c.elabExpr(e.Fn), c.elabExpr(e.Arg), e.Span())
	case *ast.InfixExpr:
		op := c.elabIdent(e.Op)
		arg := c.tuple([]*core.Expr{c.elabExpr(e.Left), c.elabExpr(e.Right)}, e.Span())
		return c.apply(op, arg, e.Span())
	case *ast.TypedExpr:
		inner := c.elabExpr(e.Expr)
		if !c.unify(e.Span(), c.elabTy(e.Ty), inner.Type) {
			return c.arena.Retype(inner, c.fresh())
		}
		return inner
	case *ast.AndalsoExpr:
		l, r := c.condition(e.Left), c.condition(e.Right)
		return c.ifThenElse(l, r, c.boolExpr(false, e.Span()), c.boolType(), e.Span())
	case *ast.OrelseExpr:
		l, r := c.condition(e.Left), c.condition(e.Right)
		return c.ifThenElse(l, c.boolExpr(true, e.Span()), r, c.boolType(), e.Span())
	case *ast.IfExpr:
		cond := c.condition(e.Cond)
		then, els := c.elabExpr(e.Then), c.elabExpr(e.Else)
		ty := c.fresh()
		okThen := c.unify(e.Then.Span(), ty, then.Type)
		okElse := c.unify(e.Else.Span(), ty, els.Type)
		if !okThen || !okElse {
			ty = c.fresh()
		}
		return c.ifThenElse(cond, then, els, ty, e.Span())
	case *ast.WhileExpr:
		return c.elabWhile(e)
	case *ast.CaseExpr:
		scrut := c.elabExpr(e.Expr)
		ty := c.fresh()
		rules := c.elabRules(e.Rules, scrut.Type, ty)
		c.checkMatch(rules, e.Span(), true, "match")
		return c.arena.Case(scrut, rules, ty, e.Span())
	case *ast.FnExpr:
		return c.arena.LambdaExpr(c.elabFn(e.Rules, e.Span()), e.Span())
	case *ast.HandleExpr:
		body := c.elabExpr(e.Expr)
		rules := c.elabRules(e.Rules, c.exnType(), body.Type)
		c.checkMatch(rules, e.Span(), false, "handler")
		return c.arena.Handle(body, rules, body.Type, e.Span())
	case *ast.RaiseExpr:
		exn := c.elabExpr(e.Expr)
		c.unify(e.Expr.Span(), c.exnType(), exn.Type)
		return c.arena.Raise(exn, c.fresh(), e.Span())
	}
	panic(fmt.Sprintf("elaborate: unexpected expression %T", e))
}

// elabIdent instantiates the scheme of a name at the current rank.
func (c *Context) elabIdent(id *ast.Ident) *core.Expr {
	name := c.in.Intern(id.Name)
	v, ok := c.lookupValue(name)
	if !ok {
		c.errors.Errorf(diagnostics.ErrUnboundVar, id.Span(), "unbound variable or constructor %s", id.Name)
		return c.arena.Var(name, c.fresh(), id.Span())
	}
	ty, args := c.types.Instantiate(v.scheme, c.rank)
	switch v.kind {
	case valCon, valExn:
		return c.arena.Con(v.con, args, ty, id.Span())
	case valPrim:
		return c.arena.Primitive(v.core, ty, id.Span())
	}
	return c.arena.Var(v.core, ty, id.Span())
}

func (c *Context) literal(k *ast.Constant) (core.Literal, typesystem.Type) {
	tok := k.Token
	switch tok.Type {
	case token.INT:
		n, _ := tok.Literal.(int64)
		return core.Literal{Kind: core.LitInt, Int: n}, c.intType()
	case token.REAL:
		f, _ := tok.Literal.(float64)
		return core.Literal{Kind: core.LitReal, Real: f}, c.types.Con(c.builtins.Real)
	case token.STRING:
		s, _ := tok.Literal.(string)
		return core.Literal{Kind: core.LitString, Str: s}, c.stringType()
	case token.CHAR:
		r, _ := tok.Literal.(rune)
		return core.Literal{Kind: core.LitChar, Char: r}, c.types.Con(c.builtins.Char)
	}
	return core.Literal{}, c.fresh()
}

// apply types fn applied to arg. A failed application has a fresh result
// type.
func (c *Context) apply(fn, arg *core.Expr, span source.Span) *core.Expr {
	if con, ok := fn.Kind.(*core.Con); ok && con.Con.Arity == 0 {
		c.errors.Errorf(diagnostics.ErrConArityMismatch, fn.Span,
			"constructor %s takes no argument", c.in.Resolve(con.Con.Name))
		return c.arena.App(fn, arg, c.fresh(), span)
	}
	switch ft := typesystem.Apply(fn.Type).(type) {
	case *typesystem.TypeVar:
		res := c.fresh()
		c.unify(span, ft, c.types.Arrow(arg.Type, res))
		return c.arena.App(fn, arg, res, span)
	default:
		dom, cod, ok := c.types.IsArrow(ft)
		if !ok {
			c.errors.Errorf(diagnostics.ErrNotAFunction, fn.Span,
				"expression of type %s is not a function", c.printer.Type(ft))
			return c.arena.App(fn, arg, c.fresh(), span)
		}
		c.unify(arg.Span, dom, arg.Type)
		return c.arena.App(fn, arg, cod, span)
	}
}

func (c *Context) tuple(elems []*core.Expr, span source.Span) *core.Expr {
	rows := make([]typesystem.Row[*core.Expr], len(elems))
	tys := make([]typesystem.Type, len(elems))
	for i, el := range elems {
		rows[i] = typesystem.Row[*core.Expr]{Label: c.in.Tuple(i + 1), Data: el, Span: el.Span}
		tys[i] = el.Type
	}
	return c.arena.Record(rows, c.types.Tuple(tys...), span)
}

func (c *Context) elabRecord(e *ast.RecordExpr) *core.Expr {
	if len(e.Fields) == 0 {
		return c.unitExpr(e.Span())
	}
	seen := make(map[symbols.Symbol]bool, len(e.Fields))
	rows := make([]typesystem.Row[*core.Expr], 0, len(e.Fields))
	tys := make([]typesystem.Row[typesystem.Type], 0, len(e.Fields))
	for _, f := range e.Fields {
		l := c.label(f.Label)
		val := c.elabExpr(f.Value)
		if seen[l] {
			c.errors.Errorf(diagnostics.ErrDuplicateLabel, f.Label.Span, "duplicate label %s", f.Label.Lexeme)
			continue
		}
		seen[l] = true
		rows = append(rows, typesystem.Row[*core.Expr]{Label: l, Data: val, Span: f.Label.Span})
		tys = append(tys, typesystem.Row[typesystem.Type]{Label: l, Data: val.Type, Span: f.Label.Span})
	}
	return c.arena.Record(rows, c.types.Record(tys), e.Span())
}

// elabSelector turns #l into fn {l = x, ...} => x.
func (c *Context) elabSelector(e *ast.Selector) *core.Expr {
	span := e.Span()
	l := c.in.Intern(e.Label)
	field := c.fresh()
	recTy := c.types.Flex([]typesystem.Row[typesystem.Type]{{Label: l, Data: field}}, c.fresh())
	arg, x := c.in.Gensym("r"), c.in.Gensym(e.Label)
	pat := c.arena.PatRecord([]typesystem.Row[*core.Pat]{{Label: l, Data: c.arena.PatVar(x, field, span), Span: span}}, recTy, span)
	c.flex = append(c.flex, pendingFlex{pat: pat})
	body := c.arena.Case(c.arena.Var(arg, recTy, span), []core.Rule{{Pat: pat, Expr: c.arena.Var(x, field, span)}}, field, span)
	return c.arena.LambdaExpr(c.arena.Lambda(arg, recTy, body), span)
}

func (c *Context) elabLet(e *ast.LetExpr) *core.Expr {
	c.pushScope()
	c.lets++
	depth := c.lets
	decls := c.elabDecs(e.Decs)
	exprs := make([]*core.Expr, len(e.Body))
	for i, b := range e.Body {
		exprs[i] = c.elabExpr(b)
	}
	c.lets--
	c.popScope()
	body := exprs[0]
	if len(exprs) > 1 {
		body = c.arena.Seq(exprs, e.Span())
	}
	local := func(tc typesystem.Tycon) bool { return tc.ScopeDepth >= depth }
	if tc, ok := mentionsTycon(body.Type, local); ok {
		c.errors.Errorf(diagnostics.ErrEscapingDatatype, e.Span(),
			"type %s escapes the let that declares it", c.in.Resolve(tc.Name))
		body = c.arena.Retype(body, c.fresh())
	}
	return c.arena.Let(decls, body, e.Span())
}

// condition elaborates an expression that must be a bool.
func (c *Context) condition(e ast.Expr) *core.Expr {
	x := c.elabExpr(e)
	c.unify(e.Span(), c.boolType(), x.Type)
	return x
}

func (c *Context) ifThenElse(cond, then, els *core.Expr, ty typesystem.Type, span source.Span) *core.Expr {
	return c.arena.Case(cond, []core.Rule{
		{Pat: c.boolPat(true, then.Span), Expr: then},
		{Pat: c.boolPat(false, els.Span), Expr: els},
	}, ty, span)
}

// elabWhile turns `while c do b` into
//
//	let fun loop () = if c then (b; loop ()) else () in loop () end
func (c *Context) elabWhile(e *ast.WhileExpr) *core.Expr {
	span := e.Span()
	cond := c.condition(e.Cond)
	body := c.elabExpr(e.Body)
	loop, u := c.in.Gensym("loop"), c.in.Gensym("u")
	loopTy := c.types.Arrow(c.unitType(), c.unitType())
	call := func() *core.Expr {
		return c.arena.App(c.arena.Var(loop, loopTy, span), c.unitExpr(span), c.unitType(), span)
	}
	step := c.arena.Seq([]*core.Expr{body, call()}, e.Body.Span())
	lam := c.arena.Lambda(u, c.unitType(), c.ifThenElse(cond, step, c.unitExpr(span), c.unitType(), span))
	decl := &core.FunDecl{Binds: []core.FunBind{{Name: loop, Lambda: lam, Span: span}}}
	return c.arena.Let([]core.Decl{decl}, call(), span)
}

// elabFn builds the lambda of a match. A single variable rule binds the
// argument directly; anything else cases on a fresh argument.
func (c *Context) elabFn(rules []ast.Rule, span source.Span) *core.Lambda {
	argTy, resTy := c.fresh(), c.fresh()
	b := newBinders()
	first := c.elabPat(rules[0].Pat, b)
	if v, ok := first.Kind.(*core.PatVar); ok && len(rules) == 1 {
		body := c.ruleBody(b, rules[0].Expr, resTy)
		return c.arena.Lambda(v.Name, first.Type, body)
	}
	arg := c.in.Gensym("arg")
	out := make([]core.Rule, 0, len(rules))
	out = append(out, c.finishRule(first, b, rules[0].Pat, rules[0].Expr, argTy, resTy))
	out = append(out, c.elabRules(rules[1:], argTy, resTy)...)
	c.checkMatch(out, span, true, "match")
	body := c.arena.Case(c.arena.Var(arg, argTy, span), out, resTy, span)
	return c.arena.Lambda(arg, argTy, body)
}

// elabRules elaborates the rules of a match on a value of type argTy whose
// arms have type resTy.
func (c *Context) elabRules(rules []ast.Rule, argTy, resTy typesystem.Type) []core.Rule {
	out := make([]core.Rule, 0, len(rules))
	for _, r := range rules {
		b := newBinders()
		pat := c.elabPat(r.Pat, b)
		out = append(out, c.finishRule(pat, b, r.Pat, r.Expr, argTy, resTy))
	}
	return out
}

func (c *Context) finishRule(pat *core.Pat, b *binders, src ast.Pat, e ast.Expr, argTy, resTy typesystem.Type) core.Rule {
	c.unifyPat(src.Span(), pat, argTy)
	return core.Rule{Pat: pat, Expr: c.ruleBody(b, e, resTy)}
}

// ruleBody elaborates e with the pattern variables in b in scope. A body
// that does not have type resTy gets a hole.
func (c *Context) ruleBody(b *binders, e ast.Expr, resTy typesystem.Type) *core.Expr {
	c.pushScope()
	c.bindMono(b)
	body := c.elabExpr(e)
	c.popScope()
	if !c.unify(e.Span(), resTy, body.Type) {
		return c.arena.Retype(body, c.fresh())
	}
	return body
}

// unifyPat matches a pattern against the type of the value it inspects.
func (c *Context) unifyPat(span source.Span, pat *core.Pat, want typesystem.Type) {
	if app, ok := pat.Kind.(*core.PatApp); ok {
		if tc, ok := typesystem.Apply(want).(*typesystem.TCon); ok && !tc.Tycon.Is(app.Con.Tycon) {
			c.errors.Errorf(diagnostics.ErrConstructorNotInType, span,
				"constructor %s is not a constructor of type %s", c.in.Resolve(app.Con.Name), c.printer.Type(want))
			return
		}
	}
	c.unify(span, want, pat.Type)
}

// checkMatch reports redundant rules and, unless exhaustive is false, the
// first value no rule covers.
func (c *Context) checkMatch(rules []core.Rule, span source.Span, exhaustive bool, what string) {
	pats := make([]*core.Pat, len(rules))
	for i, r := range rules {
		pats[i] = r.Pat
	}
	res := c.checker.Check(pats, exhaustive)
	for _, i := range res.Redundant {
		c.errors.Warnf(diagnostics.ErrRedundantRule, rules[i].Pat.Span, "redundant rule in %s", what)
	}
	if !res.Exhaustive {
		w := diagnostics.NewWarning(diagnostics.ErrInexhaustiveMatch, span,
			fmt.Sprintf("%s is not exhaustive; not matched: %s", what, res.Witness))
		w.Witness = res.Witness
		c.errors.Add(w)
	}
}
