package elaborate

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// binders collects the variables of the patterns of one rule or clause.
type binders struct {
	names []symbols.Symbol
	vars  map[symbols.Symbol]binder
}

type binder struct {
	core symbols.Symbol
	ty   typesystem.Type
	span source.Span
}

func newBinders() *binders {
	return &binders{vars: make(map[symbols.Symbol]binder)}
}

// bindMono makes every collected variable visible with a monomorphic type.
func (c *Context) bindMono(b *binders) {
	for _, name := range b.names {
		v := b.vars[name]
		c.bindValue(name, value{kind: valVar, core: v.core, scheme: typesystem.Mono(v.ty)}, v.span)
	}
}

// pendingFlex is a record pattern with `...` whose row must be closed by
// the end of the enclosing top-level declaration.
type pendingFlex struct {
	pat *core.Pat
}

func (c *Context) elabPat(p ast.Pat, b *binders) *core.Pat {
	switch p := p.(type) {
	case *ast.WildPat:
		return c.arena.PatWild(c.fresh(), p.Span())
	case *ast.Constant:
		lit, ty := c.literal(p)
		return c.arena.PatConst(lit, ty, p.Span())
	case *ast.VarPat:
		return c.elabVarPat(p, b)
	case *ast.ConPat:
		return c.elabConPat(p, b)
	case *ast.TuplePat:
		if len(p.Elems) == 0 {
			return c.arena.PatApp(c.builtins.UnitCon, nil, c.unitType(), p.Span())
		}
		rows := make([]typesystem.Row[*core.Pat], len(p.Elems))
		tys := make([]typesystem.Type, len(p.Elems))
		for i, e := range p.Elems {
			sub := c.elabPat(e, b)
			rows[i] = typesystem.Row[*core.Pat]{Label: c.in.Tuple(i + 1), Data: sub, Span: e.Span()}
			tys[i] = sub.Type
		}
		return c.arena.PatRecord(rows, c.types.Tuple(tys...), p.Span())
	case *ast.RecordPat:
		return c.elabRecordPat(p, b)
	case *ast.ListPat:
		elem := c.fresh()
		elems := make([]*core.Pat, len(p.Elems))
		for i, e := range p.Elems {
			elems[i] = c.elabPat(e, b)
			c.unify(e.Span(), elems[i].Type, elem)
		}
		return c.arena.PatList(elems, c.listType(elem), p.Span())
	case *ast.TypedPat:
		inner := c.elabPat(p.Pat, b)
		c.unify(p.Span(), inner.Type, c.elabTy(p.Ty))
		return inner
	}
	return c.arena.PatWild(c.fresh(), p.Span())
}

// elabVarPat turns a name into a constructor pattern when it names a
// constructor in scope, and into a new variable otherwise.
func (c *Context) elabVarPat(p *ast.VarPat, b *binders) *core.Pat {
	name := c.in.Intern(p.Name.Name)
	if v, ok := c.lookupValue(name); ok && v.isConstructor() {
		ty, _ := c.types.Instantiate(v.scheme, c.rank)
		if v.con.Arity != 0 {
			c.errors.Errorf(diagnostics.ErrConArityMismatch, p.Span(), "constructor %s needs an argument", p.Name.Name)
			if _, cod, ok := c.types.IsArrow(ty); ok {
				ty = cod
			}
			return c.arena.PatWild(ty, p.Span())
		}
		return c.arena.PatApp(v.con, nil, ty, p.Span())
	}
	ty := c.fresh()
	if _, dup := b.vars[name]; dup {
		c.errors.Errorf(diagnostics.ErrDuplicateBinding, p.Span(), "variable %s is bound twice in the same pattern", p.Name.Name)
		return c.arena.PatWild(ty, p.Span())
	}
	sym := c.binderName(name)
	b.names = append(b.names, name)
	b.vars[name] = binder{core: sym, ty: ty, span: p.Span()}
	return c.arena.PatVar(sym, ty, p.Span())
}

func (c *Context) elabConPat(p *ast.ConPat, b *binders) *core.Pat {
	name := c.in.Intern(p.Con.Name)
	v, ok := c.lookupValue(name)
	if !ok || !v.isConstructor() {
		c.errors.Errorf(diagnostics.ErrUnboundCon, p.Con.Span(), "unbound constructor %s", p.Con.Name)
		c.elabPat(p.Arg, b)
		return c.arena.PatWild(c.fresh(), p.Span())
	}
	ty, _ := c.types.Instantiate(v.scheme, c.rank)
	if v.con.Arity == 0 {
		c.errors.Errorf(diagnostics.ErrConArityMismatch, p.Span(), "constructor %s takes no argument", p.Con.Name)
		c.elabPat(p.Arg, b)
		return c.arena.PatApp(v.con, nil, ty, p.Span())
	}
	dom, cod, _ := c.types.IsArrow(ty)
	arg := c.elabPat(p.Arg, b)
	c.unify(p.Arg.Span(), arg.Type, dom)
	return c.arena.PatApp(v.con, arg, cod, p.Span())
}

func (c *Context) elabRecordPat(p *ast.RecordPat, b *binders) *core.Pat {
	if len(p.Fields) == 0 && !p.Flexible {
		return c.arena.PatApp(c.builtins.UnitCon, nil, c.unitType(), p.Span())
	}
	seen := make(map[symbols.Symbol]bool, len(p.Fields))
	rows := make([]typesystem.Row[*core.Pat], 0, len(p.Fields))
	tys := make([]typesystem.Row[typesystem.Type], 0, len(p.Fields))
	for _, f := range p.Fields {
		l := c.label(f.Label)
		sub := c.elabPat(f.Pat, b)
		if seen[l] {
			c.errors.Errorf(diagnostics.ErrDuplicateLabel, f.Label.Span, "duplicate label %s", f.Label.Lexeme)
			continue
		}
		seen[l] = true
		rows = append(rows, typesystem.Row[*core.Pat]{Label: l, Data: sub, Span: f.Label.Span})
		tys = append(tys, typesystem.Row[typesystem.Type]{Label: l, Data: sub.Type, Span: f.Label.Span})
	}
	if !p.Flexible {
		return c.arena.PatRecord(rows, c.types.Record(tys), p.Span())
	}
	pat := c.arena.PatRecord(rows, c.types.Flex(tys, c.fresh()), p.Span())
	c.flex = append(c.flex, pendingFlex{pat: pat})
	return pat
}

// resolveFlex checks that every pending open record pattern now has a
// closed type. The pattern keeps the rows written; its type lists the
// rest. A row that is still open is reported and closed with the labels
// written.
func (c *Context) resolveFlex() {
	pending := c.flex
	c.flex = nil
	for _, f := range pending {
		_, tail := typesystem.FlattenRow(f.pat.Type, nil)
		if tail == nil {
			continue
		}
		c.errors.Errorf(diagnostics.ErrRowArity, f.pat.Span,
			"unresolved flexible record %s; annotate its type", c.printer.Type(f.pat.Type))
		c.types.Unify(tail, c.types.Record(nil))
	}
}
