package elaborate

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/token"
	"github.com/funvibe/smlc/internal/typesystem"
)

// tyvarScope binds explicit type variables. A val or fun declaration opens
// one that also takes the variables its annotations mention implicitly;
// a datatype or type declaration opens a closed one holding only its
// parameters, which hides every enclosing scope.
type tyvarScope struct {
	vars    map[string]*typesystem.TypeVar
	order   []*typesystem.TypeVar
	names   []string
	spans   []source.Span
	open    bool
	barrier bool
	rank    int
}

func (c *Context) pushTyvars(open, barrier bool, rank int) *tyvarScope {
	s := &tyvarScope{vars: make(map[string]*typesystem.TypeVar), open: open, barrier: barrier, rank: rank}
	c.tyvars = append(c.tyvars, s)
	return s
}

func (c *Context) popTyvars() {
	c.tyvars = c.tyvars[:len(c.tyvars)-1]
}

func (s *tyvarScope) add(name string, v *typesystem.TypeVar, span source.Span) {
	s.vars[name] = v
	s.order = append(s.order, v)
	s.names = append(s.names, name)
	s.spans = append(s.spans, span)
}

// declareTyvars binds the variables of a tyvar sequence in the innermost
// scope.
func (c *Context) declareTyvars(toks []token.Token) []*typesystem.TypeVar {
	s := c.tyvars[len(c.tyvars)-1]
	out := make([]*typesystem.TypeVar, 0, len(toks))
	for _, tok := range toks {
		if _, dup := s.vars[tok.Lexeme]; dup {
			c.errors.Errorf(diagnostics.ErrDuplicateBinding, tok.Span, "type variable %s is declared twice", tok.Lexeme)
			continue
		}
		v := c.types.FreshVar(s.rank)
		s.add(tok.Lexeme, v, tok.Span)
		out = append(out, v)
	}
	return out
}

func (c *Context) lookupTyvar(tok token.Token) typesystem.Type {
	var open *tyvarScope
	for i := len(c.tyvars) - 1; i >= 0; i-- {
		s := c.tyvars[i]
		if v, ok := s.vars[tok.Lexeme]; ok {
			return v
		}
		if s.open && open == nil {
			open = s
		}
		if s.barrier {
			break
		}
	}
	if open == nil {
		c.errors.Errorf(diagnostics.ErrUnboundType, tok.Span, "unbound type variable %s", tok.Lexeme)
		return c.fresh()
	}
	v := c.types.FreshVar(open.rank)
	open.add(tok.Lexeme, v, tok.Span)
	return v
}

// elabTy translates a type expression.
func (c *Context) elabTy(t ast.Ty) typesystem.Type {
	switch t := t.(type) {
	case *ast.VarTy:
		return c.lookupTyvar(t.Token)
	case *ast.ConTy:
		return c.elabConTy(t)
	case *ast.TupleTy:
		elems := make([]typesystem.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.elabTy(e)
		}
		return c.types.Tuple(elems...)
	case *ast.RecordTy:
		if len(t.Fields) == 0 {
			return c.unitType()
		}
		rows := make([]typesystem.Row[typesystem.Type], 0, len(t.Fields))
		for _, f := range t.Fields {
			rows = append(rows, typesystem.Row[typesystem.Type]{
				Label: c.label(f.Label), Data: c.elabTy(f.Ty), Span: f.Label.Span,
			})
		}
		return c.types.Record(c.uniqueRows(rows))
	case *ast.ArrowTy:
		return c.types.Arrow(c.elabTy(t.Dom), c.elabTy(t.Cod))
	}
	return c.fresh()
}

func (c *Context) elabConTy(t *ast.ConTy) typesystem.Type {
	args := make([]typesystem.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = c.elabTy(a)
	}
	name := c.in.Intern(t.Name.Name)
	entry, ok := c.lookupType(name)
	if !ok {
		c.errors.Errorf(diagnostics.ErrUnboundType, t.Name.Span(), "unbound type constructor %s", t.Name.Name)
		return c.fresh()
	}
	if len(args) != entry.arity {
		c.errors.Errorf(diagnostics.ErrTyconArity, t.Span(),
			"type constructor %s expects %d arguments, got %d", t.Name.Name, entry.arity, len(args))
		return c.fresh()
	}
	if entry.abbrev {
		ids := make([]uint32, len(entry.params))
		for i, p := range entry.params {
			ids[i] = p.ID
		}
		return c.types.InstantiateWith(typesystem.Scheme{Vars: ids, Body: entry.body}, args)
	}
	return c.types.Con(entry.tycon, args...)
}

func (c *Context) label(tok token.Token) symbols.Symbol {
	return c.in.Intern(tok.Lexeme)
}

// uniqueRows reports and drops repeated labels, keeping the first.
func (c *Context) uniqueRows(rows []typesystem.Row[typesystem.Type]) []typesystem.Row[typesystem.Type] {
	seen := make(map[symbols.Symbol]bool, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if seen[r.Label] {
			c.errors.Errorf(diagnostics.ErrDuplicateLabel, r.Span, "duplicate label %s", c.in.Resolve(r.Label))
			continue
		}
		seen[r.Label] = true
		out = append(out, r)
	}
	return out
}

// mentionsTycon reports whether t refers to a tycon for which pred holds.
func mentionsTycon(t typesystem.Type, pred func(typesystem.Tycon) bool) (typesystem.Tycon, bool) {
	switch t := typesystem.Apply(t).(type) {
	case *typesystem.TCon:
		if pred(t.Tycon) {
			return t.Tycon, true
		}
		for _, a := range t.Args {
			if tc, ok := mentionsTycon(a, pred); ok {
				return tc, true
			}
		}
	case *typesystem.TRecord:
		for _, r := range t.Rows {
			if tc, ok := mentionsTycon(r.Data, pred); ok {
				return tc, true
			}
		}
	case *typesystem.TFlex:
		for _, r := range t.Rows {
			if tc, ok := mentionsTycon(r.Data, pred); ok {
				return tc, true
			}
		}
		return mentionsTycon(t.Tail, pred)
	}
	return typesystem.Tycon{}, false
}
