// Package elaborate turns parsed programs into the typed Core IR.
//
// Elaboration resolves names, infers types with rank-based Hindley-Milner,
// desugars derived forms, checks matches and generalizes bindings under
// the value restriction. It never stops at the first problem: every error
// is recorded and the offending expression gets a fresh type so that the
// rest of the program is still checked.
package elaborate

import (
	"github.com/funvibe/smlc/internal/builtin"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/match"
	"github.com/funvibe/smlc/internal/pipeline"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// Context is the elaboration state of one compilation. Files elaborated
// with the same Context see each other's top-level bindings.
type Context struct {
	arena    *core.Arena
	types    *typesystem.TypeArena
	builtins *builtin.Registry
	in       *symbols.Interner
	errors   *diagnostics.List
	printer  *typesystem.Printer
	checker  *match.Checker

	scopes []*scope
	tyvars []*tyvarScope
	rank   int
	hiding int
	flex   []pendingFlex

	// lets counts the enclosing let expressions. It is the scope depth
	// given to datatypes declared here.
	lets int

	datatypes map[uint32]*typesystem.Datatype
	topLevel  []pipeline.Binding
	topIndex  map[topKey]int
}

type topKey struct {
	name symbols.Symbol
	kind pipeline.BindingKind
}

// New creates a context whose initial environment holds the built-ins of a.
func New(a *core.Arena, errors *diagnostics.List) *Context {
	c := &Context{
		arena:     a,
		types:     a.Types,
		builtins:  a.Builtins,
		in:        a.Interner,
		errors:    errors,
		printer:   typesystem.NewPrinter(a.Interner),
		datatypes: make(map[uint32]*typesystem.Datatype),
		topIndex:  make(map[topKey]int),
	}
	c.checker = match.NewChecker(c.in, c.builtins, c)
	c.scopes = []*scope{c.basis(), newScope()}
	return c
}

// basis builds the scope of built-in types, constructors, exceptions and
// primitives.
func (c *Context) basis() *scope {
	s := newScope()
	for _, tc := range c.builtins.Tycons() {
		if tc.ID == builtin.ArrowID {
			continue
		}
		s.types[tc.Name] = typeEntry{tycon: tc, arity: int(tc.Arity)}
	}
	for _, dt := range c.builtins.Datatypes {
		for _, dc := range dt.Constructors {
			s.values[dc.Con.Name] = value{
				kind:   valCon,
				core:   dc.Con.Name,
				con:    dc.Con,
				scheme: c.types.ConstructorScheme(dt, dc),
			}
		}
	}
	exn := c.types.Con(c.builtins.Exn)
	for _, e := range c.builtins.Exceptions {
		s.values[e.Con.Name] = c.exnValue(e.Con, e.Payload, exn)
	}
	for _, p := range c.builtins.Primitives {
		s.values[p.Name] = value{kind: valPrim, core: p.Name, scheme: p.Scheme}
	}
	return s
}

func (c *Context) exnValue(con typesystem.Constructor, payload, exn typesystem.Type) value {
	t := exn
	if payload != nil {
		t = c.types.Arrow(payload, exn)
	}
	return value{kind: valExn, core: con.Name, con: con, scheme: typesystem.Mono(t)}
}

// Datatype finds a datatype by tycon id, built-in or user-declared.
func (c *Context) Datatype(id uint32) (*typesystem.Datatype, bool) {
	if dt, ok := c.builtins.Datatype(id); ok {
		return dt, true
	}
	dt, ok := c.datatypes[id]
	return dt, ok
}

// TopLevel returns the names bound at top level so far, in declaration
// order. A name bound twice appears once, with its latest binding.
func (c *Context) TopLevel() []pipeline.Binding {
	return c.topLevel
}

// Lookup returns the scheme of a value visible at top level.
func (c *Context) Lookup(name string) (typesystem.Scheme, bool) {
	sym, ok := c.in.Lookup(name)
	if !ok {
		return typesystem.Scheme{}, false
	}
	v, ok := c.lookupValue(sym)
	if !ok {
		return typesystem.Scheme{}, false
	}
	return v.scheme, true
}

// Printer returns the printer used for diagnostics, so callers that show
// types next to messages name variables the same way.
func (c *Context) Printer() *typesystem.Printer {
	return c.printer
}

func (c *Context) fresh() *typesystem.TypeVar {
	return c.types.FreshVar(c.rank)
}

// unify reports a failure at span and returns whether t1 and t2 were
// unified.
func (c *Context) unify(span source.Span, t1, t2 typesystem.Type) bool {
	err := c.types.Unify(t1, t2)
	if err == nil {
		return true
	}
	ue, ok := err.(*typesystem.UnifyError)
	if !ok {
		c.errors.Errorf(diagnostics.ErrMismatch, span, "%s", err.Error())
		return false
	}
	c.errors.Add(diagnostics.NewError(unifyCode(ue.Kind), span, ue.Describe(c.printer)))
	return false
}

func unifyCode(k typesystem.ErrorKind) diagnostics.ErrorCode {
	switch k {
	case typesystem.Occurs:
		return diagnostics.ErrOccurs
	case typesystem.RowArity:
		return diagnostics.ErrRowArity
	case typesystem.MissingLabel:
		return diagnostics.ErrMissingLabel
	case typesystem.TyconArity:
		return diagnostics.ErrTyconArity
	}
	return diagnostics.ErrMismatch
}

// binderName is the Core name of a source binder. Names declared in the
// hidden part of a local get a fresh symbol, since the Core declarations
// of a local are flattened into the enclosing list.
func (c *Context) binderName(name symbols.Symbol) symbols.Symbol {
	if c.hiding > 0 {
		return c.in.Gensym(c.in.Resolve(name))
	}
	return name
}

func (c *Context) intType() typesystem.Type    { return c.types.Con(c.builtins.Int) }
func (c *Context) boolType() typesystem.Type   { return c.types.Con(c.builtins.Bool) }
func (c *Context) unitType() typesystem.Type   { return c.types.Con(c.builtins.Unit) }
func (c *Context) exnType() typesystem.Type    { return c.types.Con(c.builtins.Exn) }
func (c *Context) stringType() typesystem.Type { return c.types.Con(c.builtins.String) }
func (c *Context) listType(elem typesystem.Type) typesystem.Type {
	return c.types.Con(c.builtins.List, elem)
}

func (c *Context) unitExpr(span source.Span) *core.Expr {
	return c.arena.Con(c.builtins.UnitCon, nil, c.unitType(), span)
}

func (c *Context) boolExpr(b bool, span source.Span) *core.Expr {
	con := c.builtins.False
	if b {
		con = c.builtins.True
	}
	return c.arena.Con(con, nil, c.boolType(), span)
}

func (c *Context) boolPat(b bool, span source.Span) *core.Pat {
	con := c.builtins.False
	if b {
		con = c.builtins.True
	}
	return c.arena.PatApp(con, nil, c.boolType(), span)
}
