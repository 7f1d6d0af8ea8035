package elaborate

import (
	"github.com/funvibe/smlc/internal/pipeline"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

type valueKind uint8

const (
	valVar valueKind = iota
	valCon
	valExn
	valPrim
)

// value is what a value identifier denotes. core is the name the Core IR
// uses for it, which differs from the source name for hidden local
// bindings.
type value struct {
	kind   valueKind
	core   symbols.Symbol
	scheme typesystem.Scheme
	con    typesystem.Constructor
	span   source.Span
}

func (v value) isConstructor() bool {
	return v.kind == valCon || v.kind == valExn
}

// typeEntry is a datatype, or an abbreviation when abbrev is set.
type typeEntry struct {
	tycon  typesystem.Tycon
	abbrev bool
	params []*typesystem.TypeVar
	body   typesystem.Type
	arity  int
	span   source.Span
}

// scope is one level of the environment. order and torder keep the
// binding order of values and types for exporting the body of a local.
type scope struct {
	values map[symbols.Symbol]value
	types  map[symbols.Symbol]typeEntry
	order  []symbols.Symbol
	torder []symbols.Symbol
}

func newScope() *scope {
	return &scope{
		values: make(map[symbols.Symbol]value),
		types:  make(map[symbols.Symbol]typeEntry),
	}
}

func (c *Context) pushScope() {
	c.scopes = append(c.scopes, newScope())
}

func (c *Context) popScope() *scope {
	s := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	return s
}

func (c *Context) current() *scope {
	return c.scopes[len(c.scopes)-1]
}

// atTopLevel reports whether bindings go into the program's outermost
// scope.
func (c *Context) atTopLevel() bool {
	return len(c.scopes) == 2
}

func (c *Context) lookupValue(name symbols.Symbol) (value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].values[name]; ok {
			return v, true
		}
	}
	return value{}, false
}

func (c *Context) lookupType(name symbols.Symbol) (typeEntry, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i].types[name]; ok {
			return t, true
		}
	}
	return typeEntry{}, false
}

// bindValue adds name to the innermost scope, recording it when that
// scope is the top level.
func (c *Context) bindValue(name symbols.Symbol, v value, span source.Span) {
	s := c.current()
	v.span = span
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = v
	if c.atTopLevel() {
		kind := pipeline.ValueBinding
		switch v.kind {
		case valCon:
			kind = pipeline.ConstructorBinding
		case valExn:
			kind = pipeline.ExceptionBinding
		}
		c.record(pipeline.Binding{Name: name, Kind: kind, Scheme: v.scheme, Span: span})
	}
}

func (c *Context) bindType(name symbols.Symbol, t typeEntry, span source.Span) {
	s := c.current()
	t.span = span
	if _, ok := s.types[name]; !ok {
		s.torder = append(s.torder, name)
	}
	s.types[name] = t
	if c.atTopLevel() {
		c.record(pipeline.Binding{Name: name, Kind: pipeline.TypeBinding, Scheme: c.typeScheme(t), Span: span})
	}
}

// typeScheme describes a type name as its parameters and expansion.
func (c *Context) typeScheme(t typeEntry) typesystem.Scheme {
	ids := make([]uint32, len(t.params))
	args := make([]typesystem.Type, len(t.params))
	for i, p := range t.params {
		ids[i] = p.ID
		args[i] = p
	}
	if t.abbrev {
		return typesystem.Scheme{Vars: ids, Body: t.body}
	}
	return typesystem.Scheme{Vars: ids, Body: c.types.Con(t.tycon, args...)}
}

func (c *Context) record(b pipeline.Binding) {
	key := topKey{name: b.Name, kind: b.Kind}
	if b.Kind != pipeline.TypeBinding {
		key.kind = pipeline.ValueBinding
	}
	if i, ok := c.topIndex[key]; ok {
		c.topLevel = append(c.topLevel[:i], c.topLevel[i+1:]...)
		for k, j := range c.topIndex {
			if j > i {
				c.topIndex[k] = j - 1
			}
		}
	}
	c.topIndex[key] = len(c.topLevel)
	c.topLevel = append(c.topLevel, b)
}

// exportScope copies the bindings of s into the innermost scope in the
// order they were made.
func (c *Context) exportScope(s *scope) {
	for _, name := range s.torder {
		t := s.types[name]
		c.bindType(name, t, t.span)
	}
	for _, name := range s.order {
		v := s.values[name]
		c.bindValue(name, v, v.span)
	}
}
