// Package builtin holds the fixed registry of primitive type constructors,
// value constructors, exceptions and operators every compilation starts
// with.
//
// Tycon ids and constructor tags are constants, so code can recognise a
// built-in with an integer comparison. Symbols depend on the interner and
// are filled in by Install.
package builtin

import (
	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// Fixed tycon ids. User tycons are numbered after LastID.
const (
	IntID uint32 = iota + 1
	RealID
	StringID
	CharID
	BoolID
	UnitID
	ListID
	RefID
	OptionID
	ExnID
	ArrowID

	LastID = ArrowID
)

// Constructor tags within their tycon.
const (
	TagFalse uint16 = 0
	TagTrue  uint16 = 1
	TagUnit  uint16 = 0
	TagNil   uint16 = 0
	TagCons  uint16 = 1
	TagRef   uint16 = 0
	TagNone  uint16 = 0
	TagSome  uint16 = 1
)

// GenericRank is the rank of the quantified variables in built-in schemes.
// It is above any rank elaboration reaches.
const GenericRank = 1 << 30

// Primitive is an operator the compiler knows. Its value is provided by
// later passes; elaboration only needs the scheme.
type Primitive struct {
	Name   symbols.Symbol
	Scheme typesystem.Scheme
}

// Exception is a predeclared exception constructor.
type Exception struct {
	Con     typesystem.Constructor
	Payload typesystem.Type
}

// Registry is the built-in table of one compilation.
type Registry struct {
	Int, Real, String, Char, Bool, Unit, Exn typesystem.Tycon
	List, Ref, Option, Arrow                 typesystem.Tycon

	True, False, UnitCon, Nil, Cons, RefCon, None, Some typesystem.Constructor

	// Datatypes in declaration order: bool, unit, list, ref, option.
	Datatypes  []*typesystem.Datatype
	Exceptions []Exception
	Primitives []Primitive

	byID   map[uint32]*typesystem.Datatype
	prims  map[symbols.Symbol]int
	exnTag uint16
}

// Install allocates the built-in types into a and registers their names in
// in. It must run before any user tycon is created.
func Install(a *typesystem.TypeArena, in *symbols.Interner) *Registry {
	a.ReserveTycons(LastID)
	tc := func(name string, arity uint8, id uint32) typesystem.Tycon {
		return typesystem.Tycon{Name: in.Intern(name), Arity: arity, ID: id}
	}

	r := &Registry{
		Int:    tc(config.IntTypeName, 0, IntID),
		Real:   tc(config.RealTypeName, 0, RealID),
		String: tc(config.StringTypeName, 0, StringID),
		Char:   tc(config.CharTypeName, 0, CharID),
		Bool:   tc(config.BoolTypeName, 0, BoolID),
		Unit:   tc(config.UnitTypeName, 0, UnitID),
		List:   tc(config.ListTypeName, 1, ListID),
		Ref:    tc(config.RefTypeName, 1, RefID),
		Option: tc(config.OptionTypeName, 1, OptionID),
		Exn:    tc(config.ExnTypeName, 0, ExnID),
		Arrow:  tc(config.ArrowTypeName, 2, ArrowID),
		byID:   make(map[uint32]*typesystem.Datatype),
		prims:  make(map[symbols.Symbol]int),
	}
	a.SetArrow(r.Arrow)

	con := func(name string, t typesystem.Tycon, tag uint16, arity uint8) typesystem.Constructor {
		return typesystem.Constructor{Name: in.Intern(name), Tycon: t, Tag: tag, Arity: arity}
	}
	r.False = con(config.FalseCtorName, r.Bool, TagFalse, 0)
	r.True = con(config.TrueCtorName, r.Bool, TagTrue, 0)
	r.UnitCon = con(config.UnitCtorName, r.Unit, TagUnit, 0)
	r.Nil = con(config.NilCtorName, r.List, TagNil, 0)
	r.Cons = con(config.ConsCtorName, r.List, TagCons, 1)
	r.RefCon = con(config.RefCtorName, r.Ref, TagRef, 1)
	r.None = con(config.NoneCtorName, r.Option, TagNone, 0)
	r.Some = con(config.SomeCtorName, r.Option, TagSome, 1)

	generic := func() *typesystem.TypeVar { return a.FreshVar(GenericRank) }

	r.addDatatype(&typesystem.Datatype{Tycon: r.Bool, Constructors: []typesystem.DataCon{
		{Con: r.False}, {Con: r.True},
	}})
	r.addDatatype(&typesystem.Datatype{Tycon: r.Unit, Constructors: []typesystem.DataCon{
		{Con: r.UnitCon},
	}})

	elem := generic()
	r.addDatatype(&typesystem.Datatype{
		Tycon:  r.List,
		Params: []*typesystem.TypeVar{elem},
		Constructors: []typesystem.DataCon{
			{Con: r.Nil},
			{Con: r.Cons, Payload: a.Tuple(elem, a.Con(r.List, elem))},
		},
	})

	cell := generic()
	r.addDatatype(&typesystem.Datatype{
		Tycon:        r.Ref,
		Params:       []*typesystem.TypeVar{cell},
		Constructors: []typesystem.DataCon{{Con: r.RefCon, Payload: cell}},
	})

	opt := generic()
	r.addDatatype(&typesystem.Datatype{
		Tycon:  r.Option,
		Params: []*typesystem.TypeVar{opt},
		Constructors: []typesystem.DataCon{
			{Con: r.None},
			{Con: r.Some, Payload: opt},
		},
	})

	for _, name := range []string{
		config.MatchExnName, config.BindExnName, config.DivExnName, config.OverflowExnName,
		config.SubscriptExnName, config.SizeExnName, config.EmptyExnName, config.OptionExnName,
	} {
		r.Exceptions = append(r.Exceptions, Exception{Con: con(name, r.Exn, r.NextExnTag(), 0)})
	}
	r.Exceptions = append(r.Exceptions, Exception{
		Con:     con(config.FailExnName, r.Exn, r.NextExnTag(), 1),
		Payload: a.Con(r.String),
	})

	r.installPrimitives(a, in)
	return r
}

func (r *Registry) addDatatype(dt *typesystem.Datatype) {
	r.Datatypes = append(r.Datatypes, dt)
	r.byID[dt.Tycon.ID] = dt
}

// Datatype returns the built-in datatype with the given tycon id.
func (r *Registry) Datatype(id uint32) (*typesystem.Datatype, bool) {
	dt, ok := r.byID[id]
	return dt, ok
}

// Tycons lists every built-in tycon in id order.
func (r *Registry) Tycons() []typesystem.Tycon {
	return []typesystem.Tycon{
		r.Int, r.Real, r.String, r.Char, r.Bool, r.Unit,
		r.List, r.Ref, r.Option, r.Exn, r.Arrow,
	}
}

// Primitive looks up an operator by name.
func (r *Registry) Primitive(name symbols.Symbol) (Primitive, bool) {
	i, ok := r.prims[name]
	if !ok {
		return Primitive{}, false
	}
	return r.Primitives[i], true
}

// NextExnTag allocates the tag of a new exception constructor. exn is open,
// so tags keep growing for the whole compilation.
func (r *Registry) NextExnTag() uint16 {
	tag := r.exnTag
	r.exnTag++
	return tag
}

// IsRef reports whether c is the ref constructor.
func IsRef(c typesystem.Constructor) bool {
	return c.Tycon.ID == RefID && c.Tag == TagRef
}

// IsBuiltin reports whether tc is one of the fixed tycons.
func IsBuiltin(tc typesystem.Tycon) bool {
	return tc.ID >= IntID && tc.ID <= LastID
}
