package typesystem

import (
	"fmt"

	"github.com/funvibe/smlc/internal/arena"
	"github.com/funvibe/smlc/internal/symbols"
)

// Labels is what the type arena needs to know about record labels.
type Labels interface {
	LabelOrder
	Tuple(i int) symbols.Symbol
}

// TypeArena allocates every type node of one compilation and hands out
// fresh type variables and tycon ids.
type TypeArena struct {
	vars    *arena.Slab[TypeVar]
	cons    *arena.Slab[TCon]
	records *arena.Slab[TRecord]
	flexes  *arena.Slab[TFlex]
	args    *arena.Slab[Type]
	rows    *arena.Slab[Row[Type]]

	labels    Labels
	arrow     Tycon
	hasArrow  bool
	nextVar   uint32
	nextTycon uint32
}

func NewTypeArena(labels Labels) *TypeArena {
	return &TypeArena{
		vars:    arena.NewSlab[TypeVar](512),
		cons:    arena.NewSlab[TCon](512),
		records: arena.NewSlab[TRecord](128),
		flexes:  arena.NewSlab[TFlex](64),
		args:    arena.NewSlab[Type](1024),
		rows:    arena.NewSlab[Row[Type]](256),
		labels:  labels,
	}
}

// Labels returns the label order the arena sorts records by.
func (a *TypeArena) Labels() Labels { return a.labels }

// FreshVar allocates an unlinked type variable at the given rank.
func (a *TypeArena) FreshVar(rank int) *TypeVar {
	a.nextVar++
	return a.vars.Alloc(TypeVar{ID: a.nextVar, Rank: rank})
}

// NewTycon allocates a tycon with the next free id.
func (a *TypeArena) NewTycon(name symbols.Symbol, arity uint8, depth int) Tycon {
	a.nextTycon++
	return Tycon{Name: name, Arity: arity, ScopeDepth: depth, ID: a.nextTycon}
}

// ReserveTycons makes sure NewTycon never hands out an id at or below n.
// Built-in tycons use the reserved range.
func (a *TypeArena) ReserveTycons(n uint32) {
	if a.nextTycon < n {
		a.nextTycon = n
	}
}

// SetArrow registers the function tycon used by Arrow.
func (a *TypeArena) SetArrow(tc Tycon) {
	if tc.Arity != 2 {
		panic("typesystem: function tycon must have arity 2")
	}
	a.arrow = tc
	a.hasArrow = true
}

// Con applies tc to args. The caller is responsible for the arity check;
// a mismatch here is a compiler bug.
func (a *TypeArena) Con(tc Tycon, args ...Type) *TCon {
	if len(args) != int(tc.Arity) {
		panic(fmt.Sprintf("typesystem: tycon %d expects %d arguments, got %d", tc.ID, tc.Arity, len(args)))
	}
	return a.cons.Alloc(TCon{Tycon: tc, Args: a.args.AllocSlice(args)})
}

// Arrow builds dom -> cod.
func (a *TypeArena) Arrow(dom, cod Type) *TCon {
	if !a.hasArrow {
		panic("typesystem: function tycon not installed")
	}
	return a.Con(a.arrow, dom, cod)
}

// IsArrow reports whether t resolves to a function type and returns its
// domain and codomain.
func (a *TypeArena) IsArrow(t Type) (Type, Type, bool) {
	c, ok := Apply(t).(*TCon)
	if !ok || !a.hasArrow || !c.Tycon.Is(a.arrow) {
		return nil, nil, false
	}
	return c.Args[0], c.Args[1], true
}

// Record builds a closed record. The rows are copied and sorted.
func (a *TypeArena) Record(rows []Row[Type]) *TRecord {
	rs := a.rows.AllocSlice(rows)
	SortRows(rs, a.labels)
	return a.records.Alloc(TRecord{Rows: rs})
}

// Tuple builds the record {1: ts[0], 2: ts[1], ...}.
func (a *TypeArena) Tuple(ts ...Type) *TRecord {
	rows := make([]Row[Type], len(ts))
	for i, t := range ts {
		rows[i] = Row[Type]{Label: a.labels.Tuple(i + 1), Data: t}
	}
	return a.Record(rows)
}

// Flex builds an open record with the given rows and tail.
func (a *TypeArena) Flex(rows []Row[Type], tail *TypeVar) *TFlex {
	rs := a.rows.AllocSlice(rows)
	SortRows(rs, a.labels)
	return a.flexes.Alloc(TFlex{Rows: rs, Tail: tail})
}

// VarCount returns how many type variables have been allocated.
func (a *TypeArena) VarCount() uint32 { return a.nextVar }

// Stats reports the occupancy of every type slab.
func (a *TypeArena) Stats() arena.Stats {
	var st arena.Stats
	st.Add(a.vars.Len(), a.vars.Bytes())
	st.Add(a.cons.Len(), a.cons.Bytes())
	st.Add(a.records.Len(), a.records.Bytes())
	st.Add(a.flexes.Len(), a.flexes.Bytes())
	st.Add(a.args.Len(), a.args.Bytes())
	st.Add(a.rows.Len(), a.rows.Bytes())
	return st
}

// Release drops every type node. Types handed out earlier must not be used
// afterwards.
func (a *TypeArena) Release() {
	a.vars.Release()
	a.cons.Release()
	a.records.Release()
	a.flexes.Release()
	a.args.Release()
	a.rows.Release()
}
