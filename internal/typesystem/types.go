package typesystem

import (
	"fmt"
	"sort"

	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
)

// Type is the interface for all types in our system. It is a closed sum:
// *TypeVar, *TCon, *TRecord and *TFlex are the only implementations.
type Type interface {
	typeNode()
}

// TypeVar is a unification cell. Link is written at most once by binding;
// Apply may later shorten a chain of links but never changes what a
// variable resolves to.
type TypeVar struct {
	ID   uint32
	Rank int
	link Type
}

func (*TypeVar) typeNode() {}

// Link returns the type the variable is bound to, or nil.
func (v *TypeVar) Link() Type { return v.link }

func (v *TypeVar) IsLinked() bool { return v.link != nil }

func (v *TypeVar) bind(t Type) {
	if v.link != nil {
		panic(fmt.Sprintf("typesystem: type variable %d is already linked", v.ID))
	}
	v.link = t
}

// Tycon is a named type constructor. Two tycons are the same iff their
// ids are equal.
type Tycon struct {
	Name       symbols.Symbol
	Arity      uint8
	ScopeDepth int
	ID         uint32
}

func (tc Tycon) Is(other Tycon) bool { return tc.ID == other.ID }

// TCon is a type constructor applied to exactly Arity arguments.
type TCon struct {
	Tycon Tycon
	Args  []Type
}

func (*TCon) typeNode() {}

// TRecord is a closed record whose rows are sorted by label.
type TRecord struct {
	Rows []Row[Type]
}

func (*TRecord) typeNode() {}

// TFlex is an open record: the listed rows plus whatever Tail resolves to.
type TFlex struct {
	Rows []Row[Type]
	Tail *TypeVar
}

func (*TFlex) typeNode() {}

// Row is a labelled field of a record, in types and in the Core IR alike.
type Row[T any] struct {
	Label symbols.Symbol
	Data  T
	Span  source.Span
}

// MapRow rebuilds a row around new data.
func MapRow[T, S any](r Row[T], f func(T) S) Row[S] {
	return Row[S]{Label: r.Label, Data: f(r.Data), Span: r.Span}
}

// LabelOrder decides record label order. *symbols.Interner implements it.
type LabelOrder interface {
	LabelLess(a, b symbols.Symbol) bool
}

// SortRows sorts rows in place by label.
func SortRows[T any](rows []Row[T], order LabelOrder) {
	sort.SliceStable(rows, func(i, j int) bool {
		return order.LabelLess(rows[i].Label, rows[j].Label)
	})
}

// DuplicateLabel returns the first label that occurs twice in rows, which
// must already be sorted.
func DuplicateLabel[T any](rows []Row[T]) (symbols.Symbol, bool) {
	for i := 1; i < len(rows); i++ {
		if rows[i].Label == rows[i-1].Label {
			return rows[i].Label, true
		}
	}
	return 0, false
}

// Constructor is a datatype value constructor. Arity is 0 (constant) or 1.
type Constructor struct {
	Name  symbols.Symbol
	Tycon Tycon
	Tag   uint16
	Arity uint8
}

func (c Constructor) Is(other Constructor) bool {
	return c.Tycon.ID == other.Tycon.ID && c.Tag == other.Tag
}

// Scheme is a type quantified over the listed type variable ids.
type Scheme struct {
	Vars []uint32
	Body Type
}

// Mono wraps a type in a scheme with no quantifiers.
func Mono(t Type) Scheme {
	return Scheme{Body: t}
}

func (s Scheme) IsMono() bool { return len(s.Vars) == 0 }

// Apply walks the links of t and returns its representative, compressing
// every link on the way to point directly at it.
func Apply(t Type) Type {
	v, ok := t.(*TypeVar)
	if !ok || v.link == nil {
		return t
	}
	rep := v.link
	for {
		rv, ok := rep.(*TypeVar)
		if !ok || rv.link == nil {
			break
		}
		rep = rv.link
	}
	for cur := v; cur.link != rep; {
		next := cur.link.(*TypeVar)
		cur.link = rep
		cur = next
	}
	return rep
}

// FlattenRow collects the rows of a record type across linked flex tails.
// The returned tail is nil when the record is closed. Rows are sorted.
func FlattenRow(t Type, order LabelOrder) ([]Row[Type], *TypeVar) {
	var rows []Row[Type]
	var tail *TypeVar
	for {
		switch r := Apply(t).(type) {
		case *TRecord:
			rows = append(rows, r.Rows...)
			tail = nil
		case *TFlex:
			rows = append(rows, r.Rows...)
			t = r.Tail
			if r.Tail.IsLinked() {
				continue
			}
			tail = r.Tail
		case *TypeVar:
			tail = r
		}
		break
	}
	if order != nil {
		SortRows(rows, order)
	}
	return rows, tail
}

// FreeVars lists the unlinked type variables of t in order of first
// appearance.
func FreeVars(t Type) []*TypeVar {
	var out []*TypeVar
	seen := map[*TypeVar]bool{}
	var walk func(Type)
	walk = func(t Type) {
		switch x := Apply(t).(type) {
		case *TypeVar:
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		case *TCon:
			for _, a := range x.Args {
				walk(a)
			}
		case *TRecord:
			for _, r := range x.Rows {
				walk(r.Data)
			}
		case *TFlex:
			for _, r := range x.Rows {
				walk(r.Data)
			}
			walk(x.Tail)
		}
	}
	walk(t)
	return out
}
