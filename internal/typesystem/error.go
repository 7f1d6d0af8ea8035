package typesystem

import (
	"fmt"

	"github.com/funvibe/smlc/internal/symbols"
)

// ErrorKind classifies a unification failure.
type ErrorKind int

const (
	Mismatch ErrorKind = iota
	Occurs
	RowArity
	MissingLabel
	TyconArity
)

func (k ErrorKind) String() string {
	switch k {
	case Mismatch:
		return "Mismatch"
	case Occurs:
		return "Occurs"
	case RowArity:
		return "RowArity"
	case MissingLabel:
		return "MissingLabel"
	case TyconArity:
		return "TyconArity"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// UnifyError describes why two types could not be unified. Which fields
// are set depends on Kind:
//
//	Mismatch      Left, Right
//	Occurs        Var, Right
//	RowArity      Left, Right
//	MissingLabel  Label
//	TyconArity    Tycon, Expected, Got
type UnifyError struct {
	Kind     ErrorKind
	Left     Type
	Right    Type
	Var      *TypeVar
	Label    symbols.Symbol
	Tycon    Tycon
	Expected int
	Got      int
}

func (e *UnifyError) Error() string {
	switch e.Kind {
	case Mismatch:
		return "type mismatch"
	case Occurs:
		return fmt.Sprintf("circular type: variable %d occurs in the type it is unified with", e.Var.ID)
	case RowArity:
		return "record rows differ"
	case MissingLabel:
		return fmt.Sprintf("missing record label %d", e.Label)
	case TyconArity:
		return fmt.Sprintf("type constructor expects %d arguments, got %d", e.Expected, e.Got)
	}
	return e.Kind.String()
}

// Describe renders the error with names resolved through p.
func (e *UnifyError) Describe(p *Printer) string {
	switch e.Kind {
	case Mismatch:
		return fmt.Sprintf("type mismatch: %s vs %s", p.Type(e.Left), p.Type(e.Right))
	case Occurs:
		return fmt.Sprintf("circular type: %s occurs in %s", p.Type(e.Var), p.Type(e.Right))
	case RowArity:
		return fmt.Sprintf("record rows differ: %s vs %s", p.Type(e.Left), p.Type(e.Right))
	case MissingLabel:
		return fmt.Sprintf("missing record label %s", p.names.Resolve(e.Label))
	case TyconArity:
		return fmt.Sprintf("type constructor %s expects %d arguments, got %d",
			p.names.Resolve(e.Tycon.Name), e.Expected, e.Got)
	}
	return e.Error()
}

func mismatch(t1, t2 Type) *UnifyError {
	return &UnifyError{Kind: Mismatch, Left: t1, Right: t2}
}
