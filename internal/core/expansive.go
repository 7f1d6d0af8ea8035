package core

import "github.com/funvibe/smlc/internal/builtin"

// NonExpansive reports whether e may be generalized under the value
// restriction: constants, variables, primitives, lambdas, constructors
// other than ref and their applications, and records and lists built only
// from such expressions.
func NonExpansive(e *Expr) bool {
	switch k := e.Kind.(type) {
	case *Con:
		return !builtin.IsRef(k.Con)
	case *App:
		con, ok := k.Fn.Kind.(*Con)
		return ok && !builtin.IsRef(con.Con) && NonExpansive(k.Arg)
	case *Const, *Var, *Primitive, *Lambda:
		return true
	case *Record:
		for _, r := range k.Rows {
			if !NonExpansive(r.Data) {
				return false
			}
		}
		return true
	case *List:
		for _, el := range k.Elems {
			if !NonExpansive(el) {
				return false
			}
		}
		return true
	}
	return false
}
