package builtin

import (
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// installPrimitives registers the operator table. Arithmetic is on int only
// except for /, which is real division. Equality is not restricted to
// equality types.
func (r *Registry) installPrimitives(a *typesystem.TypeArena, in *symbols.Interner) {
	var (
		intT    = a.Con(r.Int)
		realT   = a.Con(r.Real)
		boolT   = a.Con(r.Bool)
		stringT = a.Con(r.String)
		charT   = a.Con(r.Char)
		unitT   = a.Con(r.Unit)
	)
	fn := func(dom, cod typesystem.Type) typesystem.Type { return a.Arrow(dom, cod) }
	pair := func(x, y typesystem.Type) typesystem.Type { return a.Tuple(x, y) }
	add := func(name string, vars []*typesystem.TypeVar, body typesystem.Type) {
		ids := make([]uint32, len(vars))
		for i, v := range vars {
			ids[i] = v.ID
		}
		sym := in.Intern(name)
		r.prims[sym] = len(r.Primitives)
		r.Primitives = append(r.Primitives, Primitive{Name: sym, Scheme: typesystem.Scheme{Vars: ids, Body: body}})
	}
	mono := func(name string, body typesystem.Type) { add(name, nil, body) }
	poly := func(name string, build func(v ...*typesystem.TypeVar) typesystem.Type, n int) {
		vs := make([]*typesystem.TypeVar, n)
		for i := range vs {
			vs[i] = a.FreshVar(GenericRank)
		}
		add(name, vs, build(vs...))
	}

	intBinop := fn(pair(intT, intT), intT)
	for _, op := range []string{"+", "-", "*", "div", "mod"} {
		mono(op, intBinop)
	}
	mono("/", fn(pair(realT, realT), realT))
	mono("~", fn(intT, intT))
	mono("abs", fn(intT, intT))

	intCmp := fn(pair(intT, intT), boolT)
	for _, op := range []string{"<", ">", "<=", ">="} {
		mono(op, intCmp)
	}
	for _, op := range []string{"=", "<>"} {
		poly(op, func(v ...*typesystem.TypeVar) typesystem.Type {
			return fn(pair(v[0], v[0]), boolT)
		}, 1)
	}

	mono("^", fn(pair(stringT, stringT), stringT))
	mono("size", fn(stringT, intT))
	mono("str", fn(charT, stringT))
	mono("chr", fn(intT, charT))
	mono("ord", fn(charT, intT))
	mono("explode", fn(stringT, a.Con(r.List, charT)))
	mono("implode", fn(a.Con(r.List, charT), stringT))
	mono("real", fn(intT, realT))
	mono("floor", fn(realT, intT))
	mono("not", fn(boolT, boolT))
	mono("print", fn(stringT, unitT))

	poly("!", func(v ...*typesystem.TypeVar) typesystem.Type {
		return fn(a.Con(r.Ref, v[0]), v[0])
	}, 1)
	poly(":=", func(v ...*typesystem.TypeVar) typesystem.Type {
		return fn(pair(a.Con(r.Ref, v[0]), v[0]), unitT)
	}, 1)
	poly("ignore", func(v ...*typesystem.TypeVar) typesystem.Type {
		return fn(v[0], unitT)
	}, 1)
	poly("before", func(v ...*typesystem.TypeVar) typesystem.Type {
		return fn(pair(v[0], unitT), v[0])
	}, 1)
	poly("o", func(v ...*typesystem.TypeVar) typesystem.Type {
		// ('b -> 'c) * ('a -> 'b) -> 'a -> 'c
		return fn(pair(fn(v[1], v[2]), fn(v[0], v[1])), fn(v[0], v[2]))
	}, 3)
}
