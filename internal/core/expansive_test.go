package core

import (
	"math/rand"
	"testing"

	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

type builder struct {
	a   *Arena
	in  *symbols.Interner
	sp  source.Span
	int typesystem.Type
}

func newBuilder() *builder {
	in := symbols.NewInterner()
	a := NewArena(in)
	return &builder{a: a, in: in, int: a.Types.Con(a.Builtins.Int)}
}

func (b *builder) lit() *Expr {
	return b.a.Const(Literal{Kind: LitInt, Int: 1}, b.int, b.sp)
}

func (b *builder) variable() *Expr {
	return b.a.Var(b.in.Intern("x"), b.int, b.sp)
}

func (b *builder) lambda() *Expr {
	v := b.a.Types.FreshVar(1)
	return b.a.LambdaExpr(b.a.Lambda(b.in.Intern("y"), v, b.a.Var(b.in.Intern("y"), v, b.sp)), b.sp)
}

func (b *builder) app() *Expr {
	return b.a.App(b.lambda(), b.lit(), b.int, b.sp)
}

func (b *builder) ref(arg *Expr) *Expr {
	rf := b.a.Builtins.RefCon
	con := b.a.Con(rf, []typesystem.Type{b.int}, b.a.Types.Arrow(b.int, b.a.Types.Con(b.a.Builtins.Ref, b.int)), b.sp)
	return b.a.App(con, arg, b.a.Types.Con(b.a.Builtins.Ref, b.int), b.sp)
}

func (b *builder) record(es ...*Expr) *Expr {
	rows := make([]typesystem.Row[*Expr], len(es))
	tys := make([]typesystem.Type, len(es))
	for i, e := range es {
		rows[i] = typesystem.Row[*Expr]{Label: b.in.Tuple(i + 1), Data: e}
		tys[i] = e.Type
	}
	return b.a.Record(rows, b.a.Types.Tuple(tys...), b.sp)
}

func TestNonExpansive(t *testing.T) {
	b := newBuilder()
	refCon := b.a.Con(b.a.Builtins.RefCon, []typesystem.Type{b.int}, b.int, b.sp)
	someCon := b.a.Con(b.a.Builtins.Some, []typesystem.Type{b.int}, b.int, b.sp)

	tests := []struct {
		name string
		e    *Expr
		want bool
	}{
		{"const", b.lit(), true},
		{"var", b.variable(), true},
		{"primitive", b.a.Primitive(b.in.Intern("+"), b.int, b.sp), true},
		{"lambda", b.lambda(), true},
		{"constructor", someCon, true},
		{"ref constructor", refCon, false},
		{"record of values", b.record(b.lit(), b.lambda()), true},
		{"record with app", b.record(b.lit(), b.app()), false},
		{"list of values", b.a.List([]*Expr{b.lit(), b.lit()}, b.int, b.sp), true},
		{"list with app", b.a.List([]*Expr{b.lit(), b.app()}, b.int, b.sp), false},
		{"app", b.app(), false},
		{"ref application", b.ref(b.lit()), false},
		{"constructor application", b.a.App(someCon, b.lit(), b.int, b.sp), true},
		{"constructor applied to app", b.a.App(someCon, b.app(), b.int, b.sp), false},
		{"raise", b.a.Raise(b.lit(), b.int, b.sp), false},
		{"seq", b.a.Seq([]*Expr{b.lit(), b.lit()}, b.sp), false},
		{"let", b.a.Let(nil, b.lit(), b.sp), false},
		{"case", b.a.Case(b.lit(), nil, b.int, b.sp), false},
		{"handle", b.a.Handle(b.lit(), nil, b.int, b.sp), false},
	}
	for _, tt := range tests {
		if got := NonExpansive(tt.e); got != tt.want {
			t.Errorf("%s: NonExpansive = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// randomExpr builds a tree of records and lists whose leaves are a mix of
// values and expansive forms.
func (b *builder) randomExpr(r *rand.Rand, depth int) *Expr {
	if depth == 0 || r.Intn(3) == 0 {
		switch r.Intn(5) {
		case 0:
			return b.lit()
		case 1:
			return b.variable()
		case 2:
			return b.app()
		case 3:
			return b.ref(b.lit())
		default:
			return b.a.Raise(b.lit(), b.int, b.sp)
		}
	}
	n := 1 + r.Intn(3)
	kids := make([]*Expr, n)
	for i := range kids {
		kids[i] = b.randomExpr(r, depth-1)
	}
	if r.Intn(2) == 0 {
		return b.a.List(kids, b.int, b.sp)
	}
	return b.record(kids...)
}

// replaceExpansive rewrites every maximal expansive subterm into a lambda.
func (b *builder) replaceExpansive(e *Expr) *Expr {
	switch k := e.Kind.(type) {
	case *Record:
		rows := make([]typesystem.Row[*Expr], len(k.Rows))
		for i, row := range k.Rows {
			rows[i] = typesystem.MapRow(row, b.replaceExpansive)
		}
		return b.a.Record(rows, e.Type, e.Span)
	case *List:
		elems := make([]*Expr, len(k.Elems))
		for i, el := range k.Elems {
			elems[i] = b.replaceExpansive(el)
		}
		return b.a.List(elems, e.Type, e.Span)
	}
	if NonExpansive(e) {
		return e
	}
	return b.lambda()
}

func TestNonExpansiveProperty(t *testing.T) {
	b := newBuilder()
	r := rand.New(rand.NewSource(7))
	sawExpansive := 0
	for i := 0; i < 500; i++ {
		e := b.randomExpr(r, 4)
		if !NonExpansive(e) {
			sawExpansive++
		}
		if fixed := b.replaceExpansive(e); !NonExpansive(fixed) {
			t.Fatalf("case %d: replacing expansive subterms with lambdas left an expansive expression", i)
		}
	}
	if sawExpansive == 0 {
		t.Fatalf("generator never produced an expansive expression")
	}
}

func TestArenaStatsAndRelease(t *testing.T) {
	b := newBuilder()
	before := b.a.Stats()
	b.record(b.lit(), b.app())
	after := b.a.Stats()
	if after.Nodes <= before.Nodes || after.Bytes < before.Bytes {
		t.Errorf("stats did not grow: %+v -> %+v", before, after)
	}
	b.a.Release()
	if st := b.a.Stats(); st.Nodes != 0 {
		t.Errorf("nodes after release = %d", st.Nodes)
	}
}

func TestRecordRowsAreSorted(t *testing.T) {
	b := newBuilder()
	rows := []typesystem.Row[*Expr]{
		{Label: b.in.Intern("b"), Data: b.lit()},
		{Label: b.in.Intern("2"), Data: b.lit()},
		{Label: b.in.Intern("a"), Data: b.lit()},
	}
	e := b.a.Record(rows, b.int, b.sp)
	got := e.Kind.(*Record).Rows
	want := []string{"2", "a", "b"}
	for i, r := range got {
		if b.in.Resolve(r.Label) != want[i] {
			t.Fatalf("row %d = %s, want %s", i, b.in.Resolve(r.Label), want[i])
		}
	}
}

func TestBoundVars(t *testing.T) {
	b := newBuilder()
	x := b.a.PatVar(b.in.Intern("x"), b.int, b.sp)
	y := b.a.PatVar(b.in.Intern("y"), b.int, b.sp)
	p := b.a.PatRecord([]typesystem.Row[*Pat]{
		{Label: b.in.Tuple(1), Data: x},
		{Label: b.in.Tuple(2), Data: b.a.PatWild(b.int, b.sp)},
		{Label: b.in.Tuple(3), Data: b.a.PatList([]*Pat{y}, b.int, b.sp)},
	}, b.int, b.sp)
	vars := BoundVars(p)
	if len(vars) != 2 || vars[0] != x || vars[1] != y {
		t.Errorf("BoundVars = %v", vars)
	}
}
