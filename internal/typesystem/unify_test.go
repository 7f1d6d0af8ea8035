package typesystem

import (
	"testing"

	"github.com/funvibe/smlc/internal/symbols"
)

type fixture struct {
	in    *symbols.Interner
	a     *TypeArena
	intTC Tycon
	boolT Tycon
	list  Tycon
}

func newFixture() *fixture {
	in := symbols.NewInterner()
	a := NewTypeArena(in)
	f := &fixture{in: in, a: a}
	a.SetArrow(a.NewTycon(in.Intern("->"), 2, 0))
	f.intTC = a.NewTycon(in.Intern("int"), 0, 0)
	f.boolT = a.NewTycon(in.Intern("bool"), 0, 0)
	f.list = a.NewTycon(in.Intern("list"), 1, 0)
	return f
}

func (f *fixture) int() Type  { return f.a.Con(f.intTC) }
func (f *fixture) bool() Type { return f.a.Con(f.boolT) }

func (f *fixture) row(label string, t Type) Row[Type] {
	return Row[Type]{Label: f.in.Intern(label), Data: t}
}

func (f *fixture) show(t Type) string {
	return NewPrinter(f.in).Type(t)
}

func expectKind(t *testing.T, err error, kind ErrorKind) *UnifyError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got success", kind)
	}
	ue, ok := err.(*UnifyError)
	if !ok {
		t.Fatalf("expected *UnifyError, got %T", err)
	}
	if ue.Kind != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, ue.Kind, ue)
	}
	return ue
}

func TestUnifyStructural(t *testing.T) {
	f := newFixture()
	a := f.a

	v := a.FreshVar(1)
	fn := a.Arrow(v, f.bool())
	if err := a.Unify(fn, a.Arrow(f.int(), f.bool())); err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	if got := f.show(v); got != "int" {
		t.Errorf("v = %s, want int", got)
	}

	err := a.Unify(f.int(), f.bool())
	expectKind(t, err, Mismatch)

	err = a.Unify(a.Con(f.list, f.int()), a.Con(f.list, f.bool()))
	ue := expectKind(t, err, Mismatch)
	if got := f.show(ue.Left); got != "int list" {
		t.Errorf("mismatch reported against %s, want the outer type", got)
	}
}

func TestOccursCheck(t *testing.T) {
	f := newFixture()
	v := f.a.FreshVar(1)
	err := f.a.Unify(v, f.a.Con(f.list, v))
	ue := expectKind(t, err, Occurs)
	if ue.Var != v {
		t.Errorf("occurs error names the wrong variable")
	}
	if v.IsLinked() {
		t.Errorf("failed occurs check must not link the variable")
	}
}

func TestApplyCompressesPaths(t *testing.T) {
	f := newFixture()
	vs := make([]*TypeVar, 5)
	for i := range vs {
		vs[i] = f.a.FreshVar(1)
	}
	for i := 0; i+1 < len(vs); i++ {
		if err := f.a.Unify(vs[i], vs[i+1]); err != nil {
			t.Fatal(err)
		}
	}
	target := f.int()
	if err := f.a.Unify(vs[len(vs)-1], target); err != nil {
		t.Fatal(err)
	}
	if Apply(vs[0]) != target {
		t.Fatalf("Apply did not reach the representative")
	}
	for i, v := range vs {
		if v.Link() != target {
			t.Errorf("var %d links to %T after compression", i, v.Link())
		}
	}
}

func TestRankIsLoweredOnBind(t *testing.T) {
	f := newFixture()
	outer := f.a.FreshVar(1)
	inner := f.a.FreshVar(3)
	if err := f.a.Unify(outer, f.a.Con(f.list, inner)); err != nil {
		t.Fatal(err)
	}
	if inner.Rank != 1 {
		t.Errorf("inner rank = %d, want 1", inner.Rank)
	}
	s := Generalize(1, outer)
	if !s.IsMono() {
		t.Errorf("variable reachable from rank 1 must not generalize: %v", s.Vars)
	}
}

func TestRowUnification(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *fixture) (Type, Type)
		kind  ErrorKind
		ok    bool
		label string
	}{
		{
			name: "closed closed equal",
			build: func(f *fixture) (Type, Type) {
				return f.a.Record([]Row[Type]{f.row("a", f.int()), f.row("b", f.a.FreshVar(1))}),
					f.a.Record([]Row[Type]{f.row("b", f.bool()), f.row("a", f.int())})
			},
			ok: true,
		},
		{
			name: "closed closed missing",
			build: func(f *fixture) (Type, Type) {
				return f.a.Record([]Row[Type]{f.row("a", f.int()), f.row("b", f.int())}),
					f.a.Record([]Row[Type]{f.row("a", f.int()), f.row("b", f.int()), f.row("c", f.int())})
			},
			kind:  MissingLabel,
			label: "c",
		},
		{
			name: "open against closed",
			build: func(f *fixture) (Type, Type) {
				return f.a.Flex([]Row[Type]{f.row("a", f.int())}, f.a.FreshVar(1)),
					f.a.Record([]Row[Type]{f.row("a", f.int()), f.row("b", f.bool())})
			},
			ok: true,
		},
		{
			name: "open demands a label closed lacks",
			build: func(f *fixture) (Type, Type) {
				return f.a.Record([]Row[Type]{f.row("a", f.int())}),
					f.a.Flex([]Row[Type]{f.row("z", f.int())}, f.a.FreshVar(1))
			},
			kind:  MissingLabel,
			label: "z",
		},
		{
			name: "open open",
			build: func(f *fixture) (Type, Type) {
				return f.a.Flex([]Row[Type]{f.row("a", f.int())}, f.a.FreshVar(1)),
					f.a.Flex([]Row[Type]{f.row("b", f.bool())}, f.a.FreshVar(1))
			},
			ok: true,
		},
		{
			name: "same tail different rows",
			build: func(f *fixture) (Type, Type) {
				tail := f.a.FreshVar(1)
				return f.a.Flex([]Row[Type]{f.row("a", f.int())}, tail),
					f.a.Flex([]Row[Type]{f.row("b", f.int())}, tail)
			},
			kind: RowArity,
		},
		{
			name: "field mismatch",
			build: func(f *fixture) (Type, Type) {
				return f.a.Record([]Row[Type]{f.row("a", f.int())}),
					f.a.Record([]Row[Type]{f.row("a", f.bool())})
			},
			kind: Mismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			t1, t2 := tt.build(f)
			err := f.a.Unify(t1, t2)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if f.show(t1) != f.show(t2) {
					t.Errorf("sides differ after unify: %s vs %s", f.show(t1), f.show(t2))
				}
				return
			}
			ue := expectKind(t, err, tt.kind)
			if tt.label != "" && f.in.Resolve(ue.Label) != tt.label {
				t.Errorf("missing label = %s, want %s", f.in.Resolve(ue.Label), tt.label)
			}
		})
	}
}

func TestOpenOpenSharesTail(t *testing.T) {
	f := newFixture()
	r1 := f.a.Flex([]Row[Type]{f.row("a", f.int())}, f.a.FreshVar(1))
	r2 := f.a.Flex([]Row[Type]{f.row("b", f.bool())}, f.a.FreshVar(1))
	if err := f.a.Unify(r1, r2); err != nil {
		t.Fatal(err)
	}
	rows1, tail1 := FlattenRow(r1, f.in)
	rows2, tail2 := FlattenRow(r2, f.in)
	if tail1 == nil || tail1 != tail2 {
		t.Fatalf("both records must end in the same fresh tail")
	}
	if len(rows1) != 2 || len(rows2) != 2 {
		t.Fatalf("merged rows = %d/%d, want 2/2", len(rows1), len(rows2))
	}
	if got := f.show(r1); got != "{a: int, b: bool, ...}" {
		t.Errorf("merged record = %s", got)
	}

	closed := f.a.Record([]Row[Type]{f.row("a", f.int()), f.row("b", f.bool())})
	if err := f.a.Unify(r1, closed); err != nil {
		t.Fatal(err)
	}
	if _, tail := FlattenRow(r2, f.in); tail != nil {
		t.Errorf("closing one side must close the other")
	}
}

func TestUnifyErrorIsNilOnSuccess(t *testing.T) {
	f := newFixture()
	if err := f.a.Unify(f.int(), f.int()); err != nil {
		t.Fatalf("expected untyped nil, got %#v", err)
	}
}
