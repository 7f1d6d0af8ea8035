package typesystem

import "testing"

func TestGeneralizeAndInstantiate(t *testing.T) {
	f := newFixture()
	a := f.a

	v := a.FreshVar(2)
	id := a.Arrow(v, v)
	s := Generalize(1, id)
	if len(s.Vars) != 1 || s.Vars[0] != v.ID {
		t.Fatalf("Generalize = %v, want [%d]", s.Vars, v.ID)
	}

	p := NewPrinter(f.in)
	if got := p.Scheme(s); got != "'a -> 'a" {
		t.Errorf("scheme = %s", got)
	}

	inst1, args := a.Instantiate(s, 1)
	if len(args) != 1 {
		t.Fatalf("instantiate returned %d type args", len(args))
	}
	if err := a.Unify(inst1, a.Arrow(f.int(), f.int())); err != nil {
		t.Fatal(err)
	}
	if v.IsLinked() {
		t.Errorf("instantiation must not touch the quantified variable")
	}
	if got := f.show(args[0]); got != "int" {
		t.Errorf("type arg = %s", got)
	}

	inst2, _ := a.Instantiate(s, 1)
	if err := a.Unify(inst2, a.Arrow(f.bool(), f.bool())); err != nil {
		t.Errorf("second instance must be independent: %v", err)
	}
}

func TestInstantiateSharesMonomorphicParts(t *testing.T) {
	f := newFixture()
	mono := f.a.Con(f.list, f.int())
	q := f.a.FreshVar(2)
	s := Generalize(1, f.a.Arrow(q, mono))
	body, _ := f.a.Instantiate(s, 1)
	_, cod, ok := f.a.IsArrow(body)
	if !ok {
		t.Fatalf("instance is not a function: %s", f.show(body))
	}
	if Apply(cod) != Type(mono) {
		t.Errorf("subtree without quantified variables should be shared")
	}
}

func TestInstantiateFlexTail(t *testing.T) {
	f := newFixture()
	tail := f.a.FreshVar(2)
	field := f.a.FreshVar(2)
	sel := f.a.Arrow(f.a.Flex([]Row[Type]{f.row("x", field)}, tail), field)
	s := Generalize(1, sel)
	if len(s.Vars) != 2 {
		t.Fatalf("expected field and tail to generalize, got %v", s.Vars)
	}

	inst, _ := f.a.Instantiate(s, 1)
	rec := f.a.Record([]Row[Type]{f.row("x", f.int()), f.row("y", f.bool())})
	res := f.a.FreshVar(1)
	if err := f.a.Unify(inst, f.a.Arrow(rec, res)); err != nil {
		t.Fatal(err)
	}
	if got := f.show(res); got != "int" {
		t.Errorf("selection result = %s", got)
	}
	if tail.IsLinked() {
		t.Errorf("quantified tail was linked through an instance")
	}
}

func TestPrinter(t *testing.T) {
	f := newFixture()
	a := f.a
	v := a.FreshVar(1)
	pair := a.Tuple(f.int(), a.Con(f.list, v))
	tests := []struct {
		t    Type
		want string
	}{
		{pair, "int * 'a list"},
		{a.Arrow(a.Arrow(f.int(), f.int()), f.bool()), "(int -> int) -> bool"},
		{a.Arrow(f.int(), a.Arrow(f.int(), f.bool())), "int -> int -> bool"},
		{a.Con(f.list, pair), "(int * 'a list) list"},
		{a.Record([]Row[Type]{f.row("b", f.int()), f.row("a", f.bool())}), "{a: bool, b: int}"},
		{a.Flex(nil, a.FreshVar(1)), "{...}"},
	}
	p := NewPrinter(f.in)
	for _, tt := range tests {
		if got := p.Type(tt.t); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}
