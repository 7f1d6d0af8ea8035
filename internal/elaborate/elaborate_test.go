package elaborate

import (
	"strings"
	"testing"

	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/lexer"
	"github.com/funvibe/smlc/internal/parser"
	"github.com/funvibe/smlc/internal/pipeline"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

func elaborate(t *testing.T, input string) (*Context, []core.Decl, *diagnostics.List) {
	t.Helper()
	errs := &diagnostics.List{}
	l := lexer.New(input, 1)
	toks := l.Tokenize()
	for _, e := range l.Errors() {
		errs.Add(e)
	}
	prog := parser.New(toks, parser.DefaultFixity(), errs).ParseProgram(1)
	if errs.HasErrors() {
		for _, e := range errs.Items() {
			t.Errorf("parse error: %s", e.Error())
		}
		t.FailNow()
	}
	c := New(core.NewArena(symbols.NewInterner()), errs)
	return c, c.ElaborateProgram(prog), errs
}

// elaborateOK fails the test on any error; warnings are allowed.
func elaborateOK(t *testing.T, input string) (*Context, []core.Decl, *diagnostics.List) {
	t.Helper()
	c, decls, errs := elaborate(t, input)
	if errs.HasErrors() {
		for _, e := range errs.Items() {
			t.Errorf("%s", e.Error())
		}
		t.FailNow()
	}
	return c, decls, errs
}

func schemeOf(t *testing.T, c *Context, name string) string {
	t.Helper()
	s, ok := c.Lookup(name)
	if !ok {
		t.Fatalf("%s is not bound", name)
	}
	return c.Printer().Scheme(s)
}

func hasCode(errs *diagnostics.List, code diagnostics.ErrorCode) bool {
	for _, c := range errs.Codes() {
		if c == code {
			return true
		}
	}
	return false
}

func find(errs *diagnostics.List, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	for _, e := range errs.Items() {
		if e.Code == code {
			return e
		}
	}
	return nil
}

func TestIntegerBinding(t *testing.T) {
	c, decls, errs := elaborateOK(t, "val x = 3")
	if errs.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %v", errs.Codes())
	}
	if got := schemeOf(t, c, "x"); got != "int" {
		t.Errorf("x : %s, want int", got)
	}
	vd, ok := decls[0].(*core.ValDecl)
	if !ok {
		t.Fatalf("expected ValDecl, got %T", decls[0])
	}
	if len(vd.Tyvars) != 0 {
		t.Errorf("tyvars = %v, want none", vd.Tyvars)
	}
	if k, ok := vd.Rule.Expr.Kind.(*core.Const); !ok || k.Value.Int != 3 {
		t.Errorf("rhs = %#v, want constant 3", vd.Rule.Expr.Kind)
	}
}

func TestIdentityGeneralizes(t *testing.T) {
	c, decls, _ := elaborateOK(t, "fun id x = x")
	if got := schemeOf(t, c, "id"); got != "'a -> 'a" {
		t.Errorf("id : %s, want 'a -> 'a", got)
	}
	fd, ok := decls[0].(*core.FunDecl)
	if !ok {
		t.Fatalf("expected FunDecl, got %T", decls[0])
	}
	if len(fd.Tyvars) != 1 || len(fd.Binds) != 1 {
		t.Fatalf("group = %+v", fd)
	}
	lam := fd.Binds[0].Lambda
	if c.in.Resolve(lam.Arg) != "x" {
		t.Errorf("lambda argument = %s, want x", c.in.Resolve(lam.Arg))
	}
	if v, ok := lam.Body.Kind.(*core.Var); !ok || v.Name != lam.Arg {
		t.Errorf("body = %#v, want x", lam.Body.Kind)
	}
}

func TestValueRestriction(t *testing.T) {
	c, decls, errs := elaborateOK(t, "val r = ref []")
	if got := schemeOf(t, c, "r"); got != "'_a list ref" {
		t.Errorf("r : %s, want '_a list ref", got)
	}
	if !hasCode(errs, diagnostics.ErrValueRestriction) {
		t.Errorf("expected a value restriction warning, got %v", errs.Codes())
	}
	if vd := decls[0].(*core.ValDecl); len(vd.Tyvars) != 0 {
		t.Errorf("expansive binding generalized over %v", vd.Tyvars)
	}
}

func TestPolymorphicDatatype(t *testing.T) {
	c, decls, _ := elaborateOK(t, `
datatype 'a t = A | B of 'a
val v = A
val w = B 1`)
	if got := schemeOf(t, c, "v"); got != "'a t" {
		t.Errorf("v : %s, want 'a t", got)
	}
	if got := schemeOf(t, c, "w"); got != "int t" {
		t.Errorf("w : %s, want int t", got)
	}
	dd, ok := decls[0].(*core.DatatypeDecl)
	if !ok {
		t.Fatalf("expected DatatypeDecl, got %T", decls[0])
	}
	if len(dd.Data.Constructors) != 2 || dd.Data.Constructors[1].Con.Arity != 1 {
		t.Errorf("constructors = %+v", dd.Data.Constructors)
	}
	// v is a constant constructor, so it generalizes
	if vd := decls[1].(*core.ValDecl); len(vd.Tyvars) != 1 {
		t.Errorf("v generalized over %v, want one variable", vd.Tyvars)
	}
}

func TestInexhaustiveCase(t *testing.T) {
	_, _, errs := elaborateOK(t, `fun f x = case x of 1 => "a"`)
	d := find(errs, diagnostics.ErrInexhaustiveMatch)
	if d == nil {
		t.Fatalf("expected InexhaustiveMatch, got %v", errs.Codes())
	}
	if !d.IsWarning() || d.Witness != "_" {
		t.Errorf("diagnostic = %+v, want a warning with witness _", d)
	}
}

func TestMissingLabel(t *testing.T) {
	c, _, errs := elaborate(t, `
val r = {a = 1, b = 2}
val s = (r : {a : int, b : int, c : int})
val n = 1`)
	d := find(errs, diagnostics.ErrMissingLabel)
	if d == nil {
		t.Fatalf("expected MissingLabel, got %v", errs.Codes())
	}
	if !strings.Contains(d.Message, "c") {
		t.Errorf("message %q does not name label c", d.Message)
	}
	// the failed annotation leaves s with a hole
	if s, _ := c.Lookup("s"); !isHole(s) {
		t.Errorf("s : %s, want an unconstrained type", c.Printer().Scheme(s))
	}
	// elaboration continues after the error
	if got := schemeOf(t, c, "n"); got != "int" {
		t.Errorf("n : %s, want int", got)
	}
}

func isHole(s typesystem.Scheme) bool {
	_, ok := typesystem.Apply(s.Body).(*typesystem.TypeVar)
	return ok
}

func TestIfWithMismatchedBranchesIsHole(t *testing.T) {
	c, _, errs := elaborate(t, "val p = if true then {a = 1, b = 2} else {a = 1, b = 2, c = 3}")
	if !hasCode(errs, diagnostics.ErrMissingLabel) {
		t.Fatalf("expected MissingLabel, got %v", errs.Codes())
	}
	if hasCode(errs, diagnostics.ErrValueRestriction) {
		t.Errorf("value restriction reported for a binding that already failed")
	}
	if s, _ := c.Lookup("p"); !isHole(s) {
		t.Errorf("p : %s, want an unconstrained type", c.Printer().Scheme(s))
	}
}

func TestFailedNodesGetHoles(t *testing.T) {
	t.Run("list element", func(t *testing.T) {
		c, decls, errs := elaborate(t, `val p = [1, "x"]`)
		if !hasCode(errs, diagnostics.ErrMismatch) {
			t.Fatalf("expected Mismatch, got %v", errs.Codes())
		}
		list := decls[0].(*core.ValDecl).Rule.Expr.Kind.(*core.List)
		if !isHole(typesystem.Mono(list.Elems[1].Type)) {
			t.Errorf("second element : %s, want a hole", c.printer.Type(list.Elems[1].Type))
		}
		if got := schemeOf(t, c, "p"); got != "int list" {
			t.Errorf("p : %s, want int list", got)
		}
	})
	t.Run("case arm", func(t *testing.T) {
		c, decls, errs := elaborate(t, `val p = case 1 of 0 => 1 | _ => "x"`)
		if !hasCode(errs, diagnostics.ErrMismatch) {
			t.Fatalf("expected Mismatch, got %v", errs.Codes())
		}
		arm := decls[0].(*core.ValDecl).Rule.Expr.Kind.(*core.Case).Rules[1].Expr
		if !isHole(typesystem.Mono(arm.Type)) {
			t.Errorf("second arm : %s, want a hole", c.printer.Type(arm.Type))
		}
	})
}

func TestTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		bind  string
		want  string
	}{
		{"let polymorphism", "val p = let fun id x = x in (id 1, id true) end", "p", "int * bool"},
		{"mutual recursion", `
fun even 0 = true
  | even n = odd (n - 1)
and odd 0 = false
  | odd n = even (n - 1)`, "even", "int -> bool"},
		{"curried clauses", "fun add x y = x + y", "add", "int -> int -> int"},
		{"list constructor", "fun len [] = 0 | len (_ :: xs) = 1 + len xs", "len", "'a list -> int"},
		{"map", "fun map f [] = [] | map f (x :: xs) = f x :: map f xs", "map", "('a -> 'b) -> 'a list -> 'b list"},
		{"record", "val r = {name = \"x\", age = 3}", "r", "{age: int, name: string}"},
		{"selector", "val s = #name {name = \"x\", age = 3}", "s", "string"},
		{"annotated flex pattern", "fun age ({age, ...} : {age : int, name : string}) = age", "age", "{age: int, name: string} -> int"},
		{"tuple pattern", "fun swap (x, y) = (y, x)", "swap", "'a * 'b -> 'b * 'a"},
		{"type abbreviation", "type 'a pair = 'a * 'a\nval p : int pair = (1, 2)", "p", "int * int"},
		{"option", "fun get (SOME x) = x | get NONE = 0", "get", "int option -> int"},
		{"handle", "exception E of int\nval x = (raise E 1) handle E n => n", "x", "int"},
		{"val rec", "val rec f = fn 0 => 1 | n => n * f (n - 1)", "f", "int -> int"},
		{"if", "fun max (a, b) = if a > b then a else b", "max", "int * int -> int"},
		{"andalso", "fun both (a, b) = a andalso b", "both", "bool * bool -> bool"},
		{"while", "val r = ref 0\nval u = while !r < 10 do r := !r + 1", "u", "unit"},
		{"sequence", "val s = (print \"a\"; 1)", "s", "int"},
		{"top-level expression", "1 + 2", "it", "int"},
		{"op section", "val plus = op +", "plus", "int * int -> int"},
		{"composition", "fun twice f = f o f", "twice", "('a -> 'a) -> 'a -> 'a"},
		{"explicit tyvar", "fun 'a ident (x : 'a) : 'a = x", "ident", "'a -> 'a"},
		{"exception alias", "exception E\nexception F = E\nval e = F", "e", "exn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := elaborateOK(t, tt.input)
			if got := schemeOf(t, c, tt.bind); got != tt.want {
				t.Errorf("%s : %s, want %s", tt.bind, got, tt.want)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"unbound variable", "val y = z", diagnostics.ErrUnboundVar},
		{"unbound type", "val y : foo = 1", diagnostics.ErrUnboundType},
		{"unbound constructor", "fun f (Q x) = x", diagnostics.ErrUnboundCon},
		{"mismatch", "val y = 1 + \"a\"", diagnostics.ErrMismatch},
		{"occurs", "fun f x = f", diagnostics.ErrOccurs},
		{"not a function", "val y = 1 2", diagnostics.ErrNotAFunction},
		{"constant constructor applied", "val y = NONE 1", diagnostics.ErrConArityMismatch},
		{"constructor missing argument", "fun f SOME = 1", diagnostics.ErrConArityMismatch},
		{"constructor of another type", "fun f (x : int) = case x of NONE => 0", diagnostics.ErrConstructorNotInType},
		{"duplicate label", "val r = {a = 1, a = 2}", diagnostics.ErrDuplicateLabel},
		{"duplicate pattern variable", "fun f (x, x) = x", diagnostics.ErrDuplicateBinding},
		{"tycon arity", "val y : int list list list = [] : (int, int) list", diagnostics.ErrTyconArity},
		{"escaping tyvar", "fun 'a f (x : 'a) = x + 1", diagnostics.ErrEscapingTyvar},
		{"tyvar in expansive binding", "val 'a r : 'a list ref = ref []", diagnostics.ErrEscapingTyvar},
		{"local datatype escapes", "val x = let datatype t = A in A end", diagnostics.ErrEscapingDatatype},
		{"unbound tyvar in datatype", "datatype t = A of 'b", diagnostics.ErrUnboundType},
		{"unresolved flex record", "fun f {a, ...} = a", diagnostics.ErrRowArity},
		{"val rec needs fn", "val rec f = 1", diagnostics.ErrNotAFunction},
		{"datatype from local used in let", "local datatype t = A | B in fun f () = A end\nval z = let val q = 1 in f () end", ""},
		{"datatype exported by local used in let", "local val k = 1 in datatype t = A | B end\nval y = let val z = 1 in A end", ""},
		{"datatype of enclosing let", "val x = let datatype t = A in let val y = 1 in A end; 0 end", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errs := elaborate(t, tt.input)
			if tt.code == "" {
				if errs.Len() != 0 {
					t.Errorf("expected no diagnostics, got %v", errs.Codes())
				}
				return
			}
			if !hasCode(errs, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, errs.Codes())
			}
		})
	}
}

func TestDuplicateFunction(t *testing.T) {
	_, decls, errs := elaborate(t, "fun f x = 1 and f y = \"a\"")
	if got := errs.Codes(); len(got) != 1 || got[0] != diagnostics.ErrDuplicateBinding {
		t.Errorf("diagnostics = %v, want only DuplicateBinding", got)
	}
	if fd := decls[0].(*core.FunDecl); len(fd.Binds) != 1 {
		t.Errorf("group has %d functions, want 1", len(fd.Binds))
	}
}

func TestMatchWarnings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		code    diagnostics.ErrorCode
		witness string
	}{
		{"redundant clause", "fun f true = 1 | f false = 2 | f _ = 3", diagnostics.ErrRedundantRule, ""},
		{"missing constructor", "fun f (SOME x) = x", diagnostics.ErrInexhaustiveMatch, "NONE"},
		{"missing bool", "val f = fn true => 1", diagnostics.ErrInexhaustiveMatch, "false"},
		{"partial binding", "val (SOME x) = SOME 1", diagnostics.ErrInexhaustiveMatch, "NONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errs := elaborateOK(t, tt.input)
			d := find(errs, tt.code)
			if d == nil {
				t.Fatalf("expected %s, got %v", tt.code, errs.Codes())
			}
			if !d.IsWarning() {
				t.Errorf("%s should be a warning", tt.code)
			}
			if tt.witness != "" && d.Witness != tt.witness {
				t.Errorf("witness = %q, want %q", d.Witness, tt.witness)
			}
		})
	}
}

func TestHandlerIsNotCheckedForExhaustiveness(t *testing.T) {
	_, _, errs := elaborateOK(t, "val x = 1 handle Div => 0")
	if hasCode(errs, diagnostics.ErrInexhaustiveMatch) {
		t.Errorf("handlers are open; got %v", errs.Codes())
	}
}

func TestLocalHidesInnerNames(t *testing.T) {
	c, decls, _ := elaborateOK(t, `
local
  val secret = 41
in
  val answer = secret + 1
end`)
	if _, ok := c.Lookup("secret"); ok {
		t.Errorf("secret is visible after local")
	}
	if got := schemeOf(t, c, "answer"); got != "int" {
		t.Errorf("answer : %s, want int", got)
	}
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	hidden := decls[0].(*core.ValDecl).Rule.Pat.Kind.(*core.PatVar).Name
	if name := c.in.Resolve(hidden); !strings.HasPrefix(name, "$") {
		t.Errorf("hidden binding kept its source name %q", name)
	}
	var refersToHidden bool
	core.Inspect(decls[1].(*core.ValDecl).Rule.Expr, func(e *core.Expr) bool {
		if v, ok := e.Kind.(*core.Var); ok && v.Name == hidden {
			refersToHidden = true
		}
		return true
	})
	if !refersToHidden {
		t.Errorf("answer does not refer to the renamed binding")
	}
}

func TestFlexPatternResolved(t *testing.T) {
	c, decls, _ := elaborateOK(t, "fun age ({age, ...} : {age : int, name : string}) = age")
	fd := decls[0].(*core.FunDecl)
	pat := fd.Binds[0].Lambda.Body.Kind.(*core.Case).Rules[0].Pat
	rec, ok := pat.Kind.(*core.PatRecord)
	if !ok {
		t.Fatalf("pattern = %T, want record", pat.Kind)
	}
	if len(rec.Rows) != 1 {
		t.Errorf("pattern has %d rows, want the one written", len(rec.Rows))
	}
	rows, tail := typesystem.FlattenRow(pat.Type, c.in)
	if tail != nil || len(rows) != 2 {
		t.Errorf("pattern type %s, want a closed record of two labels", c.printer.Type(pat.Type))
	}
}

func TestTopLevelEnvironment(t *testing.T) {
	c, _, _ := elaborateOK(t, `
datatype color = Red | Green
val x = Red
val x = 1
exception Oops`)
	var got []string
	for _, b := range c.TopLevel() {
		got = append(got, c.in.Resolve(b.Name))
	}
	want := "color Red Green x Oops"
	if strings.Join(got, " ") != want {
		t.Errorf("top level = %v, want %s", got, want)
	}
	kinds := map[string]pipeline.BindingKind{}
	for _, b := range c.TopLevel() {
		kinds[c.in.Resolve(b.Name)] = b.Kind
	}
	if kinds["color"] != pipeline.TypeBinding || kinds["Red"] != pipeline.ConstructorBinding ||
		kinds["x"] != pipeline.ValueBinding || kinds["Oops"] != pipeline.ExceptionBinding {
		t.Errorf("kinds = %v", kinds)
	}
	if got := schemeOf(t, c, "x"); got != "int" {
		t.Errorf("x : %s, want the latest binding int", got)
	}
}

func TestBuiltinsAreShadowable(t *testing.T) {
	c, _, _ := elaborateOK(t, "fun not x = x\nval y = not 1")
	if got := schemeOf(t, c, "y"); got != "int" {
		t.Errorf("y : %s, want int", got)
	}
}

func TestElaborationContinuesAfterErrors(t *testing.T) {
	c, decls, errs := elaborate(t, "val a = 1 + true\nval b = a\nfun f x = x")
	if errs.ErrorCount() != 1 {
		t.Errorf("errors = %v, want exactly one", errs.Codes())
	}
	if len(decls) != 3 {
		t.Errorf("got %d declarations, want 3", len(decls))
	}
	if got := schemeOf(t, c, "f"); got != "'a -> 'a" {
		t.Errorf("f : %s, want 'a -> 'a", got)
	}
}
