package elaborate

import (
	"testing"
	"time"

	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/lexer"
	"github.com/funvibe/smlc/internal/parser"
	"github.com/funvibe/smlc/internal/symbols"
)

// FuzzElaborate feeds arbitrary text through the front end. Elaboration
// must not panic, and a program without errors must produce declarations
// whose types are all set.
func FuzzElaborate(f *testing.F) {
	f.Add("val x = 1 + 2")
	f.Add("fun map f [] = [] | map f (x :: xs) = f x :: map f xs")
	f.Add("datatype 'a t = A | B of 'a t * 'a\nfun g A = 0 | g (B (t, _)) = g t")
	f.Add("val r = ref []\nval _ = r := [1]")
	f.Add("fun f {x, ...} = x\nval y = f {x = 1, y = 2}")
	f.Add("local val h = 1 in val k = h end")
	f.Add("exception E of int\nval v = (raise E 1) handle E n => n")
	f.Add("val s = #name {name = \"a\"}")

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 2000 {
			return
		}
		type result struct {
			decls []core.Decl
			errs  *diagnostics.List
		}
		out := make(chan result, 1)
		go func() {
			errs := &diagnostics.List{}
			l := lexer.New(input, 1)
			toks := l.Tokenize()
			for _, e := range l.Errors() {
				errs.Add(e)
			}
			prog := parser.New(toks, parser.DefaultFixity(), errs).ParseProgram(1)
			if errs.HasErrors() {
				out <- result{errs: errs}
				return
			}
			c := New(core.NewArena(symbols.NewInterner()), errs)
			out <- result{decls: c.ElaborateProgram(prog), errs: errs}
		}()
		var res result
		select {
		case res = <-out:
		case <-time.After(2 * time.Second):
			t.Fatalf("elaboration did not finish: %q", input)
		}
		if res.errs.HasErrors() {
			return
		}
		decls := res.decls
		core.InspectDecls(decls, func(e *core.Expr) bool {
			if e.Type == nil {
				t.Fatalf("expression without a type in %q", input)
			}
			return true
		})
	})
}
