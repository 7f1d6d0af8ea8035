package parser

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/token"
)

// Fixity is the infix status of identifiers. Declarations are not
// scoped: an infix inside let or local stays in force afterwards.
type Fixity struct {
	ops map[string]Infix
}

// Infix is the precedence and associativity of one operator.
type Infix struct {
	Prec  int
	Right bool
}

// DefaultFixity returns the operators of the initial basis.
func DefaultFixity() *Fixity {
	f := &Fixity{ops: map[string]Infix{}}
	for _, name := range []string{"*", "/", "div", "mod"} {
		f.ops[name] = Infix{Prec: 7}
	}
	for _, name := range []string{"+", "-", "^"} {
		f.ops[name] = Infix{Prec: 6}
	}
	f.ops["::"] = Infix{Prec: 5, Right: true}
	for _, name := range []string{"=", "<>", "<", ">", "<=", ">="} {
		f.ops[name] = Infix{Prec: 4}
	}
	for _, name := range []string{":=", "o"} {
		f.ops[name] = Infix{Prec: 3}
	}
	f.ops["before"] = Infix{Prec: 0}
	return f
}

func (f *Fixity) Lookup(name string) (Infix, bool) {
	in, ok := f.ops[name]
	return in, ok
}

func (f *Fixity) Set(name string, in Infix) { f.ops[name] = in }

func (f *Fixity) Clear(name string) { delete(f.ops, name) }

// parseFixityDec parses infix, infixr and nonfix and applies them at once.
func (p *Parser) parseFixityDec() ast.Dec {
	tok := p.curToken
	p.nextToken()
	dec := &ast.FixityDec{Token: tok}
	if tok.Type != token.NONFIX && p.curTokenIs(token.INT) {
		n, _ := p.curToken.Literal.(int64)
		if n < 0 || n > 9 || len(p.curToken.Lexeme) != 1 {
			p.fail(diagnostics.ErrInvalidFixity, "fixity precedence must be a digit 0-9, found %s", describe(p.curToken))
		}
		dec.Prec = int(n)
		p.nextToken()
	}
	for isIdent(p.curToken) {
		dec.Names = append(dec.Names, p.ident(p.curToken, false))
		p.nextToken()
	}
	if len(dec.Names) == 0 {
		p.fail(diagnostics.ErrExpectedToken, "expected identifier after %s, found %s", tok.Lexeme, describe(p.curToken))
	}
	for _, name := range dec.Names {
		switch tok.Type {
		case token.NONFIX:
			p.fixity.Clear(name.Name)
		default:
			p.fixity.Set(name.Name, Infix{Prec: dec.Prec, Right: tok.Type == token.INFIXR})
		}
	}
	dec.Loc = p.spanFrom(tok.Span)
	return dec
}
