package parser

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/token"
)

// parseDecs parses declarations up to the first token that cannot start
// one. Semicolons between declarations are optional.
func (p *Parser) parseDecs() []ast.Dec {
	var decs []ast.Dec
	for {
		if p.accept(token.SEMICOLON) {
			continue
		}
		if !startsDec(p.curToken.Type) {
			return decs
		}
		decs = append(decs, p.parseDec())
	}
}

func (p *Parser) parseDec() ast.Dec {
	switch p.curToken.Type {
	case token.VAL:
		return p.parseValDec()
	case token.FUN:
		return p.parseFunDec()
	case token.TYPE:
		tok := p.curToken
		p.nextToken()
		binds := p.parseTypeBinds()
		return &ast.TypeDec{Token: tok, Binds: binds, Loc: p.spanFrom(tok.Span)}
	case token.DATATYPE:
		return p.parseDatatypeDec()
	case token.EXCEPTION:
		return p.parseExceptionDec()
	case token.LOCAL:
		tok := p.curToken
		p.nextToken()
		inner := p.parseDecs()
		p.expect(token.IN, "'in'")
		outer := p.parseDecs()
		p.expect(token.END, "'end'")
		return &ast.LocalDec{Token: tok, Inner: inner, Outer: outer, Loc: p.spanFrom(tok.Span)}
	case token.INFIX, token.INFIXR, token.NONFIX:
		return p.parseFixityDec()
	}
	p.unexpected("declaration")
	return nil
}

func (p *Parser) parseValDec() ast.Dec {
	tok := p.curToken
	p.nextToken()
	dec := &ast.ValDec{Token: tok, Tyvars: p.parseTyvarSeq()}
	dec.Rec = p.accept(token.REC)
	for {
		pat := p.parsePat()
		p.expect(token.EQUALS, "'='")
		dec.Binds = append(dec.Binds, ast.ValBind{Pat: pat, Expr: p.parseExpr()})
		if !p.accept(token.AND) {
			break
		}
		if p.accept(token.REC) {
			dec.Rec = true
		}
	}
	dec.Loc = p.spanFrom(tok.Span)
	return dec
}

func (p *Parser) parseFunDec() ast.Dec {
	tok := p.curToken
	p.nextToken()
	dec := &ast.FunDec{Token: tok, Tyvars: p.parseTyvarSeq()}
	for {
		dec.Binds = append(dec.Binds, p.parseFunBind())
		if !p.accept(token.AND) {
			break
		}
	}
	dec.Loc = p.spanFrom(tok.Span)
	return dec
}

// parseFunBind parses the clauses of one function; every clause must
// name the same function.
func (p *Parser) parseFunBind() ast.FunBind {
	start := p.curToken.Span
	name, clause := p.parseClause()
	bind := ast.FunBind{Name: name, Clauses: []ast.Clause{clause}}
	for p.curTokenIs(token.BAR) {
		p.nextToken()
		other, clause := p.parseClause()
		if other.Name != name.Name {
			p.errors.Errorf(diagnostics.ErrUnexpectedToken, other.Span(),
				"clauses of function %s cannot define %s", name.Name, other.Name)
		}
		bind.Clauses = append(bind.Clauses, clause)
	}
	bind.Loc = p.spanFrom(start)
	return bind
}

// parseClause parses the three clause heads:
//
//	f p1 ... pn        prefix
//	p1 f p2            infix
//	(p1 f p2) p3 ...   parenthesised infix with extra arguments
func (p *Parser) parseClause() (*ast.Ident, ast.Clause) {
	start := p.curToken.Span
	var name *ast.Ident
	var pats []ast.Pat

	first := p.parseAtomPat()
	switch {
	case p.isInfixPat(p.curToken):
		name = p.ident(p.curToken, false)
		p.nextToken()
		right := p.parseAtomPat()
		pats = []ast.Pat{&ast.TuplePat{Token: name.Token, Elems: []ast.Pat{first, right}, Loc: first.Span().To(right.Span())}}
	default:
		switch h := first.(type) {
		case *ast.VarPat:
			name = h.Name
		case *ast.ConPat:
			if !h.Infix {
				p.errors.Errorf(diagnostics.ErrUnexpectedToken, h.Span(), "expected function name in clause head")
				panic(bailout{})
			}
			name = h.Con
			pats = []ast.Pat{h.Arg}
		default:
			p.errors.Errorf(diagnostics.ErrUnexpectedToken, first.Span(), "expected function name in clause head")
			panic(bailout{})
		}
	}
	for startsAtomPat(p.curToken.Type) && !p.isInfixPat(p.curToken) {
		pats = append(pats, p.parseAtomPat())
	}
	if len(pats) == 0 {
		p.fail(diagnostics.ErrExpectedToken, "function %s needs at least one argument pattern", name.Name)
	}
	clause := ast.Clause{Pats: pats}
	if p.accept(token.COLON) {
		clause.ResultTy = p.parseTy()
	}
	p.expect(token.EQUALS, "'='")
	clause.Body = p.parseExpr()
	clause.Loc = p.spanFrom(start)
	return name, clause
}

func (p *Parser) parseTypeBinds() []ast.TypeBind {
	var binds []ast.TypeBind
	for {
		tyvars := p.parseTyvarSeq()
		nameTok := p.expect(token.IDENT, "type name")
		p.expect(token.EQUALS, "'='")
		binds = append(binds, ast.TypeBind{Tyvars: tyvars, Name: p.ident(nameTok, false), Ty: p.parseTy()})
		if !p.accept(token.AND) {
			return binds
		}
	}
}

func (p *Parser) parseDatatypeDec() ast.Dec {
	tok := p.curToken
	p.nextToken()
	dec := &ast.DatatypeDec{Token: tok}
	for {
		bind := ast.DataBind{Tyvars: p.parseTyvarSeq()}
		bind.Name = p.ident(p.expect(token.IDENT, "datatype name"), false)
		p.expect(token.EQUALS, "'='")
		for {
			op := p.accept(token.OP)
			if !isIdent(p.curToken) {
				p.fail(diagnostics.ErrExpectedToken, "expected constructor name, found %s", describe(p.curToken))
			}
			con := ast.ConBind{Name: p.ident(p.curToken, op)}
			p.nextToken()
			if p.accept(token.OF) {
				con.Arg = p.parseTy()
			}
			bind.Cons = append(bind.Cons, con)
			if !p.accept(token.BAR) {
				break
			}
		}
		dec.Binds = append(dec.Binds, bind)
		if !p.accept(token.AND) {
			break
		}
	}
	if p.accept(token.WITHTYPE) {
		dec.WithType = p.parseTypeBinds()
	}
	dec.Loc = p.spanFrom(tok.Span)
	return dec
}

func (p *Parser) parseExceptionDec() ast.Dec {
	tok := p.curToken
	p.nextToken()
	dec := &ast.ExceptionDec{Token: tok}
	for {
		op := p.accept(token.OP)
		if !isIdent(p.curToken) {
			p.fail(diagnostics.ErrExpectedToken, "expected exception name, found %s", describe(p.curToken))
		}
		bind := ast.ExnBind{Name: p.ident(p.curToken, op)}
		p.nextToken()
		switch {
		case p.accept(token.OF):
			bind.Arg = p.parseTy()
		case p.accept(token.EQUALS):
			p.accept(token.OP)
			bind.Alias = p.ident(p.expect(token.IDENT, "exception name"), false)
		}
		dec.Binds = append(dec.Binds, bind)
		if !p.accept(token.AND) {
			break
		}
	}
	dec.Loc = p.spanFrom(tok.Span)
	return dec
}
