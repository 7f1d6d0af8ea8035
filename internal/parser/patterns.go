package parser

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/token"
)

// parsePat parses `pat : ty` and infix constructor patterns.
func (p *Parser) parsePat() ast.Pat {
	pat := p.climbPat(p.parseAppPat(), 0)
	for p.curTokenIs(token.COLON) {
		p.nextToken()
		pat = &ast.TypedPat{Pat: pat, Ty: p.parseTy()}
	}
	return pat
}

// isInfixPat is isInfix without `=`, which ends a binding pattern.
func (p *Parser) isInfixPat(tok token.Token) bool {
	return tok.Type != token.EQUALS && p.isInfix(tok)
}

func (p *Parser) climbPat(left ast.Pat, minPrec int) ast.Pat {
	for p.isInfixPat(p.curToken) {
		op, _ := p.fixity.Lookup(p.curToken.Lexeme)
		if op.Prec < minPrec {
			return left
		}
		opIdent := p.ident(p.curToken, false)
		p.nextToken()
		right := p.parseAppPat()
		for p.isInfixPat(p.curToken) {
			next, _ := p.fixity.Lookup(p.curToken.Lexeme)
			if next.Prec < op.Prec || (next.Prec == op.Prec && !next.Right) {
				break
			}
			right = p.climbPat(right, next.Prec)
		}
		left = p.infixPat(opIdent, left, right)
	}
	return left
}

func (p *Parser) infixPat(op *ast.Ident, left, right ast.Pat) ast.Pat {
	span := left.Span().To(right.Span())
	pair := &ast.TuplePat{Token: op.Token, Elems: []ast.Pat{left, right}, Loc: span}
	return &ast.ConPat{Con: op, Arg: pair, Infix: true, Loc: span}
}

// parseAppPat parses a constructor applied to an atomic pattern, or an
// atomic pattern.
func (p *Parser) parseAppPat() ast.Pat {
	if !p.curTokenIs(token.OP) && !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.SYMID) {
		return p.parseAtomPat()
	}
	head := p.parseAtomPat()
	v, ok := head.(*ast.VarPat)
	if !ok || !startsAtomPat(p.curToken.Type) || p.isInfixPat(p.curToken) {
		return head
	}
	arg := p.parseAtomPat()
	return &ast.ConPat{Con: v.Name, Arg: arg, Loc: head.Span().To(arg.Span())}
}

func startsAtomPat(t token.TokenType) bool {
	switch t {
	case token.IDENT, token.SYMID, token.OP, token.WILD, token.INT, token.REAL, token.STRING, token.CHAR,
		token.LPAREN, token.LBRACKET, token.LBRACE:
		return true
	}
	return false
}

func (p *Parser) parseAtomPat() ast.Pat {
	tok := p.curToken
	switch tok.Type {
	case token.WILD:
		p.nextToken()
		return &ast.WildPat{Token: tok}
	case token.INT, token.REAL, token.STRING, token.CHAR:
		p.nextToken()
		return &ast.Constant{Token: tok}
	case token.OP:
		p.nextToken()
		if !isIdent(p.curToken) {
			p.fail(diagnostics.ErrExpectedToken, "expected identifier after 'op', found %s", describe(p.curToken))
		}
		id := p.ident(p.curToken, true)
		p.nextToken()
		return &ast.VarPat{Name: id}
	case token.IDENT, token.SYMID:
		if p.isInfixPat(tok) {
			p.fail(diagnostics.ErrUnexpectedToken, "infix operator %s used without 'op'", describe(tok))
		}
		p.nextToken()
		return &ast.VarPat{Name: p.ident(tok, false)}
	case token.LPAREN:
		p.nextToken()
		if p.accept(token.RPAREN) {
			return &ast.TuplePat{Token: tok, Loc: p.spanFrom(tok.Span)}
		}
		first := p.parsePat()
		if !p.curTokenIs(token.COMMA) {
			p.expect(token.RPAREN, "')'")
			return first
		}
		elems := []ast.Pat{first}
		for p.accept(token.COMMA) {
			elems = append(elems, p.parsePat())
		}
		p.expect(token.RPAREN, "')'")
		return &ast.TuplePat{Token: tok, Elems: elems, Loc: p.spanFrom(tok.Span)}
	case token.LBRACKET:
		p.nextToken()
		var elems []ast.Pat
		if !p.curTokenIs(token.RBRACKET) {
			elems = append(elems, p.parsePat())
			for p.accept(token.COMMA) {
				elems = append(elems, p.parsePat())
			}
		}
		p.expect(token.RBRACKET, "']'")
		return &ast.ListPat{Token: tok, Elems: elems, Loc: p.spanFrom(tok.Span)}
	case token.LBRACE:
		return p.parseRecordPat()
	}
	p.unexpected("pattern")
	return nil
}

// parseRecordPat parses `{l = p, l [: ty], ...}`. A bare label binds a
// variable of the same name.
func (p *Parser) parseRecordPat() ast.Pat {
	tok := p.curToken
	p.nextToken()
	rec := &ast.RecordPat{Token: tok}
	for !p.curTokenIs(token.RBRACE) {
		if p.accept(token.ELLIPSIS) {
			rec.Flexible = true
			break
		}
		label := p.parseLabel()
		var pat ast.Pat
		if p.accept(token.EQUALS) {
			pat = p.parsePat()
		} else {
			if label.Type != token.IDENT {
				p.fail(diagnostics.ErrExpectedToken, "expected '=' after numeric label %s", describe(label))
			}
			pat = &ast.VarPat{Name: p.ident(label, false)}
			if p.accept(token.COLON) {
				pat = &ast.TypedPat{Pat: pat, Ty: p.parseTy()}
			}
		}
		rec.Fields = append(rec.Fields, ast.PatField{Label: label, Pat: pat})
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "'}'")
	rec.Loc = p.spanFrom(tok.Span)
	return rec
}
