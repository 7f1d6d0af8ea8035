package parser

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/token"
)

// parseTy parses a type:
//
//	ty ::= tupty -> ty | tupty
//	tupty ::= appty * ... * appty
//	appty ::= atty tycon*
func (p *Parser) parseTy() ast.Ty {
	t := p.parseTupleTy()
	if p.accept(token.ARROW) {
		return &ast.ArrowTy{Dom: t, Cod: p.parseTy()}
	}
	return t
}

func (p *Parser) isStar() bool {
	return p.curTokenIs(token.SYMID) && p.curToken.Lexeme == "*"
}

func (p *Parser) parseTupleTy() ast.Ty {
	first := p.parseAppTy()
	if !p.isStar() {
		return first
	}
	elems := []ast.Ty{first}
	for p.isStar() {
		p.nextToken()
		elems = append(elems, p.parseAppTy())
	}
	return &ast.TupleTy{Elems: elems}
}

func (p *Parser) parseAppTy() ast.Ty {
	t := p.parseAtomTy()
	for p.curTokenIs(token.IDENT) {
		name := p.ident(p.curToken, false)
		p.nextToken()
		t = &ast.ConTy{Name: name, Args: []ast.Ty{t}, Loc: t.Span().To(name.Span())}
	}
	return t
}

func (p *Parser) parseAtomTy() ast.Ty {
	tok := p.curToken
	switch tok.Type {
	case token.TYVAR:
		p.nextToken()
		return &ast.VarTy{Token: tok}
	case token.IDENT:
		p.nextToken()
		return &ast.ConTy{Name: p.ident(tok, false), Loc: tok.Span}
	case token.LBRACE:
		p.nextToken()
		rec := &ast.RecordTy{Token: tok}
		if !p.curTokenIs(token.RBRACE) {
			for {
				label := p.parseLabel()
				p.expect(token.COLON, "':'")
				rec.Fields = append(rec.Fields, ast.TyField{Label: label, Ty: p.parseTy()})
				if !p.accept(token.COMMA) {
					break
				}
			}
		}
		p.expect(token.RBRACE, "'}'")
		rec.Loc = p.spanFrom(tok.Span)
		return rec
	case token.LPAREN:
		p.nextToken()
		first := p.parseTy()
		if !p.curTokenIs(token.COMMA) {
			p.expect(token.RPAREN, "')'")
			return first
		}
		args := []ast.Ty{first}
		for p.accept(token.COMMA) {
			args = append(args, p.parseTy())
		}
		p.expect(token.RPAREN, "')'")
		nameTok := p.expect(token.IDENT, "type constructor")
		return &ast.ConTy{Name: p.ident(nameTok, false), Args: args, Loc: p.spanFrom(tok.Span)}
	}
	p.unexpected("type")
	return nil
}

// parseTyvarSeq parses an optional 'a or ('a, 'b, ...).
func (p *Parser) parseTyvarSeq() []token.Token {
	if p.curTokenIs(token.TYVAR) {
		tok := p.curToken
		p.nextToken()
		return []token.Token{tok}
	}
	if !p.curTokenIs(token.LPAREN) || !p.peekTokenIs(token.TYVAR) {
		return nil
	}
	p.nextToken()
	vars := []token.Token{p.expect(token.TYVAR, "type variable")}
	for p.accept(token.COMMA) {
		vars = append(vars, p.expect(token.TYVAR, "type variable"))
	}
	p.expect(token.RPAREN, "')'")
	return vars
}
