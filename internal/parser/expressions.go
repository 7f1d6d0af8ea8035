package parser

import (
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/token"
)

// parseExpr parses a full expression:
//
//	exp ::= exp handle match | exp orelse exp | exp andalso exp
//	      | exp : ty | infexp
//	      | fn match | case exp of match | if exp then exp else exp
//	      | while exp do exp | raise exp
//
// The keyword forms extend as far to the right as possible.
func (p *Parser) parseExpr() ast.Expr {
	e := p.parseOrelse()
	for p.curTokenIs(token.HANDLE) {
		tok := p.curToken
		p.nextToken()
		rules := p.parseMatch()
		e = &ast.HandleExpr{Token: tok, Expr: e, Rules: rules, Loc: p.spanFrom(e.Span())}
	}
	return e
}

func (p *Parser) parseOrelse() ast.Expr {
	e := p.parseAndalso()
	for p.curTokenIs(token.ORELSE) {
		tok := p.curToken
		p.nextToken()
		e = &ast.OrelseExpr{Token: tok, Left: e, Right: p.parseAndalso()}
	}
	return e
}

func (p *Parser) parseAndalso() ast.Expr {
	e := p.parseTyped()
	for p.curTokenIs(token.ANDALSO) {
		tok := p.curToken
		p.nextToken()
		e = &ast.AndalsoExpr{Token: tok, Left: e, Right: p.parseTyped()}
	}
	return e
}

func (p *Parser) parseTyped() ast.Expr {
	switch p.curToken.Type {
	case token.FN:
		return p.parseFn()
	case token.CASE:
		return p.parseCase()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RAISE:
		tok := p.curToken
		p.nextToken()
		return &ast.RaiseExpr{Token: tok, Expr: p.parseExpr()}
	}
	e := p.parseInfix()
	for p.curTokenIs(token.COLON) {
		p.nextToken()
		e = &ast.TypedExpr{Expr: e, Ty: p.parseTy()}
	}
	return e
}

func (p *Parser) parseFn() ast.Expr {
	tok := p.curToken
	p.nextToken()
	rules := p.parseMatch()
	return &ast.FnExpr{Token: tok, Rules: rules, Loc: p.spanFrom(tok.Span)}
}

func (p *Parser) parseCase() ast.Expr {
	tok := p.curToken
	p.nextToken()
	scrut := p.parseExpr()
	p.expect(token.OF, "'of'")
	rules := p.parseMatch()
	return &ast.CaseExpr{Token: tok, Expr: scrut, Rules: rules, Loc: p.spanFrom(tok.Span)}
}

func (p *Parser) parseIf() ast.Expr {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpr()
	p.expect(token.THEN, "'then'")
	then := p.parseExpr()
	p.expect(token.ELSE, "'else'")
	return &ast.IfExpr{Token: tok, Cond: cond, Then: then, Else: p.parseExpr()}
}

func (p *Parser) parseWhile() ast.Expr {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpr()
	p.expect(token.DO, "'do'")
	return &ast.WhileExpr{Token: tok, Cond: cond, Body: p.parseExpr()}
}

// parseMatch parses `pat => exp | ...`.
func (p *Parser) parseMatch() []ast.Rule {
	var rules []ast.Rule
	for {
		pat := p.parsePat()
		p.expect(token.DARROW, "'=>'")
		rules = append(rules, ast.Rule{Pat: pat, Expr: p.parseExpr()})
		if !p.accept(token.BAR) {
			return rules
		}
	}
}

// parseInfix resolves infix operators by precedence climbing over
// applications.
func (p *Parser) parseInfix() ast.Expr {
	return p.climb(p.parseApp(), 0)
}

func (p *Parser) climb(left ast.Expr, minPrec int) ast.Expr {
	for p.isInfix(p.curToken) {
		op, _ := p.fixity.Lookup(p.curToken.Lexeme)
		if op.Prec < minPrec {
			return left
		}
		opIdent := p.ident(p.curToken, false)
		p.nextToken()
		right := p.parseApp()
		for p.isInfix(p.curToken) {
			next, _ := p.fixity.Lookup(p.curToken.Lexeme)
			if next.Prec < op.Prec || (next.Prec == op.Prec && !next.Right) {
				break
			}
			right = p.climb(right, next.Prec)
		}
		left = &ast.InfixExpr{Op: opIdent, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseApp() ast.Expr {
	e := p.parseAtom()
	for startsAtom(p.curToken.Type) && !p.isInfix(p.curToken) {
		e = &ast.AppExpr{Fn: e, Arg: p.parseAtom()}
	}
	return e
}

func startsAtom(t token.TokenType) bool {
	switch t {
	case token.IDENT, token.SYMID, token.OP, token.INT, token.REAL, token.STRING, token.CHAR,
		token.LPAREN, token.LBRACKET, token.LBRACE, token.HASH, token.LET:
		return true
	}
	return false
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.curToken
	switch tok.Type {
	case token.OP:
		p.nextToken()
		if !isIdent(p.curToken) {
			p.fail(diagnostics.ErrExpectedToken, "expected identifier after 'op', found %s", describe(p.curToken))
		}
		id := p.ident(p.curToken, true)
		p.nextToken()
		return id
	case token.IDENT, token.SYMID:
		if p.isInfix(tok) {
			p.fail(diagnostics.ErrUnexpectedToken, "infix operator %s used without 'op'", describe(tok))
		}
		p.nextToken()
		return p.ident(tok, false)
	case token.INT, token.REAL, token.STRING, token.CHAR:
		p.nextToken()
		return &ast.Constant{Token: tok}
	case token.HASH:
		p.nextToken()
		label := p.parseLabel()
		return &ast.Selector{Token: tok, Label: label.Lexeme, Loc: p.spanFrom(tok.Span)}
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACKET:
		p.nextToken()
		var elems []ast.Expr
		if !p.curTokenIs(token.RBRACKET) {
			elems = p.parseExprList()
		}
		p.expect(token.RBRACKET, "']'")
		return &ast.ListExpr{Token: tok, Elems: elems, Loc: p.spanFrom(tok.Span)}
	case token.LBRACE:
		return p.parseRecordExpr()
	case token.LET:
		return p.parseLet()
	}
	p.unexpected("expression")
	return nil
}

func (p *Parser) parseExprList() []ast.Expr {
	elems := []ast.Expr{p.parseExpr()}
	for p.accept(token.COMMA) {
		elems = append(elems, p.parseExpr())
	}
	return elems
}

// parseParenExpr parses (), (e), (e1, ..., en) and (e1; ...; en).
func (p *Parser) parseParenExpr() ast.Expr {
	tok := p.curToken
	p.nextToken()
	if p.accept(token.RPAREN) {
		return &ast.TupleExpr{Token: tok, Loc: p.spanFrom(tok.Span)}
	}
	first := p.parseExpr()
	switch p.curToken.Type {
	case token.COMMA:
		elems := []ast.Expr{first}
		for p.accept(token.COMMA) {
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RPAREN, "')'")
		return &ast.TupleExpr{Token: tok, Elems: elems, Loc: p.spanFrom(tok.Span)}
	case token.SEMICOLON:
		exprs := []ast.Expr{first}
		for p.accept(token.SEMICOLON) {
			exprs = append(exprs, p.parseExpr())
		}
		p.expect(token.RPAREN, "')'")
		return &ast.SeqExpr{Token: tok, Exprs: exprs, Loc: p.spanFrom(tok.Span)}
	}
	p.expect(token.RPAREN, "')'")
	return first
}

func (p *Parser) parseRecordExpr() ast.Expr {
	tok := p.curToken
	p.nextToken()
	rec := &ast.RecordExpr{Token: tok}
	if !p.curTokenIs(token.RBRACE) {
		for {
			label := p.parseLabel()
			p.expect(token.EQUALS, "'='")
			rec.Fields = append(rec.Fields, ast.ExprField{Label: label, Value: p.parseExpr()})
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RBRACE, "'}'")
	rec.Loc = p.spanFrom(tok.Span)
	return rec
}

func (p *Parser) parseLet() ast.Expr {
	tok := p.curToken
	p.nextToken()
	decs := p.parseDecs()
	p.expect(token.IN, "'in'")
	body := []ast.Expr{p.parseExpr()}
	for p.accept(token.SEMICOLON) {
		body = append(body, p.parseExpr())
	}
	p.expect(token.END, "'end'")
	return &ast.LetExpr{Token: tok, Decs: decs, Body: body, Loc: p.spanFrom(tok.Span)}
}
