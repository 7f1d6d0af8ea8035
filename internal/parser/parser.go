package parser

import (
	"fmt"

	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/token"
)

// bailout unwinds the parser to the enclosing top-level declaration after
// an error has been reported.
type bailout struct{}

type Parser struct {
	tokens    []token.Token
	pos       int
	curToken  token.Token
	peekToken token.Token
	prevToken token.Token
	fixity    *Fixity
	errors    *diagnostics.List
}

// New creates a parser over a token stream ending in EOF. Fixity
// declarations update fixity, which is shared by every file of a
// compilation.
func New(tokens []token.Token, fixity *Fixity, errors *diagnostics.List) *Parser {
	p := &Parser{fixity: fixity, errors: errors}
	for _, tok := range tokens {
		if tok.Type != token.ILLEGAL {
			p.tokens = append(p.tokens, tok)
		}
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Type != token.EOF {
		p.tokens = append(p.tokens, token.Token{Type: token.EOF})
	}
	p.pos = -1
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.peekToken = p.tokens[p.pos+1]
	} else {
		p.peekToken = p.curToken
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// accept consumes the current token if it has type t.
func (p *Parser) accept(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes and returns a token of type t, or reports an error and
// bails out.
func (p *Parser) expect(t token.TokenType, what string) token.Token {
	if !p.curTokenIs(t) {
		p.fail(diagnostics.ErrExpectedToken, "expected %s, found %s", what, describe(p.curToken))
	}
	tok := p.curToken
	p.nextToken()
	return tok
}

func (p *Parser) fail(code diagnostics.ErrorCode, format string, args ...any) {
	p.errors.Errorf(code, p.curToken.Span, format, args...)
	panic(bailout{})
}

func (p *Parser) unexpected(what string) {
	p.fail(diagnostics.ErrUnexpectedToken, "unexpected %s in %s", describe(p.curToken), what)
}

// spanFrom covers start up to the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.To(p.prevToken.Span)
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// ParseProgram parses a sequence of top-level declarations and
// expressions. After an error it skips to the next declaration keyword
// and keeps going, so one pass reports every syntax error it can.
func (p *Parser) ParseProgram(file source.FileID) *ast.Program {
	prog := &ast.Program{File: file}
	for !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) {
			continue
		}
		if dec, ok := p.parseTopDec(); ok {
			prog.Decs = append(prog.Decs, dec)
		}
	}
	return prog
}

func (p *Parser) parseTopDec() (dec ast.Dec, ok bool) {
	start := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.synchronize(start)
			dec, ok = nil, false
		}
	}()
	if startsDec(p.curToken.Type) {
		return p.parseDec(), true
	}
	return &ast.ExprDec{Expr: p.parseExpr()}, true
}

// synchronize skips to a token that can start a top-level declaration,
// always making progress past the token where parsing started.
func (p *Parser) synchronize(start int) {
	if p.pos == start {
		p.nextToken()
	}
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) || startsDec(p.curToken.Type) {
			return
		}
		p.nextToken()
	}
}

func startsDec(t token.TokenType) bool {
	switch t {
	case token.VAL, token.FUN, token.TYPE, token.DATATYPE, token.EXCEPTION,
		token.LOCAL, token.INFIX, token.INFIXR, token.NONFIX:
		return true
	}
	return false
}

// isIdent reports whether tok can name a value: alphanumeric or symbolic
// identifiers and `=`.
func isIdent(tok token.Token) bool {
	return tok.Type == token.IDENT || tok.Type == token.SYMID || tok.Type == token.EQUALS
}

// isInfix reports whether tok is an identifier with infix status.
func (p *Parser) isInfix(tok token.Token) bool {
	if !isIdent(tok) {
		return false
	}
	_, ok := p.fixity.Lookup(tok.Lexeme)
	return ok
}

func (p *Parser) ident(tok token.Token, op bool) *ast.Ident {
	return &ast.Ident{Token: tok, Name: tok.Lexeme, Op: op}
}

// parseLabel reads a record label: an alphanumeric identifier or a
// positive integer.
func (p *Parser) parseLabel() token.Token {
	tok := p.curToken
	switch tok.Type {
	case token.IDENT:
	case token.INT:
		if n, _ := tok.Literal.(int64); n <= 0 || tok.Lexeme[0] == '0' {
			p.fail(diagnostics.ErrUnexpectedToken, "record label %s must be a positive integer", describe(tok))
		}
	default:
		p.fail(diagnostics.ErrExpectedToken, "expected record label, found %s", describe(tok))
	}
	p.nextToken()
	return tok
}
