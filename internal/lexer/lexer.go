package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/token"
)

type Lexer struct {
	input        string
	file         source.FileID
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	errors       []*diagnostics.DiagnosticError
}

func New(input string, file source.FileID) *Lexer {
	l := &Lexer{input: input, file: file}
	l.readChar()
	return l
}

// Errors returns the lexical errors seen so far.
func (l *Lexer) Errors() []*diagnostics.DiagnosticError {
	return l.errors
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if l.readPosition+w >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition+w:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) span(start int) source.Span {
	end := l.position
	if end > len(l.input) {
		end = len(l.input)
	}
	return source.Span{File: l.file, Lo: uint32(start), Hi: uint32(end)}
}

func (l *Lexer) errorf(code diagnostics.ErrorCode, start int, msg string) {
	l.errors = append(l.errors, diagnostics.NewError(code, l.span(start), msg))
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	start := l.position

	if l.atEOF() {
		return token.Token{Type: token.EOF, Span: l.span(start)}
	}

	switch l.ch {
	case '(':
		return l.single(token.LPAREN, start)
	case ')':
		return l.single(token.RPAREN, start)
	case '[':
		return l.single(token.LBRACKET, start)
	case ']':
		return l.single(token.RBRACKET, start)
	case '{':
		return l.single(token.LBRACE, start)
	case '}':
		return l.single(token.RBRACE, start)
	case ',':
		return l.single(token.COMMA, start)
	case ';':
		return l.single(token.SEMICOLON, start)
	case '"':
		s, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Span: l.span(start)}
		}
		return token.Token{Type: token.STRING, Lexeme: l.input[start:l.position], Literal: s, Span: l.span(start)}
	case '.':
		if l.peekChar() == '.' && l.peekChar2() == '.' {
			l.readChar()
			l.readChar()
			l.readChar()
			return token.Token{Type: token.ELLIPSIS, Lexeme: "...", Span: l.span(start)}
		}
	case '#':
		if l.peekChar() == '"' {
			return l.readCharLiteral(start)
		}
	case '\'':
		l.readChar()
		for l.ch == '\'' {
			l.readChar()
		}
		l.readIdentifier()
		lexeme := l.input[start:l.position]
		if strings.TrimLeft(lexeme, "'") == "" {
			l.errorf(diagnostics.ErrIllegalCharacter, start, "type variable needs a name")
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Span: l.span(start)}
		}
		return token.Token{Type: token.TYVAR, Lexeme: lexeme, Span: l.span(start)}
	case '_':
		if !isIdentPart(l.peekChar()) {
			return l.single(token.WILD, start)
		}
	case '~':
		if isDigit(l.peekChar()) {
			return l.readNumber(start)
		}
	}

	switch {
	case isLetter(l.ch):
		l.readIdentifier()
		lexeme := l.input[start:l.position]
		return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.span(start)}
	case isDigit(l.ch):
		return l.readNumber(start)
	case isSymbolic(l.ch):
		for isSymbolic(l.ch) {
			l.readChar()
		}
		lexeme := l.input[start:l.position]
		return token.Token{Type: token.LookupSymbol(lexeme), Lexeme: lexeme, Span: l.span(start)}
	}

	ch := l.ch
	l.readChar()
	l.errorf(diagnostics.ErrIllegalCharacter, start, "illegal character "+strconv.QuoteRune(ch))
	return token.Token{Type: token.ILLEGAL, Lexeme: string(ch), Span: l.span(start)}
}

func (l *Lexer) single(tokenType token.TokenType, start int) token.Token {
	l.readChar()
	return token.Token{Type: tokenType, Lexeme: l.input[start:l.position], Span: l.span(start)}
}

// skipWhitespace also skips comments, which nest.
func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\f' {
			l.readChar()
		}
		if l.ch != '(' || l.peekChar() != '*' {
			return
		}
		start := l.position
		l.readChar() // (
		l.readChar() // *
		depth := 1
		for depth > 0 {
			switch {
			case l.atEOF():
				l.errorf(diagnostics.ErrUnterminatedComment, start, "unterminated comment")
				return
			case l.ch == '(' && l.peekChar() == '*':
				l.readChar()
				l.readChar()
				depth++
			case l.ch == '*' && l.peekChar() == ')':
				l.readChar()
				l.readChar()
				depth--
			default:
				l.readChar()
			}
		}
	}
}

func (l *Lexer) readIdentifier() {
	for isIdentPart(l.ch) {
		l.readChar()
	}
}

// readNumber reads integer literals (decimal, ~ negated, 0x hex) and reals
// with an optional fraction and exponent.
func (l *Lexer) readNumber(start int) token.Token {
	neg := false
	if l.ch == '~' {
		neg = true
		l.readChar()
	}
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') && isHexDigit(l.peekChar2()) {
		l.readChar()
		l.readChar()
		digitsStart := l.position
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.intToken(start, l.input[digitsStart:l.position], 16, neg)
	}
	digitsStart := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	real := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		real = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || (next == '~' && isDigit(l.peekChar2())) {
			real = true
			l.readChar()
			if l.ch == '~' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	digits := l.input[digitsStart:l.position]
	if !real {
		return l.intToken(start, digits, 10, neg)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(digits, "~", "-"), 64)
	if err != nil {
		l.errorf(diagnostics.ErrMalformedLiteral, start, "malformed real literal "+l.input[start:l.position])
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Span: l.span(start)}
	}
	if neg {
		f = -f
	}
	return token.Token{Type: token.REAL, Lexeme: l.input[start:l.position], Literal: f, Span: l.span(start)}
}

func (l *Lexer) intToken(start int, digits string, base int, neg bool) token.Token {
	if neg {
		digits = "-" + digits
	}
	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		l.errorf(diagnostics.ErrMalformedLiteral, start, "integer literal out of range: "+l.input[start:l.position])
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Span: l.span(start)}
	}
	return token.Token{Type: token.INT, Lexeme: l.input[start:l.position], Literal: n, Span: l.span(start)}
}

// readString reads a string literal starting at the opening quote and
// returns its decoded contents.
func (l *Lexer) readString() (string, bool) {
	start := l.position
	var sb strings.Builder
	l.readChar() // opening quote
	for {
		switch {
		case l.atEOF() || l.ch == '\n':
			l.errorf(diagnostics.ErrUnterminatedString, start, "unterminated string literal")
			return sb.String(), false
		case l.ch == '"':
			l.readChar()
			return sb.String(), true
		case l.ch == '\\':
			escStart := l.position
			l.readChar()
			r, ok := l.readEscape()
			if !ok {
				l.errorf(diagnostics.ErrMalformedLiteral, escStart, "invalid escape sequence")
				continue
			}
			if r >= 0 {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readEscape decodes the escape after a backslash. A formatting gap
// (\ whitespace \) yields -1.
func (l *Lexer) readEscape() (rune, bool) {
	ch := l.ch
	switch ch {
	case 'n':
		l.readChar()
		return '\n', true
	case 't':
		l.readChar()
		return '\t', true
	case 'a':
		l.readChar()
		return '\a', true
	case 'b':
		l.readChar()
		return '\b', true
	case 'v':
		l.readChar()
		return '\v', true
	case 'f':
		l.readChar()
		return '\f', true
	case 'r':
		l.readChar()
		return '\r', true
	case '\\', '"':
		l.readChar()
		return ch, true
	case '^':
		l.readChar()
		c := l.ch
		if c < 64 || c > 95 {
			return 0, false
		}
		l.readChar()
		return c - 64, true
	case 'u':
		l.readChar()
		return l.readDigits(4, 16)
	}
	if isDigit(ch) {
		return l.readDigits(3, 10)
	}
	if unicode.IsSpace(ch) {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}
		if l.ch != '\\' {
			return 0, false
		}
		l.readChar()
		return -1, true
	}
	return 0, false
}

func (l *Lexer) readDigits(n, base int) (rune, bool) {
	start := l.position
	for i := 0; i < n; i++ {
		if (base == 16 && !isHexDigit(l.ch)) || (base == 10 && !isDigit(l.ch)) {
			return 0, false
		}
		l.readChar()
	}
	v, err := strconv.ParseInt(l.input[start:l.position], base, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, false
	}
	return rune(v), true
}

// readCharLiteral reads #"c", which must hold exactly one character.
func (l *Lexer) readCharLiteral(start int) token.Token {
	l.readChar() // #
	s, ok := l.readString()
	lexeme := l.input[start:l.position]
	if !ok {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Span: l.span(start)}
	}
	if utf8.RuneCountInString(s) != 1 {
		l.errorf(diagnostics.ErrMalformedLiteral, start, "character literal must hold exactly one character")
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Span: l.span(start)}
	}
	r, _ := utf8.DecodeRuneInString(s)
	return token.Token{Type: token.CHAR, Lexeme: lexeme, Literal: r, Span: l.span(start)}
}

// Tokenize reads every token up to and including EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func isLetter(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isIdentPart(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '\''
}

func isSymbolic(ch rune) bool {
	return strings.ContainsRune("!%&$#+-/:<=>?@\\~`^|*", ch)
}
