package token

import "github.com/funvibe/smlc/internal/source"

type TokenType string

type Token struct {
	Type   TokenType
	Lexeme string
	// Literal is int64 for INT, float64 for REAL, string for STRING and
	// rune for CHAR.
	Literal interface{}
	Span    source.Span
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers and literals
	IDENT  = "IDENT"  // x, foo', SOME
	SYMID  = "SYMID"  // +, ::, <=
	TYVAR  = "TYVAR"  // 'a, ''eq
	INT    = "INT"    // 12, ~3, 0x1F
	REAL   = "REAL"   // 1.5, 2e10
	STRING = "STRING" // "abc"
	CHAR   = "CHAR"   // #"a"

	// Reserved punctuation
	LPAREN    = "("
	RPAREN    = ")"
	LBRACKET  = "["
	RBRACKET  = "]"
	LBRACE    = "{"
	RBRACE    = "}"
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	BAR       = "|"
	EQUALS    = "="
	DARROW    = "=>"
	ARROW     = "->"
	HASH      = "#"
	WILD      = "_"
	ELLIPSIS  = "..."

	// Keywords
	AND       = "AND"
	ANDALSO   = "ANDALSO"
	AS        = "AS"
	CASE      = "CASE"
	DATATYPE  = "DATATYPE"
	DO        = "DO"
	ELSE      = "ELSE"
	END       = "END"
	EXCEPTION = "EXCEPTION"
	FN        = "FN"
	FUN       = "FUN"
	HANDLE    = "HANDLE"
	IF        = "IF"
	IN        = "IN"
	INFIX     = "INFIX"
	INFIXR    = "INFIXR"
	LET       = "LET"
	LOCAL     = "LOCAL"
	NONFIX    = "NONFIX"
	OF        = "OF"
	OP        = "OP"
	ORELSE    = "ORELSE"
	RAISE     = "RAISE"
	REC       = "REC"
	THEN      = "THEN"
	TYPE      = "TYPE"
	VAL       = "VAL"
	WHILE     = "WHILE"
	WITHTYPE  = "WITHTYPE"
)

var keywords = map[string]TokenType{
	"and":       AND,
	"andalso":   ANDALSO,
	"as":        AS,
	"case":      CASE,
	"datatype":  DATATYPE,
	"do":        DO,
	"else":      ELSE,
	"end":       END,
	"exception": EXCEPTION,
	"fn":        FN,
	"fun":       FUN,
	"handle":    HANDLE,
	"if":        IF,
	"in":        IN,
	"infix":     INFIX,
	"infixr":    INFIXR,
	"let":       LET,
	"local":     LOCAL,
	"nonfix":    NONFIX,
	"of":        OF,
	"op":        OP,
	"orelse":    ORELSE,
	"raise":     RAISE,
	"rec":       REC,
	"then":      THEN,
	"type":      TYPE,
	"val":       VAL,
	"while":     WHILE,
	"withtype":  WITHTYPE,
}

var reservedSymbols = map[string]TokenType{
	":":  COLON,
	"|":  BAR,
	"=":  EQUALS,
	"=>": DARROW,
	"->": ARROW,
	"#":  HASH,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// LookupSymbol returns the reserved type for a symbolic word, or SYMID.
func LookupSymbol(sym string) TokenType {
	if tok, ok := reservedSymbols[sym]; ok {
		return tok
	}
	return SYMID
}
