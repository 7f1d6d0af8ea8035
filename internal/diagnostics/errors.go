package diagnostics

import (
	"fmt"

	"github.com/funvibe/smlc/internal/source"
)

// ErrorCode is a stable identifier for a diagnostic.
type ErrorCode string

const (
	// Lexer
	ErrIllegalCharacter    ErrorCode = "IllegalCharacter"
	ErrUnterminatedString  ErrorCode = "UnterminatedString"
	ErrUnterminatedComment ErrorCode = "UnterminatedComment"
	ErrMalformedLiteral    ErrorCode = "MalformedLiteral"

	// Parser
	ErrUnexpectedToken ErrorCode = "UnexpectedToken"
	ErrExpectedToken   ErrorCode = "ExpectedToken"
	ErrInvalidFixity   ErrorCode = "InvalidFixity"

	// Resolution
	ErrUnboundVar       ErrorCode = "UnboundVar"
	ErrUnboundType      ErrorCode = "UnboundType"
	ErrUnboundCon       ErrorCode = "UnboundCon"
	ErrDuplicateLabel   ErrorCode = "DuplicateLabel"
	ErrDuplicateBinding ErrorCode = "DuplicateBinding"

	// Typing
	ErrMismatch     ErrorCode = "Mismatch"
	ErrOccurs       ErrorCode = "Occurs"
	ErrRowArity     ErrorCode = "RowArity"
	ErrMissingLabel ErrorCode = "MissingLabel"
	ErrTyconArity   ErrorCode = "TyconArity"
	ErrNotAFunction ErrorCode = "NotAFunction"

	// Constructors
	ErrConArityMismatch     ErrorCode = "ConArityMismatch"
	ErrConstructorNotInType ErrorCode = "ConstructorNotInType"

	// Match
	ErrInexhaustiveMatch ErrorCode = "InexhaustiveMatch"
	ErrRedundantRule     ErrorCode = "RedundantRule"

	// Generalization
	ErrValueRestriction ErrorCode = "ValueRestriction"
	ErrEscapingTyvar    ErrorCode = "EscapingTyvar"
	ErrEscapingDatatype ErrorCode = "EscapingDatatype"

	// Driver
	ErrUnknownFlag          ErrorCode = "UnknownFlag"
	ErrMissingPhaseArgument ErrorCode = "MissingPhaseArgument"
	ErrUnrecognizedPhase    ErrorCode = "UnrecognizedPhase"
	ErrReadFile             ErrorCode = "ReadFile"
	ErrInvalidProjectConfig ErrorCode = "InvalidProjectConfig"
	ErrUnsupportedExtension ErrorCode = "UnsupportedExtension"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// DiagnosticError is a problem found in the program being compiled.
// Elaboration keeps going after any of them; only errors make the
// compilation fail.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Span     source.Span
	Message  string
	// Witness is an example of a value no rule matches, for
	// InexhaustiveMatch.
	Witness string
}

func NewError(code ErrorCode, span source.Span, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Span: span, Message: msg}
}

func NewWarning(code ErrorCode, span source.Span, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Span: span, Message: msg}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Severity, e.Code, e.Message)
}

func (e *DiagnosticError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Format renders the diagnostic as file:line:col: severity[CODE]: message.
func (e *DiagnosticError) Format(sm *source.SourceMap) string {
	if sm == nil || e.Span.File == 0 {
		return e.Error()
	}
	return fmt.Sprintf("%s: %s", sm.Position(e.Span), e.Error())
}
