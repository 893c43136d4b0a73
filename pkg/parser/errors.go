package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapc/pkg/core"
)

// ErrParse is matched by every *ParseError via errors.Is.
var ErrParse = errors.New("parse error")

// ParseError represents a fatal parsing error with position information.
// A parse that returns one produces no AST.
type ParseError struct {
	Kind    core.ErrorKind
	Pos     Position
	Token   Token
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Diagnostic converts the error into a core.Diagnostic.
func (e *ParseError) Diagnostic() core.Diagnostic {
	return core.Diagnostic{
		Phase:    core.PhaseParse,
		Kind:     e.Kind,
		Severity: core.SeverityError,
		Pos:      e.Pos,
		Message:  e.Message,
	}
}

// LexError represents a recoverable lexical analysis error.
// The offending character is dropped and lexing continues.
type LexError struct {
	Pos     Position
	Char    rune
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Diagnostic converts the error into a core.Diagnostic.
func (e *LexError) Diagnostic() core.Diagnostic {
	return core.Diagnostic{
		Phase:    core.PhaseLex,
		Kind:     core.KindUnrecognizedChar,
		Severity: core.SeverityWarning,
		Pos:      e.Pos,
		Message:  e.Message,
	}
}

// Common error messages
const (
	ErrUnexpectedToken    = "unexpected token %s, expected %s"
	ErrUnexpectedEOF      = "unexpected end of input, expected %s"
	ErrUnrecognizedChar   = "couldn't lex %q"
	ErrInvalidNumber      = "integer literal %s out of range for int"
	ErrInvalidDirective   = "invalid preprocessing directive #%s"
	ErrInvalidIncludePath = "invalid include path: unexpected %s"
	ErrDefineUnsupported  = "#define is not supported"
	ErrOnlyFuncDecl       = "expected function declaration after %q, found %s"
	ErrParamsUnsupported  = "function parameters are not supported, found %s"
	ErrUnsupportedPrimary = "unsupported primary expression %s"
	ErrCallTarget         = "call target must be an identifier, found %s"
)
