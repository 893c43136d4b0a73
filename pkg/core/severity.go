package core

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapc/pkg/token"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates input that could not be handled.
	SeverityError Severity = iota
	// SeverityWarning indicates input that was skipped.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	v, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("unknown severity %q", text)
	}
	*s = v
	return nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// Failure kinds
// =============================================================================

// ErrorKind classifies what went wrong in a phase.
type ErrorKind int

// ErrorKind constants. Lexer and interpreter kinds are recoverable;
// parser kinds abort the parse.
const (
	KindUnrecognizedChar ErrorKind = iota + 1

	KindUnexpectedToken
	KindUnexpectedEOF
	KindUnsupported
	KindInvalidDirective
	KindInvalidLiteral

	KindUnsupportedNode
	KindUnknownHeader
)

// String returns a stable snake_case name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedChar:
		return "unrecognized_char"
	case KindUnexpectedToken:
		return "unexpected_token"
	case KindUnexpectedEOF:
		return "unexpected_eof"
	case KindUnsupported:
		return "unsupported"
	case KindInvalidDirective:
		return "invalid_directive"
	case KindInvalidLiteral:
		return "invalid_literal"
	case KindUnsupportedNode:
		return "unsupported_node"
	case KindUnknownHeader:
		return "unknown_header"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	v, ok := ParseErrorKind(string(text))
	if !ok {
		return fmt.Errorf("unknown error kind %q", text)
	}
	*k = v
	return nil
}

// ParseErrorKind converts a kind name produced by String back to its value.
func ParseErrorKind(s string) (ErrorKind, bool) {
	for k := KindUnrecognizedChar; k <= KindUnknownHeader; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Phase names the pipeline stage that produced a diagnostic.
type Phase string

// Pipeline phases.
const (
	PhaseLex    Phase = "lex"
	PhaseParse  Phase = "parse"
	PhaseInterp Phase = "interp"
)

// =============================================================================
// Diagnostic
// =============================================================================

// Diagnostic is a single reported problem from any phase.
type Diagnostic struct {
	Phase    Phase          `json:"phase" yaml:"phase"`
	Kind     ErrorKind      `json:"kind" yaml:"kind"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Pos      token.Position `json:"pos" yaml:"pos"`
	Message  string         `json:"message" yaml:"message"`
}

// String formats the diagnostic as "phase line:col severity: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Phase, d.Pos, d.Severity, d.Message)
}
