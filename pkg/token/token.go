// Package token defines the token types for C-subset lexing.
//
// Keywords are not distinguished at the lexical level: "int", "return" and
// "main" all lex as IDENT and the parser decides what they mean.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // main, int, include
	NUMBER // 123
	STRING // "hello"

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COLON     // :
	COMMA     // ,
	SEMICOLON // ;
	EQ        // =
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	DOT       // .
	HASH      // #
	LT        // <
	GT        // >
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COLON:     ":",
	COMMA:     ",",
	SEMICOLON: ";",
	EQ:        "=",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	DOT:       ".",
	HASH:      "#",
	LT:        "<",
	GT:        ">",
}

// punctuation maps each single-character token to its type.
var punctuation = map[rune]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	':': COLON,
	',': COMMA,
	';': SEMICOLON,
	'=': EQ,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'.': DOT,
	'#': HASH,
	'<': LT,
	'>': GT,
}

// LookupPunct returns the token type for a single punctuation character.
// The second result is false if ch is not a recognized punctuation mark.
func LookupPunct(ch rune) (TokenType, bool) {
	t, ok := punctuation[ch]
	return t, ok
}

// PunctCount returns the number of recognized punctuation characters.
func PunctCount() int {
	return len(punctuation)
}

// IsPunct returns true if the token type is a punctuation mark.
func IsPunct(t TokenType) bool {
	return t >= LPAREN && t <= GT
}

// IsLiteral returns true if the token carries source text of variable length.
func IsLiteral(t TokenType) bool {
	return t >= IDENT && t <= STRING
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String formats the token for diagnostics, e.g. IDENT("main") or ";".
func (t Token) String() string {
	if IsLiteral(t.Type) {
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return t.Type.String()
}
