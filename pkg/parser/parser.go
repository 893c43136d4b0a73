// Package parser provides lexing and parsing for a small subset of C.
//
// # Usage
//
//	ast, err := parser.Parse(src)
//	if err != nil {
//	    // fatal: no AST was produced
//	}
//
// Lexing is recoverable (dropped characters are reported on the side) while
// parsing is not: the first structural error ends the parse and no partial
// AST is returned.
//
// # Grammar Overview
//
//	program     → statement* EOF
//	statement   → directive | declaration | return | expr
//	directive   → "#" "include" ( "<" path ">" | STRING )
//	            | "#" "define" …                      (unsupported)
//	declaration → type IDENT "(" ( "void" ")" | ")" ) "{" statement* "}"
//	return      → "return" expr
//	expr        → primary [ "(" expr* ")" ]
//	primary     → IDENT | STRING | NUMBER | ";"
//
// See each file for the rules it implements.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// Parser parses a token sequence into an AST.
// Tokens are consumed strictly front to back with one token of lookahead.
type Parser struct {
	tokens []Token
	pos    int // index of the current token
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger makes the parser log its progress at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a new parser over tokens produced by Tokenize.
func NewParser(tokens []Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Result holds the output of ParseSource.
type Result struct {
	AST       *core.AST
	LexErrors []*LexError
}

// Parse lexes and parses src. Characters the lexer drops do not cause an error;
// use ParseSource to see them.
func Parse(src string, opts ...Option) (*core.AST, error) {
	res, err := ParseSource(src, opts...)
	if err != nil {
		return nil, err
	}
	return res.AST, nil
}

// ParseSource lexes and parses src, returning the lexer diagnostics with the AST.
// On a parse error the lexer diagnostics are still returned.
func ParseSource(src string, opts ...Option) (*Result, error) {
	p := NewParser(nil, opts...)
	tokens, lexErrs := Tokenize(src, WithLexLogger(p.logger))
	p.tokens = tokens

	ast, err := p.Parse()
	if err != nil {
		return &Result{LexErrors: lexErrs}, err
	}
	return &Result{AST: ast, LexErrors: lexErrs}, nil
}

// ParseTokens parses an already lexed token sequence.
func ParseTokens(tokens []Token, opts ...Option) (*core.AST, error) {
	return NewParser(tokens, opts...).Parse()
}

// Parse consumes every token and returns the AST, terminated by an EOF node.
func (p *Parser) Parse() (*core.AST, error) {
	ast := core.NewAST()
	for !p.eof() {
		node, err := p.parseStatement()
		if err != nil {
			p.logger.Debug("parse failed", "error", err)
			return nil, err
		}
		ast.Append(node)
	}
	ast.Append(&core.EOF{NodeInfo: core.NodeInfo{Start: p.endPos()}})

	p.logger.Debug("parsed program", "nodes", ast.Len(), "tokens", len(p.tokens))
	return ast, nil
}

// ---------- Token Helpers ----------

// eof returns true once every token has been consumed.
func (p *Parser) eof() bool {
	return p.pos >= len(p.tokens)
}

// peek returns the current token without consuming it.
// At end of input it returns an EOF token.
func (p *Parser) peek() Token {
	if p.eof() {
		return Token{Type: token.EOF, Pos: p.endPos()}
	}
	return p.tokens[p.pos]
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return !p.eof() && p.tokens[p.pos].Type == t
}

// next consumes and returns the current token.
// what names the expected construct for the end-of-input error.
func (p *Parser) next(what string) (Token, error) {
	if p.eof() {
		return Token{}, p.errorf(core.KindUnexpectedEOF, p.peek(), ErrUnexpectedEOF, what)
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, nil
}

// expect consumes the current token if it has type t, otherwise fails.
func (p *Parser) expect(t TokenType) (Token, error) {
	tok, err := p.next(fmt.Sprintf("%q", t.String()))
	if err != nil {
		return Token{}, err
	}
	if tok.Type != t {
		return Token{}, p.errorf(core.KindUnexpectedToken, tok, ErrUnexpectedToken, tok, t)
	}
	return tok, nil
}

// endPos returns the position just past the final token.
func (p *Parser) endPos() Position {
	if len(p.tokens) == 0 {
		return Position{Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return Position{
		Line:   last.Pos.Line,
		Column: last.Pos.Column + len([]rune(last.Literal)),
		Offset: last.Pos.Offset + len(last.Literal),
	}
}

// errorf builds a ParseError located at tok.
func (p *Parser) errorf(kind core.ErrorKind, tok Token, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Pos:     tok.Pos,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	}
}
