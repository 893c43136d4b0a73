package parser

import (
	"fmt"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/leapc/pkg/token"
)

// Lexer tokenizes C-subset input.
//
// Lexing never fails: characters that start no token are recorded in Errors
// and skipped.
type Lexer struct {
	input   string
	pos     int  // byte offset of ch
	readPos int  // byte offset after ch
	ch      rune // current char under examination, 0 at end of input
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	logger *slog.Logger

	// Errors collected during lexing
	Errors []*LexError
}

// LexerOption configures a Lexer.
type LexerOption func(*Lexer)

// WithLexLogger reports every dropped character through logger at warn level.
func WithLexLogger(logger *slog.Logger) LexerOption {
	return func(l *Lexer) {
		l.logger = logger
	}
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string, opts ...LexerOption) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.readPos = len(l.input) + 1
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.readPos += w
	}

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// atEnd returns true once the whole input has been consumed.
func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token, or an EOF token at end of input.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		pos := l.currentPos()
		if l.atEnd() {
			return Token{Type: token.EOF, Pos: pos}
		}

		switch {
		case unicode.IsLetter(l.ch):
			return Token{Type: token.IDENT, Literal: l.readWhile(unicode.IsLetter), Pos: pos}
		case isDigit(l.ch):
			return Token{Type: token.NUMBER, Literal: l.readWhile(isDigit), Pos: pos}
		case l.ch == '"':
			return Token{Type: token.STRING, Literal: l.readString(), Pos: pos}
		}

		if t, ok := token.LookupPunct(l.ch); ok {
			tok := Token{Type: t, Literal: string(l.ch), Pos: pos}
			l.readChar()
			return tok
		}

		l.drop(pos)
	}
}

// drop records the current character as unrecognized and skips it.
func (l *Lexer) drop(pos Position) {
	err := &LexError{
		Pos:     pos,
		Char:    l.ch,
		Message: fmt.Sprintf(ErrUnrecognizedChar, l.ch),
	}
	l.Errors = append(l.Errors, err)
	l.logger.Warn("dropping unrecognized character",
		"char", string(l.ch), "line", pos.Line, "column", pos.Column)
	l.readChar()
}

// skipWhitespace skips Unicode whitespace.
func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readWhile consumes characters while pred holds and returns them.
func (l *Lexer) readWhile(pred func(rune) bool) string {
	start := l.pos
	for !l.atEnd() && pred(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readString reads a double-quoted string value without escape handling.
// An unterminated string runs to the end of input.
func (l *Lexer) readString() string {
	l.readChar() // skip opening quote

	start := l.pos
	for !l.atEnd() && l.ch != '"' {
		l.readChar()
	}
	value := l.input[start:min(l.pos, len(l.input))]

	if !l.atEnd() {
		l.readChar() // skip closing quote
	}
	return value
}

// isDigit returns true if ch is an ASCII digit.
func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, excluding the trailing EOF,
// together with the characters that were dropped.
func Tokenize(input string, opts ...LexerOption) ([]Token, []*LexError) {
	l := NewLexer(input, opts...)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens, l.Errors
}
