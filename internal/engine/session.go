package engine

import (
	"fmt"

	"github.com/leapstack-labs/leapc/pkg/interp"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// Session evaluates successive inputs against one environment.
// It is not safe for concurrent use.
type Session struct {
	engine *Engine
	interp *interp.Interpreter
	inputs int
}

// NewSession starts a session with an empty environment.
func (e *Engine) NewSession() *Session {
	return &Session{
		engine: e,
		interp: interp.New(e.table, interp.WithLogger(e.logger.With("session", true))),
	}
}

// Eval parses and interprets one input. A parse error leaves the
// environment untouched.
func (s *Session) Eval(src string) (*Result, error) {
	s.inputs++
	name := fmt.Sprintf("<input %d>", s.inputs)

	pr, err := parser.ParseSource(src, parser.WithLogger(s.engine.logger))
	res := &Result{Path: name}
	if pr != nil {
		res.Diagnostics = lexDiagnostics(pr.LexErrors)
		res.AST = pr.AST
	}
	if err != nil {
		res.Env = s.interp.Env().Clone()
		return res, err
	}

	out := s.interp.Run(res.AST)
	res.Env = out.Env
	res.Diagnostics = append(res.Diagnostics, out.Diagnostics...)
	return res, nil
}

// Env returns a snapshot of the session environment.
func (s *Session) Env() *interp.Env {
	return s.interp.Env().Clone()
}

// Reset discards the environment.
func (s *Session) Reset() {
	s.interp = interp.New(s.engine.table, interp.WithLogger(s.engine.logger.With("session", true)))
}

// Complete reports whether buf holds a finished input: every '{' is
// closed and it ends with ';' or '}', or it is a directive whose path is
// closed. Braces inside string literals do not count.
func Complete(buf string) bool {
	tokens, _ := parser.Tokenize(buf)
	if len(tokens) == 0 {
		return false
	}

	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	if depth > 0 {
		return false
	}

	last := tokens[len(tokens)-1]
	switch last.Type {
	case token.SEMICOLON, token.RBRACE:
		return true
	case token.GT, token.STRING:
		return tokens[0].Type == token.HASH
	}
	return false
}
