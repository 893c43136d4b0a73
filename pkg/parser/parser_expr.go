package parser

import (
	"strconv"

	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// parseExpr parses a primary expression, turning it into a call when
// followed by an opening parenthesis.
//
//	expr → primary [ "(" expr* ")" ]
func (p *Parser) parseExpr() (core.Node, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.check(token.LPAREN) {
		return prim, nil
	}
	return p.parseCall(prim)
}

// parseCall parses the argument list of a call to target.
//
// TODO: arguments are parsed back to back; accept "," separators once
// multi-argument calls need to parse.
func (p *Parser) parseCall(target core.Node) (core.Node, error) {
	open := p.peek()
	p.pos++ // consume '('

	ident, ok := target.(*core.StrLit)
	if !ok {
		return nil, p.errorf(core.KindUnexpectedToken, open, ErrCallTarget, target.Kind())
	}

	var args []core.Node
	for !p.check(token.RPAREN) {
		if p.eof() {
			return nil, p.errorf(core.KindUnexpectedEOF, p.peek(), ErrUnexpectedEOF, `")"`)
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.pos++ // consume ')'

	return &core.FunCall{
		NodeInfo: core.NodeInfo{Start: ident.Pos()},
		Name:     ident.Value,
		Args:     args,
	}, nil
}

// parsePrimary parses a single primary expression.
//
//	primary → IDENT | STRING | NUMBER | ";"
func (p *Parser) parsePrimary() (core.Node, error) {
	tok, err := p.next("an expression")
	if err != nil {
		return nil, err
	}
	info := core.NodeInfo{Start: tok.Pos}

	switch tok.Type {
	case token.IDENT:
		return &core.StrLit{NodeInfo: info, Value: tok.Literal}, nil
	case token.STRING:
		return &core.StrVal{NodeInfo: info, Value: tok.Literal}, nil
	case token.NUMBER:
		v, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return nil, p.errorf(core.KindInvalidLiteral, tok, ErrInvalidNumber, tok.Literal)
		}
		return &core.IntLit{NodeInfo: info, Value: int32(v)}, nil
	case token.SEMICOLON:
		return &core.Semicolon{NodeInfo: info}, nil
	default:
		return nil, p.errorf(core.KindUnexpectedToken, tok, ErrUnsupportedPrimary, tok)
	}
}
