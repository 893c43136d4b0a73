package parser

import (
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// parseStatement parses one statement.
//
//	statement → directive | declaration | return | expr
func (p *Parser) parseStatement() (core.Node, error) {
	at := p.peek()

	switch {
	case at.Type == token.HASH:
		p.pos++ // consume '#'
		return p.parseDirective(at)
	case isTypeKeyword(at):
		p.pos++ // consume the type keyword
		return p.parseDeclaration(at)
	case isReturnKeyword(at):
		p.pos++ // consume 'return'
		return p.parseReturn(at)
	default:
		return p.parseExpr()
	}
}

// parseReturn parses the expression after a return keyword.
//
//	return → "return" expr
func (p *Parser) parseReturn(kw Token) (core.Node, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &core.Return{NodeInfo: core.NodeInfo{Start: kw.Pos}, Expr: expr}, nil
}

// parseDeclaration parses a declaration following its type keyword.
// Only function declarations are supported.
//
//	declaration → type IDENT "(" params ")" body
func (p *Parser) parseDeclaration(typeTok Token) (core.Node, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	tok, err := p.next(`"("`)
	if err != nil {
		return nil, err
	}
	if tok.Type != token.LPAREN {
		return nil, p.errorf(core.KindUnsupported, tok, ErrOnlyFuncDecl, name.Literal, tok)
	}

	retType, _ := core.LookupType(typeTok.Literal)
	return p.parseFuncDecl(typeTok, retType, name.Literal)
}

// parseFuncDecl parses the parameter list and body of a function.
// The opening parenthesis has already been consumed.
func (p *Parser) parseFuncDecl(start Token, retType core.Type, name string) (core.Node, error) {
	params, err := p.parseFuncParams()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var body []core.Node
	for !p.check(token.RBRACE) {
		if p.eof() {
			return nil, p.errorf(core.KindUnexpectedEOF, p.peek(), ErrUnexpectedEOF, `"}"`)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.pos++ // consume '}'

	p.logger.Debug("parsed function", "name", name, "statements", len(body))

	return &core.FuncDecl{
		NodeInfo:   core.NodeInfo{Start: start.Pos},
		Name:       name,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}, nil
}

// parseFuncParams parses an empty or void parameter list up to and
// including the closing parenthesis.
//
//	params → "void" ")" | ")"
func (p *Parser) parseFuncParams() ([]core.FuncParam, error) {
	tok, err := p.next(`"void" or ")"`)
	if err != nil {
		return nil, err
	}

	switch {
	case tok.Type == token.IDENT && tok.Literal == "void":
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return []core.FuncParam{}, nil
	case tok.Type == token.RPAREN:
		return []core.FuncParam{}, nil
	default:
		return nil, p.errorf(core.KindUnsupported, tok, ErrParamsUnsupported, tok)
	}
}
