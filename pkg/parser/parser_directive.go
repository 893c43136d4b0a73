package parser

import (
	"strings"

	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// parseDirective parses a preprocessing directive after its '#'.
//
//	directive → "#" "include" include_path
//	          | "#" "define" …
func (p *Parser) parseDirective(hash Token) (core.Node, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	switch name.Literal {
	case "include":
		return p.parseInclude(hash)
	case "define":
		return nil, p.errorf(core.KindUnsupported, name, ErrDefineUnsupported)
	default:
		return nil, p.errorf(core.KindInvalidDirective, name, ErrInvalidDirective, name.Literal)
	}
}

// parseInclude parses the path of an #include directive.
//
//	include_path → "<" ( IDENT | "/" | "." )* ">"
//	             | STRING
func (p *Parser) parseInclude(hash Token) (core.Node, error) {
	tok, err := p.next(`"<" or a quoted path`)
	if err != nil {
		return nil, err
	}

	var path string
	switch tok.Type {
	case token.LT:
		path, err = p.parseAnglePath()
		if err != nil {
			return nil, err
		}
	case token.STRING:
		path = tok.Literal
	default:
		return nil, p.errorf(core.KindInvalidDirective, tok, ErrInvalidDirective, "include "+tok.Literal)
	}

	p.logger.Debug("parsed include", "path", path)
	return &core.Include{
		NodeInfo: core.NodeInfo{Start: hash.Pos},
		Path:     path,
		System:   tok.Type == token.LT,
	}, nil
}

// parseAnglePath concatenates path tokens up to and including the closing '>'.
func (p *Parser) parseAnglePath() (string, error) {
	var path strings.Builder
	for !p.check(token.GT) {
		tok, err := p.next(`">"`)
		if err != nil {
			return "", err
		}
		switch tok.Type {
		case token.IDENT, token.SLASH, token.DOT:
			path.WriteString(tok.Literal)
		default:
			return "", p.errorf(core.KindInvalidDirective, tok, ErrInvalidIncludePath, tok)
		}
	}
	p.pos++ // consume '>'
	return path.String(), nil
}
