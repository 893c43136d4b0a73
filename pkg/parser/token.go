package parser

import "github.com/leapstack-labs/leapc/pkg/token"

// TokenType is an alias for token.TokenType.
type TokenType = token.TokenType

// Token is an alias for token.Token.
type Token = token.Token

// Position is an alias for token.Position.
type Position = token.Position

// typeKeywords lists the identifiers that start a declaration.
var typeKeywords = map[string]bool{
	"int": true,
}

// isTypeKeyword returns true if tok names a declarable type.
func isTypeKeyword(tok Token) bool {
	return tok.Type == token.IDENT && typeKeywords[tok.Literal]
}

// isReturnKeyword returns true if tok is the return keyword.
func isReturnKeyword(tok Token) bool {
	return tok.Type == token.IDENT && tok.Literal == "return"
}
