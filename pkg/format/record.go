package format

import (
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// NodeRecord is a serializable view of an AST node.
type NodeRecord struct {
	Kind       string         `json:"kind" yaml:"kind"`
	Pos        token.Position `json:"pos" yaml:"pos"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Value      string         `json:"value,omitempty" yaml:"value,omitempty"`
	Path       string         `json:"path,omitempty" yaml:"path,omitempty"`
	System     bool           `json:"system,omitempty" yaml:"system,omitempty"`
	ReturnType string         `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Args       []NodeRecord   `json:"args,omitempty" yaml:"args,omitempty"`
	Body       []NodeRecord   `json:"body,omitempty" yaml:"body,omitempty"`
	Expr       *NodeRecord    `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Records converts every top-level node of ast.
func Records(ast *core.AST) []NodeRecord {
	if ast == nil {
		return nil
	}
	return recordList(ast.Nodes())
}

func recordList(nodes []core.Node) []NodeRecord {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Record(n))
	}
	return out
}

// Record converts a single node and its children.
func Record(n core.Node) NodeRecord {
	r := NodeRecord{Kind: n.Kind().String(), Pos: n.Pos()}
	switch n := n.(type) {
	case *core.Include:
		r.Path = n.Path
		r.System = n.System
	case *core.FuncDecl:
		r.Name = n.Name
		r.ReturnType = n.ReturnType.String()
		r.Body = recordList(n.Body)
	case *core.FunCall:
		r.Name = n.Name
		r.Args = recordList(n.Args)
	case *core.Return:
		if n.Expr != nil {
			expr := Record(n.Expr)
			r.Expr = &expr
		}
	case *core.StrLit:
		r.Value = n.Value
	case *core.StrVal:
		r.Value = n.Value
	case *core.IntLit:
		r.Value = nodeLabel(n)
	}
	return r
}

// TokenRecord is a serializable view of a token.
type TokenRecord struct {
	Type    string         `json:"type" yaml:"type"`
	Literal string         `json:"literal" yaml:"literal"`
	Pos     token.Position `json:"pos" yaml:"pos"`
}

// Tokens converts a token stream.
func Tokens(tokens []token.Token) []TokenRecord {
	out := make([]TokenRecord, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, TokenRecord{Type: tok.Type.String(), Literal: tok.Literal, Pos: tok.Pos})
	}
	return out
}
