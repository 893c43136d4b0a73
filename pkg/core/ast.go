package core

import (
	"fmt"

	"github.com/leapstack-labs/leapc/pkg/token"
)

// NodeKind identifies an AST node variant.
type NodeKind int

// NodeKind constants, one per node variant.
const (
	KindInclude NodeKind = iota
	KindFuncDecl
	KindFunCall
	KindReturn
	KindStrLit
	KindStrVal
	KindIntLit
	KindSemicolon
	KindEOF
)

// String returns the variant name used in dumps and diagnostics.
func (k NodeKind) String() string {
	switch k {
	case KindInclude:
		return "Include"
	case KindFuncDecl:
		return "FuncDecl"
	case KindFunCall:
		return "FunCall"
	case KindReturn:
		return "Return"
	case KindStrLit:
		return "StrLit"
	case KindStrVal:
		return "StrVal"
	case KindIntLit:
		return "IntLit"
	case KindSemicolon:
		return "Semicolon"
	case KindEOF:
		return "EOF"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the position of the token that started the node.
	Pos() token.Position
	// Kind returns the node variant.
	Kind() NodeKind
}

// NodeInfo provides common fields for all AST nodes.
type NodeInfo struct {
	Start token.Position
}

// Pos implements Node.
func (n NodeInfo) Pos() token.Position { return n.Start }

// Type is a C value type. Only int is supported.
type Type int

// Type constants.
const (
	TypeInt Type = iota
)

// String returns the C spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// LookupType maps a type keyword to its Type.
func LookupType(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	default:
		return 0, false
	}
}

// FuncParam is a single declared function parameter.
// Parameter lists are restricted to empty/void, so none are produced yet.
type FuncParam struct {
	Type Type
	Name string
}

// ---------- Node Variants ----------

// Include is a #include directive.
type Include struct {
	NodeInfo
	Path   string
	System bool // <path> rather than "path"
}

// Kind implements Node.
func (*Include) Kind() NodeKind { return KindInclude }

// FuncDecl is a function declaration with its body.
type FuncDecl struct {
	NodeInfo
	Name       string
	Params     []FuncParam
	ReturnType Type
	Body       []Node
}

// Kind implements Node.
func (*FuncDecl) Kind() NodeKind { return KindFuncDecl }

// FunCall is a call expression.
type FunCall struct {
	NodeInfo
	Name string
	Args []Node
}

// Kind implements Node.
func (*FunCall) Kind() NodeKind { return KindFunCall }

// Return wraps the expression following a return keyword.
type Return struct {
	NodeInfo
	Expr Node
}

// Kind implements Node.
func (*Return) Kind() NodeKind { return KindReturn }

// StrLit is a bare identifier.
type StrLit struct {
	NodeInfo
	Value string
}

// Kind implements Node.
func (*StrLit) Kind() NodeKind { return KindStrLit }

// StrVal is a quoted string value, without its quotes.
type StrVal struct {
	NodeInfo
	Value string
}

// Kind implements Node.
func (*StrVal) Kind() NodeKind { return KindStrVal }

// IntLit is an integer literal.
type IntLit struct {
	NodeInfo
	Value int32
}

// Kind implements Node.
func (*IntLit) Kind() NodeKind { return KindIntLit }

// Semicolon is a bare statement terminator.
type Semicolon struct {
	NodeInfo
}

// Kind implements Node.
func (*Semicolon) Kind() NodeKind { return KindSemicolon }

// EOF marks the end of the program.
type EOF struct {
	NodeInfo
}

// Kind implements Node.
func (*EOF) Kind() NodeKind { return KindEOF }

// ---------- AST ----------

// AST is the ordered sequence of top-level nodes produced by the parser.
// It is only appended to while parsing and read through a Cursor afterwards.
type AST struct {
	nodes []Node
}

// NewAST creates an AST holding the given nodes.
func NewAST(nodes ...Node) *AST {
	return &AST{nodes: append([]Node(nil), nodes...)}
}

// Append adds a node to the end of the AST.
func (a *AST) Append(n Node) {
	a.nodes = append(a.nodes, n)
}

// Len returns the number of top-level nodes.
func (a *AST) Len() int {
	return len(a.nodes)
}

// At returns the node at index i.
func (a *AST) At(i int) Node {
	return a.nodes[i]
}

// Nodes returns a copy of the top-level nodes.
func (a *AST) Nodes() []Node {
	return append([]Node(nil), a.nodes...)
}

// Cursor returns a new cursor positioned before the first node.
func (a *AST) Cursor() *Cursor {
	return &Cursor{ast: a}
}

// Cursor walks an AST front to back without modifying it.
// Several cursors may walk the same AST independently.
type Cursor struct {
	ast *AST
	idx int
}

// Next returns the current node and advances. ok is false once exhausted.
func (c *Cursor) Next() (n Node, ok bool) {
	if c.Done() {
		return nil, false
	}
	n = c.ast.nodes[c.idx]
	c.idx++
	return n, true
}

// Peek returns the current node without advancing.
func (c *Cursor) Peek() (Node, bool) {
	if c.Done() {
		return nil, false
	}
	return c.ast.nodes[c.idx], true
}

// Done reports whether every node has been consumed.
func (c *Cursor) Done() bool {
	return c.ast == nil || c.idx >= len(c.ast.nodes)
}

// Index returns the number of nodes consumed so far.
func (c *Cursor) Index() int {
	return c.idx
}

// Reset rewinds the cursor to the first node.
func (c *Cursor) Reset() {
	c.idx = 0
}
