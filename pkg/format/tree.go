package format

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/interp"
)

// Tree renders ast as an indented node tree, one node per line, each
// suffixed with its source position.
func Tree(ast *core.AST) string {
	p := newPrinter(2)
	if ast == nil {
		return ""
	}
	for _, n := range ast.Nodes() {
		p.treeNode(n)
	}
	return p.String()
}

func (p *Printer) treeNode(n core.Node) {
	p.write(n.Kind().String())
	if label := nodeLabel(n); label != "" {
		p.space()
		p.write(label)
	}
	if pos := n.Pos(); pos.IsValid() {
		p.write(" @" + pos.String())
	}
	p.writeln()

	p.indent()
	for _, child := range children(n) {
		p.treeNode(child)
	}
	p.dedent()
}

func nodeLabel(n core.Node) string {
	switch n := n.(type) {
	case *core.Include:
		if n.System {
			return "<" + n.Path + ">"
		}
		return strconv.Quote(n.Path)
	case *core.FuncDecl:
		return fmt.Sprintf("%s %s(%d params)", n.ReturnType, n.Name, len(n.Params))
	case *core.FunCall:
		return n.Name
	case *core.StrLit:
		return n.Value
	case *core.StrVal:
		return strconv.Quote(n.Value)
	case *core.IntLit:
		return strconv.FormatInt(int64(n.Value), 10)
	default:
		return ""
	}
}

func children(n core.Node) []core.Node {
	switch n := n.(type) {
	case *core.FuncDecl:
		return n.Body
	case *core.FunCall:
		return n.Args
	case *core.Return:
		if n.Expr != nil {
			return []core.Node{n.Expr}
		}
	}
	return nil
}

// Env renders the environment one entry per line as "name -> location".
func Env(env *interp.Env) string {
	p := newPrinter(0)
	for _, fn := range env.Functions() {
		p.write(fn.Name + " -> " + fn.Location)
		p.writeln()
	}
	return p.String()
}
