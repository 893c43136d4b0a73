package format

import (
	"strconv"

	"github.com/leapstack-labs/leapc/pkg/core"
)

// Option configures source formatting.
type Option func(*Printer)

// WithIndent sets the number of spaces per nesting level.
func WithIndent(width int) Option {
	return func(p *Printer) {
		if width >= 0 {
			p.width = width
		}
	}
}

// Source renders ast back to C source in canonical layout.
// Call arguments are separated by a single space, which the parser reads
// back unchanged.
func Source(ast *core.AST, opts ...Option) string {
	p := newPrinter(indentSize)
	for _, opt := range opts {
		opt(p)
	}
	if ast == nil {
		return ""
	}
	p.formatNodes(ast.Nodes())
	return p.String()
}

func (p *Printer) formatNodes(nodes []core.Node) {
	for i, n := range nodes {
		next := nextKind(nodes, i)

		switch n := n.(type) {
		case *core.EOF:
			return
		case *core.Semicolon:
			p.write(";")
			p.writeln()
		case *core.Include:
			p.formatInclude(n)
			p.writeln()
			if p.depth == 0 && next != core.KindInclude && next != core.KindEOF && next >= 0 {
				p.writeln()
			}
		case *core.FuncDecl:
			p.formatFuncDecl(n)
			if p.depth == 0 && next != core.KindEOF && next >= 0 {
				p.writeln()
			}
		default:
			p.formatExpr(n)
			if next != core.KindSemicolon {
				p.writeln()
			}
		}
	}
}

// nextKind returns the kind of the node after i, or -1 at the end.
func nextKind(nodes []core.Node, i int) core.NodeKind {
	if i+1 >= len(nodes) {
		return -1
	}
	return nodes[i+1].Kind()
}

func (p *Printer) formatInclude(inc *core.Include) {
	p.write("#include ")
	if inc.System {
		p.write("<" + inc.Path + ">")
		return
	}
	p.write(`"` + inc.Path + `"`)
}

func (p *Printer) formatFuncDecl(fn *core.FuncDecl) {
	p.write(fn.ReturnType.String())
	p.space()
	p.write(fn.Name)
	p.write("(")
	if len(fn.Params) == 0 {
		p.write("void")
	} else {
		p.formatList(len(fn.Params), func(i int) {
			p.write(fn.Params[i].Type.String())
			p.space()
			p.write(fn.Params[i].Name)
		}, ", ")
	}
	p.write(") {")
	p.writeln()

	p.indent()
	p.formatNodes(fn.Body)
	p.dedent()

	p.write("}")
	p.writeln()
}

func (p *Printer) formatExpr(n core.Node) {
	switch n := n.(type) {
	case *core.StrLit:
		p.write(n.Value)
	case *core.StrVal:
		p.write(`"` + n.Value + `"`)
	case *core.IntLit:
		p.write(strconv.FormatInt(int64(n.Value), 10))
	case *core.Return:
		p.write("return")
		switch {
		case n.Expr == nil:
		case n.Expr.Kind() == core.KindSemicolon:
			// "return;" keeps its terminator inside the Return node.
			p.write(";")
		default:
			p.space()
			p.formatExpr(n.Expr)
		}
	case *core.FunCall:
		p.write(n.Name)
		p.write("(")
		p.formatList(len(n.Args), func(i int) {
			p.formatExpr(n.Args[i])
		}, " ")
		p.write(")")
	case *core.Semicolon:
		p.write(";")
	default:
		p.write("/* " + n.Kind().String() + " */")
	}
}
