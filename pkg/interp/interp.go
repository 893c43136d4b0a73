// Package interp evaluates a parsed program against a capability table.
//
// Only #include directives have an effect: each recognized header adds its
// exported functions to the environment. Every other top-level node is
// reported and skipped. Interpretation never aborts; problems are returned
// as diagnostics alongside the final environment.
package interp

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/leapstack-labs/leapc/pkg/core"
)

// Interpreter walks an AST and maintains the environment across runs.
type Interpreter struct {
	table  *capability.Table
	env    *Env
	logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithEnv starts the interpreter from an existing environment.
func WithEnv(env *Env) Option {
	return func(i *Interpreter) {
		if env != nil {
			i.env = env
		}
	}
}

// New creates an interpreter resolving includes against table.
// A nil table recognizes no headers.
func New(table *capability.Table, opts ...Option) *Interpreter {
	if table == nil {
		table = capability.Empty()
	}
	i := &Interpreter{
		table:  table,
		env:    NewEnv(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result is the outcome of one Run.
type Result struct {
	Env         *Env
	Diagnostics []core.Diagnostic
	// Evaluated is the number of top-level nodes consumed, including the EOF marker.
	Evaluated int
}

// HasDiagnostics reports whether the run produced any diagnostic.
func (r *Result) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Env returns the live environment.
func (i *Interpreter) Env() *Env {
	return i.env
}

// Table returns the capability table the interpreter resolves against.
func (i *Interpreter) Table() *capability.Table {
	return i.table
}

// Run evaluates ast until it is exhausted or the EOF marker is reached.
// Entries added by earlier runs are kept. The returned Env is a snapshot.
func (i *Interpreter) Run(ast *core.AST) *Result {
	res := &Result{}
	if ast == nil {
		res.Env = i.env.Clone()
		return res
	}

	cur := ast.Cursor()
	for {
		node, ok := cur.Next()
		if !ok {
			break
		}
		if node.Kind() == core.KindEOF {
			break
		}
		i.eval(node, res)
	}

	res.Evaluated = cur.Index()
	res.Env = i.env.Clone()

	i.logger.Debug("interpretation finished",
		"nodes", res.Evaluated,
		"env_size", res.Env.Len(),
		"diagnostics", len(res.Diagnostics))
	return res
}

func (i *Interpreter) eval(node core.Node, res *Result) {
	switch n := node.(type) {
	case *core.Include:
		i.evalInclude(n, res)
	default:
		i.report(res, node, core.KindUnsupportedNode,
			fmt.Sprintf("evaluation of %s is not supported", node.Kind()))
	}
}

func (i *Interpreter) evalInclude(inc *core.Include, res *Result) {
	header, ok := i.table.Lookup(inc.Path)
	if !ok {
		i.report(res, inc, core.KindUnknownHeader,
			fmt.Sprintf("header %q not found in capability table", inc.Path))
		return
	}

	for _, name := range header.Functions {
		i.env.add(Function{Name: name, Location: header.Location(name)})
	}
	i.logger.Debug("included header",
		"header", header.Name,
		"namespace", header.Namespace,
		"functions", len(header.Functions))
}

func (i *Interpreter) report(res *Result, node core.Node, kind core.ErrorKind, msg string) {
	d := core.Diagnostic{
		Phase:    core.PhaseInterp,
		Kind:     kind,
		Severity: core.SeverityError,
		Pos:      node.Pos(),
		Message:  msg,
	}
	res.Diagnostics = append(res.Diagnostics, d)
	i.logger.Error(msg, "kind", kind.String(), "pos", d.Pos.String())
}
