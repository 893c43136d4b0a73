package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/internal/engine"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/format"
	"github.com/leapstack-labs/leapc/pkg/interp"
	"github.com/leapstack-labs/leapc/pkg/parser"
)

// runOutput is the structured form of a pipeline result.
type runOutput struct {
	Path        string            `json:"path" yaml:"path"`
	RunID       string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Env         []interp.Function `json:"env" yaml:"env"`
	Diagnostics []core.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func newRunOutput(res *engine.Result, err error) runOutput {
	out := runOutput{
		Env:         []interp.Function{},
		Diagnostics: []core.Diagnostic{},
	}
	if res != nil {
		out.Path = res.Path
		out.RunID = res.RunID
		if fns := res.Env.Functions(); fns != nil {
			out.Env = fns
		}
		out.Diagnostics = append(out.Diagnostics, res.Diagnostics...)
	}
	if err != nil {
		out.Error = err.Error()
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			out.Diagnostics = append(out.Diagnostics, pe.Diagnostic())
		}
	}
	return out
}

// renderEnv writes the environment dump.
func renderEnv(r *output.Renderer, env *interp.Env) {
	r.Header(2, fmt.Sprintf("environment (%d)", env.Len()))
	if env.Len() == 0 {
		r.Muted("(empty)")
		return
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatCodeBlock("", format.Env(env)))
		return
	}

	rows := make([][]any, 0, env.Len())
	for _, fn := range env.Functions() {
		rows = append(rows, []any{fn.Name, fn.Location})
	}
	r.Table([]string{"Name", "Location"}, rows)
}

// renderDiagnostics writes one status line per diagnostic.
func renderDiagnostics(r *output.Renderer, diags []core.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	r.Header(2, fmt.Sprintf("diagnostics (%d)", len(diags)))
	for _, d := range diags {
		r.StatusLine(d.Pos.String(), severityStatus(d.Severity), fmt.Sprintf("%s: %s [%s]", d.Severity, d.Message, d.Kind))
	}
}

func severityStatus(s core.Severity) string {
	switch s {
	case core.SeverityError:
		return "error"
	case core.SeverityWarning:
		return "warn"
	default:
		return "ok"
	}
}
