package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/spf13/cobra"
)

// NewHeadersCommand creates the headers command.
func NewHeadersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "headers",
		Short: "List the headers #include can resolve",
		Long: `List the capability table: every header an #include directive can
resolve, the namespace it maps to, and the functions it exports.

The built-in table provides stdio.h (printf). Add headers in leapc.yaml:

  headers:
    - name: stdlib.h
      functions: [malloc, free]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			table, err := cmdCtx.Cfg.CapabilityTable()
			if err != nil {
				return err
			}
			return renderHeaders(cmdCtx.Renderer, table)
		},
	}
}

type headerOutput struct {
	Name      string   `json:"name" yaml:"name"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Functions []string `json:"functions" yaml:"functions"`
}

func renderHeaders(r *output.Renderer, table *capability.Table) error {
	headers := table.Headers()

	data := make([]headerOutput, 0, len(headers))
	rows := make([][]any, 0, len(headers))
	for _, h := range headers {
		fns := append([]string{}, h.Functions...)
		data = append(data, headerOutput{Name: h.Name, Namespace: h.Namespace, Functions: fns})
		rows = append(rows, []any{h.Name, h.Namespace, strings.Join(fns, ", ")})
	}

	if wrote, err := r.Data(data); wrote {
		return err
	}

	r.Header(1, fmt.Sprintf("headers (%d)", len(headers)))
	if len(headers) == 0 {
		r.Muted("(none)")
		return nil
	}
	r.Table([]string{"Header", "Namespace", "Functions"}, rows)
	return nil
}
