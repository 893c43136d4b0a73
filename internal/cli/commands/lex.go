package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/format"
	"github.com/spf13/cobra"
)

// NewLexCommand creates the lex command.
func NewLexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the token stream of a source file",
		Long: `Tokenize a C source file and print every token with its position.

Unrecognized characters are reported as warnings and skipped; lexing
always completes.`,
		Example: `  # Show tokens as a table
  leapc lex hello.c

  # Tokens as JSON
  leapc lex hello.c -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLex(cmd, args[0])
		},
	}
}

type lexOutput struct {
	Path        string               `json:"path" yaml:"path"`
	Tokens      []format.TokenRecord `json:"tokens" yaml:"tokens"`
	Diagnostics []core.Diagnostic    `json:"diagnostics" yaml:"diagnostics"`
}

func runLex(cmd *cobra.Command, path string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	res, err := cmdCtx.Engine.Lex(path)
	if err != nil {
		return err
	}

	wrote, err := r.Data(lexOutput{
		Path:        path,
		Tokens:      format.Tokens(res.Tokens),
		Diagnostics: append([]core.Diagnostic{}, res.Diagnostics...),
	})
	if wrote {
		return err
	}

	r.Header(1, fmt.Sprintf("tokens: %s (%d)", path, len(res.Tokens)))
	rows := make([][]any, 0, len(res.Tokens))
	for _, tok := range res.Tokens {
		rows = append(rows, []any{tok.Pos.String(), tok.Type.String(), literal(tok.Literal)})
	}
	r.Table([]string{"Pos", "Type", "Literal"}, rows)

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println()
	}
	renderDiagnostics(r, res.Diagnostics)
	return nil
}

func literal(s string) string {
	if s == "" {
		return "-"
	}
	return fmt.Sprintf("%q", s)
}
