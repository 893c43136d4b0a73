package commands

import (
	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/pkg/format"
	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the syntax tree of a source file",
		Long: `Parse a C source file and print its syntax tree.

Parsing stops at the first structural error; no tree is printed and the
command exits with status 2.`,
		Example: `  # Indented tree
  leapc parse hello.c

  # Tree as YAML
  leapc parse hello.c -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0])
		},
	}
}

func runParse(cmd *cobra.Command, path string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	res, err := cmdCtx.Engine.Parse(path)
	if err != nil {
		if res != nil {
			renderDiagnostics(r, res.Diagnostics)
		}
		return err
	}

	if wrote, err := r.Data(format.Records(res.AST)); wrote {
		return err
	}

	r.Header(1, "syntax tree: "+path)
	tree := format.Tree(res.AST)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatCodeBlock("", tree))
	} else {
		r.Printf("%s", tree)
	}
	renderDiagnostics(r, res.Diagnostics)
	return nil
}
