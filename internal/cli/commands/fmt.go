package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapc/pkg/format"
	"github.com/spf13/cobra"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Write  bool
	Indent int
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print a source file in canonical form",
		Long: `Parse a C source file and print it back in canonical layout.

The output parses to the same tree as the input. Use --write to replace
the file instead of printing.`,
		Example: `  # Print formatted source
  leapc fmt hello.c

  # Rewrite in place with two-space indentation
  leapc fmt hello.c --write --indent 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write result to the file instead of stdout")
	cmd.Flags().IntVar(&opts.Indent, "indent", 4, "Spaces per indentation level")

	return cmd
}

func runFmt(cmd *cobra.Command, path string, opts *FmtOptions) error {
	if opts.Indent < 0 {
		return fmt.Errorf("indent must not be negative")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Parse(path)
	if err != nil {
		return err
	}
	src := format.Source(res.AST, format.WithIndent(opts.Indent))

	if !opts.Write {
		cmdCtx.Renderer.Printf("%s", src)
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(src), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmdCtx.Logger.Debug("formatted file", "file", path)
	return nil
}
