package commands

import (
	"errors"
	"os"
	"os/signal"

	"github.com/leapstack-labs/leapc/internal/cli/config"
	"github.com/leapstack-labs/leapc/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It publishes
lexer, parser and interpreter diagnostics as you type, completes header
names after #include, and resolves function names to the include that
provides them. Headers come from leapc.yaml like every other command.
Logs go to stderr.`,
		Example: `  # Start LSP server (usually called by an editor)
  leapc lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	table, err := cfg.CapabilityTable()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.Config{
		Table:   table,
		Logger:  logger,
		Version: version,
	})
	if err := server.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}
