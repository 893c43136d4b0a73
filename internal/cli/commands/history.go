package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapc/internal/cli/config"
	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/internal/state"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	RunID string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded in the state database, newest first.

Runs are recorded with 'leapc run --record' or record: true in leapc.yaml.
Pass a run ID to show that run's environment and diagnostics.`,
		Example: `  # Last 20 runs
  leapc history

  # Details of one run
  leapc history 6f1c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.RunID = args[0]
			}
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", config.DefaultHistory, "Maximum number of runs to show (0 for all)")

	return cmd
}

type historyDetail struct {
	Run         *state.Run        `json:"run" yaml:"run"`
	Symbols     []state.Symbol    `json:"symbols" yaml:"symbols"`
	Diagnostics []core.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer
	statePath := cmdCtx.Cfg.StatePath

	if statePath == "" || statePath == ":memory:" {
		return fmt.Errorf("history needs a state database file (set state_path or --state)")
	}
	if _, err := os.Stat(statePath); errors.Is(err, os.ErrNotExist) {
		if wrote, err := r.Data([]*state.Run{}); wrote {
			return err
		}
		r.Muted("no runs recorded (" + statePath + " does not exist)")
		return nil
	}

	store := state.NewSQLiteStore(cmdCtx.Logger)
	if err := store.Open(statePath); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if opts.RunID != "" {
		return showRun(cmd, r, store, opts.RunID)
	}

	runs, err := store.ListRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*state.Run{}
	}

	if wrote, err := r.Data(runs); wrote {
		return err
	}

	r.Header(1, fmt.Sprintf("runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Muted("no runs recorded")
		return nil
	}

	rows := make([][]any, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []any{
			run.ID,
			run.SourcePath,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration().Round(time.Microsecond).String(),
			strconv.Itoa(run.EnvSize),
			strconv.Itoa(run.DiagnosticCount),
		})
	}
	r.Table([]string{"ID", "File", "Status", "Started", "Duration", "Env", "Diagnostics"}, rows)
	return nil
}

func showRun(cmd *cobra.Command, r *output.Renderer, store state.Store, id string) error {
	ctx := cmd.Context()

	run, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	symbols, err := store.ListSymbols(ctx, id)
	if err != nil {
		return err
	}
	diags, err := store.ListDiagnostics(ctx, id)
	if err != nil {
		return err
	}

	if symbols == nil {
		symbols = []state.Symbol{}
	}
	if diags == nil {
		diags = []core.Diagnostic{}
	}
	if wrote, err := r.Data(historyDetail{Run: run, Symbols: symbols, Diagnostics: diags}); wrote {
		return err
	}

	r.Header(1, "run "+run.ID)
	r.KeyValue("File", run.SourcePath)
	r.KeyValue("Status", string(run.Status))
	r.KeyValue("Started", run.StartedAt.Local().Format(time.DateTime))
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}

	r.Header(2, fmt.Sprintf("environment (%d)", len(symbols)))
	if len(symbols) == 0 {
		r.Muted("(empty)")
	} else {
		rows := make([][]any, 0, len(symbols))
		for _, s := range symbols {
			rows = append(rows, []any{s.Name, s.Location})
		}
		r.Table([]string{"Name", "Location"}, rows)
	}
	renderDiagnostics(r, diags)
	return nil
}
