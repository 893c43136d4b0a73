package commands

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/internal/engine"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Watch    bool
	Debounce time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:     "run <file>",
		Aliases: []string{"exec"},
		Short:   "Lex, parse and interpret a source file",
		Long: `Run a C source file through the full pipeline and print the resulting
environment: every function made available by the file's #include
directives, with its resolved location.

Unknown headers and unsupported constructs are reported as diagnostics
and skipped. A parse error aborts the run with exit status 2.

With --record (or record: true in leapc.yaml) each run is stored in the
state database; see 'leapc history'.`,
		Example: `  # Run a program
  leapc run hello.c

  # Re-run on every save
  leapc run hello.c --watch

  # Record the run and print JSON
  leapc run hello.c --record -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run whenever the file changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", engine.DefaultDebounce, "Quiet period before a watched change re-runs")

	return cmd
}

func runRun(cmd *cobra.Command, path string, opts *RunOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchRun(ctx, eng, r, path, opts.Debounce)
	}

	res, err := eng.RunFile(cmd.Context(), path)
	if err != nil {
		if res != nil {
			if wrote, _ := r.Data(newRunOutput(res, err)); !wrote {
				renderDiagnostics(r, res.Diagnostics)
			}
		}
		return err
	}
	return renderRun(r, res)
}

func renderRun(r *output.Renderer, res *engine.Result) error {
	if wrote, err := r.Data(newRunOutput(res, nil)); wrote {
		return err
	}

	r.Header(1, "run: "+res.Path)
	if res.RunID != "" {
		r.KeyValue("Run", res.RunID)
	}
	renderEnv(r, res.Env)
	renderDiagnostics(r, res.Diagnostics)
	return nil
}

func watchRun(ctx context.Context, eng *engine.Engine, r *output.Renderer, path string, debounce time.Duration) error {
	r.Muted("watching " + path + " (Ctrl+C to stop)")
	return eng.Watch(ctx, path, debounce, func(res *engine.Result, err error) {
		if err != nil {
			r.Error(err.Error())
			if res != nil {
				renderDiagnostics(r, res.Diagnostics)
			}
			return
		}
		if rerr := renderRun(r, res); rerr != nil {
			r.Error(rerr.Error())
		}
	})
}
