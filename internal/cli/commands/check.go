package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapc/internal/engine"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when at least one checked file has errors.
var ErrCheckFailed = errors.New("check failed")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Jobs int
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Run many source files and summarize the results",
		Long: `Run every given file through the pipeline concurrently and print one
summary row per file. A file fails when it does not parse or when the
interpreter reports an error diagnostic.`,
		Example: `  # Check a directory of programs
  leapc check examples/*.c

  # Limit concurrency
  leapc check -j 2 a.c b.c c.c`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Files to process at once (default: number of CPUs)")

	return cmd
}

type checkOutput struct {
	Files  []runOutput `json:"files" yaml:"files"`
	Passed int         `json:"passed" yaml:"passed"`
	Failed int         `json:"failed" yaml:"failed"`
}

func runCheck(cmd *cobra.Command, paths []string, opts *CheckOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	reports, err := cmdCtx.Engine.Check(cmd.Context(), paths, opts.Jobs)
	if err != nil {
		return err
	}

	summary := checkOutput{Files: make([]runOutput, 0, len(reports))}
	parseFailed := false
	rows := make([][]any, 0, len(reports))
	for _, rep := range reports {
		out := newRunOutput(rep.Result, rep.Err)
		if out.Path == "" {
			out.Path = rep.Path
		}
		summary.Files = append(summary.Files, out)

		status := "ok"
		if rep.OK() {
			summary.Passed++
		} else {
			summary.Failed++
			status = "failed"
		}
		if errors.Is(rep.Err, parser.ErrParse) {
			parseFailed = true
		}
		rows = append(rows, []any{rep.Path, status, strconv.Itoa(len(out.Env)), strconv.Itoa(len(out.Diagnostics)), checkDetail(rep)})
	}

	wrote, err := r.Data(summary)
	if err != nil {
		return err
	}
	if !wrote {
		r.Header(1, fmt.Sprintf("check (%d files)", len(reports)))
		r.Table([]string{"File", "Status", "Env", "Diagnostics", "Detail"}, rows)
		if summary.Failed == 0 {
			r.Success(fmt.Sprintf("%d passed", summary.Passed))
		} else {
			r.Error(fmt.Sprintf("%d passed, %d failed", summary.Passed, summary.Failed))
		}
	}

	if summary.Failed == 0 {
		return nil
	}
	if parseFailed {
		return fmt.Errorf("%w: %d of %d files: %w", ErrCheckFailed, summary.Failed, len(reports), parser.ErrParse)
	}
	return fmt.Errorf("%w: %d of %d files", ErrCheckFailed, summary.Failed, len(reports))
}

func checkDetail(rep engine.FileReport) string {
	if rep.Err != nil {
		return rep.Err.Error()
	}
	if rep.Result == nil || len(rep.Result.Diagnostics) == 0 {
		return ""
	}
	return rep.Result.Diagnostics[0].Message
}
