package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FileReport is the outcome of checking one file.
type FileReport struct {
	Path   string
	Result *Result
	Err    error
}

// OK reports whether the file parsed and interpreted without error diagnostics.
func (r FileReport) OK() bool {
	return r.Err == nil && r.Result != nil && !r.Result.HasErrors()
}

// Check runs every file through the pipeline concurrently, at most limit at
// a time (GOMAXPROCS when limit <= 0). Reports keep the order of paths.
// Per-file failures are reported, not returned; the error is only set when
// ctx is cancelled.
func (e *Engine) Check(ctx context.Context, paths []string, limit int) ([]FileReport, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	reports := make([]FileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.RunFile(gctx, path)
			reports[i] = FileReport{Path: path, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	e.logger.Debug("check finished", "files", len(paths), "limit", limit)
	return reports, nil
}
