package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/leapc/internal/state"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/interp"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// Result is the outcome of running one source through the pipeline.
type Result struct {
	Path   string
	Tokens []token.Token
	AST    *core.AST
	Env    *interp.Env
	// Diagnostics holds lexer diagnostics followed by interpreter diagnostics.
	Diagnostics []core.Diagnostic
	RunID       string
	Duration    time.Duration
}

// Lex tokenizes a file. Lexer diagnostics never fail the call.
func (e *Engine) Lex(path string) (*Result, error) {
	src, _, err := readSource(path)
	if err != nil {
		return nil, err
	}
	tokens, lexErrs := parser.Tokenize(src, parser.WithLexLogger(e.logger))
	return &Result{Path: path, Tokens: tokens, Diagnostics: lexDiagnostics(lexErrs)}, nil
}

// Parse lexes and parses a file. A parse failure returns the partial result
// (lexer diagnostics, no AST) together with the wrapped *parser.ParseError.
func (e *Engine) Parse(path string) (*Result, error) {
	src, _, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return e.parse(path, src)
}

func (e *Engine) parse(path, src string) (*Result, error) {
	logger := e.logger.With("file", path)
	pr, err := parser.ParseSource(src, parser.WithLogger(logger))

	res := &Result{Path: path}
	if pr != nil {
		res.Diagnostics = lexDiagnostics(pr.LexErrors)
		res.AST = pr.AST
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// RunFile runs the full pipeline over a file.
func (e *Engine) RunFile(ctx context.Context, path string) (*Result, error) {
	src, hash, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, path, src, hash)
}

// RunSource runs the full pipeline over in-memory source. name labels the run.
func (e *Engine) RunSource(ctx context.Context, name, src string) (*Result, error) {
	return e.run(ctx, name, src, "")
}

func (e *Engine) run(ctx context.Context, path, src, hash string) (*Result, error) {
	start := time.Now()
	e.logger.Info("starting run", "file", path)

	var run *state.Run
	if e.store != nil {
		var err error
		run, err = e.store.CreateRun(ctx, path, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		e.logger.Debug("created run", "run_id", run.ID)
	}

	res, err := e.parse(path, src)
	if err == nil {
		in := interp.New(e.table, interp.WithLogger(e.logger.With("file", path)))
		out := in.Run(res.AST)
		res.Env = out.Env
		res.Diagnostics = append(res.Diagnostics, out.Diagnostics...)
	}
	res.Duration = time.Since(start)

	if run != nil {
		res.RunID = run.ID
		if rerr := e.record(ctx, run.ID, res, err); rerr != nil {
			return res, errors.Join(err, rerr)
		}
	}

	if err != nil {
		e.logger.Info("run failed", "file", path, "error", err.Error())
		return res, err
	}
	e.logger.Info("run completed",
		"file", path,
		"env_size", res.Env.Len(),
		"diagnostics", len(res.Diagnostics),
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) record(ctx context.Context, runID string, res *Result, runErr error) error {
	outcome := state.Outcome{
		Status:      state.RunStatusCompleted,
		Diagnostics: res.Diagnostics,
	}
	if runErr != nil {
		outcome.Status = state.RunStatusFailed
		outcome.Error = runErr.Error()
	}
	for _, fn := range res.Env.Functions() {
		outcome.Symbols = append(outcome.Symbols, state.Symbol{Name: fn.Name, Location: fn.Location})
	}
	if err := e.store.CompleteRun(ctx, runID, outcome); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func lexDiagnostics(errs []*parser.LexError) []core.Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	out := make([]core.Diagnostic, 0, len(errs))
	for _, le := range errs {
		out = append(out, le.Diagnostic())
	}
	return out
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == core.SeverityError {
			return true
		}
	}
	return false
}
