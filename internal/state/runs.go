package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/token"
)

const runColumns = `id, source_path, source_hash, status, started_at, completed_at, error, env_size, diagnostic_count`

// CreateRun records the start of a run over sourcePath.
func (s *SQLiteStore) CreateRun(ctx context.Context, sourcePath, sourceHash string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	run := &Run{
		ID:         generateID(),
		SourcePath: sourcePath,
		SourceHash: sourceHash,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("source", sourcePath))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_path, source_hash, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.SourcePath, run.SourceHash, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun stores the outcome of a run in a single transaction.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, outcome Outcome) (err error) {
	if s.db == nil {
		return ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var errMsg *string
	if outcome.Error != "" {
		errMsg = &outcome.Error
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ?, env_size = ?, diagnostic_count = ? WHERE id = ?`,
		string(outcome.Status), time.Now().UTC(), errMsg, len(outcome.Symbols), len(outcome.Diagnostics), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	for i, sym := range outcome.Symbols {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO run_symbols (run_id, seq, name, location) VALUES (?, ?, ?, ?)`,
			id, i, sym.Name, sym.Location,
		); err != nil {
			return fmt.Errorf("failed to record symbol %s: %w", sym.Name, err)
		}
	}

	for i, d := range outcome.Diagnostics {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO run_diagnostics (run_id, seq, phase, kind, severity, line, col, message) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, string(d.Phase), d.Kind.String(), d.Severity.String(), d.Pos.Line, d.Pos.Column, d.Message,
		); err != nil {
			return fmt.Errorf("failed to record diagnostic: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("run completed",
		slog.String("id", id),
		slog.String("status", string(outcome.Status)),
		slog.Int("symbols", len(outcome.Symbols)),
		slog.Int("diagnostics", len(outcome.Diagnostics)))
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = -1 // no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListSymbols returns the environment captured for a run, in insertion order.
func (s *SQLiteStore) ListSymbols(ctx context.Context, runID string) ([]Symbol, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, location FROM run_symbols WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var symbols []Symbol
	for rows.Next() {
		var sym Symbol
		if err := rows.Scan(&sym.Name, &sym.Location); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// ListDiagnostics returns the diagnostics recorded for a run, in report order.
func (s *SQLiteStore) ListDiagnostics(ctx context.Context, runID string) ([]core.Diagnostic, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT phase, kind, severity, line, col, message FROM run_diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnostics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var diags []core.Diagnostic
	for rows.Next() {
		var (
			phase, kind, severity, msg string
			line, col                  int
		)
		if err := rows.Scan(&phase, &kind, &severity, &line, &col, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		k, _ := core.ParseErrorKind(kind)
		sev, _ := core.ParseSeverity(severity)
		diags = append(diags, core.Diagnostic{
			Phase:    core.Phase(phase),
			Kind:     k,
			Severity: sev,
			Pos:      token.Position{Line: line, Column: col},
			Message:  msg,
		})
	}
	return diags, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var (
		status      string
		completedAt sql.NullTime
		errMsg      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.SourcePath, &run.SourceHash, &status, &run.StartedAt,
		&completedAt, &errMsg, &run.EnvSize, &run.DiagnosticCount); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}
