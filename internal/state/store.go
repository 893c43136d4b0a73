// Package state records pipeline runs in a SQLite database: when a file was
// run, what it resolved into the environment, and which diagnostics it raised.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapc/pkg/core"
)

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded pipeline execution over a source file.
type Run struct {
	ID              string     `json:"id" yaml:"id"`
	SourcePath      string     `json:"source_path" yaml:"source_path"`
	SourceHash      string     `json:"source_hash" yaml:"source_hash"`
	Status          RunStatus  `json:"status" yaml:"status"`
	StartedAt       time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error           string     `json:"error,omitempty" yaml:"error,omitempty"`
	EnvSize         int        `json:"env_size" yaml:"env_size"`
	DiagnosticCount int        `json:"diagnostic_count" yaml:"diagnostic_count"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Symbol is an environment entry captured at the end of a run.
type Symbol struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
}

// Outcome is what a finished run produced.
type Outcome struct {
	Status      RunStatus
	Error       string
	Symbols     []Symbol
	Diagnostics []core.Diagnostic
}

// Store persists run history.
type Store interface {
	CreateRun(ctx context.Context, sourcePath, sourceHash string) (*Run, error)
	CompleteRun(ctx context.Context, id string, outcome Outcome) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	ListSymbols(ctx context.Context, runID string) ([]Symbol, error)
	ListDiagnostics(ctx context.Context, runID string) ([]core.Diagnostic, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
