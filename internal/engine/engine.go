// Package engine drives the leapc pipeline over source files:
// read, lex, parse, interpret, and optionally record the run.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapc/internal/state"
	"github.com/leapstack-labs/leapc/pkg/capability"
)

// Engine runs source files through the pipeline.
type Engine struct {
	table  *capability.Table
	logger *slog.Logger

	// store is nil when recording is disabled
	store     state.Store
	ownsStore bool
}

// Config holds engine configuration.
type Config struct {
	// Table is the capability table includes resolve against (default table if nil).
	Table *capability.Table
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Record enables run history.
	Record bool
	// StatePath is the SQLite state database opened when Record is set.
	StatePath string
	// Store overrides the state store opened from StatePath.
	Store state.Store
}

// New creates a new engine. A state store is only opened when recording.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	table := cfg.Table
	if table == nil {
		table = capability.Default()
	}

	e := &Engine{table: table, logger: logger}

	switch {
	case cfg.Store != nil:
		e.store = cfg.Store
	case cfg.Record:
		if cfg.StatePath == "" {
			return nil, fmt.Errorf("recording requires a state path")
		}
		store := state.NewSQLiteStore(logger)
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		e.store = store
		e.ownsStore = true
	}

	logger.Debug("initializing engine", "headers", table.Len(), "record", e.store != nil)
	return e, nil
}

// Close releases the state store if the engine opened it.
func (e *Engine) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Table returns the capability table in use.
func (e *Engine) Table() *capability.Table {
	return e.table
}

// Store returns the state store, or nil when recording is disabled.
func (e *Engine) Store() state.Store {
	return e.store
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// readSource loads a file and returns its contents and content hash.
func readSource(path string) (string, string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return string(data), hex.EncodeToString(sum[:]), nil
}
