package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/leapc/internal/state"
	"github.com/leapstack-labs/leapc/internal/testutil"
	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Table().Len())
	assert.Nil(t, e.Store())
	assert.NotNil(t, e.Logger())
	assert.NoError(t, e.Close())
}

func TestNew_RecordRequiresPath(t *testing.T) {
	_, err := New(Config{Record: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state path")
}

func TestNew_InvalidStatePath(t *testing.T) {
	_, err := New(Config{Record: true, StatePath: filepath.Join(t.TempDir(), "missing", "dir", "state.db")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open state store")
}

func TestRunFile_HelloWorld(t *testing.T) {
	e := newTestEngine(t, Config{})
	path := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)

	res, err := e.RunFile(context.Background(), path)
	require.NoError(t, err)

	fn, ok := res.Env.Lookup("printf")
	require.True(t, ok)
	assert.Equal(t, "libc/printf", fn.Location)
	assert.Equal(t, 1, res.Env.Len())

	require.Len(t, res.Diagnostics, 1, "main is reported as unsupported")
	assert.Equal(t, core.KindUnsupportedNode, res.Diagnostics[0].Kind)
	assert.True(t, res.HasErrors())
	assert.Empty(t, res.RunID)
}

func TestRunFile_LexDiagnosticsComeFirst(t *testing.T) {
	e := newTestEngine(t, Config{})
	path := testutil.WriteSource(t, "x.c", "@\n#include <unknown.h>")

	res, err := e.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, core.PhaseLex, res.Diagnostics[0].Phase)
	assert.Equal(t, core.PhaseInterp, res.Diagnostics[1].Phase)
	assert.Equal(t, core.KindUnknownHeader, res.Diagnostics[1].Kind)
	assert.Equal(t, 0, res.Env.Len())
}

func TestRunFile_ParseError(t *testing.T) {
	e := newTestEngine(t, Config{})
	path := testutil.WriteSource(t, "bad.c", "int x = 1;")

	res, err := e.RunFile(context.Background(), path)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Nil(t, res.AST)
	assert.Nil(t, res.Env)

	var pe *parser.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, core.KindUnsupported, pe.Kind)
	assert.Contains(t, err.Error(), path)
}

func TestRunFile_MissingFile(t *testing.T) {
	e := newTestEngine(t, Config{})
	_, err := e.RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunFile_CustomTable(t *testing.T) {
	table, err := capability.NewBuilder().Add("mylib.h", "vendor", "greet").Build()
	require.NoError(t, err)

	e := newTestEngine(t, Config{Table: table})
	res, err := e.RunSource(context.Background(), "inline", "#include \"mylib.h\"\n#include <stdio.h>")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Env.Len())
	fn, _ := res.Env.Lookup("greet")
	assert.Equal(t, "vendor/greet", fn.Location)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, core.KindUnknownHeader, res.Diagnostics[0].Kind)
}

func TestLexAndParse(t *testing.T) {
	e := newTestEngine(t, Config{})
	path := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)

	lexed, err := e.Lex(path)
	require.NoError(t, err)
	assert.NotEmpty(t, lexed.Tokens)
	assert.Empty(t, lexed.Diagnostics)

	parsed, err := e.Parse(path)
	require.NoError(t, err)
	require.NotNil(t, parsed.AST)
	assert.Equal(t, 3, parsed.AST.Len())
	assert.Nil(t, parsed.Env)

	_, err = e.Lex(filepath.Join(t.TempDir(), "nope.c"))
	assert.Error(t, err)
}

func TestRunFile_Recording(t *testing.T) {
	ctx := context.Background()
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })

	e := newTestEngine(t, Config{Store: store})

	ok := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)
	res, err := e.RunFile(ctx, ok)
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	run, err := store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusCompleted, run.Status)
	assert.Equal(t, ok, run.SourcePath)
	assert.Len(t, run.SourceHash, 64)
	assert.Equal(t, 1, run.EnvSize)
	assert.Equal(t, 1, run.DiagnosticCount)

	symbols, err := store.ListSymbols(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, []state.Symbol{{Name: "printf", Location: "libc/printf"}}, symbols)

	bad := testutil.WriteSource(t, "bad.c", "#define X 1")
	res, err = e.RunFile(ctx, bad)
	require.Error(t, err)

	run, err = store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "#define is not supported")

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunFile_RecordingFromStatePath(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.db")
	e := newTestEngine(t, Config{Record: true, StatePath: statePath})
	require.NotNil(t, e.Store())

	res, err := e.RunSource(context.Background(), "inline", "#include <stdio.h>")
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	_, err = os.Stat(statePath)
	assert.NoError(t, err)
}

func TestCheck(t *testing.T) {
	e := newTestEngine(t, Config{})
	paths := []string{
		testutil.WriteSource(t, "a.c", "#include <stdio.h>"),
		testutil.WriteSource(t, "b.c", "#include <unknown.h>"),
		testutil.WriteSource(t, "c.c", "int x;"),
		filepath.Join(t.TempDir(), "missing.c"),
	}

	reports, err := e.Check(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	for i, r := range reports {
		assert.Equal(t, paths[i], r.Path, "reports keep input order")
	}
	assert.True(t, reports[0].OK())
	assert.False(t, reports[1].OK())
	assert.Equal(t, 1, len(reports[1].Result.Diagnostics))
	assert.False(t, reports[2].OK())
	assert.Error(t, reports[2].Err)
	assert.False(t, reports[3].OK())
	assert.Nil(t, reports[3].Result)
}

func TestCheck_Cancelled(t *testing.T) {
	e := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Check(ctx, []string{testutil.WriteSource(t, "a.c", "")}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession(t *testing.T) {
	table, err := capability.NewBuilder().
		From(capability.Default()).
		Add("stdlib.h", "libc", "malloc").
		Build()
	require.NoError(t, err)
	s := newTestEngine(t, Config{Table: table}).NewSession()

	res, err := s.Eval("#include <stdio.h>")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Env.Len())
	assert.Equal(t, "<input 1>", res.Path)

	_, err = s.Eval("int x = 1;")
	require.Error(t, err)
	assert.Equal(t, 1, s.Env().Len(), "a parse error leaves the environment alone")

	res, err = s.Eval("#include <stdlib.h>")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Env.Len())

	s.Reset()
	assert.Equal(t, 0, s.Env().Len())
}

func TestComplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"   ", false},
		{"#include <stdio.h>", true},
		{`#include "local.h"`, true},
		{"#include <stdio", false},
		{"printf(\"hi\")", false},
		{"printf(\"hi\");", true},
		{"int main(void) {", false},
		{"int main(void) {\n  return 0;", false},
		{"int main(void) {\n  return 0;\n}", true},
		{`f("{");`, true},
		{"int f() { int g() { } ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Complete(tt.input), "input %q", tt.input)
	}
}

func TestWatch(t *testing.T) {
	e := newTestEngine(t, Config{})
	path := testutil.WriteSource(t, "watched.c", "#include <stdio.h>")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, path, 20*time.Millisecond, func(res *Result, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	select {
	case res := <-results:
		assert.Equal(t, 1, res.Env.Len())
	case <-time.After(5 * time.Second):
		t.Fatal("initial run did not happen")
	}

	require.NoError(t, os.WriteFile(path, []byte("#include <stdio.h>\n#include <stdio.h>\n"), 0o600))

	// the write may be seen as a truncate followed by a write
	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case res := <-results:
			seen = res.Env.Len() == 2
		case <-deadline:
			t.Fatal("change was not picked up")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
