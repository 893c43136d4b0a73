package interp_test

import (
	"testing"

	"github.com/leapstack-labs/leapc/internal/testutil"
	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/interp"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *core.AST {
	t.Helper()
	ast, err := parser.Parse(src)
	require.NoError(t, err)
	return ast
}

func TestRunStdioInclude(t *testing.T) {
	in := interp.New(capability.Default(), interp.WithLogger(testutil.NewTestLogger(t)))
	res := in.Run(mustParse(t, "#include <stdio.h>"))

	assert.Empty(t, res.Diagnostics)
	require.Equal(t, 1, res.Env.Len())
	assert.Equal(t, []interp.Function{{Name: "printf", Location: "libc/printf"}}, res.Env.Functions())

	fn, ok := res.Env.Lookup("printf")
	require.True(t, ok)
	assert.Equal(t, "libc/printf", fn.Location)
	assert.Equal(t, 2, res.Evaluated, "include plus EOF marker")
}

func TestRunUnknownHeader(t *testing.T) {
	res := interp.New(capability.Default()).Run(mustParse(t, "#include <unknown.h>"))

	assert.Equal(t, 0, res.Env.Len())
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, core.PhaseInterp, d.Phase)
	assert.Equal(t, core.KindUnknownHeader, d.Kind)
	assert.Equal(t, core.SeverityError, d.Severity)
	assert.Contains(t, d.Message, "unknown.h")
	assert.Equal(t, 1, d.Pos.Line)
}

func TestRunContinuesAfterUnknownHeader(t *testing.T) {
	res := interp.New(capability.Default()).Run(mustParse(t, "#include \"missing.h\"\n#include <stdio.h>\n"))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.Env.Len())
}

func TestRunReportsUnsupportedNodes(t *testing.T) {
	res := interp.New(capability.Default()).Run(mustParse(t, testutil.HelloWorld))

	assert.Equal(t, []interp.Function{{Name: "printf", Location: "libc/printf"}}, res.Env.Functions())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, core.KindUnsupportedNode, res.Diagnostics[0].Kind)
	assert.Contains(t, res.Diagnostics[0].Message, "FuncDecl")
	assert.Equal(t, 3, res.Diagnostics[0].Pos.Line)
}

func TestRunEmptyProgram(t *testing.T) {
	res := interp.New(capability.Default()).Run(mustParse(t, ""))
	assert.Equal(t, 0, res.Env.Len())
	assert.False(t, res.HasDiagnostics())
	assert.Equal(t, 1, res.Evaluated)
}

func TestRunStopsAtEOFMarker(t *testing.T) {
	ast := core.NewAST(
		&core.Include{Path: "stdio.h"},
		&core.EOF{},
		&core.Include{Path: "stdio.h"},
		&core.Semicolon{},
	)
	res := interp.New(capability.Default()).Run(ast)

	assert.Equal(t, 1, res.Env.Len())
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 2, res.Evaluated)
}

func TestRunWithoutEOFMarker(t *testing.T) {
	ast := core.NewAST(&core.Include{Path: "stdio.h"}, &core.IntLit{Value: 1})
	res := interp.New(capability.Default()).Run(ast)

	assert.Equal(t, 1, res.Env.Len())
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "IntLit")
}

func TestDuplicateIncludeAppends(t *testing.T) {
	res := interp.New(capability.Default()).Run(mustParse(t, "#include <stdio.h>\n#include <stdio.h>"))
	assert.Equal(t, 2, res.Env.Len())
}

func TestEnvPersistsAcrossRuns(t *testing.T) {
	table, err := capability.NewBuilder().
		From(capability.Default()).
		Add("stdlib.h", "libc", "malloc", "free").
		Build()
	require.NoError(t, err)

	in := interp.New(table)
	first := in.Run(mustParse(t, "#include <stdio.h>"))
	second := in.Run(mustParse(t, "#include <stdlib.h>"))

	assert.Equal(t, 1, first.Env.Len(), "earlier snapshots are not affected")
	assert.Equal(t, 3, second.Env.Len())
	assert.Equal(t, 3, in.Env().Len())

	fn, ok := second.Env.Lookup("free")
	require.True(t, ok)
	assert.Equal(t, "libc/free", fn.Location)
}

func TestWithEnvAndNilInputs(t *testing.T) {
	seed := interp.New(capability.Default())
	seed.Run(mustParse(t, "#include <stdio.h>"))

	in := interp.New(nil, interp.WithEnv(seed.Env()), interp.WithLogger(nil))
	assert.Equal(t, 0, in.Table().Len())

	res := in.Run(nil)
	assert.Equal(t, 1, res.Env.Len())
	assert.Empty(t, res.Diagnostics)

	res = in.Run(mustParse(t, "#include <stdio.h>"))
	require.Len(t, res.Diagnostics, 1, "nil table recognizes nothing")
}

func TestDiagnosticsAreLogged(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	interp.New(capability.Default(), interp.WithLogger(logger)).
		Run(mustParse(t, "#include <nope.h>"))

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "kind=unknown_header")
	assert.Contains(t, out, "interpretation finished")
}
