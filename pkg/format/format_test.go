package format

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapc/internal/testutil"
	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/interp"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "hello world is already canonical",
			input:    testutil.HelloWorld,
			expected: testutil.HelloWorld,
		},
		{
			name:  "compact input",
			input: `#include "a.h" int main(){printf("x");return 0;}`,
			expected: `#include "a.h"

int main(void) {
    printf("x");
    return 0;
}
`,
		},
		{
			name:  "consecutive includes stay together",
			input: "#include <stdio.h>\n#include <sys/types.h>\n",
			expected: `#include <stdio.h>
#include <sys/types.h>
`,
		},
		{
			name:  "nested declaration and bare return",
			input: "int f(){int g(){return;}h(a \"b\" 1);}",
			expected: `int f(void) {
    int g(void) {
        return;
    }
    h(a "b" 1);
}
`,
		},
		{
			name:     "expression without terminator",
			input:    "x",
			expected: "x\n",
		},
		{
			name:     "empty program",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Source(ast))
		})
	}
}

func TestSourceRoundTrip(t *testing.T) {
	inputs := []string{
		testutil.HelloWorld,
		"int f(){int g(){return;}h(a \"b\" 1);}",
		`#include "x.h" ; ; f(g() 2)`,
	}
	for _, in := range inputs {
		first, err := parser.Parse(in)
		require.NoError(t, err)

		out := Source(first)
		second, err := parser.Parse(out)
		require.NoError(t, err, "formatted output must parse:\n%s", out)
		assert.Equal(t, out, Source(second))
		assert.Equal(t, Tree(first) != "", Tree(second) != "")
	}
}

func TestSourceIndentOption(t *testing.T) {
	ast, err := parser.Parse("int main(){return 0;}")
	require.NoError(t, err)
	assert.Equal(t, "int main(void) {\n  return 0;\n}\n", Source(ast, WithIndent(2)))
	assert.Equal(t, "", Source(nil))
}

func TestTree(t *testing.T) {
	ast, err := parser.Parse(testutil.HelloWorld)
	require.NoError(t, err)

	expected := `Include <stdio.h> @1:1
FuncDecl int main(0 params) @3:1
  FunCall printf @4:5
    StrVal "Hello, World" @4:12
  Semicolon @4:27
  Return @5:5
    IntLit 0 @5:12
  Semicolon @5:13
EOF @6:2
`
	assert.Equal(t, expected, Tree(ast))
}

func TestTreeWithoutPositions(t *testing.T) {
	ast := core.NewAST(&core.Include{Path: "a.h"}, &core.EOF{})
	assert.Equal(t, "Include \"a.h\"\nEOF\n", Tree(ast))
}

func TestEnv(t *testing.T) {
	in := interp.New(capability.Default())
	ast, err := parser.Parse("#include <stdio.h>\n#include <stdio.h>")
	require.NoError(t, err)
	res := in.Run(ast)

	assert.Equal(t, "printf -> libc/printf\nprintf -> libc/printf\n", Env(res.Env))
	assert.Equal(t, "", Env(interp.NewEnv()))
}

func TestRecords(t *testing.T) {
	ast, err := parser.Parse(testutil.HelloWorld)
	require.NoError(t, err)

	recs := Records(ast)
	require.Len(t, recs, 3)
	assert.Equal(t, "Include", recs[0].Kind)
	assert.Equal(t, "stdio.h", recs[0].Path)
	assert.True(t, recs[0].System)

	fn := recs[1]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, "int", fn.ReturnType)
	require.Len(t, fn.Body, 4)
	assert.Equal(t, "Hello, World", fn.Body[0].Args[0].Value)
	require.NotNil(t, fn.Body[2].Expr)
	assert.Equal(t, "0", fn.Body[2].Expr.Value)

	data, err := json.Marshal(recs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Include","pos":{"line":1,"column":1,"offset":0},"path":"stdio.h","system":true}`, string(data))

	out, err := yaml.Marshal(recs[2])
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: EOF")
}

func TestTokens(t *testing.T) {
	tokens, _ := parser.Tokenize("#include <stdio.h>")
	recs := Tokens(tokens)
	require.Len(t, recs, 7)
	assert.Equal(t, "#", recs[0].Type)
	assert.Equal(t, "IDENT", recs[1].Type)
	assert.Equal(t, "include", recs[1].Literal)
	assert.Equal(t, 2, recs[1].Pos.Column)
}
