package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapc/internal/cli/config"
	"github.com/leapstack-labs/leapc/internal/cli/output"
	clitest "github.com/leapstack-labs/leapc/internal/cli/testutil"
	"github.com/leapstack-labs/leapc/internal/engine"
	"github.com/leapstack-labs/leapc/internal/state"
	"github.com/leapstack-labs/leapc/internal/testutil"
	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewLexCommand(), "lex <file>", nil},
		{NewParseCommand(), "parse <file>", nil},
		{NewFmtCommand(), "fmt <file>", []string{"write", "indent"}},
		{NewRunCommand(), "run <file>", []string{"watch", "debounce"}},
		{NewCheckCommand(), "check <file>...", []string{"jobs"}},
		{NewREPLCommand(), "repl", nil},
		{NewHeadersCommand(), "headers", nil},
		{NewHistoryCommand(), "history [run-id]", []string{"limit"}},
		{NewLSPCommand("test"), "lsp", nil},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestLexCommand(t *testing.T) {
	path := testutil.WriteSource(t, "a.c", "#include <stdio.h>\n@")

	t.Run("markdown", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewLexCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		assert.Contains(t, res.Stdout, "# tokens: "+path)
		assert.Contains(t, res.Stdout, "| 1:2 | IDENT | \"include\" |")
		assert.Contains(t, res.Stdout, "## diagnostics (1)")
		assert.Contains(t, res.Stdout, "unrecognized_char")
		clitest.AssertNoANSI(t, res.Stdout)
		clitest.AssertValidMarkdown(t, res.Stdout)
	})

	t.Run("json", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeJSON)
		res := clitest.ExecuteCommand(t, NewLexCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		var out struct {
			Tokens []struct {
				Type    string `json:"type"`
				Literal string `json:"literal"`
			} `json:"tokens"`
			Diagnostics []map[string]any `json:"diagnostics"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		require.NotEmpty(t, out.Tokens)
		assert.Equal(t, "#", out.Tokens[0].Type)
		assert.Equal(t, ">", out.Tokens[len(out.Tokens)-1].Type)
		for _, tok := range out.Tokens {
			assert.NotEqual(t, "EOF", tok.Type)
		}
		require.Len(t, out.Diagnostics, 1)
		assert.Equal(t, "warning", out.Diagnostics[0]["severity"])
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewLexCommand(), cfg, nil, filepath.Join(t.TempDir(), "nope.c"))
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "failed to read")
	})
}

func TestParseCommand(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		path := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewParseCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		assert.Contains(t, res.Stdout, "Include <stdio.h> @1:1")
		assert.Contains(t, res.Stdout, "  FunCall printf @4:5")
		clitest.AssertValidMarkdown(t, res.Stdout)
	})

	t.Run("yaml", func(t *testing.T) {
		path := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)
		cfg := clitest.TestConfig(t, output.ModeYAML)
		res := clitest.ExecuteCommand(t, NewParseCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		var nodes []map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(res.Stdout), &nodes))
		require.Len(t, nodes, 3)
		assert.Equal(t, "stdio.h", nodes[0]["path"])
		assert.Equal(t, "main", nodes[1]["name"])
	})

	t.Run("parse error", func(t *testing.T) {
		path := testutil.WriteSource(t, "bad.c", "int x = 1;")
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewParseCommand(), cfg, nil, path)
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, parser.ErrParse))
		assert.Contains(t, res.Err.Error(), path)
		assert.NotContains(t, res.Stdout, "syntax tree")
	})
}

func TestFmtCommand(t *testing.T) {
	messy := "#include <stdio.h>\nint main(void){printf(\"Hello, World\");return 0;}"

	t.Run("stdout", func(t *testing.T) {
		path := testutil.WriteSource(t, "messy.c", messy)
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewFmtCommand(), cfg, nil, path)
		require.NoError(t, res.Err)
		assert.Equal(t, testutil.HelloWorld, res.Stdout)
	})

	t.Run("write", func(t *testing.T) {
		path := testutil.WriteSource(t, "messy.c", messy)
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewFmtCommand(), cfg, nil, path, "--write", "--indent", "2")
		require.NoError(t, res.Err)
		assert.Empty(t, res.Stdout)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  printf(\"Hello, World\");\n")
	})

	t.Run("negative indent", func(t *testing.T) {
		path := testutil.WriteSource(t, "messy.c", messy)
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewFmtCommand(), cfg, nil, path, "--indent=-1")
		require.Error(t, res.Err)
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("markdown env dump", func(t *testing.T) {
		path := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewRunCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		assert.Contains(t, res.Stdout, "# run: "+path)
		assert.Contains(t, res.Stdout, "## environment (1)")
		assert.Contains(t, res.Stdout, "printf -> libc/printf")
		assert.Contains(t, res.Stdout, "unsupported_node")
		clitest.AssertValidMarkdown(t, res.Stdout)
	})

	t.Run("json", func(t *testing.T) {
		path := testutil.WriteSource(t, "inc.c", "#include <stdio.h>\n#include <nope.h>\n")
		cfg := clitest.TestConfig(t, output.ModeJSON)
		res := clitest.ExecuteCommand(t, NewRunCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		var out runOutput
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		assert.Equal(t, path, out.Path)
		require.Len(t, out.Env, 1)
		assert.Equal(t, "libc/printf", out.Env[0].Location)
		require.Len(t, out.Diagnostics, 1)
		assert.Contains(t, out.Diagnostics[0].Message, "nope.h")
	})

	t.Run("empty env", func(t *testing.T) {
		path := testutil.WriteSource(t, "empty.c", "")
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewRunCommand(), cfg, nil, path)
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, "## environment (0)")
		assert.Contains(t, res.Stdout, "_(empty)_")
	})

	t.Run("parse error", func(t *testing.T) {
		path := testutil.WriteSource(t, "bad.c", "#define X 1\n")
		cfg := clitest.TestConfig(t, output.ModeJSON)
		res := clitest.ExecuteCommand(t, NewRunCommand(), cfg, nil, path)
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, parser.ErrParse)
		assert.NotContains(t, res.Stdout, "Usage:")
		assert.Empty(t, res.Stderr)

		var out runOutput
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		assert.NotEmpty(t, out.Error)
		require.Len(t, out.Diagnostics, 1)
		assert.Empty(t, out.Env)
	})

	t.Run("custom headers", func(t *testing.T) {
		path := testutil.WriteSource(t, "m.c", "#include <math.h>\n")
		cfg := clitest.TestConfig(t, output.ModeJSON)
		cfg.Headers = []config.HeaderConfig{{Name: "math.h", Namespace: "libm", Functions: []string{"sqrt", "pow"}}}
		res := clitest.ExecuteCommand(t, NewRunCommand(), cfg, nil, path)
		require.NoError(t, res.Err)

		var out runOutput
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		require.Len(t, out.Env, 2)
		assert.Equal(t, "libm/pow", out.Env[1].Location)
	})
}

func TestRunThenHistory(t *testing.T) {
	path := testutil.WriteSource(t, "hello.c", testutil.HelloWorld)
	cfg := clitest.TestConfig(t, output.ModeJSON)
	cfg.StatePath = filepath.Join(t.TempDir(), "nested", "state.db")
	cfg.Record = true

	res := clitest.ExecuteCommand(t, NewRunCommand(), cfg, nil, path)
	require.NoError(t, res.Err)
	var run runOutput
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &run))
	require.NotEmpty(t, run.RunID)

	res = clitest.ExecuteCommand(t, NewHistoryCommand(), cfg, nil)
	require.NoError(t, res.Err)
	var runs []state.Run
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].ID)
	assert.Equal(t, state.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 1, runs[0].EnvSize)

	res = clitest.ExecuteCommand(t, NewHistoryCommand(), cfg, nil, run.RunID)
	require.NoError(t, res.Err)
	var detail struct {
		Run     state.Run      `json:"run"`
		Symbols []state.Symbol `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &detail))
	assert.Equal(t, path, detail.Run.SourcePath)
	require.Len(t, detail.Symbols, 1)
	assert.Equal(t, "printf", detail.Symbols[0].Name)

	cfg.OutputFormat = string(output.ModeMarkdown)
	res = clitest.ExecuteCommand(t, NewHistoryCommand(), cfg, nil)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "# runs (1)")
	assert.Contains(t, res.Stdout, run.RunID)
	assert.Contains(t, res.Stdout, "completed")
}

func TestHistoryCommand(t *testing.T) {
	t.Run("no database yet", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewHistoryCommand(), cfg, nil)
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, "no runs recorded")
		_, err := os.Stat(cfg.StatePath)
		assert.True(t, os.IsNotExist(err), "history must not create the database")
	})

	t.Run("in-memory state", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		cfg.StatePath = ":memory:"
		res := clitest.ExecuteCommand(t, NewHistoryCommand(), cfg, nil)
		require.Error(t, res.Err)
	})

	t.Run("unknown run", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		store := state.NewSQLiteStore(nil)
		require.NoError(t, store.Open(cfg.StatePath))
		require.NoError(t, store.Close())

		res := clitest.ExecuteCommand(t, NewHistoryCommand(), cfg, nil, "missing-id")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "run not found")
	})
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(src), 0o600))
		return p
	}
	good := write("good.c", "#include <stdio.h>\n")
	unknown := write("unknown.c", "#include <nope.h>\n")
	bad := write("bad.c", "int x = 1;")

	t.Run("all pass", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewCheckCommand(), cfg, nil, good, good)
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, "# check (2 files)")
		assert.Contains(t, res.Stdout, "2 passed")
	})

	t.Run("interpreter errors", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewCheckCommand(), cfg, nil, good, unknown)
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, ErrCheckFailed)
		assert.False(t, errors.Is(res.Err, parser.ErrParse))
		assert.Contains(t, res.Stdout, "1 passed, 1 failed")
	})

	t.Run("parse errors", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeJSON)
		res := clitest.ExecuteCommand(t, NewCheckCommand(), cfg, nil, "-j", "1", good, unknown, bad)
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, ErrCheckFailed)
		assert.ErrorIs(t, res.Err, parser.ErrParse)
		assert.NotContains(t, res.Stdout, "Usage:")

		var out checkOutput
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		assert.Equal(t, 1, out.Passed)
		assert.Equal(t, 2, out.Failed)
		require.Len(t, out.Files, 3)
		assert.Equal(t, good, out.Files[0].Path)
		assert.Equal(t, bad, out.Files[2].Path)
		assert.NotEmpty(t, out.Files[2].Error)
	})

	t.Run("requires a file", func(t *testing.T) {
		cfg := clitest.TestConfig(t, output.ModeMarkdown)
		res := clitest.ExecuteCommand(t, NewCheckCommand(), cfg, nil)
		require.Error(t, res.Err)
	})
}

func TestHeadersCommand(t *testing.T) {
	cfg := clitest.TestConfig(t, output.ModeJSON)
	cfg.Headers = []config.HeaderConfig{{Name: "stdlib.h", Functions: []string{"malloc", "free"}}}

	res := clitest.ExecuteCommand(t, NewHeadersCommand(), cfg, nil)
	require.NoError(t, res.Err)

	var headers []headerOutput
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &headers))
	require.Len(t, headers, 2)
	assert.Equal(t, "stdio.h", headers[0].Name)
	assert.Equal(t, []string{"printf"}, headers[0].Functions)
	assert.Equal(t, "stdlib.h", headers[1].Name)
	assert.Equal(t, "libc", headers[1].Namespace)

	cfg.OutputFormat = string(output.ModeMarkdown)
	cfg.IncludeDefaults = false
	res = clitest.ExecuteCommand(t, NewHeadersCommand(), cfg, nil)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "# headers (1)")
	assert.Contains(t, res.Stdout, "| stdlib.h | libc | malloc, free |")
	assert.NotContains(t, res.Stdout, "stdio.h")
}

func TestLSPCommand(t *testing.T) {
	frame := func(msg string) string {
		return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(msg), msg)
	}
	open := `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":` +
		`{"uri":"file:///w/a.c","languageId":"c","version":1,"text":"#include <stdlib.h>\n#include <nope.h>\n"}}}`
	input := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`) +
		frame(`{"jsonrpc":"2.0","method":"initialized","params":{}}`) +
		frame(open) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)

	cfg := clitest.TestConfig(t, output.ModeText)
	cfg.Headers = []config.HeaderConfig{{Name: "stdlib.h", Functions: []string{"malloc"}}}

	cmd := NewLSPCommand("9.9.9")
	cmd.SetIn(strings.NewReader(input))
	res := clitest.ExecuteCommand(t, cmd, cfg, nil)
	require.NoError(t, res.Err)

	assert.Contains(t, res.Stdout, `"serverInfo":{"name":"leapc","version":"9.9.9"}`)
	assert.Equal(t, 1, strings.Count(res.Stdout, `"code":"unknown_header"`), "configured headers resolve")
	assert.Contains(t, res.Stdout, `nope.h`)
	assert.Empty(t, res.Stderr)
}

// scriptedReader feeds the REPL a fixed list of lines.
type scriptedReader struct {
	lines   []string
	prompts []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (s *scriptedReader) SetPrompt(prompt string) {
	s.prompts = append(s.prompts, prompt)
}

func newTestREPL(t *testing.T, lines ...string) (*repl, *clitest.TestRenderer, *scriptedReader) {
	t.Helper()
	table, err := capability.NewBuilder().
		From(capability.Default()).
		Add("stdlib.h", "libc", "malloc", "free").
		Build()
	require.NoError(t, err)

	eng, err := engine.New(engine.Config{Table: table, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	tr := clitest.NewTestRendererMarkdown()
	rl := &scriptedReader{lines: lines}
	return newREPL(eng, tr.Renderer, rl), tr, rl
}

func TestREPLPersistsEnvironment(t *testing.T) {
	p, tr, _ := newTestREPL(t,
		"#include <stdio.h>",
		"#include <stdlib.h>",
		".env",
	)
	require.NoError(t, p.loop())

	out := tr.Output()
	assert.Contains(t, out, "printf -> libc/printf")
	assert.Contains(t, out, "malloc -> libc/malloc")
	assert.Contains(t, out, "## environment (3)")
	assert.Equal(t, 3, p.session.Env().Len())
}

func TestREPLMultilineInput(t *testing.T) {
	p, tr, rl := newTestREPL(t,
		"int main(void) {",
		"    return 0;",
		"}",
	)
	require.NoError(t, p.loop())

	assert.Equal(t, []string{replContinuePrompt, replContinuePrompt, replPrompt}, rl.prompts)
	assert.Contains(t, tr.Output(), "no new entries")
	assert.Contains(t, tr.Output(), "unsupported_node")
}

func TestREPLParseErrorKeepsEnvironment(t *testing.T) {
	p, tr, _ := newTestREPL(t,
		"#include <stdio.h>",
		"int x = 1;",
	)
	require.NoError(t, p.loop())

	assert.Contains(t, tr.Output(), "parse error")
	assert.Equal(t, 1, p.session.Env().Len())
}

func TestREPLInterruptDiscardsPartialInput(t *testing.T) {
	p, _, rl := newTestREPL(t,
		"int main(void) {",
		"^C",
		"#include <stdio.h>",
	)
	require.NoError(t, p.loop())

	assert.Equal(t, replPrompt, rl.prompts[1])
	assert.Equal(t, 1, p.session.Env().Len())
}

func TestREPLDotCommands(t *testing.T) {
	p, tr, rl := newTestREPL(t,
		".help",
		".headers",
		"#include <stdio.h>",
		".reset",
		".bogus",
		".quit",
		"#include <stdio.h>",
	)
	require.NoError(t, p.loop())

	out := tr.Output()
	assert.Contains(t, out, ".reset")
	assert.Contains(t, out, "| stdlib.h | libc | malloc, free |")
	assert.Contains(t, out, "environment cleared")
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .bogus")
	assert.Equal(t, 0, p.session.Env().Len())
	assert.Len(t, rl.lines, 1, ".quit stops before the last line")
}

func TestReplHistoryPath(t *testing.T) {
	assert.Empty(t, replHistoryPath(""))
	assert.Empty(t, replHistoryPath(":memory:"))
	assert.Equal(t, filepath.Join(".leapc", replHistoryFile), replHistoryPath(config.DefaultStateFile))
}

func TestREPLCompleter(t *testing.T) {
	c := newREPLCompleter(capability.Default())
	var names []string
	for _, child := range c.GetChildren() {
		names = append(names, strings.TrimSpace(string(child.GetName())))
	}
	assert.Contains(t, names, "#include")
	assert.Contains(t, names, ".env")
}
