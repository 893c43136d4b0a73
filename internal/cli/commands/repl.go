package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/internal/engine"
	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "leapc> "
	replContinuePrompt = "   ...> "
	replHistoryFile    = "repl_history"
)

// lineReader is the part of *readline.Instance the REPL loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Each input is parsed and interpreted
against one environment that persists until .reset or exit.

Input accumulates across lines until it ends with ';' or a closing '}'
with every brace balanced, or forms a complete #include directive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	table := cmdCtx.Engine.Table()
	cfg := &readline.Config{
		Prompt:          replPrompt,
		AutoComplete:    newREPLCompleter(table),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	}
	if historyFile := replHistoryPath(cmdCtx.Cfg.StatePath); historyFile != "" {
		if err := ensureStateDir(historyFile); err != nil {
			cmdCtx.Logger.Warn("history disabled", "error", err.Error())
		} else {
			cfg.HistoryFile = historyFile
		}
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Println("leapc REPL")
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	p := newREPL(cmdCtx.Engine, r, rl)
	return p.loop()
}

// replHistoryPath keeps the history next to the state database.
func replHistoryPath(statePath string) string {
	if statePath == "" || statePath == ":memory:" {
		return ""
	}
	return filepath.Join(filepath.Dir(statePath), replHistoryFile)
}

type repl struct {
	engine  *engine.Engine
	session *engine.Session
	r       *output.Renderer
	rl      lineReader
	buf     strings.Builder
}

func newREPL(eng *engine.Engine, r *output.Renderer, rl lineReader) *repl {
	return &repl{
		engine:  eng,
		session: eng.NewSession(),
		r:       r,
		rl:      rl,
	}
}

func (p *repl) loop() error {
	for {
		line, err := p.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			p.buf.Reset()
			p.rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if p.buf.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ".") {
				if quit := p.handleDotCommand(trimmed); quit {
					return nil
				}
				continue
			}
		}

		p.buf.WriteString(line)
		p.buf.WriteString("\n")
		if !engine.Complete(p.buf.String()) {
			p.rl.SetPrompt(replContinuePrompt)
			continue
		}
		p.rl.SetPrompt(replPrompt)

		src := p.buf.String()
		p.buf.Reset()
		p.eval(src)
	}
}

func (p *repl) eval(src string) {
	before := p.session.Env().Len()

	res, err := p.session.Eval(src)
	if err != nil {
		p.r.Error(err.Error())
		if res != nil {
			renderDiagnostics(p.r, res.Diagnostics)
		}
		return
	}

	fns := res.Env.Functions()
	if len(fns) == before {
		p.r.Muted("no new entries")
	}
	for _, fn := range fns[before:] {
		p.r.Println(fn.Name + " -> " + fn.Location)
	}
	renderDiagnostics(p.r, res.Diagnostics)
}

func (p *repl) handleDotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(p.r.Writer())

	case ".env":
		renderEnv(p.r, p.session.Env())

	case ".headers":
		if err := renderHeaders(p.r, p.engine.Table()); err != nil {
			p.r.Error(err.Error())
		}

	case ".reset":
		p.session.Reset()
		p.r.Success("environment cleared")

	default:
		p.r.Errorf("Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .env            Show the current environment
  .headers        List headers #include can resolve
  .reset          Clear the environment
  .quit / .exit   Exit the REPL

Tips:
  - Input runs once it ends with ';' or a balanced '}'
  - #include <header> runs as soon as the line is complete
  - Ctrl+C discards a partial input
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and #include targets.
func newREPLCompleter(table *capability.Table) *readline.PrefixCompleter {
	var headers []readline.PrefixCompleterInterface
	for _, h := range table.Headers() {
		headers = append(headers, readline.PcItem("<"+h.Name+">"))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("#include", headers...),
		readline.PcItem(".help"),
		readline.PcItem(".env"),
		readline.PcItem(".headers"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
