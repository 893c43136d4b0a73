// Package format renders parsed programs: canonical C source, an indented
// AST tree, and serializable node records.
package format

import (
	"bytes"
	"strings"
)

const indentSize = 4

// Printer accumulates indented output line by line.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	width       int
	atLineStart bool
}

func newPrinter(width int) *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		width:       width,
		atLineStart: true,
	}
}

// String returns the output with exactly one trailing newline.
// Empty output stays empty.
func (p *Printer) String() string {
	s := strings.TrimRight(p.output.String(), "\n")
	if s == "" {
		return ""
	}
	return s + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// blank ends the current line if needed and emits one empty line.
func (p *Printer) blank() {
	if !p.atLineStart {
		p.writeln()
	}
	p.writeln()
}

func (p *Printer) writeIndent() {
	p.output.WriteString(strings.Repeat(" ", p.depth*p.width))
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}
