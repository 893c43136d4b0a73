package lsp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapc/pkg/format"
)

var (
	// includePathPrefix matches a line ending inside an include path: `#include <st`.
	includePathPrefix = regexp.MustCompile(`^\s*#\s*include\s*[<"]([A-Za-z./]*)$`)
	// directivePrefix matches a line ending inside a directive name: `#inc`.
	directivePrefix = regexp.MustCompile(`^\s*#\s*[A-Za-z]*$`)
)

// keywords are the type names and statements the parser accepts.
var keywords = []string{"int", "void", "return"}

// getCompletions returns completion items for the given position.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	line := currentLinePrefix(doc, params.Position)
	switch {
	case includePathPrefix.MatchString(line):
		return s.headerCompletions()
	case directivePrefix.MatchString(line):
		return directiveCompletions()
	}

	idx := buildIndex(doc.Content, s.table)
	items := make([]CompletionItem, 0, len(idx.symbols)+len(keywords))
	for _, sym := range idx.uniqueSymbols() {
		items = append(items, CompletionItem{
			Label:         sym.Name,
			Kind:          CompletionItemKindFunction,
			Detail:        sym.Location,
			Documentation: "from <" + sym.Header + ">",
			SortText:      "0" + sym.Name,
		})
	}
	for _, kw := range keywords {
		items = append(items, CompletionItem{
			Label:    kw,
			Kind:     CompletionItemKindKeyword,
			SortText: "1" + kw,
		})
	}
	return items
}

// headerCompletions lists every header in the capability table.
func (s *Server) headerCompletions() []CompletionItem {
	headers := s.table.Headers()
	items := make([]CompletionItem, 0, len(headers))
	for _, h := range headers {
		items = append(items, CompletionItem{
			Label:         h.Name,
			Kind:          CompletionItemKindFile,
			Detail:        h.Namespace,
			Documentation: "exports " + strings.Join(h.Functions, ", "),
		})
	}
	return items
}

func directiveCompletions() []CompletionItem {
	return []CompletionItem{{
		Label:            "include",
		Kind:             CompletionItemKindSnippet,
		Detail:           "#include <header>",
		InsertText:       "include <${1:stdio.h}>",
		InsertTextFormat: InsertTextFormatSnippet,
	}}
}

// currentLinePrefix returns the text of the cursor's line up to the cursor.
func currentLinePrefix(doc *Document, pos Position) string {
	before := doc.GetTextBefore(pos)
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		return before[i+1:]
	}
	return before
}

// getHover describes the header under the cursor, or the function whose name
// is under the cursor.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	idx := buildIndex(doc.Content, s.table)
	offset := doc.PositionToOffset(params.Position)

	if inc, ok := idx.includeAt(offset); ok {
		r := Range{Start: doc.OffsetToPosition(inc.PathStart), End: doc.OffsetToPosition(inc.PathEnd)}
		h, found := s.table.Lookup(inc.Path)
		if !found {
			return &Hover{
				Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: fmt.Sprintf("`%s` is not in the capability table", inc.Path)},
				Range:    &r,
			}
		}
		var b strings.Builder
		fmt.Fprintf(&b, "**%s** (%s)\n\n", h.Name, h.Namespace)
		for _, fn := range h.Functions {
			fmt.Fprintf(&b, "- `%s` -> `%s`\n", fn, h.Location(fn))
		}
		return &Hover{Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: b.String()}, Range: &r}
	}

	word, r := doc.GetWordAtPosition(params.Position)
	if word == "" {
		return nil
	}
	sym, ok := idx.lookup(word)
	if !ok {
		return nil
	}
	return &Hover{
		Contents: MarkupContent{
			Kind:  MarkupKindMarkdown,
			Value: fmt.Sprintf("`%s` -> `%s`\n\nfrom `<%s>`", sym.Name, sym.Location, sym.Header),
		},
		Range: &r,
	}
}

// getDefinition resolves a function name to the #include that provided it.
func (s *Server) getDefinition(params DefinitionParams) *Location {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	word, _ := doc.GetWordAtPosition(params.Position)
	if word == "" {
		return nil
	}
	sym, ok := buildIndex(doc.Content, s.table).lookup(word)
	if !ok {
		return nil
	}
	return &Location{
		URI: doc.URI,
		Range: Range{
			Start: doc.OffsetToPosition(sym.Include.Hash.Offset),
			End:   doc.OffsetToPosition(sym.Include.End),
		},
	}
}

// getFormatting rewrites the document in canonical layout. Sources that do
// not parse are left alone.
func (s *Server) getFormatting(params DocumentFormattingParams) []TextEdit {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return []TextEdit{}
	}
	a := s.analyze(doc)
	if a.AST == nil {
		return []TextEdit{}
	}

	indent := s.indent
	if params.Options.InsertSpaces && params.Options.TabSize > 0 {
		indent = int(params.Options.TabSize)
	}
	formatted := format.Source(a.AST, format.WithIndent(indent))
	if formatted == doc.Content {
		return []TextEdit{}
	}
	return []TextEdit{{Range: doc.FullRange(), NewText: formatted}}
}
