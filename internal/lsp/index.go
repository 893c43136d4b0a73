package lsp

import (
	"strings"

	"github.com/leapstack-labs/leapc/pkg/capability"
	"github.com/leapstack-labs/leapc/pkg/parser"
	"github.com/leapstack-labs/leapc/pkg/token"
)

// includeRef is one #include directive found in the token stream.
type includeRef struct {
	Path   string
	System bool
	Hash   token.Position // position of '#'
	// PathStart and PathEnd are byte offsets of the path text, delimiters excluded.
	PathStart int
	PathEnd   int
	// End is the byte offset just past the directive.
	End int
}

// symbol is a function made visible by an include, with the include that provided it.
type symbol struct {
	Name     string
	Location string
	Header   string
	Include  includeRef
}

// documentIndex is what completion, hover and definition know about a document.
// It is built from tokens alone so it survives sources that do not parse.
type documentIndex struct {
	tokens   []token.Token
	includes []includeRef
	symbols  []symbol
}

func buildIndex(src string, table *capability.Table) *documentIndex {
	tokens, _ := parser.Tokenize(src)
	idx := &documentIndex{tokens: tokens, includes: scanIncludes(tokens)}

	for _, inc := range idx.includes {
		h, ok := table.Lookup(inc.Path)
		if !ok {
			continue
		}
		for _, fn := range h.Functions {
			idx.symbols = append(idx.symbols, symbol{
				Name:     fn,
				Location: h.Location(fn),
				Header:   h.Name,
				Include:  inc,
			})
		}
	}
	return idx
}

// scanIncludes finds complete #include directives. Malformed ones are skipped;
// the parser reports them.
func scanIncludes(tokens []token.Token) []includeRef {
	var refs []includeRef
	for i := 0; i+2 < len(tokens); i++ {
		if tokens[i].Type != token.HASH || tokens[i+1].Type != token.IDENT || tokens[i+1].Literal != "include" {
			continue
		}

		open := tokens[i+2]
		switch open.Type {
		case token.STRING:
			// Offset points at the opening quote.
			refs = append(refs, includeRef{
				Path:      open.Literal,
				Hash:      tokens[i].Pos,
				PathStart: open.Pos.Offset + 1,
				PathEnd:   open.Pos.Offset + 1 + len(open.Literal),
				End:       open.Pos.Offset + len(open.Literal) + 2,
			})
			i += 2
		case token.LT:
			var path strings.Builder
			j := i + 3
			for ; j < len(tokens); j++ {
				t := tokens[j]
				if t.Type != token.IDENT && t.Type != token.SLASH && t.Type != token.DOT {
					break
				}
				path.WriteString(t.Literal)
			}
			if j >= len(tokens) || tokens[j].Type != token.GT {
				continue
			}
			refs = append(refs, includeRef{
				Path:      path.String(),
				System:    true,
				Hash:      tokens[i].Pos,
				PathStart: open.Pos.Offset + 1,
				PathEnd:   tokens[j].Pos.Offset,
				End:       tokens[j].Pos.Offset + 1,
			})
			i = j
		}
	}
	return refs
}

// lookup returns the first symbol named name, matching the order the
// interpreter appends them in.
func (idx *documentIndex) lookup(name string) (symbol, bool) {
	for _, s := range idx.symbols {
		if s.Name == name {
			return s, true
		}
	}
	return symbol{}, false
}

// includeAt returns the include whose path contains offset.
func (idx *documentIndex) includeAt(offset int) (includeRef, bool) {
	for _, inc := range idx.includes {
		if offset >= inc.PathStart && offset <= inc.PathEnd {
			return inc, true
		}
	}
	return includeRef{}, false
}

// uniqueSymbols returns symbols with duplicates from repeated includes removed.
func (idx *documentIndex) uniqueSymbols() []symbol {
	seen := make(map[string]bool, len(idx.symbols))
	out := make([]symbol, 0, len(idx.symbols))
	for _, s := range idx.symbols {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}
	return out
}
