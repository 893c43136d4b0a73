package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapc/pkg/token"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/hello.c"
	content := "#include <stdio.h>\n"

	store.Open(uri, content, 1)

	doc := store.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, uri, doc.URI)
	assert.Equal(t, content, doc.Content)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, 1, store.Len())

	store.Close(uri)
	assert.Nil(t, store.Get(uri))
	assert.Equal(t, 0, store.Len())
}

func TestDocumentStore_Update(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/hello.c"
	old := store.Open(uri, "int main() {}", 1)
	store.Update(uri, "int main(void) {}", 2)

	doc := store.Get(uri)
	assert.Equal(t, "int main(void) {}", doc.Content)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "int main() {}", old.Content, "earlier snapshots are not mutated")

	store.Update("file:///test/new.c", "x", 1)
	assert.NotNil(t, store.Get("file:///test/new.c"), "update opens unknown documents")
}

func TestComputeLineOffsets(t *testing.T) {
	tests := []struct {
		content  string
		expected []int
	}{
		{"", []int{0}},
		{"abc", []int{0}},
		{"a\nb", []int{0, 2}},
		{"a\nb\nc", []int{0, 2, 4}},
		{"\n\n\n", []int{0, 1, 2, 3}},
		{"line1\nline2\nline3", []int{0, 6, 12}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, computeLineOffsets(tt.content), "content %q", tt.content)
	}
}

func TestDocument_PositionToOffset(t *testing.T) {
	doc := newDocument("file:///t.c", "line0\nline1\nline2", 1)

	tests := []struct {
		pos      Position
		expected int
	}{
		{Position{Line: 0, Character: 0}, 0},
		{Position{Line: 0, Character: 3}, 3},
		{Position{Line: 0, Character: 5}, 5},
		{Position{Line: 1, Character: 0}, 6},
		{Position{Line: 1, Character: 4}, 10},
		{Position{Line: 2, Character: 5}, 17},
		// Edge cases
		{Position{Line: 100, Character: 0}, 17}, // line beyond document
		{Position{Line: 0, Character: 100}, 5},  // character beyond line clamps to its end
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, doc.PositionToOffset(tt.pos), "PositionToOffset(%v)", tt.pos)
	}
}

func TestDocument_OffsetToPosition(t *testing.T) {
	doc := newDocument("file:///t.c", "line0\nline1\nline2", 1)

	tests := []struct {
		offset   int
		expected Position
	}{
		{0, Position{Line: 0, Character: 0}},
		{5, Position{Line: 0, Character: 5}},
		{6, Position{Line: 1, Character: 0}},
		{10, Position{Line: 1, Character: 4}},
		{12, Position{Line: 2, Character: 0}},
		{17, Position{Line: 2, Character: 5}},
		// Edge cases
		{-1, Position{Line: 0, Character: 0}},
		{100, Position{Line: 2, Character: 5}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, doc.OffsetToPosition(tt.offset), "OffsetToPosition(%d)", tt.offset)
	}
}

func TestDocument_UTF16Columns(t *testing.T) {
	// "é" is two bytes and one UTF-16 unit; "😀" is four bytes and two units.
	doc := newDocument("file:///t.c", "é😀x", 1)

	assert.Equal(t, Position{Line: 0, Character: 1}, doc.OffsetToPosition(2))
	assert.Equal(t, Position{Line: 0, Character: 3}, doc.OffsetToPosition(6))
	assert.Equal(t, 6, doc.PositionToOffset(Position{Line: 0, Character: 3}))
	assert.Equal(t, 2, doc.PositionToOffset(Position{Line: 0, Character: 1}))
}

func TestDocument_GetLine(t *testing.T) {
	doc := newDocument("file:///t.c", "line0\nline1\nline2", 1)

	tests := []struct {
		line     int
		expected string
	}{
		{0, "line0"},
		{1, "line1"},
		{2, "line2"},
		{-1, ""},
		{100, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, doc.GetLine(tt.line), "GetLine(%d)", tt.line)
	}
}

func TestDocument_GetWordAtPosition(t *testing.T) {
	doc := newDocument("file:///t.c", `printf("hi") return 0`, 1)

	tests := []struct {
		pos          Position
		expectedWord string
	}{
		{Position{Line: 0, Character: 0}, "printf"},
		{Position{Line: 0, Character: 3}, "printf"},
		{Position{Line: 0, Character: 6}, "printf"},
		{Position{Line: 0, Character: 9}, "hi"},
		{Position{Line: 0, Character: 14}, "return"},
		{Position{Line: 0, Character: 20}, ""},
	}

	for _, tt := range tests {
		word, _ := doc.GetWordAtPosition(tt.pos)
		assert.Equal(t, tt.expectedWord, word, "GetWordAtPosition(%v)", tt.pos)
	}

	_, r := doc.GetWordAtPosition(Position{Line: 0, Character: 2})
	assert.Equal(t, Range{Start: Position{Character: 0}, End: Position{Character: 6}}, r)
}

func TestDocument_GetTextBefore(t *testing.T) {
	doc := newDocument("file:///t.c", "#include <stdio.h>", 1)

	assert.Equal(t, "", doc.GetTextBefore(Position{Line: 0, Character: 0}))
	assert.Equal(t, "#include", doc.GetTextBefore(Position{Line: 0, Character: 8}))
	assert.Equal(t, "#include <", doc.GetTextBefore(Position{Line: 0, Character: 10}))
}

func TestDocument_TokenRange(t *testing.T) {
	doc := newDocument("file:///t.c", "int main() {\n  foo();\n}", 1)

	// identifier
	r := doc.TokenRange(token.Position{Line: 2, Column: 3, Offset: 15})
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 5}}, r)

	// punctuation covers one character
	r = doc.TokenRange(token.Position{Line: 1, Column: 9, Offset: 8})
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 8}, End: Position{Line: 0, Character: 9}}, r)

	// end of input is an empty range
	end := len(doc.Content)
	r = doc.TokenRange(token.Position{Line: 3, Column: 2, Offset: end})
	assert.Equal(t, r.Start, r.End)
}

func TestDocument_FullRange(t *testing.T) {
	doc := newDocument("file:///t.c", "a\nbc", 1)
	assert.Equal(t, Range{End: Position{Line: 1, Character: 2}}, doc.FullRange())
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"file:///Users/test/hello.c", "/Users/test/hello.c"},
		{"file:///home/user/my%20file.c", "/home/user/my file.c"},
		{"/already/a/path.c", "/already/a/path.c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, URIToPath(tt.uri), "URIToPath(%q)", tt.uri)
	}
}

func TestPathToURI(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/Users/test/hello.c", "file:///Users/test/hello.c"},
		{"/home/user/my file.c", "file:///home/user/my%20file.c"},
		{"file:///already/uri.c", "file:///already/uri.c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PathToURI(tt.path), "PathToURI(%q)", tt.path)
	}
}

func TestIsWordChar(t *testing.T) {
	for _, c := range "abcxyzABCXYZ" {
		assert.True(t, isWordChar(byte(c)), "isWordChar(%q)", c)
	}
	for _, c := range " \t\n_0123456789#<>();\"." {
		assert.False(t, isWordChar(byte(c)), "isWordChar(%q)", c)
	}
}
