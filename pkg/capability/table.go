// Package capability describes which headers the interpreter recognizes
// and which functions each of them exports.
//
// A Table is immutable once built. The interpreter receives one at
// construction, so supported headers can grow without touching
// interpreter logic.
package capability

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultNamespace is the logical namespace of the built-in C library headers.
const DefaultNamespace = "libc"

// Header is a recognized header and the functions it exports.
type Header struct {
	Name      string
	Namespace string
	Functions []string
}

// Location returns the resolved location of fn within the header's namespace.
func (h Header) Location(fn string) string {
	return h.Namespace + "/" + fn
}

// Table maps header names to their exports.
type Table struct {
	headers map[string]Header
}

// Default returns the built-in table: stdio.h exporting printf.
func Default() *Table {
	t, _ := NewBuilder().
		Add("stdio.h", DefaultNamespace, "printf").
		Build()
	return t
}

// Empty returns a table that recognizes no headers.
func Empty() *Table {
	return &Table{headers: map[string]Header{}}
}

// Lookup returns the header registered under name.
func (t *Table) Lookup(name string) (Header, bool) {
	if t == nil {
		return Header{}, false
	}
	h, ok := t.headers[name]
	if !ok {
		return Header{}, false
	}
	h.Functions = append([]string(nil), h.Functions...)
	return h, true
}

// Has reports whether name is a recognized header.
func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Len returns the number of recognized headers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.headers)
}

// Headers returns every header sorted by name.
func (t *Table) Headers() []Header {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.headers))
	for name := range t.headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Header, 0, len(names))
	for _, name := range names {
		h, _ := t.Lookup(name)
		out = append(out, h)
	}
	return out
}

// Builder assembles a Table. The zero value is not usable; call NewBuilder.
type Builder struct {
	headers map[string]Header
	errs    []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{headers: make(map[string]Header)}
}

// From copies every header of t into the builder.
func (b *Builder) From(t *Table) *Builder {
	for _, h := range t.Headers() {
		b.headers[h.Name] = h
	}
	return b
}

// Add registers a header, replacing any previous header of the same name.
// Duplicate function names within one header are collapsed, keeping the first.
func (b *Builder) Add(name, namespace string, functions ...string) *Builder {
	name = strings.TrimSpace(name)
	namespace = strings.TrimSpace(namespace)

	switch {
	case name == "":
		b.errs = append(b.errs, "header name is empty")
		return b
	case namespace == "":
		b.errs = append(b.errs, fmt.Sprintf("header %q has no namespace", name))
		return b
	}

	seen := make(map[string]bool, len(functions))
	fns := make([]string, 0, len(functions))
	for _, fn := range functions {
		fn = strings.TrimSpace(fn)
		if fn == "" {
			b.errs = append(b.errs, fmt.Sprintf("header %q exports an empty function name", name))
			continue
		}
		if seen[fn] {
			continue
		}
		seen[fn] = true
		fns = append(fns, fn)
	}

	b.headers[name] = Header{Name: name, Namespace: namespace, Functions: fns}
	return b
}

// Remove drops a header from the builder.
func (b *Builder) Remove(name string) *Builder {
	delete(b.headers, name)
	return b
}

// Build returns the immutable table, or an error listing every invalid entry.
func (b *Builder) Build() (*Table, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid capability table: %s", strings.Join(b.errs, "; "))
	}
	headers := make(map[string]Header, len(b.headers))
	for name, h := range b.headers {
		h.Functions = append([]string(nil), h.Functions...)
		headers[name] = h
	}
	return &Table{headers: headers}, nil
}
