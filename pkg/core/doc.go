// Package core defines the shared language of the leapc toolchain.
//
// This package contains:
//   - The AST node variants produced by the parser (Include, FuncDecl, ...)
//   - The AST sequence and its index-based Cursor
//   - Diagnostics shared by the lexer, parser and interpreter
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
