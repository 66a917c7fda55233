// Package cst is the parser adapter (C1). It wraps go-tree-sitter's Python
// grammar to produce concrete syntax trees that preserve whitespace and
// comments, and offers a byte-range edit mechanism so the rewriter (C5) and
// node remover (C7) can mutate source text without losing round-trip
// fidelity on the parts they don't touch.
package cst

import sitter "github.com/smacker/go-tree-sitter"

// Kind classifies a resolved module's on-disk representation.
type Kind int

const (
	// KindRegular is an ordinary source file.
	KindRegular Kind = iota
	// KindPackageInit is a package marker file (__init__.py).
	KindPackageInit
	// KindNativeExtension is an opaque binary extension module (.so/.pyd).
	KindNativeExtension
	// KindStub is a declaration-only stub file (.pyi).
	KindStub
)

// Tree is a parsed source file. For native extensions Root is nil and
// Opaque is true; callers must not attempt to query or edit such a tree.
type Tree struct {
	Path   string
	Source []byte
	Root   *sitter.Node
	Opaque bool

	close func()
}

// Close releases the underlying tree-sitter tree. Safe to call on an
// opaque tree (a no-op).
func (t *Tree) Close() {
	if t.close != nil {
		t.close()
		t.close = nil
	}
}

// ParseErrorKind distinguishes why parsing failed.
type ParseErrorKind int

const (
	// ParseErrorEncoding means the source bytes could not be decoded.
	ParseErrorEncoding ParseErrorKind = iota
	// ParseErrorSyntax means the parser could not produce a valid tree.
	ParseErrorSyntax
)

// ParseError reports a failure to parse a source file.
type ParseError struct {
	Kind ParseErrorKind
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	what := "syntax error"
	if e.Kind == ParseErrorEncoding {
		what = "encoding error"
	}
	if e.Err != nil {
		return "parse: " + what + " in " + e.Path + ": " + e.Err.Error()
	}
	return "parse: " + what + " in " + e.Path
}

func (e *ParseError) Unwrap() error { return e.Err }

// Edit is a single byte-range replacement against a tree's original source.
// StartByte and EndByte are half-open offsets into Tree.Source.
type Edit struct {
	StartByte uint32
	EndByte   uint32
	Replace   string
}
