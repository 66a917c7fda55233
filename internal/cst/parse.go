package cst

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// nativeExtensions lists extensions that mark a module as an opaque binary
// with no parseable source.
var nativeExtensions = map[string]bool{
	".so":  true,
	".pyd": true,
	".dll": true,
}

// stubExtension marks a declaration-only stub file.
const stubExtension = ".pyi"

// Parse loads source and produces a CST. Native-extension files (detected
// by extension) short-circuit to an opaque tree with Root == nil, matching
// §4.1's "Tree = ⊥" contract.
func Parse(source []byte, path string) (*Tree, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if nativeExtensions[ext] {
		return &Tree{Path: path, Source: source, Opaque: true}, nil
	}

	if !utf8.Valid(source) {
		return nil, &ParseError{Kind: ParseErrorEncoding, Path: path}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		parser.Close()
		return nil, &ParseError{Kind: ParseErrorSyntax, Path: path, Err: err}
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		parser.Close()
		return nil, &ParseError{Kind: ParseErrorSyntax, Path: path, Err: fmt.Errorf("syntax error near byte %d", firstErrorOffset(root))}
	}

	return &Tree{
		Path:   path,
		Source: source,
		Root:   root,
		close: func() {
			tree.Close()
			parser.Close()
		},
	}, nil
}

// KindOf classifies a resolved file by its path and basename.
func KindOf(path string) Kind {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case nativeExtensions[ext]:
		return KindNativeExtension
	case ext == stubExtension:
		return KindStub
	case base == "__init__.py":
		return KindPackageInit
	default:
		return KindRegular
	}
}

func firstErrorOffset(n *sitter.Node) uint32 {
	if n.IsError() || n.IsMissing() {
		return n.StartByte()
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if off := firstErrorOffset(n.Child(i)); off != 0 {
			return off
		}
	}
	return n.StartByte()
}
