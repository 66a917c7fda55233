package prune

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
)

// Result is the outcome of pruning a single module's tree.
type Result struct {
	// Source is the module's source after every dead statement's edit has
	// been applied.
	Source []byte

	// Empty reports whether the module retained zero top-level statements,
	// the signal the caller uses to decide whether the file itself should
	// be deleted from disk (§4.7).
	Empty bool

	// Removed counts the top-level and nested statements deleted outright
	// (a dead def/class/assignment/import), not the from-import names
	// trimmed from an otherwise-surviving statement.
	Removed int
}

// Module prunes tree against stmts (its own extracted top-level statements,
// in the same order refcount.ExtractModule produced them) and idx (the
// final whole-program ReferenceIndex), returning the rewritten source.
func Module(tree *cst.Tree, stmts []*core.TopLevelStatement, idx *core.ReferenceIndex) Result {
	var edits []cst.Edit
	kept, removed := pruneStatements(stmts, tree.Source, idx, &edits)
	return Result{Source: cst.ApplyEdits(tree.Source, edits), Empty: kept == 0, Removed: removed}
}

// pruneStatements walks one statement list (a module body, or a class/
// function's Nested defs) and returns how many of them survive, plus how
// many were deleted outright (including in nested bodies).
func pruneStatements(stmts []*core.TopLevelStatement, source []byte, idx *core.ReferenceIndex, edits *[]cst.Edit) (kept, removed int) {
	for _, stmt := range stmts {
		switch stmt.Type {
		case core.StatementTypeFunctionDef, core.StatementTypeClassDef:
			if idx.AnyReferenced(stmt.DefinedFQNs) {
				kept++
				// Still prune unreferenced nested defs/methods inside a
				// live def; class and function bodies are not pruned
				// beyond this (§4.7).
				_, nestedRemoved := pruneStatements(stmt.Nested, source, idx, edits)
				removed += nestedRemoved
			} else {
				*edits = append(*edits, deleteNode(source, stmt.Node))
				removed++
			}

		case core.StatementTypeAssignment:
			if idx.AnyReferenced(stmt.DefinedFQNs) {
				kept++
			} else {
				*edits = append(*edits, deleteNode(source, stmt.Node))
				removed++
			}

		case core.StatementTypeImport:
			if pruneImport(stmt, source, idx, edits) {
				kept++
			} else {
				removed++
			}

		default:
			// Expression statements, the __main__ guard, and module/class
			// level control flow all run unconditionally; only their
			// nested defs are prunable.
			kept++
			_, nestedRemoved := pruneStatements(stmt.Nested, source, idx, edits)
			removed += nestedRemoved
		}
	}
	return kept, removed
}

// pruneImport dispatches to the import_statement/import_from_statement
// handling and reports whether the statement (in original or filtered form)
// survives.
func pruneImport(stmt *core.TopLevelStatement, source []byte, idx *core.ReferenceIndex, edits *[]cst.Edit) bool {
	if stmt.Node == nil {
		return true
	}
	switch stmt.Node.Type() {
	case "import_statement":
		return pruneImportStatement(stmt, source, idx, edits)
	case "import_from_statement":
		return pruneImportFromStatement(stmt, source, idx, edits)
	}
	return true
}

// pruneImportStatement deletes a plain `import X [as Y]` statement when its
// bound name is never referenced, consulting the package-prefix backfill
// (a bare module name M counts as referenced when some M.X is, since a
// package itself rarely appears as its own FQN in the index).
func pruneImportStatement(stmt *core.TopLevelStatement, source []byte, idx *core.ReferenceIndex, edits *[]cst.Edit) bool {
	for _, fqn := range stmt.ImportedNames {
		if isImportTargetReferenced(fqn, idx) {
			return true
		}
	}
	*edits = append(*edits, deleteNode(source, stmt.Node))
	return false
}

// pruneImportFromStatement filters `from P import a, b, c` down to the
// names whose source FQN is referenced, deleting the whole statement if
// none survive. Star imports are never deleted (over-approximation, §4.7).
func pruneImportFromStatement(stmt *core.TopLevelStatement, source []byte, idx *core.ReferenceIndex, edits *[]cst.Edit) bool {
	node := stmt.Node
	moduleNameNode := node.ChildByFieldName("module_name")

	type namedImport struct {
		node  *sitter.Node
		local string
	}
	var names []namedImport
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if moduleNameNode != nil && sameSpan(child, moduleNameNode) {
			continue
		}
		if child.Type() == "wildcard_import" {
			return true
		}
		local := localNameOf(child, source)
		if local == "" {
			continue
		}
		names = append(names, namedImport{child, local})
	}
	if len(names) == 0 {
		return true
	}

	var kept []string
	for _, n := range names {
		fqn, ok := stmt.ImportedNames[n.local]
		if !ok || isImportTargetReferenced(fqn, idx) {
			kept = append(kept, n.node.Content(source))
		}
	}

	if len(kept) == 0 {
		*edits = append(*edits, deleteNode(source, node))
		return false
	}
	if len(kept) == len(names) {
		return true
	}

	first, last := names[0].node, names[len(names)-1].node
	*edits = append(*edits, cst.Edit{
		StartByte: first.StartByte(),
		EndByte:   last.EndByte(),
		Replace:   strings.Join(kept, ", "),
	})
	return true
}

// isImportTargetReferenced reports whether fqn itself is referenced, or (the
// package-prefix backfill) some fqn.X is.
func isImportTargetReferenced(fqn string, idx *core.ReferenceIndex) bool {
	return idx.IsReferenced(fqn) || idx.HasReferencedMember(fqn)
}

func sameSpan(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func localNameOf(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "aliased_import":
		if alias := node.ChildByFieldName("alias"); alias != nil {
			return alias.Content(source)
		}
		return ""
	case "dotted_name":
		text := node.Content(source)
		if idx := strings.Index(text, "."); idx != -1 {
			return text[:idx]
		}
		return text
	case "identifier":
		return node.Content(source)
	}
	return ""
}

// deleteNode produces an edit erasing node's byte range, consuming one
// trailing newline so pruning doesn't leave a blank line behind.
func deleteNode(source []byte, node *sitter.Node) cst.Edit {
	start, end := node.StartByte(), node.EndByte()
	if end < uint32(len(source)) && source[end] == '\n' {
		end++
	}
	return cst.Edit{StartByte: start, EndByte: end, Replace: ""}
}
