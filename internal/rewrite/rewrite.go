// Package rewrite is the import rewriter (C5). It transforms import
// statements and the dotted-name references they introduce so that every
// non-first-party, non-stdlib reference in a first-party module is
// expressible as <top>.<vendor>.<original-dotted-path>, per §4.5.
package rewrite

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/modulespec"
	"github.com/kmitra/pyshake/internal/resolve"
)

// ClassifyFunc reports a dotted module spec's origin.
type ClassifyFunc func(spec string) modulespec.Origin

// Rewriter applies the vendor-prefixing transformation described in §4.5.
type Rewriter struct {
	TopPackage string
	VendorName string
	Classify   ClassifyFunc
}

// New builds a Rewriter for the given top package and vendor sub-namespace.
func New(topPackage, vendorName string, classify ClassifyFunc) *Rewriter {
	return &Rewriter{TopPackage: topPackage, VendorName: vendorName, Classify: classify}
}

// head tracks an unaliased, vendor-rewritten import's original module head
// (e.g. "requests") so rule 2/5/6 can find and rewrite later references to
// it within the same module's scope chain.
type head struct {
	original string // the original dotted head, e.g. "requests"
	replaced string // the vendor-prefixed replacement, e.g. "app._vendor.requests"
}

// Rewrite applies every §4.5 transformation to tree and returns the
// rewritten source bytes. bindings is the ImportBindings already computed
// for this file by the file collector (C4), reused here rather than
// re-deriving import resolution.
func (r *Rewriter) Rewrite(tree *cst.Tree, bindings *core.ImportBindings) []byte {
	scope := resolve.BuildModuleScope(tree.Root, tree.Source, "", bindings)

	var edits []cst.Edit
	var heads []head

	r.walkImports(tree.Root, tree.Source, bindings, &edits, &heads)
	if len(heads) > 0 {
		r.walkReferences(tree.Root, tree.Source, scope, heads, &edits)
	}

	return cst.ApplyEdits(tree.Source, edits)
}

func (r *Rewriter) vendorPrefix(dotted string) string {
	return r.TopPackage + "." + r.VendorName + "." + dotted
}

// walkImports finds import_statement and import_from_statement nodes and
// emits the rule 1/2/3/4 edits. It does not recurse into a node once
// handled, matching the file collector's import traversal.
func (r *Rewriter) walkImports(node *sitter.Node, source []byte, bindings *core.ImportBindings, edits *[]cst.Edit, heads *[]head) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "import_statement":
		r.rewriteImportStatement(node, source, edits, heads)
		return
	case "import_from_statement":
		r.rewriteImportFromStatement(node, source, bindings, edits)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		r.walkImports(node.Child(i), source, bindings, edits, heads)
	}
}

// rewriteImportStatement handles rules 1 and 2: `import P` and
// `import P as Q`.
func (r *Rewriter) rewriteImportStatement(node *sitter.Node, source []byte, edits *[]cst.Edit, heads *[]head) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	switch nameNode.Type() {
	case "aliased_import":
		moduleNode := nameNode.ChildByFieldName("name")
		if moduleNode == nil {
			return
		}
		moduleName := moduleNode.Content(source)
		if r.Classify(moduleName) != modulespec.ThirdParty {
			return
		}
		*edits = append(*edits, cst.Edit{StartByte: moduleNode.StartByte(), EndByte: moduleNode.EndByte(), Replace: r.vendorPrefix(moduleName)})
		// Rule 1: the alias itself is never rewritten elsewhere.

	case "dotted_name":
		moduleName := nameNode.Content(source)
		if r.Classify(moduleName) != modulespec.ThirdParty {
			return
		}
		replacement := r.vendorPrefix(moduleName)
		*edits = append(*edits, cst.Edit{StartByte: nameNode.StartByte(), EndByte: nameNode.EndByte(), Replace: replacement})

		// `import a.b.c` only binds the name "a" in the importing module's
		// namespace; later references are to that bound head followed by
		// attribute access, so rule 5 must match and replace just "a", not
		// the full dotted path recorded in this edit.
		head1 := moduleName
		if idx := strings.Index(moduleName, "."); idx != -1 {
			head1 = moduleName[:idx]
		}
		*heads = append(*heads, head{original: head1, replaced: r.vendorPrefix(head1)})
	}
}

// rewriteImportFromStatement handles rules 3 and 4: `from P import X [as Y]`
// and the never-rewritten relative `from . import X`.
func (r *Rewriter) rewriteImportFromStatement(node *sitter.Node, source []byte, bindings *core.ImportBindings, edits *[]cst.Edit) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == "relative_import" {
			return // rule 4: relative imports are purely first-party
		}
	}

	moduleNameNode := node.ChildByFieldName("module_name")
	if moduleNameNode == nil {
		return
	}

	resolvedModule := resolvedModuleOf(node, source, bindings, moduleNameNode)
	if r.Classify(resolvedModule) != modulespec.ThirdParty {
		return
	}

	*edits = append(*edits, cst.Edit{
		StartByte: moduleNameNode.StartByte(),
		EndByte:   moduleNameNode.EndByte(),
		Replace:   r.vendorPrefix(moduleNameNode.Content(source)),
	})
}

// resolvedModuleOf recovers the normalized module FQN a from-import's names
// were bound to, by consulting bindings (already normalized by the
// collector) rather than re-deriving project-relative resolution here.
func resolvedModuleOf(node *sitter.Node, source []byte, bindings *core.ImportBindings, moduleNameNode *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.StartByte() == moduleNameNode.StartByte() && child.EndByte() == moduleNameNode.EndByte() {
			continue
		}
		var alias string
		switch child.Type() {
		case "aliased_import":
			if aliasNode := child.ChildByFieldName("alias"); aliasNode != nil {
				alias = aliasNode.Content(source)
			}
		case "dotted_name", "identifier":
			alias = child.Content(source)
		default:
			continue
		}
		if alias == "" {
			continue
		}
		if fqn, ok := bindings.Resolve(alias); ok {
			if idx := strings.LastIndex(fqn, "."); idx != -1 {
				return fqn[:idx]
			}
		}
	}
	return moduleNameNode.Content(source)
}
