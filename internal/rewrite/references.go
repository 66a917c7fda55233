package rewrite

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/resolve"
)

// annotationFieldNames are the CST field names under which a string literal
// sits in type-annotation position (§4.5 rule 6's heuristic: only operate on
// strings whose containing syntactic position is an annotation).
var annotationFieldNames = map[string]bool{
	"return_type": true,
	"type":        true,
}

// walkReferences implements rule 5 (bare/dotted references whose head
// matches a rewritten unaliased import) and rule 6 (annotation string
// literals that textually contain a rewritten head). It does not descend
// into import statements, which walkImports has already handled.
func (r *Rewriter) walkReferences(node *sitter.Node, source []byte, scope *resolve.Scope, heads []head, edits *[]cst.Edit) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "import_statement", "import_from_statement":
		return

	case "identifier":
		rewriteReferenceHead(node, source, scope, heads, edits)
		return

	case "attribute":
		if headIdentifiedAndHandled(node, source, scope, heads, edits) {
			return
		}
		// An attribute chain headed by something other than a bare
		// identifier (e.g. a call's result) can't be a rewritten head
		// itself, but may still contain one deeper inside (e.g. foo().bar);
		// fall through to the generic child recursion below.

	case "string":
		if isAnnotationString(node) {
			rewriteAnnotationString(node, source, heads, edits)
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		r.walkReferences(node.Child(i), source, scope, heads, edits)
	}
}

// headIdentifiedAndHandled reports whether node's leftmost object is a plain
// identifier, i.e. this attribute chain is entirely a dotted-name reference
// (as opposed to e.g. foo().bar, whose inner call may still hold references
// worth visiting separately). It also performs the rule 5 rewrite as a side
// effect when the identifier resolves to a rewritten head.
func headIdentifiedAndHandled(node *sitter.Node, source []byte, scope *resolve.Scope, heads []head, edits *[]cst.Edit) bool {
	_, _, ok := headIdentifierOf(node, source)
	if !ok {
		return false
	}
	rewriteReferenceHead(node, source, scope, heads, edits)
	return true
}

// rewriteReferenceHead rewrites just the head identifier's byte range of a
// bare name or attribute chain when it resolves, via scope, to one of the
// rewritten heads (rule 5). The scope was built from bindings captured
// before rewriting, so a head's resolved FQN still equals its original
// (unrewritten) import target.
func rewriteReferenceHead(node *sitter.Node, source []byte, scope *resolve.Scope, heads []head, edits *[]cst.Edit) {
	headNode, originalHead, ok := headIdentifierOf(node, source)
	if !ok {
		return
	}
	innerScope := resolve.ScopeOf(scope, node)
	boundFQN, bound := innerScope.Resolve(originalHead)
	if !bound || boundFQN != originalHead {
		// Only an unaliased import binds a name to itself (the import
		// statement's own dotted_name is both the local name and its FQN).
		return
	}
	for _, h := range heads {
		if h.original == originalHead {
			*edits = append(*edits, cst.Edit{StartByte: headNode.StartByte(), EndByte: headNode.EndByte(), Replace: h.replaced})
			return
		}
	}
}

// headIdentifierOf returns the leftmost identifier node of a bare name or
// attribute chain, and its text.
func headIdentifierOf(node *sitter.Node, source []byte) (*sitter.Node, string, bool) {
	cur := node
	for cur != nil && cur.Type() == "attribute" {
		obj := cur.ChildByFieldName("object")
		if obj == nil {
			return nil, "", false
		}
		cur = obj
	}
	if cur == nil || cur.Type() != "identifier" {
		return nil, "", false
	}
	return cur, cur.Content(source), true
}

// isAnnotationString reports whether node sits directly in a type
// annotation position: a typed parameter's/assignment's "type" field, or a
// function definition's "return_type" field.
func isAnnotationString(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	for field := range annotationFieldNames {
		if fieldNode := parent.ChildByFieldName(field); fieldNode != nil &&
			fieldNode.StartByte() == node.StartByte() && fieldNode.EndByte() == node.EndByte() {
			return true
		}
	}
	return false
}

// rewriteAnnotationString rewrites a string annotation's text in place when
// it textually contains one of the rewritten heads as its leading dotted
// component (e.g. "typer.Typer" -> "app._vendor.typer.Typer").
func rewriteAnnotationString(node *sitter.Node, source []byte, heads []head, edits *[]cst.Edit) {
	raw := node.Content(source)
	if len(raw) < 2 {
		return
	}
	quote := raw[:1]
	inner := raw[1 : len(raw)-1]

	for _, h := range heads {
		if inner == h.original || hasDottedPrefix(inner, h.original) {
			rewritten := h.replaced + inner[len(h.original):]
			*edits = append(*edits, cst.Edit{
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
				Replace:   quote + rewritten + quote,
			})
			return
		}
	}
}

func hasDottedPrefix(s, prefix string) bool {
	return len(s) > len(prefix) && s[:len(prefix)] == prefix && s[len(prefix)] == '.'
}
