package resolve

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// FQNsOf computes the set of fully qualified names node defines or refers
// to, per §4.2. It handles the three node shapes the spec calls out:
// a bare identifier (NameRef) resolves through the scope chain; an
// attribute expression resolves its head identifier and appends the
// trailing dotted path textually (no type inference is performed, per
// the Non-goals); a def/class header returns the FQN it binds rather than
// a reference.
func FQNsOf(node *sitter.Node, source []byte, scope *Scope) []string {
	if node == nil {
		return nil
	}

	switch node.Type() {
	case "identifier":
		if fqn, ok := scope.Resolve(node.Content(source)); ok && fqn != "" {
			return []string{fqn}
		}
		return nil

	case "attribute":
		if head, trail, ok := splitAttribute(node, source); ok {
			if fqn, ok := scope.Resolve(head); ok && fqn != "" {
				return []string{fqn + "." + trail}
			}
		}
		return nil

	case "function_definition", "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		if fqn, ok := scope.Resolve(nameNode.Content(source)); ok && fqn != "" {
			return []string{fqn}
		}
		return nil

	default:
		return nil
	}
}

// ResolveDottedHead resolves the leftmost identifier of a dotted reference
// (a bare name, or the head of an attribute chain) against scope, returning
// the FQN it was imported as and the unresolved trailing path. Used by the
// import rewriter (§4.5 rule 5) to decide whether a reference traces back to
// a rewritten unaliased import in the same module's scope chain.
func ResolveDottedHead(node *sitter.Node, source []byte, scope *Scope) (head string, fqn string, trail string, ok bool) {
	switch node.Type() {
	case "identifier":
		name := node.Content(source)
		if target, bound := scope.Resolve(name); bound && target != "" {
			return name, target, "", true
		}
		return "", "", "", false
	case "attribute":
		h, t, split := splitAttribute(node, source)
		if !split {
			return "", "", "", false
		}
		if target, bound := scope.Resolve(h); bound && target != "" {
			return h, target, t, true
		}
		return "", "", "", false
	default:
		return "", "", "", false
	}
}

// splitAttribute walks an attribute node's object chain down to its
// leftmost identifier, returning that head name and the dotted trail of
// attribute accesses after it (e.g. "a.b.c" -> head "a", trail "b.c").
func splitAttribute(node *sitter.Node, source []byte) (head string, trail string, ok bool) {
	var parts []string
	cur := node
	for cur != nil && cur.Type() == "attribute" {
		attrNode := cur.ChildByFieldName("attribute")
		if attrNode == nil {
			return "", "", false
		}
		parts = append([]string{attrNode.Content(source)}, parts...)
		cur = cur.ChildByFieldName("object")
	}
	if cur == nil || cur.Type() != "identifier" {
		return "", "", false
	}
	return cur.Content(source), strings.Join(parts, "."), true
}
