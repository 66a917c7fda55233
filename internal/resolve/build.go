package resolve

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kmitra/pyshake/internal/core"
)

// BuildModuleScope constructs the scope tree for a module's root node. The
// global scope is seeded from bindings (so free names referring to imported
// symbols resolve immediately) and populated with every top-level def/class/
// assignment found while walking the tree; function and class bodies get
// their own nested scope, and comprehensions get a Comprehension scope for
// their loop variables, per §4.2.
func BuildModuleScope(root *sitter.Node, source []byte, moduleFQN string, bindings *core.ImportBindings) *Scope {
	global := NewScope(Global, nil, root.StartByte(), root.EndByte())
	if bindings != nil {
		for local, fqn := range bindings.Bindings {
			global.Bind(local, fqn)
		}
	}
	walkBody(root, source, global, moduleFQN)
	return global
}

// walkBody walks the direct and control-flow-nested statements of a block,
// binding definitions into scope and recursing into nested function/class
// bodies and comprehensions with their own scopes. prefix is the dotted FQN
// path of the enclosing def (moduleFQN, moduleFQN.Class, ...).
func walkBody(block *sitter.Node, source []byte, scope *Scope, prefix string) {
	if block == nil {
		return
	}
	for i := 0; i < int(block.ChildCount()); i++ {
		walkStatement(block.Child(i), source, scope, prefix)
	}
}

func walkStatement(node *sitter.Node, source []byte, scope *Scope, prefix string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Content(source)
		fqn := joinFQN(prefix, name)
		scope.Bind(name, fqn)

		fnScope := NewScope(Function, scope, node.StartByte(), node.EndByte())
		walkBody(node.ChildByFieldName("body"), source, fnScope, fqn)

	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Content(source)
		fqn := joinFQN(prefix, name)
		scope.Bind(name, fqn)

		classScope := NewScope(Class, scope, node.StartByte(), node.EndByte())
		walkBody(node.ChildByFieldName("body"), source, classScope, fqn)

	case "decorated_definition":
		// The decorator(s) precede the def/class; bind the wrapped definition
		// under the same scope so the decorated name resolves normally.
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if t := child.Type(); t == "function_definition" || t == "class_definition" {
				walkStatement(child, source, scope, prefix)
			}
		}

	case "assignment":
		bindAssignmentTargets(node.ChildByFieldName("left"), source, scope, prefix)

	case "for_statement":
		bindLoopTarget(node.ChildByFieldName("left"), source, scope)
		walkBody(node.ChildByFieldName("body"), source, scope, prefix)
		walkBody(node.ChildByFieldName("alternative"), source, scope, prefix)

	case "with_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "with_item" {
				if asNode := child.ChildByFieldName("alias"); asNode != nil {
					bindLoopTarget(asNode, source, scope)
				}
			}
		}
		walkBody(node.ChildByFieldName("body"), source, scope, prefix)

	case "if_statement", "while_statement", "try_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Type() == "block" {
				walkBody(child, source, scope, prefix)
			} else if child.Type() == "except_clause" || child.Type() == "elif_clause" || child.Type() == "else_clause" || child.Type() == "finally_clause" {
				walkStatement(child, source, scope, prefix)
			}
		}

	case "block":
		walkBody(node, source, scope, prefix)

	case "elif_clause", "else_clause", "finally_clause", "except_clause", "except_group_clause":
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "block" {
				walkBody(child, source, scope, prefix)
			}
		}

	default:
		// Statements with no scoping effect of their own (expression
		// statements, returns, imports, ...) are left for fqns_of to
		// inspect directly; nothing to bind here.
	}
}

// bindAssignmentTargets binds simple-name and tuple-unpacking assignment
// targets. At global/class scope these become addressable module/class
// members; at function scope they shadow outer bindings with an empty FQN
// so Resolve still reports "bound here" without claiming an import origin.
func bindAssignmentTargets(left *sitter.Node, source []byte, scope *Scope, prefix string) {
	if left == nil {
		return
	}
	switch left.Type() {
	case "identifier":
		name := left.Content(source)
		if scope.Kind == Function || scope.Kind == Comprehension {
			scope.Bind(name, "")
		} else {
			scope.Bind(name, joinFQN(prefix, name))
		}
	case "pattern_list", "tuple_pattern":
		for i := 0; i < int(left.NamedChildCount()); i++ {
			bindAssignmentTargets(left.NamedChild(i), source, scope, prefix)
		}
	}
}

func bindLoopTarget(node *sitter.Node, source []byte, scope *Scope) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier":
		scope.Bind(node.Content(source), "")
	case "pattern_list", "tuple_pattern":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			bindLoopTarget(node.NamedChild(i), source, scope)
		}
	}
}

func joinFQN(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
