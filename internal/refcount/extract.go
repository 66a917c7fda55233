package refcount

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/resolve"
)

// ExtractModule walks a module's root body into the core.TopLevelStatement
// list the fixpoint in fixpoint.go counts over. scope is the module's full
// scope tree from resolve.BuildModuleScope; bindings supplies the FQN each
// import statement's local names were bound to.
func ExtractModule(root *sitter.Node, source []byte, scope *resolve.Scope, bindings *core.ImportBindings) []*core.TopLevelStatement {
	return extractBody(root, source, scope, bindings)
}

func extractBody(block *sitter.Node, source []byte, scope *resolve.Scope, bindings *core.ImportBindings) []*core.TopLevelStatement {
	var stmts []*core.TopLevelStatement
	for i := 0; i < int(block.ChildCount()); i++ {
		if s := extractStatement(block.Child(i), source, scope, bindings); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func extractStatement(node *sitter.Node, source []byte, scope *resolve.Scope, bindings *core.ImportBindings) *core.TopLevelStatement {
	var s *core.TopLevelStatement
	switch node.Type() {
	case "decorated_definition":
		s = extractDecorated(node, source, scope)
	case "function_definition":
		s = extractDef(node, source, scope, core.StatementTypeFunctionDef, nil)
	case "class_definition":
		s = extractDef(node, source, scope, core.StatementTypeClassDef, nil)
	case "assignment":
		s = extractAssignment(node, source, scope)
	case "import_statement", "import_from_statement":
		s = extractImport(node, source, bindings)
	case "if_statement":
		if isMainGuard(node, source) {
			s = extractMainGuard(node, source, scope)
		} else {
			s = extractControlFlow(node, source, scope, core.StatementTypeIf)
		}
	case "for_statement":
		s = extractControlFlow(node, source, scope, core.StatementTypeFor)
	case "while_statement":
		s = extractControlFlow(node, source, scope, core.StatementTypeWhile)
	case "with_statement":
		s = extractControlFlow(node, source, scope, core.StatementTypeWith)
	case "try_statement":
		s = extractControlFlow(node, source, scope, core.StatementTypeTry)
	case "expression_statement":
		s = extractExpression(node, source, scope)
	default:
		return nil
	}
	if s != nil {
		s.Node = node
	}
	return s
}

// isMainGuard reports whether node is `if __name__ == "__main__":`.
func isMainGuard(node *sitter.Node, source []byte) bool {
	cond := node.ChildByFieldName("condition")
	if cond == nil || cond.Type() != "comparison_operator" {
		return false
	}
	text := strings.Join(strings.Fields(cond.Content(source)), " ")
	return text == `__name__ == "__main__"` || text == `__name__ == '__main__'`
}

func extractMainGuard(node *sitter.Node, source []byte, scope *resolve.Scope) *core.TopLevelStatement {
	return &core.TopLevelStatement{
		Type:     core.StatementTypeMainGuard,
		UsedFQNs: collectUsedFQNs(node, source, scope, true),
		Nested:   extractNestedDefsDeep(node, source, scope),
	}
}

func extractControlFlow(node *sitter.Node, source []byte, scope *resolve.Scope, stype core.StatementType) *core.TopLevelStatement {
	return &core.TopLevelStatement{
		Type:     stype,
		UsedFQNs: collectUsedFQNs(node, source, scope, true),
		Nested:   extractNestedDefsDeep(node, source, scope),
	}
}

func extractExpression(node *sitter.Node, source []byte, scope *resolve.Scope) *core.TopLevelStatement {
	used := collectUsedFQNs(node, source, scope, true)
	return &core.TopLevelStatement{Type: core.StatementTypeExpression, UsedFQNs: used}
}

func extractDecorated(node *sitter.Node, source []byte, scope *resolve.Scope) *core.TopLevelStatement {
	decorators := cst.Decorators(node, source)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_definition":
			return extractDef(child, source, scope, core.StatementTypeFunctionDef, decorators)
		case "class_definition":
			return extractDef(child, source, scope, core.StatementTypeClassDef, decorators)
		}
	}
	return nil
}

// extractDef handles both function and class definitions. scope is the
// ENCLOSING scope (the one that binds this def's own name, per build.go's
// walkStatement) — not the def's own body scope, which is looked up
// separately below via the body node's range. Using the def node's own
// range for that lookup would wrongly resolve to the def's own Function/
// Class scope (its range covers the whole header, including its name),
// which Resolve would then refuse to see through the class-skip rule for a
// method.
//
// A class's body is extracted statement-by-statement (so plain class
// attributes and methods are each independently prunable); a function's
// body is collapsed into a single used-FQN set per §4.6 ("bodies of
// functions are also walked"), with only its own nested defs tracked
// individually.
func extractDef(node *sitter.Node, source []byte, scope *resolve.Scope, stype core.StatementType, decorators []string) *core.TopLevelStatement {
	stmt := &core.TopLevelStatement{
		Type:        stype,
		DefinedFQNs: resolve.FQNsOf(node, source, scope),
		Decorators:  decorators,
	}

	var used []string
	for _, dec := range decorators {
		used = append(used, resolveDottedString(dec, scope)...)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		used = append(used, collectParameterUsed(params, source, scope)...)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		used = append(used, collectUsedFQNs(ret, source, scope, true)...)
	}
	if bases := node.ChildByFieldName("superclasses"); bases != nil {
		used = append(used, collectUsedFQNs(bases, source, scope, true)...)
	}

	if body := node.ChildByFieldName("body"); body != nil {
		bodyScope := resolve.ScopeOf(scope, body)
		if stype == core.StatementTypeClassDef {
			stmt.Nested = extractBody(body, source, bodyScope, nil)
		} else {
			used = append(used, collectUsedFQNs(body, source, bodyScope, true)...)
			stmt.Nested = extractNestedDefs(body, source, bodyScope)
		}
	}

	stmt.UsedFQNs = used
	return stmt
}

// extractNestedDefs collects the direct function/class children of a
// function body (one level; each recurses into its own nested defs via
// extractDef).
func extractNestedDefs(body *sitter.Node, source []byte, scope *resolve.Scope) []*core.TopLevelStatement {
	var nested []*core.TopLevelStatement
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			s := extractDef(child, source, scope, core.StatementTypeFunctionDef, nil)
			s.Node = child
			nested = append(nested, s)
		case "class_definition":
			s := extractDef(child, source, scope, core.StatementTypeClassDef, nil)
			s.Node = child
			nested = append(nested, s)
		case "decorated_definition":
			if s := extractDecorated(child, source, scope); s != nil {
				s.Node = child
				nested = append(nested, s)
			}
		}
	}
	return nested
}

// extractNestedDefsDeep finds function/class defs anywhere inside a
// control-flow statement's subtree (e.g. a conditional def guarded by
// `if TYPE_CHECKING:`), without descending past a found def (its own body
// is handled by extractDef).
func extractNestedDefsDeep(node *sitter.Node, source []byte, scope *resolve.Scope) []*core.TopLevelStatement {
	var nested []*core.TopLevelStatement
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_definition":
			s := extractDef(n, source, scope, core.StatementTypeFunctionDef, nil)
			s.Node = n
			nested = append(nested, s)
			return
		case "class_definition":
			s := extractDef(n, source, scope, core.StatementTypeClassDef, nil)
			s.Node = n
			nested = append(nested, s)
			return
		case "decorated_definition":
			if s := extractDecorated(n, source, scope); s != nil {
				s.Node = n
				nested = append(nested, s)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i))
	}
	return nested
}

func extractAssignment(node *sitter.Node, source []byte, scope *resolve.Scope) *core.TopLevelStatement {
	left := node.ChildByFieldName("left")
	if left == nil {
		return nil
	}
	defined := collectTargetFQNs(left, source, scope)

	var used []string
	if right := node.ChildByFieldName("right"); right != nil {
		used = collectUsedFQNs(right, source, scope, true)
	}

	if len(defined) == 0 && len(used) == 0 {
		return nil
	}
	return &core.TopLevelStatement{Type: core.StatementTypeAssignment, DefinedFQNs: defined, UsedFQNs: used}
}

func collectTargetFQNs(node *sitter.Node, source []byte, scope *resolve.Scope) []string {
	switch node.Type() {
	case "identifier":
		inner := resolve.ScopeOf(scope, node)
		return resolve.FQNsOf(node, source, inner)
	case "pattern_list", "tuple_pattern":
		var out []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			out = append(out, collectTargetFQNs(node.NamedChild(i), source, scope)...)
		}
		return out
	default:
		return nil
	}
}

func extractImport(node *sitter.Node, source []byte, bindings *core.ImportBindings) *core.TopLevelStatement {
	if bindings == nil {
		return nil
	}

	var names []string
	switch node.Type() {
	case "import_statement":
		if n := localNameOf(node.ChildByFieldName("name"), source); n != "" {
			names = append(names, n)
		}
	case "import_from_statement":
		moduleNameNode := node.ChildByFieldName("module_name")
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if moduleNameNode != nil && child.StartByte() == moduleNameNode.StartByte() && child.EndByte() == moduleNameNode.EndByte() {
				continue
			}
			if n := localNameOf(child, source); n != "" {
				names = append(names, n)
			}
		}
	}

	if len(names) == 0 {
		return nil
	}

	imported := make(map[string]string)
	for _, n := range names {
		if fqn, ok := bindings.Resolve(n); ok {
			imported[n] = fqn
		}
	}
	if len(imported) == 0 {
		return nil
	}
	return &core.TopLevelStatement{Type: core.StatementTypeImport, ImportedNames: imported}
}

func localNameOf(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
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

// collectParameterUsed walks a parameter list for used FQNs in type
// annotations and default values, skipping the bound parameter names
// themselves (those are bindings, not references).
func collectParameterUsed(params *sitter.Node, source []byte, scope *resolve.Scope) []string {
	var used []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "typed_parameter":
			if t := p.ChildByFieldName("type"); t != nil {
				used = append(used, collectUsedFQNs(t, source, scope, true)...)
			}
		case "default_parameter":
			if v := p.ChildByFieldName("value"); v != nil {
				used = append(used, collectUsedFQNs(v, source, scope, true)...)
			}
		case "typed_default_parameter":
			if t := p.ChildByFieldName("type"); t != nil {
				used = append(used, collectUsedFQNs(t, source, scope, true)...)
			}
			if v := p.ChildByFieldName("value"); v != nil {
				used = append(used, collectUsedFQNs(v, source, scope, true)...)
			}
		}
	}
	return used
}

// collectUsedFQNs walks node for identifier/attribute references, resolving
// each through scope. When skipNestedDefs is set, it doesn't descend into a
// function/class def found inside (those are tracked as their own Nested
// statement instead, so their liveness can be judged independently).
func collectUsedFQNs(node *sitter.Node, source []byte, scope *resolve.Scope, skipNestedDefs bool) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			if skipNestedDefs {
				return
			}
		case "identifier", "attribute":
			inner := resolve.ScopeOf(scope, n)
			out = append(out, resolve.FQNsOf(n, source, inner)...)
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return out
}

// resolveDottedString resolves a dotted decorator path (e.g. "app.cache" or
// "staticmethod") to the FQN its head is bound to, for counting the
// decorator callee itself as used. Decorators with no scope binding (most
// builtins: staticmethod, property, ...) resolve to nothing and are simply
// not counted, which is harmless since nothing in the bundle defines them.
func resolveDottedString(dotted string, scope *resolve.Scope) []string {
	head, trail := dotted, ""
	if idx := strings.Index(dotted, "."); idx != -1 {
		head, trail = dotted[:idx], dotted[idx+1:]
	}
	fqn, ok := scope.Resolve(head)
	if !ok || fqn == "" {
		return nil
	}
	if trail == "" {
		return []string{fqn}
	}
	return []string{fqn + "." + trail}
}
