package core

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// TopLevelStatement describes one statement directly inside a module or a
// class/function body, annotated with the FQNs it defines and uses. The
// reference counter (C6) walks these to run its whole-program fixpoint, and
// the node remover (C7) consults DefinedFQNs to decide what to delete.
type TopLevelStatement struct {
	Type StatementType

	// Node is the CST node spanning this statement in its source file,
	// including any decorator lines. The node remover deletes this byte
	// range outright when the statement is judged dead.
	Node *sitter.Node

	// DefinedFQNs are the fully qualified names this statement binds.
	// A `def`/`class` defines exactly one; an assignment may define several
	// (tuple unpacking); an import statement defines one per imported name.
	DefinedFQNs []string

	// UsedFQNs are the fully qualified names referenced anywhere inside this
	// statement: its body, decorators, default values, base classes and
	// annotations. Populated only once the statement is known alive, since
	// counting walks lazily per the C6 fixpoint rule.
	UsedFQNs []string

	// Decorators holds the FQNs of any decorators applied to a def/class
	// statement. A decorator outside the safe-decorator allowlist forces
	// the statement to be treated as alive regardless of its own FQN's count.
	Decorators []string

	// ImportedNames maps each name introduced by an import statement to the
	// FQN it is bound to; used by the node remover to filter multi-name
	// imports down to the subset that survived treeshaking.
	ImportedNames map[string]string

	// Nested holds statements inside a function/class body so liveness can
	// propagate into nested definitions (a class method is alive only once
	// its enclosing class is alive).
	Nested []*TopLevelStatement
}

// DefinesAny reports whether any of fqns appears in s.DefinedFQNs.
func (s *TopLevelStatement) DefinesAny(fqns map[string]struct{}) bool {
	for _, fqn := range s.DefinedFQNs {
		if _, ok := fqns[fqn]; ok {
			return true
		}
	}
	return false
}

// HasUnsafeDecorator reports whether any of s.Decorators falls outside the
// given allowlist of safe decorator FQNs/names.
func (s *TopLevelStatement) HasUnsafeDecorator(safe map[string]struct{}) bool {
	for _, dec := range s.Decorators {
		if _, ok := safe[dec]; !ok {
			return true
		}
	}
	return false
}
