package resolve

import sitter "github.com/smacker/go-tree-sitter"

// Kind classifies a scope's binding rules (§4.2).
type Kind int

const (
	Global Kind = iota
	Class
	Function
	Comprehension
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case Class:
		return "class"
	case Function:
		return "function"
	case Comprehension:
		return "comprehension"
	default:
		return "unknown"
	}
}

// Scope is one node in the scope tree built over a module's CST. Class
// scopes do NOT participate in free-name lookup for enclosed functions
// (Python's class-body-is-not-an-enclosing-scope rule); Resolve skips over
// them when walking up the parent chain from a function or comprehension.
type Scope struct {
	Kind     Kind
	Global   *Scope // the enclosing module (global) scope; nil only for the global scope itself
	Parent   *Scope
	Bindings map[string]string // local name -> FQN

	startByte uint32
	endByte   uint32
	children  []*Scope
}

// NewScope creates a scope nested inside parent. A nil parent makes this the
// module's global scope. The new scope is registered as a child of parent
// for ScopeOf's containment search.
func NewScope(kind Kind, parent *Scope, start, end uint32) *Scope {
	s := &Scope{
		Kind:      kind,
		Parent:    parent,
		Bindings:  make(map[string]string),
		startByte: start,
		endByte:   end,
	}
	if parent == nil {
		s.Global = s
	} else {
		s.Global = parent.Global
		parent.children = append(parent.children, s)
	}
	return s
}

// Bind records that name resolves to fqn within this scope.
func (s *Scope) Bind(name, fqn string) {
	s.Bindings[name] = fqn
}

// Resolve looks up name starting in this scope and walking outward, per
// §4.2's "free name inside a function resolves to the innermost enclosing
// scope that binds it". Class-body scopes are skipped when the walk starts
// from a nested function or comprehension, matching Python's rule that a
// method body does not see its class's attributes as free names.
func (s *Scope) Resolve(name string) (string, bool) {
	cur := s
	skipClasses := s.Kind == Function || s.Kind == Comprehension
	for cur != nil {
		if !(skipClasses && cur.Kind == Class) {
			if fqn, ok := cur.Bindings[name]; ok {
				return fqn, true
			}
		}
		skipClasses = skipClasses || cur.Kind == Function || cur.Kind == Comprehension
		cur = cur.Parent
	}
	return "", false
}

// contains reports whether the byte range [start,end) lies within s.
func (s *Scope) contains(start, end uint32) bool {
	return start >= s.startByte && end <= s.endByte
}

// ScopeOf returns the innermost scope in the tree rooted at root whose byte
// range contains node.
func ScopeOf(root *Scope, node *sitter.Node) *Scope {
	if node == nil {
		return root
	}
	return deepestContaining(root, node.StartByte(), node.EndByte())
}

func deepestContaining(s *Scope, start, end uint32) *Scope {
	best := s
	for _, child := range s.children {
		if child.contains(start, end) {
			best = deepestContaining(child, start, end)
			break
		}
	}
	return best
}
