package cst

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// Decorators extracts decorator names from a decorated_definition node
// (e.g. ["property", "staticmethod"]). Arguments are stripped: a decorator
// written as "@app.route(\"/x\")" yields "app.route".
func Decorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	if node == nil || node.Type() != "decorated_definition" {
		return decorators
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		text := strings.TrimPrefix(child.Content(source), "@")
		if idx := strings.Index(text, "("); idx != -1 {
			text = text[:idx]
		}
		decorators = append(decorators, strings.TrimSpace(text))
	}
	return decorators
}

// HasDecorator reports whether name appears in decorators (exact match on
// the dotted decorator path).
func HasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

// IsConstructor reports whether functionName is Python's __init__.
func IsConstructor(functionName string) bool {
	return functionName == "__init__"
}

// IsSpecialMethod reports whether functionName is a dunder method
// (e.g. __str__, __add__).
func IsSpecialMethod(functionName string) bool {
	if len(functionName) < 5 {
		return false
	}
	return strings.HasPrefix(functionName, "__") && strings.HasSuffix(functionName, "__")
}

// IsConstantName reports whether name follows the SCREAMING_SNAKE_CASE
// convention for module- or class-level constants.
func IsConstantName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		case r == '_' || unicode.IsDigit(r):
			// allowed
		default:
			return false
		}
	}
	return hasLetter
}

// IsDataclass reports whether decorators marks a class as a stdlib
// dataclass, which auto-generates field-based methods C6's decorator rule
// must not treat as dead even though they appear nowhere in source text.
func IsDataclass(decorators []string) bool {
	for _, d := range decorators {
		if d == "dataclass" || d == "dataclasses.dataclass" {
			return true
		}
	}
	return false
}
