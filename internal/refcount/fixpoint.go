package refcount

import (
	"sort"
	"strings"

	"github.com/kmitra/pyshake/internal/core"
)

// Module is one collected module's extracted statements, keyed so Count can
// apply §5's deterministic visitation order (sorted by path, __init__
// files last within each directory).
type Module struct {
	FQN        string
	IsMain     bool
	Statements []*core.TopLevelStatement
}

// SafeDecorators is the allowlist of decorator names/FQNs that never force
// preservation of the definition they decorate (§4.6).
type SafeDecorators map[string]struct{}

// NewSafeDecorators builds an allowlist from the given names.
func NewSafeDecorators(names ...string) SafeDecorators {
	s := make(SafeDecorators)
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Count runs the whole-program fixpoint of §4.6 over modules, seeded from
// preservation and aliases, and returns the populated ReferenceIndex.
func Count(modules []*Module, preservation *core.PreservationSet, aliases *core.ImportAliasMap, safe SafeDecorators) *core.ReferenceIndex {
	idx := core.NewReferenceIndex()
	processed := make(map[*core.TopLevelStatement]bool)

	order := orderedModules(modules)

	// Seeding: every FQN in __main__ modules and the preservation set starts
	// referenced, and the import-alias closure is taken once before the
	// fixpoint begins (§4.6).
	for _, m := range order {
		if m.IsMain {
			for _, stmt := range m.Statements {
				forceAlive(stmt, idx, processed)
			}
		}
	}
	for _, fqn := range preservation.All() {
		idx.Increment(fqn)
	}
	if aliases != nil {
		aliases.ResolveClosure(idx)
	}

	changed := true
	for changed {
		changed = false
		for _, m := range order {
			for _, stmt := range m.Statements {
				if applyStatement(stmt, idx, processed, safe) {
					changed = true
				}
			}
		}
	}

	return idx
}

// orderedModules sorts modules by FQN with package __init__ modules last
// within their own directory, matching §5's visitation order.
func orderedModules(modules []*Module) []*Module {
	out := make([]*Module, len(modules))
	copy(out, modules)
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i].FQN) < sortKey(out[j].FQN)
	})
	return out
}

// sortKey maps a module FQN to a string that sorts package __init__ modules
// after their siblings while grouping everything under "pkg" together: dots
// become "\x00" and "\x01" is appended, so "pkg.sibling" ("pkg\x00sibling\x01")
// sorts before "pkg" ("pkg\x01"), which sorts before an unrelated "pkgx"
// ("pkgx\x01").
func sortKey(fqn string) string {
	return strings.ReplaceAll(fqn, ".", "\x00") + "\x01"
}

// forceAlive marks stmt and everything nested inside it as alive
// unconditionally, bumping every FQN it defines or uses (§4.6's __main__
// seeding: "seed a count of 1 for every FQN appearing in that module").
func forceAlive(stmt *core.TopLevelStatement, idx *core.ReferenceIndex, processed map[*core.TopLevelStatement]bool) {
	if processed[stmt] {
		return
	}
	processed[stmt] = true
	for _, fqn := range stmt.DefinedFQNs {
		idx.Increment(fqn)
	}
	for _, fqn := range stmt.UsedFQNs {
		idx.Increment(fqn)
	}
	for _, nested := range stmt.Nested {
		forceAlive(nested, idx, processed)
	}
}

// applyStatement processes stmt once it is first observed alive: bumping
// every FQN in UsedFQNs and recursing into Nested. Returns true if this
// call did new work (this statement or one of its descendants transitioned
// from unprocessed to processed), the signal the fixpoint loop watches for.
func applyStatement(stmt *core.TopLevelStatement, idx *core.ReferenceIndex, processed map[*core.TopLevelStatement]bool, safe SafeDecorators) bool {
	if processed[stmt] {
		return false
	}
	if !isAlive(stmt, idx, safe) {
		return false
	}
	processed[stmt] = true

	// A def kept alive solely by an unsafe decorator (its own FQN otherwise
	// unreferenced) still needs a count ≥ 1 of its own, since the node
	// remover's deletion rule looks at DefinedFQNs' counts directly. Bumping
	// an already-referenced FQN again is harmless.
	for _, fqn := range stmt.DefinedFQNs {
		idx.Increment(fqn)
	}
	for _, fqn := range stmt.UsedFQNs {
		idx.Increment(fqn)
	}

	changed := true // this statement itself just transitioned
	for _, nested := range stmt.Nested {
		if applyStatement(nested, idx, processed, safe) {
			changed = true
		}
	}
	return changed
}

// isAlive implements §4.6's per-shape liveness rules.
func isAlive(stmt *core.TopLevelStatement, idx *core.ReferenceIndex, safe SafeDecorators) bool {
	switch stmt.Type {
	case core.StatementTypeFunctionDef, core.StatementTypeClassDef:
		if idx.AnyReferenced(stmt.DefinedFQNs) {
			return true
		}
		return stmt.HasUnsafeDecorator(safe)

	case core.StatementTypeAssignment:
		return idx.AnyReferenced(stmt.DefinedFQNs)

	case core.StatementTypeImport:
		// Not seeded as alive; survival is judged at prune time by whether
		// its imported names are referenced (§4.6, §4.7).
		return false

	default:
		// Expression statements, `if __name__ == "__main__":`, and
		// module/class-level control flow all run unconditionally.
		return true
	}
}

// DefaultSafeDecorators is the conservative allowlist used when no
// domain-specific list is configured: decorators the standard library and
// the vast majority of frameworks define with no import-time or call-time
// side effects beyond their own definition's behavior.
func DefaultSafeDecorators() SafeDecorators {
	return NewSafeDecorators(
		"property",
		"staticmethod",
		"classmethod",
		"abstractmethod",
		"dataclass",
		"dataclasses.dataclass",
		"functools.wraps",
		"functools.lru_cache",
		"functools.cache",
		"typing.overload",
		"override",
		"typing.final",
	)
}
