package core

import "strings"

// ReferenceIndex maps a fully qualified name to its whole-program reference
// count (§3: "A key with count 0 or absent is unreferenced"). The reference
// counter (C6) is the only phase that mutates it; counts are monotone
// non-decreasing for the lifetime of a single run.
type ReferenceIndex struct {
	counts map[string]int
}

// NewReferenceIndex creates an empty ReferenceIndex.
func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{counts: make(map[string]int)}
}

// Increment bumps fqn's count by one, returning true iff this transitioned
// the count from 0 to 1 (the event the C6 fixpoint watches for).
func (idx *ReferenceIndex) Increment(fqn string) bool {
	if fqn == "" {
		return false
	}
	wasZero := idx.counts[fqn] == 0
	idx.counts[fqn]++
	return wasZero
}

// Count returns fqn's current reference count (0 if never referenced).
func (idx *ReferenceIndex) Count(fqn string) int {
	return idx.counts[fqn]
}

// IsReferenced reports whether fqn has been referenced at least once.
func (idx *ReferenceIndex) IsReferenced(fqn string) bool {
	return idx.counts[fqn] > 0
}

// AnyReferenced reports whether any of fqns has been referenced.
func (idx *ReferenceIndex) AnyReferenced(fqns []string) bool {
	for _, fqn := range fqns {
		if idx.IsReferenced(fqn) {
			return true
		}
	}
	return false
}

// HasReferencedMember reports whether any FQN in the index is a dotted
// member of prefix (i.e. begins with "prefix."). This backs the node
// remover's package-prefix backfill (§4.7): a package name M that never
// appears as a definition of its own is still considered referenced when
// some M.X is.
func (idx *ReferenceIndex) HasReferencedMember(prefix string) bool {
	if prefix == "" {
		return false
	}
	dotted := prefix + "."
	for fqn, count := range idx.counts {
		if count > 0 && strings.HasPrefix(fqn, dotted) {
			return true
		}
	}
	return false
}

// PreservationSet is the set of FQNs treated as referenced regardless of
// static analysis (§3: seeded from __main__ entry points, a domain-provided
// list of known-dynamic symbols, and ImportAliasMap closure).
type PreservationSet struct {
	names map[string]struct{}
}

// NewPreservationSet creates an empty PreservationSet.
func NewPreservationSet() *PreservationSet {
	return &PreservationSet{names: make(map[string]struct{})}
}

// Add records fqn as preserved.
func (p *PreservationSet) Add(fqn string) {
	if fqn == "" {
		return
	}
	p.names[fqn] = struct{}{}
}

// Contains reports whether fqn is in the set.
func (p *PreservationSet) Contains(fqn string) bool {
	_, ok := p.names[fqn]
	return ok
}

// All returns every preserved FQN, in no particular order.
func (p *PreservationSet) All() []string {
	out := make([]string, 0, len(p.names))
	for fqn := range p.names {
		out = append(out, fqn)
	}
	return out
}

// ImportAliasMap declares that two FQNs denote the same runtime object
// (§3), so a reference to one counts as a reference to the other.
type ImportAliasMap struct {
	// visible maps FQN_visible -> FQN_actual.
	visible map[string]string
}

// NewImportAliasMap creates an empty ImportAliasMap.
func NewImportAliasMap() *ImportAliasMap {
	return &ImportAliasMap{visible: make(map[string]string)}
}

// Add records that visible and actual name the same object.
func (m *ImportAliasMap) Add(visible, actual string) {
	if visible == "" || actual == "" {
		return
	}
	m.visible[visible] = actual
}

// ResolveClosure ensures that for every (a, b) pair where a is already
// referenced in idx, b is also marked referenced, per §4.6's seeding rule
// ("transitive closure of aliases is taken before counting begins"). It
// iterates to a fixpoint over the (typically tiny) alias map itself so a
// chain a->b->c is fully propagated.
func (m *ImportAliasMap) ResolveClosure(idx *ReferenceIndex) {
	changed := true
	for changed {
		changed = false
		for a, b := range m.visible {
			if idx.IsReferenced(a) && !idx.IsReferenced(b) {
				idx.Increment(b)
				changed = true
			}
		}
	}
}
