// Package refcount is the reference counter (C6). It extracts a module's
// top-level definitions, assignments, and imports into core.TopLevelStatement
// trees, then runs the whole-program fixpoint described in §4.6: a statement
// becomes alive once one of its defined FQNs is referenced, at which point
// every FQN it uses is counted, possibly waking further statements in the
// same or another module on a later pass.
//
// The node remover (C7) reads the resulting core.ReferenceIndex to decide
// what survives pruning; refcount itself never mutates a CST.
package refcount
