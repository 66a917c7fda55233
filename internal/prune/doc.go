// Package prune is the node remover (C7). Given a module's already-extracted
// core.TopLevelStatement tree and the whole-program core.ReferenceIndex the
// reference counter (C6) produced, it walks the tree and deletes every
// definition, assignment, and import statement that fixpoint counting never
// marked alive, emitting the edits through the same cst.Edit/ApplyEdits
// mechanism the import rewriter (C5) uses.
package prune
