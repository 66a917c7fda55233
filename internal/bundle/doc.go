// Package bundle orchestrates the parser adapter (C1), module spec service
// (C3), file collector (C4), import rewriter (C5), reference counter (C6)
// and node remover (C7) into the two operations a caller actually invokes:
// Bundle, which vendors a module and its transitive dependencies into a
// self-contained destination tree, and Treeshake, which removes dead code
// from a source tree in place.
package bundle
