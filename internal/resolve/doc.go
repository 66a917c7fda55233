// Package resolve is the name resolver (C2). It builds the scope tree for a
// parsed module and answers two queries over it: scope_of, which classifies
// any CST node's enclosing scope (global/class/function/comprehension), and
// fqns_of, which computes the set of fully qualified names a node defines or
// refers to under Python's scoping rules.
//
// The import rewriter (C5) walks a module's scope tree to decide whether a bare name traces back to a rewritten
// import; the reference counter (C6) uses fqns_of to populate each
// core.TopLevelStatement's UsedFQNs and DefinedFQNs.
package resolve
