// Package core provides foundational type definitions shared by the module
// spec service, file collector, reference counter, and node remover.
//
// This package contains pure data structures with minimal dependencies that form
// the contract for the rest of the bundler. Types in this package should:
//
//   - Have zero circular dependencies
//   - Contain minimal business logic
//   - Be stable and rarely change
//
// # Core Types
//
// PackageIndex maps module specs to file paths under one resolution root.
//
// ImportBindings records the local-name-to-FQN bindings an import statement
// introduces, used by both the collector and the import rewriter.
//
// StatementType classifies a top-level statement shape (assignment, call, def,
// import, ...); TopLevelStatement carries it with the defined and used FQNs
// the reference counter's liveness rules run over. Statement is one entry of
// a def-use chain.
//
// StdlibRegistry and Manifest back the module spec service's standard-library
// classification.
//
// # Usage
//
//	import "github.com/kmitra/pyshake/internal/core"
//
//	idx := core.NewPackageIndex()
//	idx.AddModule("myapp.utils.helpers", "/project/myapp/utils/helpers.py")
package core
