package core

// Location identifies a byte-range span inside a single source file, used
// for diagnostics and for translating between a CST node and the ResolvedModule
// that contains it.
type Location struct {
	File   string // Absolute path to the source file
	Line   int    // Line number (1-indexed)
	Column int    // Column number (1-indexed)
}

// PackageIndex maintains the mapping between on-disk file paths and the
// dotted module specs they satisfy. It is built once per resolution root
// by BuildPackageIndex and consulted by the module spec service (find/iter_package_files)
// and by the file collector when resolving sibling imports.
//
// Example:
//
//	File: /project/myapp/utils/helpers.py
//	Module: myapp.utils.helpers
type PackageIndex struct {
	// Modules maps a fully qualified module spec to its absolute file path.
	// Key: "myapp.utils.helpers"
	// Value: "/absolute/path/to/myapp/utils/helpers.py"
	Modules map[string]string

	// FileToModule is the reverse of Modules, used when a CollectedFiles entry
	// needs to know which spec it was discovered under.
	FileToModule map[string]string

	// ShortNames maps the leaf segment of a module spec to every file path that
	// ends with it. More than one path under a key means same-named modules
	// live in different packages; no other package reads this field.
	ShortNames map[string][]string
}

// NewPackageIndex creates and initializes an empty PackageIndex.
func NewPackageIndex() *PackageIndex {
	return &PackageIndex{
		Modules:      make(map[string]string),
		FileToModule: make(map[string]string),
		ShortNames:   make(map[string][]string),
	}
}

// AddModule registers a module in the index. Automatically indexes both the
// full module spec and its leaf ("short") name.
//
// Parameters:
//   - modulePath: fully qualified module spec (e.g., "myapp.utils.helpers")
//   - filePath: absolute file path (e.g., "/project/myapp/utils/helpers.py")
func (pi *PackageIndex) AddModule(modulePath, filePath string) {
	pi.Modules[modulePath] = filePath
	pi.FileToModule[filePath] = modulePath

	shortName := extractShortName(modulePath)
	if !containsString(pi.ShortNames[shortName], filePath) {
		pi.ShortNames[shortName] = append(pi.ShortNames[shortName], filePath)
	}
}

// GetModulePath returns the file path registered for a module spec, if any.
func (pi *PackageIndex) GetModulePath(modulePath string) (string, bool) {
	filePath, ok := pi.Modules[modulePath]
	return filePath, ok
}

// ImportBindings represents the import statements discovered in a single
// source file. It maps each locally visible name (an unaliased import head,
// an `as` alias, or a from-import binding) to the fully qualified module or
// attribute path it denotes. The file collector walks these to discover the
// transitive closure; the import rewriter and reference counter both consult
// them to resolve a bare name back to the import that introduced it.
//
// Example:
//
//	File contains: from myapp.utils import sanitize as clean
//	Bindings: {"clean": "myapp.utils.sanitize"}
type ImportBindings struct {
	FilePath string            // Absolute path to the file containing these imports
	Bindings map[string]string // Maps local name to fully qualified target path
}

// NewImportBindings creates and initializes an empty ImportBindings for filePath.
func NewImportBindings(filePath string) *ImportBindings {
	return &ImportBindings{
		FilePath: filePath,
		Bindings: make(map[string]string),
	}
}

// AddImport records a binding from a local name to a fully qualified target.
//
// Parameters:
//   - alias: the local name used in the file (e.g., "clean", "sanitize", "utils")
//   - fqn: the fully qualified name it resolves to (e.g., "myapp.utils.sanitize")
func (im *ImportBindings) AddImport(alias, fqn string) {
	im.Bindings[alias] = fqn
}

// Resolve looks up the fully qualified name bound to a local name.
func (im *ImportBindings) Resolve(alias string) (string, bool) {
	fqn, ok := im.Bindings[alias]
	return fqn, ok
}

// Helper function to check if a string slice contains a specific string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Helper function alias for consistency.
func containsString(slice []string, item string) bool {
	return contains(slice, item)
}

// extractShortName returns the last component of a dotted path.
// Example: "myapp.utils.helpers" → "helpers".
func extractShortName(modulePath string) string {
	for i := len(modulePath) - 1; i >= 0; i-- {
		if modulePath[i] == '.' {
			return modulePath[i+1:]
		}
	}
	return modulePath
}
