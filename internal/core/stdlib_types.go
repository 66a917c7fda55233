package core

// StdlibRegistry holds the set of standard-library module names for one
// target-language version. The module spec service's classify() operation
// consults it to distinguish stdlib imports (left alone by the collector and
// the import rewriter) from third-party imports (collected and vendored).
type StdlibRegistry struct {
	Modules  map[string]bool
	Manifest *Manifest
}

// Manifest describes the provenance of an embedded stdlib module list.
//
//nolint:tagliatelle // JSON tags match the generator's snake_case output format.
type Manifest struct {
	SchemaVersion   string         `json:"schema_version"`
	RegistryVersion string         `json:"registry_version"`
	LanguageVersion VersionInfo    `json:"language_version"`
	GeneratedAt     string         `json:"generated_at"`
	Modules         []*ModuleEntry `json:"modules"`
	Statistics      *RegistryStats `json:"statistics"`
}

// VersionInfo names the target-language release a stdlib list was generated for.
type VersionInfo struct {
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Patch int    `json:"patch"`
	Full  string `json:"full"`
}

// ModuleEntry represents a single module in the manifest.
type ModuleEntry struct {
	Name string `json:"name"`
}

// RegistryStats contains aggregate statistics about the loaded registry.
type RegistryStats struct {
	TotalModules int `json:"total_modules"`
}

// NewStdlibRegistry creates an empty stdlib registry.
func NewStdlibRegistry() *StdlibRegistry {
	return &StdlibRegistry{
		Modules: make(map[string]bool),
	}
}

// HasModule reports whether moduleName (or one of its ancestor packages, e.g.
// "os" for "os.path") is a known standard-library module.
func (r *StdlibRegistry) HasModule(moduleName string) bool {
	if r.Modules[moduleName] {
		return true
	}
	// A submodule of a stdlib package is itself stdlib even if not listed
	// individually (e.g. "xml.etree.ElementTree" under "xml").
	for i := len(moduleName) - 1; i >= 0; i-- {
		if moduleName[i] == '.' {
			if r.Modules[moduleName[:i]] {
				return true
			}
		}
	}
	return false
}

// ModuleCount returns the number of loaded top-level modules.
func (r *StdlibRegistry) ModuleCount() int {
	return len(r.Modules)
}
