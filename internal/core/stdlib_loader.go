package core

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed stdlib_python3.json
var embeddedStdlibManifest []byte

// LoadEmbeddedStdlibRegistry parses the manifest shipped inside the binary
// for the default target-language version. Module discovery (§4.3, C3) calls
// this once per bundle invocation; there is no per-run network fetch or
// filesystem dependency, so classify() stays available even when the
// resolution environment is offline.
func LoadEmbeddedStdlibRegistry() (*StdlibRegistry, error) {
	return parseStdlibManifest(embeddedStdlibManifest)
}

// StdlibRegistryLoader loads a stdlib registry manifest from an arbitrary
// local path, used when the caller targets a non-default language version
// (e.g. a pinned Python 2.7 manifest shipped alongside a legacy project).
type StdlibRegistryLoader struct {
	ManifestPath string
}

// LoadRegistry reads and parses the manifest at l.ManifestPath.
func (l *StdlibRegistryLoader) LoadRegistry(readFile func(string) ([]byte, error)) (*StdlibRegistry, error) {
	data, err := readFile(l.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdlib manifest: %w", err)
	}
	return parseStdlibManifest(data)
}

// parseStdlibManifest decodes a manifest document and builds the module set.
func parseStdlibManifest(data []byte) (*StdlibRegistry, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse stdlib manifest JSON: %w", err)
	}

	registry := NewStdlibRegistry()
	registry.Manifest = &manifest
	for _, entry := range manifest.Modules {
		registry.Modules[entry.Name] = true
	}
	if manifest.Statistics == nil {
		registry.Manifest.Statistics = &RegistryStats{TotalModules: len(manifest.Modules)}
	}

	return registry, nil
}
