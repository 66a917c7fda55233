// Package config loads bundle/treeshake parameters from a YAML file, so
// invocations don't have to spell every --root, --import-alias and
// --preserve-symbol out on the command line. It stays outside
// internal/bundle: the core never parses a config file itself, it just
// accepts the plain values (resolution roots, a top package name, an
// *core.ImportAliasMap, a symbol list) this package produces.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kmitra/pyshake/internal/core"
)

// Config is the .pyshake.yml project configuration file.
type Config struct {
	Version int `yaml:"version"`

	// TopPackage is the bundle's top-level package name.
	TopPackage string `yaml:"top_package"`
	// Roots are resolution root directories, searched in order.
	Roots []string `yaml:"roots"`
	// VendorName is the directory third-party packages are vendored under.
	VendorName string `yaml:"vendor_name"`
	// Resources are glob patterns for non-Python files copied alongside
	// first-party packages.
	Resources []string `yaml:"resources"`
	// Metadata is written verbatim as the bundle's .bundle-metadata.json.
	Metadata map[string]string `yaml:"metadata"`

	// PreserveSymbols are fully-qualified names treeshake keeps alive
	// regardless of reference counting.
	PreserveSymbols []string `yaml:"preserve_symbols"`
	// SafeDecorators extends refcount.DefaultSafeDecorators with additional
	// decorator names/FQNs that never force preservation.
	SafeDecorators []string `yaml:"safe_decorators"`
	// ImportAliases maps a visible import name to the actual module it
	// resolves to at runtime (e.g. a lazy-import shim), keyed by the
	// visible name.
	ImportAliases map[string]string `yaml:"import_aliases"`
}

// Load reads and parses the YAML config file at path. Unknown fields are
// rejected so a typo'd key surfaces immediately instead of silently being
// ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	cfg := &Config{}
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that Config's values are internally consistent.
func (c *Config) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}
	if c.VendorName == "" {
		c.VendorName = "vendor"
	}
	return nil
}

// ImportAliasMap builds a *core.ImportAliasMap from c.ImportAliases.
func (c *Config) ImportAliasMap() *core.ImportAliasMap {
	aliases := core.NewImportAliasMap()
	for visible, actual := range c.ImportAliases {
		aliases.Add(visible, actual)
	}
	return aliases
}
