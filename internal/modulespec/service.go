// Package modulespec is the module spec service (C3). It maps dotted import
// specs to on-disk paths across an ordered list of resolution roots, walks a
// package directory to enumerate its immediate files, and classifies a spec
// as first-party, standard-library, or third-party.
package modulespec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
)

// Origin classifies a resolved module's relationship to the bundle being
// built.
type Origin int

const (
	FirstParty Origin = iota
	Stdlib
	ThirdParty
)

// NotFoundError reports that no resolution root contains spec.
type NotFoundError struct {
	Spec string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module spec service: spec %q not found in any resolution root", e.Spec)
}

// ResolvedModule is a spec that has been located on disk (§3).
type ResolvedModule struct {
	FQN    string
	Path   string
	Kind   cst.Kind
	Origin Origin
}

// Service resolves dotted specs against an ordered list of resolution
// roots, each pre-indexed by core.BuildPackageIndex.
type Service struct {
	TopPackage string
	Stdlib     *core.StdlibRegistry
	roots      []*core.PackageIndex
}

// New builds a Service over rootPaths, indexing each with
// core.BuildPackageIndex (searched in the given order, matching §4.3's
// "searches ... in order").
func New(rootPaths []string, stdlib *core.StdlibRegistry, topPackage string) (*Service, error) {
	svc := &Service{TopPackage: topPackage, Stdlib: stdlib}
	for _, root := range rootPaths {
		idx, err := core.BuildPackageIndex(root)
		if err != nil {
			return nil, fmt.Errorf("module spec service: indexing root %s: %w", root, err)
		}
		svc.roots = append(svc.roots, idx)
	}
	return svc, nil
}

// Find resolves spec against the resolution roots, in order. A directory
// D/a/b/__init__.py satisfies "a.b"; D/a/b.py also satisfies it.
func (s *Service) Find(spec string) (*ResolvedModule, error) {
	for _, idx := range s.roots {
		if path, ok := idx.GetModulePath(spec); ok {
			return &ResolvedModule{
				FQN:    spec,
				Path:   path,
				Kind:   cst.KindOf(path),
				Origin: s.Classify(spec),
			}, nil
		}
	}
	return nil, &NotFoundError{Spec: spec}
}

// IterPackageFiles yields every source-or-extension file directly inside
// the package directory for spec (non-recursive; C4 recurses through
// imports, not the filesystem).
func (s *Service) IterPackageFiles(spec string) ([]string, error) {
	resolved, err := s.Find(spec)
	if err != nil {
		return nil, err
	}

	dir := resolved.Path
	if resolved.Kind != cst.KindNativeExtension {
		dir = filepath.Dir(resolved.Path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("module spec service: reading package dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".py", ".pyi", ".so", ".pyd", ".dll":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Combined merges every resolution root's index into one, first root wins
// on conflicts (matching the order Find searches them in). The file
// collector uses this to resolve relative imports and normalize
// project-internal imports without needing to know which root a file came
// from.
func (s *Service) Combined() *core.PackageIndex {
	merged := core.NewPackageIndex()
	for i := len(s.roots) - 1; i >= 0; i-- {
		for fqn, path := range s.roots[i].Modules {
			merged.AddModule(fqn, path)
		}
	}
	return merged
}

// Classify reports whether spec is first-party (rooted at TopPackage),
// standard-library, or third-party.
func (s *Service) Classify(spec string) Origin {
	if s.Stdlib != nil && s.Stdlib.HasModule(spec) {
		return Stdlib
	}
	if s.TopPackage != "" && (spec == s.TopPackage || strings.HasPrefix(spec, s.TopPackage+".")) {
		return FirstParty
	}
	return ThirdParty
}
