package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/modulespec"
)

// File is one entry in the collected corpus (§3 CollectedFiles): a module
// the bundle needs, whether resolved from disk, an opaque native extension,
// or a synthetic empty ancestor package marker injected to satisfy the
// ancestor-__init__ invariant.
type File struct {
	FQN       string
	Path      string
	Kind      cst.Kind
	Origin    modulespec.Origin
	Source    []byte
	Tree      *cst.Tree // nil for opaque native extensions
	Bindings  *core.ImportBindings
	Synthetic bool // true for an injected ancestor __init__ with no file on disk
}

// Result is the full output of a collection run: every collected file plus
// the FQNs in the order they were collected. The reference counter (C6)
// sorts modules into its own visitation order (refcount.orderedModules).
type Result struct {
	Files map[string]*File
	Order []string // FQNs, in collection order (not yet the C6 visitation order)
}

// Collector implements the file collector (C4): a worklist-driven
// transitive closure over a module's import graph.
type Collector struct {
	Service *modulespec.Service
}

// New builds a Collector over an already-constructed module spec service.
func New(service *modulespec.Service) *Collector {
	return &Collector{Service: service}
}

type workItem struct {
	fqn            string
	ancestorOfHint string // non-empty: directory to synthesize into if Find fails
}

// Collect runs C4's algorithm from entrySpec: seed the worklist with the
// entry spec and every file in its package, then transitively follow
// imports until the worklist is empty.
func (c *Collector) Collect(entrySpec string) (*Result, error) {
	idx := c.Service.Combined()

	seen := make(map[string]bool)
	ancestorDir := make(map[string]string)
	result := &Result{Files: make(map[string]*File)}

	var worklist []workItem
	worklist = append(worklist, workItem{fqn: entrySpec})

	if entryResolved, err := c.Service.Find(entrySpec); err == nil && entryResolved.Kind == cst.KindPackageInit {
		siblings, err := c.Service.IterPackageFiles(entrySpec)
		if err != nil {
			return nil, err
		}
		for _, path := range siblings {
			if fqn, ok := idx.FileToModule[path]; ok && fqn != entrySpec {
				worklist = append(worklist, workItem{fqn: fqn})
			}
		}
	}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		if seen[item.fqn] {
			continue
		}
		seen[item.fqn] = true

		resolved, err := c.Service.Find(item.fqn)
		if err != nil {
			if item.ancestorOfHint != "" {
				synthesizeAncestor(result, item.fqn, item.ancestorOfHint)
				continue
			}
			// Unresolvable import: leave it as a bare external reference
			// rather than aborting the run (§4.5's "no rewrite can fail
			// destructively" extends to collection of names we cannot locate).
			continue
		}

		file, err := c.load(resolved)
		if err != nil {
			return nil, err
		}
		result.Files[item.fqn] = file
		result.Order = append(result.Order, item.fqn)

		for _, ancestorFQN := range properAncestors(item.fqn) {
			if seen[ancestorFQN] {
				continue
			}
			dir := packageDirFor(resolved.Path, resolved.Kind, item.fqn, ancestorFQN)
			ancestorDir[ancestorFQN] = dir
			worklist = append(worklist, workItem{fqn: ancestorFQN, ancestorOfHint: dir})
		}

		if file.Tree == nil {
			continue
		}
		for _, target := range file.Bindings.Bindings {
			origin := c.Service.Classify(target)
			if origin == modulespec.Stdlib {
				continue
			}
			if !seen[target] {
				worklist = append(worklist, workItem{fqn: target})
			}
		}
	}

	return result, nil
}

func (c *Collector) load(resolved *modulespec.ResolvedModule) (*File, error) {
	if resolved.Kind == cst.KindNativeExtension {
		source, err := os.ReadFile(resolved.Path)
		if err != nil {
			return nil, fmt.Errorf("collector: reading native extension %s: %w", resolved.Path, err)
		}
		return &File{FQN: resolved.FQN, Path: resolved.Path, Kind: resolved.Kind, Origin: resolved.Origin, Source: source}, nil
	}

	source, err := os.ReadFile(resolved.Path)
	if err != nil {
		return nil, fmt.Errorf("collector: reading %s: %w", resolved.Path, err)
	}

	tree, err := cst.Parse(source, resolved.Path)
	if err != nil {
		return nil, err
	}

	bindings, err := ExtractImportsFromTree(tree.Root, source, resolved.Path, c.Service.Combined())
	if err != nil {
		return nil, err
	}

	return &File{
		FQN:      resolved.FQN,
		Path:     resolved.Path,
		Kind:     resolved.Kind,
		Origin:   resolved.Origin,
		Source:   source,
		Tree:     tree,
		Bindings: bindings,
	}, nil
}

func synthesizeAncestor(result *Result, fqn, dir string) {
	path := filepath.Join(dir, "__init__.py")
	tree, _ := cst.Parse([]byte{}, path)
	result.Files[fqn] = &File{
		FQN:       fqn,
		Path:      path,
		Kind:      cst.KindPackageInit,
		Source:    []byte{},
		Tree:      tree,
		Bindings:  core.NewImportBindings(path),
		Synthetic: true,
	}
	result.Order = append(result.Order, fqn)
}

// properAncestors returns every prefix of fqn with fewer segments, ordered
// from the closest parent to the outermost ("a.b.c" -> ["a.b", "a"]).
func properAncestors(fqn string) []string {
	parts := strings.Split(fqn, ".")
	var ancestors []string
	for i := len(parts) - 1; i >= 1; i-- {
		ancestors = append(ancestors, strings.Join(parts[:i], "."))
	}
	return ancestors
}

// packageDirFor computes the on-disk directory that ancestorFQN's __init__
// would live in, derived from a resolved descendant's own path. dir starts
// out as the directory containing descendantPath, which already represents
// the package one level up from a regular module (len(parts)-1 segments) or
// the package of a package-init file itself (len(parts) segments, since the
// file IS that package's marker).
func packageDirFor(descendantPath string, descendantKind cst.Kind, descendantFQN, ancestorFQN string) string {
	dir := filepath.Dir(descendantPath)
	dirSegments := len(strings.Split(descendantFQN, "."))
	if descendantKind != cst.KindPackageInit {
		dirSegments--
	}

	ancestorSegments := len(strings.Split(ancestorFQN, "."))
	for dirSegments > ancestorSegments {
		dir = filepath.Dir(dir)
		dirSegments--
	}
	return dir
}
