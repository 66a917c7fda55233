package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmitra/pyshake/internal/collect"
	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/prune"
	"github.com/kmitra/pyshake/internal/refcount"
	"github.com/kmitra/pyshake/internal/resolve"
)

// parsedModule is one file Treeshake has read and parsed, kept around
// between the counting and pruning passes so each file is parsed only once.
type parsedModule struct {
	fqn      string
	path     string
	kind     cst.Kind
	tree     *cst.Tree
	bindings *core.ImportBindings
	stmts    []*core.TopLevelStatement
}

// Treeshake indexes every Python file under sourceDir (already a
// self-contained tree, such as one Bundle just produced), runs the
// whole-program reference fixpoint (C6) seeded from preserveSymbols and
// importAliases, then prunes every dead definition, assignment and import
// (C7) in place, deleting files and now-empty package directories left
// behind. The returned Report's StatementsRemoved field is §6's
// count_of_removed_statements. extraSafeDecorators extends
// refcount.DefaultSafeDecorators with names the configuration collaborator
// (the config package's safe-decorator allowlist) adds on top of the
// built-in list.
func Treeshake(sourceDir string, importAliases *core.ImportAliasMap, preserveSymbols []string, extraSafeDecorators []string, sink EventSink) (*Report, error) {
	sink = sinkOrNop(sink)
	report := &Report{}

	idx, err := core.BuildPackageIndex(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("treeshake: indexing %s: %w", sourceDir, err)
	}

	modules, definedByModule, err := parseModules(idx)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		sink.FoundModule(m.fqn)
	}
	sink.TotalModules(len(modules))

	preservation := core.NewPreservationSet()
	for _, symbol := range preserveSymbols {
		preservation.Add(symbol)
	}

	refModules := make([]*refcount.Module, 0, len(modules))
	for _, m := range modules {
		sink.ProcessModule(m.fqn)
		refModules = append(refModules, &refcount.Module{
			FQN:        m.fqn,
			IsMain:     isEntryPoint(m.fqn),
			Statements: m.stmts,
		})
	}

	safe := refcount.DefaultSafeDecorators()
	for name := range refcount.NewSafeDecorators(extraSafeDecorators...) {
		safe[name] = struct{}{}
	}
	refIdx := refcount.Count(refModules, preservation, importAliases, safe)
	sink.ReferencesIteration(1)

	checkUnobservedPreservation(preserveSymbols, definedByModule, report)
	checkAmbiguousDecorators(modules, refIdx, safe, report)

	removed := 0
	for _, m := range modules {
		result := prune.Module(m.tree, m.stmts, refIdx)
		sink.NodesRemoval(m.fqn)
		removed += result.Removed

		if err := os.WriteFile(m.path, result.Source, 0o644); err != nil {
			return nil, fmt.Errorf("treeshake: writing %s: %w", m.path, err)
		}
		if err := prune.DeleteEmptyFile(m.path, result.Empty, m.kind); err != nil {
			return nil, fmt.Errorf("treeshake: deleting %s: %w", m.path, err)
		}
		if result.Empty {
			if err := prune.CleanEmptyPackageDirs(filepath.Dir(m.path), sourceDir); err != nil {
				return nil, fmt.Errorf("treeshake: cleaning package dirs: %w", err)
			}
		}
	}

	report.StatementsRemoved = removed
	return report, nil
}

// parseModules reads and parses every .py file BuildPackageIndex found,
// returning each as a parsedModule plus the union of every FQN defined
// anywhere (used to flag unobserved preservation symbols).
func parseModules(idx *core.PackageIndex) ([]*parsedModule, map[string]struct{}, error) {
	var modules []*parsedModule
	defined := make(map[string]struct{})

	for fqn, path := range idx.Modules {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("treeshake: reading %s: %w", path, err)
		}

		tree, err := cst.Parse(source, path)
		if err != nil {
			return nil, nil, err
		}

		bindings, err := collect.ExtractImportsFromTree(tree.Root, source, path, idx)
		if err != nil {
			return nil, nil, err
		}

		scope := resolve.BuildModuleScope(tree.Root, tree.Source, fqn, bindings)
		stmts := refcount.ExtractModule(tree.Root, tree.Source, scope, bindings)

		for _, stmt := range stmts {
			collectDefinedFQNs(stmt, defined)
		}

		modules = append(modules, &parsedModule{
			fqn:      fqn,
			path:     path,
			kind:     cst.KindOf(path),
			tree:     tree,
			bindings: bindings,
			stmts:    stmts,
		})
	}

	return modules, defined, nil
}

func collectDefinedFQNs(stmt *core.TopLevelStatement, out map[string]struct{}) {
	for _, fqn := range stmt.DefinedFQNs {
		out[fqn] = struct{}{}
	}
	for _, nested := range stmt.Nested {
		collectDefinedFQNs(nested, out)
	}
}

// isEntryPoint reports whether fqn names a module Python itself treats as a
// script entry point (a "__main__.py" file, run via `python -m package` or
// directly), whose top-level code must run unconditionally rather than be
// judged by reference counting.
func isEntryPoint(fqn string) bool {
	return fqn == "__main__" || strings.HasSuffix(fqn, ".__main__")
}

func checkUnobservedPreservation(symbols []string, defined map[string]struct{}, report *Report) {
	for _, symbol := range symbols {
		if _, ok := defined[symbol]; !ok {
			report.warn(WarningUnobservedPreservationSymbol, symbol,
				fmt.Sprintf("preservation symbol %q never matched a definition in the scanned tree", symbol))
		}
	}
}

func checkAmbiguousDecorators(modules []*parsedModule, idx *core.ReferenceIndex, safe refcount.SafeDecorators, report *Report) {
	for _, m := range modules {
		walkAmbiguousDecorators(m.fqn, m.stmts, idx, safe, report)
	}
}

func walkAmbiguousDecorators(module string, stmts []*core.TopLevelStatement, idx *core.ReferenceIndex, safe refcount.SafeDecorators, report *Report) {
	for _, stmt := range stmts {
		if stmt.Type == core.StatementTypeFunctionDef || stmt.Type == core.StatementTypeClassDef {
			if !idx.AnyReferenced(stmt.DefinedFQNs) && stmt.HasUnsafeDecorator(safe) {
				report.warn(WarningAmbiguousDecorator, module,
					fmt.Sprintf("%s kept alive only by an unrecognized decorator; verify it is dynamically invoked", strings.Join(stmt.DefinedFQNs, ", ")))
			}
		}
		walkAmbiguousDecorators(module, stmt.Nested, idx, safe, report)
	}
}
