package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmitra/pyshake/internal/collect"
	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/modulespec"
	"github.com/kmitra/pyshake/internal/rewrite"
)

// Options configures one Bundle run. ModuleSpec, Destination, VendorName,
// BundleMetadata and ResourceGlobs are the parameters §6 names directly;
// ResolutionRoots and TopPackage are the Go-native stand-in for the
// configuration collaborator's job of turning a dotted module spec into an
// actually-resolvable filesystem location (the core never parses a config
// file itself). Import aliases only matter to the reference counter (C6),
// so they belong to Treeshake, not here.
type Options struct {
	ModuleSpec      string
	ResolutionRoots []string
	TopPackage      string
	Destination     string
	VendorName      string
	BundleMetadata  map[string]string
	ResourceGlobs   []string
}

// Bundle resolves opts.ModuleSpec against opts.ResolutionRoots, collects its
// transitive import closure (C4), rewrites first-party modules' third-party
// references to the <top>.<vendor>.<path> form (C5), and writes the whole
// tree to opts.Destination: first-party modules at their own FQN-derived
// path, third-party modules vendored under <top>/<vendor>/, native
// extensions copied byte-for-byte alongside their .libs companion
// directory. A .gitignore containing a single "*" line and, when
// opts.BundleMetadata is non-empty, a metadata JSON file are written last.
func Bundle(opts Options, sink EventSink) (*Report, error) {
	sink = sinkOrNop(sink)
	report := &Report{}

	stdlib, err := core.LoadEmbeddedStdlibRegistry()
	if err != nil {
		return nil, fmt.Errorf("bundle: loading stdlib registry: %w", err)
	}

	service, err := modulespec.New(opts.ResolutionRoots, stdlib, opts.TopPackage)
	if err != nil {
		return nil, fmt.Errorf("bundle: building module spec service: %w", err)
	}

	result, err := collect.New(service).Collect(opts.ModuleSpec)
	if err != nil {
		return nil, fmt.Errorf("bundle: collecting %s: %w", opts.ModuleSpec, err)
	}

	for _, fqn := range result.Order {
		sink.FoundModule(fqn)
	}
	sink.TotalModules(len(result.Order))

	if err := os.MkdirAll(opts.Destination, 0o755); err != nil {
		return nil, fmt.Errorf("bundle: creating destination %s: %w", opts.Destination, err)
	}

	rewriter := rewrite.New(opts.TopPackage, opts.VendorName, service.Classify)

	for _, fqn := range result.Order {
		sink.ProcessModule(fqn)
		if err := writeModule(opts, result.Files[fqn], rewriter, report); err != nil {
			return nil, err
		}
	}

	if err := os.WriteFile(filepath.Join(opts.Destination, ".gitignore"), []byte("*\n"), 0o644); err != nil {
		return nil, fmt.Errorf("bundle: writing .gitignore: %w", err)
	}

	if err := copyResourceGlobs(opts, result, report); err != nil {
		return nil, err
	}

	if len(opts.BundleMetadata) > 0 {
		data, err := json.MarshalIndent(opts.BundleMetadata, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("bundle: encoding bundle metadata: %w", err)
		}
		if err := os.WriteFile(filepath.Join(opts.Destination, ".bundle-metadata.json"), data, 0o644); err != nil {
			return nil, fmt.Errorf("bundle: writing bundle metadata: %w", err)
		}
	}
	sink.BundledMetadata()

	report.ModulesBundled = len(result.Order)
	return report, nil
}

// writeModule renders one collected file to its destination path: a
// first-party module is import-rewritten and placed at its own FQN path; a
// third-party module is copied verbatim under <top>/<vendor>/; a native
// extension is copied as raw bytes, with its .libs companion directory
// mirrored alongside (or a warning if none exists).
func writeModule(opts Options, file *collect.File, rewriter *rewrite.Rewriter, report *Report) error {
	ext := filepath.Ext(file.Path)
	if ext == "" {
		ext = ".py"
	}

	relPath := fqnPath(file.FQN, file.Kind, ext)
	if file.Origin == modulespec.ThirdParty {
		relPath = filepath.Join(opts.TopPackage, opts.VendorName, relPath)
	}
	destPath := filepath.Join(opts.Destination, relPath)

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("bundle: creating directory for %s: %w", file.FQN, err)
	}

	if file.Kind == cst.KindNativeExtension {
		if err := os.WriteFile(destPath, file.Source, 0o644); err != nil {
			return fmt.Errorf("bundle: writing native extension %s: %w", file.FQN, err)
		}
		copyLibsCompanion(file.Path, destPath, file.FQN, report)
		return nil
	}

	out := file.Source
	if file.Origin == modulespec.FirstParty && file.Tree != nil {
		out = rewriter.Rewrite(file.Tree, file.Bindings)
	}

	if err := os.WriteFile(destPath, out, 0o644); err != nil {
		return fmt.Errorf("bundle: writing %s: %w", file.FQN, err)
	}
	return nil
}

// fqnPath derives a module's destination-relative path from its dotted FQN:
// a regular module "a.b.c" becomes "a/b/c<ext>"; a package marker becomes
// "a/b/c/__init__<ext>".
func fqnPath(fqn string, kind cst.Kind, ext string) string {
	parts := strings.Split(fqn, ".")
	if kind == cst.KindPackageInit {
		return filepath.Join(append(parts, "__init__"+ext)...)
	}
	if len(parts) == 1 {
		return parts[0] + ext
	}
	dir := filepath.Join(parts[:len(parts)-1]...)
	return filepath.Join(dir, parts[len(parts)-1]+ext)
}

// copyLibsCompanion mirrors a native extension's "<stem>.libs" sibling
// directory (the convention auditwheel/delvewheel use to ship a compiled
// extension's shared-library dependencies) next to destPath, recording a
// WarningMissingLibsCompanion if the source side has none.
func copyLibsCompanion(origPath, destPath, fqn string, report *Report) {
	stem := strings.TrimSuffix(filepath.Base(origPath), filepath.Ext(origPath))
	libsDir := filepath.Join(filepath.Dir(origPath), stem+".libs")

	info, err := os.Stat(libsDir)
	if err != nil || !info.IsDir() {
		report.warn(WarningMissingLibsCompanion, fqn,
			fmt.Sprintf("no .libs companion directory found for native extension %s", fqn))
		return
	}

	destLibsDir := filepath.Join(filepath.Dir(destPath), stem+".libs")
	if err := copyDirVerbatim(libsDir, destLibsDir); err != nil {
		report.warn(WarningMissingLibsCompanion, fqn,
			fmt.Sprintf("failed copying .libs companion directory for %s: %v", fqn, err))
	}
}

// copyResourceGlobs copies every non-Python file matching opts.ResourceGlobs
// found directly in a first-party package's on-disk directory to the
// matching destination directory, preserving the glob match's relative
// position within that directory.
func copyResourceGlobs(opts Options, result *collect.Result, report *Report) error {
	if len(opts.ResourceGlobs) == 0 {
		return nil
	}

	for onDiskDir, relDir := range firstPartyPackageDirs(result) {
		for _, pattern := range opts.ResourceGlobs {
			matches, err := filepath.Glob(filepath.Join(onDiskDir, pattern))
			if err != nil {
				return fmt.Errorf("bundle: resource glob %q: %w", pattern, err)
			}
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil || info.IsDir() {
					continue
				}
				if ext := filepath.Ext(match); ext == ".py" || ext == ".pyi" {
					continue
				}
				rel, err := filepath.Rel(onDiskDir, match)
				if err != nil {
					continue
				}
				destPath := filepath.Join(opts.Destination, relDir, rel)
				if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
					return fmt.Errorf("bundle: creating resource directory: %w", err)
				}
				data, err := os.ReadFile(match)
				if err != nil {
					return fmt.Errorf("bundle: reading resource %s: %w", match, err)
				}
				if err := os.WriteFile(destPath, data, 0o644); err != nil {
					return fmt.Errorf("bundle: writing resource %s: %w", destPath, err)
				}
			}
		}
	}
	return nil
}

// firstPartyPackageDirs maps each on-disk directory holding a first-party
// module to its destination-relative directory, so resource globs (which
// match on-disk siblings the import graph never names) can be placed
// correctly.
func firstPartyPackageDirs(result *collect.Result) map[string]string {
	dirs := make(map[string]string)
	for _, fqn := range result.Order {
		f := result.Files[fqn]
		if f.Origin != modulespec.FirstParty || f.Kind == cst.KindNativeExtension {
			continue
		}
		ext := filepath.Ext(f.Path)
		if ext == "" {
			ext = ".py"
		}
		dirs[filepath.Dir(f.Path)] = filepath.Dir(fqnPath(f.FQN, f.Kind, ext))
	}
	return dirs
}
