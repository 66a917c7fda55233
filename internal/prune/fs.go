package prune

import (
	"os"
	"path/filepath"

	"github.com/kmitra/pyshake/internal/cst"
)

// DeleteEmptyFile removes path if empty is true and kind is not a package
// __init__ (those are handled by CleanEmptyPackageDirs instead, since an
// __init__ can be empty yet still needed to mark its directory a package).
func DeleteEmptyFile(path string, empty bool, kind cst.Kind) error {
	if !empty || kind == cst.KindPackageInit {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CleanEmptyPackageDirs walks upward from dir, removing any __init__.py
// whose directory has become empty save for itself, then continuing to the
// parent directory, recursively, per §4.7. It stops at root (exclusive) or
// at the first directory that still holds something else.
func CleanEmptyPackageDirs(dir, root string) error {
	for {
		if dir == root {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		switch {
		case len(entries) == 0:
			if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
				return err
			}
		case len(entries) == 1 && entries[0].Name() == "__init__.py":
			initPath := filepath.Join(dir, "__init__.py")
			if err := os.Remove(initPath); err != nil && !os.IsNotExist(err) {
				return err
			}
			if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
				return err
			}
		default:
			return nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}
