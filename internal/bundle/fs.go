package bundle

import (
	"io/fs"
	"os"
	"path/filepath"
)

// copyDirVerbatim recursively copies every file under src to dst, preserving
// the directory structure. Used for native extensions' .libs companion
// directories, which Bundle never parses or rewrites.
func copyDirVerbatim(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
