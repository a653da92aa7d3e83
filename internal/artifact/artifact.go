// Package artifact reads and writes the on-disk outputs of a completed
// analysis: score vectors, residue lookups, mode ensembles, annotated
// structures and pocket tables. Every writer has a matching reader.
package artifact

import (
	"os"
	"path/filepath"
)

// EnsureDir creates the output directory for a saved analysis.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Path joins the output directory with an artifact file name.
func Path(dir, name string) string {
	return filepath.Join(dir, name)
}
