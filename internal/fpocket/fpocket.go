// Package fpocket runs the fpocket surface-pocket detector and parses its
// per-pocket output files.
package fpocket

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// LocalDetector implements the PocketDetector interface by executing the
// local fpocket binary installed on the machine.
type LocalDetector struct {
	// Binary overrides the executable name looked up on PATH.
	Binary string
}

var _ contract.PocketDetector = &LocalDetector{} // Compile-time check

// NewLocalDetector creates a detector for the given binary; an empty name
// means "fpocket" from PATH.
func NewLocalDetector(binary string) *LocalDetector {
	if binary == "" {
		binary = "fpocket"
	}
	return &LocalDetector{Binary: binary}
}

// Available reports whether the detector binary can be found.
func (d *LocalDetector) Available() bool {
	_, err := exec.LookPath(d.Binary)
	return err == nil
}

// Detect runs `fpocket -f <pdbPath>` and parses the resulting pocket files.
// fpocket writes its output next to the input as <name>_out/pockets/.
func (d *LocalDetector) Detect(ctx context.Context, pdbPath, workDir string) ([]schema.Pocket, error) {
	bin, err := exec.LookPath(d.Binary)
	if err != nil {
		return nil, fmt.Errorf("fpocket not found on PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, bin, "-f", pdbPath)
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("fpocket exit: %s", strings.TrimSpace(string(out)))
		}
		return nil, fmt.Errorf("fpocket run: %w", err)
	}
	return ParseOutputDir(outputDirFor(pdbPath))
}

// outputDirFor maps an input file to fpocket's output directory,
// e.g. "1abc.pdb" -> "1abc_out".
func outputDirFor(pdbPath string) string {
	base := strings.TrimSuffix(pdbPath, filepath.Ext(pdbPath))
	return base + "_out"
}

// DirDetector implements the PocketDetector interface over a pre-existing
// fpocket output directory, so pocket ranking can run on machines without
// the detector installed.
type DirDetector struct {
	Dir string
}

var _ contract.PocketDetector = &DirDetector{} // Compile-time check

// NewDirDetector creates a detector that reads pockets from dir.
func NewDirDetector(dir string) *DirDetector {
	return &DirDetector{Dir: dir}
}

// Available reports whether the directory holds parseable pocket files.
func (d *DirDetector) Available() bool {
	files, err := pocketFiles(d.Dir)
	return err == nil && len(files) > 0
}

// Detect parses the configured output directory; pdbPath and workDir are
// ignored.
func (d *DirDetector) Detect(_ context.Context, _, _ string) ([]schema.Pocket, error) {
	return ParseOutputDir(d.Dir)
}
