//go:build basic

// Package integration contains integration tests for essa.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database-backed tests additionally need: go test -tags database ./integration
package integration

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanVerification runs a scan through the CLI and checks the CSV
// output against the statistical contract of the z-scores.
func TestScanVerification(t *testing.T) {
	const nRes = 12

	dir := t.TempDir()
	pdbPath, err := writeSyntheticPDB(dir, nRes)
	require.NoError(t, err)
	outFile := filepath.Join(dir, "scan.csv")

	_, err = runEssaCommand(t, "scan", pdbPath,
		"--output", "csv",
		"--output-file", outFile,
		"--limit", strconv.Itoa(nRes),
		"--workers", "2",
		"--no-cache")
	require.NoError(t, err)

	rows := readScanCSV(t, outFile)
	require.Len(t, rows, nRes)

	// Z-scores of a full scan have zero mean by construction.
	var sum float64
	prev := math.Inf(1)
	for _, row := range rows {
		sum += row.zscore
		assert.LessOrEqual(t, row.zscore, prev, "rows should be sorted by z-score")
		prev = row.zscore
	}
	assert.InDelta(t, 0.0, sum/float64(nRes), 1e-6)

	// Chain ends are the least constrained residues of a linear chain, so
	// the essential sites sit in the interior.
	assert.NotEqual(t, 1, rows[0].resnum)
	assert.NotEqual(t, nRes, rows[0].resnum)
}

// TestPocketsFallbackCLI runs the pockets command without fpocket installed
// and expects scan-only output instead of a failure.
func TestPocketsFallbackCLI(t *testing.T) {
	dir := t.TempDir()
	pdbPath, err := writeSyntheticPDB(dir, 8)
	require.NoError(t, err)

	out, err := runEssaCommand(t, "pockets", pdbPath,
		"--fpocket", filepath.Join(dir, "no-such-binary"),
		"--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Z-SCORE")
}

// TestVersionCommand checks the version subcommand output shape.
func TestVersionCommand(t *testing.T) {
	out, err := runEssaCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "essa")
}

type scanRow struct {
	rank   int
	resnum int
	zscore float64
}

// readScanCSV parses the CSV the scan command writes with --output csv.
func readScanCSV(t *testing.T, path string) []scanRow {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, []string{"rank", "chain", "resnum", "resindex", "mean_shift", "zscore", "label"}, records[0])

	rows := make([]scanRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rank, err := strconv.Atoi(rec[0])
		require.NoError(t, err)
		resnum, err := strconv.Atoi(rec[2])
		require.NoError(t, err)
		zscore, err := strconv.ParseFloat(rec[5], 64)
		require.NoError(t, err)
		rows = append(rows, scanRow{rank: rank, resnum: resnum, zscore: zscore})
	}
	return rows
}
