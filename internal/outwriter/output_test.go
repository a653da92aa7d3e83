package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

func scanResultFixture() *schema.ScanResult {
	return &schema.ScanResult{
		Title:  "1abc",
		Params: schema.ScanParams{ENM: schema.GNM, NModes: 10, Cutoff: 10, Gamma: 1},
		Residues: []schema.ResidueID{
			{Chain: "A", ResNum: 1, ResIndex: 0},
			{Chain: "A", ResNum: 2, ResIndex: 1},
			{Chain: "A", ResNum: 3, ResIndex: 2},
		},
		MeanShifts: []float64{5.0, 15.0, 10.0},
		Zscores:    []float64{-1.2, 1.2, 0.0},
		Lookup:     map[string]int{"A1": 0, "A2": 1, "A3": 2},
	}
}

// TestTopScanRows tests z-score ordering, tie stability and the limit cap.
func TestTopScanRows(t *testing.T) {
	res := scanResultFixture()

	rows := topScanRows(res, 0)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].ResNum)
	assert.Equal(t, 3, rows[1].ResNum)
	assert.Equal(t, 1, rows[2].ResNum)

	t.Run("limit applies", func(t *testing.T) {
		rows := topScanRows(res, 2)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].ResNum)
	})

	t.Run("ties keep scan order", func(t *testing.T) {
		tied := scanResultFixture()
		tied.Zscores = []float64{1.0, 1.0, 1.0}
		rows := topScanRows(tied, 0)
		assert.Equal(t, 1, rows[0].ResNum)
		assert.Equal(t, 2, rows[1].ResNum)
		assert.Equal(t, 3, rows[2].ResNum)
	})
}

// TestWriteScanCSV tests the CSV layout of the residue report.
func TestWriteScanCSV(t *testing.T) {
	rows := topScanRows(scanResultFixture(), 0)
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, writeScanCSV(w, rows, fmtFloat))
	w.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"rank", "chain", "resnum", "resindex", "mean_shift", "zscore", "label"}, records[0])
	assert.Equal(t, []string{"1", "A", "2", "1", "15.00", "1.20", contract.HighValue}, records[1])
	assert.Equal(t, []string{"2", "A", "3", "2", "10.00", "0.00", contract.NeutralValue}, records[2])
	assert.Equal(t, []string{"3", "A", "1", "0", "5.00", "-1.20", contract.LowValue}, records[3])
}

// TestWriteScanJSON tests the JSON shape of the residue report.
func TestWriteScanJSON(t *testing.T) {
	rows := topScanRows(scanResultFixture(), 0)

	var buf bytes.Buffer
	require.NoError(t, writeScanJSON(&buf, rows))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, float64(1), decoded[0]["rank"])
	assert.Equal(t, contract.HighValue, decoded[0]["label"])
	assert.Equal(t, "A", decoded[0]["chain"])
	assert.Equal(t, float64(2), decoded[0]["resnum"])
	assert.Equal(t, 1.2, decoded[0]["zscore"])
}

// TestWriteScanTable tests the table output and its footer lines.
func TestWriteScanTable(t *testing.T) {
	res := scanResultFixture()
	rows := topScanRows(res, 2)
	cfg := &contract.Config{Workers: 4, StoreBackend: schema.SQLiteBackend, UseColors: false}
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeScanTable(rows, res, cfg, fmtFloat, 250*time.Millisecond, &buf))

	out := buf.String()
	assert.Contains(t, out, "Z-SCORE")
	assert.Contains(t, out, contract.HighValue)
	assert.Contains(t, out, "Showing top 2 of 3 residues (gnm, 10 modes, cutoff 10)")
	assert.Contains(t, out, "with 4 workers")
	assert.Contains(t, out, "Store backend: sqlite")
}

func pocketFixtures() (*schema.PocketZScoreTable, *schema.PocketRankTable) {
	z := &schema.PocketZScoreTable{
		Numbers: []int{1, 2},
		ESSAMax: []float64{2.5, 1.5},
		ESSAMed: []float64{1.0, 0.5},
		LHD:     []float64{1.0, -1.0},
	}
	ranks := &schema.PocketRankTable{ByMax: []int{1}, ByMed: []int{1}, Threshold: 0}
	return z, ranks
}

// TestWritePocketCSV tests the CSV layout of the pocket report.
func TestWritePocketCSV(t *testing.T) {
	z, _ := pocketFixtures()
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, writePocketCSV(w, pocketRows(z), fmtFloat))
	w.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"pocket", "essa_max", "essa_median", "lhd_zscore"}, records[0])
	assert.Equal(t, []string{"1", "2.50", "1.00", "1.00"}, records[1])
	assert.Equal(t, []string{"2", "1.50", "0.50", "-1.00"}, records[2])
}

// TestWritePocketJSON tests the JSON shape of the pocket report.
func TestWritePocketJSON(t *testing.T) {
	z, ranks := pocketFixtures()

	var buf bytes.Buffer
	require.NoError(t, writePocketJSON(&buf, pocketRows(z), ranks))

	var decoded struct {
		Pockets []map[string]any        `json:"pockets"`
		Ranks   schema.PocketRankTable  `json:"ranks"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Pockets, 2)
	assert.Equal(t, float64(1), decoded.Pockets[0]["number"])
	assert.Equal(t, []int{1}, decoded.Ranks.ByMax)
}

// TestWritePocketTables tests the two tables and the filter footer.
func TestWritePocketTables(t *testing.T) {
	z, ranks := pocketFixtures()
	cfg := &contract.Config{Workers: 2, StoreBackend: schema.NoneBackend}
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writePocketTables(pocketRows(z), ranks, cfg, fmtFloat, time.Second, &buf))

	out := buf.String()
	assert.Contains(t, out, "POCKET")
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "1 of 2 pockets passed the hydrophobic density filter (threshold 0.00)")
}

// TestWriteStoreStatus tests the text rendering of the store status.
func TestWriteStoreStatus(t *testing.T) {
	now := time.Now().Unix()
	status := schema.StoreStatus{
		Backend:    "sqlite",
		Connected:  true,
		EntryCount: 3,
		OldestUnix: now - 100,
		NewestUnix: now,
		Location:   "/tmp/essa-store.db",
	}

	path := filepath.Join(t.TempDir(), "status.txt")
	cfg := &contract.Config{Output: schema.TextOut, OutputFile: path}
	require.NoError(t, WriteStoreStatus(status, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Backend:   sqlite")
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Entries:   3")
	assert.Contains(t, out, "Oldest:")
	assert.Contains(t, out, "Newest:")
}

// TestWriteScanResultsDispatch tests format dispatch through the public
// entry point, writing to files to keep stdout clean.
func TestWriteScanResultsDispatch(t *testing.T) {
	res := scanResultFixture()
	dir := t.TempDir()

	t.Run("csv file", func(t *testing.T) {
		path := filepath.Join(dir, "scan.csv")
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, ResultLimit: 25, Precision: 2}
		require.NoError(t, WriteScanResults(res, cfg, time.Second))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "rank,chain,resnum"))
	})

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(dir, "scan.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, ResultLimit: 25, Precision: 2}
		require.NoError(t, WriteScanResults(res, cfg, time.Second))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded, 3)
	})

	t.Run("parquet requires output file", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut, ResultLimit: 25, Precision: 2}
		err := WriteScanResults(res, cfg, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output-file")
	})

	t.Run("parquet file", func(t *testing.T) {
		path := filepath.Join(dir, "scan.parquet")
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path, ResultLimit: 25, Precision: 2}
		require.NoError(t, WriteScanResults(res, cfg, time.Second))
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, fi.Size(), int64(0))
	})
}

// TestCreateFormatters tests precision handling of the float formatter.
func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(3)
	assert.Equal(t, "1.500", fmtFloat(1.5))
	assert.Equal(t, "%d", intFmt)

	fmtFloat, _ = createFormatters(0)
	assert.Equal(t, "2", fmtFloat(1.5))
}
