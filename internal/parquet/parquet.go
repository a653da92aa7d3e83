// Package parquet exports analysis data to Parquet files using
// github.com/parquet-go/parquet-go, for downstream BI and notebook tooling.
package parquet

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/essalab/essa/schema"
)

// ResidueScore is one scanned residue's scores in long format.
type ResidueScore struct {
	// Title is the structure the scan ran on
	Title string `parquet:"title,snappy"`

	// Chain is the residue's chain identifier
	Chain string `parquet:"chain,snappy"`

	// ResNum is the residue sequence number within the chain
	ResNum int32 `parquet:"resnum,snappy"`

	// ResIndex is the zero-based residue index over the whole structure
	ResIndex int32 `parquet:"resindex,snappy"`

	// MeanShift is the raw mean percentage eigenvalue shift
	MeanShift float64 `parquet:"mean_shift,snappy"`

	// Zscore is the standardized essentiality score
	Zscore float64 `parquet:"zscore,snappy"`

	// Label is the plain-text score band (Essential, High, Neutral, Low)
	Label string `parquet:"label,snappy"`
}

// PocketFeatureRow is one (pocket, feature) cell of the feature table in
// long format.
type PocketFeatureRow struct {
	PocketNumber int32   `parquet:"pocket_number,snappy"`
	Feature      string  `parquet:"feature,snappy"`
	Value        float64 `parquet:"value,snappy"`
}

// PocketZScoreRow is one pocket's derived scores.
type PocketZScoreRow struct {
	PocketNumber int32   `parquet:"pocket_number,snappy"`
	ESSAMax      float64 `parquet:"essa_max,snappy"`
	ESSAMedian   float64 `parquet:"essa_median,snappy"`
	LHDZscore    float64 `parquet:"lhd_zscore,snappy"`
}

// StoredScanRow is one persisted scan-store entry for export.
type StoredScanRow struct {
	Key       string `parquet:"key,snappy"`
	Payload   string `parquet:"payload,snappy"` // JSON scan result
	Version   int32  `parquet:"version,snappy"`
	Timestamp int64  `parquet:"timestamp,snappy"`
}

// WriteResidueScoresParquet writes a slice of ResidueScore structs to a
// Parquet file.
func WriteResidueScoresParquet(data []ResidueScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePocketFeaturesParquet writes a slice of PocketFeatureRow structs to
// a Parquet file.
func WritePocketFeaturesParquet(data []PocketFeatureRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePocketZScoresParquet writes a slice of PocketZScoreRow structs to a
// Parquet file.
func WritePocketZScoresParquet(data []PocketZScoreRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteStoredScansParquet writes a slice of StoredScanRow structs to a
// Parquet file.
func WriteStoredScansParquet(data []StoredScanRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadResidueScoresParquet reads back rows written by
// WriteResidueScoresParquet.
func ReadResidueScoresParquet(path string) ([]ResidueScore, error) {
	return readParquet[ResidueScore](path)
}

// ReadPocketFeaturesParquet reads back rows written by
// WritePocketFeaturesParquet.
func ReadPocketFeaturesParquet(path string) ([]PocketFeatureRow, error) {
	return readParquet[PocketFeatureRow](path)
}

// ReadPocketZScoresParquet reads back rows written by
// WritePocketZScoresParquet.
func ReadPocketZScoresParquet(path string) ([]PocketZScoreRow, error) {
	return readParquet[PocketZScoreRow](path)
}

// ReadStoredScansParquet reads back rows written by WriteStoredScansParquet.
func ReadStoredScansParquet(path string) ([]StoredScanRow, error) {
	return readParquet[StoredScanRow](path)
}

func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema inference from struct tags
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

func readParquet[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	out := make([]T, reader.NumRows())
	if len(out) == 0 {
		return out, nil
	}
	n, err := reader.Read(out)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	if n != len(out) {
		return nil, fmt.Errorf("read %d of %d parquet rows", n, len(out))
	}
	return out, nil
}

// ConvertScanResult flattens a scan result into residue score rows, with a
// label resolver so the caller decides the banding function.
func ConvertScanResult(res *schema.ScanResult, label func(zscore float64) string) []ResidueScore {
	rows := make([]ResidueScore, len(res.Residues))
	for i, r := range res.Residues {
		rows[i] = ResidueScore{
			Title:     res.Title,
			Chain:     r.Chain,
			ResNum:    int32(r.ResNum),
			ResIndex:  int32(r.ResIndex),
			MeanShift: res.MeanShifts[i],
			Zscore:    res.Zscores[i],
			Label:     label(res.Zscores[i]),
		}
	}
	return rows
}

// ConvertFeatureTable flattens a pocket feature table into long-format rows.
func ConvertFeatureTable(t *schema.PocketFeatureTable) []PocketFeatureRow {
	rows := make([]PocketFeatureRow, 0, len(t.Numbers)*len(t.Columns))
	for i, num := range t.Numbers {
		for j, col := range t.Columns {
			rows = append(rows, PocketFeatureRow{
				PocketNumber: int32(num),
				Feature:      col,
				Value:        t.Rows[i][j],
			})
		}
	}
	return rows
}

// FeatureTableFromRows rebuilds the wide feature table from long-format
// rows, preserving pocket and feature order.
func FeatureTableFromRows(rows []PocketFeatureRow) *schema.PocketFeatureTable {
	t := &schema.PocketFeatureTable{}
	index := make(map[int]int)
	for _, r := range rows {
		num := int(r.PocketNumber)
		i, ok := index[num]
		if !ok {
			i = len(t.Numbers)
			index[num] = i
			t.Numbers = append(t.Numbers, num)
			t.Rows = append(t.Rows, nil)
		}
		if i == 0 {
			t.Columns = append(t.Columns, r.Feature)
		}
		t.Rows[i] = append(t.Rows[i], r.Value)
	}
	return t
}

// ConvertZScoreTable flattens a pocket z-score table into rows.
func ConvertZScoreTable(t *schema.PocketZScoreTable) []PocketZScoreRow {
	rows := make([]PocketZScoreRow, t.Len())
	for i := range rows {
		rows[i] = PocketZScoreRow{
			PocketNumber: int32(t.Numbers[i]),
			ESSAMax:      t.ESSAMax[i],
			ESSAMedian:   t.ESSAMed[i],
			LHDZscore:    t.LHD[i],
		}
	}
	return rows
}

// ZScoreTableFromRows rebuilds the pocket z-score table from rows.
func ZScoreTableFromRows(rows []PocketZScoreRow) *schema.PocketZScoreTable {
	t := &schema.PocketZScoreTable{}
	for _, r := range rows {
		t.Numbers = append(t.Numbers, int(r.PocketNumber))
		t.ESSAMax = append(t.ESSAMax, r.ESSAMax)
		t.ESSAMed = append(t.ESSAMed, r.ESSAMedian)
		t.LHD = append(t.LHD, r.LHDZscore)
	}
	return t
}

// ConvertStoredScans converts store rows for export.
func ConvertStoredScans(scans []schema.StoredScan) []StoredScanRow {
	rows := make([]StoredScanRow, len(scans))
	for i, s := range scans {
		rows[i] = StoredScanRow{
			Key:       s.Key,
			Payload:   string(s.Payload),
			Version:   int32(s.Version),
			Timestamp: s.Timestamp,
		}
	}
	return rows
}
