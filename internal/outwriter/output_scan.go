package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/parquet"
	"github.com/essalab/essa/schema"
)

// scanRow is one residue of the score report, ordered by z-score.
type scanRow struct {
	Chain     string  `json:"chain"`
	ResNum    int     `json:"resnum"`
	ResIndex  int     `json:"resindex"`
	MeanShift float64 `json:"mean_shift"`
	Zscore    float64 `json:"zscore"`
}

// WriteScanResults outputs the residue scan results, dispatching based on
// the output format configured.
func WriteScanResults(res *schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	rows := topScanRows(res, cfg.ResultLimit)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		data := parquet.ConvertScanResult(res, contract.GetPlainLabel)
		return parquet.WriteResidueScoresParquet(data, cfg.OutputFile)
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScanJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeScanCSV(csvWriter, rows, fmtFloat)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScanTable(rows, res, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// topScanRows orders the scanned residues by z-score descending and keeps
// the top limit entries. Ties keep scan order since the sort is stable.
func topScanRows(res *schema.ScanResult, limit int) []scanRow {
	rows := make([]scanRow, len(res.Residues))
	for i, r := range res.Residues {
		rows[i] = scanRow{
			Chain:     r.Chain,
			ResNum:    r.ResNum,
			ResIndex:  r.ResIndex,
			MeanShift: res.MeanShifts[i],
			Zscore:    res.Zscores[i],
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Zscore > rows[j].Zscore })
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// writeScanTable generates and writes the human-readable table.
func writeScanTable(rows []scanRow, res *schema.ScanResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Rank", "Chain", "Resnum", "Shift %", "Z-score", "Label"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
		tc.MaxWidth = GetTerminalWidth(cfg)
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	var data [][]string
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Chain,
			strconv.Itoa(r.ResNum),
			fmtFloat(r.MeanShift),
			fmtFloat(r.Zscore),
			label(r.Zscore),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing top %d of %d residues (%s, %d modes, cutoff %g)\n",
		len(rows), len(res.Residues), res.Params.ENM, res.Params.NModes, res.Params.Cutoff); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Scan completed in %v with %d workers. Store backend: %s\n",
		duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeScanCSV writes the scan results in CSV format.
func writeScanCSV(w *csv.Writer, rows []scanRow, fmtFloat func(float64) string) error {
	header := []string{"rank", "chain", "resnum", "resindex", "mean_shift", "zscore", "label"}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range rows {
		rec := []string{
			strconv.Itoa(i + 1),
			r.Chain,
			strconv.Itoa(r.ResNum),
			strconv.Itoa(r.ResIndex),
			fmtFloat(r.MeanShift),
			fmtFloat(r.Zscore),
			contract.GetPlainLabel(r.Zscore),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeScanJSON writes the scan results in JSON format.
func writeScanJSON(w io.Writer, rows []scanRow) error {
	type jsonScanRow struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		scanRow
	}
	output := make([]jsonScanRow, len(rows))
	for i, r := range rows {
		output[i] = jsonScanRow{
			Rank:    i + 1,
			Label:   contract.GetPlainLabel(r.Zscore),
			scanRow: r,
		}
	}
	return writeJSON(w, output)
}
