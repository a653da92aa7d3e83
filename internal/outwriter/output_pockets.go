package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/parquet"
	"github.com/essalab/essa/schema"
)

// pocketRow is one pocket of the z-score report, in pocket-number order.
type pocketRow struct {
	Number  int     `json:"number"`
	ESSAMax float64 `json:"essa_max"`
	ESSAMed float64 `json:"essa_median"`
	LHD     float64 `json:"lhd_zscore"`
}

// WritePocketResults outputs the pocket z-scores and both rankings,
// dispatching based on the output format configured.
func WritePocketResults(z *schema.PocketZScoreTable, ranks *schema.PocketRankTable, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	rows := pocketRows(z)

	switch cfg.Output {
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return parquet.WritePocketZScoresParquet(parquet.ConvertZScoreTable(z), cfg.OutputFile)
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePocketJSON(w, rows, ranks)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writePocketCSV(csvWriter, rows, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePocketTables(rows, ranks, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

func pocketRows(z *schema.PocketZScoreTable) []pocketRow {
	rows := make([]pocketRow, z.Len())
	for i := range rows {
		rows[i] = pocketRow{
			Number:  z.Numbers[i],
			ESSAMax: z.ESSAMax[i],
			ESSAMed: z.ESSAMed[i],
			LHD:     z.LHD[i],
		}
	}
	return rows
}

// writePocketTables writes the per-pocket score table followed by the two
// aligned rank columns.
func writePocketTables(rows []pocketRow, ranks *schema.PocketRankTable, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	scores := tablewriter.NewWriter(writer)
	scores.Header([]string{"Pocket", "ESSA (max)", "ESSA (median)", "LHD z-score"})
	scores.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
		tc.MaxWidth = GetTerminalWidth(cfg)
	})

	var data [][]string
	for _, r := range rows {
		data = append(data, []string{
			strconv.Itoa(r.Number),
			fmtFloat(r.ESSAMax),
			fmtFloat(r.ESSAMed),
			fmtFloat(r.LHD),
		})
	}
	if err := scores.Bulk(data); err != nil {
		return err
	}
	if err := scores.Render(); err != nil {
		return err
	}

	ranking := tablewriter.NewWriter(writer)
	ranking.Header([]string{"Rank", "Pocket (by max)", "Pocket (by median)"})
	ranking.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
		tc.MaxWidth = GetTerminalWidth(cfg)
	})
	data = data[:0]
	for i := 0; i < ranks.Len(); i++ {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(ranks.ByMax[i]),
			strconv.Itoa(ranks.ByMed[i]),
		})
	}
	if err := ranking.Bulk(data); err != nil {
		return err
	}
	if err := ranking.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "%d of %d pockets passed the hydrophobic density filter (threshold %s)\n",
		ranks.Len(), len(rows), fmtFloat(ranks.Threshold)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. Store backend: %s\n",
		duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writePocketCSV writes the pocket scores in CSV format.
func writePocketCSV(w *csv.Writer, rows []pocketRow, fmtFloat func(float64) string) error {
	header := []string{"pocket", "essa_max", "essa_median", "lhd_zscore"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Number),
			fmtFloat(r.ESSAMax),
			fmtFloat(r.ESSAMed),
			fmtFloat(r.LHD),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writePocketJSON writes the pocket scores and rankings in JSON format.
func writePocketJSON(w io.Writer, rows []pocketRow, ranks *schema.PocketRankTable) error {
	output := struct {
		Pockets []pocketRow             `json:"pockets"`
		Ranks   *schema.PocketRankTable `json:"ranks"`
	}{rows, ranks}
	return writeJSON(w, output)
}

// WriteStoreStatus prints the scan store status in the configured format.
func WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "Backend:   %s\n", status.Backend); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Connected: %v\n", status.Connected); err != nil {
			return err
		}
		if status.Location != "" {
			if _, err := fmt.Fprintf(w, "Location:  %s\n", status.Location); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Entries:   %d\n", status.EntryCount); err != nil {
			return err
		}
		if status.EntryCount > 0 {
			if _, err := fmt.Fprintf(w, "Oldest:    %s\n", time.Unix(status.OldestUnix, 0).Format(time.RFC3339)); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Newest:    %s\n", time.Unix(status.NewestUnix, 0).Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return nil
	}, "Wrote status")
}
