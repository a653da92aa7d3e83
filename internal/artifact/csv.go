package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/essalab/essa/schema"
)

// WriteRankCSV saves the pocket rank table with one row per rank and the
// two pocket-number columns side by side.
func WriteRankCSV(path string, t *schema.PocketRankTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"rank", "pocket_by_max", "pocket_by_median"}); err != nil {
		_ = f.Close()
		return err
	}
	for i := 0; i < t.Len(); i++ {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(t.ByMax[i]),
			strconv.Itoa(t.ByMed[i]),
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadRankCSV loads a rank table saved by WriteRankCSV. The threshold is
// not part of the CSV and comes back as zero.
func ReadRankCSV(path string) (*schema.PocketRankTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rank file %s is empty", path)
	}
	t := &schema.PocketRankTable{}
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("rank row %d has %d columns, want 3", i+1, len(row))
		}
		byMax, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("rank row %d: bad pocket number %q", i+1, row[1])
		}
		byMed, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("rank row %d: bad pocket number %q", i+1, row[2])
		}
		t.ByMax = append(t.ByMax, byMax)
		t.ByMed = append(t.ByMed, byMed)
	}
	return t, nil
}
