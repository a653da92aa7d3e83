package artifact

import (
	"encoding/json"
	"os"

	"github.com/essalab/essa/schema"
)

// WriteLookupJSON saves the chain+resnum -> residue index lookup.
func WriteLookupJSON(path string, lookup map[string]int) error {
	return writeJSON(path, lookup)
}

// ReadLookupJSON loads a residue lookup saved by WriteLookupJSON.
func ReadLookupJSON(path string) (map[string]int, error) {
	out := make(map[string]int)
	if err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteEnsembleJSON saves a mode ensemble.
func WriteEnsembleJSON(path string, e *schema.ModeEnsemble) error {
	return writeJSON(path, e)
}

// ReadEnsembleJSON loads a mode ensemble saved by WriteEnsembleJSON.
func ReadEnsembleJSON(path string) (*schema.ModeEnsemble, error) {
	var e schema.ModeEnsemble
	if err := readJSON(path, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// WriteScanResultJSON saves a full scan result.
func WriteScanResultJSON(path string, res *schema.ScanResult) error {
	return writeJSON(path, res)
}

// ReadScanResultJSON loads a scan result saved by WriteScanResultJSON.
func ReadScanResultJSON(path string) (*schema.ScanResult, error) {
	var res schema.ScanResult
	if err := readJSON(path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewDecoder(f).Decode(v)
}
