package fpocket

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/essalab/essa/schema"
)

// featureRe matches one scored feature line of a pocket file header,
// e.g. "HEADER 0  - Pocket Score                      : -0.2526".
var featureRe = regexp.MustCompile(`(\w+\s\w+\s*-\s*)(.+):\s*([\d.-]+)`)

// pocketFileRe extracts the pocket number from a per-pocket file name.
var pocketFileRe = regexp.MustCompile(`^pocket(\d+)_atm\.pdb$`)

// ParseOutputDir parses every pocket<N>_atm.pdb under an fpocket output
// directory, ascending by pocket number. The directory may be the run's
// root (containing a pockets/ subdirectory) or the pockets/ directory
// itself.
func ParseOutputDir(dir string) ([]schema.Pocket, error) {
	files, err := pocketFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no pocket files under %s", dir)
	}
	pockets := make([]schema.Pocket, 0, len(files))
	for _, pf := range files {
		f, err := os.Open(pf.path)
		if err != nil {
			return nil, err
		}
		p, err := ParsePocket(f, pf.number)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pf.path, err)
		}
		pockets = append(pockets, p)
	}
	return pockets, nil
}

type pocketFile struct {
	path   string
	number int
}

// pocketFiles lists the per-pocket files of an output directory, ascending
// by pocket number. The numeric sort matters: lexical order would put
// pocket10 before pocket2.
func pocketFiles(dir string) ([]pocketFile, error) {
	sub := filepath.Join(dir, "pockets")
	if fi, err := os.Stat(sub); err == nil && fi.IsDir() {
		dir = sub
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []pocketFile
	for _, e := range entries {
		m := pocketFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, pocketFile{path: filepath.Join(dir, e.Name()), number: n})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].number < files[j].number })
	return files, nil
}

// ParsePocket reads one pocket file: header feature lines in file order and
// the residues lining the pocket, deduplicated by chain and residue number.
func ParsePocket(r io.Reader, number int) (schema.Pocket, error) {
	p := schema.Pocket{Number: number}
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "HEADER") {
			m := featureRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				return p, fmt.Errorf("feature %q: bad value %q", strings.TrimSpace(m[2]), m[3])
			}
			p.Features = append(p.Features, schema.PocketFeature{
				Name:  strings.TrimSpace(m[2]),
				Value: value,
			})
			continue
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		if len(line) < 26 {
			continue
		}
		chain := strings.TrimSpace(line[21:22])
		resnum, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
		if err != nil {
			return p, fmt.Errorf("bad residue number %q", strings.TrimSpace(line[22:26]))
		}
		key := fmt.Sprintf("%s%d", chain, resnum)
		if seen[key] {
			continue
		}
		seen[key] = true
		p.Residues = append(p.Residues, schema.ChainRes{Chain: chain, ResNum: resnum})
	}
	if err := scanner.Err(); err != nil {
		return p, err
	}
	if len(p.Features) == 0 {
		return p, fmt.Errorf("pocket %d has no feature header lines", number)
	}
	return p, nil
}
