// Package pdbio is a deliberately thin adapter for fixed-column PDB
// ATOM/HETATM records: just enough to load a structure for scanning and to
// write one back with per-atom scores in the B-factor column. It is not a
// general PDB parser.
package pdbio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/essalab/essa/schema"
)

// Read parses ATOM and HETATM records from r into a Structure with the
// given title. Residue indices are assigned in file order, incrementing
// whenever the (chain, residue number) pair changes.
func Read(r io.Reader, title string) (*schema.Structure, error) {
	s := &schema.Structure{Title: title}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	resIndex := -1
	lastChain, lastResNum := "", 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		record := strings.TrimSpace(line[0:6])
		if record != "ATOM" && record != "HETATM" {
			continue
		}
		atom, err := parseAtomLine(line, record == "HETATM")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if atom.Chain != lastChain || atom.ResNum != lastResNum || resIndex < 0 {
			resIndex++
			lastChain, lastResNum = atom.Chain, atom.ResNum
		}
		atom.ResIndex = resIndex
		s.Atoms = append(s.Atoms, atom)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(s.Atoms) == 0 {
		return nil, fmt.Errorf("no ATOM or HETATM records found")
	}
	return s, nil
}

// ReadFile parses a PDB file, deriving the structure title from the file name.
func ReadFile(path string) (*schema.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return Read(f, base)
}

func parseAtomLine(line string, hetero bool) (schema.Atom, error) {
	var a schema.Atom
	a.Hetero = hetero

	// Pad to 80 columns so fixed slices never go out of range.
	if len(line) < 80 {
		line = line + strings.Repeat(" ", 80-len(line))
	}

	serial, err := strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return a, fmt.Errorf("bad serial %q", strings.TrimSpace(line[6:11]))
	}
	a.Serial = serial
	a.Name = strings.TrimSpace(line[12:16])
	a.ResName = strings.TrimSpace(line[17:20])
	a.Chain = strings.TrimSpace(line[21:22])
	resnum, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return a, fmt.Errorf("bad residue number %q", strings.TrimSpace(line[22:26]))
	}
	a.ResNum = resnum

	for i, span := range [3][2]int{{30, 38}, {38, 46}, {46, 54}} {
		v, err := strconv.ParseFloat(strings.TrimSpace(line[span[0]:span[1]]), 64)
		if err != nil {
			return a, fmt.Errorf("bad coordinate %q", strings.TrimSpace(line[span[0]:span[1]]))
		}
		a.Coord[i] = v
	}
	if beta := strings.TrimSpace(line[60:66]); beta != "" {
		if v, err := strconv.ParseFloat(beta, 64); err == nil {
			a.Beta = v
		}
	}
	a.Element = strings.ToUpper(strings.TrimSpace(line[76:78]))
	if a.Element == "" {
		a.Element = elementFromName(a.Name)
	}
	return a, nil
}

// elementFromName falls back to the first alphabetic character of the atom
// name when the element column is blank.
func elementFromName(name string) string {
	for _, c := range name {
		if c >= 'A' && c <= 'Z' {
			return string(c)
		}
		if c >= 'a' && c <= 'z' {
			return strings.ToUpper(string(c))
		}
	}
	return ""
}

// Write emits the atoms of sel as ATOM/HETATM records. The beta callback
// supplies the value for the B-factor column of each selected atom; pass
// nil to keep the atoms' own values.
func Write(w io.Writer, sel *schema.Selection, beta func(atomIndex int) float64) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < sel.Len(); i++ {
		a := sel.Atom(i)
		record := "ATOM"
		if a.Hetero {
			record = "HETATM"
		}
		b := a.Beta
		if beta != nil {
			b = beta(sel.Indices[i])
		}
		name := a.Name
		if len(name) < 4 {
			name = " " + name
		}
		_, err := fmt.Fprintf(bw, "%-6s%5d %-4s %-3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
			record, a.Serial, name, a.ResName, a.Chain, a.ResNum,
			a.Coord[0], a.Coord[1], a.Coord[2], 1.0, b, a.Element)
		if err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw, "END"); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes a selection to a PDB file.
func WriteFile(path string, sel *schema.Selection, beta func(atomIndex int) float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, sel, beta); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
