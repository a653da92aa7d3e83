// Package schema has the data model shared by all parts of essa: structures,
// selections, scan results and pocket tables.
package schema

import (
	"fmt"
	"strings"
)

// Atom is a single atom record of a parsed structure. Coordinates are in
// the length units of the input file (Å for PDB input).
type Atom struct {
	Serial   int        // Serial number from the input file
	Name     string     // Atom name, e.g. "CA"
	ResName  string     // Residue name, e.g. "ALA"
	Chain    string     // Chain identifier
	ResNum   int        // Residue sequence number within the chain
	ResIndex int        // Zero-based residue index over the whole structure
	Coord    [3]float64 // Cartesian coordinates
	Element  string     // Element symbol, e.g. "C", "N", "H"
	Hetero   bool       // True for HETATM records (ligands, waters, ions)
	Beta     float64    // Generic per-atom numeric field (B-factor column)
}

// IsHeavy reports whether the atom is a non-hydrogen atom.
func (a *Atom) IsHeavy() bool {
	return a.Element != "H" && a.Element != "D"
}

// IsCalpha reports whether the atom is a protein alpha carbon.
func (a *Atom) IsCalpha() bool {
	return a.Name == "CA" && a.Element == "C" && !a.Hetero
}

// Structure is an ordered, immutable sequence of atoms. The analysis never
// mutates coordinates; writers that annotate atoms work on copies.
type Structure struct {
	Title string
	Atoms []Atom
}

// NumAtoms returns the number of atoms in the structure.
func (s *Structure) NumAtoms() int { return len(s.Atoms) }

// Select returns a named read-only subset of the structure's atom indices,
// in structure order, containing the atoms for which pred returns true.
func (s *Structure) Select(label string, pred func(*Atom) bool) *Selection {
	sel := &Selection{Label: label, Source: s}
	for i := range s.Atoms {
		if pred(&s.Atoms[i]) {
			sel.Indices = append(sel.Indices, i)
		}
	}
	return sel
}

// Selection is a derived view over a Structure's atoms. It never owns or
// copies coordinates.
type Selection struct {
	Label   string
	Source  *Structure
	Indices []int
}

// Len returns the number of atoms in the selection.
func (sel *Selection) Len() int { return len(sel.Indices) }

// Atom returns the i-th atom of the selection.
func (sel *Selection) Atom(i int) *Atom {
	return &sel.Source.Atoms[sel.Indices[i]]
}

// Coords returns the coordinates of the selected atoms, in selection order.
func (sel *Selection) Coords() [][3]float64 {
	out := make([][3]float64, len(sel.Indices))
	for i, idx := range sel.Indices {
		out[i] = sel.Source.Atoms[idx].Coord
	}
	return out
}

// ResIndices returns the residue index of every selected atom.
func (sel *Selection) ResIndices() []int {
	out := make([]int, len(sel.Indices))
	for i, idx := range sel.Indices {
		out[i] = sel.Source.Atoms[idx].ResIndex
	}
	return out
}

// Refine returns a sub-selection of sel with the given label.
func (sel *Selection) Refine(label string, pred func(*Atom) bool) *Selection {
	out := &Selection{Label: label, Source: sel.Source}
	for _, idx := range sel.Indices {
		if pred(&sel.Source.Atoms[idx]) {
			out.Indices = append(out.Indices, idx)
		}
	}
	return out
}

// ResidueID identifies a scanned residue by chain, residue number and the
// zero-based residue index used throughout the scan.
type ResidueID struct {
	Chain    string `json:"chain"`
	ResNum   int    `json:"resnum"`
	ResIndex int    `json:"resindex"`
}

// Key returns the chain+resnum string used for ligand and lookup maps,
// e.g. "A300".
func (r ResidueID) Key() string {
	return fmt.Sprintf("%s%d", r.Chain, r.ResNum)
}

// ChainRes is a bare chain + residue-number pair, the granularity at which
// the pocket detector reports residue membership.
type ChainRes struct {
	Chain  string `json:"chain"`
	ResNum int    `json:"resnum"`
}

// ScanParams are the knobs of a residue scan. Cutoff 0 means "use the
// per-kind default"; the scanner records the effective value on the result
// so every perturbed model is built with the reference cutoff.
type ScanParams struct {
	ENM    ENMKind `json:"enm"`
	NModes int     `json:"n_modes"`
	Cutoff float64 `json:"cutoff"`
	Gamma  float64 `json:"gamma"`
}

// ScanResult is the outcome of a completed residue scan: one z-score per
// Cα residue, in Cα-selection order, plus the parameters the scan was run
// with. Mean zero / unit standard deviation hold by construction.
type ScanResult struct {
	Title          string               `json:"title"`
	Params         ScanParams           `json:"params"`
	Residues       []ResidueID          `json:"residues"`
	MeanShifts     []float64            `json:"mean_shifts"`
	Zscores        []float64            `json:"zscores"`
	LigandContacts map[string][]int     `json:"ligand_contacts,omitempty"`
	Lookup         map[string]int       `json:"lookup"` // ChainRes key -> resindex
}

// ResidueLookup builds the chain+resnum -> residue index map for a set of
// scanned residues.
func ResidueLookup(residues []ResidueID) map[string]int {
	m := make(map[string]int, len(residues))
	for _, r := range residues {
		m[r.Key()] = r.ResIndex
	}
	return m
}

// ParseLigandSpec parses a ligand spec string of the form
// "CHAIN RESNUM CHAIN RESNUM ...", e.g. "A 300 B 301".
func ParseLigandSpec(spec string) ([]ChainRes, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("ligand spec %q must be chain/resnum pairs", spec)
	}
	out := make([]ChainRes, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		var resnum int
		if _, err := fmt.Sscanf(fields[i+1], "%d", &resnum); err != nil {
			return nil, fmt.Errorf("ligand spec %q: bad residue number %q", spec, fields[i+1])
		}
		out = append(out, ChainRes{Chain: fields[i], ResNum: resnum})
	}
	return out, nil
}
