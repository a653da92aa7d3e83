package schema

import "fmt"

// ModeSet is one member of a mode ensemble: the lowest nonzero eigenpairs of
// a single elastic model, ascending by eigenvalue.
type ModeSet struct {
	Label   string      `json:"label"`
	Eigvals []float64   `json:"eigvals"`
	Eigvecs [][]float64 `json:"eigvecs"` // one vector per mode
}

// ModeEnsemble is an aligned collection of mode sets sharing one reference
// atom selection. Member 0 is always the reference; members 1..N are the
// perturbed models, one per residue in Cα-selection order. The ensemble is
// append-only and is frozen once Match succeeds.
type ModeEnsemble struct {
	Title     string    `json:"title"`
	NModes    int       `json:"n_modes"`
	AtomCount int       `json:"atom_count"` // size of the anchor Cα selection
	DOF       int       `json:"dof"`        // eigenvector length (1 or 3 per atom)
	Members   []ModeSet `json:"members"`
}

// NewModeEnsemble creates an empty ensemble anchored on a selection of
// atomCount atoms with dofPerAtom degrees of freedom per atom.
func NewModeEnsemble(title string, nModes, atomCount, dofPerAtom int) *ModeEnsemble {
	return &ModeEnsemble{
		Title:     title,
		NModes:    nModes,
		AtomCount: atomCount,
		DOF:       atomCount * dofPerAtom,
	}
}

// Append adds a mode set to the ensemble. Dimensionality mismatches are
// rejected immediately rather than at Match time so the offending member is
// named while its label is still at hand.
func (e *ModeEnsemble) Append(ms ModeSet) error {
	if len(ms.Eigvals) != e.NModes {
		return fmt.Errorf("mode set %q has %d modes, ensemble expects %d", ms.Label, len(ms.Eigvals), e.NModes)
	}
	if len(ms.Eigvecs) != e.NModes {
		return fmt.Errorf("mode set %q has %d eigenvectors for %d eigenvalues", ms.Label, len(ms.Eigvecs), e.NModes)
	}
	for i, v := range ms.Eigvecs {
		if len(v) != e.DOF {
			return fmt.Errorf("mode set %q vector %d has %d dof, ensemble expects %d", ms.Label, i, len(v), e.DOF)
		}
	}
	e.Members = append(e.Members, ms)
	return nil
}

// Preallocate grows the member list to total entries so that concurrent
// Set calls on distinct positions never reallocate the slice.
func (e *ModeEnsemble) Preallocate(total int) {
	for len(e.Members) < total {
		e.Members = append(e.Members, ModeSet{})
	}
}

// Set places a mode set at a fixed member position within the preallocated
// member list. The scanner assigns by residue index so a parallel scan
// keeps the member-order invariant without serializing appends.
func (e *ModeEnsemble) Set(pos int, ms ModeSet) error {
	if pos < 0 || pos >= len(e.Members) {
		return fmt.Errorf("ensemble position %d out of range [0,%d)", pos, len(e.Members))
	}
	e.Members[pos] = ms
	return e.checkMember(pos)
}

func (e *ModeEnsemble) checkMember(i int) error {
	ms := &e.Members[i]
	if len(ms.Eigvals) != e.NModes || len(ms.Eigvecs) != e.NModes {
		return fmt.Errorf("ensemble member %d (%q): want %d modes, have %d eigenvalues and %d vectors",
			i, ms.Label, e.NModes, len(ms.Eigvals), len(ms.Eigvecs))
	}
	for j, v := range ms.Eigvecs {
		if len(v) != e.DOF {
			return fmt.Errorf("ensemble member %d (%q) vector %d: want %d dof, have %d",
				i, ms.Label, j, e.DOF, len(v))
		}
	}
	return nil
}

// Match reconciles mode correspondence across all members: every member
// must carry exactly NModes eigenpairs of the anchor dimensionality, with
// eigenvalues in ascending order. It guards against a model builder
// reordering atoms or modes between members.
func (e *ModeEnsemble) Match() error {
	if len(e.Members) == 0 {
		return fmt.Errorf("ensemble %q has no members", e.Title)
	}
	for i := range e.Members {
		if err := e.checkMember(i); err != nil {
			return err
		}
		vals := e.Members[i].Eigvals
		for j := 1; j < len(vals); j++ {
			if vals[j] < vals[j-1] {
				return fmt.Errorf("ensemble member %d (%q): eigenvalues not ascending at mode %d",
					i, e.Members[i].Label, j)
			}
		}
	}
	return nil
}

// Reference returns the reference mode set (member 0).
func (e *ModeEnsemble) Reference() *ModeSet { return &e.Members[0] }

// Perturbed returns the perturbed members (1..N).
func (e *ModeEnsemble) Perturbed() []ModeSet { return e.Members[1:] }

// Eigvals returns the stacked eigenvalues of members [from, to) as one
// row per member.
func (e *ModeEnsemble) Eigvals(from, to int) [][]float64 {
	out := make([][]float64, 0, to-from)
	for _, m := range e.Members[from:to] {
		out = append(out, m.Eigvals)
	}
	return out
}
