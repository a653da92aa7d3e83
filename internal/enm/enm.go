// Package enm builds elastic network models (GNM and ANM) from atomic
// coordinates and computes their low-frequency normal modes.
package enm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/essalab/essa/schema"
)

// ZeroEigvalTol separates rigid-body modes from genuine low-frequency
// modes. Eigenvalues at or below this tolerance are excluded before the
// requested mode count is taken.
const ZeroEigvalTol = 1e-6

// Mode is a single eigenpair of an elastic model's interaction matrix.
type Mode struct {
	Eigval float64
	Eigvec []float64
}

// Model is an elastic network model over one set of nodes: an interaction
// matrix plus, after CalcModes, the lowest nonzero eigenpairs ascending by
// eigenvalue.
type Model struct {
	Kind   schema.ENMKind
	Title  string
	Cutoff float64
	Gamma  float64

	nodes  int
	matrix *mat.SymDense
	modes  []Mode
}

// DefaultCutoff returns the standard cutoff distance for a model kind.
func DefaultCutoff(kind schema.ENMKind) float64 {
	if kind == schema.ANM {
		return schema.DefaultANMCutoff
	}
	return schema.DefaultGNMCutoff
}

// DOFPerNode returns the degrees of freedom per node for a model kind.
func DOFPerNode(kind schema.ENMKind) int {
	if kind == schema.ANM {
		return 3
	}
	return 1
}

// New creates an empty model of the given kind.
func New(kind schema.ENMKind, title string) *Model {
	return &Model{Kind: kind, Title: title}
}

// Build constructs the interaction matrix from coordinates. A cutoff of 0
// selects the per-kind default; the effective value is recorded on the
// model so callers can propagate it to sibling models.
func (m *Model) Build(coords [][3]float64, cutoff, gamma float64) error {
	n := len(coords)
	if n < 2 {
		return fmt.Errorf("%s %q: need at least 2 atoms, have %d", m.Kind, m.Title, n)
	}
	if cutoff == 0 {
		cutoff = DefaultCutoff(m.Kind)
	}
	if cutoff <= 0 {
		return fmt.Errorf("%s %q: cutoff must be positive, got %g", m.Kind, m.Title, cutoff)
	}
	if gamma <= 0 {
		return fmt.Errorf("%s %q: gamma must be positive, got %g", m.Kind, m.Title, gamma)
	}
	m.Cutoff = cutoff
	m.Gamma = gamma
	m.nodes = n
	m.modes = nil

	if m.Kind == schema.ANM {
		m.matrix = buildHessian(coords, cutoff, gamma)
	} else {
		m.matrix = buildKirchhoff(coords, cutoff, gamma)
	}
	return nil
}

// buildKirchhoff assembles the GNM connectivity matrix: off-diagonal -gamma
// for node pairs within the cutoff, diagonal set to minus the row sum.
func buildKirchhoff(coords [][3]float64, cutoff, gamma float64) *mat.SymDense {
	n := len(coords)
	cutoff2 := cutoff * cutoff
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist2(coords[i], coords[j]) <= cutoff2 {
				k.SetSym(i, j, -gamma)
				k.SetSym(i, i, k.At(i, i)+gamma)
				k.SetSym(j, j, k.At(j, j)+gamma)
			}
		}
	}
	return k
}

// buildHessian assembles the 3N×3N ANM Hessian from -gamma/d² scaled outer
// products of the pairwise difference vectors.
func buildHessian(coords [][3]float64, cutoff, gamma float64) *mat.SymDense {
	n := len(coords)
	cutoff2 := cutoff * cutoff
	h := mat.NewSymDense(3*n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d2 := dist2(coords[i], coords[j])
			if d2 > cutoff2 || d2 == 0 {
				continue
			}
			g := -gamma / d2
			var dv [3]float64
			for a := 0; a < 3; a++ {
				dv[a] = coords[j][a] - coords[i][a]
			}
			for a := 0; a < 3; a++ {
				for b := a; b < 3; b++ {
					el := g * dv[a] * dv[b]
					h.SetSym(3*i+a, 3*j+b, el)
					if a != b {
						h.SetSym(3*i+b, 3*j+a, el)
					}
					h.SetSym(3*i+a, 3*i+b, h.At(3*i+a, 3*i+b)-el)
					h.SetSym(3*j+a, 3*j+b, h.At(3*j+a, 3*j+b)-el)
				}
			}
		}
	}
	return h
}

func dist2(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// CalcModes computes the lowest n nonzero modes of the interaction matrix.
// Rigid-body modes (eigenvalues within ZeroEigvalTol of zero) are skipped
// before counting. Eigenvalues come back ascending from the symmetric
// solver, so mode order is deterministic for a fixed matrix.
func (m *Model) CalcModes(n int) error {
	if m.matrix == nil {
		return fmt.Errorf("%s %q: matrix not built", m.Kind, m.Title)
	}
	if n < 1 {
		return fmt.Errorf("%s %q: mode count must be positive, got %d", m.Kind, m.Title, n)
	}
	var es mat.EigenSym
	if ok := es.Factorize(m.matrix, true); !ok {
		return fmt.Errorf("%s %q: eigendecomposition failed", m.Kind, m.Title)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	dim := m.nodes * DOFPerNode(m.Kind)
	modes := make([]Mode, 0, n)
	for i := 0; i < len(vals) && len(modes) < n; i++ {
		if vals[i] <= ZeroEigvalTol {
			continue
		}
		vec := make([]float64, dim)
		mat.Col(vec, i, &vecs)
		modes = append(modes, Mode{Eigval: vals[i], Eigvec: vec})
	}
	if len(modes) < n {
		return fmt.Errorf("%s %q: only %d nonzero modes available, %d requested (matrix degenerate or too few atoms for cutoff %g)",
			m.Kind, m.Title, len(modes), n, m.Cutoff)
	}
	m.modes = modes
	return nil
}

// NumNodes returns the number of nodes the model was built over.
func (m *Model) NumNodes() int { return m.nodes }

// Matrix exposes the interaction matrix for reduction.
func (m *Model) Matrix() *mat.SymDense { return m.matrix }

// Modes returns the computed modes, ascending by eigenvalue.
func (m *Model) Modes() []Mode { return m.modes }

// Eigvals returns the computed eigenvalues, ascending.
func (m *Model) Eigvals() []float64 {
	out := make([]float64, len(m.modes))
	for i, md := range m.modes {
		out[i] = md.Eigval
	}
	return out
}

// ModeSet packages the computed modes for an ensemble.
func (m *Model) ModeSet(label string) schema.ModeSet {
	ms := schema.ModeSet{Label: label}
	for _, md := range m.modes {
		ms.Eigvals = append(ms.Eigvals, md.Eigval)
		vec := make([]float64, len(md.Eigvec))
		copy(vec, md.Eigvec)
		ms.Eigvecs = append(ms.Eigvecs, vec)
	}
	return ms
}

// CheckReference verifies the precondition of the score engine: no
// reference eigenvalue within the first n modes may be near zero, since the
// relative shift divides by it.
func (m *Model) CheckReference(n int) error {
	for i, md := range m.modes {
		if i >= n {
			break
		}
		if math.Abs(md.Eigval) <= ZeroEigvalTol {
			return fmt.Errorf("reference model %q: eigenvalue of mode %d is near zero (%g)", m.Title, i, md.Eigval)
		}
	}
	return nil
}
