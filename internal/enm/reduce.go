package enm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Reduce projects a model's dynamics onto the subset of nodes given by
// keep (indices into the model's node order, ascending). The eliminated
// degrees of freedom are removed algebraically via the Schur complement
//
//	K' = K_ss − K_se · K_ee⁻¹ · K_es
//
// so the reduced model has the same dimensionality as a model built
// directly over the kept nodes, while preserving the dynamics of the full
// system projected onto that subspace. The returned model carries the
// source model's kind, cutoff and gamma; CalcModes must be called on it.
func Reduce(m *Model, keep []int) (*Model, error) {
	if m.matrix == nil {
		return nil, fmt.Errorf("%s %q: matrix not built", m.Kind, m.Title)
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%s %q: reduction needs a non-empty kept set", m.Kind, m.Title)
	}
	dof := DOFPerNode(m.Kind)
	dim := m.nodes * dof

	kept := make([]int, 0, len(keep)*dof)
	seen := make([]bool, dim)
	for _, node := range keep {
		if node < 0 || node >= m.nodes {
			return nil, fmt.Errorf("%s %q: kept node %d out of range [0,%d)", m.Kind, m.Title, node, m.nodes)
		}
		for a := 0; a < dof; a++ {
			kept = append(kept, node*dof+a)
			seen[node*dof+a] = true
		}
	}
	elim := make([]int, 0, dim-len(kept))
	for i := 0; i < dim; i++ {
		if !seen[i] {
			elim = append(elim, i)
		}
	}

	red := &Model{
		Kind:   m.Kind,
		Title:  m.Title + "_reduced",
		Cutoff: m.Cutoff,
		Gamma:  m.Gamma,
		nodes:  len(keep),
	}

	ns, ne := len(kept), len(elim)
	if ne == 0 {
		// Nothing to eliminate; the reduction is the identity.
		red.matrix = mat.NewSymDense(ns, nil)
		red.matrix.CopySym(m.matrix)
		return red, nil
	}

	kss := submatrix(m.matrix, kept, kept)
	kse := submatrix(m.matrix, kept, elim)
	kee := submatrix(m.matrix, elim, elim)

	// Solve K_ee · X = K_es; K_es is the transpose of K_se.
	kes := mat.NewDense(ne, ns, nil)
	kes.CloneFrom(kse.T())
	var x mat.Dense
	if err := x.Solve(kee, kes); err != nil {
		return nil, fmt.Errorf("%s %q: eliminated block is singular, cannot reduce: %w", m.Kind, m.Title, err)
	}

	var prod mat.Dense
	prod.Mul(kse, &x)
	var reduced mat.Dense
	reduced.Sub(kss, &prod)

	// Numerical solves leave tiny asymmetries; symmetrize before storing.
	sym := mat.NewSymDense(ns, nil)
	for i := 0; i < ns; i++ {
		for j := i; j < ns; j++ {
			sym.SetSym(i, j, 0.5*(reduced.At(i, j)+reduced.At(j, i)))
		}
	}
	red.matrix = sym
	return red, nil
}

// submatrix extracts the dense block of m with the given row and column
// index sets.
func submatrix(m *mat.SymDense, rows, cols []int) *mat.Dense {
	out := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			out.Set(i, j, m.At(r, c))
		}
	}
	return out
}
