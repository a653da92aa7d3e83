package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/essalab/essa/schema"
)

// meanEigvalShifts computes the essentiality score of every perturbed
// member: the percentage eigenvalue shift (λp − λr) / λr · 100 relative to
// the reference member, averaged over the modes.
func meanEigvalShifts(e *schema.ModeEnsemble) ([]float64, error) {
	ref := e.Reference().Eigvals
	for i, v := range ref {
		if math.Abs(v) <= zeroDenomTol {
			return nil, fmt.Errorf("%w: reference eigenvalue of mode %d is near zero (%g)", ErrNumeric, i, v)
		}
	}
	perturbed := e.Perturbed()
	out := make([]float64, len(perturbed))
	for i, m := range perturbed {
		sum := 0.0
		for j, v := range m.Eigvals {
			sum += (v - ref[j]) / ref[j] * 100
		}
		out[i] = sum / float64(len(m.Eigvals))
	}
	return out, nil
}

// zeroDenomTol guards the relative-shift division.
const zeroDenomTol = 1e-6

// zscores standardizes values with the population standard deviation
// (ddof 0). A zero-variance input maps to all zeros rather than NaN.
func zscores(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	if variance == 0 {
		return out
	}
	std := math.Sqrt(variance)
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// median returns the middle value of values, averaging the two central
// entries for even lengths.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	s := make([]float64, n)
	copy(s, values)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// percentileLinear returns the q-th quantile (q in [0,1]) of values using
// linear interpolation between closest ranks.
func percentileLinear(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	s := make([]float64, n)
	copy(s, values)
	sort.Float64s(s)
	if n == 1 {
		return s[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	frac := pos - float64(lo)
	return s[lo] + frac*(s[hi]-s[lo])
}

// round1 and round2 fix the display precision of the ranking columns.
// Halves round to even, matching numpy's rounding of .x5 ties.
func round1(v float64) float64 { return math.RoundToEven(v*10) / 10 }
func round2(v float64) float64 { return math.RoundToEven(v*100) / 100 }
