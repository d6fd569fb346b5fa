// Package bessel provides spherical Bessel functions j_ell(x), exposed
// through a tabulated cubic-spline interpolator so that a per-mode inner
// loop over a 3-D mesh can evaluate j_ell in O(1) instead of re-deriving
// it from its closed form (or a recurrence) at every cell.
package bessel

import (
	"math"

	"github.com/haloclust/measure/math/interpolate"
)

// TableStep is the sample spacing used when building the tabulated
// interpolator returned by Spherical.
const TableStep = 1e-2

// exact evaluates j_ell(x) directly, either via a closed form for the
// small orders the core uses or via the standard upward recurrence
//
//	j_{l+1}(x) = (2l+1)/x * j_l(x) - j_{l-1}(x)
//
// seeded from j0 and j1. Near x = 0 the recurrence loses precision, so
// the series leading term x^ell / (2*ell+1)!! is used instead.
func exact(ell int, x float64) float64 {
	if x == 0 {
		if ell == 0 {
			return 1
		}
		return 0
	}
	if x < 1e-4 {
		return math.Pow(x, float64(ell)) / doubleFactorial(2*ell+1)
	}

	j0 := math.Sin(x) / x
	if ell == 0 {
		return j0
	}
	j1 := math.Sin(x)/(x*x) - math.Cos(x)/x
	if ell == 1 {
		return j1
	}

	jPrev, jCur := j0, j1
	for l := 1; l < ell; l++ {
		jNext := float64(2*l+1)/x*jCur - jPrev
		jPrev, jCur = jCur, jNext
	}
	return jCur
}

func doubleFactorial(n int) float64 {
	f := 1.0
	for i := n; i > 1; i -= 2 {
		f *= float64(i)
	}
	return f
}

// Interpolator evaluates j_ell at an arbitrary point in [0, XMax] in
// O(1) after construction.
type Interpolator struct {
	ell int
	sp  *interpolate.Spline
}

// XMax is the upper bound of the tabulated argument range. Wavenumber
// times separation products larger than this are outside the domain
// the estimator orchestrator ever needs: the largest bin-centre product
// k_max * r_max stays well under it for any survey-scale configuration.
const XMax = 500.0

// Spherical builds a tabulated interpolator for j_ell over [0, XMax]
// sampled every TableStep.
func Spherical(ell int) *Interpolator {
	n := int(XMax/TableStep) + 1
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		x := float64(i) * TableStep
		xs[i] = x
		ys[i] = exact(ell, x)
	}
	return &Interpolator{ell: ell, sp: interpolate.NewSpline(xs, ys)}
}

// Eval returns j_ell(x) for x in [0, XMax].
func (b *Interpolator) Eval(x float64) float64 {
	return b.sp.Eval(x)
}

// Ell returns the order this interpolator was built for.
func (b *Interpolator) Ell() int {
	return b.ell
}
