// Package ylm evaluates the reduced spherical harmonics consumed by the
// field-builder, two-point, and shell-extraction layers of the
// measurement core.
package ylm

import (
	"math"
	"math/cmplx"

	"github.com/haloclust/measure/geom"
)

// Reduced returns the reduced spherical harmonic
//
//	(4*pi/(2*ell+1))^(1/2) * Y_ell,m(v_hat)
//
// evaluated at the direction of v. It is well-defined at v = 0: it
// returns 0 for ell > 0 and 1 for ell == 0, matching the convention the
// caller relies on when a particle sits exactly at the coordinate
// origin (a periodic-box density fluctuation field, for instance).
func Reduced(ell, m int, v geom.Vec) complex128 {
	n := v.Norm()
	if n == 0 {
		if ell == 0 {
			return 1
		}
		return 0
	}

	cosTheta := v[2] / n
	phi := math.Atan2(v[1], v[0])

	if m < 0 {
		sign := 1.0
		if m%2 != 0 {
			sign = -1.0
		}
		return complex(sign, 0) * cmplx.Conj(Reduced(ell, -m, v))
	}

	p := assocLegendre(ell, m, cosTheta)
	norm := math.Sqrt(factorialRatio(ell, m))
	mag := norm * p

	return complex(mag, 0) * cmplx.Exp(complex(0, float64(m)*phi))
}

// factorialRatio returns (ell-m)!/(ell+m)! computed without overflow for
// the small (ell, m) pairs the core evaluates (ell <= ~8).
func factorialRatio(ell, m int) float64 {
	num := 1.0
	for i := ell - m + 1; i <= ell+m; i++ {
		num *= float64(i)
	}
	return 1 / num
}

// assocLegendre evaluates the associated Legendre polynomial P_ell^m(x)
// for 0 <= m <= ell via the standard upward recurrence (Numerical
// Recipes §6.8): first climb from P_m^m via the double-factorial seed,
// then from P_m^m to P_{m+1}^m, then recur in ell.
func assocLegendre(ell, m int, x float64) float64 {
	pmm := 1.0
	if m > 0 {
		somx2 := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= -fact * somx2
			fact += 2
		}
	}
	if ell == m {
		return pmm
	}

	pmmp1 := x * float64(2*m+1) * pmm
	if ell == m+1 {
		return pmmp1
	}

	pll := 0.0
	for l := m + 2; l <= ell; l++ {
		pll = (x*float64(2*l-1)*pmmp1 - float64(l+m-1)*pmm) / float64(l-m)
		pmm = pmmp1
		pmmp1 = pll
	}
	return pll
}
