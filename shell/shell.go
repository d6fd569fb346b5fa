// Package shell implements the bispectrum/3PCF kernel: isolating a
// wavenumber shell (or weighting by a tabulated spherical Bessel
// function), compensating the assignment window, and inverse-
// transforming to build the real-space field F_LM(x) the estimator
// orchestrator's outer triangle loop consumes.
package shell

import (
	"github.com/haloclust/measure/math/bessel"
	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
)

// Extract isolates the shell k in (max(0, kbar-width/2), kbar+width/2]
// of a Fourier-space density delta, weights every mode in the shell by
// ylmK[idx] (a pre-tabulated Y_ellm(k_hat) grid in the same row-major
// order as delta), compensates the assignment window, zeros every mode
// outside the shell, inverse-transforms, and divides by the mode count.
// It returns the resulting real-space field and the mode count; a shell
// containing no modes is a non-fatal condition (NumericalWarning per
// §7) and is reported by a mode count of 0 rather than an error.
func Extract(
	delta *mesh.Field, p param.GridParameters, kbar, width float64, ylmK []complex128,
) (*mesh.Field, int64, error) {
	if delta.State() != mesh.FourierSpace {
		return nil, 0, measureerr.New(
			measureerr.InvalidConfig, "shell.Extract",
			"delta must be in Fourier space",
		)
	}

	out, err := mesh.NewFieldInState(p, mesh.FourierSpace)
	if err != nil {
		return nil, 0, err
	}

	lo := kbar - width/2
	if lo < 0 {
		lo = 0
	}
	hi := kbar + width/2

	grid := out.Grid()
	od := out.Raw()
	var nMode int64
	for idx := range od {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		kmag := mesh.KMagnitude(kvec)
		if kmag <= lo || kmag > hi {
			od[idx] = 0
			continue
		}

		w := delta.Window(kvec)
		var den complex128
		if w != 0 {
			den = delta.At(i, j, k) / complex(w, 0)
		}
		od[idx] = ylmK[idx] * den
		nMode++
	}

	if err := out.InverseFFT(); err != nil {
		return nil, 0, err
	}
	if nMode > 0 {
		inv := complex(1/float64(nMode), 0)
		raw := out.Raw()
		for i, v := range raw {
			raw[i] = v * inv
		}
	}
	return out, nMode, nil
}

// ExtractBispec3PCF is the 3PCF variant of Extract: it skips the shell
// gate entirely and instead weights every mode by
// j_ell(k*rbar)*Y_ellm(k_hat)*delta(k)/W(k)/volume, then inverse-
// transforms with no mode-count normalisation. jl must have been built
// for the same multipole degree as ell.
func ExtractBispec3PCF(
	delta *mesh.Field, p param.GridParameters, rbar float64, ell int,
	ylmK []complex128, jl *bessel.Interpolator,
) (*mesh.Field, error) {
	if delta.State() != mesh.FourierSpace {
		return nil, measureerr.New(
			measureerr.InvalidConfig, "shell.ExtractBispec3PCF",
			"delta must be in Fourier space",
		)
	}
	if jl.Ell() != ell {
		return nil, measureerr.New(
			measureerr.InvalidConfig, "shell.ExtractBispec3PCF",
			"spherical Bessel interpolator was built for ell=%d, want %d", jl.Ell(), ell,
		)
	}

	out, err := mesh.NewFieldInState(p, mesh.FourierSpace)
	if err != nil {
		return nil, err
	}

	invVol := complex(1/p.Volume(), 0)
	grid := out.Grid()
	od := out.Raw()
	for idx := range od {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		kmag := mesh.KMagnitude(kvec)

		w := delta.Window(kvec)
		var den complex128
		if w != 0 {
			den = delta.At(i, j, k) / complex(w, 0)
		}
		weight := complex(jl.Eval(kmag*rbar), 0) * ylmK[idx]
		od[idx] = weight * den * invVol
	}

	if err := out.InverseFFT(); err != nil {
		return nil, err
	}
	return out, nil
}
