// Package twopoint implements the power spectrum and two-point
// correlation estimators, shared by the top-level estimator orchestrator
// for both the standalone two-point statistics and, weighted by a pair
// of pre-tabulated Y_ellm grids instead of a single one, the 2PCF
// building block the three-point correlation estimator reduces to.
package twopoint

import (
	"math/cmplx"

	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/math/ylm"
	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
)

// buildPowerField forms M(k) = delta_a(k)*conj(delta_b(k)), subtracts
// the caller-supplied scalar shot noise attenuated by S(k), and
// compensates the assignment window W(k)^2, over every cell of a fresh
// Fourier-space field. It implements steps 1-4 shared by PowerSpectrum,
// Correlation, and CorrelationBispecVariant.
func buildPowerField(deltaA, deltaB *mesh.Field, p param.GridParameters, shotNoise complex128) (*mesh.Field, error) {
	if deltaA.State() != mesh.FourierSpace || deltaB.State() != mesh.FourierSpace {
		return nil, measureerr.New(
			measureerr.InvalidConfig, "twopoint.buildPowerField",
			"both input fields must be in Fourier space",
		)
	}

	out, err := mesh.NewFieldInState(p, mesh.FourierSpace)
	if err != nil {
		return nil, err
	}

	a, b, o := deltaA.Raw(), deltaB.Raw(), out.Raw()
	grid := out.Grid()
	for idx := range o {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)

		m := a[idx] * cmplx.Conj(b[idx])
		m -= shotNoise * complex(deltaA.ShotNoise(kvec), 0)

		w := deltaA.Window(kvec)
		if w == 0 {
			o[idx] = 0
			continue
		}
		o[idx] = m / complex(w*w, 0)
	}
	return out, nil
}

// PowerSpectrum computes P_ellm(k) from two Fourier-space density
// fields, per §4.3: shot-noise subtract, window compensate, weight by
// Y_ellm(k_hat), deposit into the fine k table, then shell-bin.
func PowerSpectrum(
	deltaA, deltaB *mesh.Field, p param.GridParameters, shotNoise complex128,
	kbin param.Binning, ell, m int32,
) (BinnedResult, error) {
	if err := ValidateKBinWidth(kbin); err != nil {
		return BinnedResult{}, err
	}

	mfield, err := buildPowerField(deltaA, deltaB, p, shotNoise)
	if err != nil {
		return BinnedResult{}, err
	}

	table := newFineTable(DeltaKFine, NFineK)
	grid := mfield.Grid()
	for idx, val := range mfield.Raw() {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		weighted := val * ylm.Reduced(int(ell), int(m), geom.Vec(kvec))
		table.deposit(mesh.KMagnitude(kvec), weighted)
	}
	return table.shellBin(kbin), nil
}

// Correlation computes xi_ellm(r) from two Fourier-space density
// fields, per §4.3: build the power field, scale by 1/volume, inverse
// FFT to real space, weight by Y_ellm(r_hat), deposit into the fine r
// table, then shell-bin.
func Correlation(
	deltaA, deltaB *mesh.Field, p param.GridParameters, shotNoise complex128,
	rbin param.Binning, ell, m int32,
) (BinnedResult, error) {
	if err := ValidateRBinWidth(rbin); err != nil {
		return BinnedResult{}, err
	}

	mfield, err := buildPowerField(deltaA, deltaB, p, shotNoise)
	if err != nil {
		return BinnedResult{}, err
	}

	invVol := complex(1/p.Volume(), 0)
	raw := mfield.Raw()
	for i, v := range raw {
		raw[i] = v * invVol
	}
	if err := mfield.InverseFFT(); err != nil {
		return BinnedResult{}, err
	}

	table := newFineTable(DeltaRFine, NFineR)
	grid := mfield.Grid()
	for idx, val := range mfield.Raw() {
		i, j, k := grid.Coords(idx)
		rvec := mesh.Separation(p, i, j, k)
		weighted := val * ylm.Reduced(int(ell), int(m), geom.Vec(rvec))
		table.deposit(geom.Vec(rvec).Norm(), weighted)
	}
	return table.shellBin(rbin), nil
}

// CorrelationBispecVariant is the 3PCF-specific 2PCF of §4.3: identical
// to Correlation through the inverse FFT, but weighted per cell by the
// product of two pre-tabulated Y_ellm grids (ylmA, ylmB, one per row-
// major cell index) rather than a single Y_ellm(r_hat), and finished
// with the non-standard scaling (-1)^(ell1+ell2) * xi[j] / dV /
// n_pair[j]^2 — the n_pair^2 (not n_pair) is a deliberate, preserved
// quirk of the 3PCF normalisation convention, not a bug.
func CorrelationBispecVariant(
	deltaA, deltaB *mesh.Field, p param.GridParameters, shotNoise complex128,
	rbin param.Binning, ylmA, ylmB []complex128, ell1, ell2 int32,
) (BinnedResult, error) {
	if err := ValidateRBinWidth(rbin); err != nil {
		return BinnedResult{}, err
	}

	mfield, err := buildPowerField(deltaA, deltaB, p, shotNoise)
	if err != nil {
		return BinnedResult{}, err
	}

	invVol := complex(1/p.Volume(), 0)
	raw := mfield.Raw()
	for i, v := range raw {
		raw[i] = v * invVol
	}
	if err := mfield.InverseFFT(); err != nil {
		return BinnedResult{}, err
	}

	table := newFineTable(DeltaRFine, NFineR)
	grid := mfield.Grid()
	for idx, val := range mfield.Raw() {
		i, j, k := grid.Coords(idx)
		rvec := mesh.Separation(p, i, j, k)
		weighted := val * ylmA[idx] * ylmB[idx]
		table.deposit(geom.Vec(rvec).Norm(), weighted)
	}

	sums, counts, centres := table.shellBinRaw(rbin)
	sign := 1.0
	if (ell1+ell2)%2 != 0 {
		sign = -1.0
	}
	dV := complex(p.CellVolume(), 0)

	result := BinnedResult{Centres: centres, Values: make([]complex128, len(sums)), Counts: counts}
	for j := range sums {
		if counts[j] == 0 {
			result.Warnings = append(result.Warnings, j)
			continue
		}
		n2 := complex(float64(counts[j])*float64(counts[j]), 0)
		result.Values[j] = complex(sign, 0) * sums[j] / dV / n2
	}
	return result, nil
}
