// Package estimator orchestrates the layers below it into the
// top-level multipole estimators: power spectrum, two-point
// correlation, bispectrum, and three-point correlation, plus their
// periodic-box variants. It owns the outer (ELL, M) pass and the
// Wigner-3j coupling that reassembles a single requested multipole
// from the per-M building blocks TwoPointCore and ShellExtractor
// produce.
package estimator

import (
	"math"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/field"
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/math/bessel"
	"github.com/haloclust/measure/math/wigner"
	"github.com/haloclust/measure/math/ylm"
	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
	"github.com/haloclust/measure/shell"
	"github.com/haloclust/measure/twopoint"
)

// Config bundles everything a top-level estimator call needs: the mesh
// geometry and multipole degrees, the data/random catalogue pair with
// their per-particle lines of sight, the alpha contrast, the requested
// bin layouts, and the caller-supplied normalisation factor of §6.
// Bispectrum and ThreePointCorrelation additionally fix a second
// wavenumber/separation (K2/K2Width, R2) since the outer bin loop runs
// over the first triangle leg only, reusing the second leg's extraction
// across every bin. R2Width is not read by any estimator: the
// separation legs are Bessel-weighted, not shell-gated.
type Config struct {
	Grid       param.GridParameters
	Data, Rand catalog.View
	LOSData    []catalog.LineOfSight
	LOSRand    []catalog.LineOfSight
	Alpha      float64
	KBin, RBin param.Binning
	Norm       float64

	K2, K2Width float64
	R2, R2Width float64
}

func buildYlmKTable(p param.GridParameters, ell, m int32) []complex128 {
	nInt := [3]int{int(p.Nmesh[0]), int(p.Nmesh[1]), int(p.Nmesh[2])}
	g := geom.NewGrid(nInt)
	out := make([]complex128, g.Len())
	for idx := range out {
		i, j, k := g.Coords(idx)
		out[idx] = ylm.Reduced(int(ell), int(m), geom.Vec(mesh.Wavevector(p, i, j, k)))
	}
	return out
}

func mergeWarnings(dst, src []int) []int {
	seen := make(map[int]bool, len(dst))
	for _, j := range dst {
		seen[j] = true
	}
	for _, j := range src {
		if !seen[j] {
			dst = append(dst, j)
			seen[j] = true
		}
	}
	return dst
}

func requireTwoPointTriangle(op string, grid param.GridParameters) error {
	if grid.Ell1 != grid.ELL || grid.Ell2 != 0 {
		return measureerr.New(
			measureerr.InvalidConfig, op,
			"two-point estimator requires ell1 == ELL and ell2 == 0, got ell1=%d ell2=%d ELL=%d",
			grid.Ell1, grid.Ell2, grid.ELL,
		)
	}
	return nil
}

func buildFluctuation(grid param.GridParameters, cfg Config, ell, m int32) (*mesh.Field, error) {
	f, err := mesh.NewField(grid)
	if err != nil {
		return nil, err
	}
	b := field.NewBuilder(f)
	if err := b.YlmWeightedFluctuation(cfg.Data, cfg.Rand, cfg.LOSData, cfg.LOSRand, cfg.Alpha, ell, m); err != nil {
		return nil, err
	}
	if err := f.ForwardFFT(); err != nil {
		return nil, err
	}
	return f, nil
}

// PowerSpectrum implements §4.5's outer (ELL, M) pass and inner m1
// coupling loop for the power spectrum: build the monopole reference
// once, build and FFT each δn_LM, couple it against the monopole via
// TwoPointCore.PowerSpectrum weighted by the Wigner-3j coefficient C,
// and scale the accumulated bins by the caller-supplied normalisation.
func PowerSpectrum(cfg Config) (twopoint.BinnedResult, error) {
	grid := cfg.Grid
	if err := requireTwoPointTriangle("estimator.PowerSpectrum", grid); err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := twopoint.ValidateKBinWidth(cfg.KBin); err != nil {
		return twopoint.BinnedResult{}, err
	}

	delta00, err := buildFluctuation(grid, cfg, 0, 0)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}

	ell1, ELL := grid.Ell1, grid.ELL
	nbin := cfg.KBin.Len()
	values := make([]complex128, nbin)
	counts := make([]int64, nbin)
	var warnings []int
	centres := make([]float64, nbin)
	for j := 0; j < nbin; j++ {
		centres[j] = cfg.KBin.Centre(j)
	}

	w3j0 := wigner.ThreeJ(int(ell1), 0, int(ELL), 0, 0, 0)

	for M := -ELL; M <= ELL; M++ {
		deltaLM, err := buildFluctuation(grid, cfg, ELL, M)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}

		nlm, err := twopoint.NPSSurvey(cfg.Data, cfg.Rand, cfg.Alpha, ELL, M)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}

		for m1 := -ell1; m1 <= ell1; m1++ {
			w3jm := wigner.ThreeJ(int(ell1), 0, int(ELL), int(m1), 0, int(M))
			C := float64(2*ELL+1) * float64(2*ell1+1) * w3j0 * w3jm
			if math.Abs(C) < 1e-10 {
				continue
			}

			pk, err := twopoint.PowerSpectrum(deltaLM, delta00, grid, nlm, cfg.KBin, ell1, m1)
			if err != nil {
				return twopoint.BinnedResult{}, err
			}
			for j := range pk.Values {
				values[j] += complex(C, 0) * pk.Values[j]
				if pk.Counts[j] > counts[j] {
					counts[j] = pk.Counts[j]
				}
			}
			warnings = mergeWarnings(warnings, pk.Warnings)
		}
	}

	for j := range values {
		values[j] *= complex(cfg.Norm, 0)
	}
	return twopoint.BinnedResult{Centres: centres, Values: values, Counts: counts, Warnings: warnings}, nil
}

// Correlation is the real-space sibling of PowerSpectrum, coupling
// TwoPointCore.Correlation across the same (ELL, M)/m1 loop.
func Correlation(cfg Config) (twopoint.BinnedResult, error) {
	grid := cfg.Grid
	if err := requireTwoPointTriangle("estimator.Correlation", grid); err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := twopoint.ValidateRBinWidth(cfg.RBin); err != nil {
		return twopoint.BinnedResult{}, err
	}

	delta00, err := buildFluctuation(grid, cfg, 0, 0)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}

	ell1, ELL := grid.Ell1, grid.ELL
	nbin := cfg.RBin.Len()
	values := make([]complex128, nbin)
	counts := make([]int64, nbin)
	var warnings []int
	centres := make([]float64, nbin)
	for j := 0; j < nbin; j++ {
		centres[j] = cfg.RBin.Centre(j)
	}

	w3j0 := wigner.ThreeJ(int(ell1), 0, int(ELL), 0, 0, 0)

	for M := -ELL; M <= ELL; M++ {
		deltaLM, err := buildFluctuation(grid, cfg, ELL, M)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}

		nlm, err := twopoint.NPSSurvey(cfg.Data, cfg.Rand, cfg.Alpha, ELL, M)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}

		for m1 := -ell1; m1 <= ell1; m1++ {
			w3jm := wigner.ThreeJ(int(ell1), 0, int(ELL), int(m1), 0, int(M))
			C := float64(2*ELL+1) * float64(2*ell1+1) * w3j0 * w3jm
			if math.Abs(C) < 1e-10 {
				continue
			}

			xi, err := twopoint.Correlation(deltaLM, delta00, grid, nlm, cfg.RBin, ell1, m1)
			if err != nil {
				return twopoint.BinnedResult{}, err
			}
			for j := range xi.Values {
				values[j] += complex(C, 0) * xi.Values[j]
				if xi.Counts[j] > counts[j] {
					counts[j] = xi.Counts[j]
				}
			}
			warnings = mergeWarnings(warnings, xi.Warnings)
		}
	}

	for j := range values {
		values[j] *= complex(cfg.Norm, 0)
	}
	return twopoint.BinnedResult{Centres: centres, Values: values, Counts: counts, Warnings: warnings}, nil
}

// PowerSpectrumBox is the periodic-box variant of PowerSpectrum: the
// reference field is box_fluctuation and, per §4.5's closing paragraph,
// the coupling reduces to a single (2*ELL+1)-weighted call.
func PowerSpectrumBox(cfg Config) (twopoint.BinnedResult, error) {
	grid := cfg.Grid
	if err := requireTwoPointTriangle("estimator.PowerSpectrumBox", grid); err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := twopoint.ValidateKBinWidth(cfg.KBin); err != nil {
		return twopoint.BinnedResult{}, err
	}

	f, err := mesh.NewField(grid)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := field.NewBuilder(f).BoxFluctuation(cfg.Data); err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := f.ForwardFFT(); err != nil {
		return twopoint.BinnedResult{}, err
	}

	nlm := complex(twopoint.NPSBox(int64(cfg.Data.Len()), int64(cfg.Rand.Len()), cfg.Alpha), 0)
	pk, err := twopoint.PowerSpectrum(f, f, grid, nlm, cfg.KBin, grid.ELL, 0)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}

	scale := complex(float64(2*grid.ELL+1)*cfg.Norm, 0)
	for j := range pk.Values {
		pk.Values[j] *= scale
	}
	return pk, nil
}

// CorrelationBox is the periodic-box variant of Correlation.
func CorrelationBox(cfg Config) (twopoint.BinnedResult, error) {
	grid := cfg.Grid
	if err := requireTwoPointTriangle("estimator.CorrelationBox", grid); err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := twopoint.ValidateRBinWidth(cfg.RBin); err != nil {
		return twopoint.BinnedResult{}, err
	}

	f, err := mesh.NewField(grid)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := field.NewBuilder(f).BoxFluctuation(cfg.Data); err != nil {
		return twopoint.BinnedResult{}, err
	}
	if err := f.ForwardFFT(); err != nil {
		return twopoint.BinnedResult{}, err
	}

	nlm := complex(twopoint.NPSBox(int64(cfg.Data.Len()), int64(cfg.Rand.Len()), cfg.Alpha), 0)
	xi, err := twopoint.Correlation(f, f, grid, nlm, cfg.RBin, grid.ELL, 0)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}

	scale := complex(float64(2*grid.ELL+1)*cfg.Norm, 0)
	for j := range xi.Values {
		xi.Values[j] *= scale
	}
	return xi, nil
}

// Bispectrum assembles the outer (ell1, ell2, ELL) triangle: it builds
// the monopole density once, shell-extracts the two wavenumber legs
// (k1 swept over KBin, k2 fixed at cfg.K2) with the Wigner-3j-coupled
// (ell1,m1)/(ell2,m2) weights, forms the third leg F_LM(x) directly
// from the (ELL,M)-weighted density (no shell gate — the LOS multipole
// factor of §4.5 rather than a wavenumber-space one), and accumulates
// Sigma_x F1(x)*F2(x)*F_LM(x)*dV/volume per bin, the Triumvirate
// convention, before subtracting the bispectrum self-term and scaling
// by the caller-supplied normalisation.
func Bispectrum(cfg Config) (twopoint.BinnedResult, error) {
	grid := cfg.Grid
	ell1, ell2, ELL := grid.Ell1, grid.Ell2, grid.ELL

	monoField, err := buildFluctuation(grid, cfg, 0, 0)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}

	nbin := cfg.KBin.Len()
	values := make([]complex128, nbin)
	counts := make([]int64, nbin)
	var warnings []int
	centres := make([]float64, nbin)
	for j := 0; j < nbin; j++ {
		centres[j] = cfg.KBin.Centre(j)
	}

	w3j0 := wigner.ThreeJ(int(ell1), int(ell2), int(ELL), 0, 0, 0)
	dV := complex(grid.CellVolume(), 0)
	invVolume := complex(1/grid.Volume(), 0)

	for M := -ELL; M <= ELL; M++ {
		lmField, err := mesh.NewField(grid)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}
		if err := field.NewBuilder(lmField).YlmWeightedFluctuation(
			cfg.Data, cfg.Rand, cfg.LOSData, cfg.LOSRand, cfg.Alpha, ELL, M,
		); err != nil {
			return twopoint.BinnedResult{}, err
		}
		if err := lmField.ForwardFFT(); err != nil {
			return twopoint.BinnedResult{}, err
		}
		if err := lmField.InverseFFT(); err != nil {
			return twopoint.BinnedResult{}, err
		}
		flm := lmField.Raw()

		nbSelf, err := twopoint.NBSelf(cfg.Data, cfg.Rand, cfg.Alpha, ELL, M)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}
		contributed := make([]bool, nbin)

		for m1 := -ell1; m1 <= ell1; m1++ {
			ylmK1 := buildYlmKTable(grid, ell1, m1)

			for m2 := -ell2; m2 <= ell2; m2++ {
				w3jm := wigner.ThreeJ(int(ell1), int(ell2), int(ELL), int(m1), int(m2), int(M))
				C := math.Sqrt(float64((2*ell1+1)*(2*ell2+1)*(2*ELL+1))) * w3j0 * w3jm
				if math.Abs(C) < 1e-10 {
					continue
				}

				ylmK2 := buildYlmKTable(grid, ell2, m2)
				f2, n2, err := shell.Extract(monoField, grid, cfg.K2, cfg.K2Width, ylmK2)
				if err != nil {
					return twopoint.BinnedResult{}, err
				}
				if n2 == 0 {
					continue
				}
				f2raw := f2.Raw()

				for j := 0; j < nbin; j++ {
					lo, hi := cfg.KBin.Edges(j)
					f1, n1, err := shell.Extract(monoField, grid, cfg.KBin.Centre(j), hi-lo, ylmK1)
					if err != nil {
						return twopoint.BinnedResult{}, err
					}
					if n1 == 0 {
						warnings = append(warnings, j)
						continue
					}

					var sum complex128
					f1raw := f1.Raw()
					for x := range f1raw {
						sum += f1raw[x] * f2raw[x] * flm[x]
					}
					values[j] += complex(C, 0) * sum * dV * invVolume
					contributed[j] = true
					if n1 > counts[j] {
						counts[j] = n1
					}
				}
			}
		}

		// The self-term is a per-M correction independent of the
		// (m1, m2) coupling; only apply it to bins that actually
		// picked up a contribution this M, so a bin left empty by
		// every coupling this round isn't perturbed off zero.
		for j := range values {
			if contributed[j] {
				values[j] -= complex(real(nbSelf), 0)
			}
		}
	}

	for j := range values {
		values[j] *= complex(cfg.Norm, 0)
	}
	warnings = mergeWarnings(nil, warnings)
	return twopoint.BinnedResult{Centres: centres, Values: values, Counts: counts, Warnings: warnings}, nil
}

// ThreePointCorrelation is the real-space sibling of Bispectrum: the
// two wavenumber legs are replaced by ShellExtractor's spherical-
// Bessel-weighted variant sweeping r1 over RBin with r2 fixed at
// cfg.R2, and the third leg is the same (ELL,M)-weighted density used
// directly in real space.
func ThreePointCorrelation(cfg Config) (twopoint.BinnedResult, error) {
	grid := cfg.Grid
	ell1, ell2, ELL := grid.Ell1, grid.Ell2, grid.ELL

	monoField, err := buildFluctuation(grid, cfg, 0, 0)
	if err != nil {
		return twopoint.BinnedResult{}, err
	}

	nbin := cfg.RBin.Len()
	values := make([]complex128, nbin)
	counts := make([]int64, nbin)
	centres := make([]float64, nbin)
	for j := 0; j < nbin; j++ {
		centres[j] = cfg.RBin.Centre(j)
	}

	w3j0 := wigner.ThreeJ(int(ell1), int(ell2), int(ELL), 0, 0, 0)
	dV := complex(grid.CellVolume(), 0)
	jl1 := bessel.Spherical(int(ell1))
	jl2 := bessel.Spherical(int(ell2))

	for M := -ELL; M <= ELL; M++ {
		lmField, err := mesh.NewField(grid)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}
		if err := field.NewBuilder(lmField).YlmWeightedFluctuation(
			cfg.Data, cfg.Rand, cfg.LOSData, cfg.LOSRand, cfg.Alpha, ELL, M,
		); err != nil {
			return twopoint.BinnedResult{}, err
		}
		if err := lmField.ForwardFFT(); err != nil {
			return twopoint.BinnedResult{}, err
		}
		if err := lmField.InverseFFT(); err != nil {
			return twopoint.BinnedResult{}, err
		}
		flm := lmField.Raw()

		nbSelf, err := twopoint.NBSelf(cfg.Data, cfg.Rand, cfg.Alpha, ELL, M)
		if err != nil {
			return twopoint.BinnedResult{}, err
		}

		for m1 := -ell1; m1 <= ell1; m1++ {
			ylmK1 := buildYlmKTable(grid, ell1, m1)

			for m2 := -ell2; m2 <= ell2; m2++ {
				w3jm := wigner.ThreeJ(int(ell1), int(ell2), int(ELL), int(m1), int(m2), int(M))
				C := math.Sqrt(float64((2*ell1+1)*(2*ell2+1)*(2*ELL+1))) * w3j0 * w3jm
				if math.Abs(C) < 1e-10 {
					continue
				}

				ylmK2 := buildYlmKTable(grid, ell2, m2)
				f2, err := shell.ExtractBispec3PCF(monoField, grid, cfg.R2, int(ell2), ylmK2, jl2)
				if err != nil {
					return twopoint.BinnedResult{}, err
				}
				f2raw := f2.Raw()

				for j := 0; j < nbin; j++ {
					f1, err := shell.ExtractBispec3PCF(monoField, grid, cfg.RBin.Centre(j), int(ell1), ylmK1, jl1)
					if err != nil {
						return twopoint.BinnedResult{}, err
					}

					var sum complex128
					f1raw := f1.Raw()
					for x := range f1raw {
						sum += f1raw[x] * f2raw[x] * flm[x]
					}
					values[j] += complex(C, 0) * sum * dV
					counts[j] = int64(len(f1raw))
				}
			}
		}

		for j := range values {
			values[j] -= complex(real(nbSelf), 0)
		}
	}

	for j := range values {
		values[j] *= complex(cfg.Norm, 0)
	}
	return twopoint.BinnedResult{Centres: centres, Values: values, Counts: counts}, nil
}
