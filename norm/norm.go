// Package norm computes the caller-supplied normalisation scalars
// estimator.Config.Norm expects: the survey and periodic-box power
// spectrum normalisations and the survey bispectrum normalisation.
package norm

import "github.com/haloclust/measure/catalog"

// PSParticles returns the survey power spectrum normalisation
// 1/(alpha * Sigma w^2 * nz) for a random catalogue with the given
// alpha contrast.
func PSParticles(rand catalog.View, alpha float64) float64 {
	var sum float64
	for _, p := range rand.Particles {
		sum += p.W * p.W * p.Nz
	}
	if sum == 0 {
		return 0
	}
	return 1 / (alpha * sum)
}

// PSBox returns the periodic-box power spectrum normalisation
// volume/N^2 for a box of the given volume holding n particles.
func PSBox(volume float64, n int64) float64 {
	if n == 0 {
		return 0
	}
	return volume / float64(n*n)
}

// BParticles returns the survey bispectrum normalisation
// 1/(alpha^2 * Sigma w^3 * nz^2) for a random catalogue with the given
// alpha contrast.
func BParticles(rand catalog.View, alpha float64) float64 {
	var sum float64
	for _, p := range rand.Particles {
		sum += p.W * p.W * p.W * p.Nz * p.Nz
	}
	if sum == 0 {
		return 0
	}
	return 1 / (alpha * alpha * sum)
}
