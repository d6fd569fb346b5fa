// Package catalog holds the read-only particle and line-of-sight views
// the measurement core operates on. The core borrows these slices; it
// never mutates or takes ownership of them.
package catalog

import (
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/measureerr"
)

// Particle is a single weighted point in a catalogue: a position, an
// expected background number density, a systematic weight, and a
// clustering weight. W is the composite weight Ws*Wc.
type Particle struct {
	Pos    geom.Vec
	Nz     float64
	Ws, Wc float64
	W      float64
}

// NewParticle constructs a Particle, computing the composite weight
// W = ws*wc.
func NewParticle(pos geom.Vec, nz, ws, wc float64) Particle {
	return Particle{Pos: pos, Nz: nz, Ws: ws, Wc: wc, W: ws * wc}
}

// LineOfSight is a unit line-of-sight direction associated with one
// particle. The core assumes |Pos| = 1 and never normalises it.
type LineOfSight struct {
	Pos geom.Vec
}

// View is a read-only, borrowed pairing of a particle slice with its
// per-particle lines of sight.
type View struct {
	Particles []Particle
	LOS       []LineOfSight
}

// NewView pairs a particle slice with a line-of-sight slice, validating
// that they have matching lengths.
func NewView(particles []Particle, los []LineOfSight) (View, error) {
	if len(particles) != len(los) {
		return View{}, measureerr.New(
			measureerr.InvalidInput, "catalog.NewView",
			"particles has length %d but los has length %d",
			len(particles), len(los),
		)
	}
	return View{Particles: particles, LOS: los}, nil
}

// Len returns the number of particles in the view.
func (v View) Len() int { return len(v.Particles) }

// SumWeights returns Sigma w over the view.
func SumWeights(v View) float64 {
	return SumWeightPow(v, 1)
}

// SumWeightPow returns Sigma w^p over the view, the building block
// behind the shot-noise scalars of the two-point and bispectrum
// estimators (N ~ Sigma w^2, N_B ~ Sigma w^3).
func SumWeightPow(v View, p int) float64 {
	sum := 0.0
	for _, part := range v.Particles {
		wp := 1.0
		for i := 0; i < p; i++ {
			wp *= part.W
		}
		sum += wp
	}
	return sum
}

// Contrast returns the alpha ratio Sigma_data w / Sigma_rand w used to
// bring a random catalogue to the same weighted scale as its data
// catalogue.
func Contrast(data, rand View) float64 {
	randSum := SumWeights(rand)
	if randSum == 0 {
		return 0
	}
	return SumWeights(data) / randSum
}
