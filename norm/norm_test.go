package norm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
)

func randView() catalog.View {
	return catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{0, 0, 0}, 0.1, 1, 1),
		catalog.NewParticle(geom.Vec{1, 1, 1}, 0.2, 2, 1),
	}}
}

func TestPSParticles(t *testing.T) {
	// Sigma w^2 nz = 1*0.1 + 4*0.2 = 0.9; alpha=0.5 -> 1/(0.5*0.9)
	got := PSParticles(randView(), 0.5)
	assert.InDelta(t, 1/(0.5*0.9), got, 1e-12)
}

func TestPSParticlesEmptyCatalogueIsZero(t *testing.T) {
	assert.Equal(t, 0.0, PSParticles(catalog.View{}, 0.5))
}

func TestPSBox(t *testing.T) {
	assert.InDelta(t, 1000.0/16, PSBox(1000, 4), 1e-12)
}

func TestPSBoxZeroParticlesIsZero(t *testing.T) {
	assert.Equal(t, 0.0, PSBox(1000, 0))
}

func TestBParticles(t *testing.T) {
	// Sigma w^3 nz^2 = 1*0.01 + 8*0.04 = 0.33; alpha=0.5 -> 1/(0.25*0.33)
	got := BParticles(randView(), 0.5)
	assert.InDelta(t, 1/(0.25*0.33), got, 1e-12)
}
