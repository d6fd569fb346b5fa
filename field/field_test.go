package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
)

func testParams(t *testing.T) param.GridParameters {
	t.Helper()
	p, err := param.NewGridParameters(
		[3]int32{8, 8, 8}, [3]float64{100, 100, 100}, param.CIC,
		0, 0, 0, 1, 1,
	)
	require.NoError(t, err)
	return p
}

func TestBoxFluctuationSubtractsMean(t *testing.T) {
	p := testParams(t)
	target, err := mesh.NewField(p)
	require.NoError(t, err)
	b := NewBuilder(target)

	data := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{10, 10, 10}, 0, 1, 1),
		catalog.NewParticle(geom.Vec{50, 50, 50}, 0, 1, 1),
	}}
	require.NoError(t, b.BoxFluctuation(data))

	dV := p.CellVolume()
	sum := complex(0, 0)
	for _, c := range target.Raw() {
		sum += c
	}
	// Integral of (n - Nbar) dV over the whole box is exactly zero.
	assert.InDelta(t, 0.0, real(sum)*dV, 1e-9)
}

func TestYlmWeightedFluctuationMonopoleMatchesUnweightedContrast(t *testing.T) {
	p := testParams(t)
	target, err := mesh.NewField(p)
	require.NoError(t, err)
	b := NewBuilder(target)

	data := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{50, 50, 50}, 0, 1, 1),
	}}
	rand := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{20, 20, 20}, 0, 1, 1),
		catalog.NewParticle(geom.Vec{80, 80, 80}, 0, 1, 1),
	}}
	losD := []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}}
	losR := []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}, {Pos: geom.Vec{0, 1, 0}}}

	alpha := 0.5
	require.NoError(t, b.YlmWeightedFluctuation(data, rand, losD, losR, alpha, 0, 0))

	dV := p.CellVolume()
	sum := complex(0, 0)
	for _, c := range target.Raw() {
		sum += c
	}
	// ell=m=0 reduced Ylm is the constant 1, so the integral collapses
	// to Sigma w_d - alpha*Sigma w_r.
	assert.InDelta(t, 1.0-alpha*2.0, real(sum)*dV, 1e-9)
}

func TestYlmWeightedFluctuationRejectsMismatchedLOSLength(t *testing.T) {
	p := testParams(t)
	target, err := mesh.NewField(p)
	require.NoError(t, err)
	b := NewBuilder(target)

	data := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{50, 50, 50}, 0, 1, 1),
	}}
	rand := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{20, 20, 20}, 0, 1, 1),
	}}
	losD := []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}, {Pos: geom.Vec{0, 1, 0}}}
	losR := []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}}

	err = b.YlmWeightedFluctuation(data, rand, losD, losR, 0.5, 0, 0)
	require.Error(t, err)
	assert.True(t, measureerr.Is(err, measureerr.InvalidInput))
}

func TestYlmWeightedShotNoiseFieldUsesSquaredWeights(t *testing.T) {
	p := testParams(t)
	target, err := mesh.NewField(p)
	require.NoError(t, err)
	b := NewBuilder(target)

	data := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{50, 50, 50}, 0, 2, 1),
	}}
	rand := catalog.View{}
	losD := []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}}

	require.NoError(t, b.YlmWeightedShotNoiseField(data, rand, losD, nil, 0, 0, 0))

	dV := p.CellVolume()
	sum := complex(0, 0)
	for _, c := range target.Raw() {
		sum += c
	}
	assert.InDelta(t, 4.0, real(sum)*dV, 1e-9)
}
