package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/param"
)

func boxConfig(t *testing.T, ell int32) Config {
	t.Helper()
	grid, err := param.NewGridParameters(
		[3]int32{8, 8, 8}, [3]float64{100, 100, 100}, param.CIC,
		ell, 0, ell, 4, 4,
	)
	require.NoError(t, err)

	data := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{10, 20, 30}, 0, 1, 1),
		catalog.NewParticle(geom.Vec{60, 70, 80}, 0, 1, 1),
	}}
	kbin := param.NewRegularBinning(3, 0.1, 0.05)

	return Config{Grid: grid, Data: data, Alpha: 0, KBin: kbin, Norm: 1}
}

func TestPowerSpectrumBoxRejectsBadTriangle(t *testing.T) {
	cfg := boxConfig(t, 1)
	cfg.Grid.Ell2 = 1 // violates ell2 == 0
	_, err := PowerSpectrumBox(cfg)
	assert.Error(t, err)
}

func TestPowerSpectrumBoxMonopoleProducesFiniteValues(t *testing.T) {
	cfg := boxConfig(t, 0)
	result, err := PowerSpectrumBox(cfg)
	require.NoError(t, err)
	require.Len(t, result.Values, cfg.KBin.Len())
	for j, v := range result.Values {
		if result.Counts[j] == 0 {
			continue
		}
		assert.False(t, math.IsNaN(real(v)) || math.IsInf(real(v), 0), "value at bin %d is not finite", j)
	}
}

func TestPowerSpectrumQuadrupoleRunsWithLineOfSight(t *testing.T) {
	grid, err := param.NewGridParameters(
		[3]int32{4, 4, 4}, [3]float64{50, 50, 50}, param.NGP,
		2, 0, 2, 2, 2,
	)
	require.NoError(t, err)

	data := catalog.View{
		Particles: []catalog.Particle{catalog.NewParticle(geom.Vec{10, 10, 10}, 0, 1, 1)},
		LOS:       []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}},
	}
	rand := catalog.View{
		Particles: []catalog.Particle{catalog.NewParticle(geom.Vec{20, 20, 20}, 0, 1, 1)},
		LOS:       []catalog.LineOfSight{{Pos: geom.Vec{0, 1, 0}}},
	}
	kbin := param.NewRegularBinning(2, 0.1, 0.05)

	cfg := Config{
		Grid: grid, Data: data, Rand: rand,
		LOSData: data.LOS, LOSRand: rand.LOS,
		Alpha: 0.5, KBin: kbin, Norm: 1,
	}
	result, err := PowerSpectrum(cfg)
	require.NoError(t, err)
	assert.Len(t, result.Values, 2)
}
