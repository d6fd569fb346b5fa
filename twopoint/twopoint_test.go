package twopoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
)

func ngpParams(t *testing.T) param.GridParameters {
	t.Helper()
	p, err := param.NewGridParameters(
		[3]int32{8, 8, 8}, [3]float64{100, 100, 100}, param.NGP,
		0, 0, 0, 4, 4,
	)
	require.NoError(t, err)
	return p
}

func fourierFieldFromParticles(t *testing.T, p param.GridParameters, pts ...geom.Vec) *mesh.Field {
	t.Helper()
	f, err := mesh.NewField(p)
	require.NoError(t, err)
	var particles []catalog.Particle
	for _, pos := range pts {
		particles = append(particles, catalog.NewParticle(pos, 0, 1, 1))
	}
	unit := func(catalog.Particle) complex128 { return 1 }
	require.NoError(t, f.Assign(catalog.View{Particles: particles}, unit))
	require.NoError(t, f.ForwardFFT())
	return f
}

func TestBuildPowerFieldRejectsConfigSpaceInput(t *testing.T) {
	p := ngpParams(t)
	f, err := mesh.NewField(p)
	require.NoError(t, err)
	_, err = buildPowerField(f, f, p, 0)
	assert.Error(t, err)
}

func TestBuildPowerFieldMatchesManualFormula(t *testing.T) {
	p := ngpParams(t)
	delta := fourierFieldFromParticles(t, p, geom.Vec{50, 50, 50})
	shotNoise := complex(2.5, 0.75)

	got, err := buildPowerField(delta, delta, p, shotNoise)
	require.NoError(t, err)

	grid := got.Grid()
	for idx, v := range got.Raw() {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		want := delta.At(i, j, k) * complexConj(delta.At(i, j, k))
		want -= shotNoise * complex(delta.ShotNoise(kvec), 0)
		w := delta.Window(kvec)
		if w == 0 {
			assert.Equal(t, complex128(0), v)
			continue
		}
		want /= complex(w*w, 0)
		assert.InDelta(t, real(want), real(v), 1e-9)
		assert.InDelta(t, imag(want), imag(v), 1e-9)
	}
}

func complexConj(c complex128) complex128 { return complex(real(c), -imag(c)) }

func TestPowerSpectrumDCModeIsExcludedByTheOpenLowerBound(t *testing.T) {
	p := ngpParams(t)
	delta := fourierFieldFromParticles(t, p, geom.Vec{50, 50, 50}, geom.Vec{10, 20, 30})

	// A bin centred on k=0 covers the half-open interval (-w/2, w/2],
	// which excludes the DC mode itself since its clamped lower edge is
	// also 0 and the interval is open there — the spec's literal wording,
	// preserved rather than special-cased.
	kbin := param.NewRegularBinning(1, 0, 1e-3)
	result, err := PowerSpectrum(delta, delta, p, 0, kbin, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Counts[0])
	assert.Contains(t, result.Warnings, 0)
}

func TestPowerSpectrumFirstShellMatchesManualSum(t *testing.T) {
	p := ngpParams(t)
	delta := fourierFieldFromParticles(t, p, geom.Vec{50, 50, 50}, geom.Vec{12, 40, 77})

	k1 := 2 * math.Pi / 100
	kbin := param.NewRegularBinning(1, k1, 1e-3)
	result, err := PowerSpectrum(delta, delta, p, 0, kbin, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(6), result.Counts[0], "the six axis-permuted |k|=2pi/L modes")

	grid := delta.Grid()
	var sum complex128
	var n int64
	for idx := range delta.Raw() {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		if math.Abs(mesh.KMagnitude(kvec)-k1) > 1e-9 {
			continue
		}
		m := delta.At(i, j, k) * complexConj(delta.At(i, j, k))
		w := delta.Window(kvec)
		sum += m / complex(w*w, 0)
		n++
	}
	require.Equal(t, int64(6), n)
	want := sum / complex(float64(n), 0)
	assert.InDelta(t, real(want), real(result.Values[0]), 1e-9)
	assert.InDelta(t, imag(want), imag(result.Values[0]), 1e-9)
}

func TestCorrelationRequiresFourierSpaceInputs(t *testing.T) {
	p := ngpParams(t)
	f, err := mesh.NewField(p)
	require.NoError(t, err)
	rbin := param.NewRegularBinning(3, 5, 1)
	_, err = Correlation(f, f, p, 0, rbin, 0, 0)
	assert.Error(t, err)
}

func TestCorrelationBispecVariantAppliesOddParitySign(t *testing.T) {
	p := ngpParams(t)
	delta := fourierFieldFromParticles(t, p, geom.Vec{20, 30, 40})

	n := int(p.NmeshTot())
	ylmA := make([]complex128, n)
	ylmB := make([]complex128, n)
	for i := range ylmA {
		ylmA[i] = 1
		ylmB[i] = 1
	}

	rbin := param.NewRegularBinning(4, 5, 5)

	even, err := CorrelationBispecVariant(delta, delta, p, 0, rbin, ylmA, ylmB, 0, 0)
	require.NoError(t, err)
	odd, err := CorrelationBispecVariant(delta, delta, p, 0, rbin, ylmA, ylmB, 1, 0)
	require.NoError(t, err)

	for j := range even.Values {
		if even.Counts[j] == 0 {
			continue
		}
		assert.InDelta(t, real(even.Values[j]), -real(odd.Values[j]), 1e-9)
	}
}

func TestShotNoiseScalarHelpers(t *testing.T) {
	data := catalog.View{
		Particles: []catalog.Particle{catalog.NewParticle(geom.Vec{1, 0, 0}, 0, 2, 1)},
		LOS:       []catalog.LineOfSight{{Pos: geom.Vec{1, 0, 0}}},
	}
	rand := catalog.View{
		Particles: []catalog.Particle{catalog.NewParticle(geom.Vec{0, 1, 0}, 0, 1, 1)},
		LOS:       []catalog.LineOfSight{{Pos: geom.Vec{0, 1, 0}}},
	}
	alpha := 0.5

	nps, err := NPSSurvey(data, rand, alpha, 0, 0)
	require.NoError(t, err)
	// ell=m=0 reduced Ylm is the constant 1: N_PS = w_d^2 + alpha^2*w_r^2.
	assert.InDelta(t, 4.0+0.25*1.0, real(nps), 1e-9)

	assert.InDelta(t, 10.0+0.25*5.0, NPSBox(10, 5, alpha), 1e-9)

	win, err := N2PCFWindow(rand, alpha, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25*1.0, real(win), 1e-9)

	bself, err := NBSelf(data, rand, alpha, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 8.0-0.125*1.0, real(bself), 1e-9)

	mismatched := catalog.View{Particles: data.Particles}
	_, err = NPSSurvey(mismatched, rand, alpha, 0, 0)
	assert.Error(t, err)
}
