package shell

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/math/bessel"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
)

func testParams(t *testing.T) param.GridParameters {
	t.Helper()
	p, err := param.NewGridParameters(
		[3]int32{8, 8, 8}, [3]float64{100, 100, 100}, param.CIC,
		0, 0, 0, 4, 4,
	)
	require.NoError(t, err)
	return p
}

func fourierField(t *testing.T, p param.GridParameters) *mesh.Field {
	t.Helper()
	f, err := mesh.NewField(p)
	require.NoError(t, err)
	v := catalog.View{Particles: []catalog.Particle{
		catalog.NewParticle(geom.Vec{37, 12, 88}, 0, 1, 1),
		catalog.NewParticle(geom.Vec{5, 60, 21}, 0, 1.5, 1),
	}}
	unit := func(catalog.Particle) complex128 { return 1 }
	require.NoError(t, f.Assign(v, unit))
	require.NoError(t, f.ForwardFFT())
	return f
}

func unitYlm(n int) []complex128 {
	y := make([]complex128, n)
	for i := range y {
		y[i] = 1
	}
	return y
}

func TestExtractRejectsConfigSpaceInput(t *testing.T) {
	p := testParams(t)
	f, err := mesh.NewField(p)
	require.NoError(t, err)
	_, _, err = Extract(f, p, 0.06, 0.01, unitYlm(int(p.NmeshTot())))
	assert.Error(t, err)
}

func TestExtractSingleShellCapturesSixAxisPermutedModes(t *testing.T) {
	p := testParams(t)
	delta := fourierField(t, p)

	k1 := 2 * math.Pi / 100
	ylmK := unitYlm(int(p.NmeshTot()))

	out, nMode, err := Extract(delta, p, k1, 1e-3, ylmK)
	require.NoError(t, err)
	require.Equal(t, int64(6), nMode)

	// Build the same single-shell field by hand and inverse-FFT it,
	// then compare the un-normalised result to out*nMode.
	manual, err := mesh.NewFieldInState(p, mesh.FourierSpace)
	require.NoError(t, err)
	grid := manual.Grid()
	craw := manual.Raw()
	for idx := range craw {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		if math.Abs(mesh.KMagnitude(kvec)-k1) > 1e-9 {
			continue
		}
		w := delta.Window(kvec)
		craw[idx] = delta.At(i, j, k) / complex(w, 0)
	}
	require.NoError(t, manual.InverseFFT())

	for idx, v := range out.Raw() {
		want := manual.Raw()[idx] / complex(6, 0)
		assert.InDelta(t, real(want), real(v), 1e-9)
		assert.InDelta(t, imag(want), imag(v), 1e-9)
	}
}

func TestExtractEmptyShellReturnsZeroModesWithoutError(t *testing.T) {
	p := testParams(t)
	delta := fourierField(t, p)

	// A shell placed strictly between the DC mode and the first nonzero
	// shell contains no grid points.
	out, nMode, err := Extract(delta, p, 0.02, 0.001, unitYlm(int(p.NmeshTot())))
	require.NoError(t, err)
	assert.Equal(t, int64(0), nMode)
	for _, v := range out.Raw() {
		assert.Equal(t, complex128(0), v)
	}
}

func TestExtractBispec3PCFRejectsMismatchedEll(t *testing.T) {
	p := testParams(t)
	delta := fourierField(t, p)
	jl := bessel.Spherical(0)

	_, err := ExtractBispec3PCF(delta, p, 10.0, 1, unitYlm(int(p.NmeshTot())), jl)
	assert.Error(t, err)
}

func TestExtractBispec3PCFAppliesVolumeAndBesselWeight(t *testing.T) {
	p := testParams(t)
	delta := fourierField(t, p)
	jl := bessel.Spherical(0)
	rbar := 20.0

	out, err := ExtractBispec3PCF(delta, p, rbar, 0, unitYlm(int(p.NmeshTot())), jl)
	require.NoError(t, err)
	assert.Equal(t, mesh.ConfigSpace, out.State())

	manual, err := mesh.NewFieldInState(p, mesh.FourierSpace)
	require.NoError(t, err)
	grid := manual.Grid()
	craw := manual.Raw()
	invVol := complex(1/p.Volume(), 0)
	for idx := range craw {
		i, j, k := grid.Coords(idx)
		kvec := mesh.Wavevector(p, i, j, k)
		w := delta.Window(kvec)
		var den complex128
		if w != 0 {
			den = delta.At(i, j, k) / complex(w, 0)
		}
		craw[idx] = complex(jl.Eval(mesh.KMagnitude(kvec)*rbar), 0) * den * invVol
	}
	require.NoError(t, manual.InverseFFT())

	for idx, v := range out.Raw() {
		assert.InDelta(t, real(manual.Raw()[idx]), real(v), 1e-9)
		assert.InDelta(t, imag(manual.Raw()[idx]), imag(v), 1e-9)
	}
}
