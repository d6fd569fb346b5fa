// Package field constructs the weighted density fluctuation, mean
// density, and shot-noise companion fields the two-point and
// bispectrum estimators are built from, combining data and random
// catalogues under a spherical-harmonic weight and an alpha contrast.
package field

import (
	"math/cmplx"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/math/ylm"
	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/mesh"
	"github.com/haloclust/measure/param"
)

// Builder wraps a target mesh.Field with the scratch field its
// two-catalogue constructors need, allocating the scratch field lazily
// on first use.
type Builder struct {
	target  *mesh.Field
	scratch *mesh.Field
	p       param.GridParameters
}

// NewBuilder returns a Builder writing into target.
func NewBuilder(target *mesh.Field) *Builder {
	return &Builder{target: target, p: target.Params()}
}

func (b *Builder) scratchField() (*mesh.Field, error) {
	if b.scratch == nil {
		s, err := mesh.NewField(b.p)
		if err != nil {
			return nil, err
		}
		b.scratch = s
	}
	b.scratch.Zero()
	return b.scratch, nil
}

func losAt(los []catalog.LineOfSight, i int) catalog.LineOfSight {
	return los[i]
}

// YlmWeightedFluctuation assigns Y_ellm(los_d)*w_d over data onto the
// target, assigns the same over random into a scratch field, then sets
// target = target - alpha*scratch. Defines delta_n_LM.
func (b *Builder) YlmWeightedFluctuation(
	data, rand catalog.View, losD, losR []catalog.LineOfSight,
	alpha float64, ell, m int32,
) error {
	b.target.Zero()
	if err := assignYlmWeighted(b.target, data, losD, ell, m, false, 1); err != nil {
		return err
	}

	scratch, err := b.scratchField()
	if err != nil {
		return err
	}
	if err := assignYlmWeighted(scratch, rand, losR, ell, m, false, 1); err != nil {
		return err
	}

	subtractScaled(b.target, scratch, complex(alpha, 0))
	return nil
}

// YlmWeightedMeanDensity assigns Y_ellm(los_r)*w_r over random onto the
// target, then scales target by alpha. Defines n_bar_LM.
func (b *Builder) YlmWeightedMeanDensity(
	rand catalog.View, losR []catalog.LineOfSight, alpha float64, ell, m int32,
) error {
	b.target.Zero()
	if err := assignYlmWeighted(b.target, rand, losR, ell, m, false, 1); err != nil {
		return err
	}
	scaleInPlace(b.target, complex(alpha, 0))
	return nil
}

// YlmWeightedMeanDensityRecon is the reconstruction-pipeline companion
// to YlmWeightedMeanDensity: identical, but kept as a distinct entry
// point because reconstruction workflows scale the random mean-density
// field by an alpha that can differ from the one used to build the
// fluctuation field it pairs with.
func (b *Builder) YlmWeightedMeanDensityRecon(
	rand catalog.View, losR []catalog.LineOfSight, alphaRecon float64, ell, m int32,
) error {
	return b.YlmWeightedMeanDensity(rand, losR, alphaRecon, ell, m)
}

// YlmWeightedShotNoiseField is the bispectrum self-term variant of
// YlmWeightedFluctuation: it uses conjugated Y_ellm, squared particle
// weights w^2, and adds alpha^2*scratch rather than subtracting
// alpha*scratch.
func (b *Builder) YlmWeightedShotNoiseField(
	data, rand catalog.View, losD, losR []catalog.LineOfSight,
	alpha float64, ell, m int32,
) error {
	b.target.Zero()
	if err := assignYlmWeighted(b.target, data, losD, ell, m, true, 2); err != nil {
		return err
	}

	scratch, err := b.scratchField()
	if err != nil {
		return err
	}
	if err := assignYlmWeighted(scratch, rand, losR, ell, m, true, 2); err != nil {
		return err
	}

	addScaled(b.target, scratch, complex(alpha*alpha, 0))
	return nil
}

// BoxFluctuation assigns unit weights for a periodic-box catalogue,
// then subtracts the constant mean density N_data/volume.
func (b *Builder) BoxFluctuation(data catalog.View) error {
	b.target.Zero()
	unit := func(catalog.Particle) complex128 { return 1 }
	if err := b.target.Assign(data, unit); err != nil {
		return err
	}
	mean := complex(float64(data.Len())/b.p.Volume(), 0)
	for i, c := range b.target.Raw() {
		b.target.Raw()[i] = c - mean
	}
	return nil
}

// BoxFluctuationRecon assigns unit-weight data minus alpha times
// unit-weight random, for a periodic-box reconstruction pipeline.
func (b *Builder) BoxFluctuationRecon(data, rand catalog.View, alpha float64) error {
	b.target.Zero()
	unit := func(catalog.Particle) complex128 { return 1 }
	if err := b.target.Assign(data, unit); err != nil {
		return err
	}

	scratch, err := b.scratchField()
	if err != nil {
		return err
	}
	if err := scratch.Assign(rand, unit); err != nil {
		return err
	}
	subtractScaled(b.target, scratch, complex(alpha, 0))
	return nil
}

// assignYlmWeighted assigns Y_ellm(los)^pow_weight(w^wPow) over v onto
// f, where pow_weight conjugates Y_ellm when conj is true and raises
// the particle weight to wPow (1 for the fluctuation/mean-density
// fields, 2 for the bispectrum self-term field).
func assignYlmWeighted(
	f *mesh.Field, v catalog.View, los []catalog.LineOfSight,
	ell, m int32, conj bool, wPow int,
) error {
	if len(v.Particles) != len(los) {
		return measureerr.New(
			measureerr.InvalidInput, "field.assignYlmWeighted",
			"particles has length %d but los has length %d", len(v.Particles), len(los),
		)
	}

	idx := 0
	weight := func(p catalog.Particle) complex128 {
		l := losAt(los, idx)
		idx++
		y := ylm.Reduced(int(ell), int(m), l.Pos)
		if conj {
			y = cmplx.Conj(y)
		}
		w := p.W
		if wPow == 2 {
			w *= p.W
		}
		return y * complex(w, 0)
	}
	return f.Assign(v, weight)
}

func subtractScaled(target, scratch *mesh.Field, alpha complex128) {
	t, s := target.Raw(), scratch.Raw()
	for i := range t {
		t[i] -= alpha * s[i]
	}
}

func addScaled(target, scratch *mesh.Field, alpha complex128) {
	t, s := target.Raw(), scratch.Raw()
	for i := range t {
		t[i] += alpha * s[i]
	}
}

func scaleInPlace(f *mesh.Field, alpha complex128) {
	d := f.Raw()
	for i := range d {
		d[i] *= alpha
	}
}
