// Package mesh implements the 3-D complex grid at the centre of the
// measurement core: mass assignment under NGP/CIC/TSC, in-place forward
// and inverse FFTs with the correct volume normalisation, and Fourier-
// space window compensation.
package mesh

import (
	"math"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/param"
)

// State tracks which side of the Fourier transform a Field's storage
// currently represents. Every operation asserts the state it expects
// instead of trusting an implicit caller convention, so a forward FFT
// applied twice in a row fails loudly instead of silently corrupting
// the field.
type State int

const (
	// ConfigSpace marks a field holding real-space (assigned or
	// inverse-transformed) values.
	ConfigSpace State = iota
	// FourierSpace marks a field that has been forward-transformed.
	FourierSpace
)

func (s State) String() string {
	if s == FourierSpace {
		return "FourierSpace"
	}
	return "ConfigSpace"
}

// Field is a contiguous nmesh_tot complex128 grid, laid out row-major
// with stride (i, j, k) -> (i*nmesh[1]+j)*nmesh[2]+k. It owns its
// storage exclusively; there is no shared backing between fields.
type Field struct {
	data  []complex128
	grid  geom.Grid
	p     param.GridParameters
	state State
}

// NewField allocates a zeroed Field sized to p's mesh.
func NewField(p param.GridParameters) (*Field, error) {
	n := p.NmeshTot()
	if n <= 0 || n > math.MaxInt32 {
		return nil, measureerr.New(
			measureerr.AllocationError, "mesh.NewField",
			"cannot allocate a grid of %d cells", n,
		)
	}
	nInt := [3]int{int(p.Nmesh[0]), int(p.Nmesh[1]), int(p.Nmesh[2])}
	return &Field{
		data:  make([]complex128, n),
		grid:  geom.NewGrid(nInt),
		p:     p,
		state: ConfigSpace,
	}, nil
}

// NewFieldInState allocates a zeroed Field sized to p's mesh, marked as
// already being in the given state. Higher layers that construct a
// derived field directly in Fourier space (twopoint's mode-power field,
// built cell-by-cell from two existing Fourier-space fields rather than
// through Assign+ForwardFFT) use this instead of NewField.
func NewFieldInState(p param.GridParameters, state State) (*Field, error) {
	f, err := NewField(p)
	if err != nil {
		return nil, err
	}
	f.state = state
	return f, nil
}

// Params returns the grid parameters the field was allocated with.
func (f *Field) Params() param.GridParameters { return f.p }

// State returns whether the field currently holds configuration-space
// or Fourier-space values.
func (f *Field) State() State { return f.state }

// Raw exposes the field's row-major backing storage directly, for
// consumers (twopoint, shell) that need per-cell access without the
// overhead of At/Set index recomputation.
func (f *Field) Raw() []complex128 { return f.data }

// Grid returns the row-major index grid backing the field.
func (f *Field) Grid() geom.Grid { return f.grid }

// Zero sets every cell to 0 + 0i without changing the field's state.
func (f *Field) Zero() {
	for i := range f.data {
		f.data[i] = 0
	}
}

// At returns the value of cell (i, j, k).
func (f *Field) At(i, j, k int) complex128 {
	return f.data[f.grid.Idx(i, j, k)]
}

// Set assigns the value of cell (i, j, k).
func (f *Field) Set(i, j, k int, v complex128) {
	f.data[f.grid.Idx(i, j, k)] = v
}

// Add accumulates v into cell (i, j, k).
func (f *Field) Add(i, j, k int, v complex128) {
	f.data[f.grid.Idx(i, j, k)] += v
}

func (f *Field) requireState(op string, want State) error {
	if f.state != want {
		return measureerr.New(
			measureerr.InvalidConfig, op,
			"field is in %v state, expected %v", f.state, want,
		)
	}
	return nil
}

// weightFunc computes a particle's complex deposition weight.
type weightFunc func(catalog.Particle) complex128

// Assign rasterises weight(p) for every particle in v onto the field
// per the configured assignment kernel, requiring the field be in
// configuration space. Boundary particles whose covered cells fall
// outside [0, nmesh) are silently dropped without wraparound.
func (f *Field) Assign(v catalog.View, weight weightFunc) error {
	if err := f.requireState("mesh.Field.Assign", ConfigSpace); err != nil {
		return err
	}

	order, ok := f.p.Assignment.Order()
	if !ok {
		return measureerr.New(
			measureerr.InvalidConfig, "mesh.Field.Assign",
			"unrecognised assignment kernel %v", f.p.Assignment,
		)
	}

	cvf := 1 / f.p.CellVolume()
	nmesh := [3]int{int(f.p.Nmesh[0]), int(f.p.Nmesh[1]), int(f.p.Nmesh[2])}

	idxBuf := make([][]int, 3)
	wBuf := make([][]float64, 3)

	for _, part := range v.Particles {
		w := weight(part) * complex(cvf, 0)
		if w == 0 {
			continue
		}

		for a := 0; a < 3; a++ {
			g := float64(nmesh[a]) * part.Pos[a] / f.p.Boxsize[a]
			idxBuf[a], wBuf[a] = f.p.Assignment.Weights(g)
		}

		for ai := 0; ai < order; ai++ {
			ix := idxBuf[0][ai]
			wx := wBuf[0][ai]
			for aj := 0; aj < order; aj++ {
				iy := idxBuf[1][aj]
				wy := wBuf[1][aj]
				for ak := 0; ak < order; ak++ {
					iz := idxBuf[2][ak]
					if !f.grid.InBounds(ix, iy, iz) {
						continue
					}
					wz := wBuf[2][ak]
					f.Add(ix, iy, iz, w*complex(wx*wy*wz, 0))
				}
			}
		}
	}
	return nil
}

// CompensateAssignment divides every cell by the Fourier-space
// assignment window W(k), requiring the field be in Fourier space.
func (f *Field) CompensateAssignment() error {
	if err := f.requireState("mesh.Field.CompensateAssignment", FourierSpace); err != nil {
		return err
	}
	n := [3]int{int(f.p.Nmesh[0]), int(f.p.Nmesh[1]), int(f.p.Nmesh[2])}
	for idx := range f.data {
		i, j, k := f.grid.Coords(idx)
		fi, fj, fk := geom.Fold(i, n[0]), geom.Fold(j, n[1]), geom.Fold(k, n[2])
		w := f.p.Assignment.Window(fi, fj, fk, n)
		if w == 0 {
			f.data[idx] = 0
			continue
		}
		f.data[idx] /= complex(w, 0)
	}
	return nil
}

// Window returns W(k) for the current kernel at the grid-native
// wavevector kvec, evaluated at the folded signed integer the window
// formula is defined over (sinc is even, so the sign carries no
// ambiguity, but its magnitude must be the small folded index, not the
// unfolded raw one).
func (f *Field) Window(kvec [3]float64) float64 {
	n := [3]int{int(f.p.Nmesh[0]), int(f.p.Nmesh[1]), int(f.p.Nmesh[2])}
	i, j, k := f.foldedIndex(kvec)
	return f.p.Assignment.Window(i, j, k, n)
}

// ShotNoise returns S(k) for the current kernel at the grid-native
// wavevector kvec.
func (f *Field) ShotNoise(kvec [3]float64) float64 {
	n := [3]int{int(f.p.Nmesh[0]), int(f.p.Nmesh[1]), int(f.p.Nmesh[2])}
	i, j, k := f.foldedIndex(kvec)
	return f.p.Assignment.ShotNoise(i, j, k, n)
}

// foldedIndex recovers the small folded signed integer triple (e.g. -2
// rather than 6 on an 8-cell axis) a wavevector was built from, the
// index the window and shot-noise formulas are defined over.
func (f *Field) foldedIndex(kvec [3]float64) (i, j, k int) {
	fold := func(kv, boxsize float64) int {
		return int(math.Round(kv * boxsize / (2 * math.Pi)))
	}
	i = fold(kvec[0], f.p.Boxsize[0])
	j = fold(kvec[1], f.p.Boxsize[1])
	k = fold(kvec[2], f.p.Boxsize[2])
	return i, j, k
}
