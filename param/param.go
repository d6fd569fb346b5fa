// Package param holds the immutable run configuration and binning model
// consumed by every higher layer of the measurement core: mesh sizing,
// the assignment kernel, multipole degrees, and the k/r bin layouts.
package param

import "github.com/haloclust/measure/measureerr"

// GridParameters is the immutable configuration of a single estimator
// call: mesh geometry, assignment kernel, and the multipole degrees the
// call operates at.
type GridParameters struct {
	Nmesh      [3]int32
	Boxsize    [3]float64
	Assignment AssignmentKernel
	Ell1, Ell2, ELL int32
	NumKbin, NumRbin int32
}

// NewGridParameters validates and constructs a GridParameters.
func NewGridParameters(
	nmesh [3]int32, boxsize [3]float64, assignment AssignmentKernel,
	ell1, ell2, ELL, numKbin, numRbin int32,
) (GridParameters, error) {
	for a := 0; a < 3; a++ {
		if nmesh[a] <= 0 {
			return GridParameters{}, measureerr.New(
				measureerr.InvalidInput, "param.NewGridParameters",
				"nmesh[%d] = %d must be positive", a, nmesh[a],
			)
		}
		if boxsize[a] <= 0 {
			return GridParameters{}, measureerr.New(
				measureerr.InvalidInput, "param.NewGridParameters",
				"boxsize[%d] = %g must be positive", a, boxsize[a],
			)
		}
	}
	if _, ok := assignment.Order(); !ok {
		return GridParameters{}, measureerr.New(
			measureerr.InvalidConfig, "param.NewGridParameters",
			"unrecognised assignment kernel %v", assignment,
		)
	}

	return GridParameters{
		Nmesh: nmesh, Boxsize: boxsize, Assignment: assignment,
		Ell1: ell1, Ell2: ell2, ELL: ELL,
		NumKbin: numKbin, NumRbin: numRbin,
	}, nil
}

// NmeshTot returns the total cell count nmesh[0]*nmesh[1]*nmesh[2].
func (p GridParameters) NmeshTot() int64 {
	return int64(p.Nmesh[0]) * int64(p.Nmesh[1]) * int64(p.Nmesh[2])
}

// Volume returns the physical box volume boxsize[0]*boxsize[1]*boxsize[2].
func (p GridParameters) Volume() float64 {
	return p.Boxsize[0] * p.Boxsize[1] * p.Boxsize[2]
}

// CellVolume returns volume/nmesh_tot, the physical volume of a single
// mesh cell, used as the forward-FFT prefactor dV.
func (p GridParameters) CellVolume() float64 {
	return p.Volume() / float64(p.NmeshTot())
}

// CellSize returns the physical separation boxsize[a]/nmesh[a] per axis,
// the grid spacing used when folding a Fourier-space index into a
// real-space separation.
func (p GridParameters) CellSize() [3]float64 {
	return [3]float64{
		p.Boxsize[0] / float64(p.Nmesh[0]),
		p.Boxsize[1] / float64(p.Nmesh[1]),
		p.Boxsize[2] / float64(p.Nmesh[2]),
	}
}
