package mesh

import (
	"math"

	"github.com/haloclust/measure/geom"
	"github.com/haloclust/measure/param"
)

// Wavevector returns the physical wavevector for the raw grid index
// triple (i, j, k) using Hermitian folding: k_a = i*(2*pi/boxsize[a])
// for i < nmesh[a]/2, else (i-nmesh[a])*(2*pi/boxsize[a]). DC lies at
// (0, 0, 0).
func Wavevector(p param.GridParameters, i, j, k int) [3]float64 {
	n := [3]int{int(p.Nmesh[0]), int(p.Nmesh[1]), int(p.Nmesh[2])}
	raw := [3]int{i, j, k}
	var kvec [3]float64
	for a := 0; a < 3; a++ {
		folded := geom.Fold(raw[a], n[a])
		kvec[a] = float64(folded) * 2 * math.Pi / p.Boxsize[a]
	}
	return kvec
}

// KMagnitude returns the Euclidean norm of a wavevector.
func KMagnitude(kvec [3]float64) float64 {
	return geom.Vec(kvec).Norm()
}

// Separation returns the physical real-space separation for the raw
// grid index triple (i, j, k) using the symmetric folding r_a = i*dr_a
// or (i-nmesh[a])*dr_a, with dr_a = boxsize[a]/nmesh[a].
func Separation(p param.GridParameters, i, j, k int) [3]float64 {
	n := [3]int{int(p.Nmesh[0]), int(p.Nmesh[1]), int(p.Nmesh[2])}
	dr := p.CellSize()
	raw := [3]int{i, j, k}
	var rvec [3]float64
	for a := 0; a < 3; a++ {
		folded := geom.Fold(raw[a], n[a])
		rvec[a] = float64(folded) * dr[a]
	}
	return rvec
}
