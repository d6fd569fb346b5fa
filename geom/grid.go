package geom

// Grid maps 3-D cell coordinates onto the flat, row-major index of a
// contiguous mesh buffer with per-axis width n. Index order matches the
// stride convention (i*n[1]+j)*n[2]+k used throughout the mesh package.
type Grid struct {
	N [3]int
}

// NewGrid returns a Grid over an n[0] x n[1] x n[2] mesh.
func NewGrid(n [3]int) Grid {
	return Grid{N: n}
}

// Len returns the total number of cells in the grid.
func (g Grid) Len() int {
	return g.N[0] * g.N[1] * g.N[2]
}

// Idx returns the flat index of cell (i, j, k). It does not bounds-check;
// callers that need to silently drop out-of-range indices should call
// InBounds first.
func (g Grid) Idx(i, j, k int) int {
	return (i*g.N[1]+j)*g.N[2] + k
}

// InBounds reports whether (i, j, k) lies within the grid.
func (g Grid) InBounds(i, j, k int) bool {
	return i >= 0 && i < g.N[0] &&
		j >= 0 && j < g.N[1] &&
		k >= 0 && k < g.N[2]
}

// Coords returns the (i, j, k) cell coordinates corresponding to a flat
// index produced by Idx.
func (g Grid) Coords(idx int) (i, j, k int) {
	k = idx % g.N[2]
	j = (idx / g.N[2]) % g.N[1]
	i = idx / (g.N[1] * g.N[2])
	return i, j, k
}

// Fold maps a raw axis index i (as produced by a forward FFT, running
// 0..n-1) onto the signed integer used by the Hermitian folding
// convention: i for i < n/2, i-n otherwise.
func Fold(i, n int) int {
	if i < n/2 {
		return i
	}
	return i - n
}
