package param

import "math"

// AssignmentKernel names the mass-assignment scheme used to rasterise
// particles onto a mesh, and the order of the corresponding B-spline. It
// is the single place window and shot-noise formulas live: MeshField
// and TwoPointCore both dispatch through it instead of each carrying
// their own copy, per the one canonical implementation this core keeps
// window compensation and shot-noise attenuation in sync under.
type AssignmentKernel int

const (
	// NGP is nearest-grid-point assignment (order 1).
	NGP AssignmentKernel = iota
	// CIC is cloud-in-cell assignment (order 2).
	CIC
	// TSC is triangular-shaped-cloud assignment (order 3).
	TSC
)

func (k AssignmentKernel) String() string {
	switch k {
	case NGP:
		return "NGP"
	case CIC:
		return "CIC"
	case TSC:
		return "TSC"
	default:
		return "unknown"
	}
}

// Order returns the B-spline order of the kernel: 1 for NGP, 2 for CIC,
// 3 for TSC.
func (k AssignmentKernel) Order() (int, bool) {
	switch k {
	case NGP:
		return 1, true
	case CIC:
		return 2, true
	case TSC:
		return 3, true
	default:
		return 0, false
	}
}

// Weights returns the per-axis assignment weights and the grid indices
// they belong to for the continuous grid coordinate g (already scaled
// to cell units: g = nmesh*pos/boxsize). idx and w share length equal
// to the kernel order.
func (k AssignmentKernel) Weights(g float64) (idx []int, w []float64) {
	switch k {
	case NGP:
		i := int(math.Floor(g + 0.5))
		return []int{i}, []float64{1}
	case CIC:
		i := int(math.Floor(g))
		s := g - float64(i)
		return []int{i, i + 1}, []float64{1 - s, s}
	case TSC:
		c := int(math.Floor(g + 0.5))
		s := g - float64(c)
		return []int{c - 1, c, c + 1}, []float64{
			0.5 * (0.5 - s) * (0.5 - s),
			0.75 - s*s,
			0.5 * (0.5 + s) * (0.5 + s),
		}
	default:
		return nil, nil
	}
}

// sinc returns sin(x)/x, defined as 1 at x = 0.
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

// Window returns the Fourier-space assignment window W(k) = (wx*wy*wz)^p
// for the folded signed integer grid index triple (i, j, k) (i for
// i < n/2, else i-n) on a mesh with per-axis cell count n.
func (k AssignmentKernel) Window(i, j, kk int, n [3]int) float64 {
	order, ok := k.Order()
	if !ok {
		return 0
	}
	wx := sinc(math.Pi * float64(i) / float64(n[0]))
	wy := sinc(math.Pi * float64(j) / float64(n[1]))
	wz := sinc(math.Pi * float64(kk) / float64(n[2]))
	w := wx * wy * wz
	return math.Pow(w, float64(order))
}

// ShotNoise returns the kernel-specific shot-noise attenuation S(k) for
// the folded signed integer grid index triple (i, j, k).
func (k AssignmentKernel) ShotNoise(i, j, kk int, n [3]int) float64 {
	xk := math.Pi * float64(i) / float64(n[0])
	yk := math.Pi * float64(j) / float64(n[1])
	zk := math.Pi * float64(kk) / float64(n[2])

	switch k {
	case NGP:
		return 1
	case CIC:
		return sAxisCIC(xk) * sAxisCIC(yk) * sAxisCIC(zk)
	case TSC:
		return sAxisTSC(xk) * sAxisTSC(yk) * sAxisTSC(zk)
	default:
		return 0
	}
}

func sAxisCIC(x float64) float64 {
	s := math.Sin(x)
	return 1 - (2.0/3.0)*s*s
}

func sAxisTSC(x float64) float64 {
	s := math.Sin(x)
	s2 := s * s
	return 1 - s2 + (2.0/15.0)*s2*s2
}
