package param

import (
	"gonum.org/v1/gonum/floats"

	"github.com/haloclust/measure/measureerr"
)

// Binning is an ordered, monotonically increasing sequence of bin
// centres, each covering a half-open interval (c[j]-widthLo[j]/2,
// c[j]+widthHi[j]/2]. Bin 0's lower edge is clamped to 0.
type Binning struct {
	centres          []float64
	widthLo, widthHi []float64
}

// NewRegularBinning builds a Binning of n bins of uniform width,
// starting at centre `first` and spaced by `width`, mirroring
// gonum/floats.Span's linspace semantics for the centre sequence.
func NewRegularBinning(n int, first, width float64) Binning {
	centres := make([]float64, n)
	if n == 1 {
		centres[0] = first
	} else {
		floats.Span(centres, first, first+width*float64(n-1))
	}
	widthLo := make([]float64, n)
	widthHi := make([]float64, n)
	for i := range widthLo {
		widthLo[i] = width
		widthHi[i] = width
	}
	return Binning{centres: centres, widthLo: widthLo, widthHi: widthHi}
}

// NewIrregularBinning builds a Binning from explicit per-bin centres and
// lower/upper widths; each edge lies half the corresponding width from
// the centre. All three slices must share the same length and centres
// must be strictly increasing.
func NewIrregularBinning(centres, widthLo, widthHi []float64) (Binning, error) {
	if len(centres) != len(widthLo) || len(centres) != len(widthHi) {
		return Binning{}, measureerr.New(
			measureerr.InvalidInput, "param.NewIrregularBinning",
			"centres (%d), widthLo (%d), widthHi (%d) must share a length",
			len(centres), len(widthLo), len(widthHi),
		)
	}
	for i := 1; i < len(centres); i++ {
		if centres[i] <= centres[i-1] {
			return Binning{}, measureerr.New(
				measureerr.InvalidInput, "param.NewIrregularBinning",
				"centres must be strictly increasing at index %d", i,
			)
		}
	}
	return Binning{centres: append([]float64{}, centres...),
		widthLo: append([]float64{}, widthLo...),
		widthHi: append([]float64{}, widthHi...)}, nil
}

// Len returns the number of bins.
func (b Binning) Len() int { return len(b.centres) }

// Centre returns the centre of bin j.
func (b Binning) Centre(j int) float64 { return b.centres[j] }

// Edges returns the half-open interval (lo, hi] covered by bin j, with
// bin 0's lower edge clamped to 0.
func (b Binning) Edges(j int) (lo, hi float64) {
	lo = b.centres[j] - b.widthLo[j]/2
	if j == 0 && lo < 0 {
		lo = 0
	}
	hi = b.centres[j] + b.widthHi[j]/2
	return lo, hi
}

// MinWidth returns the narrowest bin width across the binning, used to
// validate a caller's bin layout against the fine-sampling table
// resolution (Delta_user >= Delta_fine).
func (b Binning) MinWidth() float64 {
	min := (b.widthLo[0] + b.widthHi[0]) / 2
	for i := 1; i < len(b.centres); i++ {
		w := (b.widthLo[i] + b.widthHi[i]) / 2
		if w < min {
			min = w
		}
	}
	return min
}
