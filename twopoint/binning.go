package twopoint

import (
	"math"

	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/param"
)

// Hard-coded fine-sampling table resolution. These bound the finest bin
// width a caller may request; requesting anything narrower produces
// aliased results and is rejected by ValidateKBinWidth/ValidateRBinWidth.
const (
	DeltaKFine = 1e-4
	NFineK     = 100000
	DeltaRFine = 0.5
	NFineR     = 10000
)

// AccumulatorBin holds a running complex sum and a mode/pair count for
// one fine-sampling slot.
type AccumulatorBin struct {
	Sum complex128
	N   int64
}

// Finalise returns Sum/N when N>0, else 0.
func (a AccumulatorBin) Finalise() complex128 {
	if a.N == 0 {
		return 0
	}
	return a.Sum / complex(float64(a.N), 0)
}

// BinnedResult is the caller-facing output of a shell-binned estimator
// pass: bin centres, finalised complex values, mode/pair counts, and
// the indices of any bin that received zero counts.
type BinnedResult struct {
	Centres  []float64
	Values   []complex128
	Counts   []int64
	Warnings []int
}

// fineTable is the two-stage fine sampling table of §4.3 steps 6-7: a
// dense array of AccumulatorBin indexed by round(mag/delta), bridging
// the grid's natural quantisation and the caller's coarse bin layout.
type fineTable struct {
	delta float64
	bins  []AccumulatorBin
}

func newFineTable(delta float64, n int) *fineTable {
	return &fineTable{delta: delta, bins: make([]AccumulatorBin, n)}
}

// deposit accumulates val into the fine slot nearest mag, silently
// dropping magnitudes beyond the table's range (bounded by n_fine).
func (t *fineTable) deposit(mag float64, val complex128) {
	idx := int(math.Floor(mag/t.delta + 0.5))
	if idx < 0 || idx >= len(t.bins) {
		return
	}
	t.bins[idx].Sum += val
	t.bins[idx].N++
}

// shellBin sums fine slots into the caller's coarse binning, dividing
// each coarse bin by its total mode count and recording a warning for
// any bin that receives no modes.
func (t *fineTable) shellBin(binning param.Binning) BinnedResult {
	sums, counts, centres := t.shellBinRaw(binning)
	result := BinnedResult{Centres: centres, Values: make([]complex128, len(sums)), Counts: counts}
	for j, s := range sums {
		if counts[j] == 0 {
			result.Warnings = append(result.Warnings, j)
			continue
		}
		result.Values[j] = s / complex(float64(counts[j]), 0)
	}
	return result
}

// shellBinRaw sums fine slots into the caller's coarse binning without
// dividing by the mode count, for callers (the 3PCF-variant 2PCF) that
// apply their own non-standard normalisation to the raw sum.
func (t *fineTable) shellBinRaw(binning param.Binning) (sums []complex128, counts []int64, centres []float64) {
	n := binning.Len()
	sums = make([]complex128, n)
	counts = make([]int64, n)
	centres = make([]float64, n)
	for j := 0; j < n; j++ {
		lo, hi := binning.Edges(j)
		centres[j] = binning.Centre(j)
		for i, b := range t.bins {
			if b.N == 0 {
				continue
			}
			c := float64(i) * t.delta
			if c > lo && c <= hi {
				sums[j] += b.Sum
				counts[j] += b.N
			}
		}
	}
	return sums, counts, centres
}

// ValidateKBinWidth returns InvalidConfig if kbin requests a narrower
// bin than the fine-sampling table can resolve.
func ValidateKBinWidth(kbin param.Binning) error {
	if kbin.MinWidth() < DeltaKFine {
		return measureerr.New(
			measureerr.InvalidConfig, "twopoint.ValidateKBinWidth",
			"requested bin width %g is finer than the fine-sampling resolution %g",
			kbin.MinWidth(), DeltaKFine,
		)
	}
	return nil
}

// ValidateRBinWidth returns InvalidConfig if rbin requests a narrower
// bin than the fine-sampling table can resolve.
func ValidateRBinWidth(rbin param.Binning) error {
	if rbin.MinWidth() < DeltaRFine {
		return measureerr.New(
			measureerr.InvalidConfig, "twopoint.ValidateRBinWidth",
			"requested bin width %g is finer than the fine-sampling resolution %g",
			rbin.MinWidth(), DeltaRFine,
		)
	}
	return nil
}
