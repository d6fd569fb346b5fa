package twopoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haloclust/measure/param"
)

func TestAccumulatorBinFinalise(t *testing.T) {
	empty := AccumulatorBin{}
	assert.Equal(t, complex128(0), empty.Finalise())

	filled := AccumulatorBin{Sum: complex(6, 2), N: 2}
	assert.Equal(t, complex(3, 1), filled.Finalise())
}

func TestFineTableShellBinDividesByModeCount(t *testing.T) {
	table := newFineTable(1.0, 10)
	table.deposit(2.0, complex(4, 0))
	table.deposit(2.4, complex(6, 0))
	table.deposit(5.0, complex(10, 0))

	binning := param.NewRegularBinning(2, 2, 2)
	result := table.shellBin(binning)

	require.Len(t, result.Values, 2)
	assert.Equal(t, int64(2), result.Counts[0])
	assert.Equal(t, complex(5, 0), result.Values[0])
	assert.Equal(t, int64(1), result.Counts[1])
	assert.Equal(t, complex(10, 0), result.Values[1])
	assert.Empty(t, result.Warnings)
}

func TestFineTableShellBinWarnsOnEmptyBin(t *testing.T) {
	table := newFineTable(1.0, 10)
	table.deposit(2.0, complex(4, 0))

	binning := param.NewRegularBinning(2, 2, 2)
	result := table.shellBin(binning)

	assert.Equal(t, int64(0), result.Counts[1])
	assert.Equal(t, complex128(0), result.Values[1])
	assert.Equal(t, []int{1}, result.Warnings)
}

func TestValidateKBinWidthRejectsNarrowerThanFineResolution(t *testing.T) {
	tooNarrow := param.NewRegularBinning(3, 0.1, DeltaKFine/10)
	err := ValidateKBinWidth(tooNarrow)
	assert.Error(t, err)

	fine := param.NewRegularBinning(3, 0.1, DeltaKFine*10)
	assert.NoError(t, ValidateKBinWidth(fine))
}

func TestValidateRBinWidthRejectsNarrowerThanFineResolution(t *testing.T) {
	tooNarrow := param.NewRegularBinning(3, 5, DeltaRFine/10)
	err := ValidateRBinWidth(tooNarrow)
	assert.Error(t, err)

	fine := param.NewRegularBinning(3, 5, DeltaRFine*10)
	assert.NoError(t, ValidateRBinWidth(fine))
}
