package catio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
)

// gadgetHeader is the on-disk layout of a Gadget-2 snapshot header
// block, unchanged from the format's own definition.
type gadgetHeader struct {
	NPart                                     [6]uint32
	Mass                                      [6]float64
	Time, Redshift                            float64
	FlagSfr, FlagFeedback                     int32
	NPartTotal                                [6]uint32
	FlagCooling, NumFiles                     int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	FlagStellarAge, HashTabSize               int32

	Padding [88]byte
}

func (gh *gadgetHeader) count() int64 {
	return int64(gh.NPart[1]) + int64(gh.NPart[0])<<32
}

// readInt32 reads a single little-or-big-endian int32, the length
// marker Fortran-unformatted Gadget blocks are bracketed by.
func readInt32(f *os.File, order binary.ByteOrder) (int32, error) {
	var n int32
	err := binary.Read(f, order, &n)
	return n, err
}

// ReadGadgetBinary reads a Gadget-2 format-1 snapshot and returns its
// particles as a clustering-statistics catalogue. The snapshot's
// implicit mean density is not known to the file format, so every
// particle's Nz is set to the caller-supplied background density nz;
// ws and wc default to 1.
func ReadGadgetBinary(path string, order binary.ByteOrder, nz float64) ([]catalog.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catio: opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := readInt32(f, order); err != nil {
		return nil, fmt.Errorf("catio: %s: reading header length: %w", path, err)
	}
	gh := &gadgetHeader{}
	if err := binary.Read(f, order, gh); err != nil {
		return nil, fmt.Errorf("catio: %s: reading header: %w", path, err)
	}
	if _, err := readInt32(f, order); err != nil {
		return nil, fmt.Errorf("catio: %s: reading header trailer: %w", path, err)
	}

	n := gh.count()
	if n <= 0 {
		return nil, fmt.Errorf("catio: %s: non-positive particle count %d", path, n)
	}

	if _, err := readInt32(f, order); err != nil {
		return nil, fmt.Errorf("catio: %s: reading position block length: %w", path, err)
	}
	posBuf := make([]float32, 3*n)
	if err := binary.Read(f, order, posBuf); err != nil {
		return nil, fmt.Errorf("catio: %s: reading positions: %w", path, err)
	}
	if _, err := readInt32(f, order); err != nil {
		return nil, fmt.Errorf("catio: %s: reading position block trailer: %w", path, err)
	}

	ps := make([]catalog.Particle, n)
	for i := range ps {
		pos := geom.Vec{
			wrap(float64(posBuf[3*i+0]), gh.BoxSize),
			wrap(float64(posBuf[3*i+1]), gh.BoxSize),
			wrap(float64(posBuf[3*i+2]), gh.BoxSize),
		}
		ps[i] = catalog.NewParticle(pos, nz, 1, 1)
	}
	return ps, nil
}

// wrap interprets x as a position within a periodic domain of width
// boxSize, folding it back into [0, boxSize).
func wrap(x, boxSize float64) float64 {
	if x < 0 {
		return x + boxSize
	} else if x >= boxSize {
		return x - boxSize
	}
	return x
}
