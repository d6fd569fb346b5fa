// Package catio provides the catalogue-file readers that sit outside
// the measurement core proper (spec.md places catalogue file I/O
// out of scope for the core, consumed here as a concrete but
// swappable collaborator). ReadASCII follows the plain-text `x y z nz
// ws wc` column layout the reference catalogue reader consumes;
// ReadGadgetBinary follows the Gadget-2 snapshot format.
package catio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/geom"
)

// ReadASCII reads a whitespace-separated catalogue file with columns
// `x y z [nz [ws [wc]]]`. Missing trailing columns default to nz=0 (the
// caller must supply nz out-of-band if it needs power-spectrum
// normalisation), ws=1, wc=1. Blank lines and lines starting with '#'
// are skipped.
func ReadASCII(path string) ([]catalog.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catio: opening %s: %w", path, err)
	}
	defer f.Close()

	var ps []catalog.Particle
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf(
				"catio: %s:%d: need at least 3 columns (x y z), found %d",
				path, lineNo, len(fields),
			)
		}

		vals := make([]float64, 6)
		vals[4], vals[5] = 1, 1 // ws, wc default to 1
		for i := 0; i < len(fields) && i < 6; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf(
					"catio: %s:%d: column %d: %w", path, lineNo, i, err,
				)
			}
			vals[i] = v
		}

		ps = append(ps, catalog.NewParticle(
			geom.Vec{vals[0], vals[1], vals[2]}, vals[3], vals[4], vals[5],
		))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("catio: reading %s: %w", path, err)
	}
	return ps, nil
}

// WriteASCII writes particles back out in the same `x y z nz ws wc`
// column layout ReadASCII consumes.
func WriteASCII(w io.Writer, ps []catalog.Particle) error {
	buf := bufio.NewWriter(w)
	for _, p := range ps {
		if _, err := fmt.Fprintf(
			buf, "%.10g %.10g %.10g %.10g %.10g %.10g\n",
			p.Pos[0], p.Pos[1], p.Pos[2], p.Nz, p.Ws, p.Wc,
		); err != nil {
			return err
		}
	}
	return buf.Flush()
}
