package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haloclust/measure/param"
)

const sampleINI = `
[Grid]
Nx = 32
Ny = 32
Nz = 32
Boxx = 1000
Boxy = 1000
Boxz = 1000
Assignment = CIC
Ell1 = 2
Ell2 = 0
ELL = 2
NumKbin = 20
NumRbin = 20

[Catalogue]
DataFile = /tmp/data.dat
RandFile = /tmp/rand.dat
Alpha = 0.1
`

func TestLoadStringParsesGridAndCatalogue(t *testing.T) {
	cfg, err := LoadString(sampleINI)
	require.NoError(t, err)

	assert.Equal(t, param.CIC, cfg.Grid.Assignment)
	assert.Equal(t, int32(2), cfg.Grid.Ell1)
	assert.Equal(t, int32(0), cfg.Grid.Ell2)
	assert.Equal(t, int32(2), cfg.Grid.ELL)
	assert.Equal(t, "/tmp/data.dat", cfg.DataFile)
	assert.Equal(t, "/tmp/rand.dat", cfg.RandFile)
	assert.InDelta(t, 0.1, cfg.Alpha, 1e-12)
}

func TestLoadStringRejectsUnknownAssignment(t *testing.T) {
	bad := `
[Grid]
Nx = 8
Ny = 8
Nz = 8
Boxx = 100
Boxy = 100
Boxz = 100
Assignment = QUARTIC
Ell1 = 0
Ell2 = 0
ELL = 0
NumKbin = 4
NumRbin = 4
`
	_, err := LoadString(bad)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/path/measure.ini")
	assert.Error(t, err)
}
