// Package config parses the INI-style parameter file that drives a
// cmd/measure run, in the same gcfg-based idiom the teacher uses for
// its own ball/box run configuration.
package config

import (
	"gopkg.in/gcfg.v1"

	"github.com/haloclust/measure/measureerr"
	"github.com/haloclust/measure/param"
)

// iniFile mirrors the on-disk [Grid]/[Catalogue] section layout gcfg
// decodes a parameter file into.
type iniFile struct {
	Grid struct {
		Nx, Ny, Nz             int32
		Boxx, Boxy, Boxz       float64
		Assignment             string
		Ell1, Ell2, ELL        int32
		NumKbin, NumRbin       int32
	}
	Catalogue struct {
		DataFile, RandFile string
		Alpha              float64
	}
}

// RunConfig is the parsed, validated result of a parameter file: a
// GridParameters plus the catalogue file paths and alpha contrast
// cmd/measure needs to build an estimator.Config.
type RunConfig struct {
	Grid                param.GridParameters
	DataFile, RandFile  string
	Alpha               float64
}

// Load parses path as an INI-style parameter file and validates the
// resulting grid parameters.
func Load(path string) (RunConfig, error) {
	var ini iniFile
	if err := gcfg.ReadFileInto(&ini, path); err != nil {
		return RunConfig{}, measureerr.New(
			measureerr.InvalidConfig, "config.Load", "parsing %s: %v", path, err,
		)
	}
	return fromINI(ini)
}

// LoadString parses src as INI-formatted text, for tests and embedded
// configuration that never touches disk.
func LoadString(src string) (RunConfig, error) {
	var ini iniFile
	if err := gcfg.ReadStringInto(&ini, src); err != nil {
		return RunConfig{}, measureerr.New(
			measureerr.InvalidConfig, "config.LoadString", "%v", err,
		)
	}
	return fromINI(ini)
}

func fromINI(ini iniFile) (RunConfig, error) {
	kernel, ok := parseAssignment(ini.Grid.Assignment)
	if !ok {
		return RunConfig{}, measureerr.New(
			measureerr.InvalidConfig, "config.fromINI",
			"unrecognised assignment kernel %q", ini.Grid.Assignment,
		)
	}

	grid, err := param.NewGridParameters(
		[3]int32{ini.Grid.Nx, ini.Grid.Ny, ini.Grid.Nz},
		[3]float64{ini.Grid.Boxx, ini.Grid.Boxy, ini.Grid.Boxz},
		kernel, ini.Grid.Ell1, ini.Grid.Ell2, ini.Grid.ELL,
		ini.Grid.NumKbin, ini.Grid.NumRbin,
	)
	if err != nil {
		return RunConfig{}, err
	}

	return RunConfig{
		Grid:     grid,
		DataFile: ini.Catalogue.DataFile,
		RandFile: ini.Catalogue.RandFile,
		Alpha:    ini.Catalogue.Alpha,
	}, nil
}

func parseAssignment(s string) (param.AssignmentKernel, bool) {
	switch s {
	case "NGP":
		return param.NGP, true
	case "CIC":
		return param.CIC, true
	case "TSC":
		return param.TSC, true
	default:
		return 0, false
	}
}
