// Command measure is the thin CLI driver over the estimator package: it
// parses a parameter file, reads the data/random catalogues it names,
// dispatches to one estimator entry point, and writes the resulting
// bins as plain text to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/catio"
	"github.com/haloclust/measure/config"
	"github.com/haloclust/measure/estimator"
	"github.com/haloclust/measure/norm"
	"github.com/haloclust/measure/param"
)

func main() {
	configPath := flag.String("config", "", "path to the INI parameter file")
	mode := flag.String(
		"mode", "power-box",
		"which estimator to run: power, correlation, power-box, correlation-box, bispectrum, 3pcf",
	)
	kFirst := flag.Float64("kbin-first", 0.01, "centre of the first k bin")
	kWidth := flag.Float64("kbin-width", 0.01, "uniform k bin width")
	rFirst := flag.Float64("rbin-first", 10, "centre of the first r bin")
	rWidth := flag.Float64("rbin-width", 10, "uniform r bin width")
	k2 := flag.Float64("k2", 0.05, "fixed second wavenumber leg for bispectrum mode")
	k2Width := flag.Float64("k2-width", 0.01, "width of the fixed second wavenumber shell")
	r2 := flag.Float64("r2", 50, "fixed second separation leg for 3pcf mode")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("measure: -config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("measure: %v", err)
	}

	dataParticles, err := catio.ReadASCII(cfg.DataFile)
	if err != nil {
		log.Fatalf("measure: reading data catalogue: %v", err)
	}
	// Each particle's line of sight is the unit vector along its position.
	data := catalog.View{Particles: dataParticles, LOS: make([]catalog.LineOfSight, len(dataParticles))}
	for i, p := range dataParticles {
		data.LOS[i] = catalog.LineOfSight{Pos: p.Pos.Unit()}
	}

	var rand catalog.View
	if cfg.RandFile != "" {
		randParticles, err := catio.ReadASCII(cfg.RandFile)
		if err != nil {
			log.Fatalf("measure: reading random catalogue: %v", err)
		}
		rand = catalog.View{Particles: randParticles, LOS: make([]catalog.LineOfSight, len(randParticles))}
		for i, p := range randParticles {
			rand.LOS[i] = catalog.LineOfSight{Pos: p.Pos.Unit()}
		}
	}

	kbin := param.NewRegularBinning(int(cfg.Grid.NumKbin), *kFirst, *kWidth)
	rbin := param.NewRegularBinning(int(cfg.Grid.NumRbin), *rFirst, *rWidth)

	econf := estimator.Config{
		Grid: cfg.Grid, Data: data, Rand: rand,
		LOSData: data.LOS, LOSRand: rand.LOS,
		Alpha: cfg.Alpha, KBin: kbin, RBin: rbin,
		K2: *k2, K2Width: *k2Width, R2: *r2,
	}

	var result struct {
		Centres []float64
		Values  []complex128
		Counts  []int64
	}

	switch *mode {
	case "power":
		econf.Norm = norm.PSParticles(rand, cfg.Alpha)
		r, err := estimator.PowerSpectrum(econf)
		fatalIfErr(err)
		result.Centres, result.Values, result.Counts = r.Centres, r.Values, r.Counts
	case "correlation":
		econf.Norm = norm.PSParticles(rand, cfg.Alpha)
		r, err := estimator.Correlation(econf)
		fatalIfErr(err)
		result.Centres, result.Values, result.Counts = r.Centres, r.Values, r.Counts
	case "power-box":
		econf.Norm = norm.PSBox(cfg.Grid.Volume(), int64(data.Len()))
		r, err := estimator.PowerSpectrumBox(econf)
		fatalIfErr(err)
		result.Centres, result.Values, result.Counts = r.Centres, r.Values, r.Counts
	case "correlation-box":
		econf.Norm = norm.PSBox(cfg.Grid.Volume(), int64(data.Len()))
		r, err := estimator.CorrelationBox(econf)
		fatalIfErr(err)
		result.Centres, result.Values, result.Counts = r.Centres, r.Values, r.Counts
	case "bispectrum":
		econf.Norm = norm.BParticles(rand, cfg.Alpha)
		r, err := estimator.Bispectrum(econf)
		fatalIfErr(err)
		result.Centres, result.Values, result.Counts = r.Centres, r.Values, r.Counts
	case "3pcf":
		econf.Norm = norm.BParticles(rand, cfg.Alpha)
		r, err := estimator.ThreePointCorrelation(econf)
		fatalIfErr(err)
		result.Centres, result.Values, result.Counts = r.Centres, r.Values, r.Counts
	default:
		log.Fatalf("measure: unrecognised -mode %q", *mode)
	}

	w := os.Stdout
	for j, c := range result.Centres {
		fmt.Fprintf(w, "%14.6e %14.6e %14.6e %8d\n",
			c, real(result.Values[j]), imag(result.Values[j]), result.Counts[j])
	}
}

func fatalIfErr(err error) {
	if err != nil {
		log.Fatalf("measure: %v", err)
	}
}
