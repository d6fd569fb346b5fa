package twopoint

import (
	"github.com/haloclust/measure/catalog"
	"github.com/haloclust/measure/math/ylm"
	"github.com/haloclust/measure/measureerr"
)

// sumWeightedYlm returns Sigma w^p * Y_ellm(los) over a view, matching
// each particle to its own line of sight.
func sumWeightedYlm(v catalog.View, p int, ell, m int32) (complex128, error) {
	if len(v.Particles) != len(v.LOS) {
		return 0, measureerr.New(
			measureerr.InvalidInput, "twopoint.sumWeightedYlm",
			"particles has length %d but los has length %d", len(v.Particles), len(v.LOS),
		)
	}
	var sum complex128
	for i, part := range v.Particles {
		wp := 1.0
		for k := 0; k < p; k++ {
			wp *= part.W
		}
		sum += complex(wp, 0) * ylm.Reduced(int(ell), int(m), v.LOS[i].Pos)
	}
	return sum, nil
}

// NPSSurvey is the survey power-spectrum shot noise, N_PS = Sigma_d
// w^2 Y_ellm(los_d) + alpha^2 Sigma_r w^2 Y_ellm(los_r).
func NPSSurvey(data, rand catalog.View, alpha float64, ell, m int32) (complex128, error) {
	d, err := sumWeightedYlm(data, 2, ell, m)
	if err != nil {
		return 0, err
	}
	r, err := sumWeightedYlm(rand, 2, ell, m)
	if err != nil {
		return 0, err
	}
	return d + complex(alpha*alpha, 0)*r, nil
}

// NPSBox is the periodic-box power-spectrum shot noise,
// N_PS,box = N_data + alpha^2*N_rand.
func NPSBox(nData, nRand int64, alpha float64) float64 {
	return float64(nData) + alpha*alpha*float64(nRand)
}

// N2PCFWindow is the survey-window 2PCF shot noise,
// N_2PCF,win = alpha^2 Sigma_r w^2 Y_ellm(los_r).
func N2PCFWindow(rand catalog.View, alpha float64, ell, m int32) (complex128, error) {
	r, err := sumWeightedYlm(rand, 2, ell, m)
	if err != nil {
		return 0, err
	}
	return complex(alpha*alpha, 0) * r, nil
}

// NBSelf is the bispectrum self-term, N_B,self = Sigma_d w^3
// Y_ellm(los_d) - alpha^3 Sigma_r w^3 Y_ellm(los_r).
func NBSelf(data, rand catalog.View, alpha float64, ell, m int32) (complex128, error) {
	d, err := sumWeightedYlm(data, 3, ell, m)
	if err != nil {
		return 0, err
	}
	r, err := sumWeightedYlm(rand, 3, ell, m)
	if err != nil {
		return 0, err
	}
	return d - complex(alpha*alpha*alpha, 0)*r, nil
}
