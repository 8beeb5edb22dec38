package ns

import "math"

const modelUpdateRate = 0.01

// SignalModelEstimator derives the three scalar indicators the speech
// probability estimator combines — an average log-likelihood ratio, a
// spectral flatness measure, and a spectral-template difference — and
// slowly adapts their decision thresholds to the signal's long-term
// statistics.
type SignalModelEstimator struct {
	template []float32

	lrtThr      float64
	flatnessThr float64
	diffThr     float64
}

// NewSignalModelEstimator constructs an estimator with thresholds seeded at
// typical speech/non-speech boundary values.
func NewSignalModelEstimator(numBins int) *SignalModelEstimator {
	return &SignalModelEstimator{
		template:    make([]float32, numBins),
		lrtThr:      0.5,
		flatnessThr: 0.5,
		diffThr:     1.0,
	}
}

// Compute folds in one frame's magnitude and noise-floor spectra and
// returns the frame-level LRT, flatness, and spectral-difference
// indicators together with the per-bin smoothed log-LRT the posterior
// probability formula needs.
func (m *SignalModelEstimator) Compute(magnitude, noise []float32) (avgLrt, flatness, diff float64, perBinLogLrt []float64) {
	const eps = 1e-10

	perBinLogLrt = make([]float64, len(magnitude))
	var sumLogLrt float64
	var sumLog, sumLin float64
	var diffSq, templateNormSq float64

	for k, mag := range magnitude {
		snr := float64(mag)*float64(mag) / (float64(noise[k])*float64(noise[k]) + eps)
		logLrt := math.Log(snr + eps)
		perBinLogLrt[k] = logLrt
		sumLogLrt += logLrt

		sumLog += math.Log(float64(mag) + eps)
		sumLin += float64(mag)

		d := float64(mag) - float64(m.template[k])
		diffSq += d * d
		templateNormSq += float64(m.template[k]) * float64(m.template[k])
	}

	n := float64(len(magnitude))
	avgLrt = sumLogLrt / n

	geoMean := math.Exp(sumLog / n)
	arithMean := sumLin / n
	if arithMean > 0 {
		flatness = geoMean / arithMean
	}

	if templateNormSq > eps {
		diff = math.Sqrt(diffSq / templateNormSq)
	} else {
		diff = 0
	}

	for k := range m.template {
		m.template[k] += float32(modelUpdateRate) * (magnitude[k] - m.template[k])
	}
	m.lrtThr += modelUpdateRate * (avgLrt - m.lrtThr)
	m.flatnessThr += modelUpdateRate * (flatness - m.flatnessThr)
	m.diffThr += modelUpdateRate * (diff - m.diffThr)

	return avgLrt, flatness, diff, perBinLogLrt
}

// Thresholds returns the current long-time-constant decision thresholds.
func (m *SignalModelEstimator) Thresholds() (lrtThr, flatnessThr, diffThr float64) {
	return m.lrtThr, m.flatnessThr, m.diffThr
}
