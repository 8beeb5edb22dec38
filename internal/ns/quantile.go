// Package ns implements the Wiener-filter noise suppressor: a per-bin
// quantile noise tracker, a prior signal-model estimator, a speech
// probability estimator, and the windowed-overlap-add spectral processor
// that ties them together over 160-sample (10ms, 16kHz) band-0 frames.
package ns

// windowBlocks is the number of frames between noise-floor refreshes,
// roughly one second at 10ms per frame.
const windowBlocks = 100

// QuantileNoiseEstimator tracks a low percentile of the magnitude spectrum
// over a sliding window by alternating two minimum-trackers offset by half
// a window, so the exported estimate never jumps by more than one
// half-window's worth of staleness.
type QuantileNoiseEstimator struct {
	numBins int

	minA, minB     []float32
	estimateA, estimateB []float32
	counterA, counterB   int
}

// NewQuantileNoiseEstimator constructs an estimator for the given number of
// spectral bins.
func NewQuantileNoiseEstimator(numBins int) *QuantileNoiseEstimator {
	q := &QuantileNoiseEstimator{
		numBins:   numBins,
		minA:      make([]float32, numBins),
		minB:      make([]float32, numBins),
		estimateA: make([]float32, numBins),
		estimateB: make([]float32, numBins),
		counterB:  windowBlocks / 2,
	}
	for k := range q.estimateA {
		q.estimateA[k] = 1.0
		q.estimateB[k] = 1.0
	}
	return q
}

// Update folds in one frame's magnitude spectrum.
func (q *QuantileNoiseEstimator) Update(magnitude []float32) {
	for k := 0; k < q.numBins; k++ {
		if q.counterA == 0 {
			q.minA[k] = magnitude[k]
		} else if magnitude[k] < q.minA[k] {
			q.minA[k] = magnitude[k]
		}
		if q.counterB == 0 {
			q.minB[k] = magnitude[k]
		} else if magnitude[k] < q.minB[k] {
			q.minB[k] = magnitude[k]
		}
	}

	q.counterA++
	if q.counterA >= windowBlocks {
		copy(q.estimateA, q.minA)
		q.counterA = 0
	}
	q.counterB++
	if q.counterB >= windowBlocks {
		copy(q.estimateB, q.minB)
		q.counterB = 0
	}
}

// Estimate returns the current per-bin noise-floor magnitude estimate.
func (q *QuantileNoiseEstimator) Estimate() []float32 {
	out := make([]float32, q.numBins)
	for k := range out {
		if q.estimateA[k] < q.estimateB[k] {
			out[k] = q.estimateA[k]
		} else {
			out[k] = q.estimateB[k]
		}
	}
	return out
}
