package aec3

import "math"

// AdaptiveFilter is a partitioned-block, frequency-domain adaptive FIR
// filter used as either the refined (NLMS-style, leakage-gated) or coarse
// (fixed-rate) echo-path model. Ported in spirit from
// original_source/crates/sonora-aec3/src/adaptive_fir_filter.rs.
type AdaptiveFilter struct {
	partitions [][]Complex // H[p], one partition per FFT bin set
	h2         [][]float32 // squared magnitude per partition, for ERL

	errorFloor float64
	errorCeil  float64
	noiseGate  float64

	leakageConverged float64
	leakageDiverged  float64
	fixedRate        float64 // >0 selects coarse (fixed-rate) mode
}

// NewRefinedFilter constructs a leakage-gated NLMS-style adaptive filter.
func NewRefinedFilter(cfg RefinedConfiguration) *AdaptiveFilter {
	f := newAdaptiveFilter(cfg.LengthBlocks)
	f.errorFloor = cfg.ErrorFloor
	f.errorCeil = cfg.ErrorCeil
	f.noiseGate = cfg.NoiseGate
	f.leakageConverged = cfg.LeakageConverged
	f.leakageDiverged = cfg.LeakageDiverged
	return f
}

// NewCoarseFilter constructs a fixed-rate shadow filter.
func NewCoarseFilter(cfg CoarseConfiguration) *AdaptiveFilter {
	f := newAdaptiveFilter(cfg.LengthBlocks)
	f.noiseGate = cfg.NoiseGate
	f.fixedRate = cfg.Rate
	return f
}

func newAdaptiveFilter(numPartitions int) *AdaptiveFilter {
	partitions := make([][]Complex, numPartitions)
	h2 := make([][]float32, numPartitions)
	for p := range partitions {
		partitions[p] = make([]Complex, FFTLengthBy2Plus1)
		h2[p] = make([]float32, FFTLengthBy2Plus1)
	}
	return &AdaptiveFilter{partitions: partitions, h2: h2}
}

// Reset clears all filter taps, as happens on echo-path change.
func (f *AdaptiveFilter) Reset() {
	for p := range f.partitions {
		for k := range f.partitions[p] {
			f.partitions[p][k] = Complex{}
			f.h2[p][k] = 0
		}
	}
}

// Predict forms the filter's estimate of the echo spectrum by summing the
// elementwise product of each render partition's spectrum with its
// corresponding filter partition.
func (f *AdaptiveFilter) Predict(renderPartitions []([]Complex)) []Complex {
	out := make([]Complex, FFTLengthBy2Plus1)
	n := len(f.partitions)
	if len(renderPartitions) < n {
		n = len(renderPartitions)
	}
	for p := 0; p < n; p++ {
		rp := renderPartitions[p]
		hp := f.partitions[p]
		for k := range out {
			out[k].Re += rp[k].Re*hp[k].Re - rp[k].Im*hp[k].Im
			out[k].Im += rp[k].Re*hp[k].Im + rp[k].Im*hp[k].Re
		}
	}
	return out
}

// Adapt updates every partition from the error spectrum and the render
// partitions' power spectra, applying the error floor/ceiling clamp, the
// per-bin noise gate, and (for the refined filter) the converged/diverged
// leakage switch. errorIsDiverging selects leakage_diverged over
// leakage_converged for this update.
func (f *AdaptiveFilter) Adapt(renderPartitions []([]Complex), renderPower [][]float32, errSpec []Complex, errorIsDiverging bool) {
	rate := f.fixedRate
	if rate == 0 {
		// Refined filter: NLMS-style normalised step, leakage-gated.
		leakage := f.leakageConverged
		if errorIsDiverging {
			leakage = f.leakageDiverged
		}
		rate = 1 - leakage
	}

	clampedErr := make([]Complex, len(errSpec))
	for k, e := range errSpec {
		mag := math.Hypot(float64(e.Re), float64(e.Im))
		if mag < f.errorFloor && mag > 0 {
			scale := f.errorFloor / mag
			clampedErr[k] = Complex{Re: e.Re * float32(scale), Im: e.Im * float32(scale)}
		} else if mag > f.errorCeil {
			scale := f.errorCeil / mag
			clampedErr[k] = Complex{Re: e.Re * float32(scale), Im: e.Im * float32(scale)}
		} else {
			clampedErr[k] = e
		}
	}

	n := len(f.partitions)
	if len(renderPartitions) < n {
		n = len(renderPartitions)
	}
	for p := 0; p < n; p++ {
		rp := renderPartitions[p]
		pw := renderPower[p]
		hp := f.partitions[p]
		h2p := f.h2[p]
		for k := range hp {
			if pw[k] < float32(f.noiseGate) {
				continue
			}
			norm := pw[k]
			if norm <= 0 {
				continue
			}
			step := float32(rate) / norm

			// Correlate the conjugate render spectrum with the clamped
			// error to form the tap update.
			upd := Complex{
				Re: rp[k].Re*clampedErr[k].Re + rp[k].Im*clampedErr[k].Im,
				Im: rp[k].Re*clampedErr[k].Im - rp[k].Im*clampedErr[k].Re,
			}
			hp[k].Re += step * upd.Re
			hp[k].Im += step * upd.Im
			h2p[k] = hp[k].Re*hp[k].Re + hp[k].Im*hp[k].Im
		}
	}
}

// H2 returns the per-partition squared-magnitude spectra, as consumed by
// ComputeERL.
func (f *AdaptiveFilter) H2() [][]float32 {
	return f.h2
}
