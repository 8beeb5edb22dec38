package aec3

// pointsToAccumulate is the number of blocks averaged into one ERLE
// update step.
const pointsToAccumulate = 6

// blocksToHoldErle extends the hold period applied after an echo-path
// onset is detected before the bounded ERLE estimate is allowed to
// decay back to its steady-state ceiling.
const blocksToHoldErle = 100

// blocksForOnsetDetection is the total window, following a suspected
// onset, during which the unbounded ERLE estimate is trusted over the
// held, bounded one.
const blocksForOnsetDetection = blocksToHoldErle + 150

// x2BandEnergyThreshold is the per-bin render power below which a block is
// considered to carry no informative render energy; ERLE updates that would
// decrease the estimate are frozen (alpha = 0) while this holds, so the
// estimate doesn't collapse during render gaps.
const x2BandEnergyThreshold = 44.0

// erleBand is one subband's ERLE tracking state.
type erleBand struct {
	erle           float32
	erleUnbounded  float32
	erleOnsetComp  float32
	holdCounter    int
}

// SubbandErleEstimator tracks per-bin ERL-enhancement (ERLE), the ratio of
// echo power before and after linear cancellation, separately for the low
// and high halves of the spectrum with distinct ceilings. Ported from
// original_source/crates/sonora-aec3/src/subband_erle_estimator.rs.
type SubbandErleEstimator struct {
	cfg Erle

	maxErle []float32 // per bin, FFTLengthBy2Plus1

	bands []erleBand

	accumY2        []float32
	accumE2        []float32
	accumLowRender []bool
	accumCount     int

	onsetDetected bool
}

// NewSubbandErleEstimator constructs an estimator for one capture channel.
func NewSubbandErleEstimator(cfg Erle) *SubbandErleEstimator {
	e := &SubbandErleEstimator{
		cfg:            cfg,
		maxErle:        make([]float32, FFTLengthBy2Plus1),
		bands:          make([]erleBand, FFTLengthBy2Plus1),
		accumY2:        make([]float32, FFTLengthBy2Plus1),
		accumE2:        make([]float32, FFTLengthBy2Plus1),
		accumLowRender: make([]bool, FFTLengthBy2Plus1),
	}
	e.setMaxErleBands(float32(cfg.MaxL), float32(cfg.MaxH))
	for k := range e.bands {
		e.bands[k] = erleBand{
			erle:          float32(cfg.Min),
			erleUnbounded: float32(cfg.Min),
			erleOnsetComp: float32(cfg.Min),
		}
	}
	return e
}

// setMaxErleBands splits the spectrum into a low half using maxL and a high
// half using maxH, matching the reference's band split at the midpoint.
func (e *SubbandErleEstimator) setMaxErleBands(maxL, maxH float32) {
	half := len(e.maxErle) / 2
	for k := range e.maxErle {
		if k < half {
			e.maxErle[k] = maxL
		} else {
			e.maxErle[k] = maxH
		}
	}
}

// Reset clears accumulated state, as happens on a filter reset or echo-path
// change.
func (e *SubbandErleEstimator) Reset() {
	for k := range e.bands {
		e.bands[k] = erleBand{
			erle:          float32(e.cfg.Min),
			erleUnbounded: float32(e.cfg.Min),
			erleOnsetComp: float32(e.cfg.Min),
		}
		e.accumY2[k] = 0
		e.accumE2[k] = 0
		e.accumLowRender[k] = false
	}
	e.accumCount = 0
	e.onsetDetected = false
}

// Update folds one sub-block's render power spectrum X2 (used only to gate
// the low-render-energy case), capture power spectrum Y2 (the ERLE
// numerator), and residual-error power spectrum E2 (the denominator) into
// the ERLE estimate, accumulating pointsToAccumulate blocks before each bin
// is actually refreshed.
func (e *SubbandErleEstimator) Update(x2, y2, e2 []float32, converged bool) {
	for k := 0; k < FFTLengthBy2Plus1; k++ {
		e.accumY2[k] += y2[k]
		e.accumE2[k] += e2[k]
		if x2[k] < x2BandEnergyThreshold {
			e.accumLowRender[k] = true
		}
	}
	e.accumCount++
	if e.accumCount < pointsToAccumulate {
		return
	}

	for k := 0; k < FFTLengthBy2Plus1; k++ {
		e.updateBand(k, converged)
		e.accumY2[k] = 0
		e.accumE2[k] = 0
		e.accumLowRender[k] = false
	}
	e.accumCount = 0

	// Bin 0 and the Nyquist bin have no informative echo content; copy
	// from their nearest informative neighbour.
	e.bands[0] = e.bands[1]
	e.bands[FFTLengthBy2] = e.bands[FFTLengthBy2-1]
}

func (e *SubbandErleEstimator) updateBand(k int, converged bool) {
	if e.accumE2[k] <= 0 {
		return
	}
	instErle := e.accumY2[k] / e.accumE2[k]
	lowRender := e.accumLowRender[k]

	b := &e.bands[k]

	// Decreasing moves fast (alpha 0.1) unless render energy was too low to
	// trust the drop, in which case the estimate is frozen (alpha 0);
	// increasing always moves slow (alpha 0.05).
	if instErle < b.erleUnbounded {
		alpha := float32(0.1)
		if lowRender {
			alpha = 0
		}
		b.erleUnbounded += alpha * (instErle - b.erleUnbounded)
	} else {
		b.erleUnbounded += 0.05 * (instErle - b.erleUnbounded)
	}
	if b.erleUnbounded > 100000 {
		b.erleUnbounded = 100000
	}
	if b.erleUnbounded < float32(e.cfg.Min) {
		b.erleUnbounded = float32(e.cfg.Min)
	}

	if !converged {
		return
	}

	if e.cfg.OnsetDetection && e.detectOnset(instErle, b.erle) {
		b.holdCounter = blocksForOnsetDetection
	}

	ceil := e.maxErle[k]

	if instErle < b.erle {
		alpha := float32(0.1)
		if lowRender {
			alpha = 0
		}
		b.erle += alpha * (instErle - b.erle)
	} else {
		b.erle += 0.05 * (instErle - b.erle)
	}
	if b.erle > ceil {
		b.erle = ceil
	}
	if b.erle < float32(e.cfg.Min) {
		b.erle = float32(e.cfg.Min)
	}

	if b.holdCounter > 0 {
		b.holdCounter--
		if b.erleUnbounded > b.erleOnsetComp {
			b.erleOnsetComp = b.erleUnbounded
		} else {
			decayed := 0.97 * b.erleOnsetComp
			if b.erleUnbounded > decayed {
				b.erleOnsetComp = b.erleUnbounded
			} else {
				b.erleOnsetComp = decayed
			}
		}
		if b.erleOnsetComp > ceil {
			b.erleOnsetComp = ceil
		}
	} else {
		b.erleOnsetComp = b.erle
	}
}

// detectOnset flags a sudden jump in instantaneous ERLE relative to the
// currently bounded estimate as a likely echo-path onset.
func (e *SubbandErleEstimator) detectOnset(inst, bounded float32) bool {
	return inst > 1.5*bounded && inst > 2*float32(e.cfg.Min)
}

// Erle returns the current bounded per-bin ERLE estimate, clamped to
// [cfg.Min, maxErle[k]] by construction.
func (e *SubbandErleEstimator) Erle() []float32 {
	out := make([]float32, len(e.bands))
	for k, b := range e.bands {
		out[k] = b.erle
	}
	return out
}

// ErleOnsetCompensated returns the onset-compensated ERLE. For
// blocksForOnsetDetection converged ERLE updates after a detected onset it
// follows the unbounded estimate's peak, decaying by 0.97 per update but
// never below the unbounded estimate (and capped at the bin's maximum);
// outside that window it equals the bounded estimate.
func (e *SubbandErleEstimator) ErleOnsetCompensated() []float32 {
	out := make([]float32, len(e.bands))
	for k, b := range e.bands {
		out[k] = b.erleOnsetComp
	}
	return out
}
