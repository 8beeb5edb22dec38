package aec3

import "math"

// clampFloat64 clamps v into [lo, hi], replacing NaN with lo, and reports
// whether the value changed.
func clampFloat64(v *float64, lo, hi float64) bool {
	if math.IsNaN(*v) {
		if *v == lo {
			return false
		}
		*v = lo
		return true
	}
	if *v < lo {
		*v = lo
		return true
	}
	if *v > hi {
		*v = hi
		return true
	}
	return false
}

func clampInt(v *int, lo, hi int) bool {
	if *v < lo {
		*v = lo
		return true
	}
	if *v > hi {
		*v = hi
		return true
	}
	return false
}

// Validate clamps every out-of-range field to its declared bounds and
// enforces the cross-field invariants from the specification's
// configuration-validation section. It returns true if anything was
// changed, mirroring the source's "validated without change" vs "had to
// change something" boolean.
func (c *Config) Validate() bool {
	changed := false

	changed = clampInt(&c.Buffering.ExcessRenderDetectionIntervalBlocks, 1, 1<<20) || changed
	changed = clampInt(&c.Buffering.MaxAllowedExcessRenderBlocks, 0, 1<<20) || changed

	if c.Delay.DownSamplingFactor != 4 && c.Delay.DownSamplingFactor != 8 {
		c.Delay.DownSamplingFactor = 4
		changed = true
	}
	changed = clampInt(&c.Delay.NumFilters, 1, 32) || changed
	changed = clampInt(&c.Delay.DelayHeadroomBlocks, 0, 64) || changed
	changed = clampInt(&c.Delay.HysteresisLimitBlocks, 0, 64) || changed
	changed = clampInt(&c.Delay.Thresholds.Initial, 0, 1<<30) || changed
	changed = clampInt(&c.Delay.Thresholds.Converged, 0, 1<<30) || changed

	changed = validateFilterConfig(&c.Filter.Refined) || changed
	changed = validateFilterConfig(&c.Filter.RefinedInitial) || changed
	changed = validateCoarseConfig(&c.Filter.Coarse) || changed
	changed = validateCoarseConfig(&c.Filter.CoarseInitial) || changed

	if c.Filter.RefinedInitial.LengthBlocks > c.Filter.Refined.LengthBlocks {
		c.Filter.RefinedInitial.LengthBlocks = c.Filter.Refined.LengthBlocks
		changed = true
	}
	if c.Filter.CoarseInitial.LengthBlocks > c.Filter.Coarse.LengthBlocks {
		c.Filter.CoarseInitial.LengthBlocks = c.Filter.Coarse.LengthBlocks
		changed = true
	}

	changed = clampFloat64(&c.Erle.Min, 1.0, 100000.0) || changed
	changed = clampFloat64(&c.Erle.MaxL, 1.0, 100000.0) || changed
	changed = clampFloat64(&c.Erle.MaxH, 1.0, 100000.0) || changed
	maxErle := math.Min(c.Erle.MaxL, c.Erle.MaxH)
	if c.Erle.Min > maxErle {
		c.Erle.Min = maxErle
		changed = true
	}
	if c.Erle.NumSections > c.Filter.Refined.LengthBlocks {
		c.Erle.NumSections = c.Filter.Refined.LengthBlocks
		changed = true
	}
	changed = clampInt(&c.Erle.NumSections, 1, 1<<20) || changed

	changed = clampFloat64(&c.EpStrength.DefaultGain, 0, 1000) || changed
	changed = clampFloat64(&c.EpStrength.DefaultLen, 0, 1) || changed
	changed = clampFloat64(&c.EpStrength.NearendLen, 0, 1) || changed

	if c.Suppressor.FirstHfBand <= c.Suppressor.LastLfBand {
		c.Suppressor.FirstHfBand = c.Suppressor.LastLfBand + 1
		changed = true
	}
	changed = clampInt(&c.Suppressor.LastLfBand, 0, FFTLengthBy2Plus1-2) || changed
	changed = clampInt(&c.Suppressor.FirstHfBand, 1, FFTLengthBy2Plus1-1) || changed

	if c.Suppressor.SubbandNearendDetection.Subband2.High < c.Suppressor.SubbandNearendDetection.Subband2.Low {
		c.Suppressor.SubbandNearendDetection.Subband2.High = c.Suppressor.SubbandNearendDetection.Subband2.Low
		changed = true
	}
	if c.Suppressor.SubbandNearendDetection.Subband1.High < c.Suppressor.SubbandNearendDetection.Subband1.Low {
		c.Suppressor.SubbandNearendDetection.Subband1.High = c.Suppressor.SubbandNearendDetection.Subband1.Low
		changed = true
	}

	changed = clampFloat64(&c.Suppressor.NormalTuning.MaxIncFactor, 1.0, 100.0) || changed
	changed = clampFloat64(&c.Suppressor.NormalTuning.MaxDecFactorLf, 0.0, 1.0) || changed
	changed = clampFloat64(&c.Suppressor.NearendTuning.MaxIncFactor, 1.0, 100.0) || changed
	changed = clampFloat64(&c.Suppressor.NearendTuning.MaxDecFactorLf, 0.0, 1.0) || changed

	return changed
}

func validateFilterConfig(f *RefinedConfiguration) bool {
	changed := false
	changed = clampInt(&f.LengthBlocks, 1, 64) || changed
	changed = clampFloat64(&f.LeakageConverged, 0, 1) || changed
	changed = clampFloat64(&f.LeakageDiverged, 0, 1) || changed
	changed = clampFloat64(&f.ErrorFloor, 0, f.ErrorCeil) || changed
	changed = clampFloat64(&f.ErrorCeil, f.ErrorFloor, 1000) || changed
	changed = clampFloat64(&f.NoiseGate, 0, math.MaxFloat32) || changed
	return changed
}

func validateCoarseConfig(f *CoarseConfiguration) bool {
	changed := false
	changed = clampInt(&f.LengthBlocks, 1, 64) || changed
	changed = clampFloat64(&f.Rate, 0, 1) || changed
	changed = clampFloat64(&f.NoiseGate, 0, math.MaxFloat32) || changed
	return changed
}
