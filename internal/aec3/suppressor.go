package aec3

// SuppressionGain derives per-bin spectral gains from the residual-to-echo
// ratio (ERR) and echo-to-noise ratio (EMR), switching between a normal and
// a nearend tuning profile as dominant-nearend speech is detected. Ported
// in spirit from
// original_source/crates/sonora-aec3/src/suppression_gain.rs and
// dominant_nearend_detector.rs.
type SuppressionGain struct {
	cfg Suppressor

	usingNearendTuning bool
	enrAboveThreshold  int
	holdCounter        int

	prevGain []float32
}

// NewSuppressionGain constructs a suppressor with gains initialised to unity.
func NewSuppressionGain(cfg Suppressor) *SuppressionGain {
	g := make([]float32, FFTLengthBy2Plus1)
	for k := range g {
		g[k] = 1.0
	}
	return &SuppressionGain{cfg: cfg, prevGain: g}
}

// updateDominantNearend folds one sub-block's per-bin ENR into the
// dominant-nearend hold/trigger counters and returns whether the nearend
// tuning should be active this block.
func (s *SuppressionGain) updateDominantNearend(enr []float32) bool {
	d := s.cfg.DominantNearendDetection
	above := 0
	for _, v := range enr {
		if float64(v) > d.EnrThreshold {
			above++
		}
	}

	if above >= d.TriggerThreshold {
		s.enrAboveThreshold++
	} else {
		s.enrAboveThreshold = 0
	}

	if s.enrAboveThreshold > 0 {
		s.holdCounter = d.HoldDuration
		s.usingNearendTuning = true
	} else if s.holdCounter > 0 {
		s.holdCounter--
	} else {
		s.usingNearendTuning = false
	}
	return s.usingNearendTuning
}

// gainForBand computes the ERR/EMR-masked gain for one bin, given the
// masking thresholds of the active tuning profile.
func gainForBand(err, emr float32, mask MaskingThresholds) float32 {
	if float64(emr) < mask.EmrTransparent {
		return 1.0
	}
	if float64(err) >= mask.EnrTransparent {
		return 1.0
	}
	if float64(err) <= mask.EnrSuppress {
		return 0.0
	}
	// Linear ramp between the suppress and transparent thresholds.
	span := mask.EnrTransparent - mask.EnrSuppress
	if span <= 0 {
		return 1.0
	}
	return float32((float64(err) - mask.EnrSuppress) / span)
}

// Compute derives the per-bin suppression gain for one sub-block from the
// residual-to-echo ratio (err), echo-to-noise ratio (emr), and per-bin
// band power used for anti-howling. It clamps the block-to-block gain
// change to the active tuning's [max_dec_factor_lf, max_inc_factor].
func (s *SuppressionGain) Compute(err, emr, bandPower []float32) []float32 {
	nearend := s.updateDominantNearend(err)
	tuning := s.cfg.NormalTuning
	if nearend {
		tuning = s.cfg.NearendTuning
	}

	gain := make([]float32, FFTLengthBy2Plus1)
	for k := range gain {
		mask := tuning.MaskLf
		if k > s.cfg.LastLfBand {
			mask = tuning.MaskHf
		}
		target := gainForBand(err[k], emr[k], mask)

		prev := s.prevGain[k]
		maxInc := float32(tuning.MaxIncFactor)
		maxDec := float32(tuning.MaxDecFactorLf)
		var next float32
		switch {
		case target > prev:
			next = prev * maxInc
			if floor := float32(s.cfg.FloorFirstIncrease); next < floor {
				next = floor
			}
			if next > target {
				next = target
			}
		case target < prev:
			next = prev - (prev-target)*(1-maxDec)
			if next < target {
				next = target
			}
		default:
			next = target
		}

		if k >= s.cfg.FirstHfBand {
			hb := s.cfg.HighBandsSuppression
			if float64(bandPower[k]) > hb.AntiHowlingActivationThreshold {
				next *= float32(hb.AntiHowlingGain)
			}
			if float64(err[k]) > hb.EnrThreshold && next > float32(hb.MaxGainDuringEcho) {
				next = float32(hb.MaxGainDuringEcho)
			}
		}

		if next < 0 {
			next = 0
		} else if next > 1 {
			next = 1
		}
		gain[k] = next
	}

	s.prevGain = gain
	return gain
}

// UsingNearendTuning reports which tuning profile the suppressor most
// recently applied.
func (s *SuppressionGain) UsingNearendTuning() bool {
	return s.usingNearendTuning
}
