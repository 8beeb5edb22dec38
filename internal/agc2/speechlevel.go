package agc2

// speechLevelLeak is the exponential-decay factor applied to the running
// speech-level estimate on every qualifying frame, corresponding to a time
// constant of 400 frames.
const speechLevelLeak = 1.0 - 1.0/400.0

// initialSpeechLevelDbfs is the estimate's starting point before any
// qualifying speech has been observed, chosen conservatively quiet so the
// gain controller does not over-amplify during startup.
const initialSpeechLevelDbfs = -30.0

// SpeechLevelEstimator tracks the RMS level of frames the VAD is confident
// are speech, only trusting a run once AdjacentSpeechFramesThreshold
// consecutive frames have cleared VadConfidenceThreshold.
type SpeechLevelEstimator struct {
	levelDbfs float64

	consecutive int
	accepted    bool
}

// NewSpeechLevelEstimator constructs an estimator seeded at a quiet default.
func NewSpeechLevelEstimator() *SpeechLevelEstimator {
	return &SpeechLevelEstimator{levelDbfs: initialSpeechLevelDbfs}
}

// Update folds in one frame's RMS level (linear, full-scale-relative) and
// VAD probability, updating the tracked speech level once a run of
// qualifying frames is long enough to trust.
func (e *SpeechLevelEstimator) Update(rms, vadProbability float64) {
	if vadProbability < VadConfidenceThreshold {
		e.consecutive = 0
		return
	}

	e.consecutive++
	if e.consecutive < AdjacentSpeechFramesThreshold {
		return
	}

	frameDbfs := floatToDBFS(rms)
	if !e.accepted {
		e.levelDbfs = frameDbfs
		e.accepted = true
		return
	}

	if frameDbfs > e.levelDbfs {
		e.levelDbfs = frameDbfs
	} else {
		e.levelDbfs = speechLevelLeak*e.levelDbfs + (1-speechLevelLeak)*frameDbfs
	}
}

// LevelDbfs returns the current tracked speech level.
func (e *SpeechLevelEstimator) LevelDbfs() float64 {
	return e.levelDbfs
}

// Reset returns the estimator to its initial, unconverged state.
func (e *SpeechLevelEstimator) Reset() {
	e.levelDbfs = initialSpeechLevelDbfs
	e.consecutive = 0
	e.accepted = false
}
