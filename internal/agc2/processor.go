package agc2

import "math"

// Processor wires the full AGC2 pipeline together: VAD, speech-level
// estimation, adaptive digital gain, saturation protection, a fixed
// makeup gain, and the look-ahead limiter.
type Processor struct {
	vad         VoiceActivityDetector
	speechLevel *SpeechLevelEstimator
	gain        *GainController
	saturation  *SaturationProtector
	fixedGainDb float64
	limiter     *Limiter

	noiseFloorDbfs float64
}

// NewProcessor constructs an AGC2 pipeline around the given VAD
// implementation (typically an *rnnvad.Vad, accepted here through the
// VoiceActivityDetector interface to keep this package decoupled from the
// feature-extraction internals).
func NewProcessor(vad VoiceActivityDetector, gainCfg GainControllerConfig, fixedGainDb float64, limiterLookahead int) *Processor {
	return &Processor{
		vad:            vad,
		speechLevel:    NewSpeechLevelEstimator(),
		gain:           NewGainController(gainCfg),
		saturation:     NewSaturationProtector(),
		fixedGainDb:    fixedGainDb,
		limiter:        NewLimiter(limiterLookahead),
		noiseFloorDbfs: -90,
	}
}

func rms(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

func peakAbs(x []float32) float64 {
	var peak float64
	for _, v := range x {
		a := math.Abs(float64(v))
		if a > peak {
			peak = a
		}
	}
	return peak
}

// Process applies AGC2 to one frame of normalised ([-1, 1]) float32 audio.
// vadFrame is a separately framed and resampled 24kHz/20ms buffer for the
// VAD to score; frameDurationSeconds is the duration of frame, used to
// rate-limit the adaptive gain's movement.
func (p *Processor) Process(frame []float32, vadFrame []float32, frameDurationSeconds float64) []float32 {
	speechProbability := p.vad.Probability(vadFrame)

	frameRms := rms(frame) * MaxFloatS16Value
	p.speechLevel.Update(frameRms, speechProbability)

	if speechProbability < 0.5 {
		frameDbfs := floatToDBFS(frameRms)
		p.noiseFloorDbfs += 0.05 * (frameDbfs - p.noiseFloorDbfs)
	}

	headroom := p.saturation.Margin()
	gainDb := p.gain.Update(headroom, p.speechLevel.LevelDbfs(), p.noiseFloorDbfs, frameDurationSeconds)
	totalGain := linearGainFromDb(gainDb + p.fixedGainDb)

	gained := make([]float32, len(frame))
	for i, v := range frame {
		gained[i] = float32(float64(v) * totalGain)
	}

	p.saturation.Update(floatToDBFS(peakAbs(gained) * MaxFloatS16Value))

	return p.limiter.Process(gained)
}

// Reset clears all stateful components.
func (p *Processor) Reset() {
	p.vad.Reset()
	p.speechLevel.Reset()
	p.gain.Reset()
	p.saturation.Reset()
	p.limiter.Reset()
	p.noiseFloorDbfs = -90
}

// SpeechLevelDbfs exposes the current tracked speech level, useful for
// diagnostics/stats reporting.
func (p *Processor) SpeechLevelDbfs() float64 {
	return p.speechLevel.LevelDbfs()
}
