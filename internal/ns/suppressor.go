package ns

import (
	"math"

	"github.com/chriscow/apm-go/internal/fft"
)

// FrameLength is the external frame size: 160 samples, 10ms at 16kHz.
const FrameLength = 160

// fftSize is the analysis/synthesis window length; the 96-sample overlap
// with FrameLength gives a WOLA (weighted overlap-add) hop of FrameLength.
const fftSize = 256

const overlap = fftSize - FrameLength

// TargetLevel selects the suppressor's aggressiveness, expressed as the
// dB reduction target for stationary noise.
type TargetLevel int

const (
	TargetLevel6Db TargetLevel = iota
	TargetLevel12Db
	TargetLevel18Db
	TargetLevel21Db
)

func (t TargetLevel) gainFloor() float32 {
	switch t {
	case TargetLevel6Db:
		return float32(math.Pow(10, -6.0/20))
	case TargetLevel12Db:
		return float32(math.Pow(10, -12.0/20))
	case TargetLevel21Db:
		return float32(math.Pow(10, -21.0/20))
	default:
		return float32(math.Pow(10, -18.0/20))
	}
}

func hannWindow(n int) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = float32(0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Suppressor is the Wiener-filter noise suppressor: windowed analysis,
// quantile noise tracking, a prior signal model, a speech-probability
// estimator, per-bin gain shaping, and overlap-add synthesis, operating on
// 160-sample band-0 frames.
type Suppressor struct {
	targetLevel TargetLevel

	window []float32

	history     []float32 // fftSize samples, most recent FrameLength at the tail
	outputTail  []float32 // overlap samples pending from the previous synthesis

	quantile   *QuantileNoiseEstimator
	model      *SignalModelEstimator
	speechProb *SpeechProbabilityEstimator
}

// NewSuppressor constructs a suppressor at the given target suppression
// level.
func NewSuppressor(target TargetLevel) *Suppressor {
	numBins := fftSize/2 + 1
	return &Suppressor{
		targetLevel: target,
		window:      hannWindow(fftSize),
		history:     make([]float32, fftSize),
		outputTail:  make([]float32, overlap),
		quantile:    NewQuantileNoiseEstimator(numBins),
		model:       NewSignalModelEstimator(numBins),
		speechProb:  NewSpeechProbabilityEstimator(),
	}
}

// ProcessFrame suppresses stationary noise in one 160-sample frame and
// returns the suppressed 160-sample output.
func (s *Suppressor) ProcessFrame(x []float32) []float32 {
	if len(x) != FrameLength {
		panic("ns: ProcessFrame requires a 160-sample frame")
	}

	copy(s.history, s.history[FrameLength:])
	copy(s.history[overlap:], x)

	windowed := make([]float32, fftSize)
	for i := range windowed {
		windowed[i] = s.history[i] * s.window[i]
	}

	spectrum := fft.ForwardN(windowed, fftSize)
	magnitude := make([]float32, len(spectrum))
	for k, c := range spectrum {
		magnitude[k] = float32(math.Hypot(float64(c.Re), float64(c.Im)))
	}

	s.quantile.Update(magnitude)
	noise := s.quantile.Estimate()

	avgLrt, flatness, diff, perBinLogLrt := s.model.Compute(magnitude, noise)
	lrtThr, flatnessThr, diffThr := s.model.Thresholds()
	posterior := s.speechProb.Update(avgLrt, flatness, diff, lrtThr, flatnessThr, diffThr, perBinLogLrt)

	gFloor := s.targetLevel.gainFloor()
	gained := make([]fft.Complex, len(spectrum))
	for k, c := range spectrum {
		snr := float64(magnitude[k]) * float64(magnitude[k]) / (float64(noise[k])*float64(noise[k]) + 1e-10)
		wiener := snr / (1 + snr)
		g := float32(posterior[k]*wiener + (1-posterior[k])*float64(gFloor))
		if g < gFloor {
			g = gFloor
		} else if g > 1 {
			g = 1
		}
		gained[k] = fft.Complex{Re: c.Re * g, Im: c.Im * g}
	}

	synthesis := fft.InverseN(gained, fftSize)
	for i := range synthesis {
		synthesis[i] *= s.window[i]
	}

	out := make([]float32, FrameLength)
	for i := 0; i < overlap; i++ {
		out[i] = synthesis[i] + s.outputTail[i]
	}
	copy(out[overlap:], synthesis[overlap:FrameLength])

	newTail := make([]float32, overlap)
	copy(newTail, synthesis[FrameLength:])
	s.outputTail = newTail

	return out
}

// TargetLevel returns the configured suppression aggressiveness.
func (s *Suppressor) TargetLevel() TargetLevel {
	return s.targetLevel
}
