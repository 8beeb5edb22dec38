package rnnvad

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestVadReturnsZeroForSilence(t *testing.T) {
	is := is.New(t)
	v := New()
	frame := make([]float32, FrameSize)
	is.Equal(v.Probability(frame), 0.0)
}

func TestVadReturnsBoundedProbabilityForTone(t *testing.T) {
	is := is.New(t)
	v := New()
	frame := make([]float32, FrameSize)
	for i := range frame {
		frame[i] = float32(0.8 * math.Sin(2*math.Pi*220*float64(i)/SampleRate))
	}
	p := v.Probability(frame)
	is.True(p >= 0 && p <= 1)
}

func TestVadResetClearsHiddenState(t *testing.T) {
	is := is.New(t)
	v := New()
	frame := make([]float32, FrameSize)
	for i := range frame {
		frame[i] = float32(0.8 * math.Sin(2*math.Pi*220*float64(i)/SampleRate))
	}
	v.Probability(frame)
	v.Reset()
	for _, h := range v.network.hidden {
		is.Equal(h, 0.0)
	}
}

func TestExtractorDeltasRequireHistory(t *testing.T) {
	is := is.New(t)
	e := NewExtractor()
	frame := make([]float32, FrameSize)
	for i := range frame {
		frame[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	f1 := e.Extract(frame)
	is.True(!f1.Silence)
	for _, d := range f1.CepstrumDelta {
		is.Equal(d, 0.0)
	}
	f2 := e.Extract(frame)
	is.True(!f2.Silence)
}
