package agc2

import (
	"testing"

	"github.com/matryer/is"
)

type fixedVad struct {
	probability float64
	resetCalls  int
}

func (f *fixedVad) Probability(frame []float32) float64 { return f.probability }
func (f *fixedVad) Reset()                               { f.resetCalls++ }

func TestProcessorProducesFiniteOutputForSpeech(t *testing.T) {
	is := is.New(t)
	vad := &fixedVad{probability: 0.99}
	p := NewProcessor(vad, DefaultGainControllerConfig(), 0.0, 16)

	frame := make([]float32, 160)
	for i := range frame {
		frame[i] = 0.05
	}
	vadFrame := make([]float32, FrameSizeForVad)

	var out []float32
	for i := 0; i < 20; i++ {
		out = p.Process(frame, vadFrame, 0.01)
	}
	is.Equal(len(out), len(frame))
	for _, v := range out {
		is.True(v == v) // not NaN
	}
}

func TestProcessorResetClearsState(t *testing.T) {
	is := is.New(t)
	vad := &fixedVad{probability: 0.99}
	p := NewProcessor(vad, DefaultGainControllerConfig(), 0.0, 16)

	frame := make([]float32, 160)
	for i := range frame {
		frame[i] = 0.1
	}
	vadFrame := make([]float32, FrameSizeForVad)
	for i := 0; i < 20; i++ {
		p.Process(frame, vadFrame, 0.01)
	}
	p.Reset()
	is.True(vad.resetCalls == 1)
	is.Equal(p.SpeechLevelDbfs(), initialSpeechLevelDbfs)
}
