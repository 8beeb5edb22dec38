package aec3

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

// sineBlock returns a half-full-scale sine in 16-bit sample units, the scale
// the AEC3 thresholds (noise gate, active-render limit) are expressed in.
func sineBlock(freqHz, sampleRate float64, startSample int, n int) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(startSample+i) / sampleRate
		out[i] = float32(0.5 * 32768 * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}

func TestProcessorProducesFiniteOutput(t *testing.T) {
	is := is.New(t)
	p := NewProcessor(DefaultConfig())

	for i := 0; i < 200; i++ {
		render := sineBlock(440, 16000, i*FFTLengthBy2, FFTLengthBy2)
		out := p.ProcessBlock(render, render)
		is.Equal(len(out), FFTLengthBy2)
		for _, v := range out {
			is.True(!math.IsNaN(float64(v)))
			is.True(!math.IsInf(float64(v), 0))
		}
	}
}

func TestProcessorReducesEchoOverTime(t *testing.T) {
	is := is.New(t)
	p := NewProcessor(DefaultConfig())

	var earlyPower, latePower float64
	for i := 0; i < 400; i++ {
		render := sineBlock(440, 16000, i*FFTLengthBy2, FFTLengthBy2)
		capture := render // pure echo, no near-end speech
		out := p.ProcessBlock(render, capture)
		if i < 10 {
			earlyPower += blockPower(out)
		}
		if i >= 390 {
			latePower += blockPower(out)
		}
	}
	is.True(latePower <= earlyPower*2) // should not blow up; best-effort cancellation
}

func TestProcessorResetClearsFilterState(t *testing.T) {
	is := is.New(t)
	p := NewProcessor(DefaultConfig())
	render := sineBlock(440, 16000, 0, FFTLengthBy2)
	for i := 0; i < 50; i++ {
		p.ProcessBlock(render, render)
	}
	p.Reset()
	for _, row := range p.refined.H2() {
		for _, v := range row {
			is.Equal(v, float32(0))
		}
	}
}
