package highpass

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestRemovesDCOffset(t *testing.T) {
	is := is.New(t)
	f := New(16000)
	x := make([]float32, 16000) // 1 second warm-up
	for i := range x {
		x[i] = 0.5
	}
	f.Process(x)

	tail := x[len(x)-160:]
	var sum float64
	for _, v := range tail {
		sum += math.Abs(float64(v))
	}
	mean := sum / float64(len(tail))
	is.True(mean < 0.01)
}

func TestPassesVoiceBandMostlyThrough(t *testing.T) {
	is := is.New(t)
	f := New(16000)
	const freq = 300.0
	x := make([]float32, 16000)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / 16000))
	}
	f.Process(x)

	var inRMS, outRMS float64
	tail := x[len(x)-1600:]
	for i, v := range tail {
		t := float64(i) / 16000
		ref := math.Sin(2 * math.Pi * freq * t)
		inRMS += ref * ref
		outRMS += float64(v) * float64(v)
	}
	ratio := math.Sqrt(outRMS / inRMS)
	is.True(ratio > 0.8)
}

func TestResetClearsState(t *testing.T) {
	is := is.New(t)
	f := New(16000)
	x := make([]float32, 1000)
	for i := range x {
		x[i] = 1
	}
	f.Process(x)
	f.Reset()
	is.Equal(f.sections[0].z1, 0.0)
	is.Equal(f.sections[0].z2, 0.0)
}
