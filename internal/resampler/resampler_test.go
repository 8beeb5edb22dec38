package resampler

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestIdentityPassesThrough(t *testing.T) {
	is := is.New(t)
	r := New(16000, 16000)
	is.True(r.Identity())
	in := []float32{1, 2, 3, 4}
	out := r.Process(in)
	is.Equal(out, in)
}

func TestUpsampleDoublesLengthInSteadyState(t *testing.T) {
	is := is.New(t)
	r := New(8000, 16000)
	is.Equal(r.l, 2)
	is.Equal(r.m, 1)

	x := make([]float32, 8000)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * 300 * float64(i) / 8000))
	}

	total := 0
	for i := 0; i < len(x); i += 160 {
		end := i + 160
		if end > len(x) {
			end = len(x)
		}
		out := r.Process(x[i:end])
		total += len(out)
	}
	// Steady state: close to 2x the input sample count once warm-up settles.
	is.True(total > len(x)*2-tapsPerPhase*4)
	is.True(total < len(x)*2+tapsPerPhase*4)
}

func TestDownsampleHalvesLengthInSteadyState(t *testing.T) {
	is := is.New(t)
	r := New(16000, 8000)
	is.Equal(r.l, 1)
	is.Equal(r.m, 2)

	x := make([]float32, 16000)
	total := 0
	for i := 0; i < len(x); i += 160 {
		end := i + 160
		if end > len(x) {
			end = len(x)
		}
		out := r.Process(x[i:end])
		total += len(out)
	}
	is.True(total > len(x)/2-tapsPerPhase*4)
	is.True(total < len(x)/2+tapsPerPhase*4)
}
