package agc2

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestLimiterPassesQuietSignalThroughUnchanged(t *testing.T) {
	is := is.New(t)
	l := NewLimiter(16)
	frame := make([]float32, 32)
	for i := range frame {
		frame[i] = float32(0.01 * math.Sin(float64(i)))
	}
	out := l.Process(frame)
	is.Equal(len(out), len(frame))
	// Output is the input delayed by the 16-sample look-ahead, at unity gain.
	for i := range out {
		want := float32(0)
		if i >= 16 {
			want = frame[i-16]
		}
		is.Equal(out[i], want)
	}
}

func TestLimiterAttenuatesOverloadedSignal(t *testing.T) {
	is := is.New(t)
	l := NewLimiter(16)
	frame := make([]float32, 64)
	for i := range frame {
		frame[i] = 1.0
	}
	var out []float32
	for i := 0; i < 5; i++ {
		out = l.Process(frame)
	}
	for _, v := range out {
		is.True(math.Abs(float64(v)) <= 1.01)
	}
}

func TestLimiterResetClearsLookahead(t *testing.T) {
	is := is.New(t)
	l := NewLimiter(8)
	frame := make([]float32, 16)
	for i := range frame {
		frame[i] = 0.5
	}
	l.Process(frame)
	l.Reset()
	for _, v := range l.lookahead {
		is.Equal(v, float32(0))
	}
}
