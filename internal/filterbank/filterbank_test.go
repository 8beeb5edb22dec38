package filterbank

import (
	"math"
	"math/rand"
	"testing"

	"github.com/matryer/is"
)

func TestAnalysisSynthesisReconstructs(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewSource(1))
	x := make([]float32, FullBandFrameLength)
	for i := range x {
		x[i] = float32(rng.NormFloat64() * 0.3)
	}

	var bands [NumBands][]float32
	for b := range bands {
		bands[b] = make([]float32, SplitBandFrameLength)
	}
	Analysis(x, bands)

	out := make([]float32, FullBandFrameLength)
	Synthesis(bands, out)

	var rms float64
	for i := range x {
		d := float64(x[i] - out[i])
		rms += d * d
	}
	rms = math.Sqrt(rms / float64(len(x)))
	is.True(rms < 1e-6)
}

func TestAnalysisZeroInputZeroOutput(t *testing.T) {
	is := is.New(t)
	x := make([]float32, FullBandFrameLength)
	var bands [NumBands][]float32
	for b := range bands {
		bands[b] = make([]float32, SplitBandFrameLength)
	}
	Analysis(x, bands)
	for b := range bands {
		for _, v := range bands[b] {
			is.Equal(v, float32(0))
		}
	}
}

func TestAnalysisSynthesisReconstructsAtOtherFrameLength(t *testing.T) {
	is := is.New(t)
	const frameLen = 320 // 10ms at 32kHz
	rng := rand.New(rand.NewSource(2))
	x := make([]float32, frameLen)
	for i := range x {
		x[i] = float32(rng.NormFloat64() * 0.3)
	}

	var bands [NumBands][]float32
	for b := range bands {
		bands[b] = make([]float32, frameLen/NumBands)
	}
	Analysis(x, bands)

	out := make([]float32, frameLen)
	Synthesis(bands, out)

	var rms float64
	for i := range x {
		d := float64(x[i] - out[i])
		rms += d * d
	}
	rms = math.Sqrt(rms / float64(len(x)))
	is.True(rms < 1e-6)
}
