package fft

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestForwardInverseRoundTrip(t *testing.T) {
	is := is.New(t)
	x := make([]float32, Length)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * 7 * float64(i) / float64(Length)))
	}

	spectrum := Forward(x)
	is.Equal(len(spectrum), SpectrumLength)

	y := Inverse(spectrum)
	is.Equal(len(y), Length)

	var rms float64
	for i := range x {
		d := float64(x[i] - y[i])
		rms += d * d
	}
	rms = math.Sqrt(rms / float64(Length))
	is.True(rms < 1e-4)
}

func TestForwardNInverseNRoundTripAtOtherLength(t *testing.T) {
	is := is.New(t)
	const n = 256
	x := make([]float32, n)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * 11 * float64(i) / float64(n)))
	}

	spectrum := ForwardN(x, n)
	is.Equal(len(spectrum), n/2+1)

	y := InverseN(spectrum, n)

	var rms float64
	for i := range x {
		d := float64(x[i] - y[i])
		rms += d * d
	}
	rms = math.Sqrt(rms / float64(n))
	is.True(rms < 1e-4)
}

func TestForwardDCBin(t *testing.T) {
	is := is.New(t)
	x := make([]float32, Length)
	for i := range x {
		x[i] = 1
	}
	spectrum := Forward(x)
	is.True(math.Abs(float64(spectrum[0].Re)-Length) < 1e-2)
	for k := 1; k < SpectrumLength; k++ {
		is.True(math.Abs(float64(spectrum[k].Re)) < 1e-2)
		is.True(math.Abs(float64(spectrum[k].Im)) < 1e-2)
	}
}
