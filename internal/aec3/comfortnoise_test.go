package aec3

import (
	"testing"

	"github.com/matryer/is"
)

func TestNoiseFloorFactorMatchesFormula(t *testing.T) {
	is := is.New(t)
	got := noiseFloorFactor(-96.03406)
	is.True(got > 0)
	is.True(got < 100)
}

func TestComfortNoiseGeneratorTracksQuietSignal(t *testing.T) {
	is := is.New(t)
	g := NewComfortNoiseGenerator(defaultComfortNoise())

	y2 := make([]float32, FFTLengthBy2Plus1)
	for k := range y2 {
		y2[k] = 100
	}
	for i := 0; i < comfortNoiseWarmupBlocks+10; i++ {
		g.Update(y2, false)
	}

	n2 := g.N2()
	for _, v := range n2 {
		is.True(v > 0)
	}
}

func TestComfortNoiseGeneratorSkipsUpdateWhenSaturated(t *testing.T) {
	is := is.New(t)
	g := NewComfortNoiseGenerator(defaultComfortNoise())
	before := append([]float32(nil), g.N2()...)

	y2 := make([]float32, FFTLengthBy2Plus1)
	for k := range y2 {
		y2[k] = 1e9
	}
	g.Update(y2, true)

	is.Equal(g.N2(), before)
}

func TestComfortNoiseGenerateProducesZeroDCAndNyquist(t *testing.T) {
	is := is.New(t)
	g := NewComfortNoiseGenerator(defaultComfortNoise())

	lowerRe := make([]float32, FFTLengthBy2Plus1)
	lowerIm := make([]float32, FFTLengthBy2Plus1)
	upperRe := make([]float32, FFTLengthBy2Plus1)
	upperIm := make([]float32, FFTLengthBy2Plus1)
	g.Generate(lowerRe, lowerIm, upperRe, upperIm)

	is.Equal(lowerRe[0], float32(0))
	is.Equal(lowerIm[0], float32(0))
	is.Equal(lowerRe[FFTLengthBy2], float32(0))
	is.Equal(upperRe[FFTLengthBy2], float32(0))
}
