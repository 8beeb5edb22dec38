package aec3

import (
	"testing"

	"github.com/matryer/is"
)

func TestGainForBandTransparentAboveThreshold(t *testing.T) {
	is := is.New(t)
	mask := MaskingThresholds{EnrTransparent: 1.0, EnrSuppress: 0.2, EmrTransparent: 0.1}
	is.Equal(gainForBand(2.0, 1.0, mask), float32(1.0))
}

func TestGainForBandSuppressedBelowThreshold(t *testing.T) {
	is := is.New(t)
	mask := MaskingThresholds{EnrTransparent: 1.0, EnrSuppress: 0.2, EmrTransparent: 0.1}
	is.Equal(gainForBand(0.1, 1.0, mask), float32(0.0))
}

func TestGainForBandTransparentWhenEmrBelowThreshold(t *testing.T) {
	is := is.New(t)
	mask := MaskingThresholds{EnrTransparent: 1.0, EnrSuppress: 0.2, EmrTransparent: 0.5}
	is.Equal(gainForBand(0.1, 0.1, mask), float32(1.0))
}

func TestSuppressionGainStaysWithinUnitInterval(t *testing.T) {
	is := is.New(t)
	s := NewSuppressionGain(defaultSuppressor())

	err := make([]float32, FFTLengthBy2Plus1)
	emr := make([]float32, FFTLengthBy2Plus1)
	power := make([]float32, FFTLengthBy2Plus1)
	for k := range err {
		err[k] = 0.05
		emr[k] = 1.0
		power[k] = 10
	}

	for i := 0; i < 20; i++ {
		gain := s.Compute(err, emr, power)
		for _, g := range gain {
			is.True(g >= 0)
			is.True(g <= 1)
		}
	}
}

func TestDominantNearendSwitchesToNearendTuning(t *testing.T) {
	is := is.New(t)
	cfg := defaultSuppressor()
	s := NewSuppressionGain(cfg)

	err := make([]float32, FFTLengthBy2Plus1)
	emr := make([]float32, FFTLengthBy2Plus1)
	power := make([]float32, FFTLengthBy2Plus1)
	for k := range err {
		err[k] = 10.0
		emr[k] = 10.0
	}

	s.Compute(err, emr, power)
	is.True(s.UsingNearendTuning())
}
