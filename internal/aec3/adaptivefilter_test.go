package aec3

import (
	"testing"

	"github.com/matryer/is"
)

func TestAdaptiveFilterPredictIsZeroForZeroedTaps(t *testing.T) {
	is := is.New(t)
	f := NewRefinedFilter(defaultFilter().Refined)
	render := make([][]Complex, len(f.partitions))
	for p := range render {
		render[p] = make([]Complex, FFTLengthBy2Plus1)
		for k := range render[p] {
			render[p][k] = Complex{Re: 1, Im: 0.5}
		}
	}
	out := f.Predict(render)
	for _, c := range out {
		is.Equal(c, Complex{})
	}
}

func TestAdaptiveFilterAdaptMovesTapsTowardError(t *testing.T) {
	is := is.New(t)
	f := NewRefinedFilter(defaultFilter().Refined)

	render := make([][]Complex, len(f.partitions))
	power := make([][]float32, len(f.partitions))
	for p := range render {
		render[p] = make([]Complex, FFTLengthBy2Plus1)
		power[p] = make([]float32, FFTLengthBy2Plus1)
		for k := range render[p] {
			render[p][k] = Complex{Re: 10000, Im: 0}
			power[p][k] = 10000 * 10000
		}
	}
	errSpec := make([]Complex, FFTLengthBy2Plus1)
	for k := range errSpec {
		errSpec[k] = Complex{Re: 1, Im: 0}
	}

	f.Adapt(render, power, errSpec, false)

	nonZero := false
	for _, row := range f.H2() {
		for _, v := range row {
			if v != 0 {
				nonZero = true
			}
		}
	}
	is.True(nonZero)
}

func TestAdaptiveFilterResetClearsTaps(t *testing.T) {
	is := is.New(t)
	f := NewCoarseFilter(defaultFilter().Coarse)
	render := make([][]Complex, len(f.partitions))
	power := make([][]float32, len(f.partitions))
	for p := range render {
		render[p] = make([]Complex, FFTLengthBy2Plus1)
		power[p] = make([]float32, FFTLengthBy2Plus1)
		for k := range render[p] {
			render[p][k] = Complex{Re: 10}
			power[p][k] = 100
		}
	}
	errSpec := make([]Complex, FFTLengthBy2Plus1)
	for k := range errSpec {
		errSpec[k] = Complex{Re: 1}
	}
	f.Adapt(render, power, errSpec, false)
	f.Reset()
	for _, row := range f.H2() {
		for _, v := range row {
			is.Equal(v, float32(0))
		}
	}
}
