package simd

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestScalarSqrt(t *testing.T) {
	is := is.New(t)
	x := []float32{4, 9, 16, 0}
	Scalar{}.Sqrt(x)
	is.True(math.Abs(float64(x[0]-2)) < 1e-6)
	is.True(math.Abs(float64(x[1]-3)) < 1e-6)
	is.True(math.Abs(float64(x[2]-4)) < 1e-6)
	is.Equal(x[3], float32(0))
}

func TestScalarAccumulate(t *testing.T) {
	is := is.New(t)
	dst := []float32{1, 2, 3}
	src := []float32{10, 20, 30}
	Scalar{}.Accumulate(dst, src)
	is.Equal(dst[0], float32(11))
	is.Equal(dst[1], float32(22))
	is.Equal(dst[2], float32(33))
}
