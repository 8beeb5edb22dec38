package aec3

import (
	"testing"

	"github.com/matryer/is"
)

func TestComputeERLSumsPartitions(t *testing.T) {
	is := is.New(t)
	h2 := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
		{0.5, 0.5, 0.5},
	}
	erl := make([]float32, 3)
	ComputeERL(h2, erl)
	is.Equal(erl[0], float32(5.5))
	is.Equal(erl[1], float32(7.5))
	is.Equal(erl[2], float32(9.5))
}

func TestComputeERLEmptyPartitions(t *testing.T) {
	is := is.New(t)
	erl := make([]float32, FFTLengthBy2Plus1)
	ComputeERL(nil, erl)
	for _, v := range erl {
		is.Equal(v, float32(0))
	}
}

func TestComputeERLSinglePartition(t *testing.T) {
	is := is.New(t)
	h2 := [][]float32{{1, 2, 3}}
	erl := make([]float32, 3)
	ComputeERL(h2, erl)
	is.Equal(erl, h2[0])
}
