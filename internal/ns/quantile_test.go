package ns

import (
	"testing"

	"github.com/matryer/is"
)

func TestQuantileNoiseEstimatorTracksQuietFloor(t *testing.T) {
	is := is.New(t)
	q := NewQuantileNoiseEstimator(4)

	low := []float32{1, 1, 1, 1}
	for i := 0; i < windowBlocks+1; i++ {
		q.Update(low)
	}

	for _, v := range q.Estimate() {
		is.True(v <= 1.0001)
	}
}

func TestQuantileNoiseEstimatorIgnoresTransientSpikes(t *testing.T) {
	is := is.New(t)
	q := NewQuantileNoiseEstimator(2)

	low := []float32{1, 1}
	spike := []float32{1000, 1000}
	for i := 0; i < windowBlocks; i++ {
		if i == windowBlocks/2 {
			q.Update(spike)
		} else {
			q.Update(low)
		}
	}

	for _, v := range q.Estimate() {
		is.True(v < 10)
	}
}
