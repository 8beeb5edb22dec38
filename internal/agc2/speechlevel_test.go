package agc2

import (
	"testing"

	"github.com/matryer/is"
)

func TestSpeechLevelEstimatorIgnoresLowConfidenceFrames(t *testing.T) {
	is := is.New(t)
	e := NewSpeechLevelEstimator()
	before := e.LevelDbfs()
	for i := 0; i < 50; i++ {
		e.Update(10000, 0.1)
	}
	is.Equal(e.LevelDbfs(), before)
}

func TestSpeechLevelEstimatorConvergesAfterAdjacentFrames(t *testing.T) {
	is := is.New(t)
	e := NewSpeechLevelEstimator()
	for i := 0; i < AdjacentSpeechFramesThreshold+5; i++ {
		e.Update(16384, 0.99)
	}
	is.True(e.LevelDbfs() > -30)
}

func TestSpeechLevelEstimatorResetReturnsToInitial(t *testing.T) {
	is := is.New(t)
	e := NewSpeechLevelEstimator()
	for i := 0; i < AdjacentSpeechFramesThreshold+5; i++ {
		e.Update(16384, 0.99)
	}
	e.Reset()
	is.Equal(e.LevelDbfs(), initialSpeechLevelDbfs)
}
