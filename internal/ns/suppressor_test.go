package ns

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestSuppressorProducesFiniteOutput(t *testing.T) {
	is := is.New(t)
	s := NewSuppressor(TargetLevel18Db)

	frame := make([]float32, FrameLength)
	for i := range frame {
		frame[i] = float32(0.1 * math.Sin(2*math.Pi*200*float64(i)/16000))
	}

	for i := 0; i < 50; i++ {
		out := s.ProcessFrame(frame)
		is.Equal(len(out), FrameLength)
		for _, v := range out {
			is.True(!math.IsNaN(float64(v)))
		}
	}
}

func TestSuppressorAttenuatesStationaryNoiseOverTime(t *testing.T) {
	is := is.New(t)
	s := NewSuppressor(TargetLevel18Db)

	noise := make([]float32, FrameLength)
	for i := range noise {
		noise[i] = float32(0.05 * math.Sin(2*math.Pi*3000*float64(i)/16000))
	}

	var earlyPower, latePower float64
	for i := 0; i < 300; i++ {
		out := s.ProcessFrame(noise)
		if i < 5 {
			for _, v := range out {
				earlyPower += float64(v) * float64(v)
			}
		}
		if i >= 290 {
			for _, v := range out {
				latePower += float64(v) * float64(v)
			}
		}
	}
	is.True(latePower <= earlyPower*1.5)
}

func TestGainFloorMonotonicWithTargetLevel(t *testing.T) {
	is := is.New(t)
	is.True(TargetLevel6Db.gainFloor() > TargetLevel12Db.gainFloor())
	is.True(TargetLevel12Db.gainFloor() > TargetLevel18Db.gainFloor())
	is.True(TargetLevel18Db.gainFloor() > TargetLevel21Db.gainFloor())
}
