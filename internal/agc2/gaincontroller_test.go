package agc2

import (
	"testing"

	"github.com/matryer/is"
)

func TestGainControllerRampsTowardTarget(t *testing.T) {
	is := is.New(t)
	c := NewGainController(DefaultGainControllerConfig())
	var last float64
	for i := 0; i < 50; i++ {
		last = c.Update(6.0, -40.0, -70.0, 0.01)
	}
	is.True(last > 0)
	is.True(last <= c.cfg.MaxGainDb)
}

func TestGainControllerNeverExceedsMaxGain(t *testing.T) {
	is := is.New(t)
	c := NewGainController(DefaultGainControllerConfig())
	for i := 0; i < 10000; i++ {
		c.Update(0.0, -90.0, -90.0, 1.0)
	}
	is.True(c.GainDb() <= c.cfg.MaxGainDb+1e-9)
}

func TestGainControllerBacksOffForNoiseFloor(t *testing.T) {
	is := is.New(t)
	c := NewGainController(DefaultGainControllerConfig())
	for i := 0; i < 1000; i++ {
		c.Update(6.0, -40.0, -40.0, 1.0)
	}
	is.True(c.GainDb() < c.cfg.MaxGainDb)
}

func TestGainControllerResetReturnsToUnity(t *testing.T) {
	is := is.New(t)
	c := NewGainController(DefaultGainControllerConfig())
	c.Update(6.0, -40.0, -90.0, 10.0)
	c.Reset()
	is.Equal(c.GainDb(), 0.0)
}
