package aec3

import (
	"testing"

	"github.com/matryer/is"
)

func TestValidateClampsDownSamplingFactorAndErleMin(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Delay.DownSamplingFactor = 3
	c.Erle.Min = 200000

	changed := c.Validate()

	is.True(changed)
	is.Equal(c.Delay.DownSamplingFactor, 4)
	is.Equal(c.Erle.Min, 1.5)
}

func TestValidateIdempotent(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Delay.DownSamplingFactor = 3
	c.Erle.Min = 200000

	c.Validate()
	before := c
	changed := c.Validate()

	is.Equal(before, c)
	is.True(!changed)
}

func TestValidateDefaultConfigUnchanged(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	changed := c.Validate()
	is.True(!changed)
}

func TestValidateEnforcesBandOrdering(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Suppressor.LastLfBand = 10
	c.Suppressor.FirstHfBand = 5

	changed := c.Validate()

	is.True(changed)
	is.True(c.Suppressor.FirstHfBand > c.Suppressor.LastLfBand)
}
