package aec3

import (
	"testing"

	"github.com/matryer/is"
)

func TestLegacyTransparentModeStaysInactiveDuringWarmup(t *testing.T) {
	is := is.New(t)
	m := NewLegacyTransparentMode()
	for i := 0; i < legacyInitialBlocks-1; i++ {
		m.Update(true, true, true)
	}
	is.True(!m.Active())
}

func TestLegacyTransparentModeActivatesAfterConvergence(t *testing.T) {
	is := is.New(t)
	m := NewLegacyTransparentMode()
	for i := 0; i < legacyInitialBlocks+10; i++ {
		m.Update(true, true, true)
	}
	is.True(m.Active())
}

func TestLegacyTransparentModeDeactivatesWhenFilterGoesInsane(t *testing.T) {
	is := is.New(t)
	m := NewLegacyTransparentMode()
	for i := 0; i < legacyInitialBlocks+10; i++ {
		m.Update(true, true, true)
	}
	is.True(m.Active())

	for i := 0; i < legacyNonSaneBlocks+1; i++ {
		m.Update(true, false, false)
	}
	is.True(!m.Active())
}

func TestHmmTransparentModeActivatesWithoutConvergence(t *testing.T) {
	is := is.New(t)
	m := NewHmmTransparentMode()
	for i := 0; i < 200000; i++ {
		m.Update(true, false, false)
	}
	is.True(m.Active())
}

func TestHmmTransparentModeDeactivatesOnSustainedEcho(t *testing.T) {
	is := is.New(t)
	m := NewHmmTransparentMode()
	for i := 0; i < 200000; i++ {
		m.Update(true, false, false)
	}
	is.True(m.Active())

	for i := 0; i < 200000; i++ {
		m.Update(true, true, true)
	}
	is.True(!m.Active())
}

func TestHmmTransparentModeIgnoresInactiveRender(t *testing.T) {
	is := is.New(t)
	m := NewHmmTransparentMode()
	before := m.posteriorTransparent
	m.Update(false, true, true)
	is.Equal(m.posteriorTransparent, before)
}

func TestNewTransparentModeDetectorSelectsVariant(t *testing.T) {
	is := is.New(t)
	legacy := NewTransparentModeDetector(TransparentModeLegacy)
	hmm := NewTransparentModeDetector(TransparentModeHmm)
	_, isLegacy := legacy.(*LegacyTransparentMode)
	_, isHmm := hmm.(*HmmTransparentMode)
	is.True(isLegacy)
	is.True(isHmm)
}
