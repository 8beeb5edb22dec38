package apm

import (
	"github.com/chriscow/apm-go/internal/aec3"
	"github.com/chriscow/apm-go/internal/agc2"
	"github.com/chriscow/apm-go/internal/ns"
)

// PreAmplifierConfig applies a fixed linear gain ahead of every other stage.
type PreAmplifierConfig struct {
	FixedGainFactor float64
}

// DefaultPreAmplifierConfig returns unity gain.
func DefaultPreAmplifierConfig() *PreAmplifierConfig {
	return &PreAmplifierConfig{FixedGainFactor: 1.0}
}

// AnalogMicGainEmulationConfig emulates an analog microphone's level control
// alongside the digital pre/post gain stages.
type AnalogMicGainEmulationConfig struct {
	InitialLevel int // 0..255
}

// DefaultAnalogMicGainEmulationConfig starts at the maximum emulated level.
func DefaultAnalogMicGainEmulationConfig() *AnalogMicGainEmulationConfig {
	return &AnalogMicGainEmulationConfig{InitialLevel: 255}
}

// CaptureLevelAdjustmentConfig wraps capture-path linear pre/post gain.
type CaptureLevelAdjustmentConfig struct {
	PreGainFactor          float64
	PostGainFactor         float64
	AnalogMicGainEmulation *AnalogMicGainEmulationConfig
}

// DefaultCaptureLevelAdjustmentConfig returns unity pre/post gain with no
// analog-mic emulation.
func DefaultCaptureLevelAdjustmentConfig() *CaptureLevelAdjustmentConfig {
	return &CaptureLevelAdjustmentConfig{PreGainFactor: 1.0, PostGainFactor: 1.0}
}

// HighPassFilterConfig controls the cascaded-biquad DC/rumble filter.
type HighPassFilterConfig struct {
	ApplyInFullBand bool
}

// DefaultHighPassFilterConfig applies the filter to the full band.
func DefaultHighPassFilterConfig() *HighPassFilterConfig {
	return &HighPassFilterConfig{ApplyInFullBand: true}
}

// EchoCancellerConfig wraps the AEC3 tuning tree plus the top-level toggle
// that forces the high-pass filter on whenever echo cancellation is active.
type EchoCancellerConfig struct {
	EnforceHighPassFiltering bool
	AEC3                     aec3.Config
}

// DefaultEchoCancellerConfig returns the standard single-channel AEC3
// configuration with high-pass enforcement on.
func DefaultEchoCancellerConfig() *EchoCancellerConfig {
	return &EchoCancellerConfig{
		EnforceHighPassFiltering: true,
		AEC3:                     aec3.DefaultConfig(),
	}
}

// NoiseSuppressionLevel selects the suppressor's aggressiveness.
type NoiseSuppressionLevel int

const (
	NoiseSuppressionLow NoiseSuppressionLevel = iota
	NoiseSuppressionModerate
	NoiseSuppressionHigh
	NoiseSuppressionVeryHigh
)

func (l NoiseSuppressionLevel) targetLevel() ns.TargetLevel {
	switch l {
	case NoiseSuppressionLow:
		return ns.TargetLevel6Db
	case NoiseSuppressionHigh:
		return ns.TargetLevel18Db
	case NoiseSuppressionVeryHigh:
		return ns.TargetLevel21Db
	default:
		return ns.TargetLevel12Db
	}
}

// NoiseSuppressionConfig wraps the NS aggressiveness level.
type NoiseSuppressionConfig struct {
	Level NoiseSuppressionLevel
}

// DefaultNoiseSuppressionConfig selects moderate (~12dB) suppression.
func DefaultNoiseSuppressionConfig() *NoiseSuppressionConfig {
	return &NoiseSuppressionConfig{Level: NoiseSuppressionModerate}
}

// AdaptiveDigitalConfig wraps the AGC2 adaptive digital gain stage.
type AdaptiveDigitalConfig struct {
	Enabled        bool
	GainController agc2.GainControllerConfig
}

// DefaultAdaptiveDigitalConfig enables the adaptive stage with the standard
// gain-controller limits.
func DefaultAdaptiveDigitalConfig() *AdaptiveDigitalConfig {
	return &AdaptiveDigitalConfig{
		Enabled:        true,
		GainController: agc2.DefaultGainControllerConfig(),
	}
}

// GainControl2Config wraps AGC2: input-volume control (not modelled, since
// this module has no audio-device volume concept), the
// adaptive digital stage, and a fixed makeup gain applied ahead of the
// limiter.
type GainControl2Config struct {
	InputVolumeController bool
	AdaptiveDigital       *AdaptiveDigitalConfig
	FixedDigitalGainDb    float64
}

// DefaultGainControl2Config enables the adaptive digital stage with no fixed
// makeup gain.
func DefaultGainControl2Config() *GainControl2Config {
	return &GainControl2Config{
		AdaptiveDigital:    DefaultAdaptiveDigitalConfig(),
		FixedDigitalGainDb: 0,
	}
}

// DownmixMethod selects how a capture stream with more channels than the
// processing pipeline needs is folded down.
type DownmixMethod int

const (
	DownmixAverage DownmixMethod = iota
	DownmixUseFirstChannel
)

// PipelineConfig controls cross-cutting pipeline behaviour: the internal
// processing rate ceiling and multichannel handling.
type PipelineConfig struct {
	MaximumInternalProcessingRateHz int // 32000 or 48000
	MultiChannelRender              bool
	MultiChannelCapture             bool
	CaptureDownmixMethod            DownmixMethod
}

// DefaultPipelineConfig caps internal processing at 48kHz and downmixes by
// averaging.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaximumInternalProcessingRateHz: 48000,
		CaptureDownmixMethod:            DownmixAverage,
	}
}

// Config is the top-level, builder-style pipeline configuration. Each
// optional stage is a nil-able pointer: nil disables the stage entirely,
// matching the teacher's toggle-flag config shape generalized to a richer
// per-stage configuration tree.
type Config struct {
	PreAmplifier           *PreAmplifierConfig
	CaptureLevelAdjustment *CaptureLevelAdjustmentConfig
	HighPassFilter         *HighPassFilterConfig
	EchoCanceller          *EchoCancellerConfig
	NoiseSuppression       *NoiseSuppressionConfig
	GainControl2           *GainControl2Config
	Pipeline               PipelineConfig
}

// DefaultConfig enables every stage with its default tuning.
func DefaultConfig() Config {
	return Config{
		PreAmplifier:           DefaultPreAmplifierConfig(),
		CaptureLevelAdjustment: DefaultCaptureLevelAdjustmentConfig(),
		HighPassFilter:         DefaultHighPassFilterConfig(),
		EchoCanceller:          DefaultEchoCancellerConfig(),
		NoiseSuppression:       DefaultNoiseSuppressionConfig(),
		GainControl2:           DefaultGainControl2Config(),
		Pipeline:               DefaultPipelineConfig(),
	}
}
