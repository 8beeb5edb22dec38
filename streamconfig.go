package apm

import "fmt"

// MinSampleRateHz and MaxSampleRateHz bound the sample rates this module
// accepts on either the render or the capture stream.
const (
	MinSampleRateHz = 8000
	MaxSampleRateHz = 48000
)

// StreamConfig is an immutable per-call descriptor of one side of a stream:
// its sample rate and channel count.
type StreamConfig struct {
	SampleRateHz int
	NumChannels  int
}

// NewStreamConfig validates and constructs a StreamConfig.
func NewStreamConfig(sampleRateHz, numChannels int) (StreamConfig, error) {
	cfg := StreamConfig{SampleRateHz: sampleRateHz, NumChannels: numChannels}
	switch sampleRateHz {
	case 8000, 16000, 32000, 48000:
	default:
		return StreamConfig{}, fmt.Errorf("apm: unsupported sample rate %d Hz", sampleRateHz)
	}
	if numChannels != 1 && numChannels != 2 {
		return StreamConfig{}, fmt.Errorf("apm: unsupported channel count %d", numChannels)
	}
	return cfg, nil
}

// FramesPer10ms returns the number of samples in a 10ms frame at this
// stream's sample rate.
func (c StreamConfig) FramesPer10ms() int {
	return c.SampleRateHz / 100
}
