package apm

import (
	"math"
	"testing"

	"github.com/chriscow/apm-go/internal/aec3"
	"github.com/matryer/is"
)

// TestProcessCapturePassThrough is scenario S1: with every stage disabled,
// ProcessCapture must reproduce its input exactly, frame for frame.
func TestProcessCapturePassThrough(t *testing.T) {
	is := is.New(t)

	cfg := Config{Pipeline: DefaultPipelineConfig()}
	scfg, err := NewStreamConfig(16000, 1)
	is.NoErr(err)

	p, err := Build(cfg, scfg, scfg)
	is.NoErr(err)

	n := scfg.FramesPer10ms()
	for frameIdx := 0; frameIdx < 100; frameIdx++ {
		src := make([]float32, n)
		for i := range src {
			sampleIdx := float64(frameIdx*n + i)
			src[i] = float32(0.1 * math.Sin(2*math.Pi*440*sampleIdx/16000))
		}
		dst := make([][]float32, 1)
		dst[0] = make([]float32, n)
		err := p.ProcessCapture([][]float32{src}, scfg, scfg, dst)
		is.NoErr(err)
		for i := range src {
			is.True(math.Abs(float64(dst[0][i]-src[i])) < 1e-5)
		}
	}
}

// TestProcessCaptureInvalidFrameSize covers the InvalidFrameSize failure
// mode: a per-channel slice whose length doesn't match the stream config.
func TestProcessCaptureInvalidFrameSize(t *testing.T) {
	is := is.New(t)

	cfg := DefaultConfig()
	scfg, err := NewStreamConfig(16000, 1)
	is.NoErr(err)
	p, err := Build(cfg, scfg, scfg)
	is.NoErr(err)

	src := [][]float32{make([]float32, scfg.FramesPer10ms()-1)}
	dst := [][]float32{make([]float32, scfg.FramesPer10ms())}
	err = p.ProcessCapture(src, scfg, scfg, dst)
	is.True(err != nil)
}

// TestProcessCaptureMismatchedChannels covers the MismatchedChannels
// failure mode: the number of per-channel slices doesn't match the
// stream config's channel count.
func TestProcessCaptureMismatchedChannels(t *testing.T) {
	is := is.New(t)

	cfg := DefaultConfig()
	scfg, err := NewStreamConfig(16000, 2)
	is.NoErr(err)
	p, err := Build(cfg, scfg, scfg)
	is.NoErr(err)

	src := [][]float32{make([]float32, scfg.FramesPer10ms())}
	dst := [][]float32{make([]float32, scfg.FramesPer10ms()), make([]float32, scfg.FramesPer10ms())}
	err = p.ProcessCapture(src, scfg, scfg, dst)
	is.True(err != nil)
}

// TestBuildPicksInternalRate exercises the internal-rate selection rule:
// min(max_internal_rate, max(capture_rate, render_rate)) rounded up to
// {16, 32, 48} kHz.
func TestBuildPicksInternalRate(t *testing.T) {
	is := is.New(t)

	capCfg, err := NewStreamConfig(8000, 1)
	is.NoErr(err)
	renderCfg, err := NewStreamConfig(32000, 1)
	is.NoErr(err)

	cfg := Config{Pipeline: PipelineConfig{MaximumInternalProcessingRateHz: 48000}}
	p, err := Build(cfg, capCfg, renderCfg)
	is.NoErr(err)
	is.Equal(p.internalRateHz, 32000)
	is.True(p.splitBands)
}

// TestBuildAppliesMultichannelBaseline exercises the spec §9 design-note
// resolution: enabling PipelineConfig.MultiChannelCapture overlays the
// canonical multichannel AEC3 baseline onto the echo canceller's filter and
// suppressor tuning.
func TestBuildAppliesMultichannelBaseline(t *testing.T) {
	is := is.New(t)

	scfg, err := NewStreamConfig(16000, 2)
	is.NoErr(err)

	cfg := Config{
		EchoCanceller: DefaultEchoCancellerConfig(),
		Pipeline: PipelineConfig{
			MaximumInternalProcessingRateHz: 48000,
			MultiChannelCapture:             true,
		},
	}
	p, err := Build(cfg, scfg, scfg)
	is.NoErr(err)

	baseline := aec3.DefaultMultichannelConfig()
	is.Equal(p.cfg.EchoCanceller.AEC3.Filter.Coarse.LengthBlocks, baseline.Filter.Coarse.LengthBlocks)
	is.Equal(p.cfg.EchoCanceller.AEC3.Suppressor.NormalTuning.MaxDecFactorLf, baseline.Suppressor.NormalTuning.MaxDecFactorLf)
}

// TestRuntimeSettingsApplyOnNextCapture exercises the SPSC runtime-settings
// queue: a setter enqueued before ProcessCapture takes effect on the very
// next call, per spec §6.
func TestRuntimeSettingsApplyOnNextCapture(t *testing.T) {
	is := is.New(t)

	cfg := Config{Pipeline: DefaultPipelineConfig()}
	scfg, err := NewStreamConfig(16000, 1)
	is.NoErr(err)
	p, err := Build(cfg, scfg, scfg)
	is.NoErr(err)

	p.CapturePreGain(2.0)

	src := [][]float32{make([]float32, scfg.FramesPer10ms())}
	for i := range src[0] {
		src[0][i] = 0.1
	}
	dst := [][]float32{make([]float32, scfg.FramesPer10ms())}
	is.NoErr(p.ProcessCapture(src, scfg, scfg, dst))

	is.True(p.capturePreGain == 2.0)
	for _, v := range dst[0] {
		is.True(math.Abs(float64(v-0.2)) < 1e-5)
	}
}
