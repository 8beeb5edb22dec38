// Package apm is the root orchestrator of the audio-processing pipeline:
// acoustic echo cancellation (internal/aec3), noise suppression
// (internal/ns), automatic gain control (internal/agc2), a high-pass filter,
// a three-band filter bank, and a polyphase resampler, wired into the two
// external entry points ProcessRender and ProcessCapture.
package apm

import (
	"fmt"
	"sync"

	"github.com/chriscow/apm-go/internal/aec3"
	"github.com/chriscow/apm-go/internal/agc2"
	"github.com/chriscow/apm-go/internal/agc2/rnnvad"
	"github.com/chriscow/apm-go/internal/filterbank"
	"github.com/chriscow/apm-go/internal/highpass"
	"github.com/chriscow/apm-go/internal/ns"
	"github.com/chriscow/apm-go/internal/resampler"
	"github.com/chriscow/apm-go/internal/simd"
)

// vadFrameLen and vadSampleRateHz describe the fixed window AGC2's RNN-VAD
// scores every call, independent of the pipeline's internal processing rate.
const (
	vadFrameLen     = agc2.FrameSizeForVad
	vadSampleRateHz = rnnvad.SampleRate
)

// channelState holds every per-capture-channel stateful component.
type channelState struct {
	highPass *highpass.Filter
	aec3     *aec3.Processor
	ns       *ns.Suppressor
	agc2     *agc2.Processor

	inResampler  *resampler.Resampler // external capture rate -> internal rate
	outResampler *resampler.Resampler // internal rate -> external capture rate
	vadResampler *resampler.Resampler // 16kHz band-0 -> vadSampleRateHz

	vadRing []float32 // rolling vadFrameLen window fed to the VAD each call
}

// Pipeline is a built, ready-to-run audio-processing instance. All state is
// owned by the instance; a Pipeline must be driven by a single goroutine.
// mu is held for the whole of ProcessCapture and Reset, so concurrent calls
// to those two run one after the other; ProcessRender does not take it, and
// concurrent misuse does not panic.
type Pipeline struct {
	cfg        Config
	captureCfg StreamConfig
	renderCfg  StreamConfig

	internalRateHz int
	splitBands     bool // true when internalRateHz > 16000 (filterbank engaged)

	backend simd.Backend

	channels []*channelState

	renderInResampler *resampler.Resampler // external render rate -> internal rate
	renderBand0       []float32            // latest 160-sample band-0 render reference

	mu sync.Mutex

	settings chan runtimeSetting

	preAmplifierGain       float64
	capturePreGain         float64
	capturePostGain        float64
	captureFixedPostGainDb float64
	playoutVolume          int
	playoutDeviceID        int
	playoutDeviceMaxVolume int
	captureOutputUsed      bool
}

// applyMultichannelBaseline overlays the canonical multichannel AEC3 fields
// (spec §9: "two parallel constructors ... treat this as the canonical
// multichannel baseline") onto c, leaving every other field as the caller
// configured it.
func applyMultichannelBaseline(c *aec3.Config) {
	baseline := aec3.DefaultMultichannelConfig()
	c.Filter.Coarse.LengthBlocks = baseline.Filter.Coarse.LengthBlocks
	c.Filter.Coarse.Rate = baseline.Filter.Coarse.Rate
	c.Filter.CoarseInitial.LengthBlocks = baseline.Filter.CoarseInitial.LengthBlocks
	c.Filter.CoarseInitial.Rate = baseline.Filter.CoarseInitial.Rate
	c.Suppressor.NormalTuning.MaxDecFactorLf = baseline.Suppressor.NormalTuning.MaxDecFactorLf
	c.Suppressor.NormalTuning.MaxIncFactor = baseline.Suppressor.NormalTuning.MaxIncFactor
}

func roundUpInternalRate(hz int) int {
	switch {
	case hz <= 16000:
		return 16000
	case hz <= 32000:
		return 32000
	default:
		return 48000
	}
}

// Build validates cfg and constructs a Pipeline ready to process the given
// capture and render stream shapes.
func Build(cfg Config, captureCfg, renderCfg StreamConfig) (*Pipeline, error) {
	if cfg.EchoCanceller != nil {
		if cfg.Pipeline.MultiChannelCapture {
			applyMultichannelBaseline(&cfg.EchoCanceller.AEC3)
		}
		cfg.EchoCanceller.AEC3.Validate()
	}

	maxRate := captureCfg.SampleRateHz
	if renderCfg.SampleRateHz > maxRate {
		maxRate = renderCfg.SampleRateHz
	}
	ceiling := cfg.Pipeline.MaximumInternalProcessingRateHz
	if ceiling == 0 {
		ceiling = 48000
	}
	rawRate := maxRate
	if ceiling < rawRate {
		rawRate = ceiling
	}
	internalRateHz := roundUpInternalRate(rawRate)

	p := &Pipeline{
		cfg:                    cfg,
		captureCfg:             captureCfg,
		renderCfg:              renderCfg,
		internalRateHz:         internalRateHz,
		splitBands:             internalRateHz > 16000,
		backend:                simd.Default(),
		settings:               make(chan runtimeSetting, runtimeSettingsQueueDepth),
		preAmplifierGain:       1.0,
		capturePreGain:         1.0,
		capturePostGain:        1.0,
		captureOutputUsed:      true,
		captureFixedPostGainDb: 0,
	}
	if cfg.PreAmplifier != nil {
		p.preAmplifierGain = cfg.PreAmplifier.FixedGainFactor
	}
	if cfg.CaptureLevelAdjustment != nil {
		p.capturePreGain = cfg.CaptureLevelAdjustment.PreGainFactor
		p.capturePostGain = cfg.CaptureLevelAdjustment.PostGainFactor
	}
	if cfg.GainControl2 != nil {
		p.captureFixedPostGainDb = cfg.GainControl2.FixedDigitalGainDb
	}

	p.channels = make([]*channelState, captureCfg.NumChannels)
	for i := range p.channels {
		p.channels[i] = p.newChannelState()
	}
	p.renderInResampler = resampler.New(renderCfg.SampleRateHz, internalRateHz)
	p.renderBand0 = make([]float32, ns.FrameLength)

	return p, nil
}

func (p *Pipeline) newChannelState() *channelState {
	cs := &channelState{
		highPass:     highpass.New(16000),
		inResampler:  resampler.New(p.captureCfg.SampleRateHz, p.internalRateHz),
		outResampler: resampler.New(p.internalRateHz, p.captureCfg.SampleRateHz),
		vadResampler: resampler.New(16000, vadSampleRateHz),
		vadRing:      make([]float32, vadFrameLen),
	}
	if p.cfg.EchoCanceller != nil {
		cs.aec3 = aec3.NewProcessor(p.cfg.EchoCanceller.AEC3)
	}
	if p.cfg.NoiseSuppression != nil {
		cs.ns = ns.NewSuppressor(p.cfg.NoiseSuppression.Level.targetLevel())
	}
	if p.cfg.GainControl2 != nil && p.cfg.GainControl2.AdaptiveDigital != nil && p.cfg.GainControl2.AdaptiveDigital.Enabled {
		gainCfg := p.cfg.GainControl2.AdaptiveDigital.GainController
		cs.agc2 = agc2.NewProcessor(rnnvad.New(), gainCfg, p.cfg.GainControl2.FixedDigitalGainDb, 16)
	}
	return cs
}

func applyLinearGain(x []float32, gain float64) {
	if gain == 1.0 {
		return
	}
	for i, v := range x {
		x[i] = float32(float64(v) * gain)
	}
}

// downmixToMono averages (or selects the first channel of) a multichannel
// frame into dst, per the configured CaptureDownmixMethod.
func (p *Pipeline) downmixToMono(src [][]float32, dst []float32, method DownmixMethod) {
	if len(src) == 1 || method == DownmixUseFirstChannel {
		copy(dst, src[0])
		return
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, ch := range src {
		p.backend.Accumulate(dst, ch)
	}
	scale := float32(1.0 / float64(len(src)))
	for i := range dst {
		dst[i] *= scale
	}
}

// ProcessRender ingests the far-end (playout) signal. It does not modify the
// audible signal: dst receives an unchanged copy of src, channel for channel
// (extra output channels repeat the last source channel), with no rate
// conversion to dstCfg. It feeds the internal echo-canceller reference used
// by the next ProcessCapture call.
func (p *Pipeline) ProcessRender(src [][]float32, srcCfg StreamConfig, dstCfg StreamConfig, dst [][]float32) error {
	if err := validateFrame(src, srcCfg); err != nil {
		return err
	}
	if len(dst) != dstCfg.NumChannels {
		return fmt.Errorf("apm: render output: %w", ErrMismatchedChannels)
	}

	mono := make([]float32, srcCfg.FramesPer10ms())
	p.downmixToMono(src, mono, p.cfg.Pipeline.CaptureDownmixMethod)

	internal := p.renderInResampler.Process(mono)
	band0 := internal
	if p.splitBands && len(internal) == filterbankFrameLen(p.internalRateHz) {
		var bands [filterbank.NumBands][]float32
		frameLen := filterbankFrameLen(p.internalRateHz)
		for b := range bands {
			bands[b] = make([]float32, frameLen/filterbank.NumBands)
		}
		filterbank.Analysis(internal, bands)
		band0 = bands[0]
	}
	if len(band0) == ns.FrameLength {
		copy(p.renderBand0, band0)
	}

	for i := range dst {
		srcIdx := i
		if srcIdx >= len(src) {
			srcIdx = len(src) - 1
		}
		out := make([]float32, srcCfg.FramesPer10ms())
		copy(out, src[srcIdx])
		if len(dst[i]) != len(out) {
			dst[i] = make([]float32, len(out))
		}
		copy(dst[i], out)
	}
	return nil
}

func filterbankFrameLen(internalRateHz int) int {
	return internalRateHz / 100
}

func validateFrame(src [][]float32, cfg StreamConfig) error {
	if len(src) != cfg.NumChannels {
		return fmt.Errorf("apm: %w", ErrMismatchedChannels)
	}
	expected := cfg.FramesPer10ms()
	for _, ch := range src {
		if len(ch) != expected {
			return fmt.Errorf("apm: %w", ErrInvalidFrameSize)
		}
	}
	return nil
}

// ProcessCapture processes the near-end (microphone) signal through the
// full stage pipeline and writes the cleaned result to dst.
func (p *Pipeline) ProcessCapture(src [][]float32, srcCfg StreamConfig, dstCfg StreamConfig, dst [][]float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := validateFrame(src, srcCfg); err != nil {
		return err
	}
	if len(dst) != dstCfg.NumChannels {
		return fmt.Errorf("apm: capture output: %w", ErrMismatchedChannels)
	}

	p.applyPendingSettings()

	numChannels := len(src)
	if numChannels > len(p.channels) {
		numChannels = len(p.channels)
	}

	for i := 0; i < numChannels; i++ {
		out := p.processCaptureChannel(p.channels[i], src[i])
		dstIdx := i
		if dstIdx >= len(dst) {
			dstIdx = len(dst) - 1
		}
		resampled := p.channels[i].outResampler.Process(out)
		if len(resampled) != dstCfg.FramesPer10ms() {
			// Resampler phase hasn't produced a full frame yet (can happen
			// transiently right after Build); pad/truncate to keep the
			// contract that dst always receives exactly one 10ms frame.
			resampled = fitFrame(resampled, dstCfg.FramesPer10ms())
		}
		if len(dst[dstIdx]) != len(resampled) {
			dst[dstIdx] = make([]float32, len(resampled))
		}
		copy(dst[dstIdx], resampled)
	}
	for i := numChannels; i < len(dst); i++ {
		if len(dst[i]) != dstCfg.FramesPer10ms() {
			dst[i] = make([]float32, dstCfg.FramesPer10ms())
		} else {
			for j := range dst[i] {
				dst[i][j] = 0
			}
		}
	}
	return nil
}

func fitFrame(x []float32, n int) []float32 {
	out := make([]float32, n)
	copy(out, x)
	return out
}

func (p *Pipeline) processCaptureChannel(cs *channelState, frame []float32) []float32 {
	working := make([]float32, len(frame))
	copy(working, frame)
	applyLinearGain(working, p.preAmplifierGain)
	applyLinearGain(working, p.capturePreGain)

	internal := cs.inResampler.Process(working)
	if len(internal) == 0 {
		return internal
	}

	applyHighPass := p.cfg.HighPassFilter != nil
	if applyHighPass && p.cfg.HighPassFilter.ApplyInFullBand {
		cs.highPass.Process(internal)
	}

	var band0 []float32
	var bands [filterbank.NumBands][]float32
	haveSplit := p.splitBands && len(internal) == filterbankFrameLen(p.internalRateHz)
	if haveSplit {
		frameLen := filterbankFrameLen(p.internalRateHz)
		for b := range bands {
			bands[b] = make([]float32, frameLen/filterbank.NumBands)
		}
		filterbank.Analysis(internal, bands)
		band0 = bands[0]
	} else {
		band0 = internal
	}

	if applyHighPass && !p.cfg.HighPassFilter.ApplyInFullBand {
		cs.highPass.Process(band0)
	}

	processedBand0 := band0
	if len(band0) == ns.FrameLength {
		processedBand0 = p.runBand0(cs, band0)
	}

	if haveSplit {
		// Higher bands receive no independent adaptive processing in this
		// module; their gain tracks band 0's suppression ratio so the
		// reconstructed signal doesn't develop a spectral tilt when band 0
		// is heavily attenuated. A true per-band echo/noise model for bands
		// 1 and 2 is out of scope here (see DESIGN.md known fidelity gaps).
		ratio := float32(1.0)
		if bandPower(band0) > 0 {
			ratio = float32(bandPower(processedBand0) / bandPower(band0))
			if ratio > 1 {
				ratio = 1
			}
		}
		for b := 1; b < filterbank.NumBands; b++ {
			for i := range bands[b] {
				bands[b][i] *= ratio
			}
		}
		bands[0] = processedBand0
		out := make([]float32, len(internal))
		filterbank.Synthesis(bands, out)
		applyLinearGain(out, p.capturePostGain)
		return out
	}

	applyLinearGain(processedBand0, p.capturePostGain)
	return processedBand0
}

func bandPower(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return sum
}

// runBand0 runs AEC3 (in FFTLengthBy2-sample sub-blocks), NS, and AGC2 over
// one 160-sample band-0 frame.
func (p *Pipeline) runBand0(cs *channelState, band0 []float32) []float32 {
	canceled := band0
	if cs.aec3 != nil {
		canceled = p.runAec3(cs, band0)
	}

	suppressed := canceled
	if cs.ns != nil {
		suppressed = cs.ns.ProcessFrame(canceled)
	}

	gained := suppressed
	if cs.agc2 != nil {
		gained = p.runAgc2(cs, suppressed)
	}
	return gained
}

// runAec3 consumes band0 in aec3.FFTLengthBy2-sample sub-blocks paired with
// the render reference. 160 isn't a multiple of 64, so the final sub-block
// is zero-padded; only its first (160 - 2*64) samples are kept, meaning each
// 10ms frame is processed within the same call with no state carried across
// calls purely for sub-block alignment.
func (p *Pipeline) runAec3(cs *channelState, band0 []float32) []float32 {
	const subBlock = aec3.FFTLengthBy2
	out := make([]float32, len(band0))
	offset := 0
	for offset < len(band0) {
		n := subBlock
		remaining := len(band0) - offset
		captureBlock := make([]float32, subBlock)
		renderBlock := make([]float32, subBlock)
		if remaining < subBlock {
			n = remaining
		}
		copy(captureBlock, band0[offset:offset+n])
		if offset+subBlock <= len(p.renderBand0) {
			copy(renderBlock, p.renderBand0[offset:offset+subBlock])
		} else if offset < len(p.renderBand0) {
			copy(renderBlock, p.renderBand0[offset:])
		}
		result := cs.aec3.ProcessBlock(renderBlock, captureBlock)
		copy(out[offset:offset+n], result[:n])
		offset += n
	}
	return out
}

func (p *Pipeline) runAgc2(cs *channelState, frame []float32) []float32 {
	resampled := cs.vadResampler.Process(frame)
	if len(resampled) > 0 {
		n := len(resampled)
		if n > len(cs.vadRing) {
			n = len(cs.vadRing)
			resampled = resampled[len(resampled)-n:]
		}
		copy(cs.vadRing, cs.vadRing[n:])
		copy(cs.vadRing[len(cs.vadRing)-n:], resampled)
	}
	return cs.agc2.Process(frame, cs.vadRing, 0.01)
}

// Stats returns a read-only snapshot of the first capture channel's AEC3
// quality metrics, or an empty Stats if echo cancellation is disabled.
func (p *Pipeline) Stats() Stats {
	if len(p.channels) == 0 || p.channels[0].aec3 == nil {
		return Stats{}
	}
	m := p.channels[0].aec3.Metrics()
	erl := m.Erl.Db()
	erle := m.Erle.Db()
	stats := Stats{}
	if erl > -1e300 {
		stats.EchoReturnLossDb = float64Ptr(erl)
	}
	if erle > -1e300 {
		stats.EchoReturnLossEnhancementDb = float64Ptr(erle)
	}
	return stats
}

// Reset clears all adaptive state on every capture channel, as if newly
// built, without reallocating resamplers or buffers.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cs := range p.channels {
		if cs.aec3 != nil {
			cs.aec3.Reset()
		}
		if cs.agc2 != nil {
			cs.agc2.Reset()
		}
		cs.highPass.Reset()
		cs.inResampler.Reset()
		cs.outResampler.Reset()
		cs.vadResampler.Reset()
		for i := range cs.vadRing {
			cs.vadRing[i] = 0
		}
	}
	p.renderInResampler.Reset()
	for i := range p.renderBand0 {
		p.renderBand0[i] = 0
	}
}
