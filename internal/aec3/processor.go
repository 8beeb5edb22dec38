package aec3

import (
	"math"

	"github.com/chriscow/apm-go/internal/fft"
)

// Processor runs the full per-capture-channel AEC3 pipeline over
// FFTLengthBy2-sample (4ms, 16kHz) sub-blocks: delay tracking, refined and
// coarse adaptive filtering, ERLE tracking, transparent-mode
// classification, spectral suppression, and comfort-noise fill-in.
type Processor struct {
	cfg Config

	render *RenderBuffer
	delay  *DelayEstimator

	refined *AdaptiveFilter
	coarse  *AdaptiveFilter

	prevError   []float32
	prevCapture []float32

	erle        *SubbandErleEstimator
	suppressor  *SuppressionGain
	transparent TransparentModeDetector
	cng         *ComfortNoiseGenerator
	metrics     *EchoRemoverMetrics

	erl []float32

	usingCoarse bool
}

// NewProcessor constructs a single-channel AEC3 pipeline from a validated
// configuration.
func NewProcessor(cfg Config) *Processor {
	numPartitions := cfg.Filter.Refined.LengthBlocks
	if cfg.Filter.Coarse.LengthBlocks > numPartitions {
		numPartitions = cfg.Filter.Coarse.LengthBlocks
	}
	return &Processor{
		cfg:         cfg,
		render:      NewRenderBuffer(numPartitions),
		delay:       NewDelayEstimator(cfg.Delay, FFTLengthBy2),
		refined:     NewRefinedFilter(cfg.Filter.Refined),
		coarse:      NewCoarseFilter(cfg.Filter.Coarse),
		prevError:   make([]float32, FFTLengthBy2),
		prevCapture: make([]float32, FFTLengthBy2),
		erle:        NewSubbandErleEstimator(cfg.Erle),
		suppressor:  NewSuppressionGain(cfg.Suppressor),
		transparent: NewTransparentModeDetector(cfg.EchoRemovalControl.TransparentMode),
		cng:         NewComfortNoiseGenerator(cfg.ComfortNoise),
		metrics:     NewEchoRemoverMetrics(),
		erl:         make([]float32, FFTLengthBy2Plus1),
	}
}

func overlapSaveSpectrum(prev *[]float32, block []float32) []Complex {
	frame := make([]float32, fft.Length)
	copy(frame, *prev)
	copy(frame[FFTLengthBy2:], block)
	copy(*prev, block)
	return fft.Forward(frame)
}

func lastHalf(timeFrame []float32) []float32 {
	return timeFrame[FFTLengthBy2:]
}

func blockPower(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return sum
}

// ProcessBlock cancels echo from one 4ms sub-block. render and capture must
// each contain exactly FFTLengthBy2 samples; the returned slice is a new
// FFTLengthBy2-sample block.
func (p *Processor) ProcessBlock(render, capture []float32) []float32 {
	p.render.PushBlock(render)
	p.delay.PushRender(render)
	p.delay.Update(capture, FFTLengthBy2)

	numPartitions := len(p.refined.partitions)
	renderPartitions := p.render.Partitions(numPartitions)
	renderPower := Power(renderPartitions)

	refinedEchoFreq := p.refined.Predict(renderPartitions)
	coarseEchoFreq := p.coarse.Predict(p.render.Partitions(len(p.coarse.partitions)))

	refinedEchoTime := lastHalf(fft.Inverse(refinedEchoFreq))
	coarseEchoTime := lastHalf(fft.Inverse(coarseEchoFreq))

	refinedError := make([]float32, FFTLengthBy2)
	coarseError := make([]float32, FFTLengthBy2)
	for i := range capture {
		refinedError[i] = capture[i] - refinedEchoTime[i]
		coarseError[i] = capture[i] - coarseEchoTime[i]
	}

	refinedPower := blockPower(refinedError)
	coarsePower := blockPower(coarseError)
	capturePower := blockPower(capture)

	diverging := capturePower > 0 && refinedPower > 4*capturePower

	// Fall back to the coarse filter's output whenever it is doing
	// meaningfully better and the configuration allows it, recovering from
	// refined-filter divergence without surfacing anything to the caller.
	p.usingCoarse = p.cfg.Filter.EnableCoarseFilterOutputUsage && coarsePower < 0.5*refinedPower
	errorTime := refinedError
	if p.usingCoarse {
		errorTime = coarseError
	}

	errSpec := overlapSaveSpectrum(&p.prevError, errorTime)

	p.refined.Adapt(renderPartitions, renderPower, errSpec, diverging)
	p.coarse.Adapt(p.render.Partitions(len(p.coarse.partitions)), Power(p.render.Partitions(len(p.coarse.partitions))), errSpec, diverging)

	ComputeERL(p.refined.H2(), p.erl)

	// x2 is the newest render partition's power, used only to gate the
	// ERLE estimator's low-render-energy case. The ERLE numerator is Y2,
	// the capture signal's own power spectrum (before cancellation) — not
	// render power, which would conflate ERL into ERLE.
	x2 := renderPower[0]
	captureSpec := overlapSaveSpectrum(&p.prevCapture, capture)
	y2 := make([]float32, FFTLengthBy2Plus1)
	for k, c := range captureSpec {
		y2[k] = c.Re*c.Re + c.Im*c.Im
	}
	e2 := make([]float32, FFTLengthBy2Plus1)
	for k, c := range errSpec {
		e2[k] = c.Re*c.Re + c.Im*c.Im
	}
	converged := p.delay.Confident() && !diverging
	p.erle.Update(x2, y2, e2, converged)

	activeRender := blockPower(render) > p.cfg.RenderLevels.ActiveRenderLimit
	p.transparent.Update(activeRender, !diverging, p.delay.Confident())

	p.cng.Update(e2, false)
	erle := p.erle.Erle()

	var gain []float32
	if p.transparent.Active() {
		gain = make([]float32, FFTLengthBy2Plus1)
		for k := range gain {
			gain[k] = 1.0
		}
	} else {
		err := make([]float32, FFTLengthBy2Plus1)
		emr := make([]float32, FFTLengthBy2Plus1)
		n2 := p.cng.N2()
		for k := range err {
			if erle[k] > 0 {
				err[k] = 1.0 / erle[k]
			} else {
				err[k] = 1.0
			}
			if n2[k] > 0 {
				emr[k] = e2[k] / n2[k]
			}
		}
		gain = p.suppressor.Compute(err, emr, e2)
	}

	lowerRe := make([]float32, FFTLengthBy2Plus1)
	lowerIm := make([]float32, FFTLengthBy2Plus1)
	upperRe := make([]float32, FFTLengthBy2Plus1)
	upperIm := make([]float32, FFTLengthBy2Plus1)
	p.cng.Generate(lowerRe, lowerIm, upperRe, upperIm)

	maskedSpec := make([]Complex, FFTLengthBy2Plus1)
	for k := range maskedSpec {
		g := gain[k]
		comfortScale := float32(math.Sqrt(math.Max(0, 1-float64(g*g))))
		maskedSpec[k] = Complex{
			Re: errSpec[k].Re*g + lowerRe[k]*comfortScale,
			Im: errSpec[k].Im*g + lowerIm[k]*comfortScale,
		}
	}

	outFrame := fft.Inverse(maskedSpec)
	out := lastHalf(outFrame)

	var erlDb, erleDb float64
	var count int
	for _, v := range p.erl {
		if v > 0 {
			erlDb += float64(v)
			count++
		}
	}
	if count > 0 {
		erlDb /= float64(count)
	}
	for _, v := range erle {
		erleDb += float64(v)
	}
	erleDb /= float64(len(erle))

	residualToRender := 1.0
	if rp := blockPower(render); rp > 0 {
		residualToRender = blockPower(out) / rp
	}
	p.metrics.UpdateCapture(erlDb, erleDb, residualToRender)

	result := make([]float32, FFTLengthBy2)
	copy(result, out)
	return result
}

// Metrics exposes the running quality aggregates for this channel.
func (p *Processor) Metrics() *EchoRemoverMetrics {
	return p.metrics
}

// TransparentModeActive reports whether the channel is currently in
// transparent mode (suppression disabled).
func (p *Processor) TransparentModeActive() bool {
	return p.transparent.Active()
}

// Reset clears all adaptive state, as happens on an echo-path change
// signalled by the caller.
func (p *Processor) Reset() {
	p.refined.Reset()
	p.coarse.Reset()
	p.erle.Reset()
	for i := range p.prevError {
		p.prevError[i] = 0
	}
	for i := range p.prevCapture {
		p.prevCapture[i] = 0
	}
}
