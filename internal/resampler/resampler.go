// Package resampler implements the polyphase sinc sample-rate converter used
// to bridge an external stream rate to the pipeline's internal processing
// rate (and back). No third-party resampling library exists anywhere in
// this module's reference corpus (see DESIGN.md), so the filter design
// follows the standard windowed-sinc polyphase construction.
package resampler

import "math"

// tapsPerPhase controls the prototype filter's length (tapsPerPhase * L
// total taps); 8 gives a reasonable stopband for voice-bandwidth content
// without needing heap churn per output sample.
const tapsPerPhase = 8

// Resampler converts a stream from one sample rate to another using a
// polyphase windowed-sinc filter. It keeps internal history across calls to
// Process so that a stream can be fed in arbitrary-sized chunks.
type Resampler struct {
	inRate, outRate int
	l, m            int // interpolation / decimation factors, inRate*l == outRate*m (up to the gcd reduction)
	coeffs          [][]float64

	buf      []float64
	bufStart int64
	nextOut  int64
}

// New builds a Resampler converting inRateHz to outRateHz.
func New(inRateHz, outRateHz int) *Resampler {
	g := gcd(inRateHz, outRateHz)
	l := outRateHz / g
	m := inRateHz / g
	return &Resampler{
		inRate:  inRateHz,
		outRate: outRateHz,
		l:       l,
		m:       m,
		coeffs:  designPolyphase(l, m, tapsPerPhase),
	}
}

// Identity reports whether this resampler is a no-op pass-through.
func (r *Resampler) Identity() bool { return r.l == 1 && r.m == 1 }

// Process consumes in and returns as many output samples as can currently be
// produced; any input that does not yet complete an output sample is
// retained as state for the next call.
func (r *Resampler) Process(in []float32) []float32 {
	if r.Identity() {
		out := make([]float32, len(in))
		copy(out, in)
		return out
	}

	for _, v := range in {
		r.buf = append(r.buf, float64(v))
	}

	var out []float32
	lastAvail := r.bufStart + int64(len(r.buf)) - 1
	for {
		inputIndexGlobal := (r.nextOut * int64(r.m)) / int64(r.l)
		if inputIndexGlobal > lastAvail {
			break
		}
		phase := int((r.nextOut * int64(r.m)) % int64(r.l))
		var y float64
		for k := 0; k < tapsPerPhase; k++ {
			idxAbs := inputIndexGlobal - int64(k)
			var xv float64
			if idxAbs >= r.bufStart && idxAbs-r.bufStart < int64(len(r.buf)) {
				xv = r.buf[idxAbs-r.bufStart]
			}
			y += r.coeffs[phase][k] * xv
		}
		out = append(out, float32(y))
		r.nextOut++
	}

	minNeeded := lastAvail - tapsPerPhase
	if minNeeded > r.bufStart {
		trim := minNeeded - r.bufStart
		if trim > int64(len(r.buf)) {
			trim = int64(len(r.buf))
		}
		r.buf = r.buf[trim:]
		r.bufStart += trim
	}
	return out
}

// Reset clears all buffered history and the output phase counter.
func (r *Resampler) Reset() {
	r.buf = nil
	r.bufStart = 0
	r.nextOut = 0
}

func designPolyphase(l, m, taps int) [][]float64 {
	maxLM := l
	if m > maxLM {
		maxLM = m
	}
	fc := 0.5 / float64(maxLM)
	total := l * taps
	center := total / 2

	coeffs := make([][]float64, l)
	for phase := 0; phase < l; phase++ {
		coeffs[phase] = make([]float64, taps)
		for k := 0; k < taps; k++ {
			nTotal := k*l + phase
			t := float64(nTotal - center)
			var s float64
			if t == 0 {
				s = 2 * fc
			} else {
				s = math.Sin(2*math.Pi*fc*t) / (math.Pi * t)
			}
			w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(nTotal)/float64(total-1))
			coeffs[phase][k] = s * w * float64(l)
		}
	}
	return coeffs
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
