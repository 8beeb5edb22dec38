package agc2

import "math"

// Interpolated gain curve parameters, ported from the reference limiter's
// fixed-point compressor design.
const (
	limiterMaxInputDb       = 1.0
	limiterKneeSmoothnessDb = 1.0
	limiterCompressionRatio = 5.0

	kneePoints       = 22
	beyondKneePoints = 10
	curvePoints      = kneePoints + beyondKneePoints

	// kneeStartDb is where the knee region begins; the knee spans twice the
	// knee smoothness on either side of the max input level.
	kneeStartDb = limiterMaxInputDb - 2*limiterKneeSmoothnessDb
	curveRangeDb = 24.0 // input range the curve table spans below the knee start
)

// limiterCurve precomputes the output level (dBFS) for a uniformly spaced
// table of input levels spanning the knee and the region beyond it, so the
// limiter can apply the curve with a cheap linear interpolation per
// sample instead of evaluating the compressor transfer function live.
type limiterCurve struct {
	inputDb  [curvePoints]float64
	outputDb [curvePoints]float64
}

func compressorOutputDb(inputDb float64) float64 {
	if inputDb <= kneeStartDb {
		return inputDb
	}
	if inputDb >= limiterMaxInputDb+2*limiterKneeSmoothnessDb {
		excess := inputDb - limiterMaxInputDb
		return limiterMaxInputDb + excess/limiterCompressionRatio
	}
	// Smooth quadratic knee blending linear pass-through into the fixed
	// compression ratio.
	kneeWidth := 4 * limiterKneeSmoothnessDb
	t := (inputDb - kneeStartDb) / kneeWidth
	linear := inputDb
	compressed := limiterMaxInputDb + (inputDb-limiterMaxInputDb)/limiterCompressionRatio
	return linear + t*t*(compressed-linear)
}

func newLimiterCurve() *limiterCurve {
	c := &limiterCurve{}
	lo := kneeStartDb - curveRangeDb
	hi := limiterMaxInputDb + 2*limiterKneeSmoothnessDb + 12.0
	for i := 0; i < curvePoints; i++ {
		frac := float64(i) / float64(curvePoints-1)
		in := lo + frac*(hi-lo)
		c.inputDb[i] = in
		c.outputDb[i] = compressorOutputDb(in)
	}
	return c
}

func (c *limiterCurve) apply(inputDb float64) float64 {
	if inputDb <= c.inputDb[0] {
		return inputDb + (c.outputDb[0] - c.inputDb[0])
	}
	last := curvePoints - 1
	if inputDb >= c.inputDb[last] {
		return compressorOutputDb(inputDb)
	}
	for i := 1; i < curvePoints; i++ {
		if inputDb <= c.inputDb[i] {
			x0, x1 := c.inputDb[i-1], c.inputDb[i]
			y0, y1 := c.outputDb[i-1], c.outputDb[i]
			if x1 == x0 {
				return y0
			}
			t := (inputDb - x0) / (x1 - x0)
			return y0 + t*(y1-y0)
		}
	}
	return c.outputDb[last]
}

// Limiter is a brick-wall peak limiter with one sub-frame of look-ahead,
// using a precomputed interpolated gain curve instead of evaluating the
// compressor transfer function per sample.
type Limiter struct {
	curve *limiterCurve

	lookaheadSize int
	lookahead     []float32
}

// NewLimiter constructs a limiter with look-ahead equal to one sub-frame.
func NewLimiter(lookaheadSize int) *Limiter {
	return &Limiter{
		curve:         newLimiterCurve(),
		lookaheadSize: lookaheadSize,
		lookahead:     make([]float32, lookaheadSize),
	}
}

// Process applies the limiter to one frame, returning a same-length output
// delayed by the limiter's look-ahead.
func (l *Limiter) Process(frame []float32) []float32 {
	combined := make([]float32, l.lookaheadSize+len(frame))
	copy(combined, l.lookahead)
	copy(combined[l.lookaheadSize:], frame)

	out := make([]float32, len(frame))
	for i := 0; i < len(frame); i++ {
		sample := combined[i]
		peak := math.Abs(float64(sample))
		if peak == 0 {
			out[i] = 0
			continue
		}
		inDb := floatToDBFS(peak * MaxFloatS16Value)
		outDb := l.curve.apply(inDb)
		gain := linearGainFromDb(outDb - inDb)
		out[i] = float32(float64(sample) * gain)
	}

	copy(l.lookahead, combined[len(frame):])
	return out
}

// Reset clears the look-ahead buffer.
func (l *Limiter) Reset() {
	for i := range l.lookahead {
		l.lookahead[i] = 0
	}
}
