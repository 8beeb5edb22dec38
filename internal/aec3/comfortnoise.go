package aec3

import "math"

// comfortNoiseWarmupBlocks is the number of blocks before N2 starts tracking.
const comfortNoiseWarmupBlocks = 50

// comfortNoiseInitialBlocks is the number of blocks the "initial" fast
// estimate is trusted before being discarded in favour of the slow tracker.
const comfortNoiseInitialBlocks = 1000

// comfortNoiseDrift is the unexplained slow upward drift constant that lets
// the noise tracker escape its own floor. Preserved exactly, per the
// specification's explicit instruction not to rationalise it away.
const comfortNoiseDrift = 1.0002

// sqrt2Sin is a 32-entry table of sqrt(2)*sin(2*pi*i/32), used together with
// a 5-bit LCG index to synthesise a pseudo-random phase for comfort noise.
var sqrt2Sin = func() [32]float32 {
	var t [32]float32
	for i := range t {
		t[i] = float32(math.Sqrt2 * math.Sin(2*math.Pi*float64(i)/32))
	}
	return t
}()

// noiseFloorFactor implements noise_floor_factor(dbfs) = 64 * 10^((90.30899 + dbfs)/10).
func noiseFloorFactor(dbfs float64) float32 {
	return float32(64 * math.Pow(10, (90.30899+dbfs)/10))
}

// ComfortNoiseGenerator fills spectrally-suppressed bins with shaped random
// noise matching the tracked background level. Ported from
// original_source/crates/sonora-aec3/src/comfort_noise_generator.rs.
type ComfortNoiseGenerator struct {
	noiseFloor float32

	seed uint32

	y2Smoothed []float32
	n2         []float32
	n2Initial  []float32 // nil once discarded
	n2Counter  int
}

// NewComfortNoiseGenerator constructs a generator for one capture channel.
func NewComfortNoiseGenerator(cfg ComfortNoise) *ComfortNoiseGenerator {
	n2 := make([]float32, FFTLengthBy2Plus1)
	n2Initial := make([]float32, FFTLengthBy2Plus1)
	for i := range n2 {
		n2[i] = 1.0e6
	}
	return &ComfortNoiseGenerator{
		noiseFloor: noiseFloorFactor(cfg.NoiseFloorDbfs),
		seed:       42,
		y2Smoothed: make([]float32, FFTLengthBy2Plus1),
		n2:         n2,
		n2Initial:  n2Initial,
	}
}

// Update advances the noise estimate given the current capture power
// spectrum Y2 and whether the capture is currently saturated.
func (g *ComfortNoiseGenerator) Update(y2 []float32, saturatedCapture bool) {
	if saturatedCapture {
		return
	}
	for k := range g.y2Smoothed {
		g.y2Smoothed[k] += 0.1 * (y2[k] - g.y2Smoothed[k])
	}

	g.n2Counter++
	if g.n2Counter > comfortNoiseWarmupBlocks {
		for k := range g.n2 {
			a := g.n2[k]
			b := g.y2Smoothed[k]
			var updated float32
			if b < a {
				updated = (0.9*b + 0.1*a) * comfortNoiseDrift
			} else {
				updated = a * comfortNoiseDrift
			}
			if updated < g.noiseFloor {
				updated = g.noiseFloor
			}
			g.n2[k] = updated
		}
	}

	if g.n2Initial != nil {
		if g.n2Counter >= comfortNoiseInitialBlocks {
			g.n2Initial = nil
		} else {
			// N2_initial converges from above toward the slow tracker N2, not
			// toward Y2_smoothed directly.
			for k := range g.n2Initial {
				a := g.n2[k]
				b := g.n2Initial[k]
				var updated float32
				if a > b {
					updated = b + 0.001*(a-b)
				} else {
					updated = a
				}
				if updated < g.noiseFloor {
					updated = g.noiseFloor
				}
				g.n2Initial[k] = updated
			}
		}
	}
}

// N2 returns the noise-power estimate currently in effect (the fast initial
// estimate for the first 1000 blocks, the slow tracker afterwards).
func (g *ComfortNoiseGenerator) N2() []float32 {
	if g.n2Initial != nil {
		return g.n2Initial
	}
	return g.n2
}

// Generate synthesises one block of comfort noise into lower and upper band
// spectra (each length FFTLengthBy2Plus1).
func (g *ComfortNoiseGenerator) Generate(lowerRe, lowerIm, upperRe, upperIm []float32) {
	n2 := g.N2()
	n := make([]float32, FFTLengthBy2Plus1)
	for k, v := range n2 {
		n[k] = float32(math.Sqrt(float64(v)))
	}

	const halfBandStart = 33
	var highSum float32
	for k := halfBandStart; k < FFTLengthBy2Plus1; k++ {
		highSum += n[k]
	}
	highBandNoiseLevel := highSum / float32(FFTLengthBy2Plus1-halfBandStart)

	for k := 1; k < FFTLengthBy2; k++ {
		g.seed = g.seed*69069 + 1
		g.seed &= 0x7fffffff
		idx := g.seed >> 26
		x := sqrt2Sin[idx]
		y := sqrt2Sin[(idx+8)&31]

		lowerRe[k] = n[k] * x
		lowerIm[k] = n[k] * y
		upperRe[k] = highBandNoiseLevel * x
		upperIm[k] = highBandNoiseLevel * y
	}
	lowerRe[0], lowerIm[0] = 0, 0
	upperRe[0], upperIm[0] = 0, 0
	lowerRe[FFTLengthBy2], lowerIm[FFTLengthBy2] = 0, 0
	upperRe[FFTLengthBy2], upperIm[FFTLengthBy2] = 0, 0
}
