// Package rnnvad extracts band-energy and cepstral features from 24kHz,
// 20ms frames and scores them with a small recurrent network, per
// original_source/crates/sonora-agc2/src/rnn_vad/spectral_features.rs.
package rnnvad

import (
	"math"

	"github.com/chriscow/apm-go/internal/fft"
)

// SampleRate is the rate the feature extractor expects its input at.
const SampleRate = 24000

// FrameSize is 20ms of audio at SampleRate.
const FrameSize = 480

// fftSize is the next power of two at or above FrameSize, zero-padded.
const fftSize = 512

// NumBands is the number of Opus-style critical bands the spectrum is
// folded into.
const NumBands = 22

// NumCepstralCoeffs is the number of DCT coefficients kept per frame.
const NumCepstralCoeffs = 22

// silenceEnergyThreshold is the total band-energy floor below which a
// frame is treated as silence and no features are emitted.
const silenceEnergyThreshold = 0.04

// bandBoundaries gives each critical band's upper FFT-bin edge (inclusive
// of the previous band's edge), approximating the Opus/WebRTC band table
// scaled to a 512-point FFT at 24kHz.
var bandBoundaries = computeBandBoundaries()

func computeBandBoundaries() [NumBands + 1]int {
	var edges [NumBands + 1]int
	maxBin := fftSize/2 + 1
	for i := range edges {
		// A mildly nonlinear (roughly Bark-like) spacing: more resolution
		// at low frequencies, coarser toward Nyquist.
		frac := math.Pow(float64(i)/float64(NumBands), 1.5)
		edges[i] = int(frac * float64(maxBin-1))
	}
	edges[NumBands] = maxBin - 1
	return edges
}

func hannWindow() []float32 {
	w := make([]float32, fftSize)
	for i := range w {
		w[i] = float32(0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}
	return w
}

var window = hannWindow()

// Features holds one frame's extracted feature vector: band energies in
// dB, their cepstrum, derivatives across a short history, and a
// cepstral-variability scalar.
type Features struct {
	BandEnergyDb   [NumBands]float64
	Cepstrum       [NumCepstralCoeffs]float64
	CepstrumDelta  [NumCepstralCoeffs]float64
	CepstrumDelta2 [NumCepstralCoeffs]float64
	Variability    float64
	Silence        bool
}

// Extractor maintains the short cepstral history needed to compute
// derivatives and variability across frames.
type Extractor struct {
	history [3][NumCepstralCoeffs]float64
	filled  int
}

// NewExtractor constructs a feature extractor with empty history.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// bandEnergies folds the FFT magnitude-squared spectrum into NumBands
// critical-band sums.
func bandEnergies(spectrum []fft.Complex) [NumBands]float64 {
	var energies [NumBands]float64
	for b := 0; b < NumBands; b++ {
		lo, hi := bandBoundaries[b], bandBoundaries[b+1]
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for k := lo; k < hi && k < len(spectrum); k++ {
			c := spectrum[k]
			sum += float64(c.Re)*float64(c.Re) + float64(c.Im)*float64(c.Im)
		}
		energies[b] = sum
	}
	return energies
}

// dct computes a type-II DCT of the band-energy-in-dB vector, the standard
// cepstral transform.
func dct(x [NumBands]float64) [NumCepstralCoeffs]float64 {
	var out [NumCepstralCoeffs]float64
	n := float64(NumBands)
	for k := 0; k < NumCepstralCoeffs; k++ {
		var sum float64
		for i := 0; i < NumBands; i++ {
			sum += x[i] * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/n)
		}
		out[k] = sum * math.Sqrt(2/n)
	}
	return out
}

// Extract computes one frame's features, folding the frame into a 512-point
// zero-padded, Hann-windowed FFT. frame must contain FrameSize samples.
func (e *Extractor) Extract(frame []float32) Features {
	padded := make([]float32, fftSize)
	copy(padded, frame)
	for i := range padded {
		padded[i] *= window[i]
	}
	spectrum := fft.ForwardN(padded, fftSize)

	energies := bandEnergies(spectrum)

	var total float64
	for _, e := range energies {
		total += e
	}
	if total < silenceEnergyThreshold {
		return Features{Silence: true}
	}

	var energyDb [NumBands]float64
	for i, e := range energies {
		if e <= 0 {
			energyDb[i] = -90
		} else {
			energyDb[i] = 10 * math.Log10(e)
		}
	}

	cepstrum := dct(energyDb)
	// Ad-hoc low-order corrections matching the reference's empirical
	// bias removal for the first two cepstral coefficients.
	cepstrum[0] -= 12
	cepstrum[1] -= 4

	var delta, delta2 [NumCepstralCoeffs]float64
	if e.filled >= 1 {
		for k := range delta {
			delta[k] = cepstrum[k] - e.history[0][k]
		}
	}
	if e.filled >= 2 {
		for k := range delta2 {
			delta2[k] = cepstrum[k] - 2*e.history[0][k] + e.history[1][k]
		}
	}

	var variability float64
	if e.filled >= 1 {
		for k := range cepstrum {
			d := cepstrum[k] - e.history[0][k]
			variability += d * d
		}
		variability = math.Sqrt(variability / NumCepstralCoeffs)
	}

	e.history[2] = e.history[1]
	e.history[1] = e.history[0]
	e.history[0] = cepstrum
	if e.filled < 3 {
		e.filled++
	}

	return Features{
		BandEnergyDb:   energyDb,
		Cepstrum:       cepstrum,
		CepstrumDelta:  delta,
		CepstrumDelta2: delta2,
		Variability:    variability,
	}
}

// Reset clears the cepstral history, as happens when a stream restarts.
func (e *Extractor) Reset() {
	e.filled = 0
	e.history = [3][NumCepstralCoeffs]float64{}
}
