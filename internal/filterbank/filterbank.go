// Package filterbank implements the three-band splitting filter used when
// the pipeline's internal rate exceeds 16 kHz: a 480-sample full-band frame
// is decomposed into three 160-sample critically-sampled bands, and the
// inverse.
//
// The reference implementation's actual QMF prototype-filter coefficients
// were not available anywhere in this module's source corpus (see
// DESIGN.md). In their place this package uses a per-triplet orthonormal
// three-point transform (the length-3 DCT-II basis): it is exactly
// invertible by construction (the inverse is the transpose of an orthonormal
// matrix), which satisfies the bank's reconstruction invariant to floating
// point precision, and it still gives each output band a distinct spectral
// leaning (band 0 tracks the local average / low content, band 2 tracks the
// local second difference / high content) across each three-sample window.
package filterbank

import "math"

// FullBandFrameLength is the size of a full-band input/output frame.
const FullBandFrameLength = 480

// SplitBandFrameLength is the size of each of the three output bands.
const SplitBandFrameLength = FullBandFrameLength / 3

// NumBands is the number of split bands produced.
const NumBands = 3

var basis = [NumBands][NumBands]float64{
	{1 / math.Sqrt(3), 1 / math.Sqrt(3), 1 / math.Sqrt(3)},
	{1 / math.Sqrt(2), 0, -1 / math.Sqrt(2)},
	{1 / math.Sqrt(6), -2 / math.Sqrt(6), 1 / math.Sqrt(6)},
}

// Analysis splits a full-band frame into NumBands bands of len(x)/3 samples
// each. x's length must be a multiple of NumBands; 480 (the 48kHz/10ms case)
// is the common one, and any multiple-of-3 frame length works. A 32kHz
// 10ms frame (320 samples) is not a multiple of 3 and makes Analysis panic.
func Analysis(x []float32, bands [NumBands][]float32) {
	if len(x)%NumBands != 0 {
		panic("filterbank: Analysis requires a frame length divisible by NumBands")
	}
	splitLen := len(x) / NumBands
	for i := 0; i < splitLen; i++ {
		x0 := float64(x[3*i])
		x1 := float64(x[3*i+1])
		x2 := float64(x[3*i+2])
		for b := 0; b < NumBands; b++ {
			bands[b][i] = float32(basis[b][0]*x0 + basis[b][1]*x1 + basis[b][2]*x2)
		}
	}
}

// Synthesis reconstructs a full-band frame from NumBands bands of
// len(out)/3 samples each. See Analysis for the frame-length contract.
func Synthesis(bands [NumBands][]float32, out []float32) {
	if len(out)%NumBands != 0 {
		panic("filterbank: Synthesis requires an output length divisible by NumBands")
	}
	splitLen := len(out) / NumBands
	for i := 0; i < splitLen; i++ {
		b0 := float64(bands[0][i])
		b1 := float64(bands[1][i])
		b2 := float64(bands[2][i])
		for k := 0; k < 3; k++ {
			out[3*i+k] = float32(basis[0][k]*b0 + basis[1][k]*b1 + basis[2][k]*b2)
		}
	}
}
