// Package fft provides the fixed length-128 real FFT the pipeline's 64-sample
// sub-block processing is built around. The spectrum representation is the
// one-sided length-65 layout (bins 0..64, DC..Nyquist) used throughout the
// AEC3 and noise-suppressor components.
package fft

import "math/cmplx"

// Length is the fixed transform size in samples.
const Length = 128

// SpectrumLength is the number of one-sided bins (DC..Nyquist inclusive).
const SpectrumLength = Length/2 + 1

// Complex is a single frequency-domain bin.
type Complex struct {
	Re, Im float32
}

// Forward computes the one-sided spectrum of a length-128 real input.
// x must have length Length; the result has length SpectrumLength.
func Forward(x []float32) []Complex {
	return ForwardN(x, Length)
}

// Inverse reconstructs a length-128 real signal from a one-sided spectrum of
// length SpectrumLength. The negative-frequency half is reconstructed by
// conjugate symmetry, as the source signal is assumed real.
func Inverse(spectrum []Complex) []float32 {
	return InverseN(spectrum, Length)
}

// ForwardN computes the one-sided spectrum of a real input of an arbitrary
// power-of-two length n, yielding n/2+1 bins. Components other than the
// fixed 128-sample AEC3 path (the noise suppressor's 256-point analysis
// window, in particular) use this directly rather than duplicating the
// transform.
func ForwardN(x []float32, n int) []Complex {
	if len(x) != n {
		panic("fft: ForwardN requires len(x) == n")
	}
	buf := make([]complex128, n)
	for i, v := range x {
		buf[i] = complex(float64(v), 0)
	}
	fftComplex(buf, false)

	out := make([]Complex, n/2+1)
	for k := range out {
		out[k] = Complex{Re: float32(real(buf[k])), Im: float32(imag(buf[k]))}
	}
	return out
}

// InverseN reconstructs a real signal of length n from a one-sided spectrum
// of length n/2+1.
func InverseN(spectrum []Complex, n int) []float32 {
	if len(spectrum) != n/2+1 {
		panic("fft: InverseN requires len(spectrum) == n/2+1")
	}
	buf := make([]complex128, n)
	for k := range spectrum {
		buf[k] = complex(float64(spectrum[k].Re), float64(spectrum[k].Im))
	}
	for k := 1; k < n/2; k++ {
		buf[n-k] = cmplx.Conj(buf[k])
	}
	fftComplex(buf, true)

	out := make([]float32, n)
	scale := 1.0 / float64(n)
	for i, v := range buf {
		out[i] = float32(real(v) * scale)
	}
	return out
}

// fftComplex is an in-place radix-2 Cooley-Tukey FFT/IFFT over a power-of-two
// length buffer. inverse selects the sign of the twiddle exponent; the caller
// is responsible for the 1/N inverse scaling.
func fftComplex(a []complex128, inverse bool) {
	n := len(a)
	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angleSign := -1.0
		if inverse {
			angleSign = 1.0
		}
		halfLen := length / 2
		wStep := cmplx.Rect(1, angleSign*2*pi/float64(length))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for k := 0; k < halfLen; k++ {
				u := a[start+k]
				v := a[start+k+halfLen] * w
				a[start+k] = u + v
				a[start+k+halfLen] = u - v
				w *= wStep
			}
		}
	}
}

const pi = 3.14159265358979323846
