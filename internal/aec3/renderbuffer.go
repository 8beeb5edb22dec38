package aec3

import "github.com/chriscow/apm-go/internal/fft"

// Complex is an alias of the FFT package's complex bin representation, used
// throughout this package's frequency-domain filtering.
type Complex = fft.Complex

// RenderBuffer keeps a history of overlap-save FFT frames of the render
// signal, one per 4ms sub-block, so that a partitioned-block adaptive
// filter can look back NumFilters blocks without re-transforming old
// samples on every update.
type RenderBuffer struct {
	prevBlock []float32
	history   [][]Complex // newest at index len-1
	capacity  int
}

// NewRenderBuffer constructs a buffer retaining up to capacity sub-blocks
// of spectral history.
func NewRenderBuffer(capacity int) *RenderBuffer {
	return &RenderBuffer{
		prevBlock: make([]float32, FFTLengthBy2),
		capacity:  capacity,
	}
}

// toComplexSlice converts a real FFT output into the Complex representation
// shared across this package.
func toComplexSlice(spec []fft.Complex) []Complex {
	return spec
}

// PushBlock transforms the overlap-save frame formed from the previous and
// current sub-block and stores it, evicting the oldest frame once capacity
// is exceeded.
func (r *RenderBuffer) PushBlock(block []float32) {
	frame := make([]float32, fft.Length)
	copy(frame, r.prevBlock)
	copy(frame[FFTLengthBy2:], block)

	spec := fft.Forward(frame)
	r.history = append(r.history, spec)
	if len(r.history) > r.capacity {
		r.history = r.history[1:]
	}

	copy(r.prevBlock, block)
}

// Partitions returns up to n spectra ordered from most recent (index 0) to
// oldest, as required by AdaptiveFilter.Predict/Adapt.
func (r *RenderBuffer) Partitions(n int) [][]Complex {
	out := make([][]Complex, 0, n)
	for i := len(r.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.history[i])
	}
	for len(out) < n {
		out = append(out, make([]Complex, FFTLengthBy2Plus1))
	}
	return out
}

// Power returns the squared-magnitude spectrum of each partition returned
// by Partitions, used as the adaptive filter's per-bin normalisation.
func Power(partitions [][]Complex) [][]float32 {
	out := make([][]float32, len(partitions))
	for p, spec := range partitions {
		row := make([]float32, len(spec))
		for k, c := range spec {
			row[k] = c.Re*c.Re + c.Im*c.Im
		}
		out[p] = row
	}
	return out
}
