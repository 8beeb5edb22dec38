// Package agc2 implements the automatic gain control stage: an
// RNN-VAD-gated speech-level estimator, a saturation protector, an
// adaptive digital gain controller, and a brick-wall limiter with a
// precomputed interpolated gain curve.
package agc2

import "math"

// MinFloatS16Value is the smallest representable int16 sample, expressed
// in the float32 domain AGC2 runs in.
const MinFloatS16Value = -32768.0

// MaxFloatS16Value is the largest representable int16 sample.
const MaxFloatS16Value = 32767.0

// dBFSToFloat converts a dBFS level back into the linear float32 domain
// where full scale is MaxFloatS16Value.
func dBFSToFloat(dbfs float64) float64 {
	return MaxFloatS16Value * math.Pow(10, dbfs/20)
}

// floatToDBFS converts a linear full-scale-relative amplitude into dBFS,
// flooring at -90dB to avoid -Inf for silence.
func floatToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return -90.0
	}
	db := 20 * math.Log10(amplitude/MaxFloatS16Value)
	if db < -90 {
		return -90
	}
	return db
}

// linearGainFromDb converts a dB gain into a linear multiplier.
func linearGainFromDb(db float64) float64 {
	return math.Pow(10, db/20)
}
