package agc2

// VadConfidenceThreshold is the speech-probability threshold above which a
// frame counts toward the speech-level estimator's adjacent-frame run.
const VadConfidenceThreshold = 0.95

// AdjacentSpeechFramesThreshold is the number of consecutive qualifying
// frames required before the speech-level estimator trusts a run as real
// speech rather than a brief spurious detection.
const AdjacentSpeechFramesThreshold = 12

// FrameSizeForVad is the sample count a VoiceActivityDetector expects per
// call, mirroring rnnvad.FrameSize (480 samples at 24kHz, 20ms). Kept here
// rather than imported to avoid tying this package to a specific VAD
// backend's internals.
const FrameSizeForVad = 480

// VoiceActivityDetector scores one 20ms frame's speech probability in
// [0, 1]. Implementations are swappable: rnnvad.Vad is the always-available
// pure-Go implementation, and rnnvad.OnnxVad is available behind the
// onnxvad build tag.
type VoiceActivityDetector interface {
	Probability(frame []float32) float64
	Reset()
}
