//go:build onnxvad

package rnnvad

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortOnce    sync.Once
	ortInitErr error
)

// ensureOrtEnv initializes the ONNX runtime environment exactly once per
// process, using a lazy, once-guarded init.
func ensureOrtEnv() error {
	ortOnce.Do(func() {
		if libPath := os.Getenv("ONNXRUNTIME_LIB"); libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		} else if runtime.GOOS == "darwin" {
			ort.SetSharedLibraryPath("/opt/homebrew/lib/libonnxruntime.dylib")
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// OnnxVad runs the same feature pipeline as Vad but scores the resulting
// feature vector with an ONNX session instead of the in-process Network,
// for deployments that ship a trained model alongside the binary.
type OnnxVad struct {
	extractor *Extractor

	modelPath   string
	sessionOnce sync.Once
	session     *ort.Session[float32]
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	sessionErr  error
}

// NewOnnxVad constructs an ONNX-backed VAD that lazily loads modelPath on
// first use.
func NewOnnxVad(modelPath string) *OnnxVad {
	return &OnnxVad{extractor: NewExtractor(), modelPath: modelPath}
}

func (v *OnnxVad) ensureSession() error {
	v.sessionOnce.Do(func() {
		if err := ensureOrtEnv(); err != nil {
			v.sessionErr = fmt.Errorf("agc2: initializing onnx runtime: %w", err)
			return
		}

		inputShape := ort.NewShape(1, int64(featureDim))
		inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
		if err != nil {
			v.sessionErr = fmt.Errorf("agc2: allocating onnx input tensor: %w", err)
			return
		}

		outputShape := ort.NewShape(1, 1)
		outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
		if err != nil {
			v.sessionErr = fmt.Errorf("agc2: allocating onnx output tensor: %w", err)
			return
		}

		session, err := ort.NewSession[float32](
			v.modelPath,
			[]string{"features"},
			[]string{"probability"},
			[]*ort.Tensor[float32]{inputTensor},
			[]*ort.Tensor[float32]{outputTensor},
		)
		if err != nil {
			v.sessionErr = fmt.Errorf("agc2: loading onnx model %s: %w", v.modelPath, err)
			return
		}

		v.session = session
		v.inputTensor = inputTensor
		v.outputTensor = outputTensor
	})
	return v.sessionErr
}

// Probability extracts this frame's feature vector and scores it through
// the ONNX session, falling back to 0 (never surfaced to the caller as an
// error) if the session failed to load.
func (v *OnnxVad) Probability(frame []float32) float64 {
	f := v.extractor.Extract(frame)
	if f.Silence {
		return 0
	}
	if err := v.ensureSession(); err != nil {
		return 0
	}

	data := v.inputTensor.GetData()
	copy(data[0:NumCepstralCoeffs], toFloat32(f.Cepstrum[:]))
	copy(data[NumCepstralCoeffs:2*NumCepstralCoeffs], toFloat32(f.CepstrumDelta[:]))
	copy(data[2*NumCepstralCoeffs:3*NumCepstralCoeffs], toFloat32(f.CepstrumDelta2[:]))
	data[3*NumCepstralCoeffs] = float32(f.Variability)

	if err := v.session.Run(); err != nil {
		return 0
	}
	out := v.outputTensor.GetData()
	return float64(out[0])
}

// Reset clears the feature-extraction history.
func (v *OnnxVad) Reset() {
	v.extractor.Reset()
}

func toFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
