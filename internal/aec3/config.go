// Package aec3 implements the block-adaptive, multi-partition
// frequency-domain acoustic echo canceller: delay estimation, render/capture
// alignment, the adaptive FIR filters and their ERL, subband ERLE tracking,
// transparent-mode classification, comfort-noise generation, and the
// spectral suppressor.
//
// The configuration tree and its validation rules are ported from
// original_source/crates/sonora-aec3/src/config.rs, translated into Go
// idiom (exported structs, a Validate method returning a "changed" bool)
// rather than transliterated line-for-line.
package aec3

// FFTLengthBy2 is half the AEC3 FFT length (one sub-block in samples).
const FFTLengthBy2 = 64

// FFTLengthBy2Plus1 is the one-sided spectrum length (DC..Nyquist).
const FFTLengthBy2Plus1 = FFTLengthBy2 + 1

// NumBlocksPerSecond is the number of 4ms sub-blocks in one second, used to
// convert the legacy transparent-mode thresholds (expressed in the source as
// seconds) back into block counts, per the block-count preservation note in
// the specification's design notes.
const NumBlocksPerSecond = 250

// TransparentModeType selects the transparent-mode classifier implementation.
type TransparentModeType int

const (
	TransparentModeLegacy TransparentModeType = iota
	TransparentModeHmm
)

// Buffering controls excess-render detection and discard.
type Buffering struct {
	ExcessRenderDetectionIntervalBlocks int
	MaxAllowedExcessRenderBlocks        int
}

func defaultBuffering() Buffering {
	return Buffering{
		ExcessRenderDetectionIntervalBlocks: 250,
		MaxAllowedExcessRenderBlocks:        8,
	}
}

// DelayThresholds gates delay-estimate confidence.
type DelayThresholds struct {
	Initial   int
	Converged int
}

// AlignmentMixing controls how a multichannel render or capture signal is
// downmixed before delay estimation / alignment.
type AlignmentMixing struct {
	Downmix                  bool
	AdaptiveSelection        bool
	ActivityPowerThreshold   float64
	PreferFirstTwoChannels   bool
}

func defaultAlignmentMixing() AlignmentMixing {
	return AlignmentMixing{
		Downmix:                false,
		AdaptiveSelection:      true,
		ActivityPowerThreshold: 10000,
		PreferFirstTwoChannels: true,
	}
}

// Delay controls the cross-correlation delay estimator.
type Delay struct {
	DefaultDelay               int
	DownSamplingFactor         int
	NumFilters                 int
	DelayHeadroomBlocks        int
	HysteresisLimitBlocks      int
	Thresholds                 DelayThresholds
	LogWarningOnErrorOverflow  bool
	RenderAlignmentMixing      AlignmentMixing
	CaptureAlignmentMixing     AlignmentMixing
}

func defaultDelay() Delay {
	return Delay{
		DefaultDelay:              5,
		DownSamplingFactor:        4,
		NumFilters:                5,
		DelayHeadroomBlocks:       1,
		HysteresisLimitBlocks:     1,
		Thresholds:                DelayThresholds{Initial: 19200, Converged: 506},
		LogWarningOnErrorOverflow: true,
		RenderAlignmentMixing:     defaultAlignmentMixing(),
		CaptureAlignmentMixing:    defaultAlignmentMixing(),
	}
}

// RefinedConfiguration parameterises the slow, high-resolution adaptive
// filter.
type RefinedConfiguration struct {
	LengthBlocks      int
	LeakageConverged  float64
	LeakageDiverged   float64
	ErrorFloor        float64
	ErrorCeil         float64
	NoiseGate         float64
}

// CoarseConfiguration parameterises the fast-tracking shadow filter.
type CoarseConfiguration struct {
	LengthBlocks int
	Rate         float64
	NoiseGate    float64
}

// Filter bundles the refined and coarse adaptive filter configurations.
type Filter struct {
	Refined                      RefinedConfiguration
	RefinedInitial               RefinedConfiguration
	Coarse                       CoarseConfiguration
	CoarseInitial                CoarseConfiguration
	ConfigChangeDurationBlocks   int
	InitialStateSeconds          float64
	ConservativeInitialPhase     bool
	EnableCoarseFilterOutputUsage bool
	UseLinearFilter              bool
	HighPassFilterEchoReference  bool
	ExportLinearAecOutput        bool
}

func defaultFilter() Filter {
	return Filter{
		Refined: RefinedConfiguration{
			LengthBlocks:     13,
			LeakageConverged: 0.00005,
			LeakageDiverged:  0.05,
			ErrorFloor:       0.001,
			ErrorCeil:        2.0,
			NoiseGate:        20075344.0,
		},
		RefinedInitial: RefinedConfiguration{
			LengthBlocks:     12,
			LeakageConverged: 0.00005,
			LeakageDiverged:  0.05,
			ErrorFloor:       0.001,
			ErrorCeil:        2.0,
			NoiseGate:        20075344.0,
		},
		Coarse: CoarseConfiguration{
			LengthBlocks: 13,
			Rate:         0.7,
			NoiseGate:    20075344.0,
		},
		CoarseInitial: CoarseConfiguration{
			LengthBlocks: 12,
			Rate:         0.9,
			NoiseGate:    20075344.0,
		},
		ConfigChangeDurationBlocks:    250,
		InitialStateSeconds:           2.5,
		ConservativeInitialPhase:      false,
		EnableCoarseFilterOutputUsage: true,
		UseLinearFilter:               true,
		HighPassFilterEchoReference:   false,
		ExportLinearAecOutput:         false,
	}
}

// Erle controls ERL-enhancement tracking bounds.
type Erle struct {
	Min                          float64
	MaxL                         float64
	MaxH                         float64
	OnsetDetection               bool
	NumSections                  int
	ClampQualityEstimateToBounds bool
}

func defaultErle() Erle {
	return Erle{
		Min:                          1.0,
		MaxL:                         4.0,
		MaxH:                         1.5,
		OnsetDetection:               true,
		NumSections:                  1,
		ClampQualityEstimateToBounds: true,
	}
}

// EpStrength controls echo-path strength assumptions.
type EpStrength struct {
	DefaultGain    float64
	DefaultLen     float64
	NearendLen     float64
	EchoCanSaturate bool
	BoundedErl     bool
}

func defaultEpStrength() EpStrength {
	return EpStrength{
		DefaultGain:     1.0,
		DefaultLen:      0.83,
		NearendLen:      0.83,
		EchoCanSaturate: true,
		BoundedErl:      false,
	}
}

// EchoAudibility controls how render/echo audibility is judged.
type EchoAudibility struct {
	LowRenderLimit                float64
	FloorPower                    float64
	AudibilityThresholdLf         float64
	AudibilityThresholdMf         float64
	AudibilityThresholdHf         float64
	UseStationarityProperties     bool
	UseStationarityPropertiesAtInit bool
}

func defaultEchoAudibility() EchoAudibility {
	return EchoAudibility{
		LowRenderLimit:                  4 * 16384,
		FloorPower:                      2 * 16384,
		AudibilityThresholdLf:           10,
		AudibilityThresholdMf:           10,
		AudibilityThresholdHf:           10,
		UseStationarityProperties:       false,
		UseStationarityPropertiesAtInit: false,
	}
}

// RenderLevels controls render-activity gating.
type RenderLevels struct {
	ActiveRenderLimit             float64
	PoorExcitationRenderLimit     float64
	PoorExcitationRenderLimitDs8  float64
	RenderPowerGainDb             float64
}

func defaultRenderLevels() RenderLevels {
	return RenderLevels{
		ActiveRenderLimit:            100,
		PoorExcitationRenderLimit:    150,
		PoorExcitationRenderLimitDs8: 20,
		RenderPowerGainDb:            0,
	}
}

// EchoRemovalControl selects coarse behavioural modes.
type EchoRemovalControl struct {
	HasClockDrift               bool
	LinearAndStableEchoPath     bool
	TransparentMode             TransparentModeType
}

func defaultEchoRemovalControl() EchoRemovalControl {
	return EchoRemovalControl{
		HasClockDrift:           false,
		LinearAndStableEchoPath: false,
		TransparentMode:         TransparentModeLegacy,
	}
}

// EchoModel controls the nonlinear echo-power model.
type EchoModel struct {
	NoiseFloorHold             int
	MinNoiseFloorPower         float64
	StationaryGateSlope        float64
	NoiseGatePower             float64
	NoiseGateSlope             float64
	RenderPreWindowSize        int
	RenderPostWindowSize       int
	ModelReverbInNonlinearMode bool
}

func defaultEchoModel() EchoModel {
	return EchoModel{
		NoiseFloorHold:             50,
		MinNoiseFloorPower:         1638400.0,
		StationaryGateSlope:        10.0,
		NoiseGatePower:             27509.42,
		NoiseGateSlope:             0.3,
		RenderPreWindowSize:        1,
		RenderPostWindowSize:       1,
		ModelReverbInNonlinearMode: true,
	}
}

// ComfortNoise controls the comfort-noise generator's floor.
type ComfortNoise struct {
	NoiseFloorDbfs float64
}

func defaultComfortNoise() ComfortNoise {
	return ComfortNoise{NoiseFloorDbfs: -96.03406}
}

// MaskingThresholds controls suppressor gain-masking decisions.
type MaskingThresholds struct {
	EnrTransparent float64
	EnrSuppress    float64
	EmrTransparent float64
}

// Tuning is one suppressor tuning profile (normal or nearend).
type Tuning struct {
	MaskLf           MaskingThresholds
	MaskHf           MaskingThresholds
	MaxIncFactor     float64
	MaxDecFactorLf   float64
}

// DominantNearendDetection decides when to switch suppressor tuning.
type DominantNearendDetection struct {
	EnrThreshold      float64
	EnrExitThreshold  float64
	SnrThreshold      float64
	HoldDuration      int
	TriggerThreshold  int
}

// SubbandRegion names a contiguous bin range.
type SubbandRegion struct {
	Low  int
	High int
}

// SubbandNearendDetection is an alternative, per-subband dominant-nearend
// detector.
type SubbandNearendDetection struct {
	NearendAverageBlocks int
	Subband1             SubbandRegion
	Subband2             SubbandRegion
	NearendThreshold     float64
	SnrThreshold         float64
}

// HighBandsSuppression controls anti-howling behaviour above band 0.
type HighBandsSuppression struct {
	EnrThreshold                  float64
	MaxGainDuringEcho             float64
	AntiHowlingActivationThreshold float64
	AntiHowlingGain               float64
}

// Suppressor bundles the spectral-suppressor tuning.
type Suppressor struct {
	NearendAverageBlocks       int
	NormalTuning               Tuning
	NearendTuning              Tuning
	DominantNearendDetection   DominantNearendDetection
	SubbandNearendDetection    SubbandNearendDetection
	HighBandsSuppression       HighBandsSuppression
	FloorFirstIncrease         float64
	LastLfBand                 int
	FirstHfBand                int
}

func defaultSuppressor() Suppressor {
	return Suppressor{
		NearendAverageBlocks: 4,
		NormalTuning: Tuning{
			MaskLf:         MaskingThresholds{EnrTransparent: 0.3, EnrSuppress: 0.4, EmrTransparent: 0.3},
			MaskHf:         MaskingThresholds{EnrTransparent: 0.07, EnrSuppress: 0.1, EmrTransparent: 0.3},
			MaxIncFactor:   2.0,
			MaxDecFactorLf: 0.25,
		},
		NearendTuning: Tuning{
			MaskLf:         MaskingThresholds{EnrTransparent: 1.09, EnrSuppress: 1.1, EmrTransparent: 0.3},
			MaskHf:         MaskingThresholds{EnrTransparent: 0.1, EnrSuppress: 0.3, EmrTransparent: 0.3},
			MaxIncFactor:   2.0,
			MaxDecFactorLf: 0.25,
		},
		DominantNearendDetection: DominantNearendDetection{
			EnrThreshold:     0.25,
			EnrExitThreshold: 10.0,
			SnrThreshold:     30,
			HoldDuration:     50,
			TriggerThreshold: 12,
		},
		SubbandNearendDetection: SubbandNearendDetection{
			NearendAverageBlocks: 1,
			Subband1:             SubbandRegion{Low: 1, High: 1},
			Subband2:             SubbandRegion{Low: 1, High: 1},
			NearendThreshold:     1.0,
			SnrThreshold:         1.0,
		},
		HighBandsSuppression: HighBandsSuppression{
			EnrThreshold:                   1.0,
			MaxGainDuringEcho:              1.0,
			AntiHowlingActivationThreshold: 400.0,
			AntiHowlingGain:                1.0,
		},
		FloorFirstIncrease: 0.00001,
		LastLfBand:         5,
		FirstHfBand:        8,
	}
}

// MultiChannel controls stereo-content detection and the hysteresis around
// switching to the multichannel baseline.
type MultiChannel struct {
	DetectStereoContent                     bool
	StereoDetectionThreshold                float64
	StereoDetectionTimeoutThresholdSeconds  float64
	StereoDetectionHysteresisSeconds        float64
}

func defaultMultiChannel() MultiChannel {
	return MultiChannel{
		DetectStereoContent:                    true,
		StereoDetectionThreshold:               0.0,
		StereoDetectionTimeoutThresholdSeconds: 300,
		StereoDetectionHysteresisSeconds:       2.0,
	}
}

// Config is the full AEC3 tuning tree.
type Config struct {
	Buffering          Buffering
	Delay              Delay
	Filter             Filter
	Erle               Erle
	EpStrength         EpStrength
	EchoAudibility     EchoAudibility
	RenderLevels       RenderLevels
	EchoRemovalControl EchoRemovalControl
	EchoModel          EchoModel
	ComfortNoise       ComfortNoise
	Suppressor         Suppressor
	MultiChannel       MultiChannel
}

// DefaultConfig returns the single-channel tuning baseline.
func DefaultConfig() Config {
	return Config{
		Buffering:          defaultBuffering(),
		Delay:              defaultDelay(),
		Filter:             defaultFilter(),
		Erle:               defaultErle(),
		EpStrength:         defaultEpStrength(),
		EchoAudibility:     defaultEchoAudibility(),
		RenderLevels:       defaultRenderLevels(),
		EchoRemovalControl: defaultEchoRemovalControl(),
		EchoModel:          defaultEchoModel(),
		ComfortNoise:       defaultComfortNoise(),
		Suppressor:         defaultSuppressor(),
		MultiChannel:       defaultMultiChannel(),
	}
}

// DefaultMultichannelConfig returns the canonical baseline applied whenever
// multichannel capture is enabled: a faster-tracking coarse filter and a
// looser suppressor, per the specification's design-note resolution.
func DefaultMultichannelConfig() Config {
	c := DefaultConfig()
	c.Filter.Coarse.LengthBlocks = 11
	c.Filter.Coarse.Rate = 0.95
	c.Filter.CoarseInitial.LengthBlocks = 11
	c.Filter.CoarseInitial.Rate = 0.95
	c.Suppressor.NormalTuning.MaxDecFactorLf = 0.35
	c.Suppressor.NormalTuning.MaxIncFactor = 1.5
	return c
}
