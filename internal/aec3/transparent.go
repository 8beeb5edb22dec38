package aec3

// TransparentModeDetector decides whether the capture signal is currently
// free enough of echo that the suppressor can be relaxed into a
// transparent, low-distortion mode. Two classifiers are offered, matching
// original_source/crates/sonora-aec3/src/transparent_mode.rs: a legacy
// block-counting heuristic and an HMM-based Bayesian filter.
type TransparentModeDetector interface {
	// Update folds in one sub-block's observation: whether the filter is
	// currently judged to have a sane (converged, low-error) estimate.
	Update(activeRender, sartFilterSane, finePath bool)
	// Active reports whether transparent mode should currently be active.
	Active() bool
}

// legacy block-count thresholds, converted from the reference's
// second-based constants via NumBlocksPerSecond; the classifier counts
// blocks, not wall-clock time.
const (
	legacyInitialBlocks          = 5 * NumBlocksPerSecond
	legacyBlocksSinceConvergence = 30 * NumBlocksPerSecond
	legacyNonSaneBlocks          = 60 * NumBlocksPerSecond
	legacyActiveBlocksCooldown   = 20 * NumBlocksPerSecond
	legacyRecentlyConverged      = 6 * NumBlocksPerSecond
)

// LegacyTransparentMode is the counter-based heuristic classifier.
type LegacyTransparentMode struct {
	captureBlockCounter    int
	blocksSinceSaneFilter  int
	blocksSinceConsistentEstimate int
	active                 bool
}

// NewLegacyTransparentMode constructs the legacy classifier.
func NewLegacyTransparentMode() *LegacyTransparentMode {
	return &LegacyTransparentMode{
		blocksSinceSaneFilter:         legacyNonSaneBlocks,
		blocksSinceConsistentEstimate: legacyBlocksSinceConvergence,
	}
}

func (m *LegacyTransparentMode) Update(activeRender, sartFilterSane, finePath bool) {
	m.captureBlockCounter++

	if sartFilterSane {
		m.blocksSinceSaneFilter = 0
	} else if m.blocksSinceSaneFilter < legacyNonSaneBlocks {
		m.blocksSinceSaneFilter++
	}

	if finePath {
		m.blocksSinceConsistentEstimate = 0
	} else if m.blocksSinceConsistentEstimate < legacyBlocksSinceConvergence {
		m.blocksSinceConsistentEstimate++
	}

	if m.captureBlockCounter < legacyInitialBlocks {
		m.active = false
		return
	}

	filterIsSane := m.blocksSinceSaneFilter < legacyNonSaneBlocks
	recentlyConverged := m.blocksSinceConsistentEstimate < legacyRecentlyConverged
	convergedRecentEnough := m.blocksSinceConsistentEstimate < legacyActiveBlocksCooldown

	m.active = filterIsSane && (recentlyConverged || (!activeRender && convergedRecentEnough))
}

func (m *LegacyTransparentMode) Active() bool {
	return m.active
}

// HMM transition/observation constants.
const (
	hmmSwitchProbability      = 1e-6
	hmmConvergedNormal        = 0.01
	hmmConvergedTransparent   = 0.001
	hmmHysteresisUp           = 0.95
	hmmHysteresisDown         = 0.5
	hmmInitialPosterior       = 0.2
)

// HmmTransparentMode is a two-state (echo-present / transparent) Bayesian
// filter over the per-block filter-convergence observation, with hysteresis
// applied to the posterior before it is allowed to flip the externally
// visible decision.
type HmmTransparentMode struct {
	posteriorTransparent float64
	active                bool
}

// NewHmmTransparentMode constructs the HMM classifier with its prior
// weighted toward "echo present", matching the reference's conservative
// startup bias.
func NewHmmTransparentMode() *HmmTransparentMode {
	return &HmmTransparentMode{posteriorTransparent: hmmInitialPosterior}
}

// Update folds in one observation. sartFilterSane is the convergence
// observation; blocks without active render are ignored. finePath is
// accepted for interface parity with the legacy classifier and is not used.
func (m *HmmTransparentMode) Update(activeRender, sartFilterSane, finePath bool) {
	_ = finePath
	if !activeRender {
		return
	}

	// Observation likelihoods: a converged/sane filter is more likely under
	// "echo present" (0.01) than under "transparent" (0.001), so converged
	// blocks pull the posterior toward 0 and non-converged blocks toward 1.
	var likelihoodTransparent, likelihoodEcho float64
	if sartFilterSane {
		likelihoodTransparent = hmmConvergedTransparent
		likelihoodEcho = hmmConvergedNormal
	} else {
		likelihoodTransparent = 1 - hmmConvergedTransparent
		likelihoodEcho = 1 - hmmConvergedNormal
	}

	prior := m.posteriorTransparent
	// Two-state transition with a tiny, symmetric switch probability.
	predictedTransparent := prior*(1-hmmSwitchProbability) + (1-prior)*hmmSwitchProbability

	numerator := predictedTransparent * likelihoodTransparent
	denominator := numerator + (1-predictedTransparent)*likelihoodEcho
	if denominator <= 0 {
		return
	}
	m.posteriorTransparent = numerator / denominator

	if m.active {
		if m.posteriorTransparent < hmmHysteresisDown {
			m.active = false
		}
	} else {
		if m.posteriorTransparent > hmmHysteresisUp {
			m.active = true
		}
	}
}

func (m *HmmTransparentMode) Active() bool {
	return m.active
}

// NewTransparentModeDetector builds the configured classifier variant.
func NewTransparentModeDetector(t TransparentModeType) TransparentModeDetector {
	if t == TransparentModeHmm {
		return NewHmmTransparentMode()
	}
	return NewLegacyTransparentMode()
}
