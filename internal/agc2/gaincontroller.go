package agc2

// GainControllerConfig bounds the adaptive digital gain controller's
// output and how fast it may move.
type GainControllerConfig struct {
	MaxGainDb                 float64
	MaxGainChangeDbPerSecond  float64
	MaxOutputNoiseLevelDbfs   float64
}

// DefaultGainControllerConfig returns conservative defaults suitable for a
// general-purpose voice pipeline.
func DefaultGainControllerConfig() GainControllerConfig {
	return GainControllerConfig{
		MaxGainDb:                30.0,
		MaxGainChangeDbPerSecond: 3.0,
		MaxOutputNoiseLevelDbfs:  -58.0,
	}
}

// GainController adapts a digital gain, in dB, toward
// target = -headroom - speechLevel, rate-limited to
// MaxGainChangeDbPerSecond and clamped to [0, MaxGainDb], backing off when
// applying the full gain would push the estimated noise floor above
// MaxOutputNoiseLevelDbfs.
type GainController struct {
	cfg GainControllerConfig

	gainDb float64
}

// NewGainController constructs a controller starting at unity gain.
func NewGainController(cfg GainControllerConfig) *GainController {
	return &GainController{cfg: cfg}
}

// Update advances the gain by at most one frame's worth of the configured
// rate limit toward the target implied by the current headroom margin,
// speech level, and noise floor estimate, and returns the gain to apply
// this frame, in dB.
func (c *GainController) Update(headroomDb, speechLevelDbfs, noiseFloorDbfs float64, frameDurationSeconds float64) float64 {
	target := -headroomDb - speechLevelDbfs
	if target < 0 {
		target = 0
	}
	if target > c.cfg.MaxGainDb {
		target = c.cfg.MaxGainDb
	}

	if noiseFloorDbfs+target > c.cfg.MaxOutputNoiseLevelDbfs {
		allowed := c.cfg.MaxOutputNoiseLevelDbfs - noiseFloorDbfs
		if allowed < 0 {
			allowed = 0
		}
		if allowed < target {
			target = allowed
		}
	}

	maxStep := c.cfg.MaxGainChangeDbPerSecond * frameDurationSeconds
	delta := target - c.gainDb
	if delta > maxStep {
		delta = maxStep
	} else if delta < -maxStep {
		delta = -maxStep
	}
	c.gainDb += delta

	if c.gainDb < 0 {
		c.gainDb = 0
	} else if c.gainDb > c.cfg.MaxGainDb {
		c.gainDb = c.cfg.MaxGainDb
	}
	return c.gainDb
}

// LinearGain returns the current gain as a linear multiplier.
func (c *GainController) LinearGain() float64 {
	return linearGainFromDb(c.gainDb)
}

// GainDb returns the current gain in dB.
func (c *GainController) GainDb() float64 {
	return c.gainDb
}

// Reset returns the controller to unity gain.
func (c *GainController) Reset() {
	c.gainDb = 0
}
