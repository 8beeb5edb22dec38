package aec3

// DelayEstimator finds the integer sub-block delay between a render signal
// and the capture signal it leaks into, by cross-correlating downsampled
// versions of both over a bank of lag hypotheses. Ported in spirit from
// original_source/crates/sonora-aec3/src/matched_filter.rs and
// echo_path_delay_estimator.rs, simplified to the single scalar delay the
// rest of the pipeline consumes.
type DelayEstimator struct {
	cfg Delay

	downsamplingFactor int
	renderRing         []float32
	ringPos            int

	lagScores    []float64
	bestLag      int
	consistentRuns int

	delayBlocks int
	confident   bool
}

// NewDelayEstimator constructs an estimator for a render ring long enough
// to cover NumFilters partitions of the given block length.
func NewDelayEstimator(cfg Delay, blockLength int) *DelayEstimator {
	ringBlocks := cfg.NumFilters + cfg.DelayHeadroomBlocks + 1
	return &DelayEstimator{
		cfg:                cfg,
		downsamplingFactor: cfg.DownSamplingFactor,
		renderRing:         make([]float32, ringBlocks*blockLength),
		lagScores:          make([]float64, cfg.NumFilters),
		delayBlocks:        cfg.DefaultDelay,
	}
}

// PushRender appends one sub-block of render samples to the ring buffer.
func (d *DelayEstimator) PushRender(block []float32) {
	n := len(block)
	for i := 0; i < n; i++ {
		d.renderRing[(d.ringPos+i)%len(d.renderRing)] = block[i]
	}
	d.ringPos = (d.ringPos + n) % len(d.renderRing)
}

// downsampleBlock decimates by the configured factor using simple averaging
// over each factor-wide window, a cheap anti-alias approximation adequate
// for the coarse lag search it feeds.
func downsampleBlock(x []float32, factor int) []float32 {
	if factor <= 1 {
		return x
	}
	n := len(x) / factor
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for j := 0; j < factor; j++ {
			sum += x[i*factor+j]
		}
		out[i] = sum / float32(factor)
	}
	return out
}

// Update cross-correlates the most recent capture sub-block against each
// lag hypothesis in the render ring, updates the smoothed winning lag, and
// refreshes the confidence state.
func (d *DelayEstimator) Update(captureBlock []float32, blockLength int) {
	capDs := downsampleBlock(captureBlock, d.downsamplingFactor)

	bestScore := -1.0
	bestLag := d.bestLag
	for lag := 0; lag < d.cfg.NumFilters; lag++ {
		start := (d.ringPos - (lag+1)*blockLength + len(d.renderRing)*blockLength) % len(d.renderRing)
		renderBlock := make([]float32, blockLength)
		for i := 0; i < blockLength; i++ {
			renderBlock[i] = d.renderRing[(start+i)%len(d.renderRing)]
		}
		renderDs := downsampleBlock(renderBlock, d.downsamplingFactor)

		n := len(capDs)
		if len(renderDs) < n {
			n = len(renderDs)
		}
		var score float64
		for i := 0; i < n; i++ {
			score += float64(capDs[i]) * float64(renderDs[i])
		}
		d.lagScores[lag] = score
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	if bestLag == d.bestLag {
		d.consistentRuns++
	} else {
		d.bestLag = bestLag
		d.consistentRuns = 1
	}

	if d.consistentRuns >= d.cfg.Thresholds.Converged {
		d.confident = true
		d.delayBlocks = d.bestLag + d.cfg.DelayHeadroomBlocks
	} else if d.consistentRuns >= d.cfg.Thresholds.Initial {
		d.confident = false
		d.delayBlocks = d.bestLag + d.cfg.DelayHeadroomBlocks
	}
}

// DelayBlocks returns the current smoothed integer delay, in sub-blocks.
func (d *DelayEstimator) DelayBlocks() int {
	return d.delayBlocks
}

// Confident reports whether the delay estimate has crossed the converged
// confidence threshold.
func (d *DelayEstimator) Confident() bool {
	return d.confident
}
