package aec3

import "math"

// DbMetric accumulates a running average of a power-ratio quantity and
// reports it in decibels on demand, matching the reference's dB-metric
// reporting cadence of 10ms worth of data per update.
type DbMetric struct {
	sum   float64
	count int
}

// Update folds in one linear-power-ratio sample.
func (m *DbMetric) Update(ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return
	}
	m.sum += ratio
	m.count++
}

// Db returns 10*log10(mean ratio), or math.Inf(-1) if nothing has been
// accumulated yet.
func (m *DbMetric) Db() float64 {
	if m.count == 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(m.sum/float64(m.count))
}

// Reset clears the accumulator, called once per reporting interval.
func (m *DbMetric) Reset() {
	m.sum = 0
	m.count = 0
}

// EchoRemoverMetrics aggregates the headline quality numbers a caller can
// poll to judge how well the canceller is performing: echo return loss,
// its enhancement, and the residual-to-render power ratio.
type EchoRemoverMetrics struct {
	Erl        DbMetric
	Erle       DbMetric
	ResidualEcho DbMetric

	blocksSinceReport int
}

// reportingIntervalBlocks is how many 4ms sub-blocks separate two reports
// (one second of audio), matching the reference's periodic metrics flush.
const reportingIntervalBlocks = NumBlocksPerSecond

// NewEchoRemoverMetrics constructs an empty metrics aggregator.
func NewEchoRemoverMetrics() *EchoRemoverMetrics {
	return &EchoRemoverMetrics{}
}

// UpdateCapture folds in one sub-block's linear-domain ERL, ERLE, and
// residual-to-render ratio samples and reports whether a new interval was
// just closed (callers typically log/export on the transition).
func (m *EchoRemoverMetrics) UpdateCapture(erl, erle, residualToRender float64) bool {
	m.Erl.Update(erl)
	m.Erle.Update(erle)
	m.ResidualEcho.Update(residualToRender)

	m.blocksSinceReport++
	if m.blocksSinceReport >= reportingIntervalBlocks {
		m.blocksSinceReport = 0
		return true
	}
	return false
}

// ResetReportingInterval clears the accumulated averages, starting a fresh
// reporting window.
func (m *EchoRemoverMetrics) ResetReportingInterval() {
	m.Erl.Reset()
	m.Erle.Reset()
	m.ResidualEcho.Reset()
}
