package aec3

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestDbMetricReportsZeroDbForUnityRatio(t *testing.T) {
	is := is.New(t)
	var m DbMetric
	m.Update(1.0)
	m.Update(1.0)
	is.True(math.Abs(m.Db()) < 1e-9)
}

func TestDbMetricIgnoresNonPositiveSamples(t *testing.T) {
	is := is.New(t)
	var m DbMetric
	m.Update(-1)
	m.Update(0)
	is.True(math.IsInf(m.Db(), -1))
}

func TestEchoRemoverMetricsReportsAtIntervalBoundary(t *testing.T) {
	is := is.New(t)
	m := NewEchoRemoverMetrics()
	var closed bool
	for i := 0; i < reportingIntervalBlocks; i++ {
		closed = m.UpdateCapture(2.0, 3.0, 0.5)
	}
	is.True(closed)
}

func TestEchoRemoverMetricsResetClearsAverages(t *testing.T) {
	is := is.New(t)
	m := NewEchoRemoverMetrics()
	m.UpdateCapture(2.0, 3.0, 0.5)
	m.ResetReportingInterval()
	is.True(math.IsInf(m.Erl.Db(), -1))
}
