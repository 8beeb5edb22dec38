package apm

// Stats is a read-only snapshot of pipeline quality metrics. Every field is
// optional: nil means the owning component is disabled or has not yet
// produced a usable estimate.
type Stats struct {
	EchoReturnLossDb             *float64
	EchoReturnLossEnhancementDb  *float64
	DivergentFilterFraction      *float64
	DelayMedianMs                *float64
	DelayStdDevMs                *float64
	ResidualEchoLikelihood       *float64
	ResidualEchoLikelihoodMax    *float64
	DelayMs                      *float64
}

func float64Ptr(v float64) *float64 { return &v }
