package analysis

// RiskLevel is the overall verdict for a capture.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// AssessRisk grades a result: many findings or many background flows is
// high risk, any finding at all is moderate.
func AssessRisk(r *Result) RiskLevel {
	switch {
	case len(r.Events) > 10 || len(r.BackgroundFlows) > 5:
		return RiskHigh
	case len(r.Events) > 0:
		return RiskModerate
	default:
		return RiskLow
	}
}
