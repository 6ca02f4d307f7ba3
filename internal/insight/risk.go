package insight

import "launchhub/internal/model"

// Risk level thresholds.
const (
	// HighRiskCriticalCount is the number of high-impact/high-probability
	// risks at which the project is considered high risk.
	HighRiskCriticalCount = 3
	// MediumRiskSevereCount is the number of severe risks (impact ×
	// probability ≥ SevereRiskScore) that alone makes a project medium risk.
	MediumRiskSevereCount = 2
	SevereRiskScore       = 6
)

// RiskSummary is the breakdown behind an assessed risk level.
type RiskSummary struct {
	Level    model.Level `json:"level"`
	Total    int         `json:"total"`
	Critical int         `json:"critical"` // high impact and high probability
	Severe   int         `json:"severe"`
}

// AssessRisk maps a risk register to a qualitative level. The function is
// monotonic: adding a risk never lowers the level.
//
//	critical >= 3                  => high
//	critical >= 1 or severe >= 2   => medium
//	otherwise                      => low
func AssessRisk(risks []model.Risk) RiskSummary {
	s := RiskSummary{Total: len(risks)}
	for _, r := range risks {
		if r.Impact == model.LevelHigh && r.Probability == model.LevelHigh {
			s.Critical++
		}
		if r.Impact.Ordinal()*r.Probability.Ordinal() >= SevereRiskScore {
			s.Severe++
		}
	}
	switch {
	case s.Critical >= HighRiskCriticalCount:
		s.Level = model.LevelHigh
	case s.Critical >= 1 || s.Severe >= MediumRiskSevereCount:
		s.Level = model.LevelMedium
	default:
		s.Level = model.LevelLow
	}
	return s
}

// RiskLevel is AssessRisk without the breakdown.
func RiskLevel(risks []model.Risk) model.Level {
	return AssessRisk(risks).Level
}

// riskHeadroom is the inverse-risk component of the readiness score.
func riskHeadroom(l model.Level) float64 {
	switch l {
	case model.LevelLow:
		return 100
	case model.LevelMedium:
		return 60
	case model.LevelHigh:
		return 20
	}
	return 60
}
