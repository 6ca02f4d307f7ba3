// Package insight turns a project and its progress into findings, next
// steps, a risk level and a readiness score.
package insight

import (
	"fmt"
	"math"
	"strings"
	"time"

	"launchhub/internal/model"
	"launchhub/internal/progress"
)

// Readiness weights.
const (
	CompletionWeight = 0.7
	RiskWeight       = 0.3
)

// Insights is the composed view of a project at a point in time.
type Insights struct {
	CompletionRate float64                 `json:"completionRate"`
	TimeSpent      int                     `json:"timeSpent"` // whole days since creation
	RiskLevel      model.Level             `json:"riskLevel"`
	Risk           RiskSummary             `json:"risk"`
	ReadinessScore int                     `json:"readinessScore"`
	KeyFindings    []string                `json:"keyFindings"`
	NextSteps      []string                `json:"nextSteps"`
	Phases         []progress.PhaseSummary `json:"phases"`
	GeneratedAt    time.Time               `json:"generatedAt"`
}

// findingRule emits a finding when its field is present.
type findingRule struct {
	phase  model.Phase
	render func(p *model.Project) (string, bool)
}

func stringFinding(section, field, format string) func(p *model.Project) (string, bool) {
	return func(p *model.Project) (string, bool) {
		v := p.String(section, field)
		if v == "" {
			return "", false
		}
		return fmt.Sprintf(format, v), true
	}
}

func listFinding(section, field, format string) func(p *model.Project) (string, bool) {
	return func(p *model.Project) (string, bool) {
		v := p.Strings(section, field)
		if len(v) == 0 {
			return "", false
		}
		return fmt.Sprintf(format, strings.Join(v, ", ")), true
	}
}

var findingRules = []findingRule{
	{model.PhaseValidation, stringFinding("validation", "marketSize", "Market size estimated at %s")},
	{model.PhaseValidation, stringFinding("validation", "targetAudience", "Target audience: %s")},
	{model.PhaseTechnical, listFinding("technical", "selectedStack", "Technology stack: %s")},
	{model.PhaseMarketing, listFinding("marketing", "channels", "Marketing channels: %s")},
	{model.PhaseFinancial, stringFinding("financial", "projectedRevenue", "Projected first-year revenue: %s")},
	{model.PhaseFinancial, stringFinding("financial", "fundingRequired", "Funding required: %s")},
	{model.PhaseRisk, func(p *model.Project) (string, bool) {
		s := AssessRisk(p.Risks())
		if s.Total == 0 {
			return "", false
		}
		return fmt.Sprintf("%d risks identified (%d high priority)", s.Total, s.Critical), true
	}},
}

// Compose builds insights from a project and its progress. A nil progress is
// treated as an empty one.
func Compose(p *model.Project, u *model.UserProgress) Insights {
	now := timeNow()

	var phases map[model.Phase]model.PhaseProgress
	if u != nil {
		phases = u.Phases
	}
	rate := progress.CompletionRate(phases)
	risk := AssessRisk(p.Risks())

	return Insights{
		CompletionRate: rate,
		TimeSpent:      DaysSince(p.CreatedAt, now),
		RiskLevel:      risk.Level,
		Risk:           risk,
		ReadinessScore: ReadinessScore(rate, risk.Level),
		KeyFindings:    KeyFindings(p),
		NextSteps:      NextSteps(u),
		Phases:         progress.Breakdown(phases),
		GeneratedAt:    now,
	}
}

// KeyFindings lists the template findings for every filled field, in phase
// declaration order.
func KeyFindings(p *model.Project) []string {
	findings := []string{}
	for _, rule := range findingRules {
		if s, ok := rule.render(p); ok {
			findings = append(findings, s)
		}
	}
	return findings
}

// NextSteps names the first incomplete step of every unfinished phase.
func NextSteps(u *model.UserProgress) []string {
	next := []string{}
	for _, pp := range u.OrderedPhases() {
		if pp.Complete() {
			continue
		}
		if step, ok := pp.FirstIncomplete(); ok {
			next = append(next, fmt.Sprintf("Complete %s phase: %s", pp.Phase, step.StepID))
		}
	}
	return next
}

// ReadinessScore blends completion with inverse risk. It increases with
// the completion rate and decreases with the risk level, within [0,100].
func ReadinessScore(completionRate float64, level model.Level) int {
	rate := math.Max(0, math.Min(100, completionRate))
	score := math.Round(CompletionWeight*rate + RiskWeight*riskHeadroom(level))
	return int(math.Max(0, math.Min(100, score)))
}

// DaysSince returns whole days elapsed, never negative.
func DaysSince(start, now time.Time) int {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return int(now.Sub(start).Hours() / 24)
}
