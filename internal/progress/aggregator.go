// Package progress reduces phase/step completion documents to completion
// rates and owns the single mutation path for step updates.
package progress

import (
	"math"
	"time"

	"launchhub/internal/model"
)

// PhaseSummary is the per-phase line of a progress breakdown.
type PhaseSummary struct {
	Phase      model.Phase `json:"phase"`
	Completed  int         `json:"completed"`
	Total      int         `json:"total"`
	Percentage int         `json:"percentage"`
}

// CompletionRate returns round2(100 * completed / total) over every phase
// present. With no phases or no steps the rate is 0.
func CompletionRate(phases map[model.Phase]model.PhaseProgress) float64 {
	completed, total := 0, 0
	for _, p := range phases {
		c, t := p.Counts()
		completed += c
		total += t
	}
	if total == 0 {
		return 0
	}
	return Round2(100 * float64(completed) / float64(total))
}

// Breakdown returns one summary per phase present, in declaration order.
func Breakdown(phases map[model.Phase]model.PhaseProgress) []PhaseSummary {
	out := make([]PhaseSummary, 0, len(phases))
	for _, ph := range model.PhaseOrder {
		p, ok := phases[ph]
		if !ok {
			continue
		}
		c, t := p.Counts()
		out = append(out, PhaseSummary{
			Phase:      ph,
			Completed:  c,
			Total:      t,
			Percentage: p.CompletionPercentage(),
		})
	}
	return out
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DefaultSteps is the checklist every new project starts with.
var DefaultSteps = map[model.Phase][]string{
	model.PhaseValidation:   {"market-research", "competitor-analysis", "customer-interviews"},
	model.PhaseDefinition:   {"vision-mission", "value-proposition", "success-metrics"},
	model.PhaseTechnical:    {"technology-stack", "architecture-design", "security-review"},
	model.PhaseMarketing:    {"target-audience", "channel-strategy", "launch-campaign"},
	model.PhaseOperations:   {"team-structure", "processes", "customer-support"},
	model.PhaseFinancial:    {"revenue-model", "cost-projections", "funding-plan"},
	model.PhaseRisk:         {"risk-identification", "mitigation-plans", "contingency-plans"},
	model.PhaseOptimization: {"analytics-setup", "feedback-loops", "growth-experiments"},
}

// InitialProgress builds a fresh progress document with every default step
// not started and the validation phase current.
func InitialProgress(userID, projectID string, now time.Time) *model.UserProgress {
	phases := make(map[model.Phase]model.PhaseProgress, len(model.PhaseOrder))
	for _, ph := range model.PhaseOrder {
		ids := DefaultSteps[ph]
		steps := make([]model.Step, 0, len(ids))
		for _, id := range ids {
			steps = append(steps, model.Step{StepID: id, Status: model.StepNotStarted})
		}
		phases[ph] = model.PhaseProgress{Phase: ph, Steps: steps, StartedAt: now}
	}
	return &model.UserProgress{
		UserID:       userID,
		ProjectID:    projectID,
		CurrentPhase: model.PhaseValidation,
		Phases:       phases,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// StepUpdate is a single status change requested for a step.
type StepUpdate struct {
	Phase  model.Phase
	StepID string
	Status model.StepStatus
	Data   map[string]any
	Notes  *string
}

// Result reports what ApplyStepUpdate changed.
type Result struct {
	PhaseCompleted bool
	StepCompleted  bool
}

// ApplyStepUpdate is the only function that mutates a progress document.
// Unknown phases and steps are created. Any status transition is accepted.
// Applying the same update twice leaves the document unchanged apart from
// UpdatedAt.
func ApplyStepUpdate(u *model.UserProgress, upd StepUpdate, now time.Time) Result {
	if u.Phases == nil {
		u.Phases = make(map[model.Phase]model.PhaseProgress)
	}
	pp, ok := u.Phases[upd.Phase]
	if !ok {
		pp = model.PhaseProgress{Phase: upd.Phase, StartedAt: now}
	}
	wasComplete := pp.CompletedAt != nil

	idx := pp.StepIndex(upd.StepID)
	if idx < 0 {
		pp.Steps = append(pp.Steps, model.Step{StepID: upd.StepID, Status: model.StepNotStarted})
		idx = len(pp.Steps) - 1
	}
	step := pp.Steps[idx]
	prev := step.Status
	step.Status = upd.Status
	switch {
	case upd.Status == model.StepCompleted && step.CompletedAt == nil:
		t := now
		step.CompletedAt = &t
	case upd.Status != model.StepCompleted:
		step.CompletedAt = nil
	}
	if upd.Data != nil {
		step.Data = upd.Data
	}
	if upd.Notes != nil {
		step.Notes = *upd.Notes
	}
	pp.Steps[idx] = step

	if pp.Complete() {
		if pp.CompletedAt == nil {
			t := now
			pp.CompletedAt = &t
		}
	} else {
		pp.CompletedAt = nil
	}
	u.Phases[upd.Phase] = pp
	u.CurrentPhase = CurrentPhase(u.Phases)
	u.UpdatedAt = now

	return Result{
		PhaseCompleted: !wasComplete && pp.CompletedAt != nil,
		StepCompleted:  prev != model.StepCompleted && upd.Status == model.StepCompleted,
	}
}

// CurrentPhase is the first phase in declaration order that is present and
// not fully complete. When everything is complete it is the last phase.
func CurrentPhase(phases map[model.Phase]model.PhaseProgress) model.Phase {
	for _, ph := range model.PhaseOrder {
		if p, ok := phases[ph]; ok && !p.Complete() {
			return ph
		}
	}
	return model.PhaseOrder[len(model.PhaseOrder)-1]
}
