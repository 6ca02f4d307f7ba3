package model

import (
	"encoding/json"
	"math"
	"time"
)

// Step is an atomic checklist item within a phase.
type Step struct {
	StepID      string         `json:"stepId"`
	Status      StepStatus     `json:"status"`
	Data        map[string]any `json:"data,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// PhaseProgress tracks the steps of one phase. The completion percentage is
// always derived from Steps and never stored.
type PhaseProgress struct {
	Phase       Phase      `json:"phase"`
	Steps       []Step     `json:"steps"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Counts returns the number of completed steps and the total.
func (p PhaseProgress) Counts() (completed, total int) {
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			completed++
		}
	}
	return completed, len(p.Steps)
}

// CompletionPercentage is round(100 * completed / total); 0 without steps.
func (p PhaseProgress) CompletionPercentage() int {
	completed, total := p.Counts()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Complete reports whether every step is completed. A phase without steps is
// never complete. Use it instead of the rounded percentage for decisions.
func (p PhaseProgress) Complete() bool {
	completed, total := p.Counts()
	return total > 0 && completed == total
}

// FirstIncomplete returns the first step that is not completed.
func (p PhaseProgress) FirstIncomplete() (Step, bool) {
	for _, s := range p.Steps {
		if s.Status != StepCompleted {
			return s, true
		}
	}
	return Step{}, false
}

// StepIndex returns the index of stepID in Steps, or -1.
func (p PhaseProgress) StepIndex(stepID string) int {
	for i, s := range p.Steps {
		if s.StepID == stepID {
			return i
		}
	}
	return -1
}

type phaseProgressJSON struct {
	Phase                Phase      `json:"phase"`
	Steps                []Step     `json:"steps"`
	CompletionPercentage int        `json:"completionPercentage"`
	StartedAt            time.Time  `json:"startedAt"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
}

// MarshalJSON emits the derived completionPercentage alongside the steps.
func (p PhaseProgress) MarshalJSON() ([]byte, error) {
	steps := p.Steps
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(phaseProgressJSON{
		Phase:                p.Phase,
		Steps:                steps,
		CompletionPercentage: p.CompletionPercentage(),
		StartedAt:            p.StartedAt,
		CompletedAt:          p.CompletedAt,
	})
}

// UnmarshalJSON ignores any stored completionPercentage.
func (p *PhaseProgress) UnmarshalJSON(b []byte) error {
	var raw phaseProgressJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = PhaseProgress{
		Phase:       raw.Phase,
		Steps:       raw.Steps,
		StartedAt:   raw.StartedAt,
		CompletedAt: raw.CompletedAt,
	}
	return nil
}

// UserProgress is the progress document of one user on one project.
type UserProgress struct {
	UserID       string                  `json:"userId"`
	ProjectID    string                  `json:"projectId"`
	CurrentPhase Phase                   `json:"currentPhase"`
	Phases       map[Phase]PhaseProgress `json:"phases"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// OrderedPhases returns the phases present in declaration order.
func (u *UserProgress) OrderedPhases() []PhaseProgress {
	if u == nil {
		return nil
	}
	out := make([]PhaseProgress, 0, len(u.Phases))
	for _, ph := range PhaseOrder {
		if pp, ok := u.Phases[ph]; ok {
			if pp.Phase == "" {
				pp.Phase = ph
			}
			out = append(out, pp)
		}
	}
	return out
}
