package progress

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchhub/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func steps(statuses ...model.StepStatus) []model.Step {
	out := make([]model.Step, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, model.Step{StepID: string(rune('a' + i)), Status: s})
	}
	return out
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name   string
		phases map[model.Phase]model.PhaseProgress
		want   float64
	}{
		{name: "nil phases", phases: nil, want: 0},
		{name: "phases without steps", phases: map[model.Phase]model.PhaseProgress{
			model.PhaseValidation: {Phase: model.PhaseValidation},
		}, want: 0},
		{name: "two thirds", phases: map[model.Phase]model.PhaseProgress{
			model.PhaseValidation: {Steps: steps(model.StepCompleted, model.StepCompleted)},
			model.PhaseDefinition: {Steps: steps(model.StepInProgress)},
		}, want: 66.67},
		{name: "all complete", phases: map[model.Phase]model.PhaseProgress{
			model.PhaseRisk: {Steps: steps(model.StepCompleted)},
		}, want: 100},
		{name: "one of seven", phases: map[model.Phase]model.PhaseProgress{
			model.PhaseTechnical: {Steps: steps(model.StepCompleted, model.StepNotStarted, model.StepNotStarted,
				model.StepNotStarted, model.StepNotStarted, model.StepNotStarted, model.StepNotStarted)},
		}, want: 14.29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionRate(tt.phases))
		})
	}
}

func TestBreakdown_DeclarationOrder(t *testing.T) {
	phases := map[model.Phase]model.PhaseProgress{
		model.PhaseFinancial:  {Steps: steps(model.StepCompleted, model.StepNotStarted)},
		model.PhaseValidation: {Steps: steps(model.StepCompleted)},
	}
	got := Breakdown(phases)
	require.Len(t, got, 2)
	assert.Equal(t, PhaseSummary{Phase: model.PhaseValidation, Completed: 1, Total: 1, Percentage: 100}, got[0])
	assert.Equal(t, PhaseSummary{Phase: model.PhaseFinancial, Completed: 1, Total: 2, Percentage: 50}, got[1])
}

func TestInitialProgress(t *testing.T) {
	u := InitialProgress("u1", "p1", fixedNow)
	assert.Equal(t, model.PhaseValidation, u.CurrentPhase)
	assert.Len(t, u.Phases, len(model.PhaseOrder))
	assert.Equal(t, float64(0), CompletionRate(u.Phases))
	for _, ph := range model.PhaseOrder {
		assert.Len(t, u.Phases[ph].Steps, 3, "phase %s", ph)
	}
}

func TestApplyStepUpdate_CompletesPhase(t *testing.T) {
	u := &model.UserProgress{Phases: map[model.Phase]model.PhaseProgress{
		model.PhaseValidation: {Phase: model.PhaseValidation, Steps: steps(model.StepCompleted, model.StepInProgress)},
		model.PhaseDefinition: {Phase: model.PhaseDefinition, Steps: steps(model.StepNotStarted)},
	}}

	res := ApplyStepUpdate(u, StepUpdate{Phase: model.PhaseValidation, StepID: "b", Status: model.StepCompleted}, fixedNow)

	assert.True(t, res.PhaseCompleted)
	assert.True(t, res.StepCompleted)
	assert.Equal(t, 100, u.Phases[model.PhaseValidation].CompletionPercentage())
	require.NotNil(t, u.Phases[model.PhaseValidation].CompletedAt)
	assert.Equal(t, model.PhaseDefinition, u.CurrentPhase)
	assert.Equal(t, fixedNow, u.UpdatedAt)
}

func TestApplyStepUpdate_NearlyCompletePhaseStaysOpen(t *testing.T) {
	ss := make([]model.Step, 200)
	for i := range ss {
		ss[i] = model.Step{StepID: fmt.Sprintf("s%03d", i), Status: model.StepCompleted}
	}
	ss[198].Status = model.StepNotStarted
	ss[199].Status = model.StepNotStarted
	u := &model.UserProgress{Phases: map[model.Phase]model.PhaseProgress{
		model.PhaseValidation: {Phase: model.PhaseValidation, Steps: ss},
		model.PhaseDefinition: {Phase: model.PhaseDefinition, Steps: steps(model.StepNotStarted)},
	}}

	res := ApplyStepUpdate(u, StepUpdate{Phase: model.PhaseValidation, StepID: "s198", Status: model.StepCompleted}, fixedNow)
	pp := u.Phases[model.PhaseValidation]
	assert.Equal(t, 100, pp.CompletionPercentage(), "199/200 rounds up for display")
	assert.False(t, res.PhaseCompleted)
	assert.Nil(t, pp.CompletedAt)
	assert.Equal(t, model.PhaseValidation, u.CurrentPhase)

	res = ApplyStepUpdate(u, StepUpdate{Phase: model.PhaseValidation, StepID: "s199", Status: model.StepCompleted}, fixedNow)
	assert.True(t, res.PhaseCompleted)
	assert.NotNil(t, u.Phases[model.PhaseValidation].CompletedAt)
	assert.Equal(t, model.PhaseDefinition, u.CurrentPhase)
}

func TestApplyStepUpdate_Idempotent(t *testing.T) {
	u := InitialProgress("u1", "p1", fixedNow)
	upd := StepUpdate{Phase: model.PhaseValidation, StepID: "market-research", Status: model.StepCompleted}

	first := ApplyStepUpdate(u, upd, fixedNow)
	snapshot, err := json.Marshal(u)
	require.NoError(t, err)

	second := ApplyStepUpdate(u, upd, fixedNow.Add(time.Hour))
	u.UpdatedAt = fixedNow
	again, err := json.Marshal(u)
	require.NoError(t, err)

	assert.True(t, first.StepCompleted)
	assert.False(t, second.StepCompleted)
	assert.JSONEq(t, string(snapshot), string(again))
}

func TestApplyStepUpdate_ReopenClearsCompletion(t *testing.T) {
	u := &model.UserProgress{Phases: map[model.Phase]model.PhaseProgress{
		model.PhaseRisk: {Phase: model.PhaseRisk, Steps: steps(model.StepCompleted)},
	}}
	ApplyStepUpdate(u, StepUpdate{Phase: model.PhaseRisk, StepID: "a", Status: model.StepCompleted}, fixedNow)
	require.NotNil(t, u.Phases[model.PhaseRisk].CompletedAt)

	notes := "revisit after pilot"
	ApplyStepUpdate(u, StepUpdate{Phase: model.PhaseRisk, StepID: "a", Status: model.StepInProgress, Notes: &notes}, fixedNow)

	pp := u.Phases[model.PhaseRisk]
	assert.Nil(t, pp.CompletedAt)
	assert.Nil(t, pp.Steps[0].CompletedAt)
	assert.Equal(t, "revisit after pilot", pp.Steps[0].Notes)
}

func TestApplyStepUpdate_CreatesMissingPhaseAndStep(t *testing.T) {
	u := &model.UserProgress{}
	ApplyStepUpdate(u, StepUpdate{Phase: model.PhaseMarketing, StepID: "launch-campaign", Status: model.StepInProgress}, fixedNow)

	pp, ok := u.Phases[model.PhaseMarketing]
	require.True(t, ok)
	require.Len(t, pp.Steps, 1)
	assert.Equal(t, model.StepInProgress, pp.Steps[0].Status)
	assert.Equal(t, model.PhaseMarketing, u.CurrentPhase)
}

func TestPhaseProgressJSON_DerivesPercentage(t *testing.T) {
	in := `{"phase":"validation","steps":[{"stepId":"a","status":"completed"},{"stepId":"b","status":"not_started"}],"completionPercentage":99,"startedAt":"2026-01-01T00:00:00Z"}`
	var pp model.PhaseProgress
	require.NoError(t, json.Unmarshal([]byte(in), &pp))
	assert.Equal(t, 50, pp.CompletionPercentage())

	out, err := json.Marshal(pp)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"completionPercentage":50`)
}
