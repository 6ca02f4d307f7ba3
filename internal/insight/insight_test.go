package insight

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchhub/internal/model"
)

func init() {
	timeNow = func() time.Time {
		return time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	}
}

func risk(impact, probability model.Level) model.Risk {
	return model.Risk{Impact: impact, Probability: probability, Category: "market"}
}

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name  string
		risks []model.Risk
		want  model.Level
	}{
		{"empty", nil, model.LevelLow},
		{"single medium impact", []model.Risk{risk(model.LevelMedium, model.LevelMedium)}, model.LevelLow},
		{"single medium impact high probability", []model.Risk{risk(model.LevelMedium, model.LevelHigh)}, model.LevelLow},
		{"one critical", []model.Risk{risk(model.LevelHigh, model.LevelHigh)}, model.LevelMedium},
		{"two severe", []model.Risk{risk(model.LevelHigh, model.LevelMedium), risk(model.LevelMedium, model.LevelHigh)}, model.LevelMedium},
		{"three critical", []model.Risk{
			risk(model.LevelHigh, model.LevelHigh),
			risk(model.LevelHigh, model.LevelHigh),
			risk(model.LevelHigh, model.LevelHigh),
		}, model.LevelHigh},
		{"three critical among others", []model.Risk{
			risk(model.LevelLow, model.LevelLow),
			risk(model.LevelHigh, model.LevelHigh),
			risk(model.LevelHigh, model.LevelHigh),
			risk(model.LevelHigh, model.LevelHigh),
		}, model.LevelHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskLevel(tt.risks))
		})
	}
}

func TestAssessRisk_Monotonic(t *testing.T) {
	all := []model.Level{model.LevelLow, model.LevelMedium, model.LevelHigh}
	var risks []model.Risk
	prev := RiskLevel(risks)
	for _, i := range all {
		for _, p := range all {
			risks = append(risks, risk(i, p))
			got := RiskLevel(risks)
			assert.GreaterOrEqual(t, got.Ordinal(), prev.Ordinal(), "adding %s/%s lowered the level", i, p)
			prev = got
		}
	}
}

func TestReadinessScore_BoundsAndMonotonicity(t *testing.T) {
	for _, level := range []model.Level{model.LevelLow, model.LevelMedium, model.LevelHigh} {
		prev := -1
		for rate := 0.0; rate <= 100; rate += 0.5 {
			got := ReadinessScore(rate, level)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
			assert.GreaterOrEqual(t, got, prev, "rate %.1f level %s", rate, level)
			prev = got
		}
	}
	assert.Greater(t, ReadinessScore(50, model.LevelLow), ReadinessScore(50, model.LevelMedium))
	assert.Greater(t, ReadinessScore(50, model.LevelMedium), ReadinessScore(50, model.LevelHigh))
	assert.Equal(t, 100, ReadinessScore(250, model.LevelLow))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysSince(now.Add(48*time.Hour), now))
	assert.Equal(t, 0, DaysSince(time.Time{}, now))
	assert.Equal(t, 2, DaysSince(now.Add(-60*time.Hour), now))
}

func scenario() (*model.Project, *model.UserProgress) {
	p := &model.Project{
		ID:        "p1",
		Name:      "Acme",
		CreatedAt: time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
		Data: map[string]model.PhaseData{
			"validation": {"marketSize": "$1B"},
			"financial":  {"projectedRevenue": "$100K"},
			"technical":  {"selectedStack": []any{"React", "Node.js"}},
		},
	}
	u := &model.UserProgress{
		UserID:    "u1",
		ProjectID: "p1",
		Phases: map[model.Phase]model.PhaseProgress{
			model.PhaseValidation: {Phase: model.PhaseValidation, Steps: []model.Step{
				{StepID: "market-research", Status: model.StepCompleted},
				{StepID: "competitor-analysis", Status: model.StepCompleted},
			}},
			model.PhaseDefinition: {Phase: model.PhaseDefinition, Steps: []model.Step{
				{StepID: "vision-mission", Status: model.StepInProgress},
			}},
		},
	}
	return p, u
}

func TestCompose_EndToEnd(t *testing.T) {
	p, u := scenario()

	got := Compose(p, u)

	assert.InDelta(t, 66.67, got.CompletionRate, 0.001)
	assert.Contains(t, got.KeyFindings, "Market size estimated at $1B")
	assert.Contains(t, got.KeyFindings, "Projected first-year revenue: $100K")
	assert.Contains(t, got.KeyFindings, "Technology stack: React, Node.js")
	assert.Contains(t, got.NextSteps, "Complete definition phase: vision-mission")
	assert.Len(t, got.NextSteps, 1)
	assert.Equal(t, model.LevelLow, got.RiskLevel)
	assert.Equal(t, 10, got.TimeSpent)
	assert.Equal(t, ReadinessScore(got.CompletionRate, model.LevelLow), got.ReadinessScore)
	require.Len(t, got.Phases, 2)
}

func TestKeyFindings_PhaseOrder(t *testing.T) {
	p, _ := scenario()
	p.Data["risks"] = model.PhaseData{"risks": []any{
		map[string]any{"id": "r1", "impact": "high", "probability": "high", "category": "market"},
		map[string]any{"id": "r2", "impact": "low", "probability": "medium"},
		map[string]any{"id": "bad", "impact": "enormous", "probability": "high"},
	}}

	got := KeyFindings(p)

	assert.Equal(t, []string{
		"Market size estimated at $1B",
		"Technology stack: React, Node.js",
		"Projected first-year revenue: $100K",
		"2 risks identified (1 high priority)",
	}, got)
}

func TestNextSteps_NilProgress(t *testing.T) {
	assert.Empty(t, NextSteps(nil))
}

func TestNextSteps_NearlyCompletePhase(t *testing.T) {
	ss := make([]model.Step, 200)
	for i := range ss {
		ss[i] = model.Step{StepID: fmt.Sprintf("s%03d", i), Status: model.StepCompleted}
	}
	ss[199].Status = model.StepInProgress
	u := &model.UserProgress{Phases: map[model.Phase]model.PhaseProgress{
		model.PhaseValidation: {Phase: model.PhaseValidation, Steps: ss},
	}}
	assert.Equal(t, []string{"Complete validation phase: s199"}, NextSteps(u))
}

func TestCompose_EmptyProject(t *testing.T) {
	got := Compose(&model.Project{}, nil)
	assert.Equal(t, float64(0), got.CompletionRate)
	assert.Empty(t, got.KeyFindings)
	assert.Empty(t, got.NextSteps)
	assert.Equal(t, 30, got.ReadinessScore)
}
