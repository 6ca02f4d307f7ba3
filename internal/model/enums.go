package model

import (
	"encoding/json"
	"fmt"
)

// Stage is the lifecycle stage a project declares for itself.
type Stage string

const (
	StageConcept     Stage = "concept"
	StageDevelopment Stage = "development"
	StageTesting     Stage = "testing"
	StageLaunch      Stage = "launch"
	StageGrowth      Stage = "growth"
)

func (s Stage) Valid() bool {
	switch s {
	case StageConcept, StageDevelopment, StageTesting, StageLaunch, StageGrowth:
		return true
	}
	return false
}

func (s *Stage) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "stage", func(v string) bool { return Stage(v).Valid() }, (*string)(s))
}

// Phase is one of the eight launch-readiness phases.
type Phase string

const (
	PhaseValidation   Phase = "validation"
	PhaseDefinition   Phase = "definition"
	PhaseTechnical    Phase = "technical"
	PhaseMarketing    Phase = "marketing"
	PhaseOperations   Phase = "operations"
	PhaseFinancial    Phase = "financial"
	PhaseRisk         Phase = "risk"
	PhaseOptimization Phase = "optimization"
)

// PhaseOrder is the declaration order of the phases. Reports, findings and
// next steps are always emitted in this order.
var PhaseOrder = []Phase{
	PhaseValidation,
	PhaseDefinition,
	PhaseTechnical,
	PhaseMarketing,
	PhaseOperations,
	PhaseFinancial,
	PhaseRisk,
	PhaseOptimization,
}

func (p Phase) Valid() bool {
	return PhaseIndex(p) >= 0
}

func (p *Phase) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "phase", func(v string) bool { return Phase(v).Valid() }, (*string)(p))
}

// PhaseIndex returns the position of p in PhaseOrder, or -1.
func PhaseIndex(p Phase) int {
	for i, o := range PhaseOrder {
		if o == p {
			return i
		}
	}
	return -1
}

// ParsePhase converts a raw string (URL segment, CLI flag) to a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

// StepStatus is the completion state of a single checklist step.
type StepStatus string

const (
	StepNotStarted StepStatus = "not_started"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

func (s StepStatus) Valid() bool {
	switch s {
	case StepNotStarted, StepInProgress, StepCompleted:
		return true
	}
	return false
}

func (s *StepStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "step status", func(v string) bool { return StepStatus(v).Valid() }, (*string)(s))
}

// ParseStepStatus converts a raw string to a StepStatus.
func ParseStepStatus(s string) (StepStatus, error) {
	st := StepStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown step status %q", s)
	}
	return st, nil
}

// Level is the three-point scale used for risk impact, probability and the
// aggregate risk level.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Ordinal maps low/medium/high to 1/2/3 and anything else to 0.
func (l Level) Ordinal() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	}
	return 0
}

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

func (l *Level) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "level", func(v string) bool { return Level(v).Valid() }, (*string)(l))
}

// ParseLevel converts a raw string to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

func unmarshalEnum(b []byte, kind string, valid func(string) bool, dst *string) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !valid(raw) {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*dst = raw
	return nil
}
