package mq

import "time"

type StepUpdatedPayload struct {
	EventID       string    `json:"event_id"`
	TraceID       string    `json:"trace_id,omitempty"`
	ProjectID     string    `json:"project_id"`
	UserID        string    `json:"user_id"`
	Phase         string    `json:"phase"`
	StepID        string    `json:"step_id"`
	Status        string    `json:"status"`
	StepCompleted bool      `json:"step_completed"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PhaseCompletedPayload struct {
	EventID     string    `json:"event_id"`
	TraceID     string    `json:"trace_id,omitempty"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Phase       string    `json:"phase"`
	CompletedAt time.Time `json:"completed_at"`
}
