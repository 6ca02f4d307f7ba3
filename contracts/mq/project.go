package mq

import "time"

type ProjectCreatedPayload struct {
	EventID   string    `json:"event_id"`
	TraceID   string    `json:"trace_id,omitempty"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectDeletedPayload struct {
	EventID   string `json:"event_id"`
	TraceID   string `json:"trace_id,omitempty"`
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
}

// ProjectPhaseUpdatedPayload is emitted when a phase form is saved.
type ProjectPhaseUpdatedPayload struct {
	EventID   string    `json:"event_id"`
	TraceID   string    `json:"trace_id,omitempty"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Phase     string    `json:"phase"`
	UpdatedAt time.Time `json:"updated_at"`
}
