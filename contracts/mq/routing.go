package mq

// Routing keys on the events exchange.
const (
	RoutingProjectCreated        = "project.created"
	RoutingProjectDeleted        = "project.deleted"
	RoutingProjectPhaseUpdated   = "project.phase_updated"
	RoutingProgressStepUpdated   = "progress.step_updated"
	RoutingProgressPhaseComplete = "progress.phase_completed"
)

// Aggregate types recorded in the outbox.
const (
	AggregateProject  = "project"
	AggregateProgress = "progress"
)
