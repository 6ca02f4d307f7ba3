package model

// AnalyticsSummary holds per-user activity counters.
type AnalyticsSummary struct {
	UserID          string           `json:"userId"`
	StepsUpdated    int64            `json:"stepsUpdated"`
	StepsCompleted  int64            `json:"stepsCompleted"`
	PhasesCompleted int64            `json:"phasesCompleted"`
	Exports         map[string]int64 `json:"exports"`
}
