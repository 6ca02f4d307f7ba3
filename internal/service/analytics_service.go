package service

import (
	"context"

	mqcontracts "launchhub/contracts/mq"
	"launchhub/internal/model"
	"launchhub/internal/repository"
)

// AnalyticsService maintains per-user activity counters.
type AnalyticsService struct {
	store AnalyticsStore
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

func (s *AnalyticsService) Summary(ctx context.Context, actor Actor) (*model.AnalyticsSummary, error) {
	return s.store.Summary(ctx, actor.UserID)
}

// RecordStepUpdate counts a progress.step_updated event.
func (s *AnalyticsService) RecordStepUpdate(ctx context.Context, p mqcontracts.StepUpdatedPayload) error {
	if err := s.store.Increment(ctx, p.UserID, repository.FieldStepsUpdated); err != nil {
		return err
	}
	if p.StepCompleted {
		return s.store.Increment(ctx, p.UserID, repository.FieldStepsCompleted)
	}
	return nil
}

// RecordPhaseCompleted counts a progress.phase_completed event.
func (s *AnalyticsService) RecordPhaseCompleted(ctx context.Context, p mqcontracts.PhaseCompletedPayload) error {
	return s.store.Increment(ctx, p.UserID, repository.FieldPhasesCompleted)
}
