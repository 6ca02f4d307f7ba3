package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "launchhub/contracts/mq"
	"launchhub/internal/apperrors"
	"launchhub/internal/model"
	"launchhub/internal/progress"
	"launchhub/pkg/logger"
	"launchhub/pkg/metrics"
	"launchhub/pkg/outbox"
	"launchhub/pkg/trace"
)

// StepUpdateInput is a requested change to one step.
type StepUpdateInput struct {
	Status model.StepStatus `json:"status"`
	Data   map[string]any   `json:"data,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
}

// ProgressService reads and mutates user progress documents.
type ProgressService struct {
	projects ProjectStore
	progress ProgressStore
	insights InsightInvalidator
	retry    apperrors.RetryOptions
	logger   *zap.Logger
}

func NewProgressService(projects ProjectStore, progress ProgressStore, retry apperrors.RetryOptions, logger *zap.Logger) *ProgressService {
	return &ProgressService{projects: projects, progress: progress, retry: retry, logger: logger}
}

// WithInsightInvalidator drops cached insights after every committed write.
func (s *ProgressService) WithInsightInvalidator(inv InsightInvalidator) *ProgressService {
	s.insights = inv
	return s
}

// GetUserProgress returns nil when no progress exists yet.
func (s *ProgressService) GetUserProgress(ctx context.Context, actor Actor, projectID string) (*model.UserProgress, error) {
	p, err := loadOwnedProject(ctx, s.projects, s.retry, actor, projectID)
	if err != nil {
		return nil, err
	}
	return loadProgress(ctx, s.progress, s.retry, p.UserID, projectID)
}

// InitializeProgress writes the default checklist, replacing any existing
// document.
func (s *ProgressService) InitializeProgress(ctx context.Context, actor Actor, projectID string) (*model.UserProgress, error) {
	p, err := loadOwnedProject(ctx, s.projects, s.retry, actor, projectID)
	if err != nil {
		return nil, err
	}
	u := progress.InitialProgress(p.UserID, projectID, timeNow().UTC())
	err = apperrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		return s.progress.Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	invalidateInsights(ctx, s.insights, logger.WithTrace(ctx, s.logger), projectID)
	return u, nil
}

// UpdateStepProgress applies one step change under a row lock and emits
// progress.step_updated, plus progress.phase_completed when the phase
// reaches 100%. Repeating an update is harmless.
func (s *ProgressService) UpdateStepProgress(ctx context.Context, actor Actor, projectID string, phase model.Phase, stepID string, in StepUpdateInput) (*model.UserProgress, error) {
	var errs apperrors.ValidationErrors
	if !phase.Valid() {
		errs = append(errs, apperrors.NewValidationError("phase", "invalid_phase", "unknown phase "+string(phase)))
	}
	if stepID == "" {
		errs = append(errs, apperrors.NewValidationError("stepId", "required", "step id is required"))
	}
	if !in.Status.Valid() {
		errs = append(errs, apperrors.NewValidationError("status", "invalid_status", "unknown status "+string(in.Status),
			string(model.StepNotStarted), string(model.StepInProgress), string(model.StepCompleted)))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	p, err := loadOwnedProject(ctx, s.projects, s.retry, actor, projectID)
	if err != nil {
		return nil, err
	}

	traceID := trace.FromContext(ctx)
	var result progress.Result
	var updated *model.UserProgress
	err = apperrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		updated, err = s.progress.Update(ctx, p.UserID, projectID, func(u *model.UserProgress) (*model.UserProgress, []*outbox.Event, error) {
			now := timeNow().UTC()
			if u == nil {
				u = progress.InitialProgress(p.UserID, projectID, now)
			}
			result = progress.ApplyStepUpdate(u, progress.StepUpdate{
				Phase:  phase,
				StepID: stepID,
				Status: in.Status,
				Data:   in.Data,
				Notes:  in.Notes,
			}, now)
			events, err := progressEvents(traceID, u, phase, stepID, in.Status, result, now)
			return u, events, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrementStepUpdate(string(in.Status))
	log := logger.WithTrace(ctx, s.logger)
	invalidateInsights(ctx, s.insights, log, projectID)
	log.Info("Step progress updated",
		zap.String("project_id", projectID),
		zap.String("phase", string(phase)),
		zap.String("step_id", stepID),
		zap.String("status", string(in.Status)),
		zap.Bool("phase_completed", result.PhaseCompleted),
	)
	return updated, nil
}

func progressEvents(traceID string, u *model.UserProgress, phase model.Phase, stepID string, status model.StepStatus, result progress.Result, now time.Time) ([]*outbox.Event, error) {
	eventID := uuid.NewString()
	stepEvent, err := outbox.NewEvent(eventID, mqcontracts.AggregateProgress, u.ProjectID, mqcontracts.RoutingProgressStepUpdated,
		mqcontracts.StepUpdatedPayload{
			EventID:       eventID,
			TraceID:       traceID,
			ProjectID:     u.ProjectID,
			UserID:        u.UserID,
			Phase:         string(phase),
			StepID:        stepID,
			Status:        string(status),
			StepCompleted: result.StepCompleted,
			UpdatedAt:     now,
		})
	if err != nil {
		return nil, err
	}
	events := []*outbox.Event{stepEvent}
	if !result.PhaseCompleted {
		return events, nil
	}

	eventID = uuid.NewString()
	phaseEvent, err := outbox.NewEvent(eventID, mqcontracts.AggregateProgress, u.ProjectID, mqcontracts.RoutingProgressPhaseComplete,
		mqcontracts.PhaseCompletedPayload{
			EventID:     eventID,
			TraceID:     traceID,
			ProjectID:   u.ProjectID,
			UserID:      u.UserID,
			Phase:       string(phase),
			CompletedAt: now,
		})
	if err != nil {
		return nil, err
	}
	return append(events, phaseEvent), nil
}
