package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "launchhub/contracts/mq"
	"launchhub/internal/apperrors"
	"launchhub/internal/model"
	"launchhub/internal/progress"
	"launchhub/pkg/logger"
	"launchhub/pkg/outbox"
	"launchhub/pkg/trace"
)

// CreateProjectInput is the user-supplied part of a new project.
type CreateProjectInput struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Industry     string      `json:"industry"`
	TargetMarket string      `json:"targetMarket"`
	Stage        model.Stage `json:"stage"`
}

// ProjectService is the project data store seen by the API.
type ProjectService struct {
	projects ProjectStore
	insights InsightInvalidator
	retry    apperrors.RetryOptions
	logger   *zap.Logger
}

func NewProjectService(projects ProjectStore, retry apperrors.RetryOptions, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, retry: retry, logger: logger}
}

// WithInsightInvalidator drops cached insights after every committed write.
func (s *ProjectService) WithInsightInvalidator(inv InsightInvalidator) *ProjectService {
	s.insights = inv
	return s
}

// Create stores a new project with its default checklist and emits
// project.created.
func (s *ProjectService) Create(ctx context.Context, actor Actor, in CreateProjectInput) (*model.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.NewValidationError("name", "required", "project name is required")
	}
	if in.Stage == "" {
		in.Stage = model.StageConcept
	}
	if !in.Stage.Valid() {
		return nil, apperrors.NewValidationError("stage", "invalid_stage", "unknown stage "+string(in.Stage),
			string(model.StageConcept), string(model.StageDevelopment), string(model.StageTesting),
			string(model.StageLaunch), string(model.StageGrowth))
	}

	now := timeNow().UTC()
	p := &model.Project{
		ID:           uuid.NewString(),
		UserID:       actor.UserID,
		Name:         in.Name,
		Description:  in.Description,
		Industry:     in.Industry,
		TargetMarket: in.TargetMarket,
		Stage:        in.Stage,
		Data:         map[string]model.PhaseData{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	initial := progress.InitialProgress(actor.UserID, p.ID, now)

	eventID := uuid.NewString()
	ev, err := outbox.NewEvent(eventID, mqcontracts.AggregateProject, p.ID, mqcontracts.RoutingProjectCreated,
		mqcontracts.ProjectCreatedPayload{
			EventID:   eventID,
			TraceID:   trace.FromContext(ctx),
			ProjectID: p.ID,
			UserID:    p.UserID,
			Name:      p.Name,
			Stage:     string(p.Stage),
			CreatedAt: now,
		})
	if err != nil {
		return nil, err
	}

	err = apperrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		return s.projects.Create(ctx, p, initial, []*outbox.Event{ev})
	})
	if err != nil {
		return nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Project created",
		zap.String("project_id", p.ID),
		zap.String("user_id", p.UserID),
	)
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, actor Actor, id string) (*model.Project, error) {
	return loadOwnedProject(ctx, s.projects, s.retry, actor, id)
}

func (s *ProjectService) List(ctx context.Context, actor Actor) ([]*model.Project, error) {
	var projects []*model.Project
	err := apperrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		projects, err = s.projects.ListByUser(ctx, actor.UserID)
		return err
	})
	return projects, err
}

// ValidSection reports whether section is a phase key or the risk register.
func ValidSection(section string) bool {
	return model.Phase(section).Valid() || section == model.RisksKey
}

// UpdateProjectPhaseData replaces one data section. Last write wins.
func (s *ProjectService) UpdateProjectPhaseData(ctx context.Context, actor Actor, id, section string, data model.PhaseData) (*model.Project, error) {
	if !ValidSection(section) {
		return nil, apperrors.NewValidationError("phase", "invalid_phase", "unknown phase "+section)
	}
	if data == nil {
		return nil, apperrors.NewValidationError("data", "required", "phase data is required")
	}
	if _, err := loadOwnedProject(ctx, s.projects, s.retry, actor, id); err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	eventID := uuid.NewString()
	ev, err := outbox.NewEvent(eventID, mqcontracts.AggregateProject, id, mqcontracts.RoutingProjectPhaseUpdated,
		mqcontracts.ProjectPhaseUpdatedPayload{
			EventID:   eventID,
			TraceID:   trace.FromContext(ctx),
			ProjectID: id,
			UserID:    actor.UserID,
			Phase:     section,
			UpdatedAt: now,
		})
	if err != nil {
		return nil, err
	}

	var updated *model.Project
	err = apperrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		updated, err = s.projects.UpdatePhaseData(ctx, id, section, data, now, []*outbox.Event{ev})
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidateInsights(ctx, s.insights, logger.WithTrace(ctx, s.logger), id)
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := loadOwnedProject(ctx, s.projects, s.retry, actor, id)
	if err != nil {
		return err
	}

	eventID := uuid.NewString()
	ev, err := outbox.NewEvent(eventID, mqcontracts.AggregateProject, id, mqcontracts.RoutingProjectDeleted,
		mqcontracts.ProjectDeletedPayload{
			EventID:   eventID,
			TraceID:   trace.FromContext(ctx),
			ProjectID: id,
			UserID:    p.UserID,
		})
	if err != nil {
		return err
	}
	err = apperrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		return s.projects.Delete(ctx, id, []*outbox.Event{ev})
	})
	if err != nil {
		return err
	}
	invalidateInsights(ctx, s.insights, logger.WithTrace(ctx, s.logger), id)
	return nil
}
