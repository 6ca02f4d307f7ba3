// Package service holds the application services behind the HTTP API and
// the event consumers.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/internal/insight"
	"launchhub/internal/model"
	"launchhub/pkg/outbox"
	"launchhub/pkg/rbac"
)

var timeNow = time.Now

// Actor is the authenticated caller.
type Actor struct {
	UserID string
	Role   string
}

// ProjectStore persists projects. Writes carry the outbox events to commit
// with them.
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project, initial *model.UserProgress, events []*outbox.Event) error
	Get(ctx context.Context, id string) (*model.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Project, error)
	UpdatePhaseData(ctx context.Context, id, section string, data model.PhaseData, now time.Time, events []*outbox.Event) (*model.Project, error)
	Delete(ctx context.Context, id string, events []*outbox.Event) error
}

// ProgressStore persists progress documents.
type ProgressStore interface {
	Get(ctx context.Context, userID, projectID string) (*model.UserProgress, error)
	Save(ctx context.Context, u *model.UserProgress) error
	Update(ctx context.Context, userID, projectID string, fn func(u *model.UserProgress) (*model.UserProgress, []*outbox.Event, error)) (*model.UserProgress, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type InsightCache interface {
	Get(ctx context.Context, projectID string) (*insight.Insights, bool, error)
	Set(ctx context.Context, projectID string, in *insight.Insights) error
	Invalidate(ctx context.Context, projectID string) error
}

// InsightInvalidator drops cached insights once a write has committed.
type InsightInvalidator interface {
	Invalidate(ctx context.Context, projectID string) error
}

type AnalyticsStore interface {
	Increment(ctx context.Context, userID, field string) error
	IncrementExport(ctx context.Context, userID, format string) error
	Summary(ctx context.Context, userID string) (*model.AnalyticsSummary, error)
}

// loadOwnedProject fetches a project and checks the actor may act on it.
func loadOwnedProject(ctx context.Context, store ProjectStore, retry apperrors.RetryOptions, actor Actor, projectID string) (*model.Project, error) {
	var p *model.Project
	err := apperrors.Retry(ctx, retry, func(ctx context.Context) error {
		var err error
		p, err = store.Get(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := rbac.CheckOwnership(actor.UserID, actor.Role, p.UserID); err != nil {
		return nil, err
	}
	return p, nil
}

func loadProgress(ctx context.Context, store ProgressStore, retry apperrors.RetryOptions, userID, projectID string) (*model.UserProgress, error) {
	var u *model.UserProgress
	err := apperrors.Retry(ctx, retry, func(ctx context.Context) error {
		var err error
		u, err = store.Get(ctx, userID, projectID)
		return err
	})
	return u, err
}

// invalidateInsights drops the cached insights of a project. Failures are
// logged; the event consumer invalidates again on delivery.
func invalidateInsights(ctx context.Context, inv InsightInvalidator, log *zap.Logger, projectID string) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx, projectID); err != nil {
		log.Warn("Insight cache invalidation failed", zap.String("project_id", projectID), zap.Error(err))
	}
}
