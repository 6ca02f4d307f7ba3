package service

import (
	"context"

	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/internal/insight"
	"launchhub/pkg/logger"
	"launchhub/pkg/metrics"
)

// InsightService composes insights and caches them per project. Cache
// failures degrade to recomputation.
type InsightService struct {
	projects ProjectStore
	progress ProgressStore
	cache    InsightCache
	retry    apperrors.RetryOptions
	logger   *zap.Logger
}

func NewInsightService(projects ProjectStore, progress ProgressStore, cache InsightCache, retry apperrors.RetryOptions, logger *zap.Logger) *InsightService {
	return &InsightService{projects: projects, progress: progress, cache: cache, retry: retry, logger: logger}
}

func (s *InsightService) GetInsights(ctx context.Context, actor Actor, projectID string) (*insight.Insights, error) {
	p, err := loadOwnedProject(ctx, s.projects, s.retry, actor, projectID)
	if err != nil {
		return nil, err
	}
	log := logger.WithTrace(ctx, s.logger)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, projectID)
		switch {
		case err != nil:
			metrics.IncrementInsightCache("error")
			log.Warn("Insight cache read failed", zap.String("project_id", projectID), zap.Error(err))
		case ok:
			metrics.IncrementInsightCache("hit")
			return cached, nil
		default:
			metrics.IncrementInsightCache("miss")
		}
	}

	prog, err := loadProgress(ctx, s.progress, s.retry, p.UserID, projectID)
	if err != nil {
		return nil, err
	}
	in := insight.Compose(p, prog)

	if s.cache != nil {
		if err := s.cache.Set(ctx, projectID, &in); err != nil {
			log.Warn("Insight cache write failed", zap.String("project_id", projectID), zap.Error(err))
		}
	}
	return &in, nil
}

// Invalidate drops the cached insights of a project.
func (s *InsightService) Invalidate(ctx context.Context, projectID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, projectID)
}
