package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/internal/export"
	"launchhub/pkg/logger"
	"launchhub/pkg/metrics"
)

// ExportService renders project reports and counts them.
type ExportService struct {
	projects  ProjectStore
	progress  ProgressStore
	exporter  *export.Exporter
	analytics AnalyticsStore
	retry     apperrors.RetryOptions
	logger    *zap.Logger
}

func NewExportService(projects ProjectStore, progress ProgressStore, exporter *export.Exporter, analytics AnalyticsStore, retry apperrors.RetryOptions, logger *zap.Logger) *ExportService {
	return &ExportService{
		projects:  projects,
		progress:  progress,
		exporter:  exporter,
		analytics: analytics,
		retry:     retry,
		logger:    logger,
	}
}

// Export renders the project in format. The format is matched case
// insensitively; anything unknown fails with UnsupportedFormatError.
func (s *ExportService) Export(ctx context.Context, actor Actor, projectID, format string, stakeholder bool) (*export.Result, error) {
	f := export.Format(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = export.FormatJSON
	}

	p, err := loadOwnedProject(ctx, s.projects, s.retry, actor, projectID)
	if err != nil {
		return nil, err
	}
	u, err := loadProgress(ctx, s.progress, s.retry, p.UserID, projectID)
	if err != nil {
		return nil, err
	}

	res, err := s.exporter.Export(p, u, export.Options{Format: f, StakeholderView: stakeholder})
	if err != nil {
		metrics.RecordExport(string(f), "error", 0)
		return nil, err
	}
	metrics.RecordExport(string(f), "ok", len(res.Data))

	log := logger.WithTrace(ctx, s.logger)
	if s.analytics != nil {
		if err := s.analytics.IncrementExport(ctx, p.UserID, string(f)); err != nil {
			log.Warn("Failed to count export", zap.Error(err))
		}
	}
	log.Info("Project exported",
		zap.String("project_id", projectID),
		zap.String("format", string(f)),
		zap.Bool("stakeholder", stakeholder),
		zap.Int("bytes", len(res.Data)),
	)
	return res, nil
}
