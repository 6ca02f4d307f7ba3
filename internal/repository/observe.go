package repository

import (
	"context"
	"time"

	"launchhub/pkg/metrics"
	"launchhub/pkg/otel"
)

// observe wraps a storage call in a DB span and records its duration.
func observe(ctx context.Context, operation, table string, fn func(context.Context) error) error {
	start := time.Now()
	err := otel.Traced(ctx, operation, table, fn)
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	return err
}
