package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"launchhub/internal/model"
)

// Hasher is the slice of the redis client the analytics store needs.
type Hasher interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

const (
	FieldStepsUpdated    = "steps_updated"
	FieldStepsCompleted  = "steps_completed"
	FieldPhasesCompleted = "phases_completed"
	exportFieldPrefix    = "export:"
)

// AnalyticsRepository keeps per-user activity counters in a redis hash.
type AnalyticsRepository struct {
	rdb Hasher
}

func NewAnalyticsRepository(rdb Hasher) *AnalyticsRepository {
	return &AnalyticsRepository{rdb: rdb}
}

func AnalyticsKey(userID string) string {
	return "analytics:" + userID
}

func (r *AnalyticsRepository) Increment(ctx context.Context, userID, field string) error {
	return r.rdb.HIncrBy(ctx, AnalyticsKey(userID), field, 1).Err()
}

func (r *AnalyticsRepository) IncrementExport(ctx context.Context, userID, format string) error {
	return r.Increment(ctx, userID, exportFieldPrefix+format)
}

// Summary reads the counters. Unparseable fields are ignored.
func (r *AnalyticsRepository) Summary(ctx context.Context, userID string) (*model.AnalyticsSummary, error) {
	fields, err := r.rdb.HGetAll(ctx, AnalyticsKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	s := &model.AnalyticsSummary{UserID: userID, Exports: map[string]int64{}}
	for k, v := range fields {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case k == FieldStepsUpdated:
			s.StepsUpdated = n
		case k == FieldStepsCompleted:
			s.StepsCompleted = n
		case k == FieldPhasesCompleted:
			s.PhasesCompleted = n
		case strings.HasPrefix(k, exportFieldPrefix):
			s.Exports[strings.TrimPrefix(k, exportFieldPrefix)] = n
		}
	}
	return s, nil
}
