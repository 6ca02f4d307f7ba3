package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"launchhub/internal/insight"
)

// KV is the slice of the redis client the insight cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// InsightCache keeps computed insights per project until progress or data
// changes.
type InsightCache struct {
	rdb KV
	ttl time.Duration
}

func NewInsightCache(rdb KV, ttl time.Duration) *InsightCache {
	return &InsightCache{rdb: rdb, ttl: ttl}
}

func InsightKey(projectID string) string {
	return "insights:" + projectID
}

// Get returns false on a miss.
func (c *InsightCache) Get(ctx context.Context, projectID string) (*insight.Insights, bool, error) {
	raw, err := c.rdb.Get(ctx, InsightKey(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var in insight.Insights
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, false, err
	}
	return &in, true, nil
}

func (c *InsightCache) Set(ctx context.Context, projectID string, in *insight.Insights) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, InsightKey(projectID), raw, c.ttl).Err()
}

func (c *InsightCache) Invalidate(ctx context.Context, projectID string) error {
	return c.rdb.Del(ctx, InsightKey(projectID)).Err()
}
