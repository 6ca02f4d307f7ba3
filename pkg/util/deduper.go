package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SetNXer 是 Deduper 依赖的 redis 客户端子集
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Deduper struct {
	rdb    SetNXer
	ttl    time.Duration
	logger *zap.Logger
}

// NewDeduper 创建去重器，logger 可以为 nil
func NewDeduper(rdb SetNXer, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// DedupKey 返回 handler/event 对应的去重 key
func DedupKey(handler, eventID string) string {
	return fmt.Sprintf("dedup:%s:%s", handler, eventID)
}

// AcquireOnce 第一次处理 eventID 时返回 true，重复消息返回 false
// Redis 不可用时允许继续处理
func (d *Deduper) AcquireOnce(ctx context.Context, handler, eventID string) bool {
	key := DedupKey(handler, eventID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
		)
	}
	return ok
}

// Release 删除去重标记，让重新投递的消息可以再次处理
func (d *Deduper) Release(ctx context.Context, handler, eventID string) {
	if err := d.rdb.Del(ctx, DedupKey(handler, eventID)).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}
