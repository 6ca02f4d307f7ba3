package outbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReplayStore 是 ReplayService 依赖的 Repository 子集
type ReplayStore interface {
	GetEventByID(ctx context.Context, id int64) (*Event, error)
	GetFailedEvents(ctx context.Context, limit int) ([]*Event, error)
	MarkAsSent(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64, maxRetries int) error
}

// ReplayService 重放 Dispatcher 已放弃的事件
type ReplayService struct {
	store     ReplayStore
	publisher Publisher
	logger    *zap.Logger
}

func NewReplayService(store ReplayStore, publisher Publisher, logger *zap.Logger) *ReplayService {
	return &ReplayService{store: store, publisher: publisher, logger: logger}
}

func (s *ReplayService) ReplayEvent(ctx context.Context, id int64) error {
	event, err := s.store.GetEventByID(ctx, id)
	if err != nil {
		return err
	}

	if err := publish(ctx, s.publisher, event); err != nil {
		if markErr := s.store.MarkAsFailed(ctx, id, 1); markErr != nil {
			return fmt.Errorf("failed to publish and mark as failed: %w (mark error: %v)", err, markErr)
		}
		return fmt.Errorf("failed to publish: %w", err)
	}

	if err := s.store.MarkAsSent(ctx, id); err != nil {
		return fmt.Errorf("failed to mark as sent: %w", err)
	}
	return nil
}

// ReplayFailedEvents 重放最多 limit 个失败事件，返回成功数量
// 单个事件失败只记录日志并跳过
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.store.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	replayed := 0
	for _, event := range events {
		if err := s.ReplayEvent(ctx, event.ID); err != nil {
			s.logger.Warn("Replay failed", zap.Int64("id", event.ID), zap.Error(err))
			continue
		}
		replayed++
	}
	return replayed, nil
}
