// Package mqhandler consumes domain events from the broker and keeps the
// derived read models (cached insights, analytics counters) current.
package mqhandler

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "launchhub/contracts/mq"
	"launchhub/pkg/logger"
	"launchhub/pkg/mq"
	"launchhub/pkg/util"
)

const (
	handlerName      = "launchhub_events"
	analyticsHandler = "analytics"

	defaultMaxRetries = 3
)

// InsightInvalidator drops cached insights for a project.
type InsightInvalidator interface {
	Invalidate(ctx context.Context, projectID string) error
}

// AnalyticsRecorder bumps per-user activity counters.
type AnalyticsRecorder interface {
	RecordStepUpdate(ctx context.Context, p mqcontracts.StepUpdatedPayload) error
	RecordPhaseCompleted(ctx context.Context, p mqcontracts.PhaseCompletedPayload) error
}

// DeadLetterPublisher parks messages that cannot be processed.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, msg mq.Message, failedBy, reason string) error
}

// errPoison 标记永远无法处理成功的消息（不可重试，直接进 DLQ）
var errPoison = errors.New("poison message")

// EventHandler handles every project.* and progress.* event.
type EventHandler struct {
	insights   InsightInvalidator
	analytics  AnalyticsRecorder
	deduper    *util.Deduper
	retries    *util.RetryCounter
	dlq        DeadLetterPublisher
	maxRetries int64
	logger     *zap.Logger
}

func NewEventHandler(
	insights InsightInvalidator,
	analytics AnalyticsRecorder,
	deduper *util.Deduper,
	retries *util.RetryCounter,
	dlq DeadLetterPublisher,
	maxRetries int,
	logger *zap.Logger,
) *EventHandler {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &EventHandler{
		insights:   insights,
		analytics:  analytics,
		deduper:    deduper,
		retries:    retries,
		dlq:        dlq,
		maxRetries: int64(maxRetries),
		logger:     logger,
	}
}

// Handle is an mq.MessageHandler. Poison messages and messages that keep
// failing past maxRetries go to the dead letter queue and are acked once the
// DLQ publish succeeds; other failures return an error so the broker
// redelivers.
func (h *EventHandler) Handle(ctx context.Context, d mq.Delivery) error {
	log := logger.WithTrace(ctx, h.logger).With(
		zap.String("routing_key", d.RoutingKey),
		zap.String("message_id", d.ID),
	)

	err := h.dispatch(ctx, d)
	if err == nil {
		h.resetRetries(ctx, d)
		return nil
	}

	if errors.Is(err, errPoison) {
		log.Error("Dropping unprocessable message", zap.Error(err))
		return h.deadLetter(ctx, log, d, err)
	}

	key := util.FormatRetryKey(handlerName, messageKey(d))
	count, cerr := h.retries.IncrementAndGet(ctx, key)
	if cerr != nil {
		log.Warn("Failed to count retry, continuing anyway", zap.Error(cerr))
		count = 1
	}
	if count > h.maxRetries {
		log.Warn("Max retries exceeded", zap.Int64("retry_count", count), zap.Error(err))
		if dlqErr := h.deadLetter(ctx, log, d, err); dlqErr != nil {
			return dlqErr
		}
		_ = h.retries.Reset(ctx, key)
		return nil
	}

	log.Warn("Event handling failed, will retry", zap.Int64("retry_count", count), zap.Error(err))
	return err
}

func (h *EventHandler) dispatch(ctx context.Context, d mq.Delivery) error {
	switch d.RoutingKey {
	case mqcontracts.RoutingProgressStepUpdated:
		var p mqcontracts.StepUpdatedPayload
		if err := decode(d.Body, &p, &p.ProjectID); err != nil {
			return err
		}
		if err := h.insights.Invalidate(ctx, p.ProjectID); err != nil {
			return err
		}
		return h.recordOnce(ctx, p.EventID, func(ctx context.Context) error {
			return h.analytics.RecordStepUpdate(ctx, p)
		})

	case mqcontracts.RoutingProgressPhaseComplete:
		var p mqcontracts.PhaseCompletedPayload
		if err := decode(d.Body, &p, &p.ProjectID); err != nil {
			return err
		}
		if err := h.insights.Invalidate(ctx, p.ProjectID); err != nil {
			return err
		}
		return h.recordOnce(ctx, p.EventID, func(ctx context.Context) error {
			return h.analytics.RecordPhaseCompleted(ctx, p)
		})

	case mqcontracts.RoutingProjectCreated, mqcontracts.RoutingProjectPhaseUpdated, mqcontracts.RoutingProjectDeleted:
		var p struct {
			ProjectID string `json:"project_id"`
		}
		if err := decode(d.Body, &p, &p.ProjectID); err != nil {
			return err
		}
		return h.insights.Invalidate(ctx, p.ProjectID)
	}

	h.logger.Debug("Ignoring event", zap.String("routing_key", d.RoutingKey))
	return nil
}

// recordOnce 同一个 event id 最多执行一次 fn
// 执行失败时释放去重标记，让重新投递的消息再次统计
func (h *EventHandler) recordOnce(ctx context.Context, eventID string, fn func(ctx context.Context) error) error {
	if h.analytics == nil {
		return nil
	}
	if eventID != "" && !h.deduper.AcquireOnce(ctx, analyticsHandler, eventID) {
		return nil
	}
	if err := fn(ctx); err != nil {
		if eventID != "" {
			h.deduper.Release(ctx, analyticsHandler, eventID)
		}
		return err
	}
	return nil
}

// deadLetter 把消息发送到 DLQ
// 发送失败时返回 error，让 consumer nack 而不是丢失消息
func (h *EventHandler) deadLetter(ctx context.Context, log *zap.Logger, d mq.Delivery, cause error) error {
	if h.dlq == nil {
		return nil
	}
	msg := mq.Message{ID: d.ID, RoutingKey: d.RoutingKey, Body: d.Body}
	if err := h.dlq.PublishToDLQ(ctx, msg, handlerName, cause.Error()); err != nil {
		log.Error("Failed to publish to DLQ", zap.Error(err))
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}

func (h *EventHandler) resetRetries(ctx context.Context, d mq.Delivery) {
	if err := h.retries.Reset(ctx, util.FormatRetryKey(handlerName, messageKey(d))); err != nil {
		h.logger.Debug("Failed to reset retry count", zap.Error(err))
	}
}

// messageKey identifies a delivery across redeliveries.
func messageKey(d mq.Delivery) string {
	if d.ID != "" {
		return d.ID
	}
	sum := sha256.Sum256(d.Body)
	return fmt.Sprintf("%s:%x", d.RoutingKey, sum[:8])
}

// decode unmarshals body into v and requires a project id.
func decode(body []byte, v any, projectID *string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if *projectID == "" {
		return fmt.Errorf("%w: missing project_id", errPoison)
	}
	return nil
}
