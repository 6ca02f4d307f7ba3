package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"launchhub/pkg/metrics"
	"launchhub/pkg/otel"
	"launchhub/pkg/trace"
)

const traceHeader = "trace_id"

// Delivery 是交给 MessageHandler 的消息
type Delivery struct {
	ID         string
	RoutingKey string
	Body       []byte
}

// MessageHandler 处理单条消息：返回 nil 则 ack，返回 error 则 nack 并重新入队
type MessageHandler func(ctx context.Context, d Delivery) error

type Consumer struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	logger     *zap.Logger
}

// NewConsumer 声明队列并用 routingKey 绑定到 exchange，同时声明对应的 DLQ
func NewConsumer(url, exchange, queueName, routingKey string, prefetch int, logger *zap.Logger) (*Consumer, error) {
	if exchange == "" {
		exchange = ExchangeName
	}
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c := &Consumer{conn: conn, channel: ch, routingKey: routingKey, logger: logger}
	if err := c.setup(exchange, queueName, prefetch); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", exchange),
	)
	return c, nil
}

func (c *Consumer) setup(exchange, queueName string, prefetch int) error {
	for _, name := range []string{exchange, DLQExchange(exchange)} {
		if err := DeclareExchange(c.channel, name); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}
	if prefetch > 0 {
		if err := c.channel.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set qos: %w", err)
		}
	}

	q, err := c.channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := c.channel.QueueBind(q.Name, c.routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	if _, err := DeclareDLQQueue(c.channel, exchange, queueName, c.routingKey); err != nil {
		return err
	}
	c.queue = q
	return nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming 阻塞直到 ctx 结束或投递 channel 关闭
// 每条消息只 ack 或 nack 一次（panic 时也一样）
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer tag 自动生成
		false, // 手动 ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(parent context.Context, msg amqp091.Delivery) {
	start := time.Now()
	ctx := parent
	if id, ok := msg.Headers[traceHeader].(string); ok && id != "" {
		ctx = trace.WithContext(ctx, id)
	}
	ctx, span := otel.MQConsumeSpan(ctx, c.queue.Name, msg.RoutingKey, msg.Headers)
	defer span.End()

	log := c.logger.With(
		zap.String("routing_key", msg.RoutingKey),
		zap.String("queue", c.queue.Name),
		zap.String("message_id", msg.MessageId),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panic recovered", zap.Any("panic", r))
			if err := msg.Nack(false, true); err != nil {
				log.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
	}()

	err := c.handler(ctx, Delivery{ID: msg.MessageId, RoutingKey: msg.RoutingKey, Body: msg.Body})
	metrics.RecordMQConsumeLatency(msg.RoutingKey, c.queue.Name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		log.Error("Handler error", zap.Error(err))
		if err := msg.Nack(false, true); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Error("Failed to ack message", zap.Error(err))
		return
	}
	log.Debug("Message processed successfully")
}
