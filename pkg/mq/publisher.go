package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"

	"launchhub/pkg/otel"
	"launchhub/pkg/trace"
)

// Message 待发送的事件及其 MQ 元数据
type Message struct {
	ID         string
	RoutingKey string
	Body       []byte
}

type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	mu       sync.Mutex
}

// NewPublisher 建立连接并声明 exchange 和对应的死信 exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
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

	for _, name := range []string{exchange, DLQExchange(exchange)} {
		if err := DeclareExchange(ch, name); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// IsConnected 检查连接是否仍然可用
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.channel != nil && !p.conn.IsClosed()
}

// PublishWithContext 发布消息到 exchange
// trace_id 和 span context 通过消息 header 传播
func (p *Publisher) PublishWithContext(ctx context.Context, msg Message) error {
	return p.publish(ctx, p.exchange, msg, nil)
}

func (p *Publisher) publish(ctx context.Context, exchange string, msg Message, extra amqp091.Table) error {
	headers := amqp091.Table{}
	for k, v := range extra {
		headers[k] = v
	}
	if traceID := trace.FromContext(ctx); traceID != "" {
		headers[traceHeader] = traceID
	}
	ctx, span := otel.MQPublishSpan(ctx, exchange, msg.RoutingKey, headers)
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.channel.PublishWithContext(ctx,
		exchange,
		msg.RoutingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			MessageId:    msg.ID,
			Body:         msg.Body,
			DeliveryMode: amqp091.Persistent,
			Headers:      headers,
		},
	)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
