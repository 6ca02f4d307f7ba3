package mq

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// DLQExchange 返回 exchange 对应的死信 exchange 名称
func DLQExchange(exchange string) string {
	return exchange + ".dlq"
}

// DeclareDLQQueue 声明并绑定 queueName 对应的死信队列
func DeclareDLQQueue(ch *amqp091.Channel, exchange, queueName, routingKey string) (amqp091.Queue, error) {
	q, err := ch.QueueDeclare(
		queueName+".dlq",
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, DLQExchange(exchange), false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}
	return q, nil
}

// PublishToDLQ 把无法处理的消息发送到 DLQ
func (p *Publisher) PublishToDLQ(ctx context.Context, msg Message, failedBy, reason string) error {
	return p.publish(ctx, DLQExchange(p.exchange), msg, amqp091.Table{
		"x-original-error": reason,
		"x-failed-by":      failedBy,
	})
}
