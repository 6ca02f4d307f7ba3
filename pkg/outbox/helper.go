package outbox

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NewEvent 创建 pending 状态的事件，eventID 为空时生成新的 uuid
func NewEvent(eventID, aggregateType, aggregateID, routingKey string, payload any) (*Event, error) {
	if eventID == "" {
		eventID = uuid.NewString()
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:       eventID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       payloadJSON,
		Status:        StatusPending,
	}, nil
}

// InsertEventInTx 在事务中写入已构建的事件
func InsertEventInTx(ctx context.Context, tx pgx.Tx, repo *Repository, event *Event) error {
	return repo.InsertEvent(ctx, tx, event)
}
