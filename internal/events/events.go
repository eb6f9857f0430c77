package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	TopicOrderCreated = "orders.created"
	TopicOrderDeleted = "orders.deleted"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, data []byte) error
}

// OrderEvent is published whenever an order enters or leaves the workshop
// queue, so slip views can refresh.
type OrderEvent struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    uint      `json:"order_id"`
	DueDate    time.Time `json:"due_date"`
	ItemCount  int       `json:"item_count"`
}

func NewOrderEvent(topic string, orderID uint, dueDate time.Time, items int) OrderEvent {
	return OrderEvent{
		ID:         uuid.NewString(),
		EventType:  topic,
		OccurredAt: time.Now().UTC(),
		OrderID:    orderID,
		DueDate:    dueDate,
		ItemCount:  items,
	}
}

// Emit publishes evt on its own topic. Failures are logged and swallowed:
// the order write has already happened.
func Emit(ctx context.Context, pub Publisher, evt OrderEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("encode order event", "event", evt.EventType, "err", err)
		return
	}
	if err := pub.Publish(ctx, evt.EventType, data); err != nil {
		slog.Warn("publish order event", "event", evt.EventType, "order_id", evt.OrderID, "err", err)
	}
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("furniture-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, topic string, msg []byte) error {
	return p.conn.Publish(topic, msg)
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// NoopPublisher is used when NATS_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (NoopPublisher) Close() error { return nil }
