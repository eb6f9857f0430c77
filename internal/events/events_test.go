package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockPublisher struct {
	payloads [][]byte
	names    []string
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, topic string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.names = append(m.names, topic)
	m.payloads = append(m.payloads, data)
	return nil
}

func TestEmit(t *testing.T) {
	due := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	evt := NewOrderEvent(TopicOrderCreated, 42, due, 3)

	if _, err := uuid.Parse(evt.ID); err != nil {
		t.Fatalf("event id %q is not a uuid: %v", evt.ID, err)
	}

	pub := &mockPublisher{}
	Emit(context.Background(), pub, evt)

	if len(pub.names) != 1 || pub.names[0] != TopicOrderCreated {
		t.Fatalf("published topics = %v", pub.names)
	}

	var got OrderEvent
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OrderID != 42 || got.ItemCount != 3 || !got.DueDate.Equal(due) || got.ID != evt.ID {
		t.Errorf("event = %+v", got)
	}
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	// must not panic or block
	Emit(context.Background(), pub, NewOrderEvent(TopicOrderDeleted, 1, time.Now(), 0))

	if err := (NoopPublisher{}).Publish(context.Background(), TopicOrderCreated, nil); err != nil {
		t.Errorf("noop publish: %v", err)
	}
}
