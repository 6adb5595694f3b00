package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Tracker records server-side analytics events such as order_completed.
type Tracker interface {
	Track(ctx context.Context, event string, props map[string]any) error
}

type NopTracker struct{}

func (NopTracker) Track(context.Context, string, map[string]any) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the JSON value of every analytics message.
type Event struct {
	Name       string         `json:"event"`
	Service    string         `json:"service"`
	Properties map[string]any `json:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type KafkaTracker struct {
	writer  messageWriter
	service string
	now     func() time.Time
}

func NewKafkaTracker(service, topic string, brokers ...string) *KafkaTracker {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaTracker{writer: w, service: service, now: time.Now}
}

// Track writes one message keyed by the order id when present, so events for
// one order stay ordered.
func (t *KafkaTracker) Track(ctx context.Context, event string, props map[string]any) error {
	payload, err := json.Marshal(Event{
		Name:       event,
		Service:    t.service,
		Properties: props,
		OccurredAt: t.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", event, err)
	}

	key := event
	if orderID, ok := props["order_id"].(string); ok && orderID != "" {
		key = orderID
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event)},
		},
	}
	if err = t.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event failed: %w", event, err)
	}
	return nil
}

func (t *KafkaTracker) Close() error {
	return t.writer.Close()
}
