package events

import (
	"context"
	"encoding/json"
	"errors"
	"fleet-trip-service/internal/platform/obs"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements the EventPublisher port over a kafka writer.
// Values are JSON encoded; the key picks the partition so all events of
// one trip stay ordered.
type KafkaPublisher struct {
	writer    Writer
	eventType string
}

// NewKafkaPublisher writes to topic on the comma-separated brokers.
func NewKafkaPublisher(brokers, topic, eventType string) (*KafkaPublisher, error) {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("kafka publisher: no brokers configured")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka publisher: topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
	}
	return NewKafkaPublisherWithWriter(w, eventType), nil
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer, eventType string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, eventType: eventType}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, value any) (err error) {
	defer obs.Time(ctx, "events.Publish")(&err)

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("publish %s: marshal: %w", p.eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now().UTC(),
	}
	if p.eventType != "" {
		msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(p.eventType)}}
	}
	if reqID := obs.RequestID(ctx); reqID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(reqID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s key=%s: %w", p.eventType, key, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
