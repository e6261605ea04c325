// Package kafka publishes order events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

// DefaultTopic receives order events unless ORDER_EVENTS_TOPIC says otherwise.
const DefaultTopic = "orders.events"

var _ ports.EventPublisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per event, keyed by order id so a partition
// sees an order's events in order.
type Publisher struct {
	writer messageWriter
}

// Envelope is the message value.
type Envelope struct {
	Event      string          `json:"event"`
	OrderID    int64           `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewPublisher builds a publisher for topic on brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}, nil
}

func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := encode(event)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}
	return p.writer.WriteMessages(ctx, messages...)
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encode(event domain.Event) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(Envelope{
		Event:      event.EventName(),
		OrderID:    event.AggregateID(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AggregateID(), 10)),
		Value: value,
		Time:  event.OccurredAt().UTC(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.EventName())},
		},
	}, nil
}
