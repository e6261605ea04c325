package ports

import (
	"context"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
)

// EventPublisher delivers committed order events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// NoopPublisher drops events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...domain.Event) error { return nil }
