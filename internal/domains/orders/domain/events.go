package domain

import "time"

// Event is the base interface for all order events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() int64
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	OrderID   int64
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the order the event belongs to.
func (e BaseEvent) AggregateID() int64 {
	return e.OrderID
}

// OrderPlaced is raised once an order and its reservation are committed.
type OrderPlaced struct {
	BaseEvent
	BuyerID int64
	Total   int64
	Lines   int
}

func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// PaymentStatusChanged is raised when a verified notification changed the order.
type PaymentStatusChanged struct {
	BaseEvent
	GatewayOrderID    string
	From              PaymentStatus
	To                PaymentStatus
	Fulfillment       FulfillmentStatus
	InventoryReleased bool
}

func (e PaymentStatusChanged) EventName() string {
	return "orders.payment.status_changed"
}

// FulfillmentStatusChanged is raised when a seller advances shipping.
type FulfillmentStatusChanged struct {
	BaseEvent
	From FulfillmentStatus
	To   FulfillmentStatus
}

func (e FulfillmentStatusChanged) EventName() string {
	return "orders.fulfillment.status_changed"
}
