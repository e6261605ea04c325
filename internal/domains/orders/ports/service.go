package ports

import (
	"context"
	"net/http"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
)

// CartLine is a single buyer requested position.
type CartLine struct {
	ItemID   int64
	Quantity int32
}

// CreateOrderInput describes a checkout cart.
type CreateOrderInput struct {
	Buyer          domain.Buyer
	Description    string
	Lines          []CartLine
	IdempotencyKey string
}

// SubmitPaymentInput describes a payment submission for an existing order.
type SubmitPaymentInput struct {
	OrderID  int64
	BuyerIP  string
	Language string
	// BaseURL is the public root used to build notify and continue URLs.
	BaseURL string
}

// SubmitPaymentResult is returned to the buyer for redirection.
type SubmitPaymentResult struct {
	Order       *domain.Order
	RedirectURI string
}

// Notification is the inbound gateway callback.
type Notification struct {
	Headers http.Header
	Body    []byte
}

// NotificationResult reports what a notification did.
type NotificationResult struct {
	Order      *domain.Order
	Transition domain.PaymentTransition
}

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	SubmitForPayment(ctx context.Context, input SubmitPaymentInput) (*SubmitPaymentResult, error)
	Checkout(ctx context.Context, order CreateOrderInput, payment SubmitPaymentInput) (*SubmitPaymentResult, error)
	HandleNotification(ctx context.Context, notification Notification) (*NotificationResult, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, buyerID int64) ([]*domain.Order, error)
	AdvanceFulfillment(ctx context.Context, orderID int64, status domain.FulfillmentStatus) (*domain.Order, error)
}

// PaymentOrchestrator runs payment submission through a durable workflow
// engine, or inline when none is configured.
type PaymentOrchestrator interface {
	SubmitForPayment(ctx context.Context, input SubmitPaymentInput) (*SubmitPaymentResult, error)
}
