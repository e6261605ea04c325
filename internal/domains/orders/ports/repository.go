package ports

import (
	"context"
	"errors"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrPersistenceConflict reports a uniqueness or referential integrity violation.
	ErrPersistenceConflict = errors.New("persistence conflict")
)

// NewOrder is the input for OrderStore.CreateOrder.
type NewOrder struct {
	Buyer       domain.Buyer
	Description string
	Lines       []domain.Line
}

// OrderStore persists orders and their lines. It is the only writer of
// payment and fulfillment status.
type OrderStore interface {
	// CreateOrder persists the order with its lines and assigns identifiers.
	CreateOrder(ctx context.Context, input NewOrder) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// FindByGatewayOrderID locks the matching order for the rest of the
	// surrounding transaction.
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error)
	// RecordGatewayOrderID is a one-time write. The same id is accepted
	// again; a different id fails with domain.ErrGatewayOrderIDConflict.
	RecordGatewayOrderID(ctx context.Context, orderID int64, gatewayOrderID string) (*domain.Order, error)
	// ApplyPaymentStatus persists the status and its fulfillment projection.
	ApplyPaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error)
	UpdateFulfillment(ctx context.Context, orderID int64, status domain.FulfillmentStatus) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
}

// UnitOfWork runs fn inside a single transaction. Adapters invoked with the
// context passed to fn join that transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
